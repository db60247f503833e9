// Package tag выводит слаг тарифного плана из его названия.
// Слаг детерминирован: одно и то же название всегда дает один тег.
package tag

import "strings"

// FromName переводит название плана в тег: нижний регистр,
// все пробелы заменяются подчеркиваниями.
// Например, "Free Plan" превращается в "free_plan".
func FromName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}
