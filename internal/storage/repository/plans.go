package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/account-service/internal/models"
)

// CreatePlan сохраняет новый план и возвращает его UID.
// Повторное название или тег приводит к errs.ErrConflict.
func (s *Storage) CreatePlan(ctx context.Context, plan models.Plan) (string, error) {
	const op = "storage.CreatePlan"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO plans (name, description, tag, price, duration_in_months,
			      unlimited, monthly_api_call_limit)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		plan.Name, plan.Description, plan.Tag, plan.Price, plan.DurationInMonths,
		plan.Unlimited, plan.MonthlyAPICallLimit).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, translateErr(err))
	}
	return newUID, nil
}

// GetPlanByUID возвращает план по его UID.
func (s *Storage) GetPlanByUID(ctx context.Context, uid string) (*models.Plan, error) {
	const op = "storage.GetPlanByUID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, name, description, tag, price, duration_in_months,
			      unlimited, monthly_api_call_limit
			  FROM plans
			  WHERE uid = $1`
	p := &models.Plan{}
	if err := s.DB.QueryRowContext(ctx, query, uid).Scan(
		&p.UID, &p.Name, &p.Description, &p.Tag, &p.Price, &p.DurationInMonths,
		&p.Unlimited, &p.MonthlyAPICallLimit); err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateErr(err))
	}
	return p, nil
}

// GetPlanByTag возвращает план по его тегу.
func (s *Storage) GetPlanByTag(ctx context.Context, tag string) (*models.Plan, error) {
	const op = "storage.GetPlanByTag"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, name, description, tag, price, duration_in_months,
			      unlimited, monthly_api_call_limit
			  FROM plans
			  WHERE tag = $1`
	p := &models.Plan{}
	if err := s.DB.QueryRowContext(ctx, query, tag).Scan(
		&p.UID, &p.Name, &p.Description, &p.Tag, &p.Price, &p.DurationInMonths,
		&p.Unlimited, &p.MonthlyAPICallLimit); err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateErr(err))
	}
	return p, nil
}

// ListPlans возвращает планы с пагинацией.
func (s *Storage) ListPlans(ctx context.Context, limit, offset int) ([]*models.Plan, error) {
	const op = "storage.ListPlans"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, name, description, tag, price, duration_in_months,
			      unlimited, monthly_api_call_limit
			  FROM plans
			  ORDER BY name
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Plan
	for rows.Next() {
		p := &models.Plan{}
		if err = rows.Scan(&p.UID, &p.Name, &p.Description, &p.Tag, &p.Price,
			&p.DurationInMonths, &p.Unlimited, &p.MonthlyAPICallLimit); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountPlans возвращает общее количество планов.
func (s *Storage) CountPlans(ctx context.Context) (int, error) {
	const op = "storage.CountPlans"
	var count int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM plans`).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// UpdatePlan применяет частичные изменения плана. Nil-поля не трогаются,
// название и тег не изменяются.
func (s *Storage) UpdatePlan(ctx context.Context, uid string, patch models.UpdatePlan) error {
	const op = "storage.UpdatePlan"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE plans
			  SET description = COALESCE($1, description),
			      price = COALESCE($2, price),
			      duration_in_months = COALESCE($3, duration_in_months),
			      unlimited = COALESCE($4, unlimited),
			      monthly_api_call_limit = COALESCE($5, monthly_api_call_limit)
			  WHERE uid = $6`
	result, err := s.DB.ExecContext(ctx, query,
		patch.Description, patch.Price, patch.DurationInMonths,
		patch.Unlimited, patch.MonthlyAPICallLimit, uid)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, translateErr(sql.ErrNoRows))
	}
	return nil
}

// DeletePlan удаляет план по UID.
func (s *Storage) DeletePlan(ctx context.Context, uid string) error {
	const op = "storage.DeletePlan"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM plans WHERE uid = $1`, uid)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, translateErr(sql.ErrNoRows))
	}
	return nil
}
