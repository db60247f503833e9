package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/account-service/internal/models"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name           string
		page           int
		pageSize       int
		totalCount     int
		dataLen        int
		wantTotalPages int
	}{
		{name: "exact pages", page: 1, pageSize: 10, totalCount: 30, dataLen: 10, wantTotalPages: 3},
		{name: "partial last page", page: 3, pageSize: 10, totalCount: 25, dataLen: 5, wantTotalPages: 3},
		{name: "single page", page: 1, pageSize: 10, totalCount: 4, dataLen: 4, wantTotalPages: 1},
		{name: "empty", page: 1, pageSize: 10, totalCount: 0, dataLen: 0, wantTotalPages: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]int, tt.dataLen)
			res := models.NewPagination(tt.page, tt.pageSize, tt.totalCount, data)
			assert.Equal(t, tt.page, res.Page)
			assert.Equal(t, tt.pageSize, res.PageSize)
			assert.Equal(t, tt.wantTotalPages, res.TotalPages)
			assert.Len(t, res.Data, tt.dataLen)
		})
	}
}
