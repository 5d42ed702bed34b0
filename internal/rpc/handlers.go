package rpc

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"

	"spendtrack/internal/core"
)

// Wire shapes. Decimal values travel as strings so callers never see float
// rounding.
type (
	expenseDTO struct {
		ID        int64  `json:"id"`
		Category  string `json:"category"`
		Amount    string `json:"amount"`
		Notes     string `json:"notes"`
		Currency  string `json:"currency"`
		CreatedAt string `json:"created_at"`
		UpdatedAt string `json:"updated_at"`
	}

	limitDTO struct {
		Category    string `json:"category"`
		LimitAmount string `json:"limit_amount"`
		LimitType   string `json:"limit_type"`
		Currency    string `json:"currency"`
	}

	categoryTotalDTO struct {
		Category string `json:"category"`
		Total    string `json:"total"`
	}
)

func (s *Server) addExpense(ctx context.Context, params json.RawMessage) (any, error) {
	var p struct {
		Category string          `json:"category"`
		Amount   decimal.Decimal `json:"amount"`
		Notes    string          `json:"notes"`
		Currency string          `json:"currency"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	return s.tracker.AddExpense(ctx, p.Category, p.Amount, p.Notes, p.Currency)
}

func (s *Server) setCategoryLimit(ctx context.Context, params json.RawMessage) (any, error) {
	var p struct {
		Category    string          `json:"category"`
		LimitAmount decimal.Decimal `json:"limit_amount"`
		LimitType   string          `json:"limit_type"`
		Currency    string          `json:"currency"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	return s.tracker.SetCategoryLimit(ctx, p.Category, p.LimitAmount, p.LimitType, p.Currency)
}

func (s *Server) listCategoryLimits(ctx context.Context, _ json.RawMessage) (any, error) {
	policies, err := s.tracker.ListCategoryLimits(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]limitDTO, len(policies))
	for i, p := range policies {
		out[i] = limitDTO{
			Category:    p.Category,
			LimitAmount: p.LimitAmount.String(),
			LimitType:   string(p.LimitType),
			Currency:    p.Currency,
		}
	}
	return out, nil
}

func (s *Server) totalExpenses(ctx context.Context, params json.RawMessage) (any, error) {
	var p struct {
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	total, err := s.tracker.TotalExpenses(ctx, p.StartDate, p.EndDate)
	if err != nil {
		return nil, err
	}
	return total.String(), nil
}

func (s *Server) averageTransaction(ctx context.Context, _ json.RawMessage) (any, error) {
	avg, err := s.tracker.AverageTransaction(ctx)
	if err != nil {
		return nil, err
	}
	return avg.String(), nil
}

func (s *Server) topCategories(ctx context.Context, params json.RawMessage) (any, error) {
	var p struct {
		N *int `json:"n"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	n := 3
	if p.N != nil {
		n = *p.N
	}

	totals, err := s.tracker.TopCategories(ctx, n)
	if err != nil {
		return nil, err
	}

	out := make([]categoryTotalDTO, len(totals))
	for i, ct := range totals {
		out[i] = categoryTotalDTO{Category: ct.Category, Total: ct.Total.String()}
	}
	return out, nil
}

func (s *Server) listExpenses(ctx context.Context, _ json.RawMessage) (any, error) {
	expenses, err := s.tracker.ListExpenses(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]expenseDTO, len(expenses))
	for i, e := range expenses {
		out[i] = expenseDTO{
			ID:        e.ID,
			Category:  e.Category,
			Amount:    e.Amount.String(),
			Notes:     e.Notes,
			Currency:  e.Currency,
			CreatedAt: e.CreatedAt.Format(core.TimestampLayout),
			UpdatedAt: e.UpdatedAt.Format(core.TimestampLayout),
		}
	}
	return out, nil
}

func (s *Server) addTableColumn(ctx context.Context, params json.RawMessage) (any, error) {
	var p struct {
		TableName    string  `json:"table_name"`
		ColumnName   string  `json:"column_name"`
		ColumnType   string  `json:"column_type"`
		DefaultValue *string `json:"default_value"`
		IsRequired   bool    `json:"is_required"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	return s.tracker.AddTableColumn(ctx, p.TableName, p.ColumnName, p.ColumnType, p.DefaultValue, p.IsRequired)
}
