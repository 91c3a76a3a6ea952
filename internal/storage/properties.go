package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fintrack/internal/core"
)

func (r *SQLiteRepository) CreateProperty(ctx context.Context, p core.Property) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO properties (user_id, name, address, purchase_price_cents, current_value_cents)
		 VALUES (?, ?, ?, ?, ?)`,
		p.UserID, p.Name, p.Address, p.PurchasePrice.Cents, p.CurrentValue.Cents)
	if err != nil {
		return 0, fmt.Errorf("create property: %w", err)
	}
	return lastID(res)
}

func (r *SQLiteRepository) GetProperty(ctx context.Context, userID, id int64) (*core.Property, error) {
	var p core.Property
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, address, purchase_price_cents, current_value_cents
		 FROM properties WHERE id = ? AND user_id = ?`, id, userID).
		Scan(&p.ID, &p.UserID, &p.Name, &p.Address, &p.PurchasePrice.Cents, &p.CurrentValue.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get property: %w", err)
	}
	return &p, nil
}

func (r *SQLiteRepository) ListProperties(ctx context.Context, userID int64) ([]core.Property, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, address, purchase_price_cents, current_value_cents
		 FROM properties WHERE user_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	defer rows.Close()

	var out []core.Property
	for rows.Next() {
		var p core.Property
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Address, &p.PurchasePrice.Cents, &p.CurrentValue.Cents); err != nil {
			return nil, fmt.Errorf("scan property: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateProperty(ctx context.Context, p core.Property) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE properties SET name = ?, address = ?, purchase_price_cents = ?, current_value_cents = ?
		 WHERE id = ? AND user_id = ?`,
		p.Name, p.Address, p.PurchasePrice.Cents, p.CurrentValue.Cents, p.ID, p.UserID)
	if err != nil {
		return fmt.Errorf("update property: %w", err)
	}
	return rowsMatched(res)
}

func (r *SQLiteRepository) DeleteProperty(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM properties WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete property: %w", err)
	}
	return rowsMatched(res)
}

func (r *SQLiteRepository) CreatePropertyLoan(ctx context.Context, userID int64, l core.PropertyLoan) (int64, error) {
	if _, err := r.GetProperty(ctx, userID, l.PropertyID); err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO property_loans (property_id, lender, balance_cents, rate_percent, monthly_payment_cents)
		 VALUES (?, ?, ?, ?, ?)`,
		l.PropertyID, l.Lender, l.Balance.Cents, l.RatePercent, l.MonthlyPayment.Cents)
	if err != nil {
		return 0, fmt.Errorf("create property loan: %w", err)
	}
	return lastID(res)
}

func (r *SQLiteRepository) ListPropertyLoans(ctx context.Context, userID, propertyID int64) ([]core.PropertyLoan, error) {
	if _, err := r.GetProperty(ctx, userID, propertyID); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, property_id, lender, balance_cents, rate_percent, monthly_payment_cents
		 FROM property_loans WHERE property_id = ? ORDER BY id`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("list property loans: %w", err)
	}
	defer rows.Close()

	var out []core.PropertyLoan
	for rows.Next() {
		var l core.PropertyLoan
		if err := rows.Scan(&l.ID, &l.PropertyID, &l.Lender, &l.Balance.Cents, &l.RatePercent, &l.MonthlyPayment.Cents); err != nil {
			return nil, fmt.Errorf("scan property loan: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeletePropertyLoan(ctx context.Context, userID, propertyID, id int64) error {
	if _, err := r.GetProperty(ctx, userID, propertyID); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM property_loans WHERE id = ? AND property_id = ?`, id, propertyID)
	if err != nil {
		return fmt.Errorf("delete property loan: %w", err)
	}
	return rowsMatched(res)
}

func (r *SQLiteRepository) CreateRentalIncome(ctx context.Context, userID int64, ri core.RentalIncome) (int64, error) {
	if _, err := r.GetProperty(ctx, userID, ri.PropertyID); err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO rental_income (property_id, amount_cents, received_at) VALUES (?, ?, ?)`,
		ri.PropertyID, ri.Amount.Cents, formatDate(ri.ReceivedAt))
	if err != nil {
		return 0, fmt.Errorf("create rental income: %w", err)
	}
	return lastID(res)
}

func (r *SQLiteRepository) ListRentalIncome(ctx context.Context, userID, propertyID int64) ([]core.RentalIncome, error) {
	if _, err := r.GetProperty(ctx, userID, propertyID); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, property_id, amount_cents, received_at FROM rental_income
		 WHERE property_id = ? ORDER BY received_at DESC, id DESC`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("list rental income: %w", err)
	}
	defer rows.Close()

	var out []core.RentalIncome
	for rows.Next() {
		var (
			ri         core.RentalIncome
			receivedAt string
		)
		if err := rows.Scan(&ri.ID, &ri.PropertyID, &ri.Amount.Cents, &receivedAt); err != nil {
			return nil, fmt.Errorf("scan rental income: %w", err)
		}
		ri.ReceivedAt = parseDate(receivedAt)
		out = append(out, ri)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteRentalIncome(ctx context.Context, userID, propertyID, id int64) error {
	if _, err := r.GetProperty(ctx, userID, propertyID); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM rental_income WHERE id = ? AND property_id = ?`, id, propertyID)
	if err != nil {
		return fmt.Errorf("delete rental income: %w", err)
	}
	return rowsMatched(res)
}

func (r *SQLiteRepository) CreatePropertyExpense(ctx context.Context, userID int64, e core.PropertyExpense) (int64, error) {
	if _, err := r.GetProperty(ctx, userID, e.PropertyID); err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO property_expenses (property_id, amount_cents, category, description, incurred_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.PropertyID, e.Amount.Cents, e.Category, e.Description, formatDate(e.IncurredAt))
	if err != nil {
		return 0, fmt.Errorf("create property expense: %w", err)
	}
	return lastID(res)
}

func (r *SQLiteRepository) ListPropertyExpenses(ctx context.Context, userID, propertyID int64) ([]core.PropertyExpense, error) {
	if _, err := r.GetProperty(ctx, userID, propertyID); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, property_id, amount_cents, category, description, incurred_at
		 FROM property_expenses WHERE property_id = ? ORDER BY incurred_at DESC, id DESC`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("list property expenses: %w", err)
	}
	defer rows.Close()

	var out []core.PropertyExpense
	for rows.Next() {
		var (
			e          core.PropertyExpense
			incurredAt string
		)
		if err := rows.Scan(&e.ID, &e.PropertyID, &e.Amount.Cents, &e.Category, &e.Description, &incurredAt); err != nil {
			return nil, fmt.Errorf("scan property expense: %w", err)
		}
		e.IncurredAt = parseDate(incurredAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeletePropertyExpense(ctx context.Context, userID, propertyID, id int64) error {
	if _, err := r.GetProperty(ctx, userID, propertyID); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM property_expenses WHERE id = ? AND property_id = ?`, id, propertyID)
	if err != nil {
		return fmt.Errorf("delete property expense: %w", err)
	}
	return rowsMatched(res)
}

func (r *SQLiteRepository) CreatePropertyTenant(ctx context.Context, userID int64, t core.PropertyTenant) (int64, error) {
	if _, err := r.GetProperty(ctx, userID, t.PropertyID); err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO property_tenants (property_id, name, rent_cents, lease_start, lease_end)
		 VALUES (?, ?, ?, ?, ?)`,
		t.PropertyID, t.Name, t.Rent.Cents, formatOptionalDate(t.LeaseStart), formatOptionalDate(t.LeaseEnd))
	if err != nil {
		return 0, fmt.Errorf("create property tenant: %w", err)
	}
	return lastID(res)
}

func (r *SQLiteRepository) ListPropertyTenants(ctx context.Context, userID, propertyID int64) ([]core.PropertyTenant, error) {
	if _, err := r.GetProperty(ctx, userID, propertyID); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, property_id, name, rent_cents, lease_start, lease_end
		 FROM property_tenants WHERE property_id = ? ORDER BY id`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("list property tenants: %w", err)
	}
	defer rows.Close()

	var out []core.PropertyTenant
	for rows.Next() {
		var (
			t          core.PropertyTenant
			start, end string
		)
		if err := rows.Scan(&t.ID, &t.PropertyID, &t.Name, &t.Rent.Cents, &start, &end); err != nil {
			return nil, fmt.Errorf("scan property tenant: %w", err)
		}
		t.LeaseStart = parseDate(start)
		t.LeaseEnd = parseDate(end)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeletePropertyTenant(ctx context.Context, userID, propertyID, id int64) error {
	if _, err := r.GetProperty(ctx, userID, propertyID); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM property_tenants WHERE id = ? AND property_id = ?`, id, propertyID)
	if err != nil {
		return fmt.Errorf("delete property tenant: %w", err)
	}
	return rowsMatched(res)
}

// PropertyCashflowSums returns lifetime rental income and expense totals
// for a property, used in the property summary.
func (r *SQLiteRepository) PropertyCashflowSums(ctx context.Context, userID, propertyID int64) (incomeCents, expenseCents int64, err error) {
	if _, err := r.GetProperty(ctx, userID, propertyID); err != nil {
		return 0, 0, err
	}

	var income, expenses sql.NullInt64
	err = r.db.QueryRowContext(ctx,
		`SELECT SUM(amount_cents) FROM rental_income WHERE property_id = ?`, propertyID).
		Scan(&income)
	if err != nil {
		return 0, 0, fmt.Errorf("sum rental income: %w", err)
	}
	err = r.db.QueryRowContext(ctx,
		`SELECT SUM(amount_cents) FROM property_expenses WHERE property_id = ?`, propertyID).
		Scan(&expenses)
	if err != nil {
		return 0, 0, fmt.Errorf("sum property expenses: %w", err)
	}
	return income.Int64, expenses.Int64, nil
}

func formatOptionalDate(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return formatDate(d)
}
