// Package staff resolves employees within the caller's accessible shops.
package staff

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"shopledger/internal/platform/querier"
)

const StatusActive = "active"

var ErrEmployeeNotFound = errors.New("employee not found")

type Employee struct {
	ID         string          `json:"id"`
	ShopID     string          `json:"shopId"`
	UserID     string          `json:"userId,omitempty"`
	Name       string          `json:"name"`
	Email      string          `json:"email,omitempty"`
	BaseSalary decimal.Decimal `json:"baseSalary"`
	Status     string          `json:"status"`
}

type Directory struct {
	DB querier.Querier
}

func NewDirectory(db querier.Querier) *Directory {
	return &Directory{DB: db}
}

// Find returns the employee only when it works for one of shopIDs.
func (d *Directory) Find(ctx context.Context, employeeID string, shopIDs []string) (Employee, error) {
	return find(ctx, d.DB, employeeID, shopIDs, "")
}

// LockTx is Find with the employee row locked until tx ends.
func (d *Directory) LockTx(ctx context.Context, tx pgx.Tx, employeeID string, shopIDs []string) (Employee, error) {
	return find(ctx, tx, employeeID, shopIDs, " FOR UPDATE")
}

func (d *Directory) UpdateBaseSalaryTx(ctx context.Context, tx pgx.Tx, employeeID string, amount decimal.Decimal) error {
	_, err := tx.Exec(ctx, "UPDATE employees SET base_salary = $1, updated_at = now() WHERE id::text = $2", amount, employeeID)
	return err
}

func find(ctx context.Context, q querier.Querier, employeeID string, shopIDs []string, suffix string) (Employee, error) {
	var e Employee
	err := q.QueryRow(ctx, `
    SELECT id, shop_id, COALESCE(user_id, ''), name, COALESCE(email, ''), base_salary, status
    FROM employees
    WHERE id::text = $1 AND shop_id::text = ANY($2::text[])`+suffix,
		employeeID, shopIDs).Scan(&e.ID, &e.ShopID, &e.UserID, &e.Name, &e.Email, &e.BaseSalary, &e.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrEmployeeNotFound
	}
	if err != nil {
		return Employee{}, err
	}
	return e, nil
}
