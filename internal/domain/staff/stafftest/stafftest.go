// Package stafftest is an in-memory employee directory for service tests.
package stafftest

import (
	"context"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"shopledger/internal/domain/staff"
)

type Directory struct {
	Employees map[string]staff.Employee
	Locks     int
}

func New(employees ...staff.Employee) *Directory {
	d := &Directory{Employees: map[string]staff.Employee{}}
	for _, e := range employees {
		d.Employees[e.ID] = e
	}
	return d
}

func (d *Directory) Find(ctx context.Context, employeeID string, shopIDs []string) (staff.Employee, error) {
	e, ok := d.Employees[employeeID]
	if !ok || !slices.Contains(shopIDs, e.ShopID) {
		return staff.Employee{}, staff.ErrEmployeeNotFound
	}
	return e, nil
}

func (d *Directory) LockTx(ctx context.Context, tx pgx.Tx, employeeID string, shopIDs []string) (staff.Employee, error) {
	d.Locks++
	return d.Find(ctx, employeeID, shopIDs)
}

func (d *Directory) UpdateBaseSalaryTx(ctx context.Context, tx pgx.Tx, employeeID string, amount decimal.Decimal) error {
	e, ok := d.Employees[employeeID]
	if !ok {
		return staff.ErrEmployeeNotFound
	}
	e.BaseSalary = amount
	d.Employees[employeeID] = e
	return nil
}
