package leave

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

type StoreAPI interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)

	InsertRequest(ctx context.Context, req Request) (Request, error)
	LockRequestTx(ctx context.Context, tx pgx.Tx, requestID string, shopIDs []string) (Request, string, error)
	DecideTx(ctx context.Context, tx pgx.Tx, requestID, status, approverID string) (Request, error)
	ListRequests(ctx context.Context, shopIDs []string, filter RequestFilter) ([]Request, error)
	ApprovedBetween(ctx context.Context, employeeID string, from, to time.Time) ([]Request, error)
	EmployeeReleasedTx(ctx context.Context, tx pgx.Tx, employeeID, fromMonth, toMonth string) (bool, error)
	ShopReleasedTx(ctx context.Context, tx pgx.Tx, shopID, fromMonth, toMonth string) (bool, error)

	InsertHolidayTx(ctx context.Context, tx pgx.Tx, h Holiday) (Holiday, error)
	DeleteHolidayTx(ctx context.Context, tx pgx.Tx, holidayID string, shopIDs []string) (Holiday, error)
	ListHolidays(ctx context.Context, shopID string, from, to time.Time) ([]Holiday, error)
}
