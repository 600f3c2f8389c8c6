package leave

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

//go:generate mockgen -source=ledger_repo.go -destination=mock/ledger_repo_mock.go -package=mock
type LedgerRepository interface {
	WithTx(tx *sql.Tx) LedgerRepository
	FindByEmployee(ctx context.Context, employeeID string) (*QuotaLedger, error)
	SaveBalance(ctx context.Context, employeeID string, totalBalance int) (*QuotaLedger, error)
	AdjustReserved(ctx context.Context, employeeID string, delta int) (*QuotaLedger, error)
}

type ledgerRepository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) WithTx(tx *sql.Tx) LedgerRepository {
	return &ledgerRepository{db: r.db, tx: tx}
}

func (r *ledgerRepository) conn(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.tx != nil {
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *ledgerRepository) FindByEmployee(ctx context.Context, employeeID string) (*QuotaLedger, error) {
	var q QuotaLedger
	err := r.conn(ctx).First(&q, "employee_id = ?", employeeID).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// SaveBalance sets the balance granted by the ledger of record, creating the
// row when the employee has none yet. Reserved is left untouched.
func (r *ledgerRepository) SaveBalance(ctx context.Context, employeeID string, totalBalance int) (*QuotaLedger, error) {
	var q QuotaLedger
	err := r.conn(ctx).Raw(`
		INSERT INTO quota_ledgers (employee_id, total_balance, reserved, updated_at)
		VALUES (?, ?, 0, now())
		ON CONFLICT (employee_id) DO UPDATE
		SET total_balance = EXCLUDED.total_balance, updated_at = now()
		RETURNING employee_id, total_balance, reserved, updated_at
	`, employeeID, totalBalance).Scan(&q).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// AdjustReserved adds delta to the employee's reservation in one statement so
// concurrent requests for the same employee never lose an update.
func (r *ledgerRepository) AdjustReserved(ctx context.Context, employeeID string, delta int) (*QuotaLedger, error) {
	var q QuotaLedger
	err := r.conn(ctx).Raw(`
		INSERT INTO quota_ledgers (employee_id, total_balance, reserved, updated_at)
		VALUES (?, 0, ?, now())
		ON CONFLICT (employee_id) DO UPDATE
		SET reserved = quota_ledgers.reserved + EXCLUDED.reserved, updated_at = now()
		RETURNING employee_id, total_balance, reserved, updated_at
	`, employeeID, delta).Scan(&q).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}
