package leave

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrStaleVersion is returned by UpdateDecision when the row changed since it
// was loaded.
var ErrStaleVersion = errors.New("leave request version is stale")

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *LeaveRequest) error
	FindByID(ctx context.Context, id string) (*LeaveRequest, error)
	FindAll(ctx context.Context, filter ListFilter) ([]LeaveRequest, error)
	UpdateDecision(ctx context.Context, l *LeaveRequest, expectedVersion int) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

// conn runs statements on the bound transaction when there is one.
func (r *repository) conn(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.tx != nil {
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	return r.conn(ctx).Create(l).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.conn(ctx).First(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]LeaveRequest, error) {
	db := r.conn(ctx).Model(&LeaveRequest{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.RequesterID != "" {
		db = db.Where("requester_id = ?", filter.RequesterID)
	}
	if filter.DepartmentID != "" {
		db = db.Where("department_id = ?", filter.DepartmentID)
	}

	var leaves []LeaveRequest
	err := db.Order("created_at DESC").Find(&leaves).Error
	return leaves, err
}

// UpdateDecision writes the decision fields of l if the stored version still
// equals expectedVersion, and bumps the version.
func (r *repository) UpdateDecision(ctx context.Context, l *LeaveRequest, expectedVersion int) error {
	res := r.conn(ctx).
		Model(&LeaveRequest{}).
		Where("id = ? AND version = ?", l.ID, expectedVersion).
		Updates(map[string]any{
			"status":           l.Status,
			"decision_comment": l.DecisionComment,
			"decided_by":       l.DecidedBy,
			"decided_at":       l.DecidedAt,
			"version":          expectedVersion + 1,
			"updated_at":       time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleVersion
	}
	l.Version = expectedVersion + 1
	return nil
}
