package leave

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending         Status = "pending"
	StatusManagerApproved Status = "manager_approved"
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
	StatusCancelled       Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusManagerApproved, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition may leave s.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

type LeaveType string

const (
	LeaveTypeAnnual    LeaveType = "annual"
	LeaveTypeSick      LeaveType = "sick"
	LeaveTypeMaternity LeaveType = "maternity"
	LeaveTypePaternity LeaveType = "paternity"
	LeaveTypeSpecial   LeaveType = "special"
	LeaveTypeOther     LeaveType = "other"
)

func (t LeaveType) Valid() bool {
	switch t {
	case LeaveTypeAnnual, LeaveTypeSick, LeaveTypeMaternity, LeaveTypePaternity, LeaveTypeSpecial, LeaveTypeOther:
		return true
	}
	return false
}

// ConsumesQuota reports whether requests of this type hold a reservation on
// the ledger while undecided.
func (t LeaveType) ConsumesQuota() bool {
	return t == LeaveTypeAnnual
}

type Role string

const (
	RoleEmployee  Role = "employee"
	RoleManager   Role = "manager"
	RoleAssistant Role = "assistant"
	RoleAdmin     Role = "admin"
)

// Actor is the identity an operation is attempted under. It is resolved by
// the caller and trusted as given.
type Actor struct {
	ID           uuid.UUID
	Role         Role
	DepartmentID uuid.UUID
}

type LeaveRequest struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	RequesterID  uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_requester"`
	DepartmentID uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_department_status"`

	LeaveType      LeaveType `gorm:"type:varchar(20);not null"`
	StartDate      time.Time `gorm:"type:date;not null"`
	EndDate        time.Time `gorm:"type:date;not null"`
	ChargeableDays int       `gorm:"type:int;not null"`
	Reason         string    `gorm:"type:text;not null"`

	Status          Status     `gorm:"type:varchar(20);not null;default:'pending';index:idx_leave_requests_department_status"`
	DecisionComment string     `gorm:"type:text;not null;default:''"`
	DecidedBy       *uuid.UUID `gorm:"type:uuid"`
	DecidedAt       *time.Time

	Version   int `gorm:"not null;default:1"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}

// QuotaLedger tracks one employee's balance and the days held by undecided
// annual-leave requests. Reserved may exceed TotalBalance.
type QuotaLedger struct {
	EmployeeID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	TotalBalance int       `gorm:"not null;default:0"`
	Reserved     int       `gorm:"not null;default:0"`
	UpdatedAt    time.Time
}

func (QuotaLedger) TableName() string {
	return "quota_ledgers"
}

func (q QuotaLedger) Available() int {
	return q.TotalBalance - q.Reserved
}

func (q QuotaLedger) Overdrawn() bool {
	return q.Reserved > q.TotalBalance
}
