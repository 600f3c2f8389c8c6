package leave

type CreateLeaveRequest struct {
	LeaveType string `json:"leave_type" binding:"required,oneof=annual sick maternity paternity special other"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Reason    string `json:"reason" binding:"required"`
}

type DecideLeaveRequest struct {
	Status  string `json:"status" binding:"required,oneof=manager_approved approved rejected"`
	Comment string `json:"comment"`
}

type SetBalanceRequest struct {
	TotalBalance *int `json:"total_balance" binding:"required,gte=0"`
}

// ListFilter narrows List results. Empty fields match everything; the
// service further scopes the filter to what the actor may see.
type ListFilter struct {
	Status       string
	RequesterID  string
	DepartmentID string
}

type LeaveResponse struct {
	ID              string  `json:"id"`
	RequesterID     string  `json:"requester_id"`
	DepartmentID    string  `json:"department_id"`
	LeaveType       string  `json:"leave_type"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	ChargeableDays  int     `json:"chargeable_days"`
	Reason          string  `json:"reason"`
	Status          string  `json:"status"`
	DecisionComment string  `json:"decision_comment,omitempty"`
	DecidedBy       *string `json:"decided_by,omitempty"`
	DecidedAt       *string `json:"decided_at,omitempty"`
	CreatedAt       string  `json:"created_at"`
	QuotaWarning    string  `json:"quota_warning,omitempty"`
}

type LedgerResponse struct {
	EmployeeID   string `json:"employee_id"`
	TotalBalance int    `json:"total_balance"`
	Reserved     int    `json:"reserved"`
	Available    int    `json:"available"`
	Overdrawn    bool   `json:"overdrawn"`
}
