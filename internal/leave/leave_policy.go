package leave

// CanTransition decides whether actor may move req to target. It looks only
// at its arguments, so callers must evaluate it on every attempt with freshly
// loaded data. Rules are checked in order; anything unmatched is denied.
func CanTransition(actor Actor, req LeaveRequest, target Status) bool {
	switch actor.Role {
	case RoleAdmin:
		switch target {
		case StatusApproved:
			// final approval never skips the manager step
			return req.Status == StatusManagerApproved
		case StatusManagerApproved, StatusRejected:
			return true
		}
		return false

	case RoleManager:
		if target != StatusManagerApproved && target != StatusRejected {
			return false
		}
		return req.DepartmentID == actor.DepartmentID && req.Status == StatusPending

	case RoleEmployee, RoleAssistant:
		if target != StatusCancelled {
			return false
		}
		if req.RequesterID != actor.ID {
			return false
		}
		return req.Status == StatusPending || req.Status == StatusManagerApproved
	}
	return false
}

// CanView decides read access: requesters see their own requests, managers
// their department's, admins everything.
func CanView(actor Actor, req LeaveRequest) bool {
	switch actor.Role {
	case RoleAdmin:
		return true
	case RoleManager:
		return req.DepartmentID == actor.DepartmentID || req.RequesterID == actor.ID
	case RoleEmployee, RoleAssistant:
		return req.RequesterID == actor.ID
	}
	return false
}

// CanViewLedger allows employees to see their own balance; managers and
// admins may look at anyone's.
func CanViewLedger(actor Actor, employeeID string) bool {
	switch actor.Role {
	case RoleAdmin, RoleManager:
		return true
	case RoleEmployee, RoleAssistant:
		return actor.ID.String() == employeeID
	}
	return false
}
