package domain

import (
	"errors"
	"time"
)

// LeaveType categorises a leave request.
type LeaveType string

const (
	LeaveAnnual     LeaveType = "ANNUAL"
	LeaveSick       LeaveType = "SICK"
	LeavePersonal   LeaveType = "PERSONAL"
	LeaveMaternity  LeaveType = "MATERNITY"
	LeaveEmergency  LeaveType = "EMERGENCY"
	LeaveSabbatical LeaveType = "SABBATICAL"
	LeaveOther      LeaveType = "OTHER"
)

// AllLeaveTypes is the closed set of accepted leave categories.
var AllLeaveTypes = []LeaveType{
	LeaveAnnual, LeaveSick, LeavePersonal, LeaveMaternity,
	LeaveEmergency, LeaveSabbatical, LeaveOther,
}

// LeaveStatus is the review state of a request. Every request starts PENDING.
type LeaveStatus string

const (
	LeavePending  LeaveStatus = "PENDING"
	LeaveApproved LeaveStatus = "APPROVED"
	LeaveRejected LeaveStatus = "REJECTED"
)

var ErrLeaveNotFound = errors.New("leave request not found")
var ErrLeaveNotPending = errors.New("leave request is no longer pending")
var ErrInvalidLeave = errors.New("invalid leave request")

// ParseLeaveType maps a free-form name onto the closed leave-type set.
func ParseLeaveType(name string) (LeaveType, error) {
	for _, lt := range AllLeaveTypes {
		if LeaveType(name) == lt {
			return lt, nil
		}
	}
	return "", ErrInvalidLeave
}

// ParseLeaveStatus maps a name onto a reviewable status. PENDING is not a
// valid review target, so only APPROVED and REJECTED parse.
func ParseLeaveStatus(name string) (LeaveStatus, error) {
	switch LeaveStatus(name) {
	case LeaveApproved:
		return LeaveApproved, nil
	case LeaveRejected:
		return LeaveRejected, nil
	}
	return "", ErrInvalidLeave
}

// LeaveRequest records one employee's request for time off.
type LeaveRequest struct {
	ID         string      `json:"id"`
	EmployeeID string      `json:"employee_id"`
	LeaveType  LeaveType   `json:"leave_type"`
	StartDate  time.Time   `json:"start_date"`
	EndDate    time.Time   `json:"end_date"`
	Reason     string      `json:"reason"`
	Status     LeaveStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}
