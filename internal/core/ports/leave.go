package ports

import (
	"context"
	"time"

	"github.com/opratem/schoolems/internal/core/domain"
)

// SubmitLeaveInput carries a new leave request. Status is not accepted from
// callers; every request starts PENDING.
type SubmitLeaveInput struct {
	EmployeeID string
	LeaveType  string
	StartDate  time.Time
	EndDate    time.Time
	Reason     string
}

// LeaveService defines the leave-request use cases.
type LeaveService interface {
	Submit(ctx context.Context, input SubmitLeaveInput) (*domain.LeaveRequest, error)
	ListAll(ctx context.Context) ([]domain.LeaveRequest, error)
	ListForEmployee(ctx context.Context, employeeID string) ([]domain.LeaveRequest, error)
	UpdateStatus(ctx context.Context, id, status string) (*domain.LeaveRequest, error)
	// DeletePending removes a request that is still PENDING. A non-empty
	// ownerEmployeeID restricts the delete to that employee's own requests.
	DeletePending(ctx context.Context, id, ownerEmployeeID string) error
}

// LeaveRepository defines leave-request persistence.
type LeaveRepository interface {
	Insert(ctx context.Context, lr *domain.LeaveRequest) (*domain.LeaveRequest, error)
	Update(ctx context.Context, lr *domain.LeaveRequest) (*domain.LeaveRequest, error)
	FindByID(ctx context.Context, id string) (*domain.LeaveRequest, error)
	FindAll(ctx context.Context) ([]domain.LeaveRequest, error)
	FindByEmployee(ctx context.Context, employeeID string) ([]domain.LeaveRequest, error)
	Delete(ctx context.Context, id string) error
	// DeleteByEmployee backs the explicit cascade when an employee is removed.
	DeleteByEmployee(ctx context.Context, employeeID string) error
}
