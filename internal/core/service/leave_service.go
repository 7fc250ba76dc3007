package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/opratem/schoolems/internal/core/domain"
	"github.com/opratem/schoolems/internal/core/ports"
)

// LeaveRequestService implements the leave-request use cases.
type LeaveRequestService struct {
	repo      ports.LeaveRepository
	employees ports.EmployeeRepository
	log       zerolog.Logger
	now       func() time.Time
}

func NewLeaveRequestService(repo ports.LeaveRepository, employees ports.EmployeeRepository, log zerolog.Logger) *LeaveRequestService {
	return &LeaveRequestService{repo: repo, employees: employees, log: log, now: time.Now}
}

// Submit files a new request for an existing employee. The status always
// starts PENDING regardless of what the caller sent.
func (s *LeaveRequestService) Submit(ctx context.Context, input ports.SubmitLeaveInput) (*domain.LeaveRequest, error) {
	if input.EmployeeID == "" || input.Reason == "" {
		return nil, domain.ErrInvalidLeave
	}

	leaveType, err := domain.ParseLeaveType(input.LeaveType)
	if err != nil {
		return nil, err
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() || input.EndDate.Before(input.StartDate) {
		return nil, domain.ErrInvalidLeave
	}

	if _, err := s.employees.FindByID(ctx, input.EmployeeID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	created, err := s.repo.Insert(ctx, &domain.LeaveRequest{
		EmployeeID: input.EmployeeID,
		LeaveType:  leaveType,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		Reason:     input.Reason,
		Status:     domain.LeavePending,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("employee_id", input.EmployeeID).Str("type", string(leaveType)).Msg("leave request submitted")
	return created, nil
}

func (s *LeaveRequestService) ListAll(ctx context.Context) ([]domain.LeaveRequest, error) {
	return s.repo.FindAll(ctx)
}

func (s *LeaveRequestService) ListForEmployee(ctx context.Context, employeeID string) ([]domain.LeaveRequest, error) {
	if _, err := s.employees.FindByID(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.repo.FindByEmployee(ctx, employeeID)
}

// UpdateStatus moves a request to APPROVED or REJECTED.
func (s *LeaveRequestService) UpdateStatus(ctx context.Context, id, status string) (*domain.LeaveRequest, error) {
	next, err := domain.ParseLeaveStatus(status)
	if err != nil {
		return nil, err
	}

	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Status = next
	req.UpdatedAt = s.now().UTC()
	updated, err := s.repo.Update(ctx, req)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("id", id).Str("status", string(next)).Msg("leave request reviewed")
	return updated, nil
}

// DeletePending removes a request that has not been reviewed yet. When
// ownerEmployeeID is set, requests belonging to anyone else are refused.
func (s *LeaveRequestService) DeletePending(ctx context.Context, id, ownerEmployeeID string) error {
	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if ownerEmployeeID != "" && req.EmployeeID != ownerEmployeeID {
		return domain.ErrForbidden
	}
	if req.Status != domain.LeavePending {
		return domain.ErrLeaveNotPending
	}
	return s.repo.Delete(ctx, id)
}
