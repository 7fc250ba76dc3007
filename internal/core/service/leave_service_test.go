package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/opratem/schoolems/internal/core/domain"
	"github.com/opratem/schoolems/internal/core/ports"
)

type stubLeaveRepo struct {
	leaves map[string]*domain.LeaveRequest
	nextID int
}

func newStubLeaveRepo() *stubLeaveRepo {
	return &stubLeaveRepo{leaves: make(map[string]*domain.LeaveRequest)}
}

func (r *stubLeaveRepo) Insert(ctx context.Context, lr *domain.LeaveRequest) (*domain.LeaveRequest, error) {
	r.nextID++
	cp := *lr
	cp.ID = "leave_" + strconv.Itoa(r.nextID)
	r.leaves[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *stubLeaveRepo) Update(ctx context.Context, lr *domain.LeaveRequest) (*domain.LeaveRequest, error) {
	if _, ok := r.leaves[lr.ID]; !ok {
		return nil, domain.ErrLeaveNotFound
	}
	cp := *lr
	r.leaves[lr.ID] = &cp
	out := cp
	return &out, nil
}

func (r *stubLeaveRepo) FindByID(ctx context.Context, id string) (*domain.LeaveRequest, error) {
	lr, ok := r.leaves[id]
	if !ok {
		return nil, domain.ErrLeaveNotFound
	}
	cp := *lr
	return &cp, nil
}

func (r *stubLeaveRepo) FindAll(ctx context.Context) ([]domain.LeaveRequest, error) {
	out := make([]domain.LeaveRequest, 0, len(r.leaves))
	for _, lr := range r.leaves {
		out = append(out, *lr)
	}
	return out, nil
}

func (r *stubLeaveRepo) FindByEmployee(ctx context.Context, employeeID string) ([]domain.LeaveRequest, error) {
	var out []domain.LeaveRequest
	for _, lr := range r.leaves {
		if lr.EmployeeID == employeeID {
			out = append(out, *lr)
		}
	}
	return out, nil
}

func (r *stubLeaveRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.leaves[id]; !ok {
		return domain.ErrLeaveNotFound
	}
	delete(r.leaves, id)
	return nil
}

func (r *stubLeaveRepo) DeleteByEmployee(ctx context.Context, employeeID string) error {
	for id, lr := range r.leaves {
		if lr.EmployeeID == employeeID {
			delete(r.leaves, id)
		}
	}
	return nil
}

func seedEmployee(t *testing.T, repo *stubEmployeeRepo, employeeID string) *domain.Employee {
	t.Helper()
	e, err := repo.Insert(context.Background(), &domain.Employee{
		EmployeeID: employeeID,
		Name:       "Test Person",
		Department: "Admin",
	})
	if err != nil {
		t.Fatalf("seed employee: %v", err)
	}
	return e
}

func day(offset int) time.Time {
	return time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func TestLeaveSubmit_StartsPending(t *testing.T) {
	employees := newStubEmployeeRepo()
	emp := seedEmployee(t, employees, "E1")
	svc := NewLeaveRequestService(newStubLeaveRepo(), employees, zerolog.Nop())

	lr, err := svc.Submit(context.Background(), ports.SubmitLeaveInput{
		EmployeeID: emp.ID,
		LeaveType:  "ANNUAL",
		StartDate:  day(0),
		EndDate:    day(5),
		Reason:     "holiday",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if lr.Status != domain.LeavePending {
		t.Fatalf("new requests must start PENDING, got %s", lr.Status)
	}
	if lr.LeaveType != domain.LeaveAnnual {
		t.Fatalf("unexpected type %s", lr.LeaveType)
	}
}

func TestLeaveSubmit_RejectsUnknownTypeAndBadDates(t *testing.T) {
	employees := newStubEmployeeRepo()
	emp := seedEmployee(t, employees, "E1")
	svc := NewLeaveRequestService(newStubLeaveRepo(), employees, zerolog.Nop())

	ctx := context.Background()
	_, err := svc.Submit(ctx, ports.SubmitLeaveInput{
		EmployeeID: emp.ID, LeaveType: "HOLIDAY", StartDate: day(0), EndDate: day(1), Reason: "x",
	})
	if !errors.Is(err, domain.ErrInvalidLeave) {
		t.Fatalf("unknown type: got %v", err)
	}

	_, err = svc.Submit(ctx, ports.SubmitLeaveInput{
		EmployeeID: emp.ID, LeaveType: "SICK", StartDate: day(5), EndDate: day(0), Reason: "x",
	})
	if !errors.Is(err, domain.ErrInvalidLeave) {
		t.Fatalf("end before start: got %v", err)
	}
}

func TestLeaveSubmit_UnknownEmployee(t *testing.T) {
	svc := NewLeaveRequestService(newStubLeaveRepo(), newStubEmployeeRepo(), zerolog.Nop())

	_, err := svc.Submit(context.Background(), ports.SubmitLeaveInput{
		EmployeeID: "ghost", LeaveType: "SICK", StartDate: day(0), EndDate: day(1), Reason: "flu",
	})
	if !errors.Is(err, domain.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestLeaveUpdateStatus(t *testing.T) {
	employees := newStubEmployeeRepo()
	emp := seedEmployee(t, employees, "E1")
	repo := newStubLeaveRepo()
	svc := NewLeaveRequestService(repo, employees, zerolog.Nop())

	ctx := context.Background()
	lr, err := svc.Submit(ctx, ports.SubmitLeaveInput{
		EmployeeID: emp.ID, LeaveType: "SICK", StartDate: day(0), EndDate: day(2), Reason: "flu",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	updated, err := svc.UpdateStatus(ctx, lr.ID, "APPROVED")
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != domain.LeaveApproved {
		t.Fatalf("expected APPROVED, got %s", updated.Status)
	}

	// PENDING is the initial state, never a review target.
	if _, err := svc.UpdateStatus(ctx, lr.ID, "PENDING"); !errors.Is(err, domain.ErrInvalidLeave) {
		t.Fatalf("PENDING must not be accepted, got %v", err)
	}
}

func TestLeaveDeletePending_OnlyPending(t *testing.T) {
	employees := newStubEmployeeRepo()
	emp := seedEmployee(t, employees, "E1")
	repo := newStubLeaveRepo()
	svc := NewLeaveRequestService(repo, employees, zerolog.Nop())

	ctx := context.Background()
	lr, err := svc.Submit(ctx, ports.SubmitLeaveInput{
		EmployeeID: emp.ID, LeaveType: "ANNUAL", StartDate: day(0), EndDate: day(1), Reason: "trip",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, lr.ID, "REJECTED"); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if err := svc.DeletePending(ctx, lr.ID, ""); !errors.Is(err, domain.ErrLeaveNotPending) {
		t.Fatalf("reviewed request must not be deletable, got %v", err)
	}

	pending, err := svc.Submit(ctx, ports.SubmitLeaveInput{
		EmployeeID: emp.ID, LeaveType: "ANNUAL", StartDate: day(3), EndDate: day(4), Reason: "trip",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := svc.DeletePending(ctx, pending.ID, ""); err != nil {
		t.Fatalf("delete pending: %v", err)
	}
	if _, err := repo.FindByID(ctx, pending.ID); !errors.Is(err, domain.ErrLeaveNotFound) {
		t.Fatalf("request must be gone, got %v", err)
	}
}

func TestLeaveDeletePending_OwnershipEnforced(t *testing.T) {
	employees := newStubEmployeeRepo()
	emp := seedEmployee(t, employees, "E1")
	repo := newStubLeaveRepo()
	svc := NewLeaveRequestService(repo, employees, zerolog.Nop())

	ctx := context.Background()
	lr, err := svc.Submit(ctx, ports.SubmitLeaveInput{
		EmployeeID: emp.ID, LeaveType: "ANNUAL", StartDate: day(0), EndDate: day(1), Reason: "trip",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := svc.DeletePending(ctx, lr.ID, "someone_else"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("foreign owner must be refused, got %v", err)
	}
	if _, err := repo.FindByID(ctx, lr.ID); err != nil {
		t.Fatalf("request must survive a refused delete: %v", err)
	}

	if err := svc.DeletePending(ctx, lr.ID, emp.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
}
