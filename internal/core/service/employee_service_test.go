package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/opratem/schoolems/internal/core/domain"
	"github.com/opratem/schoolems/internal/core/ports"
)

func TestEmployeeCreate_GeneratesIDWhenMissing(t *testing.T) {
	svc := NewEmployeeService(newStubEmployeeRepo(), newStubLeaveRepo(), zerolog.Nop())

	created, err := svc.Create(context.Background(), ports.EmployeeInput{
		Name:       "Ada Obi",
		Department: "Mathematics",
		Position:   "Teacher",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasPrefix(created.EmployeeID, "EMP-") {
		t.Fatalf("expected generated EMP- id, got %q", created.EmployeeID)
	}
}

func TestEmployeeCreate_KeepsProvidedID(t *testing.T) {
	svc := NewEmployeeService(newStubEmployeeRepo(), newStubLeaveRepo(), zerolog.Nop())

	created, err := svc.Create(context.Background(), ports.EmployeeInput{
		EmployeeID: "T-042",
		Name:       "Ada Obi",
		Department: "Mathematics",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.EmployeeID != "T-042" {
		t.Fatalf("provided id must win, got %q", created.EmployeeID)
	}
}

func TestEmployeeUpdate(t *testing.T) {
	repo := newStubEmployeeRepo()
	svc := NewEmployeeService(repo, newStubLeaveRepo(), zerolog.Nop())

	ctx := context.Background()
	created, err := svc.Create(ctx, ports.EmployeeInput{EmployeeID: "T-1", Name: "Ada", Department: "Math"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(ctx, created.ID, ports.EmployeeInput{Name: "Ada Obi", Department: "Physics"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Ada Obi" || updated.Department != "Physics" {
		t.Fatalf("fields not updated: %+v", updated)
	}
	if updated.EmployeeID != "T-1" {
		t.Fatalf("empty employee id in input must not clear the existing one")
	}
}

func TestEmployeeUpdate_NotFound(t *testing.T) {
	svc := NewEmployeeService(newStubEmployeeRepo(), newStubLeaveRepo(), zerolog.Nop())

	_, err := svc.Update(context.Background(), "ghost", ports.EmployeeInput{Name: "X"})
	if !errors.Is(err, domain.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestEmployeeDelete_CascadesLeaveRequests(t *testing.T) {
	employees := newStubEmployeeRepo()
	leaves := newStubLeaveRepo()
	empSvc := NewEmployeeService(employees, leaves, zerolog.Nop())
	leaveSvc := NewLeaveRequestService(leaves, employees, zerolog.Nop())

	ctx := context.Background()
	created, err := empSvc.Create(ctx, ports.EmployeeInput{EmployeeID: "T-1", Name: "Ada", Department: "Math"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := leaveSvc.Submit(ctx, ports.SubmitLeaveInput{
			EmployeeID: created.ID, LeaveType: "ANNUAL",
			StartDate: day(i * 10), EndDate: day(i*10 + 1), Reason: "trip",
		}); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	if err := empSvc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	remaining, err := leaves.FindByEmployee(ctx, created.ID)
	if err != nil {
		t.Fatalf("find by employee: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("leave requests must be cascaded, %d remain", len(remaining))
	}
}
