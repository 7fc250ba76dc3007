package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/opratem/schoolems/internal/core/domain"
	"github.com/opratem/schoolems/internal/core/ports"
)

// EmployeeCRUDService implements the employee use cases.
type EmployeeCRUDService struct {
	repo   ports.EmployeeRepository
	leaves ports.LeaveRepository
	log    zerolog.Logger
	now    func() time.Time
}

func NewEmployeeService(repo ports.EmployeeRepository, leaves ports.LeaveRepository, log zerolog.Logger) *EmployeeCRUDService {
	return &EmployeeCRUDService{repo: repo, leaves: leaves, log: log, now: time.Now}
}

func (s *EmployeeCRUDService) List(ctx context.Context) ([]domain.Employee, error) {
	return s.repo.FindAll(ctx)
}

func (s *EmployeeCRUDService) Get(ctx context.Context, id string) (*domain.Employee, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *EmployeeCRUDService) Create(ctx context.Context, input ports.EmployeeInput) (*domain.Employee, error) {
	now := s.now().UTC()

	employeeID := input.EmployeeID
	if employeeID == "" {
		employeeID = generateEmployeeID()
	}

	created, err := s.repo.Insert(ctx, &domain.Employee{
		EmployeeID:  employeeID,
		Name:        input.Name,
		Department:  input.Department,
		Position:    input.Position,
		ContactInfo: input.ContactInfo,
		StartDate:   input.StartDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("employee_id", created.EmployeeID).Str("department", created.Department).Msg("employee created")
	return created, nil
}

func (s *EmployeeCRUDService) Update(ctx context.Context, id string, input ports.EmployeeInput) (*domain.Employee, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Name = input.Name
	existing.Department = input.Department
	existing.Position = input.Position
	existing.ContactInfo = input.ContactInfo
	existing.StartDate = input.StartDate
	if input.EmployeeID != "" {
		existing.EmployeeID = input.EmployeeID
	}
	existing.UpdatedAt = s.now().UTC()

	return s.repo.Update(ctx, existing)
}

// Delete removes the employee and all of their leave requests. The cascade
// is an explicit operation here, not a mapping-layer side effect.
func (s *EmployeeCRUDService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}

	if err := s.leaves.DeleteByEmployee(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info().Str("id", id).Msg("employee and linked leave requests deleted")
	return nil
}

// generateEmployeeID returns an identifier in the format EMP-XXXXXXXX.
func generateEmployeeID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("EMP-%08X", time.Now().UnixNano()&0xFFFFFFFF)
	}
	return fmt.Sprintf("EMP-%08X", b)
}
