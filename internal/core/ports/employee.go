package ports

import (
	"context"
	"time"

	"github.com/opratem/schoolems/internal/core/domain"
)

// EmployeeInput carries the writable fields of an HR record. EmployeeID is
// generated when left empty on create.
type EmployeeInput struct {
	EmployeeID  string
	Name        string
	Department  string
	Position    string
	ContactInfo string
	StartDate   time.Time
}

// EmployeeService defines the employee use cases.
type EmployeeService interface {
	List(ctx context.Context) ([]domain.Employee, error)
	Get(ctx context.Context, id string) (*domain.Employee, error)
	Create(ctx context.Context, input EmployeeInput) (*domain.Employee, error)
	Update(ctx context.Context, id string, input EmployeeInput) (*domain.Employee, error)
	// Delete removes the employee and, explicitly, all of their leave
	// requests.
	Delete(ctx context.Context, id string) error
}

// EmployeeRepository defines employee persistence.
type EmployeeRepository interface {
	Insert(ctx context.Context, e *domain.Employee) (*domain.Employee, error)
	Update(ctx context.Context, e *domain.Employee) (*domain.Employee, error)
	FindByID(ctx context.Context, id string) (*domain.Employee, error)
	FindAll(ctx context.Context) ([]domain.Employee, error)
	Delete(ctx context.Context, id string) error
}
