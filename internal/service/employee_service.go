package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	errs "hrportal/internal/errors"
	"hrportal/internal/model"
	"hrportal/internal/repository"
)

// EmployeeService exposes the employee records the auth layer guards. The
// wider HR domain (attendance, payroll) lives outside this service.
type EmployeeService interface {
	List(ctx context.Context) ([]model.Employee, error)
	Get(ctx context.Context, id uint) (*model.Employee, error)
	Create(ctx context.Context, employee *model.Employee) error
	Update(ctx context.Context, employee *model.Employee) error
	// OwnerOf returns the owning employee id of an employee record, used by
	// the ownership gate. For an employee record the owner is the record
	// itself.
	OwnerOf(ctx context.Context, id uint) (uint, error)
}

type employeeService struct {
	employeeRepo repository.EmployeeRepository
}

// NewEmployeeService creates a new employee service.
func NewEmployeeService(employeeRepo repository.EmployeeRepository) EmployeeService {
	return &employeeService{employeeRepo: employeeRepo}
}

func (s *employeeService) List(ctx context.Context) ([]model.Employee, error) {
	return s.employeeRepo.List(ctx)
}

func (s *employeeService) Get(ctx context.Context, id uint) (*model.Employee, error) {
	employee, err := s.employeeRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("find employee: %w", err)
	}
	return employee, nil
}

func (s *employeeService) Create(ctx context.Context, employee *model.Employee) error {
	if err := s.employeeRepo.Create(ctx, employee); err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	return nil
}

func (s *employeeService) Update(ctx context.Context, employee *model.Employee) error {
	if err := s.employeeRepo.Update(ctx, employee); err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	return nil
}

func (s *employeeService) OwnerOf(ctx context.Context, id uint) (uint, error) {
	employee, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return employee.ID, nil
}
