package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"hrportal/internal/model"
	"hrportal/internal/service"
)

// EmployeeHandler handles the employee endpoints the access-control layer
// guards. CRUD only; HR business logic lives outside this service.
type EmployeeHandler struct {
	employeeService service.EmployeeService
}

// NewEmployeeHandler creates a new employee handler.
func NewEmployeeHandler(employeeService service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeService: employeeService}
}

// EmployeeRequest represents an employee create/update payload.
type EmployeeRequest struct {
	FirstName  string     `json:"first_name" validate:"required,max=100"`
	LastName   string     `json:"last_name" validate:"required,max=100"`
	Email      string     `json:"email" validate:"required,email"`
	Position   string     `json:"position" validate:"max=100"`
	Department string     `json:"department" validate:"max=100"`
	HireDate   *time.Time `json:"hire_date,omitempty"`
}

// ListEmployees godoc
// @Summary List employees
// @Tags employees
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Employee
// @Failure 403 {object} errors.ErrorResponse
// @Router /employees [get]
func (h *EmployeeHandler) ListEmployees(c echo.Context) error {
	employees, err := h.employeeService.List(c.Request().Context())
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, employees)
}

// GetEmployee godoc
// @Summary Fetch one employee (owner, or admin/hr)
// @Tags employees
// @Produce json
// @Security BearerAuth
// @Param id path int true "Employee ID"
// @Success 200 {object} model.Employee
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /employees/{id} [get]
func (h *EmployeeHandler) GetEmployee(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid employee id")
	}
	employee, err := h.employeeService.Get(c.Request().Context(), uint(id))
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, employee)
}

// CreateEmployee godoc
// @Summary Create an employee (hr or admin)
// @Tags employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body EmployeeRequest true "Employee"
// @Success 201 {object} model.Employee
// @Failure 403 {object} errors.ErrorResponse
// @Router /employees [post]
func (h *EmployeeHandler) CreateEmployee(c echo.Context) error {
	var req EmployeeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	employee := &model.Employee{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Position:   req.Position,
		Department: req.Department,
	}
	if req.HireDate != nil {
		employee.HireDate = *req.HireDate
	}

	if err := h.employeeService.Create(c.Request().Context(), employee); err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusCreated, employee)
}

// UpdateEmployee godoc
// @Summary Update an employee (hr or admin)
// @Tags employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Employee ID"
// @Param request body EmployeeRequest true "Employee"
// @Success 200 {object} model.Employee
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /employees/{id} [put]
func (h *EmployeeHandler) UpdateEmployee(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid employee id")
	}

	var req EmployeeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	employee, err := h.employeeService.Get(c.Request().Context(), uint(id))
	if err != nil {
		return domainError(err)
	}
	employee.FirstName = req.FirstName
	employee.LastName = req.LastName
	employee.Email = req.Email
	employee.Position = req.Position
	employee.Department = req.Department
	if req.HireDate != nil {
		employee.HireDate = *req.HireDate
	}

	if err := h.employeeService.Update(c.Request().Context(), employee); err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, employee)
}
