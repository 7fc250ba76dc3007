package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/opratem/schoolems/internal/core/domain"
	"github.com/opratem/schoolems/internal/core/ports"
)

// EmployeeHandler exposes the HR record endpoints.
type EmployeeHandler struct {
	employeeService ports.EmployeeService
}

func NewEmployeeHandler(employeeService ports.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeService: employeeService}
}

type employeeRequest struct {
	EmployeeID  string `json:"employee_id"`
	Name        string `json:"name" validate:"required"`
	Department  string `json:"department" validate:"required"`
	Position    string `json:"position" validate:"required"`
	ContactInfo string `json:"contact_info"`
	StartDate   string `json:"start_date" validate:"required"` // YYYY-MM-DD
}

func (r *employeeRequest) toInput() (ports.EmployeeInput, error) {
	startDate, err := parseDate(r.StartDate)
	if err != nil {
		return ports.EmployeeInput{}, err
	}
	return ports.EmployeeInput{
		EmployeeID:  r.EmployeeID,
		Name:        r.Name,
		Department:  r.Department,
		Position:    r.Position,
		ContactInfo: r.ContactInfo,
		StartDate:   startDate,
	}, nil
}

// List returns every employee record.
//
// @Summary      List employees
// @Tags         employees
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Employee
// @Failure      401  {object}  map[string]string
// @Router       /employees [get]
func (h *EmployeeHandler) List(c echo.Context) error {
	employees, err := h.employeeService.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, employees)
}

// Get returns one employee by id.
//
// @Summary      Get an employee
// @Tags         employees
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Employee record id"
// @Success      200  {object}  domain.Employee
// @Failure      404  {object}  map[string]string
// @Router       /employees/{id} [get]
func (h *EmployeeHandler) Get(c echo.Context) error {
	employee, err := h.employeeService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrEmployeeNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "employee not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, employee)
}

// Create adds an employee record.
//
// @Summary      Create an employee
// @Tags         employees
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      employeeRequest  true  "Employee details"
// @Success      201   {object}  domain.Employee
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /employees [post]
func (h *EmployeeHandler) Create(c echo.Context) error {
	var req employeeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	input, err := req.toInput()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "start_date must be YYYY-MM-DD"})
	}

	employee, err := h.employeeService.Create(c.Request().Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrEmployeeExists) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "employee id already exists"})
		}
		return err
	}
	return c.JSON(http.StatusCreated, employee)
}

// Update replaces the writable fields of an employee record.
//
// @Summary      Update an employee
// @Tags         employees
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string           true  "Employee record id"
// @Param        body  body      employeeRequest  true  "Employee details"
// @Success      200   {object}  domain.Employee
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /employees/{id} [put]
func (h *EmployeeHandler) Update(c echo.Context) error {
	var req employeeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	input, err := req.toInput()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "start_date must be YYYY-MM-DD"})
	}

	employee, err := h.employeeService.Update(c.Request().Context(), c.Param("id"), input)
	if err != nil {
		if errors.Is(err, domain.ErrEmployeeNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "employee not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, employee)
}

// Delete removes an employee and all of their leave requests.
//
// @Summary      Delete an employee
// @Tags         employees
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Employee record id"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /employees/{id} [delete]
func (h *EmployeeHandler) Delete(c echo.Context) error {
	if err := h.employeeService.Delete(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, domain.ErrEmployeeNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "employee not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Employee deleted."})
}
