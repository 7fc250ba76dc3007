package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/opratem/schoolems/internal/api/middleware"
	"github.com/opratem/schoolems/internal/core/domain"
	"github.com/opratem/schoolems/internal/core/ports"
)

// LeaveHandler exposes the leave-request endpoints.
type LeaveHandler struct {
	leaveService ports.LeaveService
}

func NewLeaveHandler(leaveService ports.LeaveService) *LeaveHandler {
	return &LeaveHandler{leaveService: leaveService}
}

type submitLeaveRequest struct {
	EmployeeID string `json:"employee_id"`
	LeaveType  string `json:"leave_type" validate:"required,oneof=ANNUAL SICK PERSONAL MATERNITY EMERGENCY SABBATICAL OTHER"`
	StartDate  string `json:"start_date" validate:"required"` // YYYY-MM-DD
	EndDate    string `json:"end_date" validate:"required"`   // YYYY-MM-DD
	Reason     string `json:"reason"`
}

type updateLeaveStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=APPROVED REJECTED"`
}

// reviewer reports whether the caller may act on other employees' requests.
func reviewer(roles []string) bool {
	for _, role := range roles {
		if role == string(domain.RoleAdmin) || role == string(domain.RoleManager) {
			return true
		}
	}
	return false
}

// Submit files a new leave request. Regular employees may only file for
// themselves; the employee id from their token wins over the body.
//
// @Summary      Submit a leave request
// @Tags         leave-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      submitLeaveRequest  true  "Leave request"
// @Success      201   {object}  domain.LeaveRequest
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /leave-requests [post]
func (h *LeaveHandler) Submit(c echo.Context) error {
	_, roles, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req submitLeaveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if !reviewer(roles) {
		own, _ := c.Get(middleware.ContextKeyEmployeeID).(string)
		if own == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "no employee record linked to this account"})
		}
		req.EmployeeID = own
	}
	if req.EmployeeID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "employee_id is required"})
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "start_date must be YYYY-MM-DD"})
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "end_date must be YYYY-MM-DD"})
	}

	leave, err := h.leaveService.Submit(c.Request().Context(), ports.SubmitLeaveInput{
		EmployeeID: req.EmployeeID,
		LeaveType:  req.LeaveType,
		StartDate:  startDate,
		EndDate:    endDate,
		Reason:     req.Reason,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidLeave):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, domain.ErrEmployeeNotFound):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "employee not found"})
		}
		return err
	}
	return c.JSON(http.StatusCreated, leave)
}

// ListAll returns every leave request in the system.
//
// @Summary      List all leave requests
// @Tags         leave-requests
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.LeaveRequest
// @Failure      403  {object}  map[string]string
// @Router       /leave-requests [get]
func (h *LeaveHandler) ListAll(c echo.Context) error {
	leaves, err := h.leaveService.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, leaves)
}

// ListForEmployee returns one employee's requests. Regular employees may only
// list their own.
//
// @Summary      List leave requests for an employee
// @Tags         leave-requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Employee record id"
// @Success      200  {array}   domain.LeaveRequest
// @Failure      403  {object}  map[string]string
// @Router       /leave-requests/employee/{id} [get]
func (h *LeaveHandler) ListForEmployee(c echo.Context) error {
	_, roles, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	employeeID := c.Param("id")
	if !reviewer(roles) {
		own, _ := c.Get(middleware.ContextKeyEmployeeID).(string)
		if own == "" || own != employeeID {
			return echo.NewHTTPError(http.StatusForbidden, "may only view own leave requests")
		}
	}

	leaves, err := h.leaveService.ListForEmployee(c.Request().Context(), employeeID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, leaves)
}

// UpdateStatus approves or rejects a pending request.
//
// @Summary      Review a leave request
// @Tags         leave-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string                    true   "Leave request id"
// @Param        status  query     string                    false  "New status (APPROVED or REJECTED)"
// @Param        body    body      updateLeaveStatusRequest  false  "New status"
// @Success      200     {object}  domain.LeaveRequest
// @Failure      400     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Router       /leave-requests/{id}/status [put]
func (h *LeaveHandler) UpdateStatus(c echo.Context) error {
	// status arrives either as a query parameter or a JSON body
	var req updateLeaveStatusRequest
	if status := c.QueryParam("status"); status != "" {
		req.Status = status
	} else {
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
	}

	leave, err := h.leaveService.UpdateStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLeaveNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "leave request not found")
		case errors.Is(err, domain.ErrInvalidLeave):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return err
	}
	return c.JSON(http.StatusOK, leave)
}

// Delete withdraws a request that is still pending. Regular employees may
// only withdraw their own.
//
// @Summary      Delete a pending leave request
// @Tags         leave-requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Leave request id"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /leave-requests/{id} [delete]
func (h *LeaveHandler) Delete(c echo.Context) error {
	_, roles, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var owner string
	if !reviewer(roles) {
		owner, _ = c.Get(middleware.ContextKeyEmployeeID).(string)
		if owner == "" {
			return echo.NewHTTPError(http.StatusForbidden, "no employee record linked to this account")
		}
	}

	if err := h.leaveService.DeletePending(c.Request().Context(), c.Param("id"), owner); err != nil {
		switch {
		case errors.Is(err, domain.ErrLeaveNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "leave request not found")
		case errors.Is(err, domain.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, "may only delete own leave requests")
		case errors.Is(err, domain.ErrLeaveNotPending):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "only pending requests can be deleted"})
		}
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Leave request deleted."})
}
