package leave

import (
	"net/http"
	"strconv"

	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// gin context keys populated by middleware.AuthMiddleware
const (
	ctxKeyUserID       = "user_id"
	ctxKeyRole         = "role"
	ctxKeyDepartmentID = "department_id"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leave.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.handler")
	}
	return &Handler{service: service, logger: l}
}

func actorFromContext(c *gin.Context) (Actor, error) {
	id, err := uuid.Parse(c.GetString(ctxKeyUserID))
	if err != nil {
		return Actor{}, leaveerrors.ErrInvalidActor
	}
	role := Role(c.GetString(ctxKeyRole))
	switch role {
	case RoleEmployee, RoleManager, RoleAssistant, RoleAdmin:
	default:
		return Actor{}, leaveerrors.ErrInvalidActor
	}
	var departmentID uuid.UUID
	if v := c.GetString(ctxKeyDepartmentID); v != "" {
		departmentID, err = uuid.Parse(v)
		if err != nil {
			return Actor{}, leaveerrors.ErrInvalidActor
		}
	}
	return Actor{ID: id, Role: role, DepartmentID: departmentID}, nil
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("leave request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
		zap.Error(err),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) writeBindError(c *gin.Context, op string, err error) {
	h.logger.Warn("http "+op+" validation failed", zap.Error(err))
	h.writeServiceError(c, apperror.MapValidationError(err))
}

func (h *Handler) Create(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	h.logger.Debug("http create leave", zap.String("actor_id", actor.ID.String()))

	var req CreateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, "create leave", err)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	if resp.QuotaWarning != "" {
		response.SuccessWithWarnings(c, http.StatusCreated, resp, []string{resp.QuotaWarning})
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	filter := ListFilter{
		Status:       c.Query("status"),
		RequesterID:  c.Query("requester_id"),
		DepartmentID: c.Query("department_id"),
	}
	resp, err := h.service.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	items, meta := response.Paginate(resp, page, pageSize)
	response.Success(c, http.StatusOK, items, &meta)
}

func (h *Handler) GetByID(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Decide(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	id := c.Param("id")

	var req DecideLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, "decide leave", err)
		return
	}
	h.logger.Debug("http decide leave",
		zap.String("leave_id", id),
		zap.String("actor_id", actor.ID.String()),
		zap.String("status", req.Status),
	)

	resp, err := h.service.Decide(c.Request.Context(), actor, id, Status(req.Status), req.Comment)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Cancel(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.Cancel(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetBalance(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.GetLedger(c.Request.Context(), actor, c.Param("employee_id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) SetBalance(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	var req SetBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, "set balance", err)
		return
	}

	resp, err := h.service.SetBalance(c.Request.Context(), actor, c.Param("employee_id"), *req.TotalBalance)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
