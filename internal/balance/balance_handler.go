package balance

import (
	"errors"
	"net/http"

	balanceerrors "go-leave/internal/balance/errors"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("balance.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	var insufficient *balanceerrors.InsufficientBalanceError
	if errors.As(err, &insufficient) {
		appErr := insufficient.ToApp()
		response.Error(c, appErr.HTTPStatus, appErr.Code, appErr.Message, gin.H{
			"available": insufficient.Available,
			"requested": insufficient.Requested,
		})
		return
	}

	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("balance request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// GetMine serves the remaining-balance widget for the logged-in user.
func (h *Handler) GetMine(c *gin.Context) {
	userID := c.GetString("user_id")

	resp, err := h.service.GetBalance(c.Request.Context(), userID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetMyHistory(c *gin.Context) {
	userID := c.GetString("user_id")

	resp, err := h.service.History(c.Request.Context(), userID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Adjust(c *gin.Context) {
	targetID := c.Param("id")
	actorID := c.GetString("user_id")

	var req AdjustBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http adjust balance validation failed", zap.Error(err))
		appErr := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, appErr.Status, appErr.Code, appErr.Message, nil)
		return
	}

	resp, err := h.service.Adjust(c.Request.Context(), targetID, *req.TotalDays, actorID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetUserHistory(c *gin.Context) {
	targetID := c.Param("id")

	resp, err := h.service.History(c.Request.Context(), targetID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
