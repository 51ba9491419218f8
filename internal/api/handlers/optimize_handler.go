package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/devfikr/subpolish/internal/models"
	"github.com/devfikr/subpolish/internal/services"
	"github.com/devfikr/subpolish/internal/utils"
)

type OptimizeHandler struct {
	svc services.OptimizeService
}

func NewOptimizeHandler(svc services.OptimizeService) *OptimizeHandler {
	return &OptimizeHandler{svc: svc}
}

type OptimizeRequest struct {
	APIKey    string                  `json:"apiKey"`
	Model     string                  `json:"model"`
	Subtitles []models.CaptionContent `json:"subtitles" binding:"required"`
}

type OptimizeResponse struct {
	Success   bool                    `json:"success"`
	Optimized []models.CaptionContent `json:"optimized,omitempty"`
	Error     string                  `json:"error,omitempty"`
}

func (h *OptimizeHandler) Optimize(c *gin.Context) {
	const op = "OptimizeHandler.Optimize"

	var req OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeFailure(c, utils.E(utils.CodeValidation, op, "invalid request body", err))
		return
	}
	if len(req.Subtitles) == 0 {
		writeFailure(c, utils.E(utils.CodeValidation, op, "subtitles are required", nil))
		return
	}

	out, err := h.svc.Optimize(c.Request.Context(), strings.TrimSpace(req.APIKey), req.Model, req.Subtitles)
	if err != nil {
		writeFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, OptimizeResponse{Success: true, Optimized: out})
}

// writeFailure keeps the optimize path's {success, error} envelope while
// reusing the shared status mapping.
func writeFailure(c *gin.Context, err error) {
	status := utils.HTTPStatus(err)
	msg := http.StatusText(status)
	var ae *utils.AppError
	if errors.As(err, &ae) {
		msg = ae.Message
	}
	c.JSON(status, OptimizeResponse{Success: false, Error: msg})
}
