package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/cmdstash/internal/services"
	"github.com/charlesng35/cmdstash/pkg/response"
)

type ActivityHandler struct {
	svc *services.AuditService
}

func NewActivityHandler(svc *services.AuditService) *ActivityHandler {
	return &ActivityHandler{svc: svc}
}

// List handles GET /api/activity
func (h *ActivityHandler) List(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, err := h.svc.List(requestContext(c), userID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, entries)
}
