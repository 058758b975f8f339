package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/raohuzaifa081-blip/webotixscrm/internal/http/response"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/ctxutil"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/logger"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/services"
)

type ClientHandler struct {
	log       *logger.Logger
	dashboard services.DashboardService
}

func NewClientHandler(log *logger.Logger, dashboard services.DashboardService) *ClientHandler {
	return &ClientHandler{log: log.With("handler", "ClientHandler"), dashboard: dashboard}
}

// GET /api/client/dashboard
func (h *ClientHandler) Dashboard(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	d, err := h.dashboard.ClientDashboard(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, d)
}
