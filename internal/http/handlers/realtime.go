package handlers

import (
	"github.com/gin-gonic/gin"

	types "github.com/raohuzaifa081-blip/webotixscrm/internal/domain"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/http/response"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/observability"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/ctxutil"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/logger"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/realtime"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/services"
)

type RealtimeHandler struct {
	log     *logger.Logger
	hub     *realtime.SSEHub
	subs    services.SubscriptionService
	metrics *observability.Metrics
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub, subs services.SubscriptionService, metrics *observability.Metrics) *RealtimeHandler {
	return &RealtimeHandler{
		log:     log.With("handler", "RealtimeHandler"),
		hub:     hub,
		subs:    subs,
		metrics: metrics,
	}
}

// GET /api/events/stream
func (h *RealtimeHandler) Stream(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	channels, err := h.subs.ChannelsFor(c.Request.Context(), rd.UserID, types.Role(rd.Role))
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}

	client := h.hub.NewSSEClient(rd.UserID)
	for _, ch := range channels {
		h.hub.AddChannel(client, ch)
	}
	h.metrics.RealtimeClientsInc()
	defer func() {
		h.hub.CloseClient(client)
		h.metrics.RealtimeClientsDec()
	}()

	h.log.Debug("SSE stream open", "user_id", rd.UserID.String(), "channels", len(channels))
	h.hub.ServeHTTP(c.Writer, c.Request, client)
}
