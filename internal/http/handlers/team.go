package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/raohuzaifa081-blip/webotixscrm/internal/domain/workflow"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/http/response"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/ctxutil"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/logger"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/services"
)

type TeamHandler struct {
	log    *logger.Logger
	ledger services.TaskLedger
}

func NewTeamHandler(log *logger.Logger, ledger services.TaskLedger) *TeamHandler {
	return &TeamHandler{log: log.With("handler", "TeamHandler"), ledger: ledger}
}

// GET /api/team/tasks
func (h *TeamHandler) MyTasks(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	tasks, err := h.ledger.ListByAssignee(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, tasks)
}

// GET /api/team/projects
func (h *TeamHandler) Projects(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	projects, err := h.ledger.ListAllWithTasks(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, projects)
}

// PATCH /api/team/tasks/:taskId
func (h *TeamHandler) UpdateTaskStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status"`
	}
	// A missing or malformed body leaves status empty, which the ledger
	// rejects after the task lookup.
	_ = c.ShouldBindJSON(&req)

	rd := ctxutil.GetRequestData(c.Request.Context())
	task, err := h.ledger.SetStatus(c.Request.Context(), c.Param("taskId"), req.Status, rd.UserID)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"task": workflow.NewTaskView(task, "")})
}
