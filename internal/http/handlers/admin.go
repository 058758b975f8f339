package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/raohuzaifa081-blip/webotixscrm/internal/domain"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/domain/workflow"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/http/response"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/logger"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/services"
)

type AdminHandler struct {
	log       *logger.Logger
	workflow  services.WorkflowService
	reports   services.ReportService
	directory services.DirectoryService
}

func NewAdminHandler(log *logger.Logger, wf services.WorkflowService, reports services.ReportService, directory services.DirectoryService) *AdminHandler {
	return &AdminHandler{
		log:       log.With("handler", "AdminHandler"),
		workflow:  wf,
		reports:   reports,
		directory: directory,
	}
}

type onboardClientRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Secret      string `json:"secret"`
	Password    string `json:"password"`
	ProjectName string `json:"projectName"`
	Deadline    string `json:"deadline"`
}

// POST /api/admin/clients
func (h *AdminHandler) OnboardClient(c *gin.Context) {
	var req onboardClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	secret := req.Secret
	if secret == "" {
		secret = req.Password
	}
	res, err := h.workflow.OnboardClient(c.Request.Context(), services.OnboardClientRequest{
		Name:        req.Name,
		Email:       req.Email,
		Secret:      secret,
		ProjectName: req.ProjectName,
		Deadline:    req.Deadline,
	})
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{
		"message": "Client and workflow created successfully",
		"project": workflow.NewProjectView(res.Project),
	})
}

// GET /api/admin/reports
func (h *AdminHandler) Reports(c *gin.Context) {
	r, err := h.reports.AdminReports(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, r)
}

// GET /api/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.directory.ListAll(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, types.SanitizeAll(users))
}
