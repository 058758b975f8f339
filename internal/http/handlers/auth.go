package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/raohuzaifa081-blip/webotixscrm/internal/domain"
	domainagg "github.com/raohuzaifa081-blip/webotixscrm/internal/domain/aggregates"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/http/response"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/ctxutil"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/logger"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/services"
)

type AuthHandler struct {
	log         *logger.Logger
	authService services.AuthService
	directory   services.DirectoryService
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService, directory services.DirectoryService) *AuthHandler {
	return &AuthHandler{log: log.With("handler", "AuthHandler"), authService: authService, directory: directory}
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Secret   string `json:"secret"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	secret := req.Secret
	if secret == "" {
		secret = req.Password
	}
	res, err := ah.authService.Login(c.Request.Context(), req.Email, secret)
	if err != nil {
		response.RespondAPIError(c, ah.log, err)
		return
	}
	response.RespondOK(c, res)
}

// Me returns the caller as resolved from the directory on this request.
func (ah *AuthHandler) Me(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondAPIError(c, ah.log, domainagg.Unauthenticated("auth.me", "Not authorized, no token provided"))
		return
	}
	u, err := ah.directory.FindByID(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondAPIError(c, ah.log, err)
		return
	}
	if u == nil {
		response.RespondAPIError(c, ah.log, domainagg.Unauthenticated("auth.me", "Invalid token"))
		return
	}
	response.RespondOK(c, gin.H{"user": types.Sanitize(u)})
}
