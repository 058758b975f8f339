package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/raohuzaifa081-blip/webotixscrm/internal/domain"
	domainagg "github.com/raohuzaifa081-blip/webotixscrm/internal/domain/aggregates"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/http/response"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/apierr"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/ctxutil"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/logger"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/services"
)

const noTokenMessage = "Not authorized, no token provided"

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), authService: authService}
}

// RequireAuth resolves the bearer token to a directory user and attaches it
// to the request context. Only the Authorization header is read.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return am.authenticate(bearerToken)
}

// RequireStreamAuth is RequireAuth for the event stream, which also accepts
// ?token= because EventSource cannot set headers.
func (am *AuthMiddleware) RequireStreamAuth() gin.HandlerFunc {
	return am.authenticate(func(c *gin.Context) string {
		if tok := bearerToken(c); tok != "" {
			return tok
		}
		return strings.TrimSpace(c.Query("token"))
	})
}

func (am *AuthMiddleware) authenticate(extract func(c *gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extract(c)
		if tokenString == "" {
			response.AbortError(c, http.StatusUnauthorized, string(domainagg.CodeUnauthenticated), noTokenMessage)
			return
		}
		ctx, _, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
		if err != nil {
			ae := apierr.FromError(err)
			if ae.Status >= http.StatusInternalServerError {
				am.log.Error("token resolution failed", "error", err)
			}
			response.AbortError(c, ae.Status, ae.Code, ae.PublicMessage())
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[string(r)] = true
	}
	return func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		if rd == nil || rd.UserID == uuid.Nil {
			response.AbortError(c, http.StatusUnauthorized, string(domainagg.CodeUnauthenticated), noTokenMessage)
			return
		}
		if !allowed[rd.Role] {
			response.AbortError(c, http.StatusForbidden, string(domainagg.CodeForbidden),
				fmt.Sprintf("User role %s is not authorized", rd.Role))
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
