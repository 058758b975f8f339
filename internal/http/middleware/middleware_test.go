package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/raohuzaifa081-blip/webotixscrm/internal/domain"
	domainagg "github.com/raohuzaifa081-blip/webotixscrm/internal/domain/aggregates"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/observability"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/ctxutil"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/logger"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/services"
)

// stubAuth accepts one token for one user.
type stubAuth struct {
	token string
	user  *types.User
}

func (s *stubAuth) Login(context.Context, string, string) (*services.LoginResult, error) {
	return nil, nil
}
func (s *stubAuth) IssueToken(*types.User) (string, error) { return s.token, nil }
func (s *stubAuth) Authenticate(ctx context.Context, tok string) (*types.User, error) {
	if tok != s.token {
		return nil, domainagg.Unauthenticated("auth.authenticate", "Invalid token")
	}
	return s.user, nil
}
func (s *stubAuth) SetContextFromToken(ctx context.Context, tok string) (context.Context, *types.User, error) {
	u, err := s.Authenticate(ctx, tok)
	if err != nil {
		return ctx, nil, err
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{TokenString: tok, UserID: u.ID, Role: string(u.Role)}), u, nil
}
func (s *stubAuth) GetAccessTTL() time.Duration { return time.Hour }

func newAuthRouter(t *testing.T, role types.Role, allowed ...types.Role) (*gin.Engine, *stubAuth) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	auth := &stubAuth{token: "good", user: &types.User{ID: uuid.New(), Role: role}}
	am := NewAuthMiddleware(logger.Nop(), auth)
	r := gin.New()
	r.GET("/guarded", am.RequireAuth(), RequireRole(allowed...), func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"userId": rd.UserID.String()})
	})
	return r, auth
}

type envelope struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

func do(r http.Handler, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func TestRequireAuth(t *testing.T) {
	r, auth := newAuthRouter(t, types.RoleTeam, types.RoleTeam)

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	rec, env := do(r, req)
	if rec.Code != http.StatusUnauthorized || env.Error.Message != "Not authorized, no token provided" {
		t.Fatalf("missing token: code=%d body=%s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rec, env = do(r, req)
	if rec.Code != http.StatusUnauthorized || env.Error.Message != "Invalid token" || env.Error.Code != "unauthenticated" {
		t.Fatalf("bad token: code=%d body=%s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "bearer good")
	rec, _ = do(r, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), auth.user.ID.String()) {
		t.Fatalf("header token: code=%d body=%s", rec.Code, rec.Body.String())
	}

	// Query tokens are reserved for the event stream.
	req = httptest.NewRequest(http.MethodGet, "/guarded?token=good", nil)
	rec, env = do(r, req)
	if rec.Code != http.StatusUnauthorized || env.Error.Message != "Not authorized, no token provided" {
		t.Fatalf("query token on API route: code=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestRequireStreamAuthAcceptsQueryToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := &stubAuth{token: "good", user: &types.User{ID: uuid.New(), Role: types.RoleClient}}
	am := NewAuthMiddleware(logger.Nop(), auth)
	r := gin.New()
	r.GET("/stream", am.RequireStreamAuth(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec, _ := do(r, httptest.NewRequest(http.MethodGet, "/stream?token=good", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("query token: code=%d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/stream", nil)
	req.Header.Set("Authorization", "Bearer good")
	if rec, _ = do(r, req); rec.Code != http.StatusNoContent {
		t.Fatalf("header token: code=%d", rec.Code)
	}

	rec, env := do(r, httptest.NewRequest(http.MethodGet, "/stream?token=bad", nil))
	if rec.Code != http.StatusUnauthorized || env.Error.Code != "unauthenticated" {
		t.Fatalf("bad query token: code=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestRequireRole(t *testing.T) {
	r, _ := newAuthRouter(t, types.RoleClient, types.RoleTeam, types.RoleAdmin)
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec, env := do(r, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("want 403 got %d", rec.Code)
	}
	if env.Error.Message != "User role client is not authorized" || env.Error.Code != "forbidden" {
		t.Fatalf("envelope: %+v", env)
	}
}

func TestAttachTraceContextEchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	var seen *ctxutil.TraceData
	r.GET("/x", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-Id") != "req-123" {
		t.Fatalf("request id header: %q", rec.Header().Get("X-Request-Id"))
	}
	if seen == nil || seen.RequestID != "req-123" || seen.TraceID == "" {
		t.Fatalf("trace data: %+v", seen)
	}
}

func TestMetricsSkipsConfiguredRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.NewMetrics()
	r := gin.New()
	r.Use(Metrics(m, "/metrics"))
	r.GET("/metrics", gin.WrapH(m.Handler()))
	r.GET("/api/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, p := range []string{"/api/ping", "/metrics", "/api/ping"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	if !strings.Contains(body, `webotixs_api_requests_total{method="GET",route="/api/ping",status="200"} 2`) {
		t.Fatalf("ping not counted:\n%s", body)
	}
	if strings.Contains(body, `route="/metrics"`) {
		t.Fatalf("scrape endpoint should not be counted")
	}
}
