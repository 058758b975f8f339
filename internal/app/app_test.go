package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/raohuzaifa081-blip/webotixscrm/internal/data/repos/testutil"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := DefaultConfig()
	cfg.Auth.JWTSecret = "e2e-secret"
	cfg.Auth.BcryptCost = bcrypt.MinCost

	a, err := assemble(testutil.Logger(t), cfg, testutil.DB(t))
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	t.Cleanup(func() {
		if a.cancel != nil {
			a.cancel()
		}
		_ = a.SSEBus.Close()
	})
	if err := a.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	return a
}

func do(t *testing.T, a *App, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func login(t *testing.T, a *App, email, secret string) string {
	t.Helper()
	rec := do(t, a, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "secret": secret})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status=%d body=%s", email, rec.Code, rec.Body.String())
	}
	var res struct {
		Token string `json:"token"`
	}
	decode(t, rec, &res)
	if res.Token == "" {
		t.Fatalf("login %s: empty token", email)
	}
	return res.Token
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

func TestOnboardingWorkflowEndToEnd(t *testing.T) {
	a := newTestApp(t)
	adminToken := login(t, a, "admin@webotixs.com", "admin123")

	rec := do(t, a, http.MethodPost, "/api/admin/clients", adminToken, map[string]string{
		"name":        "Lena Brooks",
		"email":       "lena@brooks.io",
		"password":    "brooks123",
		"projectName": "Brooks Storefront",
		"deadline":    "2025-09-30",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("onboard: status=%d body=%s", rec.Code, rec.Body.String())
	}
	var onboarded struct {
		Message string `json:"message"`
		Project struct {
			ID       string `json:"id"`
			Status   string `json:"status"`
			Deadline string `json:"deadline"`
			Progress int    `json:"progress"`
		} `json:"project"`
	}
	decode(t, rec, &onboarded)
	if onboarded.Message != "Client and workflow created successfully" {
		t.Fatalf("onboard message: got=%q", onboarded.Message)
	}
	if onboarded.Project.Status != "Onboarding" || onboarded.Project.Progress != 0 || onboarded.Project.Deadline != "2025-09-30" {
		t.Fatalf("onboard project: got=%+v", onboarded.Project)
	}

	dup := do(t, a, http.MethodPost, "/api/admin/clients", adminToken, map[string]string{
		"name": "Lena Again", "email": "lena@brooks.io", "secret": "x", "projectName": "Other", "deadline": "2025-10-01",
	})
	if dup.Code != http.StatusBadRequest {
		t.Fatalf("duplicate onboard: status=%d body=%s", dup.Code, dup.Body.String())
	}

	teamToken := login(t, a, "team@webotixs.com", "team123")
	rec = do(t, a, http.MethodGet, "/api/team/projects", teamToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("team projects: status=%d body=%s", rec.Code, rec.Body.String())
	}
	var projects []struct {
		ID    string `json:"id"`
		Tasks []struct {
			ID        string `json:"id"`
			Title     string `json:"title"`
			CanUpdate *bool  `json:"canUpdate"`
		} `json:"tasks"`
	}
	decode(t, rec, &projects)

	var ownTask, otherTask string
	for _, p := range projects {
		if p.ID != onboarded.Project.ID {
			continue
		}
		if len(p.Tasks) != 4 {
			t.Fatalf("stage tasks: want=4 got=%d", len(p.Tasks))
		}
		for _, task := range p.Tasks {
			if task.CanUpdate == nil {
				t.Fatalf("task %s: canUpdate missing", task.Title)
			}
			if *task.CanUpdate {
				ownTask = task.ID
			} else if otherTask == "" {
				otherTask = task.ID
			}
		}
	}
	if ownTask == "" || otherTask == "" {
		t.Fatalf("expected one owned and one foreign task: own=%q other=%q", ownTask, otherTask)
	}

	rec = do(t, a, http.MethodPatch, "/api/team/tasks/"+otherTask, teamToken, map[string]string{"status": "Completed"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign task: status=%d body=%s", rec.Code, rec.Body.String())
	}
	var eb errorBody
	decode(t, rec, &eb)
	if eb.Error.Message != "You can only update your own tasks" {
		t.Fatalf("foreign task message: got=%q", eb.Error.Message)
	}

	rec = do(t, a, http.MethodPatch, "/api/team/tasks/"+ownTask, teamToken, map[string]string{"status": "Done"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid status: status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = do(t, a, http.MethodPatch, "/api/team/tasks/"+ownTask, teamToken, map[string]string{"status": "Completed"})
	if rec.Code != http.StatusOK {
		t.Fatalf("own task: status=%d body=%s", rec.Code, rec.Body.String())
	}

	clientToken := login(t, a, "lena@brooks.io", "brooks123")
	rec = do(t, a, http.MethodGet, "/api/client/dashboard", clientToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard: status=%d body=%s", rec.Code, rec.Body.String())
	}
	var dash struct {
		Project struct {
			Name     string `json:"name"`
			Status   string `json:"status"`
			Progress int    `json:"progress"`
		} `json:"project"`
		Tasks []json.RawMessage `json:"tasks"`
	}
	decode(t, rec, &dash)
	if dash.Project.Name != "Brooks Storefront" || dash.Project.Progress != 25 || dash.Project.Status != "Onboarding" {
		t.Fatalf("dashboard project: got=%+v", dash.Project)
	}
	if len(dash.Tasks) != 4 {
		t.Fatalf("dashboard tasks: want=4 got=%d", len(dash.Tasks))
	}

	rec = do(t, a, http.MethodGet, "/api/admin/reports", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reports: status=%d body=%s", rec.Code, rec.Body.String())
	}
	var reports struct {
		Summary struct {
			TotalProjects  int `json:"totalProjects"`
			TotalTasks     int `json:"totalTasks"`
			CompletedTasks int `json:"completedTasks"`
		} `json:"summary"`
	}
	decode(t, rec, &reports)
	if reports.Summary.TotalProjects != 2 || reports.Summary.TotalTasks != 7 || reports.Summary.CompletedTasks != 2 {
		t.Fatalf("report summary: got=%+v", reports.Summary)
	}
}

func TestRouteGuards(t *testing.T) {
	a := newTestApp(t)
	clientToken := login(t, a, "client@webotixs.com", "client123")

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
		code   string
	}{
		{"no token", http.MethodGet, "/api/auth/me", "", http.StatusUnauthorized, "unauthenticated"},
		{"bad token", http.MethodGet, "/api/auth/me", "not-a-jwt", http.StatusUnauthorized, "unauthenticated"},
		{"client on admin route", http.MethodGet, "/api/admin/reports", clientToken, http.StatusForbidden, "forbidden"},
		{"client on team route", http.MethodGet, "/api/team/tasks", clientToken, http.StatusForbidden, "forbidden"},
		{"unknown route", http.MethodGet, "/api/nope", "", http.StatusNotFound, "not_found"},
		{"query token outside the stream", http.MethodGet, "/api/auth/me?token=" + clientToken, "", http.StatusUnauthorized, "unauthenticated"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, a, tc.method, tc.path, tc.token, nil)
			if rec.Code != tc.want {
				t.Fatalf("status: want=%d got=%d body=%s", tc.want, rec.Code, rec.Body.String())
			}
			var eb errorBody
			decode(t, rec, &eb)
			if eb.Error.Code != tc.code {
				t.Fatalf("code: want=%s got=%s", tc.code, eb.Error.Code)
			}
		})
	}

	rec := do(t, a, http.MethodGet, "/api/auth/me", clientToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: status=%d body=%s", rec.Code, rec.Body.String())
	}
	var me struct {
		User map[string]any `json:"user"`
	}
	decode(t, rec, &me)
	if me.User["email"] != "client@webotixs.com" {
		t.Fatalf("me email: got=%v", me.User["email"])
	}
	if _, leaked := me.User["secret"]; leaked {
		t.Fatalf("me leaked the secret hash")
	}
}

func TestLoginRejectsWrongSecret(t *testing.T) {
	a := newTestApp(t)
	rec := do(t, a, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "admin@webotixs.com", "secret": "nope"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: want=401 got=%d", rec.Code)
	}
	var eb errorBody
	decode(t, rec, &eb)
	if eb.Error.Message != "Invalid email or password" {
		t.Fatalf("message: got=%q", eb.Error.Message)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	a := newTestApp(t)
	for _, path := range []string{"/healthcheck", "/readyz", "/metrics"} {
		rec := do(t, a, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status=%d body=%s", path, rec.Code, rec.Body.String())
		}
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	a := newTestApp(t)
	res, err := a.Seed(context.Background())
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if res.UsersCreated != 0 || res.ProjectsCreated != 0 {
		t.Fatalf("reseed created rows: %+v", res)
	}
}
