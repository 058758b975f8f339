package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus/testutil"

	repotest "github.com/raohuzaifa081-blip/webotixscrm/internal/data/repos/testutil"
	types "github.com/raohuzaifa081-blip/webotixscrm/internal/domain"
	domainagg "github.com/raohuzaifa081-blip/webotixscrm/internal/domain/aggregates"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/realtime"
)

func onboardRequest() OnboardClientRequest {
	return OnboardClientRequest{
		Name:        "Acme Corp",
		Email:       "Owner@Acme.com",
		Secret:      "acme-secret",
		ProjectName: "Acme Storefront",
		Deadline:    "2025-09-30",
	}
}

func TestOnboardClientCreatesWorkflowAndNotifies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ui := repotest.SeedUser(t, ctx, f.db, types.RoleTeam, "ui@webotixs.com", repotest.WithSpecialization("UI/UX"))

	res, err := f.workflow.OnboardClient(ctx, onboardRequest())
	if err != nil {
		t.Fatalf("OnboardClient: %v", err)
	}
	if res.Project.Status != types.ProjectOnboarding || res.Project.Progress != 0 {
		t.Fatalf("project: status=%s progress=%d", res.Project.Status, res.Project.Progress)
	}
	if res.Project.DeadlineString() != "2025-09-30" {
		t.Fatalf("deadline: %s", res.Project.DeadlineString())
	}
	if len(res.Tasks) != 4 {
		t.Fatalf("tasks: want 4 got %d", len(res.Tasks))
	}
	if res.Tasks[1].AssignedTo == nil || *res.Tasks[1].AssignedTo != ui.ID {
		t.Fatalf("UI/UX task should go to the UI/UX specialist")
	}

	// The client can sign in with the onboarding secret.
	client, err := f.directory.FindByCredentials(ctx, "owner@acme.com", "acme-secret")
	if err != nil || client == nil || client.Role != types.RoleClient {
		t.Fatalf("client login: user=%+v err=%v", client, err)
	}

	for _, ch := range []string{realtime.AdminChannel, realtime.TeamChannel} {
		if n := f.emitter.count(ch, realtime.SSEEventClientOnboarded); n != 1 {
			t.Fatalf("ClientOnboarded events on %s: want 1 got %d", ch, n)
		}
	}
	if sent := f.sentMail(); len(sent) != 1 || sent[0].To[0].Email != "owner@acme.com" {
		t.Fatalf("welcome mail: %+v", sent)
	}
	const want = `
# HELP webotixs_workflow_clients_onboarded_total Clients provisioned with a project and stage tasks
# TYPE webotixs_workflow_clients_onboarded_total counter
webotixs_workflow_clients_onboarded_total 1
`
	if err := prom.GatherAndCompare(f.metrics.Registry(), strings.NewReader(want), "webotixs_workflow_clients_onboarded_total"); err != nil {
		t.Fatalf("onboarded metric: %v", err)
	}
}

func TestOnboardClientValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string]func(*OnboardClientRequest){
		"missing name":     func(r *OnboardClientRequest) { r.Name = " " },
		"missing email":    func(r *OnboardClientRequest) { r.Email = "" },
		"missing secret":   func(r *OnboardClientRequest) { r.Secret = "" },
		"missing project":  func(r *OnboardClientRequest) { r.ProjectName = "" },
		"missing deadline": func(r *OnboardClientRequest) { r.Deadline = "" },
		"bad deadline":     func(r *OnboardClientRequest) { r.Deadline = "30/09/2025" },
		"bad email":        func(r *OnboardClientRequest) { r.Email = "owner.acme.com" },
	}
	for name, mutate := range cases {
		req := onboardRequest()
		mutate(&req)
		if _, err := f.workflow.OnboardClient(ctx, req); !domainagg.IsCode(err, domainagg.CodeValidation) {
			t.Fatalf("%s: want validation, got %v", name, err)
		}
	}
	if len(f.emitter.messages()) != 0 || len(f.sentMail()) != 0 {
		t.Fatalf("rejected onboarding must not notify")
	}
}

func TestOnboardClientDuplicateDoesNotNotify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repotest.SeedUser(t, ctx, f.db, types.RoleClient, "owner@acme.com")

	_, err := f.workflow.OnboardClient(ctx, onboardRequest())
	if !domainagg.IsCode(err, domainagg.CodeDuplicateIdentity) {
		t.Fatalf("want duplicate_identity, got %v", err)
	}
	if domainagg.MessageOf(err) != "User already exists" {
		t.Fatalf("message: %q", domainagg.MessageOf(err))
	}
	if len(f.emitter.messages()) != 0 || len(f.sentMail()) != 0 {
		t.Fatalf("duplicate onboarding must not notify")
	}
}

func TestOnboardClientSurvivesMailFailure(t *testing.T) {
	f := newFixture(t)
	f.mail.err = errors.New("smtp down")

	if _, err := f.workflow.OnboardClient(context.Background(), onboardRequest()); err != nil {
		t.Fatalf("mail failure must not fail onboarding: %v", err)
	}
	if sent := f.sentMail(); len(sent) != 1 {
		t.Fatalf("mail attempts: want 1 got %d", len(sent))
	}
}
