package services

import (
	"context"
	"testing"

	repotest "github.com/raohuzaifa081-blip/webotixscrm/internal/data/repos/testutil"
	types "github.com/raohuzaifa081-blip/webotixscrm/internal/domain"
)

func TestAdminReports(t *testing.T) {
	f := newFixture(t)
	s := newLedgerScene(t, f)
	ctx := context.Background()
	repotest.SeedUser(t, ctx, f.db, types.RoleAdmin, "admin@webotixs.com")

	for _, task := range s.tasks[:2] {
		if _, err := f.ledger.SetStatus(ctx, task.ID.String(), "Completed", s.member.ID); err != nil {
			t.Fatalf("SetStatus: %v", err)
		}
	}

	r, err := f.reports.AdminReports(ctx)
	if err != nil {
		t.Fatalf("AdminReports: %v", err)
	}
	if r.Summary.TotalProjects != 1 || r.Summary.CompletedProjects != 0 ||
		r.Summary.TotalTasks != 4 || r.Summary.CompletedTasks != 2 {
		t.Fatalf("summary: %+v", r.Summary)
	}

	if len(r.ProjectStats) != 1 {
		t.Fatalf("projectStats: %+v", r.ProjectStats)
	}
	ps := r.ProjectStats[0]
	if ps.Progress != 50 || ps.Client == nil || ps.Client.ID != s.client.ID {
		t.Fatalf("project stat: %+v", ps)
	}

	if len(r.TeamPerformance) != 2 {
		t.Fatalf("teamPerformance: want 2 team members got %d", len(r.TeamPerformance))
	}
	byID := map[string][2]int{}
	for _, tp := range r.TeamPerformance {
		if tp.Role != types.RoleTeam {
			t.Fatalf("non-team user in teamPerformance: %+v", tp)
		}
		byID[tp.ID.String()] = [2]int{tp.TasksAssigned, tp.TasksCompleted}
	}
	if got := byID[s.member.ID.String()]; got != [2]int{3, 2} {
		t.Fatalf("member tally: %v", got)
	}
	if got := byID[s.other.ID.String()]; got != [2]int{0, 0} {
		t.Fatalf("other tally: %v", got)
	}
}

func TestAdminReportsEmpty(t *testing.T) {
	f := newFixture(t)
	r, err := f.reports.AdminReports(context.Background())
	if err != nil {
		t.Fatalf("AdminReports: %v", err)
	}
	if r.Summary != (types.Reports{}).Summary || len(r.ProjectStats) != 0 || len(r.TeamPerformance) != 0 {
		t.Fatalf("empty reports: %+v", r)
	}
}
