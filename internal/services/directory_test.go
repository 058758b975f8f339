package services

import (
	"context"
	"testing"

	repotest "github.com/raohuzaifa081-blip/webotixscrm/internal/data/repos/testutil"
	types "github.com/raohuzaifa081-blip/webotixscrm/internal/domain"
	domainagg "github.com/raohuzaifa081-blip/webotixscrm/internal/domain/aggregates"
)

func TestDirectoryCreateAndFindByCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.directory.Create(ctx, NewUserInput{Name: " Maya ", Email: " Maya@Webotixs.com ", Secret: " s3cret ", Role: types.RoleTeam})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Email != "maya@webotixs.com" || created.Name != "Maya" {
		t.Fatalf("normalization: %+v", created)
	}
	if created.Secret == "s3cret" || created.Secret == "" {
		t.Fatalf("secret must be stored hashed")
	}

	got, err := f.directory.FindByCredentials(ctx, "MAYA@webotixs.com", "s3cret  ")
	if err != nil {
		t.Fatalf("FindByCredentials: %v", err)
	}
	if got == nil || got.ID != created.ID {
		t.Fatalf("expected to find created user, got %+v", got)
	}

	if got, _ := f.directory.FindByCredentials(ctx, "maya@webotixs.com", "wrong"); got != nil {
		t.Fatalf("wrong secret must not match")
	}
	if got, _ := f.directory.FindByCredentials(ctx, "nobody@webotixs.com", "s3cret"); got != nil {
		t.Fatalf("unknown email must not match")
	}
	if got, _ := f.directory.FindByCredentials(ctx, "", ""); got != nil {
		t.Fatalf("empty credentials must not match")
	}
}

func TestDirectoryCreateRejectsDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repotest.SeedUser(t, ctx, f.db, types.RoleClient, "client@webotixs.com")

	_, err := f.directory.Create(ctx, NewUserInput{Name: "Dup", Email: "CLIENT@webotixs.com", Secret: "x", Role: types.RoleClient})
	if !domainagg.IsCode(err, domainagg.CodeDuplicateIdentity) {
		t.Fatalf("want duplicate_identity, got %v", err)
	}
}

func TestDirectoryCreateValidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cases := []NewUserInput{
		{Name: "", Email: "a@b.com", Secret: "x", Role: types.RoleTeam},
		{Name: "A", Email: "a@b.com", Secret: " ", Role: types.RoleTeam},
		{Name: "A", Email: "a@b.com", Secret: "x", Role: types.Role("owner")},
	}
	for i, in := range cases {
		if _, err := f.directory.Create(ctx, in); !domainagg.IsCode(err, domainagg.CodeValidation) {
			t.Fatalf("case %d: want validation, got %v", i, err)
		}
	}
}

func TestDirectoryListTeamInDirectoryOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := repotest.SeedUser(t, ctx, f.db, types.RoleTeam, "first@webotixs.com")
	repotest.SeedUser(t, ctx, f.db, types.RoleAdmin, "admin@webotixs.com")
	second := repotest.SeedUser(t, ctx, f.db, types.RoleTeam, "second@webotixs.com")

	team, err := f.directory.ListTeam(ctx)
	if err != nil {
		t.Fatalf("ListTeam: %v", err)
	}
	if len(team) != 2 || team[0].ID != first.ID || team[1].ID != second.ID {
		t.Fatalf("team order: %+v", team)
	}
	all, err := f.directory.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListAll: want 3 got %d", len(all))
	}
}
