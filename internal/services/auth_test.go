package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	repotest "github.com/raohuzaifa081-blip/webotixscrm/internal/data/repos/testutil"
	types "github.com/raohuzaifa081-blip/webotixscrm/internal/domain"
	domainagg "github.com/raohuzaifa081-blip/webotixscrm/internal/domain/aggregates"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/ctxutil"
)

func TestLoginIssuesTokenThatAuthenticates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := repotest.SeedUser(t, ctx, f.db, types.RoleAdmin, "admin@webotixs.com", repotest.WithSecret(t, "admin123"))

	res, err := f.auth.Login(ctx, "Admin@Webotixs.com", "admin123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.User == nil || res.User.ID != admin.ID || res.User.Role != types.RoleAdmin {
		t.Fatalf("login user: %+v", res.User)
	}
	if res.ExpiresIn != int64(24*time.Hour/time.Second) {
		t.Fatalf("expiresIn: got=%d", res.ExpiresIn)
	}
	if strings.Count(res.Token, ".") != 2 {
		t.Fatalf("token is not a JWT: %q", res.Token)
	}

	u, err := f.auth.Authenticate(ctx, res.Token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if u.ID != admin.ID {
		t.Fatalf("Authenticate: resolved %s want %s", u.ID, admin.ID)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repotest.SeedUser(t, ctx, f.db, types.RoleTeam, "team@webotixs.com", repotest.WithSecret(t, "team123"))

	if _, err := f.auth.Login(ctx, "team@webotixs.com", "nope"); !domainagg.IsCode(err, domainagg.CodeUnauthenticated) {
		t.Fatalf("wrong secret: want unauthenticated, got %v", err)
	}
	if _, err := f.auth.Login(ctx, "ghost@webotixs.com", "team123"); !domainagg.IsCode(err, domainagg.CodeUnauthenticated) {
		t.Fatalf("unknown email: want unauthenticated, got %v", err)
	}
	if _, err := f.auth.Login(ctx, "", "team123"); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("missing email: want validation, got %v", err)
	}
}

func TestAuthenticateRejectsInvalidTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	team := repotest.SeedUser(t, ctx, f.db, types.RoleTeam, "team@webotixs.com")

	valid, err := f.auth.IssueToken(team)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   team.ID.String(),
		Issuer:    "webotixs-test",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	forgedToken, _ := forged.SignedString([]byte("other-secret"))

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   team.ID.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	noneToken, _ := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)

	ghost, err := f.auth.IssueToken(&types.User{ID: uuid.New()})
	if err != nil {
		t.Fatalf("IssueToken ghost: %v", err)
	}

	cases := map[string]string{
		"empty":      "",
		"garbage":    "not-a-token",
		"tampered":   valid[:len(valid)-2] + "xx",
		"forged":     forgedToken,
		"alg none":   noneToken,
		"no user":    ghost,
		"raw userid": team.ID.String(),
	}
	for name, tok := range cases {
		if _, err := f.auth.Authenticate(ctx, tok); !domainagg.IsCode(err, domainagg.CodeUnauthenticated) {
			t.Fatalf("%s: want unauthenticated, got %v", name, err)
		}
	}
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	team := repotest.SeedUser(t, ctx, f.db, types.RoleTeam, "team@webotixs.com")

	as := f.auth.(*authService)
	as.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	tok, err := as.IssueToken(team)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	as.now = time.Now

	if _, err := f.auth.Authenticate(ctx, tok); !domainagg.IsCode(err, domainagg.CodeUnauthenticated) {
		t.Fatalf("expired: want unauthenticated, got %v", err)
	}
}

func TestAuthenticateUsesDirectoryRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := repotest.SeedUser(t, ctx, f.db, types.RoleTeam, "team@webotixs.com")
	tok, err := f.auth.IssueToken(u)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if err := f.db.Model(&types.User{}).Where("id = ?", u.ID).Update("role", types.RoleClient).Error; err != nil {
		t.Fatalf("demote: %v", err)
	}

	ctx2, got, err := f.auth.SetContextFromToken(ctx, tok)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	if got.Role != types.RoleClient {
		t.Fatalf("role: want client got %s", got.Role)
	}
	rd := ctxutil.GetRequestData(ctx2)
	if rd == nil || rd.UserID != u.ID || rd.Role != string(types.RoleClient) || rd.TokenString != tok {
		t.Fatalf("request data: %+v", rd)
	}
}
