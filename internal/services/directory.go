package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/raohuzaifa081-blip/webotixscrm/internal/data/aggregates"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/data/repos"
	types "github.com/raohuzaifa081-blip/webotixscrm/internal/domain"
	domainagg "github.com/raohuzaifa081-blip/webotixscrm/internal/domain/aggregates"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/domain/user"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/dbctx"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/logger"
)

type NewUserInput struct {
	Name           string
	Email          string
	Secret         string
	Role           types.Role
	Specialization *string
}

// DirectoryService owns user identities. Returned users still carry the
// secret hash; callers sanitize before anything leaves the process.
type DirectoryService interface {
	// FindByCredentials returns nil, nil when email or secret do not match.
	FindByCredentials(ctx context.Context, email, secret string) (*types.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*types.User, error)
	Create(ctx context.Context, in NewUserInput) (*types.User, error)
	ListAll(ctx context.Context) ([]*types.User, error)
	ListTeam(ctx context.Context) ([]*types.User, error)
	HashSecret(secret string) (string, error)
}

type directoryService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
	cost     int

	dummyOnce sync.Once
	dummyHash []byte
}

func NewDirectoryService(log *logger.Logger, userRepo repos.UserRepo, bcryptCost int) DirectoryService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &directoryService{
		log:      log.With("service", "DirectoryService"),
		userRepo: userRepo,
		cost:     bcryptCost,
	}
}

func (s *directoryService) HashSecret(secret string) (string, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return "", domainagg.Validation("directory.hash_secret", "secret is required")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(secret), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(h), nil
}

// dummy returns a hash at the configured cost so unknown emails cost the
// same as a wrong secret.
func (s *directoryService) dummy() []byte {
	s.dummyOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), s.cost)
		if err != nil {
			s.log.Warn("dummy hash generation failed", "error", err)
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

func (s *directoryService) FindByCredentials(ctx context.Context, email, secret string) (*types.User, error) {
	email = user.NormalizeEmail(email)
	secret = strings.TrimSpace(secret)
	if email == "" || secret == "" {
		return nil, nil
	}
	u, err := s.userRepo.GetByEmail(dbctx.Context{Ctx: ctx}, email)
	if err != nil {
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}
	if u == nil {
		if h := s.dummy(); h != nil {
			_ = bcrypt.CompareHashAndPassword(h, []byte(secret))
		}
		return nil, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Secret), []byte(secret)); err != nil {
		return nil, nil
	}
	return u, nil
}

func (s *directoryService) FindByID(ctx context.Context, id uuid.UUID) (*types.User, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	u, err := s.userRepo.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, fmt.Errorf("lookup user by id: %w", err)
	}
	return u, nil
}

func (s *directoryService) Create(ctx context.Context, in NewUserInput) (*types.User, error) {
	const op = "directory.create"
	name := strings.TrimSpace(in.Name)
	email := user.NormalizeEmail(in.Email)
	if name == "" || email == "" || strings.TrimSpace(in.Secret) == "" {
		return nil, domainagg.Validation(op, "name, email and secret are required")
	}
	if !in.Role.Valid() {
		return nil, domainagg.Validation(op, fmt.Sprintf("unknown role %q", in.Role))
	}
	dbc := dbctx.Context{Ctx: ctx}
	exists, err := s.userRepo.EmailExists(dbc, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, domainagg.DuplicateIdentity(op, "User already exists")
	}
	hash, err := s.HashSecret(in.Secret)
	if err != nil {
		return nil, err
	}
	created, err := s.userRepo.Create(dbc, []*types.User{{
		Name:           name,
		Email:          email,
		Secret:         hash,
		Role:           in.Role,
		Specialization: in.Specialization,
	}})
	if err != nil {
		if aggregates.IsUniqueViolation(err) {
			return nil, domainagg.NewError(domainagg.CodeDuplicateIdentity, op, "User already exists", err)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created[0], nil
}

func (s *directoryService) ListAll(ctx context.Context) ([]*types.User, error) {
	out, err := s.userRepo.ListAll(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

func (s *directoryService) ListTeam(ctx context.Context) ([]*types.User, error) {
	out, err := s.userRepo.ListByRole(dbctx.Context{Ctx: ctx}, types.RoleTeam)
	if err != nil {
		return nil, fmt.Errorf("list team: %w", err)
	}
	return out, nil
}
