package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	types "github.com/raohuzaifa081-blip/webotixscrm/internal/domain"
	domainagg "github.com/raohuzaifa081-blip/webotixscrm/internal/domain/aggregates"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/ctxutil"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/logger"
)

const (
	invalidCredentialsMessage = "Invalid email or password"
	invalidTokenMessage       = "Invalid token"
)

type AuthConfig struct {
	JWTSecret string
	AccessTTL time.Duration
	Issuer    string
}

type LoginResult struct {
	User      *types.PublicUser `json:"user"`
	Token     string            `json:"token"`
	ExpiresIn int64             `json:"expiresIn"`
}

type AuthService interface {
	Login(ctx context.Context, email, secret string) (*LoginResult, error)
	IssueToken(u *types.User) (string, error)
	// Authenticate resolves a bearer token to its directory user. The role
	// that matters is the one stored in the directory, not any token claim.
	Authenticate(ctx context.Context, tokenString string) (*types.User, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, *types.User, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	log       *logger.Logger
	directory DirectoryService
	secret    []byte
	issuer    string
	accessTTL time.Duration
	now       func() time.Time
}

func NewAuthService(log *logger.Logger, directory DirectoryService, cfg AuthConfig) AuthService {
	ttl := cfg.AccessTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &authService{
		log:       log.With("service", "AuthService"),
		directory: directory,
		secret:    []byte(cfg.JWTSecret),
		issuer:    strings.TrimSpace(cfg.Issuer),
		accessTTL: ttl,
		now:       time.Now,
	}
}

func (as *authService) GetAccessTTL() time.Duration { return as.accessTTL }

func (as *authService) Login(ctx context.Context, email, secret string) (*LoginResult, error) {
	const op = "auth.login"
	if strings.TrimSpace(email) == "" || strings.TrimSpace(secret) == "" {
		return nil, domainagg.Validation(op, "Email and password are required")
	}
	u, err := as.directory.FindByCredentials(ctx, email, secret)
	if err != nil {
		return nil, err
	}
	if u == nil {
		as.log.Info("login rejected")
		return nil, domainagg.Unauthenticated(op, invalidCredentialsMessage)
	}
	tok, err := as.IssueToken(u)
	if err != nil {
		return nil, err
	}
	as.log.Info("login succeeded", "user_id", u.ID.String(), "role", string(u.Role))
	return &LoginResult{
		User:      types.Sanitize(u),
		Token:     tok,
		ExpiresIn: int64(as.accessTTL / time.Second),
	}, nil
}

func (as *authService) IssueToken(u *types.User) (string, error) {
	if u == nil || u.ID == uuid.Nil {
		return "", fmt.Errorf("issue token: user required")
	}
	if len(as.secret) == 0 {
		return "", fmt.Errorf("issue token: signing secret not configured")
	}
	now := as.now()
	claims := jwt.RegisteredClaims{
		Subject:   u.ID.String(),
		Issuer:    as.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
		ID:        uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(as.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (as *authService) parse(tokenString string) (uuid.UUID, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(as.now),
	}
	if as.issuer != "" {
		opts = append(opts, jwt.WithIssuer(as.issuer))
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return as.secret, nil
	}, opts...)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("token subject: %w", err)
	}
	return id, nil
}

func (as *authService) Authenticate(ctx context.Context, tokenString string) (*types.User, error) {
	const op = "auth.authenticate"
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, domainagg.Unauthenticated(op, "Not authorized, no token provided")
	}
	userID, err := as.parse(tokenString)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			as.log.Debug("expired token presented")
		}
		return nil, domainagg.NewError(domainagg.CodeUnauthenticated, op, invalidTokenMessage, err)
	}
	u, err := as.directory.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domainagg.Unauthenticated(op, invalidTokenMessage)
	}
	return u, nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, *types.User, error) {
	u, err := as.Authenticate(ctx, tokenString)
	if err != nil {
		return ctx, nil, err
	}
	ctx = ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      u.ID,
		Role:        string(u.Role),
	})
	return ctx, u, nil
}
