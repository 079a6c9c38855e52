package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-ldap/ldap/v3"
	"go.uber.org/zap"

	"github.com/pardisbank/statement-registry/internal/auth"
	"github.com/pardisbank/statement-registry/internal/config"
	"github.com/pardisbank/statement-registry/internal/directory"
	"github.com/pardisbank/statement-registry/internal/domain"
	"github.com/pardisbank/statement-registry/internal/observability"
	apperrors "github.com/pardisbank/statement-registry/pkg/util"
)

// Filter matching enabled person accounts, optionally narrowed by a search
// term over short name and display name.
const enabledUsersFilter = "(&(objectClass=user)(objectCategory=person)(!(userAccountControl:1.2.840.113556.1.4.803:=2))%s)"

// AuthService coordinates the login flow: cascade verdict, identity lookup,
// token issue. It also lists directory users for issuer management.
type AuthService struct {
	cascade   *auth.Cascade
	tokenMgr  *auth.TokenManager
	directory *directory.Client
	realm     string
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// AuthDependencies bundles collaborators for the auth service.
type AuthDependencies struct {
	Cascade   *auth.Cascade
	Directory *directory.Client
	Metrics   *observability.Metrics
	Logger    *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		cascade:   deps.Cascade,
		tokenMgr:  auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTLHours),
		directory: deps.Directory,
		realm:     cfg.Directory.Realm,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
	}
}

// LoginResult carries the issued credential and the resolved identity.
type LoginResult struct {
	Identity  domain.Identity
	Token     string
	ExpiresAt time.Time
}

// Login authenticates against the directory and issues a session token.
// Every failure cause maps to the same AuthFailed error.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, apperrors.NewAuthFailed()
	}

	if !s.cascade.Authenticate(ctx, username, password) {
		s.metrics.RecordLogin(false)
		s.logger.Info("authentication failed", zap.String("username", username))
		return nil, apperrors.NewAuthFailed()
	}

	identity := s.resolveIdentity(ctx, username)

	token, expiresAt, err := s.tokenMgr.Issue(identity.Username)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.metrics.RecordLogin(true)
	return &LoginResult{Identity: identity, Token: token, ExpiresAt: expiresAt}, nil
}

// resolveIdentity fetches display attributes for the authenticated user.
// Lookup failures fall back to a bare identity; the login already succeeded.
func (s *AuthService) resolveIdentity(ctx context.Context, username string) domain.Identity {
	filter := fmt.Sprintf("(|(%s=%s)(%s=%s@%s))",
		directory.AttrAccountName, ldap.EscapeFilter(username),
		directory.AttrPrincipalName, ldap.EscapeFilter(username), s.realm)

	entries, err := s.directory.Search(ctx, filter, []string{
		directory.AttrAccountName,
		directory.AttrDisplayName,
		directory.AttrMail,
		directory.AttrDepartment,
	})
	if err != nil || len(entries) != 1 {
		if err != nil {
			s.logger.Warn("identity lookup failed", zap.String("username", username), zap.Error(err))
		}
		return domain.Identity{Username: username, DisplayName: username}
	}
	return identityFromEntry(entries[0], username)
}

// ListDirectoryUsers searches enabled directory accounts, optionally
// filtered by a search term over short name and display name.
func (s *AuthService) ListDirectoryUsers(ctx context.Context, searchTerm string) ([]domain.Identity, error) {
	narrowing := ""
	if searchTerm != "" {
		escaped := ldap.EscapeFilter(searchTerm)
		narrowing = fmt.Sprintf("(|(%s=*%s*)(%s=*%s*))",
			directory.AttrAccountName, escaped,
			directory.AttrDisplayName, escaped)
	}
	filter := fmt.Sprintf(enabledUsersFilter, narrowing)

	entries, err := s.directory.Search(ctx, filter, []string{
		directory.AttrAccountName,
		directory.AttrDisplayName,
		directory.AttrMail,
		directory.AttrDepartment,
	})
	if err != nil {
		if errors.Is(err, directory.ErrNoEntries) {
			return []domain.Identity{}, nil
		}
		return nil, apperrors.NewDirectoryUnavailable(err)
	}

	identities := make([]domain.Identity, 0, len(entries))
	for _, entry := range entries {
		username := entry.Attribute(directory.AttrAccountName)
		if username == "" {
			continue
		}
		identities = append(identities, identityFromEntry(entry, username))
	}
	return identities, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func identityFromEntry(entry directory.Entry, username string) domain.Identity {
	identity := domain.Identity{Username: username, DisplayName: username}
	if name := entry.Attribute(directory.AttrDisplayName); name != "" {
		identity.DisplayName = name
	}
	if mail := entry.Attribute(directory.AttrMail); mail != "" {
		identity.Email = &mail
	}
	if dept := entry.Attribute(directory.AttrDepartment); dept != "" {
		identity.Department = &dept
	}
	return identity
}
