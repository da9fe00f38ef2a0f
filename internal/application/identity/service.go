// Package identity wraps the auth endpoints of the upstream API and
// manages the stored bearer credential and cached user record.
package identity

import (
	"context"
	"encoding/json"
	"net/url"

	"go.uber.org/zap"

	domainidentity "github.com/erp/storefront/internal/domain/identity"
	"github.com/erp/storefront/internal/domain/shared"
	"github.com/erp/storefront/internal/infrastructure/gateway"
)

// Gateway is the subset of the upstream client the identity service uses
type Gateway interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
}

// Service is the auth API client
type Service struct {
	gw     Gateway
	creds  *gateway.Credentials
	logger *zap.Logger
}

// NewService creates an identity Service
func NewService(gw Gateway, creds *gateway.Credentials, logger *zap.Logger) *Service {
	return &Service{gw: gw, creds: creds, logger: logger}
}

// Login authenticates against the backend and stores the returned bearer
// token and user record for the client. Credential-storage failures are
// logged but do not fail the login.
func (s *Service) Login(ctx context.Context, clientKey string, creds domainidentity.Credentials) (*domainidentity.AuthResponse, error) {
	var resp domainidentity.AuthResponse
	if err := s.gw.Post(ctx, "/auth/login", creds, &resp); err != nil {
		return nil, upstreamError(err, "Login failed")
	}

	userJSON, err := json.Marshal(resp.User)
	if err != nil {
		s.logger.Warn("Failed to encode user record", zap.Error(err))
		return &resp, nil
	}
	if err := s.creds.Save(ctx, clientKey, resp.AccessToken, string(userJSON)); err != nil {
		s.logger.Warn("Failed to store credentials", zap.Error(err))
	}

	return &resp, nil
}

// Register creates a new account. The caller logs in separately.
func (s *Service) Register(ctx context.Context, data domainidentity.RegisterData) (*domainidentity.AuthResponse, error) {
	var resp domainidentity.AuthResponse
	if err := s.gw.Post(ctx, "/auth/register", data, &resp); err != nil {
		return nil, upstreamError(err, "Registration failed")
	}
	return &resp, nil
}

// Profile fetches the authenticated user's profile
func (s *Service) Profile(ctx context.Context) (*domainidentity.User, error) {
	var user domainidentity.User
	if err := s.gw.Get(ctx, "/auth/profile", nil, &user); err != nil {
		return nil, upstreamError(err, "Failed to get profile")
	}
	return &user, nil
}

// UpdateProfile updates the authenticated user's profile
func (s *Service) UpdateProfile(ctx context.Context, data map[string]any) (*domainidentity.User, error) {
	var user domainidentity.User
	if err := s.gw.Put(ctx, "/auth/profile", data, &user); err != nil {
		return nil, upstreamError(err, "Failed to update profile")
	}
	return &user, nil
}

// Logout clears the stored bearer token and cached user record together
func (s *Service) Logout(ctx context.Context, clientKey string) {
	if err := s.creds.Purge(ctx, clientKey); err != nil {
		s.logger.Warn("Failed to clear credentials on logout", zap.Error(err))
	}
}

// CurrentUser returns the cached user record for the client, if any
func (s *Service) CurrentUser(ctx context.Context, clientKey string) (*domainidentity.User, bool) {
	userJSON, err := s.creds.User(ctx, clientKey)
	if err != nil || userJSON == "" {
		return nil, false
	}
	var user domainidentity.User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		s.logger.Warn("Discarding corrupt cached user record", zap.Error(err))
		return nil, false
	}
	return &user, true
}

// IsAuthenticated reports whether a bearer token is stored for the client
func (s *Service) IsAuthenticated(ctx context.Context, clientKey string) bool {
	token, err := s.creds.Token(ctx, clientKey)
	return err == nil && token != ""
}

func upstreamError(err error, fallback string) error {
	if gateway.IsUnauthorized(err) {
		return shared.NewDomainError(shared.ErrUnauthorized.Code, gateway.Message(err, fallback))
	}
	return shared.NewDomainError(shared.ErrUpstream.Code, gateway.Message(err, fallback))
}
