package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/localnerve/authorizer-go"
	"github.com/localnerve/medrecords/internal/access"
	"github.com/localnerve/medrecords/internal/config"
	"github.com/localnerve/medrecords/internal/models"
	"github.com/localnerve/medrecords/internal/types"
	"github.com/localnerve/medrecords/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SessionValidator resolves a session token to the identity id it belongs to
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (string, error)
}

// AuthorizerSessions validates sessions against an authorizer instance
type AuthorizerSessions struct {
	client *authorizer.AuthorizerClient
}

// NewAuthorizerSessions pings the authorizer and builds its client
func NewAuthorizerSessions(ctx context.Context, cfg *config.Config, redirectURL string, log *zap.Logger) (*AuthorizerSessions, error) {
	if err := utils.PingAuthorizer(ctx, cfg.AuthzURL); err != nil {
		return nil, fmt.Errorf("authorizer ping failed: %w", err)
	}

	log.Info("initializing authorizer",
		zap.String("url", cfg.AuthzURL),
		zap.String("client_id", cfg.AuthzClientID),
		zap.String("redirect_url", redirectURL))

	client, err := authorizer.NewAuthorizerClient(cfg.AuthzClientID, cfg.AuthzURL, redirectURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create authorizer client: %w", err)
	}
	return &AuthorizerSessions{client: client}, nil
}

// ValidateSession asks the authorizer whether the session is valid. Roles are
// kept locally, so none are requested.
func (a *AuthorizerSessions) ValidateSession(_ context.Context, token string) (string, error) {
	res, err := a.client.ValidateSession(&authorizer.ValidateSessionInput{Cookie: token})
	if err != nil {
		return "", types.Unauthorized.New("session validation failed: %v", err)
	}
	if res == nil || !res.IsValid {
		return "", types.Unauthorized.New("session is not valid")
	}

	// the user is read through its json form to depend only on the id field
	raw, err := json.Marshal(res.User)
	if err != nil {
		return "", err
	}
	var user struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &user); err != nil || user.ID == "" {
		return "", types.Unauthorized.New("session has no user")
	}
	return user.ID, nil
}

// Sessions turns a session token into an actor with its local role
type Sessions struct {
	Validator SessionValidator
	DB        *gorm.DB
}

// Authenticate validates token and loads the local account of its user
func (s *Sessions) Authenticate(ctx context.Context, token string) (access.Actor, error) {
	if token == "" {
		return access.Actor{}, types.Unauthorized.New("missing session")
	}
	id, err := s.Validator.ValidateSession(ctx, token)
	if err != nil {
		return access.Actor{}, err
	}

	var user models.User
	err = silent(s.DB).WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return access.Actor{}, types.Forbidden.New("user %s is not registered", id)
	}
	if err != nil {
		return access.Actor{}, err
	}
	if !user.IsActive {
		return access.Actor{}, types.Forbidden.New("user is inactive")
	}
	return access.Actor{ID: user.ID, Role: user.Role}, nil
}
