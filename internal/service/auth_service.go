package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/lab_management/internal/apperrors"
	"github.com/Skotchmaster/lab_management/internal/hash"
	"github.com/Skotchmaster/lab_management/internal/logging"
	"github.com/Skotchmaster/lab_management/internal/models"
	"github.com/Skotchmaster/lab_management/internal/repo"
)

var ErrValidation = errors.New("validation failed")

type AuthService struct {
	Repo   *repo.GormRepo
	Tokens *TokenService
	Events EventPublisher
}

type RegisterInput struct {
	Email          string
	Password       string
	FirstName      string
	LastName       string
	Role           models.UserRole
	LabAffiliation string
}

type AuthResult struct {
	User    *models.User
	Session *Session
}

func (s *AuthService) publish(ctx context.Context, key string, event map[string]any) {
	if s.Events == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.Events.PublishEvent(pubCtx, "user_events", key, event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "error", err)
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if in.Email == "" || in.Password == "" {
		return nil, ErrValidation
	}
	if in.Role == "" {
		in.Role = models.RoleGradStudent
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		l.Error("register failed", "reason", "cannot hash password", "error", err)
		return nil, err
	}

	user := &models.User{
		ID:             uuid.NewString(),
		Email:          in.Email,
		PasswordHash:   pwHash,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Role:           in.Role,
		LabAffiliation: in.LabAffiliation,
		IsActive:       true,
		CreatedAt:      s.Tokens.now(),
	}
	if err := s.Repo.CreateUserIfNotExists(ctx, user); err != nil {
		return nil, err
	}

	session, err := s.Tokens.IssueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, user.ID, map[string]any{
		"type":    "user_registered",
		"user_id": user.ID,
		"email":   user.Email,
	})
	return &AuthResult{User: user, Session: session}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if email == "" || password == "" {
		return nil, ErrValidation
	}

	user, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !user.IsActive || !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login failed", "reason", "invalid email or password")
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := s.Repo.TouchLastActive(ctx, user.ID, s.Tokens.now()); err != nil {
		l.Warn("last_active not updated", "error", err)
	}

	session, err := s.Tokens.IssueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, user.ID, map[string]any{
		"type":    "user_logged_in",
		"user_id": user.ID,
		"email":   user.Email,
	})
	return &AuthResult{User: user, Session: session}, nil
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.Tokens.Revoke(ctx, refreshToken)
}
