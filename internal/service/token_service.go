package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Skotchmaster/lab_management/internal/apperrors"
	"github.com/Skotchmaster/lab_management/internal/logging"
	"github.com/Skotchmaster/lab_management/internal/models"
	"github.com/Skotchmaster/lab_management/internal/repo"
	"github.com/Skotchmaster/lab_management/internal/tokens"
)

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

type TokenService struct {
	Repo          *repo.GormRepo
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	// Now is the injected clock; nil falls back to time.Now.
	Now func() time.Time
}

type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	AccessExp    time.Time `json:"access_exp"`
	RefreshExp   time.Time `json:"refresh_exp"`
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *TokenService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return DefaultAccessTTL
}

func (s *TokenService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return DefaultRefreshTTL
}

func (s *TokenService) signAccessToken(user *models.User, exp time.Time) (string, error) {
	claims := tokens.AccessClaims{
		Email: user.Email,
		Role:  string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(s.now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.AccessSecret)
}

func (s *TokenService) signRefreshToken(userID string, exp time.Time) (string, error) {
	claims := tokens.RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ID:        tokens.NewJTI(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.RefreshSecret)
}

// IssueSession mints a stateless access token and a persisted single-use
// refresh token for the user. Several live refresh tokens per user may
// coexist (multi-device).
func (s *TokenService) IssueSession(ctx context.Context, user *models.User) (*Session, error) {
	accessExp := s.now().Add(s.accessTTL())
	accessToken, err := s.signAccessToken(user, accessExp)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshExp := s.now().Add(s.refreshTTL())
	refreshToken, err := s.signRefreshToken(user.ID, refreshExp)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	record := models.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: refreshExp,
		CreatedAt: s.now(),
	}
	if err := s.Repo.CreateRefreshToken(ctx, &record); err != nil {
		return nil, err
	}

	return &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, nil
}

// Rotate exchanges a refresh token for a fresh access+refresh pair. The new
// pair is issued and persisted before the old record is deleted, so a crash
// mid-rotation leaves the old token usable instead of locking the user out.
// The delete is the serialization point: of two concurrent rotations with the
// same token, the one that deletes zero rows loses and gets ErrInvalidToken.
func (s *TokenService) Rotate(ctx context.Context, rawToken string) (*Session, error) {
	l := logging.FromContext(ctx).With("svc", "tokens.rotate")

	claims, err := tokens.RefreshClaimsFromToken(rawToken, s.RefreshSecret, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	stored, err := s.Repo.FindRefreshToken(ctx, rawToken)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, apperrors.ErrInvalidToken
	}
	// Lazy expiry: a stale row not yet swept by cleanup is still invalid.
	if !stored.ExpiresAt.After(s.now()) {
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.Repo.GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, err
	}

	session, err := s.IssueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	deleted, err := s.Repo.DeleteRefreshToken(ctx, rawToken)
	if err != nil {
		return nil, err
	}
	if deleted == 0 {
		// A concurrent rotation consumed the token first; withdraw the pair
		// issued here so the replay leaves no live credentials behind.
		if _, revokeErr := s.Repo.DeleteRefreshToken(ctx, session.RefreshToken); revokeErr != nil {
			l.Warn("orphan refresh token not withdrawn", "error", revokeErr)
		}
		return nil, apperrors.ErrInvalidToken
	}

	return session, nil
}

// Revoke deletes the refresh token record. Absence is not an error, so
// logout stays idempotent.
func (s *TokenService) Revoke(ctx context.Context, rawToken string) error {
	_, err := s.Repo.DeleteRefreshToken(ctx, rawToken)
	return err
}

// VerifyAccess checks signature and expiry only; no store lookup.
func (s *TokenService) VerifyAccess(rawToken string) (*tokens.AccessClaims, error) {
	claims, err := tokens.AccessClaimsFromToken(rawToken, s.AccessSecret, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}
