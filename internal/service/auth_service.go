package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"task-manager/internal/apperr"
	"task-manager/internal/auth"
	"task-manager/internal/model"
	"task-manager/internal/repository"
	"task-manager/internal/validation"
)

// AuthService signs users up, logs them in and out, and checks sessions.
// Only one user is logged in at a time; a login replaces any earlier session.
type AuthService struct {
	store    *repository.Store
	hasher   auth.Hasher
	sessions *auth.SessionIssuer
	now      func() time.Time
}

func NewAuthService(store *repository.Store, hasher auth.Hasher, sessions *auth.SessionIssuer) *AuthService {
	return &AuthService{store: store, hasher: hasher, sessions: sessions, now: time.Now}
}

// SignUp validates the credentials, then stores the user together with its
// default "None" category. It does not log the user in.
func (s *AuthService) SignUp(ctx context.Context, username, password string) (*model.User, error) {
	if err := validation.Username(username); err != nil {
		return nil, err
	}
	if _, err := s.store.Users.FindByUsername(ctx, username); err == nil {
		return nil, apperr.Invalid("username", "Username taken.")
	} else if !apperr.IsNotFound(err) {
		return nil, err
	}
	if err := validation.Password(password); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{Username: username, PasswordDigest: digest}
	if _, err := s.store.CreateUserWithCategory(ctx, user, model.DefaultCategoryName); err != nil {
		return nil, err
	}
	log.Printf("[info] user signed up id=%d", user.ID)
	return user, nil
}

// Login checks the credentials and makes the user the only active one.
func (s *AuthService) Login(ctx context.Context, username, password string) (*auth.Session, error) {
	user, err := s.store.Users.FindByUsername(ctx, username)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Verify(user.PasswordDigest, password) {
		return nil, apperr.ErrInvalidCredentials
	}

	sessionID := uuid.NewString()
	token, expiresAt, err := s.sessions.Issue(user.ID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Users.SetActiveSession(ctx, user.ID, sessionID, expiresAt); err != nil {
		return nil, err
	}

	log.Printf("[info] user logged in id=%d", user.ID)
	return &auth.Session{
		Token:     token,
		UserID:    user.ID,
		Username:  user.Username,
		ExpiresAt: expiresAt,
	}, nil
}

// Logout clears the active session. Calling it with nobody logged in is fine.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.store.Users.ClearActiveSession(ctx)
}

// ActiveUser returns the id of the logged in user or apperr.ErrNoActiveUser.
// A session past its expiry is ended here and counts as nobody logged in.
func (s *AuthService) ActiveUser(ctx context.Context) (uint, error) {
	user, err := s.store.Users.FindActive(ctx)
	if err != nil {
		return 0, err
	}
	if user.SessionExpiresAt != nil && !s.now().Before(*user.SessionExpiresAt) {
		if err := s.store.Users.EndSession(ctx, user.ID, user.SessionID); err != nil {
			return 0, err
		}
		log.Printf("[info] session expired user=%d", user.ID)
		return 0, apperr.ErrNoActiveUser
	}
	return user.ID, nil
}

// Authenticate resolves a session token to its user. The token must be
// valid and still be the user's current active session.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.sessions.Parse(token)
	if errors.Is(err, auth.ErrSessionExpired) {
		if err := s.store.Users.EndSession(ctx, claims.UserID, claims.SessionID); err != nil {
			return nil, err
		}
		return nil, apperr.ErrSessionExpired
	}
	if err != nil {
		return nil, apperr.ErrInvalidSession
	}

	user, err := s.store.Users.FindByID(ctx, claims.UserID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.ErrInvalidSession
		}
		return nil, err
	}
	if !user.ActiveSession || user.SessionID != claims.SessionID {
		return nil, apperr.ErrSessionInactive
	}
	return user, nil
}
