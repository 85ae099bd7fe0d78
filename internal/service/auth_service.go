package service

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"go-blog-api/internal/model"
	"go-blog-api/internal/session"
)

// UserStore is the credential lookup surface the security pipeline needs
// from the persistence layer.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (model.User, error)
	FindByUsername(ctx context.Context, username string) (model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, u model.User) (int64, error)
}

// dummyHash is compared against when the username does not resolve, so an
// unknown user costs the same bcrypt work as a wrong password.
var dummyHash = []byte("$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW")

type AuthService struct {
	users    UserStore
	sessions *session.Store
}

func NewAuthService(users UserStore, sessions *session.Store) *AuthService {
	return &AuthService{users: users, sessions: sessions}
}

// Login authenticates username/password against the user store. Every
// failure mode (unknown user, wrong password, disabled account, blank
// input) collapses into model.ErrInvalidCredentials so the response never
// reveals which check failed.
func (s *AuthService) Login(ctx context.Context, username string, password string) (session.Principal, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return session.Principal{}, model.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return session.Principal{}, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return session.Principal{}, model.ErrInvalidCredentials
	}

	if !user.Enabled {
		return session.Principal{}, model.ErrInvalidCredentials
	}

	return session.Principal{UserID: user.ID, Username: user.Username}, nil
}

// EstablishSession issues the post-login session. The identifier presented
// before authentication (if any) is discarded in the same operation, which
// is the session fixation defence: rotation happens on every successful
// login, re-authentication included.
func (s *AuthService) EstablishSession(priorSessionID string, p session.Principal) session.Session {
	if priorSessionID != "" {
		return s.sessions.Rotate(priorSessionID, p)
	}
	return s.sessions.Create(p)
}

func (s *AuthService) Logout(sessionID string) {
	s.sessions.Delete(sessionID)
}
