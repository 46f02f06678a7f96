// Package session restores, creates and ends the signed-in session. The
// resulting State is handed explicitly to whatever needs the principal.
package session

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kiwari-pos/stockroom/internal/apperr"
	"github.com/kiwari-pos/stockroom/internal/domain"
	"github.com/kiwari-pos/stockroom/internal/enum"
)

const minPasswordLen = 6

// API is the slice of the REST client the session needs.
// Satisfied by *api.Client; narrow interface for testability.
type API interface {
	SetToken(token string)
	Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.AuthResponse, error)
	CurrentUser(ctx context.Context) (*domain.User, error)
}

// State is the application's view of who is signed in.
type State struct {
	User         *domain.User
	Token        string
	RefreshToken string
}

func (s State) Authenticated() bool {
	return s.User != nil && s.Token != ""
}

func (s State) IsAdmin() bool {
	return s.User != nil && s.User.Role == enum.UserRoleAdmin
}

// LoadPersistedCredential reads the stored credential, nil if there is none.
func LoadPersistedCredential(store Store) (*Credential, error) {
	return store.Load()
}

// FetchCurrentUser installs token on the client and asks who it belongs to.
func FetchCurrentUser(ctx context.Context, api API, token string) (*domain.User, error) {
	api.SetToken(token)
	return api.CurrentUser(ctx)
}

// Expired reports whether the token's exp claim is before now. The signature
// is not checked; a token that cannot be read is left for the server to judge.
func Expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}

// Bootstrap restores the session from the store. An expired access token is
// refreshed first when a refresh token is available. If the user cannot be
// fetched the stored credential is dropped and an unauthenticated State is
// returned.
func Bootstrap(ctx context.Context, store Store, api API, logger *slog.Logger, now time.Time) State {
	cred, err := LoadPersistedCredential(store)
	if err != nil {
		logger.Warn("discarding unreadable credential", "error", err)
		forget(store, api, logger)
		return State{}
	}
	if cred == nil {
		return State{}
	}

	if Expired(cred.Token, now) && cred.RefreshToken != "" {
		res, err := api.Refresh(ctx, cred.RefreshToken)
		if err != nil {
			logger.Warn("token refresh failed", "error", err)
		} else {
			cred.Token = res.Token
			if res.RefreshToken != "" {
				cred.RefreshToken = res.RefreshToken
			}
			if err := store.Save(*cred); err != nil {
				logger.Warn("failed to persist refreshed credential", "error", err)
			}
		}
	}

	user, err := FetchCurrentUser(ctx, api, cred.Token)
	if err != nil {
		logger.Info("stored session is no longer valid", "error", err)
		forget(store, api, logger)
		return State{}
	}
	return State{User: user, Token: cred.Token, RefreshToken: cred.RefreshToken}
}

func forget(store Store, api API, logger *slog.Logger) {
	api.SetToken("")
	if err := store.Clear(); err != nil {
		logger.Warn("failed to clear credential", "error", err)
	}
}

// ValidateLogin applies the login form checks.
func ValidateLogin(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return apperr.Invalid("email", "email is required")
	}
	if !domain.ValidEmail(email) {
		return apperr.Invalid("email", "email is not valid")
	}
	if len(password) < minPasswordLen {
		return apperr.Invalid("password", "password must be at least 6 characters")
	}
	return nil
}

// Login signs in and persists the credential.
func Login(ctx context.Context, store Store, api API, email, password string) (State, error) {
	if err := ValidateLogin(email, password); err != nil {
		return State{}, err
	}
	res, err := api.Login(ctx, domain.LoginRequest{Email: strings.TrimSpace(email), Password: password})
	if err != nil {
		return State{}, err
	}
	api.SetToken(res.Token)
	if err := store.Save(Credential{Token: res.Token, RefreshToken: res.RefreshToken}); err != nil {
		return State{}, err
	}

	user := res.User
	if user == nil {
		if user, err = api.CurrentUser(ctx); err != nil {
			return State{}, err
		}
	}
	return State{User: user, Token: res.Token, RefreshToken: res.RefreshToken}, nil
}

// Logout forgets the credential.
func Logout(store Store, api API) error {
	api.SetToken("")
	return store.Clear()
}
