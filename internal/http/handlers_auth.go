package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ahmedsps3/personal-budget-app/internal/auth"
	"github.com/ahmedsps3/personal-budget-app/internal/core"
)

// requireAuth resolves the session cookie to a users row and injects it into
// the request context. Missing or invalid sessions get the unauthorized
// envelope without reaching the handler.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(auth.SessionCookieName)
		if err != nil {
			writeError(w, core.ErrUnauthorized)
			return
		}

		claims, err := s.sessions.ParseToken(cookie.Value)
		if err != nil {
			writeError(w, core.ErrUnauthorized)
			return
		}

		user, err := s.storage.GetUserByOpenID(r.Context(), claims.OpenID)
		if errors.Is(err, core.ErrNotFound) {
			// Valid session for a user row that no longer exists (fresh
			// database). Recreate it from the claims.
			recreated, upErr := s.storage.UpsertUser(r.Context(), core.User{
				OpenID:      claims.OpenID,
				Name:        profileNameFromOpenID(claims.OpenID),
				LoginMethod: "password",
			})
			if upErr != nil {
				writeError(w, upErr)
				return
			}
			user = &recreated
		} else if err != nil {
			writeError(w, err)
			return
		}

		next(w, r.WithContext(auth.WithUser(r.Context(), *user)))
	}
}

type loginInput struct {
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := decodeInput(r, &in); err != nil {
		writeError(w, err)
		return
	}

	if err := s.sessions.VerifyPassword(in.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			slog.WarnContext(r.Context(), "Login attempt with wrong password")
		}
		writeError(w, err)
		return
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = "default"
	}

	user, err := s.storage.UpsertUser(r.Context(), core.User{
		OpenID:      openIDFromProfileName(name),
		Name:        name,
		LoginMethod: "password",
	})
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := s.sessions.IssueToken(user.OpenID)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.sessions.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	slog.InfoContext(r.Context(), "User logged in", "user_id", user.ID, "open_id", user.OpenID)
	writeResult(w, toUserDTO(user))
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, core.ErrUnauthorized)
		return
	}
	writeResult(w, toUserDTO(user))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeResult(w, map[string]bool{"success": true})
}

// openIDFromProfileName derives a stable identity key for the shared-password
// login, where the only distinguishing input is the chosen profile name.
func openIDFromProfileName(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Join(strings.Fields(slug), "-")
	return "local:" + slug
}

func profileNameFromOpenID(openID string) string {
	return strings.TrimPrefix(openID, "local:")
}
