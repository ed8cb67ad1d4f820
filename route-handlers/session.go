package routehandlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/evolvetech/opsdash/auth"
	"github.com/evolvetech/opsdash/webutil"
)

const (
	// SessionCookieName holds the signed session token.
	SessionCookieName = "session_token"

	// sessionValidity matches the 30-day token lifetime the dashboard's
	// previous auth layer used.
	sessionValidity = 30 * 24 * time.Hour
)

type SessionHandler struct {
	Authenticator auth.Authenticator
	Secret        []byte
}

func NewSessionHandler(authenticator auth.Authenticator, secret []byte) *SessionHandler {
	return &SessionHandler{Authenticator: authenticator, Secret: secret}
}

// HandleLogin verifies credentials and issues the session cookie. Unknown
// email and wrong password produce the same response.
func (h *SessionHandler) HandleLogin(w http.ResponseWriter, r *http.Request) error {
	var requestData struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		return webutil.ErrBadRequest("Invalid request payload: " + err.Error())
	}
	defer r.Body.Close()

	identity, err := h.Authenticator.Authenticate(r.Context(), requestData.Email, requestData.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return webutil.ErrUnauthorized("Invalid email or password")
		}
		return fmt.Errorf("authentication failed: %w", err)
	}

	token, err := auth.GenerateSessionToken(identity, h.Secret, sessionValidity)
	if err != nil {
		return fmt.Errorf("failed to sign session token: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionValidity.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    identity,
	})
	return nil
}

// HandleLogout clears the session cookie.
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
	return nil
}

// HandleSession returns the identity embedded in a valid session cookie.
func (h *SessionHandler) HandleSession(w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return webutil.ErrUnauthorized("Not authenticated")
	}

	identity, err := auth.ParseSessionToken(cookie.Value, h.Secret)
	if err != nil {
		return webutil.ErrUnauthorized("Not authenticated")
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{"user": identity})
	return nil
}
