package routehandlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/evolvetech/opsdash/auth"
	"github.com/evolvetech/opsdash/datastore"
	"github.com/evolvetech/opsdash/mailer"
	"github.com/evolvetech/opsdash/webutil"
)

const (
	otpEmailSubject = "Your OTP Code | Evolve Tech Innovations"
	otpEmailBody    = "<p>Your OTP code is: <strong>%s</strong></p><p>It is valid for 10 minutes.</p>"
)

// PasswordResetHandler implements the client-driven three-step reset flow.
// The steps share no server-side state beyond the stored OTP value; no
// token binds the reset step to a successful verification. That gap is
// deliberate compatibility with the existing clients.
type PasswordResetHandler struct {
	Repo   *datastore.UserRepository
	Mailer mailer.Mailer
}

func NewPasswordResetHandler(repo *datastore.UserRepository, m mailer.Mailer) *PasswordResetHandler {
	return &PasswordResetHandler{Repo: repo, Mailer: m}
}

// HandleRequestOTP stores a fresh 6-digit code for the email and mails it.
// The code is persisted before the send, so a send failure leaves it in
// place. A request for an unknown address behaves identically.
func (h *PasswordResetHandler) HandleRequestOTP(w http.ResponseWriter, r *http.Request) error {
	var requestData struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		return webutil.ErrBadRequest("Invalid request payload: " + err.Error())
	}
	defer r.Body.Close()

	otp, err := auth.GenerateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate OTP: %w", err)
	}

	if err := h.Repo.SetOTP(r.Context(), requestData.Email, otp); err != nil {
		return webutil.NewHTTPErrorWrap(http.StatusInternalServerError, "Failed to send OTP. Try again later.", err)
	}

	body := fmt.Sprintf(otpEmailBody, otp)
	if err := h.Mailer.Send(r.Context(), requestData.Email, otpEmailSubject, body); err != nil {
		return webutil.NewHTTPErrorWrap(http.StatusInternalServerError, "Failed to send OTP. Try again later.", err)
	}

	slog.Info("OTP sent", "email", requestData.Email)
	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "OTP sent to your email!"})
	return nil
}

// HandleVerifyOTP succeeds only when a row matches both email and code
// exactly. The code stays valid afterwards; only a later request or the
// reset step overwrites it.
func (h *PasswordResetHandler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) error {
	var requestData struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		return webutil.ErrBadRequest("Invalid request payload: " + err.Error())
	}
	defer r.Body.Close()

	matched, err := h.Repo.MatchOTP(r.Context(), requestData.Email, requestData.OTP)
	if err != nil {
		return fmt.Errorf("failed to verify OTP: %w", err)
	}
	if !matched {
		return webutil.ErrBadRequest("Invalid OTP")
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "OTP verified"})
	return nil
}

// HandleResetPassword hashes and stores the new password unconditionally.
func (h *PasswordResetHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) error {
	var requestData struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		return webutil.ErrBadRequest("Invalid request payload: " + err.Error())
	}
	defer r.Body.Close()

	passwordHash, err := auth.HashPassword(requestData.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := h.Repo.UpdatePassword(r.Context(), requestData.Email, passwordHash); err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Password reset successfully"})
	return nil
}
