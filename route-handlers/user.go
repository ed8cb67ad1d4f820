package routehandlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/evolvetech/opsdash/auth"
	"github.com/evolvetech/opsdash/datastore"
	"github.com/evolvetech/opsdash/models"
	"github.com/evolvetech/opsdash/webutil"
)

const avatarURLFormat = "https://api.multiavatar.com/%s.png"

type UserHandler struct {
	Repo *datastore.UserRepository
}

func NewUserHandler(repo *datastore.UserRepository) *UserHandler {
	return &UserHandler{Repo: repo}
}

// HandleSignup creates a user account. Duplicate email is reported as a 400
// with the exact message the dashboard client matches on.
func (h *UserHandler) HandleSignup(w http.ResponseWriter, r *http.Request) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return webutil.ErrBadRequestWrap("Failed to read request body", err)
	}
	defer r.Body.Close()

	if len(body) == 0 {
		return webutil.ErrBadRequest("Request body is empty")
	}

	var requestData struct {
		Name          string `json:"name"`
		Phone         string `json:"phone"`
		Email         string `json:"email"`
		TrafficSource string `json:"traffic_source"`
		Password      string `json:"password"`
	}
	if err := json.Unmarshal(body, &requestData); err != nil {
		return webutil.ErrBadRequest("Invalid JSON format")
	}

	if requestData.Name == "" || requestData.Phone == "" || requestData.Email == "" ||
		requestData.TrafficSource == "" || requestData.Password == "" {
		return webutil.ErrBadRequest("All fields are required")
	}

	// Pre-check for a friendlier error; the unique index backstops races.
	_, err = h.Repo.GetUserByEmail(r.Context(), requestData.Email)
	if err == nil {
		return webutil.ErrBadRequest("Email already exists")
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := auth.HashPassword(requestData.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	newUser := models.User{
		Name:          requestData.Name,
		Phone:         requestData.Phone,
		Email:         requestData.Email,
		TrafficSource: requestData.TrafficSource,
		Password:      passwordHash,
		Avatar:        fmt.Sprintf(avatarURLFormat, url.PathEscape(requestData.Name)),
		CreatedAt:     time.Now().UTC(),
	}

	if err := h.Repo.CreateUser(r.Context(), &newUser); err != nil {
		if errors.Is(err, datastore.ErrDuplicateEmail) {
			return webutil.ErrBadRequest("Email already exists")
		}
		return fmt.Errorf("failed to create user %s: %w", newUser.Email, err)
	}

	webutil.RespondWithJSON(w, http.StatusCreated, map[string]string{"message": "User created successfully"})
	return nil
}
