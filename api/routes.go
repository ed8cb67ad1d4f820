package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	rh "github.com/evolvetech/opsdash/route-handlers"
	"github.com/evolvetech/opsdash/webutil"
)

const (
	apiBasePath        = "/api"
	authBasePath       = "/auth"
	recordingsBasePath = "/recordings"
)

const (
	paramID = "id" // General parameter name for resource IDs
)

func SetupRoutes(
	userHandler *rh.UserHandler,
	sessionHandler *rh.SessionHandler,
	resetHandler *rh.PasswordResetHandler,
	uploadHandler *rh.UploadHandler,
	recordingHandler *rh.RecordingHandler,
	sessionSecret []byte,
) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)    // Log every request
	r.Use(middleware.Recoverer) // Recover from panics
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route(apiBasePath, func(r chi.Router) {
		r.Use(SetHeader(webutil.HeaderContentType, webutil.ContentTypeJSONUTF8)) // Default Content-Type

		r.Post("/signup", webutil.MakeHandler(userHandler.HandleSignup))
		r.Post("/upload", webutil.MakeHandler(uploadHandler.HandleUpload))

		configureAuthRoutes(r, sessionHandler, resetHandler)
		configureRecordingRoutes(r, recordingHandler)
	})

	configurePageRoutes(r, sessionSecret)

	// Health check endpoint
	r.Get("/healthz", handleHealthCheck)

	return r
}

// --- Auth Routes ---
func configureAuthRoutes(r chi.Router, sessionHandler *rh.SessionHandler, resetHandler *rh.PasswordResetHandler) {
	r.Route(authBasePath, func(r chi.Router) {
		r.Post("/login", webutil.MakeHandler(sessionHandler.HandleLogin))
		r.Post("/logout", webutil.MakeHandler(sessionHandler.HandleLogout))
		r.Get("/session", webutil.MakeHandler(sessionHandler.HandleSession))

		// Three sequential password-reset steps, driven by the client.
		r.Post("/request-otp", webutil.MakeHandler(resetHandler.HandleRequestOTP))
		r.Post("/verify-otp", webutil.MakeHandler(resetHandler.HandleVerifyOTP))
		r.Post("/reset-password", webutil.MakeHandler(resetHandler.HandleResetPassword))
	})
}

// --- Recording Routes ---
func configureRecordingRoutes(r chi.Router, handler *rh.RecordingHandler) {
	specificRecordingPath := "/{" + paramID + "}"

	r.Route(recordingsBasePath, func(r chi.Router) {
		r.Get("/", webutil.MakeHandler(handler.HandleGetRecordings))
		r.Get(specificRecordingPath, webutil.MakeHandler(handler.HandleGetRecording))
		r.Delete(specificRecordingPath, webutil.MakeHandler(handler.HandleDeleteRecording))
	})
}

// --- Page Routes (behind the session guard) ---
func configurePageRoutes(r chi.Router, sessionSecret []byte) {
	r.Group(func(r chi.Router) {
		r.Use(SessionGuard(sessionSecret))

		r.Get("/", rh.ServePage("Evolve Tech"))
		r.Get("/login", rh.ServePage("Login"))
		r.Get("/signup", rh.ServePage("Sign Up"))
		r.Get("/dashboard", rh.ServePage("Dashboard"))
		r.Get("/profile", rh.ServePage("Profile"))
		r.Get("/settings", rh.ServePage("Settings"))
		r.Get("/quality-assurance", rh.ServePage("Quality Assurance"))
	})
}

// --- Utility Functions ---

// handleHealthCheck responds to a health check request.
func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(webutil.HeaderContentType, webutil.ContentTypeTextPlainUTF8)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// SetHeader is a middleware to set a response header.
func SetHeader(key, value string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(key, value)
			next.ServeHTTP(w, r)
		})
	}
}
