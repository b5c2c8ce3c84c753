// FilePath: api/resources/api.resource.account.go
package resources

import (
	"encoding/json"
	"net/http"
	"strings"

	nuts "github.com/vaudience/go-nuts"

	"github.com/Rajveerk82/MCD-SmartLight/api/middleware"
	"github.com/Rajveerk82/MCD-SmartLight/internal/errors"
	"github.com/Rajveerk82/MCD-SmartLight/internal/lightservice"
	"github.com/Rajveerk82/MCD-SmartLight/internal/models"
	"github.com/Rajveerk82/MCD-SmartLight/internal/session"
)

// AccountHandlers encapsulates authentication and account HTTP handlers
type AccountHandlers struct {
	sessions     session.Provider
	lightservice *lightservice.LightService
}

type credentialsRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName,omitempty"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// @Summary Register a new account
// @Description Create an operator account with a unique email
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body credentialsRequest true "Email, password and display name"
// @Success 201 {object} models.User
// @Failure 400 {object} errors.APIError
// @Failure 409 {object} errors.APIError
// @Router /auth/register [post]
func (h *AccountHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	requestID := nuts.NID("req", 12)

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	user, err := h.sessions.Register(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		respondWithError(w, asAPIError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusCreated, user)
}

// @Summary Log in
// @Description Exchange email and password for a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body credentialsRequest true "Email and password"
// @Success 200 {object} loginResponse
// @Failure 401 {object} errors.APIError
// @Router /auth/login [post]
func (h *AccountHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	requestID := nuts.NID("req", 12)

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	token, user, err := h.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithError(w, asAPIError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, loginResponse{Token: token, User: *user})
}

// @Summary Log out
// @Description Revoke the current session token
// @Tags auth
// @Success 204
// @Router /auth/logout [post]
// @Security BearerAuth
func (h *AccountHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if err := h.sessions.Logout(r.Context(), token); err != nil {
		respondWithError(w, asAPIError(err).WithRequestID(requestID))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary Current account
// @Description Get the account behind the current session
// @Tags account
// @Produce json
// @Success 200 {object} models.User
// @Router /account [get]
// @Security BearerAuth
func (h *AccountHandlers) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, errors.NewAuthError("no active session", nil))
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

type profileRequest struct {
	DisplayName string `json:"displayName"`
}

// @Summary Update display name
// @Tags account
// @Accept json
// @Success 204
// @Failure 400 {object} errors.APIError
// @Router /account/profile [put]
// @Security BearerAuth
func (h *AccountHandlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	h.updateAccount(w, r, func(uid string, body json.RawMessage) error {
		var req profileRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return errors.NewValidationError("invalid request body", err)
		}
		return h.sessions.UpdateProfile(r.Context(), uid, req.DisplayName)
	})
}

type emailRequest struct {
	Email string `json:"email"`
}

// @Summary Update email address
// @Tags account
// @Accept json
// @Success 204
// @Failure 400 {object} errors.APIError
// @Failure 409 {object} errors.APIError
// @Router /account/email [put]
// @Security BearerAuth
func (h *AccountHandlers) UpdateEmail(w http.ResponseWriter, r *http.Request) {
	h.updateAccount(w, r, func(uid string, body json.RawMessage) error {
		var req emailRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return errors.NewValidationError("invalid request body", err)
		}
		return h.sessions.UpdateEmail(r.Context(), uid, req.Email)
	})
}

type passwordRequest struct {
	Password string `json:"password"`
}

// @Summary Update password
// @Tags account
// @Accept json
// @Success 204
// @Failure 400 {object} errors.APIError
// @Router /account/password [put]
// @Security BearerAuth
func (h *AccountHandlers) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	h.updateAccount(w, r, func(uid string, body json.RawMessage) error {
		var req passwordRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return errors.NewValidationError("invalid request body", err)
		}
		return h.sessions.UpdatePassword(r.Context(), uid, req.Password)
	})
}

// @Summary Get dashboard settings
// @Description Get the current user's dashboard settings, with defaults filled in
// @Tags account
// @Produce json
// @Success 200 {object} models.Settings
// @Router /settings [get]
// @Security BearerAuth
func (h *AccountHandlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, errors.NewAuthError("no active session", nil).WithRequestID(requestID))
		return
	}

	settings, err := h.lightservice.GetSettings(r.Context(), user.UID)
	if err != nil {
		respondWithError(w, asAPIError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, settings)
}

// @Summary Save dashboard settings
// @Description Replace the current user's dashboard settings
// @Tags account
// @Accept json
// @Produce json
// @Param settings body models.Settings true "Full settings record"
// @Success 200 {object} models.Settings
// @Failure 400 {object} errors.APIError
// @Router /settings [put]
// @Security BearerAuth
func (h *AccountHandlers) SaveSettings(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, errors.NewAuthError("no active session", nil).WithRequestID(requestID))
		return
	}

	var settings models.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	if err := h.lightservice.SaveSettings(r.Context(), user.UID, settings); err != nil {
		respondWithError(w, asAPIError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, settings)
}

// updateAccount factors the shared session lookup and body handling of the
// account mutation endpoints.
func (h *AccountHandlers) updateAccount(w http.ResponseWriter, r *http.Request, apply func(uid string, body json.RawMessage) error) {
	requestID := nuts.NID("req", 12)

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, errors.NewAuthError("no active session", nil).WithRequestID(requestID))
		return
	}

	var body json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	if err := apply(user.UID, body); err != nil {
		respondWithError(w, asAPIError(err).WithRequestID(requestID))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
