package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tahsinratul/life-client/internal/logging"
	"github.com/tahsinratul/life-client/internal/navigation"
	"github.com/tahsinratul/life-client/pkg/sdk"
)

// ErrorBody is the payload of every failed request.
type ErrorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// redirected answers with the redirect held in the request's slot, if any.
// A burst of 401/403 responses during one handler becomes a single 303.
func redirected(w http.ResponseWriter, r *http.Request) bool {
	slot, ok := navigation.SlotFromContext(r.Context())
	if !ok {
		return false
	}
	to, from, held := slot.Redirect()
	if !held {
		return false
	}
	http.Redirect(w, r, navigation.RedirectURL(to, from), http.StatusSeeOther)
	return true
}

func respond(w http.ResponseWriter, r *http.Request, status int, body any) {
	if redirected(w, r) {
		return
	}
	writeJSON(w, status, body)
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	if redirected(w, r) {
		return
	}

	var providerErr *sdk.ProviderError
	var httpErr *sdk.HTTPError
	switch {
	case errors.As(err, &providerErr):
		writeJSON(w, providerStatus(providerErr.Kind), ErrorBody{Error: providerErr.UserMessage()})
	case errors.As(err, &httpErr):
		status := http.StatusBadGateway
		if httpErr.StatusCode == http.StatusNotFound || httpErr.StatusCode == http.StatusConflict {
			status = httpErr.StatusCode
		}
		h.logger.Warn().Err(err).Str(logging.FieldPath, r.URL.Path).Msg("backend request failed")
		writeJSON(w, status, ErrorBody{Error: err.Error()})
	default:
		h.logger.Error().Err(err).Str(logging.FieldPath, r.URL.Path).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, ErrorBody{Error: err.Error()})
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, ErrorBody{Error: msg})
}

func providerStatus(kind sdk.ProviderErrorKind) int {
	switch kind {
	case sdk.ProviderInvalidCredentials:
		return http.StatusUnauthorized
	case sdk.ProviderAddressInUse:
		return http.StatusConflict
	case sdk.ProviderWeakSecret:
		return http.StatusBadRequest
	case sdk.ProviderCancelled:
		return http.StatusRequestTimeout
	default:
		return http.StatusServiceUnavailable
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(w, "Invalid request body")
		return false
	}
	return true
}
