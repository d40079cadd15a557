package web

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/tahsinratul/life-client/internal/logging"
	"github.com/tahsinratul/life-client/internal/navigation"
	"github.com/tahsinratul/life-client/pkg/sdk"
)

// LoginRequest signs in with a password, or through the browser when Social is set.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Social   bool   `json:"social"`
}

// RegisterRequest creates an account.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Photo    string `json:"photo"`
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorBody{Error: "sign-in is disabled while a static token is configured"})
		return
	}
	var req LoginRequest
	if !decode(w, r, &req) {
		return
	}

	var identity *sdk.Identity
	var err error
	if req.Social {
		identity, err = h.auth.SignInWithSocial(r.Context())
	} else {
		identity, err = h.auth.SignInWithPassword(r.Context(), req.Email, req.Password)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Social {
		h.recordUser(r, identity, identity.DisplayName, identity.PhotoURL)
	}
	http.Redirect(w, r, returnTo(r), http.StatusSeeOther)
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorBody{Error: "registration is disabled while a static token is configured"})
		return
	}
	var req RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	identity, err := h.auth.CreateAccount(r.Context(), sdk.SignUpInput{
		Address:     req.Email,
		Password:    req.Password,
		DisplayName: req.Name,
		PhotoURL:    req.Photo,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.recordUser(r, identity, req.Name, req.Photo)
	http.Redirect(w, r, navigation.RouteHome, http.StatusSeeOther)
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.session.SignOut(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, navigation.RouteLogin, http.StatusSeeOther)
}

// recordUser stores the profile after sign-up or social sign-in. The account
// already exists at the provider, so a failure here is only logged.
func (h *handlers) recordUser(r *http.Request, identity *sdk.Identity, name, photo string) {
	err := h.public.UpsertUser(r.Context(), sdk.User{
		Email: identity.Address,
		Name:  name,
		Photo: photo,
	})
	if err != nil {
		h.logger.Warn().Err(err).Str(logging.FieldAddress, identity.Address).Msg("failed to record user profile")
	}
}

// returnTo is the local path the login page was reached from, or home.
func returnTo(r *http.Request) string {
	from := r.URL.Query().Get(navigation.FromParam)
	if from == "" || !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") {
		return navigation.RouteHome
	}
	if u, err := url.Parse(from); err != nil || u.Host != "" {
		return navigation.RouteHome
	}
	return from
}
