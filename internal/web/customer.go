package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tahsinratul/life-client/internal/navigation"
	"github.com/tahsinratul/life-client/pkg/sdk"
)

// ProfilePage is the signed-in caller's profile with the resolved role.
type ProfilePage struct {
	User  *sdk.User `json:"user"`
	Role  sdk.Role  `json:"role,omitempty"`
	Phase string    `json:"phase"`
}

// ApplyRequest carries the applicant details for a saved quote.
type ApplyRequest struct {
	Applicant map[string]string `json:"applicant"`
}

// PayRequest records a confirmed card payment for an application.
type PayRequest struct {
	TransactionID string   `json:"transactionId"`
	PaymentMethod []string `json:"paymentMethod"`
}

// identity returns the signed-in caller. The guard has already granted the
// route, so a missing identity means the session ended mid-request.
func (h *handlers) identity(w http.ResponseWriter, r *http.Request) (*sdk.Identity, bool) {
	identity := h.session.Current()
	if identity == nil {
		http.Redirect(w, r, navigation.RedirectURL(navigation.RouteLogin, r.URL.Path), http.StatusSeeOther)
		return nil, false
	}
	return identity, true
}

func (h *handlers) createQuote(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	var in sdk.QuoteInput
	if !decode(w, r, &in) {
		return
	}
	quote, err := h.api.CreateQuote(r.Context(), identity, chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, quote)
}

func (h *handlers) apply(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	var req ApplyRequest
	if !decode(w, r, &req) {
		return
	}

	quotes, err := h.api.ListQuotes(r.Context(), identity.Address)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	quoteID := chi.URLParam(r, "quoteId")
	var quote *sdk.Quote
	for i := range quotes {
		if quotes[i].ID == quoteID {
			quote = &quotes[i]
			break
		}
	}
	if quote == nil {
		respond(w, r, http.StatusNotFound, ErrorBody{Error: "quote not found"})
		return
	}

	policy, err := h.public.GetPolicy(r.Context(), quote.PolicyID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	application, err := h.api.SubmitApplication(r.Context(), identity, policy, quote, req.Applicant)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, application)
}

func (h *handlers) applyAsAgent(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	var application sdk.AgentApplication
	if !decode(w, r, &application) {
		return
	}
	application.Email = identity.Address
	if err := h.api.ApplyAsAgent(r.Context(), application); err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, application)
}

func (h *handlers) profile(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	user, err := h.api.GetProfile(r.Context(), identity.Address)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page := ProfilePage{User: user}
	st := h.roles.State()
	page.Phase = st.Phase.String()
	if st.Known() && st.Address == identity.Address {
		page.Role = st.Role
	}
	respond(w, r, http.StatusOK, page)
}

func (h *handlers) updateProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	var update sdk.ProfileUpdate
	if !decode(w, r, &update) {
		return
	}
	user, err := h.api.GetProfile(r.Context(), identity.Address)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.api.UpdateProfile(r.Context(), user.ID, update); err != nil {
		h.fail(w, r, err)
		return
	}
	if h.auth != nil && (update.Name != "" || update.Photo != "") {
		if _, err := h.auth.UpdateProfile(r.Context(), update.Name, update.Photo); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	respond(w, r, http.StatusOK, update)
}

func (h *handlers) myPolicies(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	applications, err := h.api.ListMyApplications(r.Context(), identity.Address)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, applications)
}

func (h *handlers) submitReview(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	var review sdk.Review
	if !decode(w, r, &review) {
		return
	}
	application, err := h.api.GetApplication(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	review.UserEmail = identity.Address
	review.UserName = identity.DisplayName
	review.Photo = identity.PhotoURL
	review.PolicyID = application.PolicyID
	review.PolicyTitle = application.PolicyTitle
	if err := h.api.SubmitReview(r.Context(), review); err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, review)
}

func (h *handlers) myClaims(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	claims, err := h.api.ListClaims(r.Context(), identity.Address)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, claims)
}

func (h *handlers) fileClaim(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	var claim sdk.Claim
	if !decode(w, r, &claim) {
		return
	}
	claim.UserEmail = identity.Address
	filed, err := h.api.FileClaim(r.Context(), claim)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, filed)
}

func (h *handlers) paymentStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	applications, err := h.api.ListApprovedApplications(r.Context(), identity.Address)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, applications)
}

func (h *handlers) pay(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	var req PayRequest
	if !decode(w, r, &req) {
		return
	}
	ctx := r.Context()
	application, err := h.api.GetApplication(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if application.Status != sdk.ApplicationApproved {
		respond(w, r, http.StatusConflict, ErrorBody{Error: "only approved applications can be paid"})
		return
	}
	amount := float64(application.QuoteInfo.Monthly)
	if _, err := h.api.CreatePaymentIntent(ctx, amount); err != nil {
		h.fail(w, r, err)
		return
	}
	payment, err := h.api.RecordPayment(ctx, sdk.Payment{
		AppID:         application.ID,
		PolicyID:      application.PolicyID,
		PolicyTitle:   application.PolicyTitle,
		Email:         identity.Address,
		TransactionID: req.TransactionID,
		Amount:        amount,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.api.MarkPaid(ctx, application.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, payment)
}
