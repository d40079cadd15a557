package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tahsinratul/life-client/pkg/sdk"
)

// AssignRequest names the agent an application is assigned to.
type AssignRequest struct {
	Agent string `json:"agent"`
}

// RejectRequest carries the feedback shown to the applicant.
type RejectRequest struct {
	Feedback string `json:"feedback"`
}

// RoleRequest changes a user's role. Email, when given, drops any cached
// role for that address.
type RoleRequest struct {
	Role  string `json:"role"`
	Email string `json:"email"`
}

// TransactionsPage is the payment listing with its income summary.
type TransactionsPage struct {
	Payments []sdk.Payment      `json:"payments"`
	Summary  sdk.PaymentSummary `json:"summary"`
}

const dateParam = "2006-01-02"

func (h *handlers) managePolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := h.api.ListAllPolicies(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, policies)
}

func (h *handlers) createPolicy(w http.ResponseWriter, r *http.Request) {
	var policy sdk.Policy
	if !decode(w, r, &policy) {
		return
	}
	res, err := h.api.CreatePolicy(r.Context(), policy)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, res)
}

func (h *handlers) deletePolicy(w http.ResponseWriter, r *http.Request) {
	if err := h.api.DeletePolicy(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, http.StatusNoContent, nil)
}

func (h *handlers) manageApplications(w http.ResponseWriter, r *http.Request) {
	applications, err := h.api.ListApplicationsAdmin(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, applications)
}

func (h *handlers) assignAgent(w http.ResponseWriter, r *http.Request) {
	var req AssignRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Agent == "" {
		badRequest(w, "agent is required")
		return
	}
	if err := h.api.AssignAgent(r.Context(), chi.URLParam(r, "id"), req.Agent); err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, req)
}

func (h *handlers) rejectApplication(w http.ResponseWriter, r *http.Request) {
	var req RejectRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.api.RejectApplication(r.Context(), chi.URLParam(r, "id"), req.Feedback); err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, req)
}

func (h *handlers) manageUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.api.ListUsers(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, users)
}

func (h *handlers) setUserRole(w http.ResponseWriter, r *http.Request) {
	var req RoleRequest
	if !decode(w, r, &req) {
		return
	}
	newRole, err := sdk.ParseRole(req.Role)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := h.api.SetUserRole(r.Context(), chi.URLParam(r, "id"), newRole); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Email != "" {
		h.roles.Invalidate(req.Email)
	}
	respond(w, r, http.StatusOK, RoleRequest{Role: newRole.String(), Email: req.Email})
}

func (h *handlers) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.api.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, http.StatusNoContent, nil)
}

func (h *handlers) manageBlogs(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.api.ListBlogs(r.Context(), sdk.BlogQuery{})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, blogs)
}

func (h *handlers) deleteBlog(w http.ResponseWriter, r *http.Request) {
	if err := h.api.DeleteBlog(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, http.StatusNoContent, nil)
}

func (h *handlers) manageTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := sdk.PaymentFilter{Email: q.Get("email"), Policy: q.Get("policy")}
	var err error
	if v := q.Get("from"); v != "" {
		if filter.From, err = time.Parse(dateParam, v); err != nil {
			badRequest(w, "from must be YYYY-MM-DD")
			return
		}
	}
	if v := q.Get("to"); v != "" {
		if filter.To, err = time.Parse(dateParam, v); err != nil {
			badRequest(w, "to must be YYYY-MM-DD")
			return
		}
	}

	payments, err := h.api.ListPayments(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, TransactionsPage{Payments: payments, Summary: sdk.SummarizePayments(payments)})
}
