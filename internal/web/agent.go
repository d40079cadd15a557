package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tahsinratul/life-client/pkg/sdk"
)

// ApproveRequest names the policy whose purchase count the approval bumps.
// It is looked up from the application when omitted.
type ApproveRequest struct {
	PolicyID string `json:"policyId"`
}

// StatusRequest sets a review status.
type StatusRequest struct {
	Status string `json:"status"`
}

func (h *handlers) assignedCustomers(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	applications, err := h.api.ListAssignedApplications(r.Context(), identity.Address)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, applications)
}

func (h *handlers) approveApplication(w http.ResponseWriter, r *http.Request) {
	var req ApproveRequest
	if !decode(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	if req.PolicyID == "" {
		application, err := h.api.GetApplication(r.Context(), id)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		req.PolicyID = application.PolicyID
	}
	if err := h.api.ApproveAssignedApplication(r.Context(), id, req.PolicyID); err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, StatusRequest{Status: string(sdk.ApplicationApproved)})
}

func (h *handlers) claimReview(w http.ResponseWriter, r *http.Request) {
	claims, err := h.api.ListAllClaims(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, claims)
}

func (h *handlers) setClaimStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.api.SetClaimStatus(r.Context(), chi.URLParam(r, "id"), sdk.ClaimStatus(req.Status)); err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, req)
}

func (h *handlers) postBlog(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	var blog sdk.Blog
	if !decode(w, r, &blog) {
		return
	}
	created, err := h.api.CreateBlog(r.Context(), identity, blog)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, created)
}
