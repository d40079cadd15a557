package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/tahsinratul/life-client/internal/app"
	"github.com/tahsinratul/life-client/internal/navigation"
	"github.com/tahsinratul/life-client/pkg/sdk"
)

type handlers struct {
	session Session
	auth    app.Authenticator
	api     *sdk.Client
	public  *sdk.Client
	roles   Roles
	logger  zerolog.Logger
}

// HomePage is the landing page payload.
type HomePage struct {
	TopPolicies []sdk.Policy `json:"topPolicies"`
	Blogs       []sdk.Blog   `json:"blogs"`
	Reviews     []sdk.Review `json:"reviews"`
	Agents      []sdk.User   `json:"agents"`
}

// PolicyListing is one catalogue page with its page count.
type PolicyListing struct {
	sdk.PolicyPage
	Page  int `json:"page"`
	Pages int `json:"pages"`
}

// NoticePage is served by /login and /forbidden.
type NoticePage struct {
	State    string `json:"state"`
	From     string `json:"from,omitempty"`
	SignedIn bool   `json:"signedIn"`
}

const (
	homeBlogLimit  = 4
	homeAgentLimit = 3
)

func (h *handlers) home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var page HomePage
	var err error

	if page.TopPolicies, err = h.public.TopPolicies(ctx); err != nil {
		h.fail(w, r, err)
		return
	}
	if page.Blogs, err = h.public.ListBlogs(ctx, sdk.BlogQuery{Limit: homeBlogLimit, Sort: "desc"}); err != nil {
		h.fail(w, r, err)
		return
	}
	if page.Reviews, err = h.public.ListReviews(ctx); err != nil {
		h.fail(w, r, err)
		return
	}
	if page.Agents, err = h.public.FeaturedAgents(ctx, homeAgentLimit); err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, page)
}

func (h *handlers) listPolicies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := sdk.PolicyQuery{
		Category: q.Get("category"),
		Search:   q.Get("search"),
	}
	query.Page, _ = strconv.Atoi(q.Get("page"))
	query.Limit, _ = strconv.Atoi(q.Get("limit"))

	page, err := h.public.ListPolicies(r.Context(), query)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	current := max(query.Page, 1)
	respond(w, r, http.StatusOK, PolicyListing{PolicyPage: *page, Page: current, Pages: page.TotalPages(query.Limit)})
}

func (h *handlers) getPolicy(w http.ResponseWriter, r *http.Request) {
	policy, err := h.public.GetPolicy(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, policy)
}

func (h *handlers) listBlogs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	blogs, err := h.public.ListBlogs(r.Context(), sdk.BlogQuery{Limit: limit, Sort: r.URL.Query().Get("sort")})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, blogs)
}

func (h *handlers) getBlog(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	blog, err := h.public.GetBlog(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.public.VisitBlog(r.Context(), id); err != nil {
		h.logger.Warn().Err(err).Str("blog", id).Msg("failed to count blog visit")
	}
	respond(w, r, http.StatusOK, blog)
}

func (h *handlers) subscribe(w http.ResponseWriter, r *http.Request) {
	var sub sdk.Subscriber
	if !decode(w, r, &sub) {
		return
	}
	if err := h.public.Subscribe(r.Context(), sub); err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, sub)
}

func (h *handlers) forbidden(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusForbidden, NoticePage{
		State:    "forbidden",
		From:     r.URL.Query().Get(navigation.FromParam),
		SignedIn: h.session.Current() != nil,
	})
}

func (h *handlers) loginPage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, NoticePage{
		State:    "login",
		From:     r.URL.Query().Get(navigation.FromParam),
		SignedIn: h.session.Current() != nil,
	})
}
