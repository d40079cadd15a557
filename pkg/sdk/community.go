package sdk

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ListReviews returns published customer reviews.
func (c *Client) ListReviews(ctx context.Context) ([]Review, error) {
	var reviews []Review
	if err := c.get(ctx, "/reviews", nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// SubmitReview stores a rating between 1 and 5 for a purchased policy.
func (c *Client) SubmitReview(ctx context.Context, review Review) error {
	if review.Rating < 1 || review.Rating > 5 {
		return errors.New("rating must be between 1 and 5")
	}
	if err := requireID("policy", review.PolicyID); err != nil {
		return err
	}
	if review.SubmittedAt.IsZero() {
		review.SubmittedAt = time.Now().UTC()
	}
	return c.post(ctx, "/reviews", review, nil)
}

// Subscribe adds an address to the newsletter.
func (c *Client) Subscribe(ctx context.Context, sub Subscriber) error {
	sub.Email = strings.ToLower(strings.TrimSpace(sub.Email))
	if sub.Email == "" {
		return errors.New("email is required")
	}
	return c.post(ctx, "/subscribers", sub, nil)
}

// ApplyAsAgent files a request to become an agent.
func (c *Client) ApplyAsAgent(ctx context.Context, app AgentApplication) error {
	if app.Email == "" || app.FullName == "" {
		return errors.New("agent application needs an email and a full name")
	}
	app.Status = "pending"
	if app.CreatedAt.IsZero() {
		app.CreatedAt = time.Now().UTC()
	}
	return c.post(ctx, "/to-be-agent", app, nil)
}

// ListAgentApplications returns pending agent requests. Admin only.
func (c *Client) ListAgentApplications(ctx context.Context) ([]AgentApplication, error) {
	var apps []AgentApplication
	if err := c.get(ctx, "/to-be-agent", nil, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// SetAgentApplicationStatus accepts or rejects an agent request. Admin only.
func (c *Client) SetAgentApplicationStatus(ctx context.Context, id, status string) error {
	if err := requireID("agent application", id); err != nil {
		return err
	}
	return c.patch(ctx, "/to-be-agent/"+segment(id), map[string]string{"status": status}, nil)
}

// FeaturedAgents returns the agents shown on the home page.
func (c *Client) FeaturedAgents(ctx context.Context, limit int) ([]User, error) {
	query := url.Values{"role": {string(RoleAgent)}}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var agents []User
	if err := c.get(ctx, "/agents", query, &agents); err != nil {
		return nil, err
	}
	return agents, nil
}
