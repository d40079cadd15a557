package sdk

import (
	"context"
	"net/url"
	"strconv"
)

// PolicyQuery filters the public policy catalogue.
type PolicyQuery struct {
	Page     int
	Limit    int
	Category string
	Search   string
}

// DefaultPolicyPageSize matches the catalogue grid of nine cards.
const DefaultPolicyPageSize = 9

// ListPolicies returns one page of the catalogue.
func (c *Client) ListPolicies(ctx context.Context, q PolicyQuery) (*PolicyPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPolicyPageSize
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("category", q.Category)
	params.Set("search", q.Search)

	var page PolicyPage
	if err := c.get(ctx, "/policies", params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// TotalPages is the number of catalogue pages for a page size.
func (p *PolicyPage) TotalPages(limit int) int {
	if limit < 1 {
		limit = DefaultPolicyPageSize
	}
	return (p.Total + limit - 1) / limit
}

// TopPolicies returns the most purchased policies.
func (c *Client) TopPolicies(ctx context.Context) ([]Policy, error) {
	var policies []Policy
	if err := c.get(ctx, "/top-policies", nil, &policies); err != nil {
		return nil, err
	}
	return policies, nil
}

// GetPolicy returns a single policy.
func (c *Client) GetPolicy(ctx context.Context, id string) (*Policy, error) {
	if err := requireID("policy", id); err != nil {
		return nil, err
	}
	var policy Policy
	if err := c.get(ctx, "/policies/"+segment(id), nil, &policy); err != nil {
		return nil, err
	}
	return &policy, nil
}

// ListAllPolicies returns the unpaginated catalogue for management. Admin only.
func (c *Client) ListAllPolicies(ctx context.Context) ([]Policy, error) {
	var policies []Policy
	if err := c.get(ctx, "/policy", nil, &policies); err != nil {
		return nil, err
	}
	return policies, nil
}

// CreatePolicy adds a policy. Admin only.
func (c *Client) CreatePolicy(ctx context.Context, policy Policy) (*InsertResult, error) {
	var res InsertResult
	if err := c.post(ctx, "/policies", policy, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// UpdatePolicy replaces a policy. Admin only.
func (c *Client) UpdatePolicy(ctx context.Context, id string, policy Policy) error {
	if err := requireID("policy", id); err != nil {
		return err
	}
	policy.ID = ""
	return c.put(ctx, "/policy/"+segment(id), policy, nil)
}

// DeletePolicy removes a policy. Admin only.
func (c *Client) DeletePolicy(ctx context.Context, id string) error {
	if err := requireID("policy", id); err != nil {
		return err
	}
	return c.delete(ctx, "/policiesDelete/"+segment(id), nil)
}

// IncrementPurchase bumps a policy's purchase counter.
func (c *Client) IncrementPurchase(ctx context.Context, id string) error {
	if err := requireID("policy", id); err != nil {
		return err
	}
	return c.patch(ctx, "/policies/purchase/"+segment(id), nil, nil)
}
