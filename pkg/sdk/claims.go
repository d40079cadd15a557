package sdk

import (
	"context"
	"errors"
	"net/url"
	"time"
)

// FileClaim submits a claim against a purchased policy.
func (c *Client) FileClaim(ctx context.Context, claim Claim) (*Claim, error) {
	if err := requireID("policy", claim.PolicyID); err != nil {
		return nil, err
	}
	if claim.UserEmail == "" || claim.Reason == "" {
		return nil, errors.New("claim needs an email and a reason")
	}
	claim.Status = ClaimPending
	if claim.SubmittedAt.IsZero() {
		claim.SubmittedAt = time.Now().UTC()
	}

	var res InsertResult
	if err := c.post(ctx, "/claims", claim, &res); err != nil {
		return nil, err
	}
	claim.ID = res.InsertedID
	return &claim, nil
}

// ListClaims returns the claims filed by address.
func (c *Client) ListClaims(ctx context.Context, address string) ([]Claim, error) {
	var claims []Claim
	if err := c.get(ctx, "/claims", url.Values{"userEmail": {address}}, &claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ListAllClaims returns every claim for agent review.
func (c *Client) ListAllClaims(ctx context.Context) ([]Claim, error) {
	var claims []Claim
	if err := c.get(ctx, "/claims", nil, &claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// SetClaimStatus records the agent's decision on a claim.
func (c *Client) SetClaimStatus(ctx context.Context, id string, status ClaimStatus) error {
	if err := requireID("claim", id); err != nil {
		return err
	}
	switch status {
	case ClaimPending, ClaimApproved, ClaimRejected:
	default:
		return errors.New("unknown claim status " + string(status))
	}
	return c.patch(ctx, "/claims/status/"+segment(id), map[string]ClaimStatus{"status": status}, nil)
}
