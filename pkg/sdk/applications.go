package sdk

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"
)

// SubmitApplication files an application built from a saved quote.
func (c *Client) SubmitApplication(ctx context.Context, identity *Identity, policy *Policy, quote *Quote, applicant map[string]string) (*Application, error) {
	if identity == nil || identity.Address == "" {
		return nil, errors.New("a signed-in identity is required")
	}
	if policy == nil || quote == nil {
		return nil, errors.New("policy and quote are required")
	}

	app := Application{
		UserEmail:     identity.Address,
		UserName:      identity.DisplayName,
		ApplicantName: applicant["name"],
		PolicyID:      policy.ID,
		PolicyTitle:   policy.Title,
		QuoteID:       quote.ID,
		QuoteInfo: QuoteInfo{
			Monthly:  quote.MonthlyPremium,
			Annual:   quote.AnnualPremium,
			Duration: quote.Duration,
			Coverage: quote.Coverage,
			Smoker:   quote.Smoker,
			Age:      quote.Age,
			Gender:   quote.Gender,
		},
		ApplicantInfo: applicant,
		Status:        ApplicationPending,
		SubmittedAt:   time.Now().UTC(),
	}

	var res InsertResult
	if err := c.post(ctx, "/applications", app, &res); err != nil {
		return nil, err
	}
	app.ID = res.InsertedID
	return &app, nil
}

// ListMyApplications returns the applications filed by address.
func (c *Client) ListMyApplications(ctx context.Context, address string) ([]Application, error) {
	var apps []Application
	if err := c.get(ctx, "/application", url.Values{"email": {address}}, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// ListApprovedApplications returns approved applications awaiting or holding payment.
func (c *Client) ListApprovedApplications(ctx context.Context, address string) ([]Application, error) {
	var apps []Application
	if err := c.get(ctx, "/approvedApplications", url.Values{"email": {address}}, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// GetApplication returns one application.
func (c *Client) GetApplication(ctx context.Context, id string) (*Application, error) {
	if err := requireID("application", id); err != nil {
		return nil, err
	}
	var app Application
	if err := c.get(ctx, "/application/"+segment(id), nil, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// ListApplicationsAdmin returns every application. Admin only.
func (c *Client) ListApplicationsAdmin(ctx context.Context) ([]Application, error) {
	var apps []Application
	if err := c.get(ctx, "/applicationsAdmin", nil, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// ListAssignedApplications returns the applications assigned to an agent.
func (c *Client) ListAssignedApplications(ctx context.Context, agent string) ([]Application, error) {
	var apps []Application
	if err := c.get(ctx, "/applications", url.Values{"assignedAgent": {agent}}, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// SetApprovalStatus sets the admin approval status.
func (c *Client) SetApprovalStatus(ctx context.Context, id string, status ApplicationStatus) error {
	if err := requireID("application", id); err != nil {
		return err
	}
	return c.patch(ctx, "/applications/"+segment(id)+"/status", map[string]ApplicationStatus{"status": status}, nil)
}

// AssignAgent assigns an agent to an application. Admin only.
func (c *Client) AssignAgent(ctx context.Context, id, agentEmail string) error {
	if err := requireID("application", id); err != nil {
		return err
	}
	if agentEmail == "" {
		return errors.New("agent email is required")
	}
	return c.patch(ctx, "/applications/"+segment(id), map[string]string{"assignedAgent": agentEmail}, nil)
}

// RejectApplication rejects an application with feedback for the applicant. Admin only.
func (c *Client) RejectApplication(ctx context.Context, id, feedback string) error {
	if err := requireID("application", id); err != nil {
		return err
	}
	return c.patch(ctx, "/applications/"+segment(id)+"/reject", map[string]string{"feedback": feedback}, nil)
}

// SetApplicationStatus sets the agent-reviewed status.
func (c *Client) SetApplicationStatus(ctx context.Context, id string, status ApplicationStatus) error {
	if err := requireID("application", id); err != nil {
		return err
	}
	return c.patch(ctx, "/applicationStatus/"+segment(id), map[string]ApplicationStatus{"status": status}, nil)
}

// SetPaymentStatus sets the payment status of an application.
func (c *Client) SetPaymentStatus(ctx context.Context, id, paymentStatus string) error {
	if err := requireID("application", id); err != nil {
		return err
	}
	return c.patch(ctx, "/applicationPaymentStatus/"+segment(id), map[string]string{"paymentStatus": paymentStatus}, nil)
}

// MarkPaid flags an application as paid after a successful payment.
func (c *Client) MarkPaid(ctx context.Context, id string) error {
	if err := requireID("application", id); err != nil {
		return err
	}
	return c.patch(ctx, "/applications/"+segment(id)+"/markPaid", nil, nil)
}

// ApproveAssignedApplication is the agent approval workflow: approve the
// application, open its payment as due and count the policy purchase. It
// stops at the first failing step.
func (c *Client) ApproveAssignedApplication(ctx context.Context, id, policyID string) error {
	if err := c.SetApplicationStatus(ctx, id, ApplicationApproved); err != nil {
		return fmt.Errorf("approve application: %w", err)
	}
	if err := c.SetPaymentStatus(ctx, id, "due"); err != nil {
		return fmt.Errorf("set payment due: %w", err)
	}
	if err := c.IncrementPurchase(ctx, policyID); err != nil {
		return fmt.Errorf("count policy purchase: %w", err)
	}
	return nil
}
