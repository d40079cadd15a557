package sdk

import (
	"context"
	"errors"
	"math"
	"net/url"
	"time"
)

// BasePremiumRate is the share of coverage charged over the policy term.
const BasePremiumRate = 0.05

// QuoteInput holds the applicant facts a premium is priced on.
type QuoteInput struct {
	Age           int
	Gender        string
	Coverage      int64
	DurationYears int
	Smoker        bool
}

// Premium is a priced quote, rounded to whole currency units.
type Premium struct {
	Monthly int64
	Annual  int64
}

// CalculatePremium prices a quote: the base rate spread over the term,
// adjusted by an age band factor and a smoker loading.
func CalculatePremium(in QuoteInput) (Premium, error) {
	switch {
	case in.Age <= 0:
		return Premium{}, errors.New("age must be positive")
	case in.Coverage <= 0:
		return Premium{}, errors.New("coverage must be positive")
	case in.DurationYears <= 0:
		return Premium{}, errors.New("duration must be positive")
	}

	annual := float64(in.Coverage) * BasePremiumRate / float64(in.DurationYears)
	annual *= ageFactor(in.Age)
	if in.Smoker {
		annual *= 1.3
	}

	return Premium{
		Monthly: int64(math.Round(annual / 12)),
		Annual:  int64(math.Round(annual)),
	}, nil
}

func ageFactor(age int) float64 {
	switch {
	case age < 25:
		return 0.9
	case age <= 35:
		return 1.0
	case age <= 50:
		return 1.2
	default:
		return 1.5
	}
}

// CreateQuote prices in for policyID, saves it for the identity and returns
// the stored quote.
func (c *Client) CreateQuote(ctx context.Context, identity *Identity, policyID string, in QuoteInput) (*Quote, error) {
	if err := requireID("policy", policyID); err != nil {
		return nil, err
	}
	if identity == nil || identity.Address == "" {
		return nil, errors.New("a signed-in identity is required")
	}
	premium, err := CalculatePremium(in)
	if err != nil {
		return nil, err
	}

	quote := Quote{
		UserEmail:      identity.Address,
		UserName:       identity.DisplayName,
		PolicyID:       policyID,
		Age:            in.Age,
		Gender:         in.Gender,
		Coverage:       in.Coverage,
		Duration:       in.DurationYears,
		Smoker:         in.Smoker,
		MonthlyPremium: premium.Monthly,
		AnnualPremium:  premium.Annual,
		CreatedAt:      time.Now().UTC(),
	}

	var res InsertResult
	if err := c.post(ctx, "/quotes", quote, &res); err != nil {
		return nil, err
	}
	quote.ID = res.InsertedID
	return &quote, nil
}

// ListQuotes returns the quotes saved by address.
func (c *Client) ListQuotes(ctx context.Context, address string) ([]Quote, error) {
	var quotes []Quote
	if err := c.get(ctx, "/quotes", url.Values{"email": {address}}, &quotes); err != nil {
		return nil, err
	}
	return quotes, nil
}
