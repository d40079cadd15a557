package sdk

import (
	"context"
	"errors"
	"math"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// PaymentIntent is the processor handle used to confirm a card payment.
type PaymentIntent struct {
	ClientSecret string `json:"clientSecret"`
}

// CreatePaymentIntent asks the backend to open a payment for amount, in
// whole currency units.
func (c *Client) CreatePaymentIntent(ctx context.Context, amount float64) (*PaymentIntent, error) {
	if amount <= 0 {
		return nil, errors.New("amount must be positive")
	}
	var intent PaymentIntent
	if err := c.post(ctx, "/create-payment-intent", map[string]float64{"amount": amount}, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// RecordPayment stores a completed payment. An idempotency key is generated
// when the caller did not set one so retries do not double-record.
func (c *Client) RecordPayment(ctx context.Context, payment Payment) (*Payment, error) {
	if err := requireID("application", payment.AppID); err != nil {
		return nil, err
	}
	if payment.TransactionID == "" {
		return nil, errors.New("transaction id is required")
	}
	if payment.IdempotencyKey == "" {
		payment.IdempotencyKey = uuid.NewString()
	}
	if payment.Date.IsZero() {
		payment.Date = time.Now().UTC()
	}
	if payment.PaymentStatus == "" {
		payment.PaymentStatus = "paid"
	}

	var res InsertResult
	if err := c.post(ctx, "/payments", payment, &res); err != nil {
		return nil, err
	}
	payment.ID = res.InsertedID
	return &payment, nil
}

// PaymentFilter narrows the admin transaction listing. Zero values match all.
type PaymentFilter struct {
	Email  string
	Policy string
	From   time.Time
	To     time.Time
}

func (f PaymentFilter) query() url.Values {
	q := url.Values{}
	if f.Email != "" {
		q.Set("email", f.Email)
	}
	if f.Policy != "" {
		q.Set("policy", f.Policy)
	}
	if !f.From.IsZero() {
		q.Set("from", f.From.Format(time.DateOnly))
	}
	if !f.To.IsZero() {
		q.Set("to", f.To.Format(time.DateOnly))
	}
	return q
}

// ListPayments returns recorded payments matching filter.
func (c *Client) ListPayments(ctx context.Context, filter PaymentFilter) ([]Payment, error) {
	var payments []Payment
	if err := c.get(ctx, "/payments", filter.query(), &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

// DailyTotal is the income recorded on one calendar day.
type DailyTotal struct {
	Day    string  `json:"day"`
	Amount float64 `json:"amount"`
}

// PaymentSummary aggregates a transaction listing.
type PaymentSummary struct {
	Total float64      `json:"total"`
	Count int          `json:"count"`
	Daily []DailyTotal `json:"daily"`
}

// SummarizePayments totals payments and groups them per day (MM/dd) in the
// order each day first appears.
func SummarizePayments(payments []Payment) PaymentSummary {
	summary := PaymentSummary{Count: len(payments), Daily: []DailyTotal{}}
	index := make(map[string]int)
	for _, p := range payments {
		summary.Total += p.Amount
		day := p.Date.Format("01/02")
		i, ok := index[day]
		if !ok {
			i = len(summary.Daily)
			index[day] = i
			summary.Daily = append(summary.Daily, DailyTotal{Day: day})
		}
		summary.Daily[i].Amount += p.Amount
	}
	summary.Total = roundCents(summary.Total)
	for i := range summary.Daily {
		summary.Daily[i].Amount = roundCents(summary.Daily[i].Amount)
	}
	return summary
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
