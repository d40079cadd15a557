package telemetry

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName scopes every lifectl instrument.
const MeterName = "lifectl"

// AuthMetrics counts identity-provider operations.
type AuthMetrics struct {
	AttemptCounter metric.Int64Counter // sign-in, sign-up and sign-out attempts
	FailureCounter metric.Int64Counter // attempts that returned a ProviderError
}

// NewAuthMetrics creates the identity-provider instruments.
func NewAuthMetrics() (*AuthMetrics, error) {
	meter := otel.Meter(MeterName + "/auth")

	attempts, err := meter.Int64Counter(
		"lifectl.auth.attempt.count",
		metric.WithDescription("Identity provider operations attempted"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter(
		"lifectl.auth.failure.count",
		metric.WithDescription("Identity provider operations that failed"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, err
	}

	return &AuthMetrics{AttemptCounter: attempts, FailureCounter: failures}, nil
}

// RecordAttempt records one provider operation and, when kind is set, its failure.
func (m *AuthMetrics) RecordAttempt(ctx context.Context, op, kind string) {
	if m == nil {
		return
	}
	m.AttemptCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("auth.op", op)))
	if kind != "" {
		m.FailureCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("auth.op", op),
			attribute.String("auth.failure_kind", kind),
		))
	}
}

// ClientMetrics holds instruments for the authenticated request client.
type ClientMetrics struct {
	RequestCounter         metric.Int64Counter
	RequestDuration        metric.Float64Histogram
	UnauthenticatedCounter metric.Int64Counter // 401 responses that forced a sign-out
	ForbiddenCounter       metric.Int64Counter // 403 responses that redirected to forbidden
}

// NewClientMetrics creates the request client instruments.
func NewClientMetrics() (*ClientMetrics, error) {
	meter := otel.Meter(MeterName + "/client")

	requestCounter, err := meter.Int64Counter(
		"lifectl.client.request.count",
		metric.WithDescription("Backend requests issued"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	// Buckets: 10ms, 25ms, 50ms, 100ms, 250ms, 500ms, 1s, 2.5s, 5s, 10s
	requestDuration, err := meter.Float64Histogram(
		"lifectl.client.request.duration",
		metric.WithDescription("Backend request duration"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000),
	)
	if err != nil {
		return nil, err
	}

	unauthenticated, err := meter.Int64Counter(
		"lifectl.client.unauthenticated.count",
		metric.WithDescription("Backend responses rejecting the credential"),
		metric.WithUnit("{response}"),
	)
	if err != nil {
		return nil, err
	}

	forbidden, err := meter.Int64Counter(
		"lifectl.client.forbidden.count",
		metric.WithDescription("Backend responses denying authorization"),
		metric.WithUnit("{response}"),
	)
	if err != nil {
		return nil, err
	}

	return &ClientMetrics{
		RequestCounter:         requestCounter,
		RequestDuration:        requestDuration,
		UnauthenticatedCounter: unauthenticated,
		ForbiddenCounter:       forbidden,
	}, nil
}

// RecordRequest records a completed backend request. status is 0 when the
// transport failed before a response arrived.
func (m *ClientMetrics) RecordRequest(ctx context.Context, method string, status int, durationMs float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.status_code", strconv.Itoa(status)),
	)
	m.RequestCounter.Add(ctx, 1, attrs)
	m.RequestDuration.Record(ctx, durationMs, attrs)
}

// RecordUnauthenticated counts a 401 response.
func (m *ClientMetrics) RecordUnauthenticated(ctx context.Context) {
	if m == nil {
		return
	}
	m.UnauthenticatedCounter.Add(ctx, 1)
}

// RecordForbidden counts a 403 response.
func (m *ClientMetrics) RecordForbidden(ctx context.Context) {
	if m == nil {
		return
	}
	m.ForbiddenCounter.Add(ctx, 1)
}

// RoleMetrics holds instruments for role resolution.
type RoleMetrics struct {
	QueryCounter   metric.Int64Counter
	FailureCounter metric.Int64Counter
	StaleCounter   metric.Int64Counter // completions discarded after the address changed
}

// NewRoleMetrics creates the role resolver instruments.
func NewRoleMetrics() (*RoleMetrics, error) {
	meter := otel.Meter(MeterName + "/role")

	queries, err := meter.Int64Counter(
		"lifectl.role.query.count",
		metric.WithDescription("Role queries issued"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter(
		"lifectl.role.query.failure.count",
		metric.WithDescription("Role queries that failed"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		return nil, err
	}

	stale, err := meter.Int64Counter(
		"lifectl.role.stale.count",
		metric.WithDescription("Role query completions discarded as stale"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		return nil, err
	}

	return &RoleMetrics{QueryCounter: queries, FailureCounter: failures, StaleCounter: stale}, nil
}

// RecordQuery counts an issued role query.
func (m *RoleMetrics) RecordQuery(ctx context.Context) {
	if m == nil {
		return
	}
	m.QueryCounter.Add(ctx, 1)
}

// RecordFailure counts a failed role query.
func (m *RoleMetrics) RecordFailure(ctx context.Context) {
	if m == nil {
		return
	}
	m.FailureCounter.Add(ctx, 1)
}

// RecordStale counts a discarded completion.
func (m *RoleMetrics) RecordStale(ctx context.Context) {
	if m == nil {
		return
	}
	m.StaleCounter.Add(ctx, 1)
}

// GuardMetrics counts guard outcomes.
type GuardMetrics struct {
	DecisionCounter metric.Int64Counter
}

// NewGuardMetrics creates the guard instruments.
func NewGuardMetrics() (*GuardMetrics, error) {
	meter := otel.Meter(MeterName + "/guard")

	decisions, err := meter.Int64Counter(
		"lifectl.guard.decision.count",
		metric.WithDescription("Guard decisions by outcome"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return nil, err
	}
	return &GuardMetrics{DecisionCounter: decisions}, nil
}

// RecordDecision counts a settled guard outcome for the named guard.
func (m *GuardMetrics) RecordDecision(ctx context.Context, guard, outcome string) {
	if m == nil {
		return
	}
	m.DecisionCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("guard.name", guard),
		attribute.String("guard.outcome", outcome),
	))
}

// Metrics bundles every instrument set.
type Metrics struct {
	Auth   *AuthMetrics
	Client *ClientMetrics
	Role   *RoleMetrics
	Guard  *GuardMetrics
}

// NewMetrics creates all instrument sets against the global meter provider.
func NewMetrics() (*Metrics, error) {
	auth, err := NewAuthMetrics()
	if err != nil {
		return nil, err
	}
	client, err := NewClientMetrics()
	if err != nil {
		return nil, err
	}
	role, err := NewRoleMetrics()
	if err != nil {
		return nil, err
	}
	guard, err := NewGuardMetrics()
	if err != nil {
		return nil, err
	}
	return &Metrics{Auth: auth, Client: client, Role: role, Guard: guard}, nil
}
