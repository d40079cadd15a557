package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)
	require.NotNil(t, m.Auth)
	require.NotNil(t, m.Client)
	require.NotNil(t, m.Role)
	require.NotNil(t, m.Guard)

	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.Auth.RecordAttempt(ctx, "sign_in", "invalid_credentials")
		m.Client.RecordRequest(ctx, "GET", 200, 12.5)
		m.Client.RecordUnauthenticated(ctx)
		m.Client.RecordForbidden(ctx)
		m.Role.RecordQuery(ctx)
		m.Role.RecordFailure(ctx)
		m.Role.RecordStale(ctx)
		m.Guard.RecordDecision(ctx, "admin", "granted")
	})
}

func TestNilMetricsAreSafe(t *testing.T) {
	ctx := context.Background()
	var (
		auth   *AuthMetrics
		client *ClientMetrics
		role   *RoleMetrics
		guard  *GuardMetrics
	)
	assert.NotPanics(t, func() {
		auth.RecordAttempt(ctx, "sign_out", "")
		client.RecordRequest(ctx, "POST", 0, 1)
		client.RecordUnauthenticated(ctx)
		client.RecordForbidden(ctx)
		role.RecordQuery(ctx)
		role.RecordFailure(ctx)
		role.RecordStale(ctx)
		guard.RecordDecision(ctx, "authenticated", "denied")
	})
}
