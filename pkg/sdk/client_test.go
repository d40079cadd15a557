package sdk_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahsinratul/life-client/pkg/sdk"
)

func newTestClient(t *testing.T, handler http.Handler) *sdk.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := sdk.NewClient(server.URL, sdk.WithHTTPClient(server.Client()))
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresAbsoluteURL(t *testing.T) {
	_, err := sdk.NewClient("/relative")
	require.Error(t, err)

	client, err := sdk.NewClient("https://backend.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "https://backend.example.com", client.BaseURL())
}

func TestClientDo_SetsHeadersAndDecodes(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/jwt", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get(sdk.RequestIDHeader))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ann@example.com", body["email"])
		w.WriteHeader(http.StatusOK)
	}))

	require.NoError(t, client.SyncSession(context.Background(), "ann@example.com"))
}

func TestClientDo_NonSuccessStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		sentinel error
	}{
		{name: "unauthenticated", status: http.StatusUnauthorized, sentinel: sdk.ErrAuthenticationInvalid},
		{name: "forbidden", status: http.StatusForbidden, sentinel: sdk.ErrAuthorizationDenied},
		{name: "server error", status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))

			_, err := client.GetProfile(context.Background(), "ann@example.com")
			require.Error(t, err)

			var httpErr *sdk.HTTPError
			require.True(t, errors.As(err, &httpErr))
			assert.Equal(t, tt.status, httpErr.StatusCode)
			assert.Equal(t, "nope", httpErr.Body)
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			} else {
				assert.NotErrorIs(t, err, sdk.ErrAuthenticationInvalid)
				assert.NotErrorIs(t, err, sdk.ErrAuthorizationDenied)
			}
		})
	}
}

func TestGetRole(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    sdk.Role
		wantErr bool
	}{
		{name: "admin", payload: `{"role":"admin"}`, want: sdk.RoleAdmin},
		{name: "agent", payload: `{"role":"agent"}`, want: sdk.RoleAgent},
		{name: "missing role defaults to customer", payload: `{}`, want: sdk.RoleCustomer},
		{name: "unknown role", payload: `{"role":"owner"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/users/ann@example.com/role", r.URL.Path)
				_, _ = w.Write([]byte(tt.payload))
			}))

			role, err := client.GetRole(context.Background(), "ann@example.com")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, role)
		})
	}
}

func TestUpsertUser_ConflictIsSuccess(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var user sdk.User
		require.NoError(t, json.NewDecoder(r.Body).Decode(&user))
		assert.Equal(t, sdk.RoleCustomer, user.Role)
		assert.False(t, user.CreatedAt.IsZero())
		w.WriteHeader(http.StatusConflict)
	}))

	require.NoError(t, client.UpsertUser(context.Background(), sdk.User{Email: "ann@example.com"}))
}

func TestListPolicies_Query(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "9", q.Get("limit"))
		assert.Equal(t, "Term Life", q.Get("category"))
		_, _ = w.Write([]byte(`{"policies":[{"_id":"p1","title":"Family Shield"}],"total":10}`))
	}))

	page, err := client.ListPolicies(context.Background(), sdk.PolicyQuery{Page: 2, Category: "Term Life"})
	require.NoError(t, err)
	require.Len(t, page.Policies, 1)
	assert.Equal(t, "Family Shield", page.Policies[0].Title)
	assert.Equal(t, 2, page.TotalPages(sdk.DefaultPolicyPageSize))
}

func TestApproveAssignedApplication_StopsAtFirstFailure(t *testing.T) {
	var calls []string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		if r.URL.Path == "/applicationPaymentStatus/a1" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	err := client.ApproveAssignedApplication(context.Background(), "a1", "p1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "set payment due")
	assert.Equal(t, []string{
		"PATCH /applicationStatus/a1",
		"PATCH /applicationPaymentStatus/a1",
	}, calls)
}

func TestApproveAssignedApplication_Success(t *testing.T) {
	var calls []string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))

	require.NoError(t, client.ApproveAssignedApplication(context.Background(), "a1", "p1"))
	assert.Equal(t, []string{"/applicationStatus/a1", "/applicationPaymentStatus/a1", "/policies/purchase/p1"}, calls)
}

func TestRecordPayment_GeneratesIdempotencyKey(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payment sdk.Payment
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payment))
		assert.NotEmpty(t, payment.IdempotencyKey)
		assert.Equal(t, "paid", payment.PaymentStatus)
		_, _ = w.Write([]byte(`{"insertedId":"pay1","acknowledged":true}`))
	}))

	payment, err := client.RecordPayment(context.Background(), sdk.Payment{AppID: "a1", TransactionID: "tx", Amount: 42})
	require.NoError(t, err)
	assert.Equal(t, "pay1", payment.ID)
}

func TestRequiredIDs(t *testing.T) {
	client, err := sdk.NewClient("https://backend.example.com")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = client.GetPolicy(ctx, " ")
	assert.Error(t, err)
	assert.Error(t, client.SetClaimStatus(ctx, "", sdk.ClaimApproved))
	assert.Error(t, client.DeleteBlog(ctx, ""))
	assert.Error(t, client.SubmitReview(ctx, sdk.Review{PolicyID: "p1", Rating: 6}))
}
