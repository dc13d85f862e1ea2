package hubspot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "pat-na1-00000000-0000-0000-0000-000000000000"

func newTestServer(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(testToken, WithBaseURL(srv.URL))
	require.NoError(t, err)
	return c
}

func TestValidateToken(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		wantErr string
	}{
		{name: "valid", token: testToken},
		{name: "empty", token: "", wantErr: "required"},
		{name: "wrong prefix", token: "hapikey-abc123", wantErr: "pat- prefix"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateToken(tt.token)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestNewClient_RejectsBadToken(t *testing.T) {
	_, err := NewClient("not-a-token")
	require.Error(t, err)
}

func TestCreateContact(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/crm/v3/objects/contacts", r.URL.Path)
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req struct {
			Properties map[string]any `json:"properties"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "jane@acme.com", req.Properties["email"])
		assert.Equal(t, "lead", req.Properties["lifecyclestage"])

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(ContactResponse{ID: "12345"}) //nolint:errcheck
	})

	resp, err := c.CreateContact(context.Background(), map[string]any{
		"email":          "jane@acme.com",
		"lifecyclestage": "lead",
	})
	require.NoError(t, err)
	assert.Equal(t, "12345", resp.ID)
}

func TestCreateContact_APIError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Property values were not valid"}`)) //nolint:errcheck
	})

	_, err := c.CreateContact(context.Background(), map[string]any{"email": "x@y.com"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.False(t, IsConflict(err))
}

func TestIsConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "409 status", err: &APIError{StatusCode: http.StatusConflict}, want: true},
		{name: "duplicate message", err: &APIError{StatusCode: http.StatusBadRequest, Body: `{"message":"Contact already exists"}`}, want: true},
		{name: "other api error", err: &APIError{StatusCode: http.StatusInternalServerError, Body: "boom"}, want: false},
		{name: "non-api error", err: context.Canceled, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsConflict(tt.err))
		})
	}
}

func TestTestConnection(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/crm/v3/owners", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"results":[{"id":"1"}]}`)) //nolint:errcheck
	})

	assert.NoError(t, c.TestConnection(context.Background()))
}

func TestTestConnection_Unauthorized(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid token"}`)) //nolint:errcheck
	})

	err := c.TestConnection(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test connection")
}
