package hubspot

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient records CreateContact calls and returns scripted responses.
type fakeClient struct {
	mu    sync.Mutex
	calls []map[string]any
	errFn func(props map[string]any) error
	next  int
}

func (f *fakeClient) CreateContact(_ context.Context, properties map[string]any) (*ContactResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, properties)
	if f.errFn != nil {
		if err := f.errFn(properties); err != nil {
			return nil, err
		}
	}
	f.next++
	return &ContactResponse{ID: "hs-" + strconv.Itoa(f.next)}, nil
}

func (f *fakeClient) TestConnection(context.Context) error { return nil }

func TestUploadContacts_AllSucceed(t *testing.T) {
	fc := &fakeClient{}
	contacts := []map[string]any{
		{"email": "a@acme.com", "company": "Acme", "ai_lead_score": 0.9},
		{"email": "b@acme.com", "company": "Acme", "ai_lead_score": 0.4},
	}

	result := UploadContacts(context.Background(), fc, contacts, UploadOptions{BatchSize: 3})
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 0, result.Failed)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Created, 2)

	emails := []string{result.Created[0].Email, result.Created[1].Email}
	assert.ElementsMatch(t, []string{"a@acme.com", "b@acme.com"}, emails)
}

func TestUploadContacts_SkipsMissingEmail(t *testing.T) {
	fc := &fakeClient{}
	contacts := []map[string]any{
		{"company": "No Email Co"},
		{"email": "ok@acme.com"},
	}

	result := UploadContacts(context.Background(), fc, contacts, UploadOptions{BatchSize: 3})
	assert.Equal(t, 1, result.Successful)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "No Email Co")
	assert.Contains(t, result.Errors[0], "No email address")
	// The email-less contact never reaches the API.
	assert.Len(t, fc.calls, 1)
}

func TestUploadContacts_DuplicateContact(t *testing.T) {
	fc := &fakeClient{
		errFn: func(props map[string]any) error {
			if props["email"] == "dup@acme.com" {
				return &APIError{StatusCode: http.StatusConflict, Body: "Contact already exists"}
			}
			return nil
		},
	}
	contacts := []map[string]any{
		{"email": "dup@acme.com"},
		{"email": "new@acme.com"},
	}

	result := UploadContacts(context.Background(), fc, contacts, UploadOptions{BatchSize: 1})
	assert.Equal(t, 1, result.Successful)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "dup@acme.com")
	assert.Contains(t, result.Errors[0], "Already exists")
}

func TestUploadContacts_FailureDoesNotAbortRest(t *testing.T) {
	fc := &fakeClient{
		errFn: func(props map[string]any) error {
			if props["email"] == "bad@acme.com" {
				return &APIError{StatusCode: http.StatusInternalServerError, Body: "boom"}
			}
			return nil
		},
	}
	contacts := []map[string]any{
		{"email": "bad@acme.com"},
		{"email": "a@acme.com"},
		{"email": "b@acme.com"},
	}

	result := UploadContacts(context.Background(), fc, contacts, UploadOptions{BatchSize: 2})
	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 1, result.Failed)
	assert.Len(t, fc.calls, 3)
}

func TestUploadContacts_NormalizesPhone(t *testing.T) {
	fc := &fakeClient{}
	contacts := []map[string]any{
		{"email": "a@acme.com", "phone": "(512) 555-2368"},
		{"email": "b@acme.com", "phone": "not a phone"},
	}

	UploadContacts(context.Background(), fc, contacts, UploadOptions{BatchSize: 1})
	require.Len(t, fc.calls, 2)

	byEmail := map[string]string{}
	for _, call := range fc.calls {
		byEmail[call["email"].(string)] = call["phone"].(string)
	}
	assert.Equal(t, "+15125552368", byEmail["a@acme.com"])
	// Unparseable values pass through untouched.
	assert.Equal(t, "not a phone", byEmail["b@acme.com"])

	// Caller's map stays unmodified.
	assert.Equal(t, "(512) 555-2368", contacts[0]["phone"])
}

func TestUploadContacts_Empty(t *testing.T) {
	result := UploadContacts(context.Background(), &fakeClient{}, nil, UploadOptions{})
	assert.Equal(t, 0, result.Total)
	assert.Equal(t, 0, result.Successful)
	assert.Equal(t, 0, result.Failed)
}
