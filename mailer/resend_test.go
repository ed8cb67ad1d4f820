package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResendMailer_Send(t *testing.T) {
	var gotAuth string
	var gotPayload resendEmailPayload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"email-id"}`))
	}))
	defer server.Close()

	m := NewResendMailerWithEndpoint("re-key", "support@ihealthinsurances.com", server.URL)

	err := m.Send(context.Background(), "a@b.com", "Your OTP Code", "<p>123456</p>")
	require.NoError(t, err)

	assert.Equal(t, "Bearer re-key", gotAuth)
	assert.Equal(t, "support@ihealthinsurances.com", gotPayload.From)
	assert.Equal(t, []string{"a@b.com"}, gotPayload.To)
	assert.Equal(t, "Your OTP Code", gotPayload.Subject)
	assert.Equal(t, "<p>123456</p>", gotPayload.HTML)
}

func TestResendMailer_ProviderRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"invalid api key"}`))
	}))
	defer server.Close()

	m := NewResendMailerWithEndpoint("bad-key", "support@ihealthinsurances.com", server.URL)

	err := m.Send(context.Background(), "a@b.com", "subject", "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestResendMailer_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	m := NewResendMailerWithEndpoint("re-key", "support@ihealthinsurances.com", server.URL)
	assert.Error(t, m.Send(context.Background(), "a@b.com", "subject", "body"))
}
