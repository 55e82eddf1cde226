package hosted

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/arunika/avatar/domain"
)

type fakeProvider struct {
	tokenCalls    atomic.Int32
	generateCalls atomic.Int32
	tokenServer   *httptest.Server
	genServer     *httptest.Server

	mu          sync.Mutex
	lastRequest generationRequest
}

// newFakeProvider serves the token grant and a generation endpoint; override replaces the latter
func newFakeProvider(t *testing.T, generated string, override http.HandlerFunc) *fakeProvider {
	t.Helper()
	p := &fakeProvider{}

	p.tokenServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.tokenCalls.Add(1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, apiKeyGrantType, r.PostForm.Get("grant_type"))
		if r.PostForm.Get("apikey") != "secret-key" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"errorMessage":"Provided API key could not be found."}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"token-1","token_type":"Bearer","expires_in":3600}`))
	}))

	p.genServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.generateCalls.Add(1)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		if override != nil {
			override(w, r)
			return
		}

		var request generationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		p.mu.Lock()
		p.lastRequest = request
		p.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		encoded, _ := json.Marshal(generated)
		w.Write([]byte(`{"results":[{"generated_text":` + string(encoded) + `}]}`))
	}))

	t.Cleanup(func() {
		p.tokenServer.Close()
		p.genServer.Close()
	})
	return p
}

func (p *fakeProvider) last() generationRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastRequest
}

func (p *fakeProvider) config(apiKey string) Config {
	return Config{
		APIKey:      apiKey,
		TokenURL:    p.tokenServer.URL,
		GenerateURL: p.genServer.URL,
		ModelID:     "ibm/granite-13b-chat-v2",
		ProjectID:   "project-1",
		Timeout:     time.Second,
	}
}

func TestClient_Generate(t *testing.T) {
	provider := newFakeProvider(t, "  Hello from the hosted model  ", nil)
	client, err := NewClient(provider.config("secret-key"), zaptest.NewLogger(t))
	require.NoError(t, err)

	text, err := client.Generate(context.Background(), "Answer kindly: {{message}}", "How are you?")
	require.NoError(t, err)
	assert.Equal(t, "Hello from the hosted model", text)
	last := provider.last()
	assert.Equal(t, "Answer kindly: How are you?", last.Input)
	assert.Equal(t, "ibm/granite-13b-chat-v2", last.ModelID)
	assert.Equal(t, "project-1", last.ProjectID)

	// the cached token is reused until it expires
	_, err = client.Generate(context.Background(), "", "Again")
	require.NoError(t, err)
	assert.EqualValues(t, 1, provider.tokenCalls.Load())
	assert.EqualValues(t, 2, provider.generateCalls.Load())
}

func TestClient_Generate_TokenExchangeFails(t *testing.T) {
	provider := newFakeProvider(t, "unused", nil)
	client, err := NewClient(provider.config("wrong-key"), zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "", "Hi")
	assert.ErrorIs(t, err, domain.ErrUpstreamCall)
	assert.EqualValues(t, 0, provider.generateCalls.Load())
}

func TestClient_Generate_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, `{"errors":[]}`, domain.ErrUpstreamCall},
		{"no results", http.StatusOK, `{"results":[]}`, domain.ErrMalformedUpstreamOutput},
		{"not json", http.StatusOK, `<html>`, domain.ErrMalformedUpstreamOutput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := newFakeProvider(t, "unused", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			client, err := NewClient(provider.config("secret-key"), zaptest.NewLogger(t))
			require.NoError(t, err)

			_, err = client.Generate(context.Background(), "", "Hi")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_Generate_Timeout(t *testing.T) {
	release := make(chan struct{})
	provider := newFakeProvider(t, "unused", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	config := provider.config("secret-key")
	config.Timeout = 50 * time.Millisecond
	client, err := NewClient(config, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "", "Hi")
	assert.ErrorIs(t, err, domain.ErrUpstreamCall)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestValidateConfig(t *testing.T) {
	assert.ErrorIs(t, ValidateConfig(Config{}), domain.ErrProviderNotConfigured)
	assert.ErrorIs(t, ValidateConfig(Config{APIKey: "k"}), domain.ErrProviderNotConfigured)
	assert.NoError(t, ValidateConfig(Config{APIKey: "k", GenerateURL: "http://localhost"}))
}

func TestRenderPrompt(t *testing.T) {
	assert.Equal(t, defaultPrompt+"\n\nHi", renderPrompt("  ", "Hi"))
	assert.Equal(t, "Be brief.\n\nHi", renderPrompt("Be brief.", "Hi"))
	assert.Equal(t, "Q: Hi A:", renderPrompt("Q: {{message}} A:", "Hi"))
}

func TestTokenExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	source := &apiKeyTokenSource{now: func() time.Time { return now }}

	jwtExp := now.Add(20 * time.Minute).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(jwtExp),
	}).SignedString([]byte("issuer-secret"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		payload tokenResponse
		want    time.Time
	}{
		{"absolute expiration", tokenResponse{AccessToken: "x", Expiration: now.Add(time.Hour).Unix()}, now.Add(time.Hour)},
		{"relative expires_in", tokenResponse{AccessToken: "x", ExpiresIn: 3600}, now.Add(time.Hour)},
		{"jwt exp claim", tokenResponse{AccessToken: signed}, jwtExp},
		{"opaque token", tokenResponse{AccessToken: "opaque"}, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(source.expiry(tt.payload)), "want %s got %s", tt.want, source.expiry(tt.payload))
		})
	}
}
