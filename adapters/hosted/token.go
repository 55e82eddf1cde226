package hosted

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// apiKeyGrantType exchanges a long lived API key for a short lived bearer token
const apiKeyGrantType = "urn:ibm:params:oauth:grant-type:apikey"

// tokenResponse is the identity service reply
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Expiration  int64  `json:"expiration"`
}

// apiKeyTokenSource implements oauth2.TokenSource for the API-key grant.
// It is wrapped in oauth2.ReuseTokenSource so it only runs when the cached token expires.
type apiKeyTokenSource struct {
	tokenURL string
	apiKey   string
	client   *http.Client
	logger   *zap.Logger
	now      func() time.Time
}

var _ oauth2.TokenSource = (*apiKeyTokenSource)(nil)

func (s *apiKeyTokenSource) Token() (*oauth2.Token, error) {
	form := url.Values{
		"grant_type": {apiKeyGrantType},
		"apikey":     {s.apiKey},
	}

	req, err := http.NewRequest(http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("token exchange returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return nil, fmt.Errorf("token response has no access_token")
	}

	token := &oauth2.Token{
		AccessToken: payload.AccessToken,
		TokenType:   payload.TokenType,
		Expiry:      s.expiry(payload),
	}
	if token.TokenType == "" {
		token.TokenType = "Bearer"
	}

	s.logger.Info("Obtained hosted model access token", zap.Time("expiry", token.Expiry))
	return token, nil
}

// expiry prefers the absolute expiration, then expires_in, then the JWT exp claim.
// A zero time means the token never expires for oauth2.
func (s *apiKeyTokenSource) expiry(payload tokenResponse) time.Time {
	if payload.Expiration > 0 {
		return time.Unix(payload.Expiration, 0)
	}
	if payload.ExpiresIn > 0 {
		return s.now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	}
	if exp, ok := jwtExpiry(payload.AccessToken); ok {
		return exp
	}
	return time.Time{}
}

// jwtExpiry reads exp without verifying the signature; the token is only
// ever sent back to the issuer.
func jwtExpiry(accessToken string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
