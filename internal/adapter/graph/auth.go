package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const defaultLoginBase = "https://login.microsoftonline.com"

type TokenConfig struct {
	ClientID     string
	ClientSecret string // Optional; public clients omit it.
	RefreshToken string
	Tenant       string
	Scope        string
	LoginBaseURL string // Overridable for tests; defaults to the Microsoft login host.
}

// ExchangeRefreshToken performs the stateless refresh-token grant and returns
// a short-lived access token for the Graph API.
func ExchangeRefreshToken(ctx context.Context, client *http.Client, cfg TokenConfig) (string, error) {
	base := strings.TrimRight(cfg.LoginBaseURL, "/")
	if base == "" {
		base = defaultLoginBase
	}

	form := url.Values{}
	form.Set("client_id", cfg.ClientID)
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", cfg.RefreshToken)
	form.Set("scope", cfg.Scope)
	if cfg.ClientSecret != "" {
		form.Set("client_secret", cfg.ClientSecret)
	}

	tokenURL := fmt.Sprintf("%s/%s/oauth2/v2.0/token", base, url.PathEscape(cfg.Tenant))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("cannot build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("cannot request token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

		return "", fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("cannot decode token response: %w", err)
	}

	if strings.TrimSpace(payload.AccessToken) == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	return payload.AccessToken, nil
}
