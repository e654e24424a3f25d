package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/polygate-dev/polygate/internal/config"
	"github.com/polygate-dev/polygate/internal/protocol"
)

// oauthEndpoint is the refresh endpoint for one OAuth provider kind. Client
// IDs are the public ones shipped with the respective CLIs.
type oauthEndpoint struct {
	tokenURL     string
	clientID     string
	clientSecret string
	jsonBody     bool
}

var oauthEndpoints = map[string]oauthEndpoint{
	protocol.KindGeminiCLIOAuth: {
		tokenURL:     "https://oauth2.googleapis.com/token",
		clientID:     "681255809395-oo8ft2oprdrnp9e3aqf6av3hmdib135j.apps.googleusercontent.com",
		clientSecret: "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",
	},
	protocol.KindGeminiAntigrav: {
		tokenURL:     "https://oauth2.googleapis.com/token",
		clientID:     "681255809395-oo8ft2oprdrnp9e3aqf6av3hmdib135j.apps.googleusercontent.com",
		clientSecret: "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",
	},
	protocol.KindClaudeKiroOAuth: {
		tokenURL: "https://console.anthropic.com/v1/oauth/token",
		clientID: "9d1c250a-e61b-44d9-88ed-5944d1962f5e",
		jsonBody: true,
	},
	protocol.KindOpenAIQwenOAuth: {
		tokenURL: "https://chat.qwen.ai/api/v1/oauth2/token",
		clientID: "f0304373b74a44d2b584a3fb70ca9e56",
	},
}

// DefaultRefreshBuffer is how close to expiry a token may get before an
// on-demand refresh fires.
const DefaultRefreshBuffer = time.Minute

// refreshGroup coalesces concurrent refreshes per credential file, across
// all TokenSource instances in the process.
var refreshGroup singleflight.Group

// TokenSource resolves a fresh access token for one credential file,
// refreshing and persisting it when it nears expiry.
type TokenSource struct {
	kind   string
	path   string
	buffer time.Duration
	http   *http.Client
}

func NewTokenSource(kind, credentialsFile string) *TokenSource {
	return &TokenSource{
		kind:   kind,
		path:   credentialsFile,
		buffer: DefaultRefreshBuffer,
		http:   &http.Client{Timeout: 60 * time.Second},
	}
}

// SetRefreshBuffer overrides the near-expiry window.
func (ts *TokenSource) SetRefreshBuffer(d time.Duration) { ts.buffer = d }

// Token returns a valid access token, refreshing first when the stored one
// expires within the buffer. Concurrent callers on the same file share one
// refresh flight and one file write.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	creds, err := config.LoadOAuthCredentials(ts.path)
	if err != nil {
		return "", err
	}
	if !creds.ExpiresWithin(ts.buffer) {
		return creds.AccessToken, nil
	}

	key := ts.path
	if abs, err := filepath.Abs(ts.path); err == nil {
		key = abs
	}
	token, err, _ := refreshGroup.Do(key, func() (interface{}, error) {
		// Re-read under the flight: a sibling may have refreshed while we
		// waited for the group.
		current, err := config.LoadOAuthCredentials(ts.path)
		if err != nil {
			return nil, err
		}
		if !current.ExpiresWithin(ts.buffer) {
			return current.AccessToken, nil
		}
		refreshed, err := ts.refresh(ctx, current)
		if err != nil {
			return nil, err
		}
		if err := config.SaveOAuthCredentials(ts.path, refreshed); err != nil {
			return nil, err
		}
		logrus.Infof("refreshed oauth token for %s, new expiry %s", ts.kind, refreshed.Expiry().Format(time.RFC3339))
		return refreshed.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return token.(string), nil
}

// Refresh forces a refresh regardless of expiry, still coalesced per file.
// The background refresher uses this for tokens inside its window.
func (ts *TokenSource) Refresh(ctx context.Context) error {
	key := ts.path
	if abs, err := filepath.Abs(ts.path); err == nil {
		key = abs
	}
	_, err, _ := refreshGroup.Do(key, func() (interface{}, error) {
		current, err := config.LoadOAuthCredentials(ts.path)
		if err != nil {
			return nil, err
		}
		refreshed, err := ts.refresh(ctx, current)
		if err != nil {
			return nil, err
		}
		if err := config.SaveOAuthCredentials(ts.path, refreshed); err != nil {
			return nil, err
		}
		return refreshed.AccessToken, nil
	})
	return err
}

func (ts *TokenSource) refresh(ctx context.Context, creds *config.OAuthCredentials) (*config.OAuthCredentials, error) {
	endpoint, ok := oauthEndpoints[ts.kind]
	if !ok {
		return nil, fmt.Errorf("no oauth endpoint registered for kind %q", ts.kind)
	}
	if creds.RefreshToken == "" {
		return nil, fmt.Errorf("credential file %s has no refresh token", ts.path)
	}

	var req *http.Request
	var err error
	if endpoint.jsonBody {
		payload, _ := json.Marshal(map[string]string{
			"grant_type":    "refresh_token",
			"refresh_token": creds.RefreshToken,
			"client_id":     endpoint.clientID,
		})
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, endpoint.tokenURL, strings.NewReader(string(payload)))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
	} else {
		form := url.Values{}
		form.Set("grant_type", "refresh_token")
		form.Set("refresh_token", creds.RefreshToken)
		form.Set("client_id", endpoint.clientID)
		if endpoint.clientSecret != "" {
			form.Set("client_secret", endpoint.clientSecret)
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, endpoint.tokenURL, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := ts.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token refresh request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &Error{
			Status:       resp.StatusCode,
			Code:         "token_refresh_failed",
			Message:      fmt.Sprintf("token refresh failed for %s", ts.kind),
			UpstreamBody: body,
		}
	}

	var tokenResp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		TokenType    string `json:"token_type"`
		ExpiresIn    int64  `json:"expires_in"`
		Scope        string `json:"scope"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("token response for %s carried no access token", ts.kind)
	}

	updated := *creds
	updated.AccessToken = tokenResp.AccessToken
	if tokenResp.RefreshToken != "" {
		updated.RefreshToken = tokenResp.RefreshToken
	}
	if tokenResp.TokenType != "" {
		updated.TokenType = tokenResp.TokenType
	}
	if tokenResp.Scope != "" {
		updated.Scope = tokenResp.Scope
	}
	updated.ExpiryDate = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second).UnixMilli()
	return &updated, nil
}

// SetEndpointForTest overrides the refresh endpoint for a kind. Test-only.
func SetEndpointForTest(kind, tokenURL string) func() {
	prev, had := oauthEndpoints[kind]
	endpoint := oauthEndpoints[kind]
	endpoint.tokenURL = tokenURL
	oauthEndpoints[kind] = endpoint
	return func() {
		if had {
			oauthEndpoints[kind] = prev
		} else {
			delete(oauthEndpoints, kind)
		}
	}
}
