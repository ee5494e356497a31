package facebook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"

	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/logger"
)

const (
	providerName = "facebook"
	profileURL   = "https://graph.facebook.com/v19.0/me?fields=id,name,email"
)

// Provider runs the Facebook OAuth handshake. Facebook does not issue
// OIDC id_tokens on this flow, so the subject comes from a Graph API
// profile fetch with the exchanged access token.
type Provider struct {
	oauthConfig *oauth2.Config
}

func New(appID string, appSecret string, callbackURL string) (*Provider, error) {
	if appID == "" || appSecret == "" || callbackURL == "" {
		return nil, errors.New("facebook oauth config missing required fields")
	}

	oauthCfg := &oauth2.Config{
		ClientID:     appID,
		ClientSecret: appSecret,
		RedirectURL:  callbackURL,
		Endpoint:     facebook.Endpoint,
		Scopes: []string{
			"public_profile",
			"email",
		},
	}

	return &Provider{oauthConfig: oauthCfg}, nil
}

// Name returns the provider identifier used by the registry.
func (p *Provider) Name() string {
	return providerName
}

// AuthCodeURL builds the OAuth authorization URL with PKCE parameters.
func (p *Provider) AuthCodeURL(state string, codeChallenge string) string {
	return p.oauthConfig.AuthCodeURL(
		state,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

func (p *Provider) Exchange(
	ctx context.Context,
	code string,
	codeVerifier string,
) (*auth.Assertion, error) {

	token, err := p.oauthConfig.Exchange(
		ctx,
		code,
		oauth2.SetAuthURLParam("code_verifier", codeVerifier),
	)
	if err != nil {
		return nil, fmt.Errorf("facebook token exchange failed: %w", err)
	}

	profile, err := p.fetchProfile(ctx, token)
	if err != nil {
		return nil, err
	}

	if profile.ID == "" {
		return nil, errors.New("facebook profile missing id")
	}

	logger.Info("facebook profile fetched", map[string]any{
		"subject_present": profile.ID != "",
		"email_present":   profile.Email != "",
	})

	return &auth.Assertion{
		Provider:   providerName,
		ExternalID: profile.ID,
		Profile: auth.Profile{
			DisplayName: profile.Name,
			Email:       profile.Email,
		},
	}, nil
}

type graphProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (p *Provider) fetchProfile(ctx context.Context, token *oauth2.Token) (*graphProfile, error) {
	client := p.oauthConfig.Client(ctx, token)

	resp, err := client.Get(profileURL)
	if err != nil {
		return nil, fmt.Errorf("facebook profile fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("facebook profile fetch returned status %d", resp.StatusCode)
	}

	var profile graphProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("facebook profile parse failed: %w", err)
	}

	return &profile, nil
}
