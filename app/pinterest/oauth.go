package pinterest

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
)

const DefaultAuthURL = "https://www.pinterest.com/oauth/"

var Scopes = []string{
	"boards:read",
	"boards:write",
	"pins:read",
	"pins:write",
	"user_accounts:read",
}

type Token struct {
	AccessToken  string
	RefreshToken string
}

// OAuth performs the authorization code flow against Pinterest.
type OAuth struct {
	config *oauth2.Config
}

// NewOAuth returns nil when app id or redirect URI is missing, since no
// authorization URL can be built without them.
func NewOAuth(appID, appSecret, redirectURI, authURL, apiBaseURL string) *OAuth {
	if appID == "" || redirectURI == "" {
		return nil
	}
	if authURL == "" {
		authURL = DefaultAuthURL
	}
	if apiBaseURL == "" {
		apiBaseURL = DefaultBaseURL
	}

	return &OAuth{
		config: &oauth2.Config{
			ClientID:     appID,
			ClientSecret: appSecret,
			RedirectURL:  redirectURI,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   authURL,
				TokenURL:  strings.TrimRight(apiBaseURL, "/") + "/oauth/token",
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
	}
}

func (o *OAuth) AuthURL(state string) string {
	// Pinterest expects a comma separated scope list.
	return o.config.AuthCodeURL(state, oauth2.SetAuthURLParam("scope", strings.Join(Scopes, ",")))
}

func (o *OAuth) Exchange(ctx context.Context, code string) (*Token, error) {
	if code == "" {
		return nil, fmt.Errorf("authorization code is empty")
	}

	token, err := o.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	return &Token{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}, nil
}
