package broker

import (
	"context"
	"net/http"
	"net/url"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"
)

// Session is the part of a broker login session the application keeps.
type Session struct {
	AccessToken string
	UserID      string
	UserName    string
}

// Broker is the brokerage API surface used for authentication.
type Broker interface {
	// LoginURL returns the browser login URL for the configured API key.
	LoginURL() string
	// GenerateSession exchanges a request token for an access token.
	GenerateSession(ctx context.Context, requestToken, apiSecret string) (Session, error)
	// SetAccessToken installs the token for subsequent API calls.
	SetAccessToken(token string)
}

// KiteBroker implements Broker on top of the Kite Connect SDK.
type KiteBroker struct {
	client *kiteconnect.Client
}

// NewKiteBroker creates a Kite Connect client. baseURI overrides the API
// root (used against test servers); proxyURL is optional.
func NewKiteBroker(apiKey, baseURI, proxyURL string, timeout time.Duration) *KiteBroker {
	client := kiteconnect.New(apiKey)

	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	client.SetHTTPClient(&http.Client{
		Timeout:   timeout,
		Transport: transport,
	})
	if baseURI != "" {
		client.SetBaseURI(baseURI)
	}

	return &KiteBroker{client: client}
}

func (b *KiteBroker) LoginURL() string {
	return b.client.GetLoginURL()
}

// GenerateSession runs the SDK exchange. The SDK call is not context-aware,
// so a cancelled ctx only short-circuits before the request is sent.
func (b *KiteBroker) GenerateSession(ctx context.Context, requestToken, apiSecret string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	us, err := b.client.GenerateSession(requestToken, apiSecret)
	if err != nil {
		return Session{}, err
	}
	return Session{
		AccessToken: us.AccessToken,
		UserID:      us.UserID,
		UserName:    us.UserName,
	}, nil
}

func (b *KiteBroker) SetAccessToken(token string) {
	b.client.SetAccessToken(token)
}
