// Package transport turns proxy candidates into concrete HTTP transports.
// One strategy per scheme, selected here; nothing mutates shared library
// internals.
package transport

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/samber/oops"
	xproxy "golang.org/x/net/proxy"
	"h12.io/socks"

	"github.com/reshetovitsme/truth-market-feed/internal/modules/proxy/domain"
	sharederrors "github.com/reshetovitsme/truth-market-feed/internal/shared/errors"
)

// Adapter builds per-candidate transports with a shared dial timeout.
type Adapter struct {
	timeout time.Duration
}

func New(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Adapter{timeout: timeout}
}

// Resolve returns a transport routing through the candidate, or a direct
// transport for a nil candidate. A malformed or unsupported candidate yields
// an error wrapping shared ErrProxyUnusable; callers skip such candidates
// without charging retry budgets.
func (a *Adapter) Resolve(c *domain.Candidate) (http.RoundTripper, error) {
	if c == nil {
		return a.base(), nil
	}

	if c.Address == "" {
		return nil, oops.With("candidate", c.Redacted()).Wrap(sharederrors.ErrProxyUnusable)
	}

	switch c.Scheme {
	case domain.ProxySchemeHttp, domain.ProxySchemeHttps:
		proxyURL, err := url.Parse(c.URL())
		if err != nil {
			return nil, oops.With("candidate", c.Redacted(), "cause", err.Error()).Wrap(sharederrors.ErrProxyUnusable)
		}
		t := a.base()
		t.Proxy = http.ProxyURL(proxyURL)
		return t, nil

	case domain.ProxySchemeSocks5, domain.ProxySchemeSocks5h:
		var auth *xproxy.Auth
		if c.Username != "" {
			auth = &xproxy.Auth{User: c.Username, Password: c.Password}
		}
		dialer, err := xproxy.SOCKS5("tcp", c.Address, auth, &net.Dialer{Timeout: a.timeout})
		if err != nil {
			return nil, oops.With("candidate", c.Redacted(), "cause", err.Error()).Wrap(sharederrors.ErrProxyUnusable)
		}
		t := a.base()
		t.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			if cd, ok := dialer.(xproxy.ContextDialer); ok {
				return cd.DialContext(ctx, network, addr)
			}
			return dialer.Dial(network, addr)
		}
		return t, nil

	case domain.ProxySchemeSocks4, domain.ProxySchemeSocks4a:
		dial := socks.Dial(Socks4URI(c, a.timeout))
		t := a.base()
		t.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dial(network, addr)
		}
		return t, nil
	}

	return nil, oops.With("candidate", c.Redacted(), "scheme", string(c.Scheme)).Wrap(sharederrors.ErrProxyUnusable)
}

// Socks4URI builds the dial URI handed to h12.io/socks. The SOCKS4 handshake
// has no credential field, so username/password in the candidate are never
// attached.
func Socks4URI(c *domain.Candidate, timeout time.Duration) string {
	return fmt.Sprintf("%s://%s?timeout=%s", c.Scheme, c.Address, timeout)
}

func (a *Adapter) base() *http.Transport {
	return &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   a.timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   a.timeout,
		IdleConnTimeout:       a.timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
