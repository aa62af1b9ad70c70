package domain

import (
	"net"
	"net/url"
	"strings"

	"github.com/samber/oops"
)

// Candidate is an immutable proxy candidate: a host:port address, the
// protocol spoken to it and optional credentials.
type Candidate struct {
	Address  string      `json:"address"` // host:port
	Scheme   ProxyScheme `json:"scheme"`
	Username string      `json:"username,omitempty"`
	Password string      `json:"password,omitempty"`
}

// ParseCandidate parses a single proxy list line. Lines with an explicit
// scheme prefix ("socks5://1.2.3.4:1080") are taken as-is; bare host:port
// lines get defaultScheme.
func ParseCandidate(line string, defaultScheme ProxyScheme) (*Candidate, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, oops.Errorf("empty proxy line")
	}

	if !strings.Contains(line, "://") {
		line = string(defaultScheme) + "://" + line
	}

	u, err := url.Parse(line)
	if err != nil {
		return nil, oops.With("line", line).Wrap(err)
	}

	scheme, err := ParseProxyScheme(u.Scheme)
	if err != nil {
		return nil, oops.With("line", line).Wrap(err)
	}

	host := u.Hostname()
	port := u.Port()
	if host == "" || port == "" {
		return nil, oops.Errorf("proxy line %q is missing host or port", line)
	}

	c := &Candidate{
		Address: net.JoinHostPort(host, port),
		Scheme:  scheme,
	}
	if u.User != nil {
		c.Username = u.User.Username()
		c.Password, _ = u.User.Password()
	}
	return c, nil
}

// IsSOCKS reports whether the candidate speaks any SOCKS variant.
func (c *Candidate) IsSOCKS() bool {
	switch c.Scheme {
	case ProxySchemeSocks4, ProxySchemeSocks4a, ProxySchemeSocks5, ProxySchemeSocks5h:
		return true
	}
	return false
}

// URL returns the canonical scheme://[user:pass@]host:port form.
func (c *Candidate) URL() string {
	u := url.URL{
		Scheme: string(c.Scheme),
		Host:   c.Address,
	}
	if c.Username != "" {
		if c.Password != "" {
			u.User = url.UserPassword(c.Username, c.Password)
		} else {
			u.User = url.User(c.Username)
		}
	}
	return u.String()
}

// Redacted is the URL form with credentials masked, for logging.
func (c *Candidate) Redacted() string {
	if c.Username == "" {
		return c.URL()
	}
	u := url.URL{
		Scheme: string(c.Scheme),
		Host:   c.Address,
		User:   url.User("xxxxx"),
	}
	return u.String()
}
