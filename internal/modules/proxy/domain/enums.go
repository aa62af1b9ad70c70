//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// ProxyScheme represents the protocol spoken to a proxy candidate
// ENUM(http,https,socks4,socks4a,socks5,socks5h)
type ProxyScheme string
