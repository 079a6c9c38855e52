// Package directory wraps bind and search operations against the branch
// Active Directory. Every operation opens its own connection and closes it
// before returning; there is no pooling and no retry.
package directory

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/go-ldap/ldap/v3"
	"go.uber.org/zap"

	"github.com/pardisbank/statement-registry/internal/config"
)

var (
	// ErrUnavailable covers network and protocol faults. Retryable by the
	// caller, never retried here.
	ErrUnavailable = errors.New("directory unavailable")
	// ErrBindRejected means the directory refused the credentials.
	ErrBindRejected = errors.New("directory bind rejected")
	// ErrNoEntries means a search completed but matched nothing.
	ErrNoEntries = errors.New("no matching directory entry")
)

// Entry is one directory search result, reduced to the attributes requested.
type Entry struct {
	DN         string
	Attributes map[string]string
}

// Attribute returns the named attribute value, or "" when absent.
func (e Entry) Attribute(name string) string {
	return e.Attributes[name]
}

// Conn is the subset of ldap.Client the client needs, so tests can inject
// fake connections.
type Conn interface {
	Bind(username, password string) error
	Search(searchRequest *ldap.SearchRequest) (*ldap.SearchResult, error)
	Close() error
}

var _ Conn = &ldap.Conn{}

// Dialer produces connections to the directory.
type Dialer interface {
	Dial(ctx context.Context, addr string) (Conn, error)
}

// DialerFunc adapts a func to the Dialer interface.
type DialerFunc func(ctx context.Context, addr string) (Conn, error)

func (f DialerFunc) Dial(ctx context.Context, addr string) (Conn, error) {
	return f(ctx, addr)
}

// Client performs bind and search calls against the configured directory.
type Client struct {
	cfg    config.DirectoryConfig
	dialer Dialer
	logger *zap.Logger
}

// NewClient builds a Client. A nil dialer selects the production ldap.DialURL
// dialer with the configured timeout.
func NewClient(cfg config.DirectoryConfig, dialer Dialer, logger *zap.Logger) *Client {
	if dialer == nil {
		timeout := cfg.DialTimeout()
		dialer = DialerFunc(func(_ context.Context, addr string) (Conn, error) {
			return ldap.DialURL(addr, ldap.DialWithDialer(&net.Dialer{Timeout: timeout}))
		})
	}
	return &Client{cfg: cfg, dialer: dialer, logger: logger}
}

// Bind attempts a simple bind as the given principal. The three outcomes are
// nil, ErrBindRejected and ErrUnavailable.
func (c *Client) Bind(ctx context.Context, principal, password string) error {
	conn, err := c.dialer.Dial(ctx, c.cfg.Addr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer conn.Close() //nolint:errcheck

	if err := conn.Bind(principal, password); err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultInvalidCredentials) {
			return ErrBindRejected
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Search runs a subtree search under the configured base DN using the
// service account, returning ErrNoEntries on an empty result set.
func (c *Client) Search(ctx context.Context, filter string, attributes []string) ([]Entry, error) {
	conn, err := c.dialer.Dial(ctx, c.cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer conn.Close() //nolint:errcheck

	if c.cfg.BindDN != "" {
		if err := conn.Bind(c.cfg.BindDN, c.cfg.BindPassword); err != nil {
			c.logger.Error("service account bind failed", zap.String("bind_dn", c.cfg.BindDN), zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	req := ldap.NewSearchRequest(
		c.cfg.BaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0, 0, false,
		filter,
		attributes,
		nil,
	)
	result, err := conn.Search(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(result.Entries) == 0 {
		return nil, ErrNoEntries
	}

	entries := make([]Entry, 0, len(result.Entries))
	for _, raw := range result.Entries {
		entry := Entry{DN: raw.DN, Attributes: make(map[string]string, len(attributes))}
		for _, attr := range attributes {
			if val := raw.GetAttributeValue(attr); val != "" {
				entry.Attributes[attr] = val
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
