package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-ldap/ldap/v3"
	"go.uber.org/zap"

	"github.com/pardisbank/statement-registry/internal/config"
	"github.com/pardisbank/statement-registry/internal/directory"
)

// Cascade authenticates a username/password pair by trying the directory
// principal-name conventions in order: UPN bind, CN-relative bind, then a
// service search for the entry followed by a bind with its resolved DN.
// Naming conventions vary across deployments; trying all three avoids
// per-deployment configuration.
type Cascade struct {
	directory *directory.Client
	baseDN    string
	realm     string
	logger    *zap.Logger
}

// NewCascade builds the cascade over the given directory client.
func NewCascade(dir *directory.Client, cfg config.DirectoryConfig, logger *zap.Logger) *Cascade {
	return &Cascade{directory: dir, baseDN: cfg.BaseDN, realm: cfg.Realm, logger: logger}
}

type bindStrategy struct {
	name string
	run  func(ctx context.Context, username, password string) error
}

func (c *Cascade) strategies() []bindStrategy {
	return []bindStrategy{
		{name: "upn", run: c.bindUPN},
		{name: "cn", run: c.bindCN},
		{name: "resolved_dn", run: c.bindResolvedDN},
	}
}

// Authenticate returns a single boolean verdict. Directory errors at any
// step count as a failed step, not a fatal error, and the caller never
// learns which step decided the outcome.
func (c *Cascade) Authenticate(ctx context.Context, username, password string) bool {
	for _, strategy := range c.strategies() {
		err := strategy.run(ctx, username, password)
		if err == nil {
			c.logger.Debug("bind strategy succeeded",
				zap.String("strategy", strategy.name), zap.String("username", username))
			return true
		}
		c.logger.Debug("bind strategy failed",
			zap.String("strategy", strategy.name), zap.String("username", username), zap.Error(err))
	}
	return false
}

func (c *Cascade) bindUPN(ctx context.Context, username, password string) error {
	return c.directory.Bind(ctx, fmt.Sprintf("%s@%s", username, c.realm), password)
}

func (c *Cascade) bindCN(ctx context.Context, username, password string) error {
	return c.directory.Bind(ctx, fmt.Sprintf("CN=%s,%s", username, c.baseDN), password)
}

func (c *Cascade) bindResolvedDN(ctx context.Context, username, password string) error {
	filter := fmt.Sprintf("(|(%s=%s)(%s=%s@%s))",
		directory.AttrAccountName, ldap.EscapeFilter(username),
		directory.AttrPrincipalName, ldap.EscapeFilter(username), c.realm)

	entries, err := c.directory.Search(ctx, filter, []string{directory.AttrDistinguishedName})
	if err != nil {
		if errors.Is(err, directory.ErrNoEntries) {
			c.logger.Error("user not found in directory", zap.String("username", username))
		}
		return err
	}
	if len(entries) > 1 {
		return fmt.Errorf("ambiguous directory match for %q: %d entries", username, len(entries))
	}

	dn := entries[0].DN
	if dn == "" {
		dn = entries[0].Attribute(directory.AttrDistinguishedName)
	}
	if dn == "" {
		return errors.New("directory entry has no distinguished name")
	}
	return c.directory.Bind(ctx, dn, password)
}
