package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pardisbank/statement-registry/internal/config"
	"github.com/pardisbank/statement-registry/internal/directory"
)

type fakeDirConn struct {
	bindFunc   func(principal, password string) error
	searchFunc func(req *ldap.SearchRequest) (*ldap.SearchResult, error)
	boundAs    []string
	lastFilter string
}

func (f *fakeDirConn) Bind(principal, password string) error {
	f.boundAs = append(f.boundAs, principal)
	if f.bindFunc != nil {
		return f.bindFunc(principal, password)
	}
	return nil
}

func (f *fakeDirConn) Search(req *ldap.SearchRequest) (*ldap.SearchResult, error) {
	f.lastFilter = req.Filter
	if f.searchFunc != nil {
		return f.searchFunc(req)
	}
	return &ldap.SearchResult{}, nil
}

func (f *fakeDirConn) Close() error { return nil }

func rejectAllBinds(_, _ string) error {
	return ldap.NewError(ldap.LDAPResultInvalidCredentials, errors.New("invalid credentials"))
}

func acceptOnly(principal, password string) func(string, string) error {
	return func(p, pw string) error {
		if p == principal && pw == password {
			return nil
		}
		return rejectAllBinds(p, pw)
	}
}

func directoryConfig() config.DirectoryConfig {
	return config.DirectoryConfig{
		Addr:   "ldap://dc1.bk.local:389",
		BaseDN: "DC=bk,DC=local",
		Realm:  "bk.local",
	}
}

func cascadeOver(conn directory.Conn) *Cascade {
	dialer := directory.DialerFunc(func(_ context.Context, _ string) (directory.Conn, error) {
		return conn, nil
	})
	cfg := directoryConfig()
	client := directory.NewClient(cfg, dialer, zap.NewNop())
	return NewCascade(client, cfg, zap.NewNop())
}

func TestAuthenticateUPNBind(t *testing.T) {
	conn := &fakeDirConn{bindFunc: acceptOnly("jdoe@bk.local", "pw")}
	cascade := cascadeOver(conn)

	require.True(t, cascade.Authenticate(context.Background(), "jdoe", "pw"))
	require.Equal(t, []string{"jdoe@bk.local"}, conn.boundAs)
}

func TestAuthenticateCNBindFallback(t *testing.T) {
	conn := &fakeDirConn{bindFunc: acceptOnly("CN=jdoe,DC=bk,DC=local", "pw")}
	cascade := cascadeOver(conn)

	require.True(t, cascade.Authenticate(context.Background(), "jdoe", "pw"))
	require.Equal(t, []string{"jdoe@bk.local", "CN=jdoe,DC=bk,DC=local"}, conn.boundAs)
}

func TestAuthenticateResolvedDNBind(t *testing.T) {
	resolvedDN := "CN=John Doe,OU=Staff,DC=bk,DC=local"
	conn := &fakeDirConn{
		bindFunc: acceptOnly(resolvedDN, "pw"),
		searchFunc: func(_ *ldap.SearchRequest) (*ldap.SearchResult, error) {
			return &ldap.SearchResult{Entries: []*ldap.Entry{{DN: resolvedDN}}}, nil
		},
	}
	cascade := cascadeOver(conn)

	require.True(t, cascade.Authenticate(context.Background(), "jdoe", "pw"))
	require.Contains(t, conn.lastFilter, "sAMAccountName=jdoe")
	require.Contains(t, conn.lastFilter, "userPrincipalName=jdoe@bk.local")
	require.Equal(t, resolvedDN, conn.boundAs[len(conn.boundAs)-1])
}

func TestAuthenticateUnknownUser(t *testing.T) {
	conn := &fakeDirConn{bindFunc: rejectAllBinds}
	cascade := cascadeOver(conn)

	require.False(t, cascade.Authenticate(context.Background(), "ghost", "pw"))
}

func TestAuthenticateWrongPassword(t *testing.T) {
	conn := &fakeDirConn{
		bindFunc: rejectAllBinds,
		searchFunc: func(_ *ldap.SearchRequest) (*ldap.SearchResult, error) {
			return &ldap.SearchResult{Entries: []*ldap.Entry{
				{DN: "CN=John Doe,OU=Staff,DC=bk,DC=local"},
			}}, nil
		},
	}
	cascade := cascadeOver(conn)

	require.False(t, cascade.Authenticate(context.Background(), "jdoe", "wrong"))
}

func TestAuthenticateDirectoryDown(t *testing.T) {
	dialer := directory.DialerFunc(func(_ context.Context, _ string) (directory.Conn, error) {
		return nil, errors.New("connection refused")
	})
	cfg := directoryConfig()
	client := directory.NewClient(cfg, dialer, zap.NewNop())
	cascade := NewCascade(client, cfg, zap.NewNop())

	require.False(t, cascade.Authenticate(context.Background(), "jdoe", "pw"))
}

func TestAuthenticateAmbiguousMatch(t *testing.T) {
	conn := &fakeDirConn{
		bindFunc: rejectAllBinds,
		searchFunc: func(_ *ldap.SearchRequest) (*ldap.SearchResult, error) {
			return &ldap.SearchResult{Entries: []*ldap.Entry{
				{DN: "CN=John Doe,OU=Staff,DC=bk,DC=local"},
				{DN: "CN=John Doe,OU=Contractors,DC=bk,DC=local"},
			}}, nil
		},
	}
	cascade := cascadeOver(conn)

	require.False(t, cascade.Authenticate(context.Background(), "jdoe", "pw"))
}

func TestAuthenticateEscapesFilterInput(t *testing.T) {
	conn := &fakeDirConn{bindFunc: rejectAllBinds}
	cascade := cascadeOver(conn)

	require.False(t, cascade.Authenticate(context.Background(), "j*doe)(", "pw"))
	require.NotContains(t, conn.lastFilter, "j*doe")
	require.True(t, strings.Contains(conn.lastFilter, `\2a`))
}
