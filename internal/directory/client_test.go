package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pardisbank/statement-registry/internal/config"
)

type fakeConn struct {
	bindFunc     func(username, password string) error
	searchFunc   func(req *ldap.SearchRequest) (*ldap.SearchResult, error)
	closed       bool
	boundAs      []string
	lastSearched *ldap.SearchRequest
}

func (f *fakeConn) Bind(username, password string) error {
	f.boundAs = append(f.boundAs, username)
	if f.bindFunc != nil {
		return f.bindFunc(username, password)
	}
	return nil
}

func (f *fakeConn) Search(req *ldap.SearchRequest) (*ldap.SearchResult, error) {
	f.lastSearched = req
	if f.searchFunc != nil {
		return f.searchFunc(req)
	}
	return &ldap.SearchResult{}, nil
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

func dialerFor(conn Conn) Dialer {
	return DialerFunc(func(_ context.Context, _ string) (Conn, error) {
		return conn, nil
	})
}

func failingDialer(err error) Dialer {
	return DialerFunc(func(_ context.Context, _ string) (Conn, error) {
		return nil, err
	})
}

func testConfig() config.DirectoryConfig {
	return config.DirectoryConfig{
		Addr:   "ldap://dc1.bk.local:389",
		BaseDN: "DC=bk,DC=local",
		Realm:  "bk.local",
	}
}

func invalidCredentials() error {
	return ldap.NewError(ldap.LDAPResultInvalidCredentials, errors.New("invalid credentials"))
}

func TestBindSuccess(t *testing.T) {
	conn := &fakeConn{}
	client := NewClient(testConfig(), dialerFor(conn), zap.NewNop())

	err := client.Bind(context.Background(), "jdoe@bk.local", "pw")
	require.NoError(t, err)
	require.True(t, conn.closed)
}

func TestBindRejectedOnInvalidCredentials(t *testing.T) {
	conn := &fakeConn{bindFunc: func(_, _ string) error { return invalidCredentials() }}
	client := NewClient(testConfig(), dialerFor(conn), zap.NewNop())

	err := client.Bind(context.Background(), "jdoe@bk.local", "wrong")
	require.ErrorIs(t, err, ErrBindRejected)
}

func TestBindUnavailableOnDialFailure(t *testing.T) {
	client := NewClient(testConfig(), failingDialer(errors.New("connection refused")), zap.NewNop())

	err := client.Bind(context.Background(), "jdoe@bk.local", "pw")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestBindUnavailableOnProtocolError(t *testing.T) {
	conn := &fakeConn{bindFunc: func(_, _ string) error {
		return ldap.NewError(ldap.LDAPResultUnavailable, errors.New("server busy"))
	}}
	client := NewClient(testConfig(), dialerFor(conn), zap.NewNop())

	err := client.Bind(context.Background(), "jdoe@bk.local", "pw")
	require.ErrorIs(t, err, ErrUnavailable)
	require.NotErrorIs(t, err, ErrBindRejected)
}

func TestSearchNoEntries(t *testing.T) {
	conn := &fakeConn{}
	client := NewClient(testConfig(), dialerFor(conn), zap.NewNop())

	_, err := client.Search(context.Background(), "(sAMAccountName=ghost)", []string{AttrDisplayName})
	require.ErrorIs(t, err, ErrNoEntries)
}

func TestSearchMapsRequestedAttributes(t *testing.T) {
	conn := &fakeConn{searchFunc: func(_ *ldap.SearchRequest) (*ldap.SearchResult, error) {
		return &ldap.SearchResult{Entries: []*ldap.Entry{{
			DN: "CN=John Doe,OU=Staff,DC=bk,DC=local",
			Attributes: []*ldap.EntryAttribute{
				{Name: AttrAccountName, Values: []string{"jdoe"}},
				{Name: AttrDisplayName, Values: []string{"John Doe"}},
				{Name: AttrMail, Values: []string{"jdoe@bk.local"}},
			},
		}}}, nil
	}}
	client := NewClient(testConfig(), dialerFor(conn), zap.NewNop())

	entries, err := client.Search(context.Background(), "(sAMAccountName=jdoe)",
		[]string{AttrAccountName, AttrDisplayName, AttrMail, AttrDepartment})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "CN=John Doe,OU=Staff,DC=bk,DC=local", entries[0].DN)
	require.Equal(t, "jdoe", entries[0].Attribute(AttrAccountName))
	require.Equal(t, "John Doe", entries[0].Attribute(AttrDisplayName))
	require.Equal(t, "jdoe@bk.local", entries[0].Attribute(AttrMail))
	require.Empty(t, entries[0].Attribute(AttrDepartment))
	require.True(t, conn.closed)
}

func TestSearchUsesServiceAccountBind(t *testing.T) {
	conn := &fakeConn{searchFunc: func(_ *ldap.SearchRequest) (*ldap.SearchResult, error) {
		return &ldap.SearchResult{Entries: []*ldap.Entry{{DN: "CN=x,DC=bk,DC=local"}}}, nil
	}}
	cfg := testConfig()
	cfg.BindDN = "CN=crmadmin,DC=bk,DC=local"
	cfg.BindPassword = "svc-pw"
	client := NewClient(cfg, dialerFor(conn), zap.NewNop())

	_, err := client.Search(context.Background(), "(objectClass=user)", nil)
	require.NoError(t, err)
	require.Equal(t, []string{"CN=crmadmin,DC=bk,DC=local"}, conn.boundAs)
}

func TestSearchScopedToBaseDN(t *testing.T) {
	conn := &fakeConn{searchFunc: func(_ *ldap.SearchRequest) (*ldap.SearchResult, error) {
		return &ldap.SearchResult{Entries: []*ldap.Entry{{DN: "CN=x,DC=bk,DC=local"}}}, nil
	}}
	client := NewClient(testConfig(), dialerFor(conn), zap.NewNop())

	_, err := client.Search(context.Background(), "(objectClass=user)", nil)
	require.NoError(t, err)
	require.Equal(t, "DC=bk,DC=local", conn.lastSearched.BaseDN)
	require.Equal(t, ldap.ScopeWholeSubtree, conn.lastSearched.Scope)
}

func TestSearchUnavailableOnDialFailure(t *testing.T) {
	client := NewClient(testConfig(), failingDialer(errors.New("connection refused")), zap.NewNop())

	_, err := client.Search(context.Background(), "(objectClass=user)", nil)
	require.ErrorIs(t, err, ErrUnavailable)
}
