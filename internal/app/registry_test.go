package app

import (
	"testing"

	"github.com/dkeye/WatchTogether/internal/core"
	"github.com/dkeye/WatchTogether/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopConn struct{}

func (nopConn) TrySend(core.Frame) error { return nil }
func (nopConn) Close()                   {}

func TestRegistryBindingLifecycle(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.Bind("c1", "s1", domain.RoleHost), "unregistered connections cannot be bound")

	r.Register("c1", nopConn{}, nil)
	assert.Equal(t, 1, r.Count())

	_, ok := r.Lookup("c1")
	assert.False(t, ok, "fresh connections are unassigned")

	require.True(t, r.Bind("c1", "s1", domain.RoleHost))
	b, ok := r.Lookup("c1")
	require.True(t, ok)
	assert.Equal(t, domain.Binding{Session: "s1", Role: domain.RoleHost}, b)

	assert.False(t, r.Unbind("c1", "other"), "stale unbind must not clear a newer binding")
	_, ok = r.Lookup("c1")
	assert.True(t, ok)

	assert.True(t, r.Unbind("c1", "s1"))
	b, ok = r.Lookup("c1")
	assert.False(t, ok)
	assert.Equal(t, domain.RoleUnassigned, b.Role)

	_, ok = r.Conn("c1")
	assert.True(t, ok)
	r.Deregister("c1")
	_, ok = r.Conn("c1")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Count())
}

func TestRegistryCancel(t *testing.T) {
	r := NewRegistry()
	called := 0
	r.Register("c1", nopConn{}, func() { called++ })
	r.Register("c2", nopConn{}, nil)

	assert.True(t, r.Cancel("c1"))
	assert.True(t, r.Cancel("c2"))
	assert.False(t, r.Cancel("missing"))
	assert.Equal(t, 1, called)
}

func TestSimplePolicyKicks(t *testing.T) {
	assert.Equal(t, KickMember, SimplePolicy{}.OnBackPressure("s1", "c1"))
}
