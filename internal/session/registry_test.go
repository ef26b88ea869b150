package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryLifecycle(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	_, ok := r.View("c1")
	req.False(ok)

	p := r.Register("c1", "Hank", 3)
	req.Equal("c1", p.ID)

	got, ok := r.View("c1")
	req.True(ok)
	req.Equal(p, got)

	// Re-registering replaces the identity for the same connection.
	p = r.Register("c1", "Henry", 4)
	got, _ = r.View("c1")
	req.Equal("Henry", got.Name)

	r.Remove("c1")
	_, ok = r.View("c1")
	req.False(ok)
}
