package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitServiceType(t *testing.T) {
	tests := []struct {
		in      string
		service string
		domain  string
		wantErr bool
	}{
		{"_orb._tcp.local.", "_orb._tcp", "local.", false},
		{"_orb._tcp.local", "_orb._tcp", "local.", false},
		{"_http._tcp.example.com.", "_http._tcp", "example.com.", false},
		{"_orb._tcp", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			service, domain, err := splitServiceType(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.service, service)
			assert.Equal(t, tt.domain, domain)
		})
	}
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "resolved", ServiceResolved.String())
	assert.Equal(t, "removed", ServiceRemoved.String())
	assert.Equal(t, "search_stopped", SearchStopped.String())
	assert.Equal(t, "kind(42)", EventKind(42).String())
}

func TestFactoryFor(t *testing.T) {
	for _, backend := range append(Backends(), "") {
		factory, err := factoryFor(backend)
		require.NoError(t, err, backend)
		assert.NotNil(t, factory, backend)
	}

	_, err := factoryFor("avahi")
	assert.Error(t, err)
}

func TestBrowseSet(t *testing.T) {
	b := newBrowseSet()

	cancelled := 0
	cancel := func() { cancelled++ }

	require.NoError(t, b.add(ServiceType, cancel))
	assert.Error(t, b.add(ServiceType, cancel), "duplicate browse")

	require.NoError(t, b.stop(ServiceType))
	assert.Equal(t, 1, cancelled)
	assert.Error(t, b.stop(ServiceType), "stop twice")

	require.NoError(t, b.add(ServiceType, cancel))
	require.NoError(t, b.close())
	assert.Equal(t, 2, cancelled)

	assert.ErrorIs(t, b.close(), errDaemonShutdown)
	assert.ErrorIs(t, b.add(ServiceType, cancel), errDaemonShutdown)
}
