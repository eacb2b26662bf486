package netx

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutboundIP(t *testing.T) {
	origAddr, origDial := routeAddr, dial
	t.Cleanup(func() { routeAddr, dial = origAddr, origDial })

	t.Run("uses the interface of the route", func(t *testing.T) {
		routeAddr = "127.0.0.1:9"
		assert.Equal(t, "127.0.0.1", OutboundIP())
	})

	t.Run("falls back to loopback when there is no route", func(t *testing.T) {
		dial = func(string, string) (net.Conn, error) { return nil, errors.New("network is unreachable") }
		assert.Equal(t, "127.0.0.1", OutboundIP())
	})
}

func TestPublicURL(t *testing.T) {
	origDial := dial
	t.Cleanup(func() { dial = origDial })
	dial = func(string, string) (net.Conn, error) { return nil, errors.New("offline") }

	tests := []struct {
		addr string
		want string
	}{
		{":8000", "http://127.0.0.1:8000"},
		{"0.0.0.0:9000", "http://127.0.0.1:9000"},
		{"192.168.1.20:8000", "http://192.168.1.20:8000"},
		{"[::]:8000", "http://127.0.0.1:8000"},
		{"[fe80::1]:8000", "http://[fe80::1]:8000"},
		{"media.local", "http://media.local:80"},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			assert.Equal(t, tt.want, PublicURL(tt.addr))
		})
	}
}
