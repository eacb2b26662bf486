// Package netx holds small networking helpers.
package netx

import (
	"net"
)

// Dialing UDP sends nothing. It only selects the outbound interface, so
// routeAddr may be any routable address.
var (
	routeAddr = "8.8.8.8:80"
	dial      = net.Dial
)

// OutboundIP returns the local IP used for outbound traffic, which is the
// address other devices on the LAN can reach. It falls back to loopback.
func OutboundIP() string {
	conn, err := dial("udp", routeAddr)
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || addr.IP == nil {
		return "127.0.0.1"
	}
	return addr.IP.String()
}

// PublicURL derives the URL clients should use for a server listening on
// listenAddr. Wildcard hosts are replaced with OutboundIP.
func PublicURL(listenAddr string) string {
	host, port, err := net.SplitHostPort(listenAddr)
	if err != nil {
		host, port = listenAddr, "80"
	}

	switch host {
	case "", "0.0.0.0", "::":
		host = OutboundIP()
	}

	return "http://" + net.JoinHostPort(host, port)
}
