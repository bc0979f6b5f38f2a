// Package loopback keeps listen addresses on the local machine.
package loopback

import (
	"errors"
	"fmt"
	"net"
)

// DashboardAddr is the default dashboard listen address.
const DashboardAddr = "127.0.0.1:8470"

// ErrNotLoopback is returned for addresses reachable from other hosts.
var ErrNotLoopback = errors.New("address must be loopback")

// Check returns ErrNotLoopback unless addr's host is a loopback IP or
// "localhost".
func Check(addr string) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("address %q: %w", addr, err)
	}
	if host == "localhost" {
		return nil
	}
	ip := net.ParseIP(host)
	if ip == nil || !ip.IsLoopback() {
		return fmt.Errorf("%w: %s", ErrNotLoopback, addr)
	}
	return nil
}
