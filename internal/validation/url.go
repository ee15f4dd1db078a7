// Package validation provides target-address validation for outgoing
// connections.
//
// HTTP base URLs, WebSocket URLs, and TCP host:port pairs are checked
// against localhost and private IP ranges so a misconfigured base URL does
// not silently point requests at internal infrastructure. Private targets
// can be allowed via the FEATNET_ALLOW_PRIVATE environment variable
// (accepts any value recognized by strconv.ParseBool) or by calling
// SetAllowPrivate(true), which is what development and test setups use.
package validation

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
)

// allowPrivate controls whether private/localhost targets are permitted.
var allowPrivate atomic.Bool

// privateNetworks holds pre-parsed private IP ranges.
var privateNetworks []*net.IPNet

func init() {
	v, _ := strconv.ParseBool(strings.TrimSpace(os.Getenv("FEATNET_ALLOW_PRIVATE")))
	allowPrivate.Store(v)

	privateCIDRs := []string{
		"10.0.0.0/8",     // RFC1918
		"172.16.0.0/12",  // RFC1918
		"192.168.0.0/16", // RFC1918
		"100.64.0.0/10",  // RFC6598 shared address space
		"169.254.0.0/16", // RFC3927 link local
		"fc00::/7",       // RFC4193 unique local
		"fe80::/10",      // RFC4291 link local
		"::1/128",        // loopback
	}

	privateNetworks = make([]*net.IPNet, 0, len(privateCIDRs))
	for _, cidr := range privateCIDRs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			continue
		}
		privateNetworks = append(privateNetworks, network)
	}
}

// SetAllowPrivate enables or disables private and localhost targets.
func SetAllowPrivate(enabled bool) {
	allowPrivate.Store(enabled)
}

// AllowPrivateEnabled reports whether private targets are currently allowed.
func AllowPrivateEnabled() bool {
	return allowPrivate.Load()
}

// ValidateBaseURL validates an HTTP API base URL. It checks that the URL
// uses an http or https scheme, contains a hostname, and does not point at
// localhost or a private address unless private targets are allowed.
func ValidateBaseURL(rawURL string) error {
	return validateURL(rawURL, []string{"http", "https"})
}

// ValidateWebSocketURL validates a WebSocket URL (ws or wss scheme).
func ValidateWebSocketURL(rawURL string) error {
	return validateURL(rawURL, []string{"ws", "wss"})
}

func validateURL(rawURL string, schemes []string) error {
	if strings.TrimSpace(rawURL) == "" {
		return fmt.Errorf("URL cannot be empty")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	schemeOK := false
	for _, s := range schemes {
		if parsed.Scheme == s {
			schemeOK = true
			break
		}
	}
	if !schemeOK {
		return fmt.Errorf("invalid URL scheme: only %s allowed, got %q", strings.Join(schemes, " and "), parsed.Scheme)
	}

	hostname := parsed.Hostname()
	if hostname == "" {
		return fmt.Errorf("URL must contain a hostname")
	}

	return validateHost(hostname)
}

// ValidateHostPort validates a TCP target of the form "host:port".
func ValidateHostPort(hostport string) error {
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		return fmt.Errorf("invalid host:port %q: %w", hostport, err)
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("invalid port %q: must be 1-65535", port)
	}
	return validateHost(host)
}

func validateHost(hostname string) error {
	if allowPrivate.Load() {
		return nil
	}
	if isLocalhost(hostname) {
		return fmt.Errorf("localhost targets are not allowed (set FEATNET_ALLOW_PRIVATE=1 or --allow-private to permit)")
	}
	if ip := net.ParseIP(hostname); ip != nil {
		if ip.IsUnspecified() {
			return fmt.Errorf("unspecified IP addresses are not allowed")
		}
		if ip.IsLoopback() {
			return fmt.Errorf("loopback IP addresses are not allowed (set FEATNET_ALLOW_PRIVATE=1 or --allow-private to permit)")
		}
		if isPrivateIP(ip) {
			return fmt.Errorf("private IP addresses are not allowed (set FEATNET_ALLOW_PRIVATE=1 or --allow-private to permit)")
		}
	}
	return nil
}

// isLocalhost checks for localhost variants.
func isLocalhost(hostname string) bool {
	lowercase := strings.ToLower(hostname)
	switch lowercase {
	case "localhost", "127.0.0.1", "::1", "0.0.0.0", "::":
		return true
	}
	return strings.HasSuffix(lowercase, ".localhost")
}

func isPrivateIP(ip net.IP) bool {
	for _, network := range privateNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
