package mcpserver

import (
	"fmt"
	"net"
	"net/http"
	"syscall"
	"time"
)

// maxRedirects bounds redirect chains followed by the fetch client.
const maxRedirects = 5

// isBlockedIP returns true if the IP is private, loopback, link-local, or unspecified.
func isBlockedIP(ip net.IP) bool {
	return ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()
}

// newSafeHTTPClient creates an HTTP client that refuses to connect to
// private/loopback/link-local IPs. Used by the MCP server to prevent
// SSRF when fetching specs from URLs provided by AI agents.
//
// The check runs on the address actually dialed, so redirects and DNS
// answers that change between lookups are covered.
func newSafeHTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout: 10 * time.Second,
		Control: blockPrivateAddress,
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
				return fmt.Errorf("redirect to unsupported scheme %q blocked", req.URL.Scheme)
			}
			return nil
		},
	}
}

// blockPrivateAddress is a net.Dialer Control hook.
func blockPrivateAddress(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return fmt.Errorf("blocked request to unresolved address %q", host)
	}
	if isBlockedIP(ip) {
		return fmt.Errorf("blocked request to private/loopback IP %s", ip)
	}
	return nil
}
