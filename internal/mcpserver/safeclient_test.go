package mcpserver

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsBlockedIP(t *testing.T) {
	tests := []struct {
		ip      string
		blocked bool
	}{
		{"127.0.0.1", true},      // loopback
		{"10.0.0.1", true},       // private (Class A)
		{"172.16.0.1", true},     // private (Class B)
		{"192.168.1.1", true},    // private (Class C)
		{"169.254.1.1", true},    // link-local
		{"::1", true},            // IPv6 loopback
		{"0.0.0.0", true},        // unspecified IPv4
		{"::", true},             // unspecified IPv6
		{"fe80::1", true},        // IPv6 link-local
		{"fd00::1", true},        // IPv6 ULA (private)
		{"8.8.8.8", false},       // public
		{"1.1.1.1", false},       // public
		{"93.184.216.34", false}, // public
	}
	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			ip := net.ParseIP(tt.ip)
			require.NotNil(t, ip, "failed to parse IP: %s", tt.ip)
			assert.Equal(t, tt.blocked, isBlockedIP(ip))
		})
	}
}

func TestBlockPrivateAddress(t *testing.T) {
	tests := []struct {
		address string
		wantErr string
	}{
		{address: "8.8.8.8:443"},
		{address: "[2001:4860:4860::8888]:443"},
		{address: "127.0.0.1:80", wantErr: "blocked request to private/loopback IP 127.0.0.1"},
		{address: "[::1]:80", wantErr: "blocked request to private/loopback IP ::1"},
		{address: "example.com:80", wantErr: "unresolved address"},
		{address: "no-port", wantErr: "missing port"},
	}
	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			err := blockPrivateAddress("tcp", tt.address, nil)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewSafeHTTPClient(t *testing.T) {
	client := newSafeHTTPClient(7 * time.Second)
	require.NotNil(t, client)
	assert.Equal(t, 7*time.Second, client.Timeout)
	assert.NotNil(t, client.CheckRedirect)
	assert.NotNil(t, client.Transport)
}
