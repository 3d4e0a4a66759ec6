package util

import (
	"net/http/httptest"
	"testing"
)

func TestClientIPBehindSingleReverseProxy(t *testing.T) {
	// The front-end reaches the API through one nginx on 10.0.0.2.
	proxy, err := NewTrustedProxies([]string{"10.0.0.2"})
	if err != nil {
		t.Fatalf("new trusted proxies: %v", err)
	}

	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		trusted    *TrustedProxies
		want       string
	}{
		{"direct caller", "198.51.100.10:52000", "", proxy, "198.51.100.10"},
		{"direct caller cannot spoof", "198.51.100.10:52000", "203.0.113.5", proxy, "198.51.100.10"},
		{"no proxies configured", "10.0.0.2:443", "203.0.113.5", nil, "10.0.0.2"},
		{"proxied browser", "10.0.0.2:443", "203.0.113.5", proxy, "203.0.113.5"},
		{"spoofed leftmost hop ignored", "10.0.0.2:443", "1.2.3.4, 203.0.113.5", proxy, "203.0.113.5"},
		{"proxy without header", "10.0.0.2:443", "", proxy, "10.0.0.2"},
		{"garbage header", "10.0.0.2:443", "not-an-ip", proxy, "10.0.0.2"},
		{"ipv4 mapped peer", "[::ffff:10.0.0.2]:443", "203.0.113.9", proxy, "203.0.113.9"},
		{"ipv6 browser", "10.0.0.2:443", "2001:db8::7", proxy, "2001:db8::7"},
		{"unparseable remote addr", "pipe", "", proxy, "pipe"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "http://dialogue.test/api/dialogues/1/highlights", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}
			if got := ClientIP(req, tc.trusted); got != tc.want {
				t.Fatalf("client ip = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestClientIPProxyChainInsideCluster(t *testing.T) {
	trusted, err := NewTrustedProxies([]string{"10.0.0.0/8"})
	if err != nil {
		t.Fatalf("new trusted proxies: %v", err)
	}
	req := httptest.NewRequest("GET", "http://dialogue.test/", nil)
	req.RemoteAddr = "10.1.0.4:8080"
	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.2.0.1")
	if got := ClientIP(req, trusted); got != "203.0.113.5" {
		t.Fatalf("client ip = %q, want 203.0.113.5", got)
	}
}

func TestNewTrustedProxies(t *testing.T) {
	p, err := NewTrustedProxies([]string{" ", ""})
	if err != nil || p != nil {
		t.Fatalf("empty entries should trust nobody, got %v %v", p, err)
	}
	if _, err := NewTrustedProxies([]string{"10.0.0.0/8", "192.168.1.1", "2001:db8::/32"}); err != nil {
		t.Fatalf("expected valid entries, got err: %v", err)
	}
	for _, bad := range []string{"bad-cidr", "10.0.0.0/33"} {
		if _, err := NewTrustedProxies([]string{bad}); err == nil {
			t.Fatalf("expected parse error for %q", bad)
		}
	}
}
