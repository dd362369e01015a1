package server

import (
	"net/http"
	"testing"
	"time"
)

func TestNormalizeAddr(t *testing.T) {
	cases := map[string]string{
		"":               "",
		"8080":           ":8080",
		":9090":          ":9090",
		"127.0.0.1:8080": "127.0.0.1:8080",
	}
	for in, want := range cases {
		if got := normalizeAddr(in); got != want {
			t.Fatalf("normalizeAddr(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewHTTPServer_Timeouts(t *testing.T) {
	s := &Server{ReadHeaderTimeout: 3 * time.Second}
	hs := s.newHTTPServer(":0", http.NotFoundHandler())
	if hs.ReadHeaderTimeout != 3*time.Second || hs.IdleTimeout != defaultIdleTimeout {
		t.Fatalf("unexpected timeouts: %v / %v", hs.ReadHeaderTimeout, hs.IdleTimeout)
	}
	if hs.WriteTimeout != 0 {
		t.Fatalf("write timeout would cut live sockets: %v", hs.WriteTimeout)
	}
}
