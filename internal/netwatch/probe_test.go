package netwatch

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"portal-agent/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestProber(t *testing.T, cfg *config.NetworkConfig) *Prober {
	t.Helper()

	return NewProber(ProberParams{
		Config: &config.Config{NetworkConfig: cfg},
		Logger: zap.NewNop(),
	})
}

func probeConfig(testURL string) *config.NetworkConfig {
	return &config.NetworkConfig{
		TestURL:          testURL,
		RequestTimeout:   time.Second,
		FastProbeEnabled: false,
		FastProbeTimeout: 200 * time.Millisecond,
	}
}

func TestHTTPProbe(t *testing.T) {
	t.Run("success status is reachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		t.Cleanup(server.Close)

		prober := newTestProber(t, probeConfig(server.URL))
		assert.True(t, prober.Reachable(context.Background()))
	})

	t.Run("redirect is not followed and counts as reachable", func(t *testing.T) {
		hits := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			http.Redirect(w, r, "/elsewhere", http.StatusFound)
		}))
		t.Cleanup(server.Close)

		prober := newTestProber(t, probeConfig(server.URL))
		assert.True(t, prober.Reachable(context.Background()))
		assert.Equal(t, 1, hits, "redirect must not be followed")
	})

	t.Run("server error is unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		t.Cleanup(server.Close)

		prober := newTestProber(t, probeConfig(server.URL))
		assert.False(t, prober.Reachable(context.Background()))
	})

	t.Run("connection refused is unreachable", func(t *testing.T) {
		prober := newTestProber(t, probeConfig("http://127.0.0.1:1"))
		assert.False(t, prober.Reachable(context.Background()))
	})
}

func TestFastTCPProbe(t *testing.T) {
	t.Run("open port short-circuits", func(t *testing.T) {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		t.Cleanup(func() { listener.Close() })

		addr := listener.Addr().(*net.TCPAddr)

		cfg := probeConfig("http://127.0.0.1:1") // HTTP probe would fail
		cfg.FastProbeEnabled = true
		cfg.FastProbeHost = addr.IP.String()
		cfg.FastProbePort = addr.Port

		prober := newTestProber(t, cfg)
		assert.True(t, prober.Reachable(context.Background()))
	})

	t.Run("closed port falls through to HTTP probe", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		t.Cleanup(server.Close)

		cfg := probeConfig(server.URL)
		cfg.FastProbeEnabled = true
		cfg.FastProbeHost = "127.0.0.1"
		cfg.FastProbePort = 1

		prober := newTestProber(t, cfg)
		assert.True(t, prober.Reachable(context.Background()))
	})
}
