// SPDX-FileCopyrightText: 2026 Intrinsic Spiders
//
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/intrinsic-spiders/contact-relay/pkg/apiresponses"
	"github.com/intrinsic-spiders/contact-relay/pkg/config"
	"github.com/intrinsic-spiders/contact-relay/pkg/system"
	"github.com/intrinsic-spiders/contact-relay/pkg/version"
)

type echoController struct {
	base       string
	registered bool
	err        error
	middleware []gin.HandlerFunc
}

func (e *echoController) BasePath() string { return e.base }

func (e *echoController) Handlers() []gin.HandlerFunc { return e.middleware }

func (e *echoController) Register(rg *gin.RouterGroup) error {
	if e.err != nil {
		return e.err
	}
	e.registered = true
	rg.POST("", func(c *gin.Context) {
		apiresponses.RespondSuccess(c, "echo "+c.GetString(system.RequestIDKey))
	})
	return nil
}

func newTestServer(t *testing.T, cfg config.Server) *Server {
	t.Helper()
	s, err := NewServer(zaptest.NewLogger(t), cfg, true)
	require.NoError(t, err)
	return s
}

func do(t *testing.T, h http.Handler, method, path string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for k, vv := range header {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestNewServer(t *testing.T) {
	tests := []struct {
		name  string
		debug bool
	}{
		{name: "debug mode", debug: true},
		{name: "release mode", debug: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, err := NewServer(zaptest.NewLogger(t), config.Server{ListenAddress: ":0"}, tt.debug)
			require.NoError(t, err)
			assert.NotNil(t, server.gin)
			assert.NotNil(t, server.Handler())
		})
	}
}

func TestNewServer_InvalidTrustedProxy(t *testing.T) {
	_, err := NewServer(zaptest.NewLogger(t), config.Server{TrustedProxies: []string{"not-an-ip"}}, true)
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, config.Server{})

	w := do(t, s.Handler(), http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "Server is running", body.Message)
}

func TestVersionEndpoint(t *testing.T) {
	s := newTestServer(t, config.Server{})

	w := do(t, s.Handler(), http.MethodGet, "/api/version", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var info version.BuildInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, version.Version, info.Version)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, config.Server{})

	w := do(t, s.Handler(), http.MethodGet, "/metrics", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestNoRoute(t *testing.T) {
	s := newTestServer(t, config.Server{})

	w := do(t, s.Handler(), http.MethodGet, "/nope", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	var env apiresponses.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
}

func TestRegisterAll(t *testing.T) {
	s := newTestServer(t, config.Server{})
	var hits int
	ctrl := &echoController{
		base:       "echo",
		middleware: []gin.HandlerFunc{func(c *gin.Context) { hits++; c.Next() }},
	}

	require.NoError(t, s.RegisterAll([]APIController{ctrl}))
	assert.True(t, ctrl.registered)

	w := do(t, s.Handler(), http.MethodPost, "/api/echo", http.Header{system.RequestIDHeader: {"req-42"}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, hits, "controller middleware runs")
	assert.Contains(t, w.Body.String(), "echo req-42")
	assert.Equal(t, "req-42", w.Header().Get(system.RequestIDHeader))
}

func TestRequestIDHeader_AnyCase(t *testing.T) {
	s := newTestServer(t, config.Server{})
	require.NoError(t, s.RegisterAll([]APIController{&echoController{base: "echo"}}))

	for _, key := range []string{"X-Request-ID", "x-request-id", "X-Request-Id"} {
		t.Run(key, func(t *testing.T) {
			w := do(t, s.Handler(), http.MethodPost, "/api/echo", http.Header{key: {"req-7"}})
			assert.Equal(t, "req-7", w.Header().Get(system.RequestIDHeader))
		})
	}
}

func TestRegisterAll_PropagatesError(t *testing.T) {
	s := newTestServer(t, config.Server{})
	boom := errors.New("boom")

	err := s.RegisterAll([]APIController{&echoController{base: "a", err: boom}})

	assert.ErrorIs(t, err, boom)
}

func TestCORS(t *testing.T) {
	preflight := http.Header{
		"Origin":                        {"https://site.example"},
		"Access-Control-Request-Method": {http.MethodPost},
	}

	t.Run("any origin is echoed", func(t *testing.T) {
		s := newTestServer(t, config.Server{})
		w := do(t, s.Handler(), http.MethodOptions, "/api/contact", preflight)

		assert.Less(t, w.Code, 300)
		assert.Equal(t, "https://site.example", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("allow list", func(t *testing.T) {
		s := newTestServer(t, config.Server{AllowedOrigins: []string{"https://site.example"}})

		w := do(t, s.Handler(), http.MethodOptions, "/api/contact", preflight)
		assert.Equal(t, "https://site.example", w.Header().Get("Access-Control-Allow-Origin"))

		other := http.Header{
			"Origin":                        {"https://evil.example"},
			"Access-Control-Request-Method": {http.MethodPost},
		}
		w = do(t, s.Handler(), http.MethodOptions, "/api/contact", other)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestClose_RunsClosersOnce(t *testing.T) {
	s := newTestServer(t, config.Server{})
	var calls int
	s.OnClose(func() { calls++ })
	s.OnClose(func() { calls++ })

	s.Close()
	s.Close()

	assert.Equal(t, 2, calls)
}

func TestServe_GracefulShutdown(t *testing.T) {
	s := newTestServer(t, config.Server{ShutdownTimeout: "2s"})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	url := fmt.Sprintf("http://%s/health", ln.Addr().String())
	require.Eventually(t, func() bool {
		resp, err := http.Get(url) //nolint:noctx // test helper
		if err != nil {
			return false
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServe_InvalidShutdownTimeout(t *testing.T) {
	s := newTestServer(t, config.Server{ShutdownTimeout: "soon"})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	assert.Error(t, s.Serve(context.Background(), ln))
}
