package geosynth

import "testing"

func TestDownloadOptions(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := newDownloadConfig()
		if cfg.force {
			t.Error("force defaults to true, want false")
		}
		if !cfg.cleanup {
			t.Error("cleanup defaults to false, want true")
		}
		if cfg.concurrency != DefaultConcurrency {
			t.Errorf("concurrency = %d, want %d", cfg.concurrency, DefaultConcurrency)
		}
		if cfg.progressFn != nil {
			t.Error("progressFn defaults to non-nil")
		}
	})

	t.Run("force", func(t *testing.T) {
		cfg := newDownloadConfig()
		WithForce()(cfg)
		if !cfg.force {
			t.Error("WithForce() did not set force")
		}
	})

	t.Run("keep archives", func(t *testing.T) {
		cfg := newDownloadConfig()
		WithKeepArchives()(cfg)
		if cfg.cleanup {
			t.Error("WithKeepArchives() did not disable cleanup")
		}
	})

	t.Run("concurrency clamped", func(t *testing.T) {
		cases := []struct {
			in, want int
		}{
			{0, 1},
			{-5, 1},
			{1, 1},
			{5, 5},
			{MaxConcurrency, MaxConcurrency},
			{MaxConcurrency + 10, MaxConcurrency},
		}
		for _, c := range cases {
			cfg := newDownloadConfig()
			WithConcurrency(c.in)(cfg)
			if cfg.concurrency != c.want {
				t.Errorf("WithConcurrency(%d) = %d, want %d", c.in, cfg.concurrency, c.want)
			}
		}
	})

	t.Run("progress callback", func(t *testing.T) {
		cfg := newDownloadConfig()
		called := false
		WithProgress(func(DownloadProgress) { called = true })(cfg)
		if cfg.progressFn == nil {
			t.Fatal("WithProgress() did not set the callback")
		}
		cfg.progressFn(DownloadProgress{})
		if !called {
			t.Error("callback not invoked")
		}
	})
}

func TestManagerOptions(t *testing.T) {
	t.Run("http client", func(t *testing.T) {
		cfg := &managerConfig{}
		client := &stubHTTPClient{}
		WithHTTPClient(client)(cfg)
		if cfg.httpClient != client {
			t.Error("WithHTTPClient() did not set the client")
		}
	})

	t.Run("logger", func(t *testing.T) {
		cfg := &managerConfig{}
		logger := NewZerologLogger(testZerolog())
		WithLogger(logger)(cfg)
		if cfg.logger == nil {
			t.Error("WithLogger() did not set the logger")
		}
	})
}
