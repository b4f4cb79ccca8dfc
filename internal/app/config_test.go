package app_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stupside/beacon/internal/app"
)

const validConfig = `
browser:
  timeout: 30s
  headless: true
  chrome_path: /usr/bin/chromium
  preset: windows-chrome
collect:
  probe_timeout: 8s
  max_concurrency: 4
  adblock_settle: 100ms
  fonts: [Arial, Georgia]
transport:
  base_url: https://analytics.example.com
  visitor_log_path: /api/v1/analytics/visitor-log
  ip_info_path: /api/v1/analytics/ip-info
  timeout: 5s
identity:
  ttl: 8760h
gateway:
  enabled: true
  timeout: 3s
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	cfg, err := app.Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Browser.Timeout)
	assert.Equal(t, "windows-chrome", cfg.Browser.Preset)
	assert.Equal(t, 8*time.Second, cfg.Collect.ProbeTimeout)
	assert.Equal(t, 100*time.Millisecond, cfg.Collect.AdblockSettle)
	assert.Equal(t, []string{"Arial", "Georgia"}, cfg.Collect.Fonts)
	assert.Equal(t, "/api/v1/analytics/ip-info", cfg.Transport.IPInfoPath)
	assert.Equal(t, 365*24*time.Hour, cfg.Identity.TTL)
	assert.True(t, cfg.Gateway.Enabled)
	assert.Equal(t, 3*time.Second, cfg.Gateway.Timeout)
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{
			name: "missing transport",
			body: "browser:\n  timeout: 30s\n  chrome_path: chromium\ncollect:\n  probe_timeout: 1s\n",
		},
		{
			name: "relative endpoint",
			body: "browser:\n  timeout: 30s\n  chrome_path: chromium\ncollect:\n  probe_timeout: 1s\ntransport:\n  base_url: https://a.example\n  visitor_log_path: visitor-log\n  ip_info_path: /ip\n  timeout: 1s\n",
		},
		{
			name: "gateway enabled without timeout",
			body: "browser:\n  timeout: 30s\n  chrome_path: chromium\ncollect:\n  probe_timeout: 1s\ntransport:\n  base_url: https://a.example\n  visitor_log_path: /v\n  ip_info_path: /ip\n  timeout: 1s\ngateway:\n  enabled: true\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := app.Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := app.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
