package cmd_test

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stupside/beacon/cmd"
	"github.com/stupside/beacon/internal/device"
)

const samsungUA = "Mozilla/5.0 (Linux; Android 13; SM-G991B) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"

func TestRoot_OfflineCommandsNeedNoConfig(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "absent.yaml")

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, out *bytes.Buffer)
	}{
		{
			name: "classify",
			args: []string{"classify", "--ua", samsungUA, "--platform", "Linux armv8l"},
			check: func(t *testing.T, out *bytes.Buffer) {
				text := out.String()

				var c device.Classification
				require.NoError(t, json.NewDecoder(strings.NewReader(text)).Decode(&c))
				assert.Equal(t, "Samsung", c.Brand)
				assert.Equal(t, "SM-G991B", c.Model)
				assert.Contains(t, text, "ARCH DETECTED: ARM")
			},
		},
		{
			name: "presets",
			args: []string{"presets"},
			check: func(t *testing.T, out *bytes.Buffer) {
				assert.Contains(t, out.String(), "iphone-safari")
			},
		},
		{
			name: "info",
			args: []string{"info"},
			check: func(t *testing.T, out *bytes.Buffer) {
				assert.Regexp(t, `^beacon \S+ \(commit \S+, built \S+\)`, out.String())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			root := cmd.Root()
			root.Writer = &out

			args := append([]string{"beacon", "--config", missing}, tt.args...)
			require.NoError(t, root.Run(t.Context(), args))
			tt.check(t, &out)
		})
	}
}

func TestRoot_NetworkCommandsRequireConfig(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "absent.yaml")

	for _, args := range [][]string{
		{"gateways"},
		{"collect", "https://example.com"},
	} {
		t.Run(args[0], func(t *testing.T) {
			t.Parallel()

			root := cmd.Root()
			root.Writer = &bytes.Buffer{}

			err := root.Run(t.Context(), append([]string{"beacon", "--config", missing}, args...))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "loading config")
		})
	}
}
