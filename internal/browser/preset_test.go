package browser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stupside/beacon/internal/browser"
	"github.com/stupside/beacon/internal/device"
)

func TestPresets_SortedAndUnique(t *testing.T) {
	t.Parallel()

	ps := browser.Presets()
	require.NotEmpty(t, ps)

	seen := map[string]bool{}
	for i, p := range ps {
		assert.False(t, seen[p.Name], "duplicate preset %s", p.Name)
		seen[p.Name] = true
		if i > 0 {
			assert.Less(t, ps[i-1].Name, p.Name)
		}
		assert.NotEmpty(t, p.UserAgent, p.Name)
		assert.NotEmpty(t, p.Languages, p.Name)
		assert.Positive(t, p.ScreenWidth, p.Name)
		assert.Positive(t, p.HardwareConcurrency, p.Name)
	}
}

func TestLookupPreset(t *testing.T) {
	t.Parallel()

	p, err := browser.LookupPreset("")
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = browser.LookupPreset("android-samsung")
	require.NoError(t, err)
	assert.Equal(t, "SM-G991B", p.Model)

	p.Model = "changed"
	again, err := browser.LookupPreset("android-samsung")
	require.NoError(t, err)
	assert.Equal(t, "SM-G991B", again.Model)

	_, err = browser.LookupPreset("commodore-64")
	assert.ErrorIs(t, err, browser.ErrUnknownPreset)
}

func TestPresets_ClassifyAsTheirDevice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		preset string
		want   device.Classification
	}{
		{
			preset: "windows-chrome",
			want: device.Classification{
				Brand: "Gaming/Workstation", Model: device.Unknown, OS: "Windows", OSVersion: "15.0.0",
				DeviceType: device.TypeDesktop, Architecture: "x86",
			},
		},
		{
			preset: "android-samsung",
			want: device.Classification{
				Brand: "Samsung", Model: "SM-G991B", OS: "Android", OSVersion: "13.0.0",
				DeviceType: device.TypeMobile, Architecture: device.Unknown,
			},
		},
		{
			preset: "iphone-safari",
			want: device.Classification{
				Brand: "Apple", Model: "iPhone 15 Series", OS: "iOS", OSVersion: "17.1",
				DeviceType: device.TypeMobile, Architecture: device.Unknown,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			t.Parallel()

			p, err := browser.LookupPreset(tt.preset)
			require.NoError(t, err)

			got := device.Classify(t.Context(), p.Snapshot())
			got.Mobile, got.Source = false, ""
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPreset_Hints(t *testing.T) {
	t.Parallel()

	p, err := browser.LookupPreset("macos-chrome")
	require.NoError(t, err)
	require.True(t, p.HasHints())

	h := p.Hints()
	assert.Equal(t, "macOS", h.Platform)
	assert.Equal(t, "arm", h.Architecture)
	require.Len(t, h.FullVersionList, 3)
	assert.Equal(t, "Google Chrome", h.FullVersionList[2].Brand)

	iphone, err := browser.LookupPreset("iphone-safari")
	require.NoError(t, err)
	assert.False(t, iphone.HasHints())
	assert.Nil(t, iphone.Snapshot().Hints)
}
