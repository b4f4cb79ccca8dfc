package profile_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stupside/beacon/internal/profile"
)

func TestResultMarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   profile.Result
		want string
	}{
		{name: "payload", in: profile.OK(map[string]any{"hash": 12}), want: `{"hash":12}`},
		{name: "slice payload", in: profile.OK([]string{"a"}), want: `["a"]`},
		{name: "error", in: profile.Fail("no_canvas"), want: `{"error":"no_canvas"}`},
		{
			name: "error with extra",
			in:   profile.FailWith("ios_not_supported", map[string]any{"percentage": nil, "error": "ignored"}),
			want: `{"error":"ios_not_supported","percentage":null}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := json.Marshal(tt.in)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestResultNeverMixesPayloadAndError(t *testing.T) {
	t.Parallel()

	r := profile.Fail("fail")
	assert.True(t, r.Failed())
	assert.Nil(t, r.Data())

	ok := profile.OK(1)
	assert.False(t, ok.Failed())
	assert.Empty(t, ok.Code())
}

func TestProfileSetOnce(t *testing.T) {
	t.Parallel()

	p := profile.New()
	require.NoError(t, p.Set("canvas", profile.OK(1)))

	err := p.Set("canvas", profile.OK(2))
	require.ErrorIs(t, err, profile.ErrDuplicate)

	r, ok := p.Result("canvas")
	require.True(t, ok)
	assert.Equal(t, 1, r.Data())
}

func TestProfileMarshalKeepsWriteOrder(t *testing.T) {
	t.Parallel()

	p := profile.New()
	require.NoError(t, p.Set(profile.KeyVisitorID, "v_1"))
	require.NoError(t, p.Set("zeta", profile.Fail("x")))
	require.NoError(t, p.Set("alpha", profile.OK(map[string]int{"n": 1})))

	got, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, `{"visitor_id":"v_1","zeta":{"error":"x"},"alpha":{"n":1}}`, string(got))
	assert.Equal(t, []string{"visitor_id", "zeta", "alpha"}, p.Keys())
}

func TestProfileMissing(t *testing.T) {
	t.Parallel()

	p := profile.New()
	require.NoError(t, p.Set("a", 1))
	assert.Equal(t, []string{"b"}, p.Missing([]string{"a", "b"}))
}
