package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeOptionsJSON(t *testing.T) {
	in := &RecordingOptions{
		DeviceKey:       "mobile_iphone_xr",
		ViewportWidth:   414,
		ViewportHeight:  896,
		Duration:        5,
		Format:          "mp4",
		Scenario:        "scroll",
		ShowDeviceFrame: true,
		PostID:          42,
	}
	raw, err := EncodeOptions(in)
	require.NoError(t, err)

	out, enc, err := DecodeOptions(raw)
	require.NoError(t, err)
	assert.Equal(t, EncodingJSON, enc)
	assert.Equal(t, in, out)
}

func TestDecodeOptionsLegacyPHPSerialize(t *testing.T) {
	raw := `a:5:{s:10:"device_key";s:16:"mobile_iphone_xr";s:8:"duration";i:5;s:17:"show_device_frame";b:1;s:14:"viewport_width";s:3:"414";s:7:"post_id";i:42;}`

	out, enc, err := DecodeOptions(raw)
	require.NoError(t, err)
	assert.Equal(t, EncodingLegacy, enc)
	assert.Equal(t, "mobile_iphone_xr", out.DeviceKey)
	assert.Equal(t, 5, out.Duration)
	assert.Equal(t, 414, out.ViewportWidth)
	assert.Equal(t, int64(42), out.PostID)
	assert.True(t, bool(out.ShowDeviceFrame))
}

func TestDecodeOptionsLegacyIntegerFlag(t *testing.T) {
	raw := `a:2:{s:17:"show_device_frame";i:0;s:8:"duration";d:7.0;}`

	out, enc, err := DecodeOptions(raw)
	require.NoError(t, err)
	assert.Equal(t, EncodingLegacy, enc)
	assert.False(t, bool(out.ShowDeviceFrame))
	assert.Equal(t, 7, out.Duration)
}

func TestDecodeOptionsEmpty(t *testing.T) {
	out, enc, err := DecodeOptions("  ")
	require.NoError(t, err)
	assert.Nil(t, out)
	assert.Equal(t, EncodingJSON, enc)
}

func TestDecodeOptionsGarbage(t *testing.T) {
	_, _, err := DecodeOptions("not json and not serialized")
	assert.Error(t, err)
}

func TestDecodeOptionsLegacyTruncated(t *testing.T) {
	_, _, err := DecodeOptions(`a:2:{s:10:"device_key";s:16:"mobile_iphone`)
	assert.Error(t, err)
}

func TestFlexBoolUnmarshal(t *testing.T) {
	cases := map[string]bool{
		`true`:    true,
		`false`:   false,
		`1`:       true,
		`0`:       false,
		`"1"`:     true,
		`"0"`:     false,
		`"true"`:  true,
		`"false"`: false,
		`null`:    false,
	}
	for raw, want := range cases {
		var b FlexBool
		require.NoError(t, b.UnmarshalJSON([]byte(raw)), raw)
		assert.Equal(t, want, bool(b), raw)
	}

	var b FlexBool
	assert.Error(t, b.UnmarshalJSON([]byte(`"maybe"`)))
}
