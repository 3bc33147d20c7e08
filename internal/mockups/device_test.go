package mockups

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScreenPercentages(t *testing.T) {
	tests := []struct {
		device Device
		left   float64
		top    float64
		width  float64
		height float64
	}{
		{DeviceMobileIPhoneXR, 5.0, 2.3404255319148937, 90.0, 95.31914893617021},
		{DeviceLaptopMacBookPro, 8.620689655172415, 5.88235294117647, 82.75862068965517, 88.23529411764706},
		{DeviceDesktopIMacPro, 4.285714285714286, 5.0, 91.42857142857143, 60.0},
	}
	for _, tc := range tests {
		spec := tc.device.Spec()
		left, top, width, height := spec.ScreenPercentages()
		assert.InDelta(t, tc.left, left, 1e-9, spec.Key)
		assert.InDelta(t, tc.top, top, 1e-9, spec.Key)
		assert.InDelta(t, tc.width, width, 1e-9, spec.Key)
		assert.InDelta(t, tc.height, height, 1e-9, spec.Key)
	}
}

func TestScreenPercentagesZeroSpec(t *testing.T) {
	left, top, width, height := DeviceNone.Spec().ScreenPercentages()
	assert.Zero(t, left)
	assert.Zero(t, top)
	assert.Zero(t, width)
	assert.Zero(t, height)
}

func TestAspectPercent(t *testing.T) {
	spec := DeviceTabletIPadAirLandscape.Spec()
	assert.InDelta(t, float64(900)/float64(1260)*100, spec.AspectPercent(), 1e-9)
	assert.Zero(t, DeviceNone.Spec().AspectPercent())
}

func TestFromKey(t *testing.T) {
	assert.Equal(t, DeviceLaptopMacBookPro, FromKey("laptop_macbook_pro"))
	assert.Equal(t, DeviceNone, FromKey("laptop_macbook"))
	assert.Equal(t, DeviceNone, FromKey(""))
	assert.Equal(t, DeviceNone, FromKey("hologram_deck"))
}

func TestFromLegacyKey(t *testing.T) {
	assert.Equal(t, DeviceMobileIPhoneXR, FromLegacyKey("phone_iphone_15_pro"))
	assert.Equal(t, DeviceLaptopMacBookPro, FromLegacyKey("macbook_air_13"))
	assert.Equal(t, DeviceDesktopIMacPro, FromLegacyKey("desktop_1920"))
	assert.Equal(t, DeviceLaptopMacBookPro, FromLegacyKey("laptop_macbook_pro"))
	assert.Equal(t, DeviceNone, FromLegacyKey("hologram_deck"))
}

func TestEveryDeviceHasCompleteSpec(t *testing.T) {
	for _, d := range Devices() {
		spec := d.Spec()
		assert.NotEmpty(t, spec.Key)
		assert.NotEmpty(t, spec.OverlayFile)
		assert.Greater(t, spec.FrameWidth, spec.Screen.W, spec.Key)
		assert.Greater(t, spec.FrameHeight, spec.Screen.H, spec.Key)
		assert.Equal(t, spec.ViewportWidth, spec.Screen.W, spec.Key)
		assert.Equal(t, spec.ViewportHeight, spec.Screen.H, spec.Key)
		assert.Equal(t, d, FromKey(spec.Key))
	}
}
