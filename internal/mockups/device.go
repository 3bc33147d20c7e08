package mockups

// Device enumerates the supported device frames. DeviceNone renders a plain
// video element; every other variant carries its frame geometry as data.
type Device int

const (
	DeviceNone Device = iota
	DeviceMobileIPhoneXR
	DeviceTabletIPadAirPortrait
	DeviceTabletIPadAirLandscape
	DeviceLaptopMacBookPro
	DeviceDesktopIMacPro
)

// Rect is the screen-area sub-rectangle inside a frame overlay, in pixels.
type Rect struct {
	X int
	Y int
	W int
	H int
}

// FrameSpec is the geometry and presentation data for one device frame.
type FrameSpec struct {
	Key             string // stable key used in options and shortcodes
	Name            string
	Class           string // mobile, tablet, laptop, desktop
	ViewportWidth   int    // capture viewport
	ViewportHeight  int
	FrameWidth      int // total overlay image size
	FrameHeight     int
	Screen          Rect   // screen area within the overlay
	OverlayFile     string // PNG asset filename; empty for DeviceNone
	MaxDisplayWidth int    // rendered max-width in px
}

// Spec returns the frame specification for the device. Exhaustive over the
// enumeration; DeviceNone returns a zero spec with Key "none".
func (d Device) Spec() FrameSpec {
	switch d {
	case DeviceMobileIPhoneXR:
		return FrameSpec{
			Key: "mobile_iphone_xr", Name: "iPhone XR", Class: "mobile",
			ViewportWidth: 414, ViewportHeight: 896,
			FrameWidth: 460, FrameHeight: 940,
			Screen:      Rect{X: 23, Y: 22, W: 414, H: 896},
			OverlayFile: "mobile_iphone_xr.png", MaxDisplayWidth: 320,
		}
	case DeviceTabletIPadAirPortrait:
		return FrameSpec{
			Key: "tablet_ipad_air_portrait", Name: "iPad Air (Portrait)", Class: "tablet",
			ViewportWidth: 820, ViewportHeight: 1180,
			FrameWidth: 900, FrameHeight: 1260,
			Screen:      Rect{X: 40, Y: 40, W: 820, H: 1180},
			OverlayFile: "tablet_ipad_air_portrait.png", MaxDisplayWidth: 420,
		}
	case DeviceTabletIPadAirLandscape:
		return FrameSpec{
			Key: "tablet_ipad_air_landscape", Name: "iPad Air (Landscape)", Class: "tablet",
			ViewportWidth: 1180, ViewportHeight: 820,
			FrameWidth: 1260, FrameHeight: 900,
			Screen:      Rect{X: 40, Y: 40, W: 1180, H: 820},
			OverlayFile: "tablet_ipad_air_landscape.png", MaxDisplayWidth: 560,
		}
	case DeviceLaptopMacBookPro:
		return FrameSpec{
			Key: "laptop_macbook_pro", Name: "MacBook Pro", Class: "laptop",
			ViewportWidth: 1440, ViewportHeight: 900,
			FrameWidth: 1740, FrameHeight: 1020,
			Screen:      Rect{X: 150, Y: 60, W: 1440, H: 900},
			OverlayFile: "laptop_macbook_pro.png", MaxDisplayWidth: 640,
		}
	case DeviceDesktopIMacPro:
		return FrameSpec{
			Key: "desktop_imac_pro", Name: "iMac Pro", Class: "desktop",
			ViewportWidth: 1920, ViewportHeight: 1080,
			FrameWidth: 2100, FrameHeight: 1800,
			Screen:      Rect{X: 90, Y: 90, W: 1920, H: 1080},
			OverlayFile: "desktop_imac_pro.png", MaxDisplayWidth: 680,
		}
	}
	return FrameSpec{Key: "none", Name: "No Device Frame", Class: "none"}
}

// Devices returns every frame-bearing device, for option lists.
func Devices() []Device {
	return []Device{
		DeviceMobileIPhoneXR,
		DeviceTabletIPadAirPortrait,
		DeviceTabletIPadAirLandscape,
		DeviceLaptopMacBookPro,
		DeviceDesktopIMacPro,
	}
}

// FromKey maps a current device key to its Device. Unknown keys return
// DeviceNone so rendering degrades to the plain video path.
func FromKey(key string) Device {
	for _, d := range Devices() {
		if d.Spec().Key == key {
			return d
		}
	}
	return DeviceNone
}

// legacyKeyMap maps device keys written by earlier releases onto the current
// enumeration. Unmapped keys degrade to DeviceNone.
var legacyKeyMap = map[string]Device{
	"phone_iphone_15_pro":       DeviceMobileIPhoneXR,
	"phone_iphone_15_pro_max":   DeviceMobileIPhoneXR,
	"phone_samsung_s24":         DeviceMobileIPhoneXR,
	"mobile_iphone_xr":          DeviceMobileIPhoneXR,
	"tablet_ipad_pro":           DeviceTabletIPadAirPortrait,
	"tablet_ipad":               DeviceTabletIPadAirPortrait,
	"tablet_ipad_air_portrait":  DeviceTabletIPadAirPortrait,
	"tablet_ipad_air_landscape": DeviceTabletIPadAirLandscape,
	"laptop_macbook":            DeviceLaptopMacBookPro,
	"laptop_generic":            DeviceLaptopMacBookPro,
	"laptop_macbook_pro":        DeviceLaptopMacBookPro,
	"macbook_pro_14":            DeviceLaptopMacBookPro,
	"macbook_air_13":            DeviceLaptopMacBookPro,
	"desktop_1920":              DeviceDesktopIMacPro,
	"desktop_1440":              DeviceDesktopIMacPro,
	"desktop_1280":              DeviceDesktopIMacPro,
	"imac_24":                   DeviceDesktopIMacPro,
	"desktop_imac_pro":          DeviceDesktopIMacPro,
}

// FromLegacyKey maps a device key from any release onto the current
// enumeration, falling back to DeviceNone for unrecognized keys.
func FromLegacyKey(key string) Device {
	if d, ok := legacyKeyMap[key]; ok {
		return d
	}
	return DeviceNone
}

// ScreenPercentages returns the screen area as percentages of the total
// frame size, so the composition is resolution independent.
func (s FrameSpec) ScreenPercentages() (left, top, width, height float64) {
	if s.FrameWidth == 0 || s.FrameHeight == 0 {
		return 0, 0, 0, 0
	}
	left = float64(s.Screen.X) / float64(s.FrameWidth) * 100
	top = float64(s.Screen.Y) / float64(s.FrameHeight) * 100
	width = float64(s.Screen.W) / float64(s.FrameWidth) * 100
	height = float64(s.Screen.H) / float64(s.FrameHeight) * 100
	return left, top, width, height
}

// AspectPercent returns the frame's padding-bottom aspect ratio percentage.
func (s FrameSpec) AspectPercent() float64 {
	if s.FrameWidth == 0 {
		return 0
	}
	return float64(s.FrameHeight) / float64(s.FrameWidth) * 100
}
