// Package classifier derives device and platform categories from a raw
// User-Agent string. It is a pure function: it never fails and unrecognized
// agents fall back to the default categories.
package classifier

import "strings"

// Device categories.
const (
	DeviceMobile  = "Mobile"
	DeviceTablet  = "Tablet"
	DeviceDesktop = "Desktop"
)

// Platform categories.
const (
	PlatformAndroid = "Android"
	PlatformIOS     = "iOS"
	PlatformWindows = "Windows"
	PlatformMacOS   = "MacOS"
	PlatformUnknown = "Unknown"
)

// Classify returns the device and platform categories for a User-Agent.
func Classify(userAgent string) (device, platform string) {
	ua := strings.ToLower(userAgent)
	return deviceType(ua), platformType(ua)
}

func deviceType(ua string) string {
	switch {
	case strings.Contains(ua, "mobile"):
		return DeviceMobile
	case strings.Contains(ua, "tablet"):
		return DeviceTablet
	default:
		return DeviceDesktop
	}
}

// platformType checks substrings in a fixed order. The order matters
// because the markers overlap: an iPhone agent also contains "mac", so
// iOS is decided before MacOS, and "win" before "mac" for agents that
// report both.
func platformType(ua string) string {
	switch {
	case strings.Contains(ua, "android"):
		return PlatformAndroid
	case strings.Contains(ua, "iphone"), strings.Contains(ua, "ipad"), strings.Contains(ua, "ipod"):
		return PlatformIOS
	case strings.Contains(ua, "win"):
		return PlatformWindows
	case strings.Contains(ua, "mac"):
		return PlatformMacOS
	default:
		return PlatformUnknown
	}
}
