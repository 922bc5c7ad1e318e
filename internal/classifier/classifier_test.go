package classifier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"qrlink/internal/classifier"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		ua       string
		device   string
		platform string
	}{
		{
			name:     "iPhone",
			ua:       "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) Mobile/15E148",
			device:   classifier.DeviceMobile,
			platform: classifier.PlatformIOS,
		},
		{
			name:     "Android phone",
			ua:       "Mozilla/5.0 (Linux; Android 13; Pixel 7) Mobile Safari/537.36",
			device:   classifier.DeviceMobile,
			platform: classifier.PlatformAndroid,
		},
		{
			name:     "Android tablet",
			ua:       "Mozilla/5.0 (Linux; Android 12; SM-T870) Tablet Safari/537.36",
			device:   classifier.DeviceTablet,
			platform: classifier.PlatformAndroid,
		},
		{
			name:     "Windows desktop",
			ua:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0",
			device:   classifier.DeviceDesktop,
			platform: classifier.PlatformWindows,
		},
		{
			name:     "Mac desktop",
			ua:       "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) Safari/605.1.15",
			device:   classifier.DeviceDesktop,
			platform: classifier.PlatformMacOS,
		},
		{
			name:     "curl",
			ua:       "curl/7.0",
			device:   classifier.DeviceDesktop,
			platform: classifier.PlatformUnknown,
		},
		{
			name:     "empty",
			ua:       "",
			device:   classifier.DeviceDesktop,
			platform: classifier.PlatformUnknown,
		},
		{
			name:     "case insensitive",
			ua:       "MOZILLA (ANDROID; MOBILE)",
			device:   classifier.DeviceMobile,
			platform: classifier.PlatformAndroid,
		},
		{
			// iPhone agents also contain "Mac OS X": iOS must win.
			name:     "iOS beats MacOS",
			ua:       "Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X)",
			device:   classifier.DeviceDesktop,
			platform: classifier.PlatformIOS,
		},
		{
			// Both markers present: the earlier check decides.
			name:     "win beats mac",
			ua:       "something win and mac",
			device:   classifier.DeviceDesktop,
			platform: classifier.PlatformWindows,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device, platform := classifier.Classify(tt.ua)
			assert.Equal(t, tt.device, device)
			assert.Equal(t, tt.platform, platform)
		})
	}
}
