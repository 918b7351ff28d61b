package detector

import "strings"

const (
	DeviceBot     = "bot"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
	DeviceUnknown = "unknown"
)

// DetectDeviceType classifies a User-Agent header by keyword.
func DetectDeviceType(userAgent string) string {
	ua := strings.ToLower(userAgent)

	botKeywords := []string{"bot", "crawler", "spider", "scraper", "curl", "wget"}
	for _, keyword := range botKeywords {
		if strings.Contains(ua, keyword) {
			return DeviceBot
		}
	}

	if ua == "" {
		return DeviceUnknown
	}

	// iPad user agents also carry "Mobile", so tablets are matched first.
	tabletKeywords := []string{"tablet", "ipad"}
	for _, keyword := range tabletKeywords {
		if strings.Contains(ua, keyword) {
			return DeviceTablet
		}
	}

	mobileKeywords := []string{"mobile", "android", "iphone", "ipod", "blackberry", "windows phone"}
	for _, keyword := range mobileKeywords {
		if strings.Contains(ua, keyword) {
			return DeviceMobile
		}
	}

	if strings.Contains(ua, "mozilla") || strings.Contains(ua, "windows") || strings.Contains(ua, "macintosh") {
		return DeviceDesktop
	}

	return DeviceUnknown
}
