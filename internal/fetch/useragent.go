package fetch

import browser "github.com/EDDYCJY/fake-useragent"

const fallbackUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// DefaultUserAgent returns the override when set, otherwise a rotating real
// browser UA with a static fallback if none could be picked.
func DefaultUserAgent(override string) string {
	if override != "" {
		return override
	}

	if ua := browser.Computer(); ua != "" {
		return ua
	}

	return fallbackUserAgent
}
