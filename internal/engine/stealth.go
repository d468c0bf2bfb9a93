package engine

import (
	stealth "github.com/anatolykoptev/go-stealth"
)

// Re-export the stealth browser-client surface for engine consumers.
// The retry ladder stays in-repo (retry.go); only the hardened transport
// and browser fingerprinting come from go-stealth.
type BrowserClient = stealth.BrowserClient

func ChromeHeaders() map[string]string { return stealth.ChromeHeaders() }
func RandomUserAgent() string          { return stealth.RandomUserAgent() }
