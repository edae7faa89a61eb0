package engine

import (
	stealth "github.com/anatolykoptev/go-stealth"
)

// Re-export stealth types and helpers for engine consumers. The watch-page
// transcript strategy goes through BrowserClient when one is configured;
// YouTube serves consent walls to clients with datacenter TLS fingerprints.
type BrowserClient = stealth.BrowserClient

func ChromeHeaders() map[string]string { return stealth.ChromeHeaders() }
func RandomUserAgent() string          { return stealth.RandomUserAgent() }
