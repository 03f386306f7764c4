package util

import (
	"strconv"
	"strings"
)

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// NormalizeSymbol turns user input such as "btc_usdt", "BTC/USDT" or
// "BTC/USDT:USDT" into the exchange form "BTCUSDT".
func NormalizeSymbol(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", "/")
	if base, _, ok := strings.Cut(s, ":"); ok {
		s = base
	}
	return strings.ReplaceAll(s, "/", "")
}
