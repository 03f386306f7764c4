package util

import (
	"math"
	"testing"
)

func TestNormalizeSymbol(t *testing.T) {
	tests := map[string]string{
		"BTCUSDT":       "BTCUSDT",
		"btc_usdt":      "BTCUSDT",
		"BTC/USDT":      "BTCUSDT",
		"BTC/USDT:USDT": "BTCUSDT",
		" eth_usdt ":    "ETHUSDT",
	}
	for in, want := range tests {
		if got := NormalizeSymbol(in); got != want {
			t.Fatalf("NormalizeSymbol(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseIntDefault(t *testing.T) {
	if got := ParseIntDefault("", 7); got != 7 {
		t.Fatalf("empty: got %d", got)
	}
	if got := ParseIntDefault("x", 7); got != 7 {
		t.Fatalf("invalid: got %d", got)
	}
	if got := ParseIntDefault("12", 7); got != 12 {
		t.Fatalf("valid: got %d", got)
	}
}

func TestRound(t *testing.T) {
	if got := Round(40.004, 2); got != 40 {
		t.Fatalf("Round(40.004) = %v", got)
	}
	if got := Round(-6.126, 2); got != -6.13 {
		t.Fatalf("Round(-6.126) = %v", got)
	}
	if got := Round(math.NaN(), 2); !math.IsNaN(got) {
		t.Fatalf("Round(NaN) = %v", got)
	}
}

func TestFinite(t *testing.T) {
	if !Finite(1, 2, 3) {
		t.Fatal("finite values reported as non-finite")
	}
	if Finite(1, math.Inf(1)) || Finite(math.NaN()) {
		t.Fatal("non-finite values reported as finite")
	}
}
