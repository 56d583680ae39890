package main

import (
	"fmt"
	"math/big"
	"strings"
)

func parseETH(s string) (*big.Int, error) {
	return parseUnits(s, 18)
}

// parseUnits converts a decimal amount string into raw integer units.
func parseUnits(s string, decimals int) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}
	parts := strings.SplitN(s, ".", 2)
	intPart, fracPart := parts[0], ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" && fracPart == "" {
		return nil, fmt.Errorf("bad amount %q", s)
	}
	// Digits only: amounts are unsigned, and a stray sign must not slip
	// through to the calldata encoder.
	for _, part := range []string{intPart, fracPart} {
		for _, c := range part {
			if c < '0' || c > '9' {
				return nil, fmt.Errorf("bad amount %q", s)
			}
		}
	}
	if len(fracPart) > decimals {
		return nil, fmt.Errorf("too many fractional digits for %d decimals", decimals)
	}
	fracPart = fracPart + strings.Repeat("0", decimals-len(fracPart))
	clean := strings.TrimLeft(intPart+fracPart, "0")
	if clean == "" {
		return big.NewInt(0), nil
	}
	v, ok := new(big.Int).SetString(clean, 10)
	if !ok {
		return nil, fmt.Errorf("bad amount %q", s)
	}
	return v, nil
}

func formatUnits(v *big.Int, decimals int) string {
	if v == nil {
		return "0"
	}
	if decimals <= 0 {
		return v.String()
	}
	s := new(big.Int).Abs(v).String()
	neg := v.Sign() < 0
	if len(s) <= decimals {
		frac := strings.Repeat("0", decimals-len(s)) + s
		out := "0." + strings.TrimRight(frac, "0")
		if out == "0." {
			out = "0"
		}
		if neg {
			return "-" + out
		}
		return out
	}
	intPart := s[:len(s)-decimals]
	frac := strings.TrimRight(s[len(s)-decimals:], "0")
	out := intPart
	if frac != "" {
		out = intPart + "." + frac
	}
	if neg {
		return "-" + out
	}
	return out
}
