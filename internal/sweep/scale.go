package sweep

import (
	"fmt"
	"math/big"
	"strings"
)

// ScaleDecimal multiplies x by a decimal multiplier given as a string
// ("1.25", "2", "0.5") using integer arithmetic only. The multiplier's
// decimal expansion becomes numerator/denominator ("1.25" -> 125/100) and
// the result is x*num/den truncated toward zero, so fractional multipliers
// never lose precision at the wei level.
func ScaleDecimal(x *big.Int, multiplier string) (*big.Int, error) {
	num, den, err := parseDecimal(multiplier)
	if err != nil {
		return nil, err
	}
	out := new(big.Int).Mul(x, num)
	return out.Quo(out, den), nil
}

func parseDecimal(s string) (num, den *big.Int, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil, fmt.Errorf("empty multiplier")
	}
	intPart, fracPart := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if intPart == "" {
		intPart = "0"
	}
	digits := intPart + fracPart
	num, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, nil, fmt.Errorf("bad multiplier %q", s)
	}
	if num.Sign() <= 0 {
		return nil, nil, fmt.Errorf("multiplier %q must be positive", s)
	}
	den = new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(len(fracPart))), nil)
	return num, den, nil
}

func formatGwei(v *big.Int) string {
	if v == nil {
		return "0"
	}
	r := new(big.Rat).SetFrac(v, big.NewInt(1_000_000_000))
	return r.FloatString(2)
}

// FormatEther renders a wei amount as a decimal ether string.
func FormatEther(v *big.Int) string {
	if v == nil {
		return "0"
	}
	r := new(big.Rat).SetFrac(v, big.NewInt(1_000_000_000_000_000_000))
	return r.FloatString(6)
}

func gweiToWei(g int64) *big.Int {
	x := new(big.Int).SetInt64(g)
	return x.Mul(x, big.NewInt(1_000_000_000))
}
