package domain

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Rounding is the rounding policy applied to a prestation amount.
type Rounding func(decimal.Decimal) decimal.Decimal

// RoundCents rounds half away from zero to two decimal places. Simple tariffs
// use it for local edits and for the payload sent on save.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// RoundUnits rounds half away from zero to the nearest integer. Groupage rates
// have no sub-unit currency.
func RoundUnits(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

var hundred = decimal.NewFromInt(100)

// Derived holds the amounts computed from a base amount and a markup.
type Derived struct {
	PrestationAmount float64 `json:"prestationAmount"`
	TotalAmount      float64 `json:"totalAmount"`
}

// Derive applies the tariff rule:
//
//	prestation = round(base * markup / 100)
//	total      = base + prestation
//
// Non-finite inputs count as 0 and a negative markup is clamped to 0.
func Derive(base, markup float64, round Rounding) Derived {
	base = finiteOrZero(base)
	markup = finiteOrZero(markup)
	if markup < 0 {
		markup = 0
	}

	b := decimal.NewFromFloat(base)
	prestation := round(b.Mul(decimal.NewFromFloat(markup)).Div(hundred))

	return Derived{
		PrestationAmount: prestation.InexactFloat64(),
		TotalAmount:      b.Add(prestation).InexactFloat64(),
	}
}

// ParseMarkup converts loosely typed input (form values, JSON numbers,
// strings with a decimal comma) into a percentage. Empty, missing and
// non-numeric input yields 0. The sign is preserved so callers can reject
// negative percentages explicitly.
func ParseMarkup(v interface{}) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		return finiteOrZero(x)
	case float32:
		return finiteOrZero(float64(x))
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case *float64:
		if x == nil {
			return 0
		}
		return finiteOrZero(*x)
	case string:
		return parseAmountString(x)
	case interface{ String() string }:
		return parseAmountString(x.String())
	default:
		return 0
	}
}

// ParseAmount is ParseMarkup for monetary fields.
func ParseAmount(v interface{}) float64 {
	return ParseMarkup(v)
}

func parseAmountString(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.Replace(s, ",", ".", 1)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return finiteOrZero(f)
}

func finiteOrZero(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
