// Package core provides the domain value types of the settlement engine.
//
// This file contains functions for parsing monetary amounts from strings
// and converting between cents and decimal representations.
package core

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmountToCents converts a decimal string to cents with half-up
// rounding on the third decimal place.
//
// It accepts both dot (12.34) and comma (12,34) separators. Unlike a strict
// money parser it accepts zero and blank input (returning 0 cents), because
// a zero amount is the ledger's way of asking for a delete. Negative values
// are rejected.
func ParseAmountToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ValidationError{Field: "amount", Reason: "must be a plain non-negative number"}
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ValidationError{Field: "amount", Reason: "malformed number"}
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ValidationError{Field: "amount", Reason: "malformed number"}
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ValidationError{Field: "amount", Reason: "malformed number"}
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ValidationError{Field: "amount", Reason: "number too large"}
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ValidationError{Field: "amount", Reason: "number too large"}
	}
	// Take first two fractional digits; half-up rounding on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return iv*100 + fracCents, nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ValidationError{Field: "amount", Reason: "must be positive"}
	}
	return nil
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Neg returns the negated amount.
func (m Money) Neg() Money {
	return Money{Cents: -m.Cents}
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Cents == 0
}

// Decimal returns the amount as a two-place decimal for rate arithmetic
// and display. Ledger math stays in cents; this is the FX boundary.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount as a plain two-place decimal, e.g. "1234.56".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}
