// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from loosely
// formatted text, as found in bank exports and spreadsheets.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string into a signed amount.
//
// Leading and trailing spaces, a leading "+", currency symbols and thousands
// spaces are ignored. Accounting negatives written as "(12.50)" are
// accepted. Unlike the transaction validator, zero parses successfully:
// callers decide whether zero is meaningful.
//
// Examples:
//
//	ParseAmount("12.34")   -> 12.34, nil
//	ParseAmount("-5")      -> -5, nil
//	ParseAmount("€ 1 000") -> 1000, nil
//	ParseAmount("(3.10)")  -> -3.10, nil
//	ParseAmount("abc")     -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case '$', '€', '£', '¥', ' ', '\u00a0':
			return -1
		}
		return r
	}, s)
	s = strings.TrimPrefix(s, "+")
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// SignedFor forces the sign convention of a transaction type onto amount:
// expenses are negative, income is positive.
func SignedFor(t TransactionType, amount decimal.Decimal) decimal.Decimal {
	if t == Expense {
		return amount.Abs().Neg()
	}
	return amount.Abs()
}
