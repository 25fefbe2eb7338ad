// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package minimist

import (
	"math/big"
	"regexp"
	"strconv"
)

var (
	hexLiteralRe = regexp.MustCompile(`(?i)^0x[0-9a-f]+$`)
	decimalRe    = regexp.MustCompile(`^[-+]?(?:\d+(?:\.\d*)?|\.\d+)(e[-+]?\d+)?$`)
)

// IsNumber reports whether v is a number or a string that looks like one: a
// 0x hexadecimal literal or a signed decimal with an optional exponent.
func IsNumber(v any) bool {
	switch x := v.(type) {
	case string:
		return hexLiteralRe.MatchString(x) || decimalRe.MatchString(x)
	case float64, float32,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

// Coerce returns s as a float64 if it looks like a number and s unchanged
// otherwise.
func Coerce(s string) any {
	if !IsNumber(s) {
		return s
	}
	return toNumber(s)
}

// toNumber converts a string accepted by IsNumber. Overflowing decimals
// become ±Inf.
func toNumber(s string) float64 {
	if hexLiteralRe.MatchString(s) {
		if u, err := strconv.ParseUint(s[2:], 16, 64); err == nil {
			return float64(u)
		}
		n, ok := new(big.Int).SetString(s[2:], 16)
		if !ok {
			return 0
		}
		f, _ := new(big.Float).SetInt(n).Float64()
		return f
	}
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

// coerce applies the numeric rule to string values; everything else is
// kept as given.
func coerce(v any) any {
	if s, ok := v.(string); ok {
		return Coerce(s)
	}
	return v
}
