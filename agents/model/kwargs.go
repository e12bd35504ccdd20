/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package model

import "strconv"

// FloatKwarg reads a numeric kwarg.
func (b *Base) FloatKwarg(key string) (float64, bool) {
	switch v := b.kwargs[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}

// IntKwarg reads an integral kwarg. Fractional values are truncated.
func (b *Base) IntKwarg(key string) (int64, bool) {
	switch v := b.kwargs[key].(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	case string:
		i, err := strconv.ParseInt(v, 10, 64)
		return i, err == nil
	}
	return 0, false
}

// StringKwarg reads a string kwarg.
func (b *Base) StringKwarg(key string) (string, bool) {
	s, ok := b.kwargs[key].(string)
	return s, ok
}
