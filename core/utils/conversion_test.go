package utils_test

import (
	"testing"
	"time"

	"tablediff/core/utils"

	"github.com/stretchr/testify/assert"
)

func TestToFloat(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{"Float64", 1.5, 1.5, true},
		{"Int64", int64(3), 3, true},
		{"Uint", uint(7), 7, true},
		{"NumericString", "2.25", 2.25, true},
		{"NumericBytes", []byte("4"), 4, true},
		{"Nil", nil, 0, false},
		{"NonNumericString", "abc", 0, false},
		{"Bool", true, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := utils.ToFloat(tt.in)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestToString(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"Nil", nil, ""},
		{"String", "x", "x"},
		{"Bytes", []byte("y"), "y"},
		{"Int64", int64(42), "42"},
		{"Float", 1.5, "1.5"},
		{"FloatWhole", 2.0, "2"},
		{"Bool", true, "true"},
		{"Time", ts, "2024-03-01T12:00:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, utils.ToString(tt.in))
		})
	}
}
