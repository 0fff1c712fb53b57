package tether

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"
)

func TestTruthy(t *testing.T) {
	tests := []struct {
		v    any
		want bool
	}{
		{nil, false},
		{0, false},
		{"", false},
		{false, false},
		{(*int)(nil), false},
		{ptr(0), false},
		{1, true},
		{"x", true},
		{ptr(3), true},
		{map[string]any{}, true},
		{json.Number("0"), false},
		{json.Number("12"), true},
	}
	for _, tt := range tests {
		if got := truthy(tt.v); got != tt.want {
			t.Errorf("truthy(%#v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestPositive(t *testing.T) {
	tests := []struct {
		v    any
		want bool
	}{
		{nil, false},
		{int64(0), false},
		{int64(-1), false},
		{int64(5), true},
		{uint(1), true},
		{0.5, true},
		{-0.5, false},
		{"", false},
		{"abc", true},
		{json.Number("3"), true},
		{json.Number("-3"), false},
	}
	for _, tt := range tests {
		if got := positive(tt.v); got != tt.want {
			t.Errorf("positive(%#v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestAssign(t *testing.T) {
	type nested struct {
		City string `json:"city"`
	}

	t.Run("float to int", func(t *testing.T) {
		var n int64
		if err := assign(reflect.ValueOf(&n).Elem(), float64(42)); err != nil {
			t.Fatalf("assign() error: %v", err)
		}
		if n != 42 {
			t.Errorf("n = %d, want 42", n)
		}
	})

	t.Run("fractional float to int", func(t *testing.T) {
		var n int64
		if err := assign(reflect.ValueOf(&n).Elem(), 1.5); err == nil {
			t.Error("expected error for lossy conversion")
		}
	})

	t.Run("overflow", func(t *testing.T) {
		var n int8
		if err := assign(reflect.ValueOf(&n).Elem(), 300); err == nil {
			t.Error("expected overflow error")
		}
	})

	t.Run("out of range", func(t *testing.T) {
		tests := []struct {
			name string
			dst  any
			v    any
		}{
			{"float above int64", new(int64), 1e19},
			{"float below int64", new(int64), -1e19},
			{"infinite float to int", new(int64), math.Inf(1)},
			{"uint64 above int64", new(int64), uint64(1 << 63)},
			{"float above uint64", new(uint64), 2e19},
			{"float64 to float32", new(float32), 1e300},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				dst := reflect.ValueOf(tt.dst).Elem()
				if err := assign(dst, tt.v); err == nil {
					t.Errorf("assign(%v) = %v, want overflow error", tt.v, dst.Interface())
				}
			})
		}
	})

	t.Run("in range edges", func(t *testing.T) {
		var n int64
		if err := assign(reflect.ValueOf(&n).Elem(), uint64(math.MaxInt64)); err != nil || n != math.MaxInt64 {
			t.Errorf("n = %d, %v; want MaxInt64", n, err)
		}
		var u uint64
		if err := assign(reflect.ValueOf(&u).Elem(), uint64(math.MaxUint64)); err != nil || u != math.MaxUint64 {
			t.Errorf("u = %d, %v; want MaxUint64", u, err)
		}
		var f float32
		if err := assign(reflect.ValueOf(&f).Elem(), 1.5); err != nil || f != 1.5 {
			t.Errorf("f = %v, %v; want 1.5", f, err)
		}
	})

	t.Run("json number", func(t *testing.T) {
		var n int64
		if err := assign(reflect.ValueOf(&n).Elem(), json.Number("9007199254740993")); err != nil {
			t.Fatalf("assign() error: %v", err)
		}
		if n != 9007199254740993 {
			t.Errorf("n = %d, want 9007199254740993", n)
		}

		var u uint64
		if err := assign(reflect.ValueOf(&u).Elem(), json.Number("18446744073709551615")); err != nil || u != math.MaxUint64 {
			t.Errorf("u = %d, %v; want MaxUint64", u, err)
		}

		var f float64
		if err := assign(reflect.ValueOf(&f).Elem(), json.Number("1.5")); err != nil || f != 1.5 {
			t.Errorf("f = %v, %v; want 1.5", f, err)
		}

		var p *int64
		if err := assign(reflect.ValueOf(&p).Elem(), json.Number("7")); err != nil || p == nil || *p != 7 {
			t.Errorf("p = %v, %v; want 7", p, err)
		}

		var s string
		if err := assign(reflect.ValueOf(&s).Elem(), json.Number("42")); err != nil || s != "42" {
			t.Errorf("s = %q, %v; want 42", s, err)
		}

		var i int
		if err := assign(reflect.ValueOf(&i).Elem(), json.Number("1.5")); err == nil {
			t.Error("expected error binding a fractional number to int")
		}
	})

	t.Run("negative to uint", func(t *testing.T) {
		var n uint
		if err := assign(reflect.ValueOf(&n).Elem(), -1); err == nil {
			t.Error("expected error for negative value")
		}
	})

	t.Run("value to pointer", func(t *testing.T) {
		var p *string
		if err := assign(reflect.ValueOf(&p).Elem(), "x"); err != nil {
			t.Fatalf("assign() error: %v", err)
		}
		if p == nil || *p != "x" {
			t.Errorf("p = %v, want x", p)
		}
	})

	t.Run("map to struct", func(t *testing.T) {
		var n nested
		if err := assign(reflect.ValueOf(&n).Elem(), map[string]any{"city": "Oslo"}); err != nil {
			t.Fatalf("assign() error: %v", err)
		}
		if n.City != "Oslo" {
			t.Errorf("City = %q, want Oslo", n.City)
		}
	})

	t.Run("nil resets", func(t *testing.T) {
		s := "set"
		if err := assign(reflect.ValueOf(&s).Elem(), nil); err != nil {
			t.Fatalf("assign() error: %v", err)
		}
		if s != "" {
			t.Errorf("s = %q, want empty", s)
		}
	})

	t.Run("mismatch", func(t *testing.T) {
		var n int
		if err := assign(reflect.ValueOf(&n).Elem(), "seven"); err == nil {
			t.Error("expected error assigning string to int")
		}
	})
}
