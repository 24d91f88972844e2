package model

import (
	"strings"
	"testing"
)

func TestValidateOptionality(t *testing.T) {
	t.Parallel()
	cases := []struct {
		required, hasDefault, nullable bool
		ok                             bool
	}{
		{true, false, false, true},   // plain required
		{true, true, false, false},   // required with default
		{true, false, true, false},   // required but nullable
		{true, true, true, false},    // required, default and nullable
		{false, true, false, true},   // optional with default
		{false, false, true, true},   // optional nullable
		{false, true, true, true},    // optional nullable with default
		{false, false, false, false}, // nothing at all
	}
	for _, tc := range cases {
		err := ValidateOptionality(tc.required, tc.hasDefault, tc.nullable)
		if tc.ok && err != nil {
			t.Errorf("required=%v default=%v nullable=%v: unexpected error %v", tc.required, tc.hasDefault, tc.nullable, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("required=%v default=%v nullable=%v: expected error", tc.required, tc.hasDefault, tc.nullable)
		}
	}
}

func TestDefaultProviderLiterals(t *testing.T) {
	t.Parallel()
	cases := []struct {
		target    *InlineType
		value     interface{}
		wantName  string
		wantValue string
	}{
		{Integer(), 5, "default_int_5", "5"},
		{Integer(), -3, "default_int_neg_3", "-3"},
		{Float(), 2.5, "default_float_2_5", "2.5"},
		{Boolean(), true, "default_true", "true"},
		{Boolean(), false, "default_false", "false"},
		{String(), "world", "default_str_world", `"world".to_string()`},
		{Option(Integer()), 1, "opt_default_int_1", "Some(1)"},
		{Option(String()), "hi", "opt_default_str_hi", `Some("hi".to_string())`},
	}
	for _, tc := range cases {
		store := NewStore()
		name, err := defaultProvider(store, 1, tc.target, tc.value)
		if err != nil {
			t.Errorf("defaultProvider(%s, %v): %v", tc.target, tc.value, err)
			continue
		}
		if name != tc.wantName {
			t.Errorf("defaultProvider(%s, %v): got name %q, want %q", tc.target, tc.value, name, tc.wantName)
		}
		def, ok := store.Lookup(name)
		if !ok {
			t.Errorf("defaultProvider(%s, %v): definition %q not stored", tc.target, tc.value, name)
			continue
		}
		provider, ok := def.Data.(*DefaultProvider)
		if !ok {
			t.Errorf("defaultProvider(%s, %v): stored %T, want *DefaultProvider", tc.target, tc.value, def.Data)
			continue
		}
		if provider.Value != tc.wantValue {
			t.Errorf("defaultProvider(%s, %v): got value %q, want %q", tc.target, tc.value, provider.Value, tc.wantValue)
		}
	}
}

func TestDefaultProviderDedup(t *testing.T) {
	t.Parallel()
	store := NewStore()
	first, err := defaultProvider(store, 1, Integer(), 10)
	if err != nil {
		t.Fatalf("defaultProvider: %v", err)
	}
	second, err := defaultProvider(store, 2, Integer(), 10)
	if err != nil {
		t.Fatalf("defaultProvider: %v", err)
	}
	if first != second {
		t.Fatalf("dedup: got %q and %q, want identical", first, second)
	}
	if len(store.Definitions()) != 1 {
		t.Fatalf("definitions: got %d, want 1", len(store.Definitions()))
	}
}

func TestDefaultProviderRejections(t *testing.T) {
	t.Parallel()
	cases := []struct {
		target  *InlineType
		value   interface{}
		wantMsg string
	}{
		{Integer(), "x", "not an integer"},
		{Boolean(), 1, "not a boolean"},
		{String(), 7, "not a string"},
		{Array(String()), []interface{}{"a"}, "array and object default values are not supported"},
		{Reference("Custom"), map[string]interface{}{"a": 1}, "array and object default values are not supported"},
	}
	for _, tc := range cases {
		store := NewStore()
		_, err := defaultProvider(store, 1, tc.target, tc.value)
		if err == nil {
			t.Errorf("defaultProvider(%s, %v): expected error", tc.target, tc.value)
			continue
		}
		if !strings.Contains(err.Error(), tc.wantMsg) {
			t.Errorf("defaultProvider(%s, %v): got %q, want substring %q", tc.target, tc.value, err, tc.wantMsg)
		}
	}
}
