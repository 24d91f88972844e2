package model

import "testing"

func TestRustIdentifierUpperCamel(t *testing.T) {
	t.Parallel()
	cases := []struct {
		raw  string
		want string
	}{
		{"First Variant", "FirstVariant"},
		{"helloWorld", "HelloWorld"},
		{"greet-user", "GreetUser"},
		{"snake_case_name", "SnakeCaseName"},
		{"v1_float", "V1Float"},
		{"!123", "_123"},
		{"", "_"},
		{"circle", "Circle"},
	}
	for _, tc := range cases {
		if got := RustIdentifier(tc.raw, CaseUpperCamel); got != tc.want {
			t.Errorf("RustIdentifier(%q, upper camel): got %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestRustIdentifierSnake(t *testing.T) {
	t.Parallel()
	cases := []struct {
		raw  string
		want string
	}{
		{"strEnum", "str_enum"},
		{"First Variant", "first_variant"},
		{"pageSize", "page_size"},
		{"v1_float", "v_1_float"},
		{"!123", "_123"},
		{"World", "world"},
		{"123abc", "_123_abc"},
		{"", "_"},
	}
	for _, tc := range cases {
		if got := RustIdentifier(tc.raw, CaseSnake); got != tc.want {
			t.Errorf("RustIdentifier(%q, snake): got %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestRustIdentifierKeywordEscape(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"type", "enum", "self", "match"} {
		got := RustIdentifier(raw, CaseSnake)
		if got != raw+"_" {
			t.Errorf("RustIdentifier(%q, snake): got %q, want keyword escape %q", raw, got, raw+"_")
		}
	}
	// Camel case never collides with lowercase keywords.
	if got := RustIdentifier("type", CaseUpperCamel); got != "Type" {
		t.Errorf("RustIdentifier(type, upper camel): got %q, want Type", got)
	}
}

func TestChildName(t *testing.T) {
	t.Parallel()
	if got := childName("Outer", "inner_obj"); got != "OuterInnerObj" {
		t.Errorf("childName: got %q, want OuterInnerObj", got)
	}
	if got := childName("GreetUserQuery", "pageSize"); got != "GreetUserQueryPageSize" {
		t.Errorf("childName: got %q, want GreetUserQueryPageSize", got)
	}
}
