package model

import (
	"strings"
	"testing"
)

func TestModuleCheckReferences(t *testing.T) {
	t.Parallel()
	mod := &Module{
		Definitions: []Definition{
			{Name: "Foo", Data: simpleStruct(Reference("Missing"))},
		},
	}
	err := mod.checkReferences()
	if err == nil || !strings.Contains(err.Error(), `unknown definition "Missing"`) {
		t.Fatalf("check: got %v, want unknown definition error", err)
	}

	mod.Definitions = append(mod.Definitions, Definition{Name: "Missing", Data: simpleStruct(String())})
	if err := mod.checkReferences(); err != nil {
		t.Fatalf("check: %v", err)
	}
}

func TestModuleYAMLDefinitionKinds(t *testing.T) {
	t.Parallel()
	mod := &Module{
		Definitions: []Definition{
			{Name: "Foo", Data: simpleStruct(String())},
			{Name: "Mood", Data: &Enum{Variants: []EnumVariant{{Name: "Happy"}}}},
			{Name: "FooError", Data: &ApiErr{Variants: []ErrVariant{{Name: "Gone", Detail: "gone", Code: "GONE"}}}},
			{Name: "default_int_1", Data: &DefaultProvider{Type: Integer(), Value: "1"}},
			{Name: "ApiSpec", Data: &StaticStr{Path: "api_v1.yaml"}},
			{Name: "RedirectRoot", Data: &Redirect{Target: "docs"}},
		},
	}
	out, err := mod.YAML()
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	text := string(out)
	for _, snippet := range []string{
		"kind: struct",
		"kind: enum",
		"kind: apierr",
		"kind: default",
		"kind: staticstr",
		"kind: redirect",
		"name: default_int_1",
		"path: api_v1.yaml",
		"target: docs",
		"type: i64",
	} {
		if !strings.Contains(text, snippet) {
			t.Errorf("yaml: missing %q", snippet)
		}
	}
}
