package model

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// NamedOperation is an operation under its store-assigned name.
type NamedOperation struct {
	Name      string    `yaml:"name"`
	Operation Operation `yaml:"operation"`
}

// Module is the complete compiled output handed to the renderer:
// ordered definitions, operations, route entries and static service
// routes. Compiling unchanged input reproduces it byte for byte.
type Module struct {
	Definitions    []Definition     `yaml:"definitions"`
	Operations     []NamedOperation `yaml:"operations"`
	Paths          []OperationPath  `yaml:"paths"`
	StaticServices []StaticService  `yaml:"staticServices"`
}

// YAML serializes the module. All sequences are insertion or
// path-sorted, so the output is stable under re-serialization.
func (m *Module) YAML() ([]byte, error) {
	return yaml.Marshal(m)
}

// MarshalYAML serializes the definition with its variant kind spelled
// out, keeping field order fixed.
func (d Definition) MarshalYAML() (interface{}, error) {
	out := struct {
		Name         string            `yaml:"name"`
		Kind         string            `yaml:"kind"`
		Struct       *Struct           `yaml:"struct,omitempty"`
		Enum         *Enum             `yaml:"enum,omitempty"`
		ApiErr       *ApiErr           `yaml:"apierr,omitempty"`
		Default      *DefaultProvider  `yaml:"default,omitempty"`
		StaticStr    *StaticStr        `yaml:"staticstr,omitempty"`
		StaticString *StaticStringPath `yaml:"staticstring,omitempty"`
		StaticHtml   *StaticHtmlPath   `yaml:"statichtml,omitempty"`
		Redirect     *Redirect         `yaml:"redirect,omitempty"`
	}{Name: d.Name, Kind: d.Data.defKind()}

	switch data := d.Data.(type) {
	case *Struct:
		out.Struct = data
	case *Enum:
		out.Enum = data
	case *ApiErr:
		out.ApiErr = data
	case *DefaultProvider:
		out.Default = data
	case *StaticStr:
		out.StaticStr = data
	case *StaticStringPath:
		out.StaticString = data
	case *StaticHtmlPath:
		out.StaticHtml = data
	case *Redirect:
		out.Redirect = data
	default:
		return nil, fmt.Errorf("unknown definition kind %T", d.Data)
	}
	return out, nil
}

// checkReferences enforces the renderer boundary contract: every
// reference appearing anywhere in the module resolves to an emitted
// definition. The renderer is entitled to assume this.
func (m *Module) checkReferences() error {
	names := make(map[string]struct{}, len(m.Definitions))
	for _, def := range m.Definitions {
		names[def.Name] = struct{}{}
	}

	var check func(t *InlineType) error
	check = func(t *InlineType) error {
		if t == nil {
			return nil
		}
		if t.Kind == KindReference {
			if _, ok := names[t.Name]; !ok {
				return newError(NamingError, fmt.Sprintf("reference to unknown definition %q", t.Name))
			}
		}
		for _, child := range []*InlineType{t.Inner, t.Ok, t.Err} {
			if err := check(child); err != nil {
				return err
			}
		}
		return nil
	}

	for _, def := range m.Definitions {
		switch data := def.Data.(type) {
		case *Struct:
			for _, prop := range data.Properties {
				if err := check(prop.Type); err != nil {
					return err
				}
				if prop.Default != "" {
					if _, ok := names[prop.Default]; !ok {
						return newError(NamingError, fmt.Sprintf("reference to unknown default provider %q", prop.Default))
					}
				}
			}
		case *Enum:
			for _, variant := range data.Variants {
				if err := check(variant.Data); err != nil {
					return err
				}
			}
		case *DefaultProvider:
			if err := check(data.Type); err != nil {
				return err
			}
		case *StaticStringPath:
			if _, ok := names[data.Data]; !ok {
				return newError(NamingError, fmt.Sprintf("reference to unknown definition %q", data.Data))
			}
		case *StaticHtmlPath:
			if _, ok := names[data.Data]; !ok {
				return newError(NamingError, fmt.Sprintf("reference to unknown definition %q", data.Data))
			}
		}
	}
	for _, op := range m.Operations {
		for _, t := range []*InlineType{op.Operation.ParamPath, op.Operation.ParamQuery, op.Operation.ParamBody, op.Operation.Response} {
			if err := check(t); err != nil {
				return err
			}
		}
	}
	for _, service := range m.StaticServices {
		if _, ok := names[service.Data]; !ok {
			return newError(NamingError, fmt.Sprintf("static service references unknown definition %q", service.Data))
		}
	}
	return nil
}
