// Package model compiles one or more OpenAPI v3 documents into a single
// deduplicated module of type definitions, operations and routes that a
// renderer turns into actix-web server source.
package model

import "fmt"

// InlineKind enumerates the shapes an InlineType can take.
type InlineKind string

const (
	KindString    InlineKind = "string"
	KindInteger   InlineKind = "integer"
	KindFloat     InlineKind = "float"
	KindBoolean   InlineKind = "boolean"
	KindAny       InlineKind = "any"
	KindArray     InlineKind = "array"
	KindOption    InlineKind = "option"
	KindReference InlineKind = "reference"
	KindResult    InlineKind = "result"
	KindJson      InlineKind = "json"
	KindPath      InlineKind = "path"
	KindQuery     InlineKind = "query"
	KindDetailed  InlineKind = "detailed"
)

// InlineType is a non-owning reference tree over definitions: a scalar,
// a modifier wrapping another inline type, or a reference to a named
// definition held in the store. Definitions are referenced by name only,
// so renames during dedup are transparent.
type InlineType struct {
	Kind  InlineKind
	Name  string      // Reference target
	Inner *InlineType // Array/Option/Json/Path/Query/Detailed element
	Ok    *InlineType // Result success
	Err   *InlineType // Result error
}

func String() *InlineType  { return &InlineType{Kind: KindString} }
func Integer() *InlineType { return &InlineType{Kind: KindInteger} }
func Float() *InlineType   { return &InlineType{Kind: KindFloat} }
func Boolean() *InlineType { return &InlineType{Kind: KindBoolean} }
func AnyType() *InlineType { return &InlineType{Kind: KindAny} }

func Array(inner *InlineType) *InlineType {
	return &InlineType{Kind: KindArray, Inner: inner}
}

func Option(inner *InlineType) *InlineType {
	return &InlineType{Kind: KindOption, Inner: inner}
}

func Reference(name string) *InlineType {
	return &InlineType{Kind: KindReference, Name: name}
}

func ResultOf(ok, err *InlineType) *InlineType {
	return &InlineType{Kind: KindResult, Ok: ok, Err: err}
}

func Json(inner *InlineType) *InlineType {
	return &InlineType{Kind: KindJson, Inner: inner}
}

func PathOf(inner *InlineType) *InlineType {
	return &InlineType{Kind: KindPath, Inner: inner}
}

func QueryOf(inner *InlineType) *InlineType {
	return &InlineType{Kind: KindQuery, Inner: inner}
}

func Detailed(inner *InlineType) *InlineType {
	return &InlineType{Kind: KindDetailed, Inner: inner}
}

// String renders the type as it appears in generated source.
func (t *InlineType) String() string {
	switch t.Kind {
	case KindString:
		return "String"
	case KindInteger:
		return "i64"
	case KindFloat:
		return "f64"
	case KindBoolean:
		return "bool"
	case KindAny:
		return "serde_json::Value"
	case KindArray:
		return fmt.Sprintf("Vec<%s>", t.Inner)
	case KindOption:
		return fmt.Sprintf("Option<%s>", t.Inner)
	case KindReference:
		return t.Name
	case KindResult:
		return fmt.Sprintf("Result<%s, %s>", t.Ok, t.Err)
	case KindJson:
		return fmt.Sprintf("web::Json<%s>", t.Inner)
	case KindPath:
		return fmt.Sprintf("web::Path<%s>", t.Inner)
	case KindQuery:
		return fmt.Sprintf("web::Query<%s>", t.Inner)
	case KindDetailed:
		return fmt.Sprintf("Detailed<%s>", t.Inner)
	default:
		return string(t.Kind)
	}
}

// MarshalYAML serializes an inline type as its rendered form; the model
// consumer only ever needs the final type text.
func (t *InlineType) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

// DefinitionData is one of the definition payload variants below.
type DefinitionData interface {
	// defKind names the variant in serialized output.
	defKind() string
	// transparent definitions take the "_v<version>" collision suffix
	// instead of "V<version>"; the distinction shows up in generated
	// identifier style (functions and routes vs. types).
	transparent() bool
}

// Definition is a named, immutable unit of generated type information.
// Two definitions with identical data are the same definition regardless
// of name.
type Definition struct {
	Name string
	Data DefinitionData
}

// Property is a single struct field.
type Property struct {
	Name    string      `yaml:"name"`
	Rename  string      `yaml:"rename,omitempty"` // wire name when it differs from Name
	Doc     string      `yaml:"doc,omitempty"`
	Default string      `yaml:"default,omitempty"` // name of a DefaultProvider definition
	Type    *InlineType `yaml:"type"`
}

// Struct is an ordered list of properties.
type Struct struct {
	Doc        string     `yaml:"doc,omitempty"`
	Properties []Property `yaml:"properties"`
}

func (*Struct) defKind() string   { return "struct" }
func (*Struct) transparent() bool { return false }

// EnumVariant is one alternative of an Enum, optionally carrying a
// payload type (tagged unions).
type EnumVariant struct {
	Name   string      `yaml:"name"`
	Rename string      `yaml:"rename,omitempty"`
	Data   *InlineType `yaml:"data,omitempty"`
}

// Enum is an ordered list of variants. Discriminator is set for tagged
// unions produced from discriminated oneOf schemas.
type Enum struct {
	Doc           string        `yaml:"doc,omitempty"`
	Discriminator string        `yaml:"discriminator,omitempty"`
	Variants      []EnumVariant `yaml:"variants"`
}

func (*Enum) defKind() string   { return "enum" }
func (*Enum) transparent() bool { return false }

// ErrVariant is one error alternative: an identifier, the human detail
// string and the HTTP status code symbol it maps to.
type ErrVariant struct {
	Name   string `yaml:"name"`
	Detail string `yaml:"detail"`
	Code   string `yaml:"code"`
}

// ApiErr merges every non-2xx response of an operation into one error
// definition.
type ApiErr struct {
	Doc      string       `yaml:"doc,omitempty"`
	Variants []ErrVariant `yaml:"variants"`
}

func (*ApiErr) defKind() string   { return "apierr" }
func (*ApiErr) transparent() bool { return false }

// DefaultProvider pairs a type with the literal expression producing its
// default value.
type DefaultProvider struct {
	Type  *InlineType `yaml:"type"`
	Value string      `yaml:"value"`
}

func (*DefaultProvider) defKind() string   { return "default" }
func (*DefaultProvider) transparent() bool { return true }

// StaticStr embeds a file's contents at the given path into the
// generated source.
type StaticStr struct {
	Path string `yaml:"path"`
}

func (*StaticStr) defKind() string   { return "staticstr" }
func (*StaticStr) transparent() bool { return true }

// StaticStringPath re-exposes a prior StaticStr definition as a
// plain-text endpoint.
type StaticStringPath struct {
	Data string `yaml:"data"`
}

func (*StaticStringPath) defKind() string   { return "staticstring" }
func (*StaticStringPath) transparent() bool { return true }

// StaticHtmlPath re-exposes a prior StaticStr definition as an HTML
// endpoint.
type StaticHtmlPath struct {
	Data string `yaml:"data"`
}

func (*StaticHtmlPath) defKind() string   { return "statichtml" }
func (*StaticHtmlPath) transparent() bool { return true }

// Redirect is a temporary redirect to the target location.
type Redirect struct {
	Target string `yaml:"target"`
}

func (*Redirect) defKind() string   { return "redirect" }
func (*Redirect) transparent() bool { return true }

// Operation is a compiled route handler signature. Operations are
// compared structurally for cross-version dedup, independent of their
// registered name.
type Operation struct {
	Doc        string      `yaml:"doc,omitempty"`
	ParamPath  *InlineType `yaml:"paramPath,omitempty"`
	ParamQuery *InlineType `yaml:"paramQuery,omitempty"`
	ParamBody  *InlineType `yaml:"paramBody,omitempty"`
	Response   *InlineType `yaml:"response"`
}

// OperationPath binds a registered operation to a concrete route.
// Multiple paths may reference the same operation.
type OperationPath struct {
	Operation string `yaml:"operation"`
	Method    string `yaml:"method"`
	Path      string `yaml:"path"`
}

// StaticService binds a static content or redirect definition to a
// concrete route.
type StaticService struct {
	Method string `yaml:"method"`
	Path   string `yaml:"path"`
	Data   string `yaml:"data"` // definition name
}
