package model

import (
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/artefom/apigen/internal/openapictx"
)

// inliner recursively turns schema, parameter, request body and response
// nodes into inline types, minting definitions into the store as it
// descends. One inliner serves one document.
type inliner struct {
	ctx     *openapictx.Ctx
	store   *Store
	version int
}

// schemaRef dereferences and inlines a schema node under the proposed
// name.
func (in *inliner) schemaRef(ref *openapi3.SchemaRef, name string) (*InlineType, error) {
	schema, err := in.ctx.Schema(ref)
	if err != nil {
		return nil, inContext(err, ReferenceError, "")
	}
	return in.schema(schema, name)
}

func (in *inliner) schema(schema *openapi3.Schema, name string) (*InlineType, error) {
	// A title pins a stable name independent of JSON nesting.
	if schema.Title != "" {
		name = RustIdentifier(schema.Title, CaseUpperCamel)
	}

	var inline *InlineType
	var err error
	switch schema.Type {
	case "string":
		if len(schema.Enum) > 0 {
			inline, err = in.enum(schema, name)
		} else {
			inline = String()
		}
	case "integer":
		inline = Integer()
	case "number":
		inline = Float()
	case "boolean":
		inline = Boolean()
	case "array":
		inline, err = in.array(schema, name)
	case "object":
		inline, err = in.object(schema, name)
	case "":
		switch {
		case len(schema.OneOf) > 0:
			inline, err = in.oneOf(schema, name)
		case len(schema.AnyOf) > 0:
			err = newError(UnsupportedError, "anyOf schemas are not supported")
		case len(schema.AllOf) > 0:
			err = newError(UnsupportedError, "allOf schemas are not supported")
		case schema.Not != nil:
			err = newError(UnsupportedError, "not schemas are not supported")
		default:
			err = newError(UnsupportedError, "schemas without a type are not supported")
		}
	default:
		err = newError(UnsupportedError, fmt.Sprintf("schema type %q is not supported", schema.Type))
	}
	if err != nil {
		return nil, err
	}

	if schema.Nullable {
		inline = Option(inline)
	}
	return inline, nil
}

// enum lowers a string enumeration into an Enum definition. The display
// identifier is derived from the raw value; the raw value survives as
// the wire rename when it differs.
func (in *inliner) enum(schema *openapi3.Schema, name string) (*InlineType, error) {
	variants := make([]EnumVariant, 0, len(schema.Enum))
	seen := make(map[string]struct{}, len(schema.Enum))
	for _, raw := range schema.Enum {
		value, ok := raw.(string)
		if !ok {
			return nil, newError(UnsupportedError, fmt.Sprintf("enumeration value %v is not a string", raw))
		}
		// An empty value would sanitize to "_" with no way to carry the
		// original wire form through the rename.
		if value == "" {
			return nil, newError(UnsupportedError, "empty enumeration values are not supported")
		}
		ident := RustIdentifier(value, CaseUpperCamel)
		if _, dup := seen[ident]; dup {
			return nil, newError(NamingError, fmt.Sprintf("enumeration values collide on identifier %q", ident))
		}
		seen[ident] = struct{}{}
		variant := EnumVariant{Name: ident}
		if value != ident {
			variant.Rename = value
		}
		variants = append(variants, variant)
	}

	assigned, err := in.store.Push(name, in.version, &Enum{
		Doc:      schema.Description,
		Variants: variants,
	})
	if err != nil {
		return nil, err
	}
	return Reference(assigned), nil
}

func (in *inliner) array(schema *openapi3.Schema, name string) (*InlineType, error) {
	if schema.Items == nil {
		return Array(AnyType()), nil
	}
	item, err := in.schemaRef(schema.Items, name+"Item")
	if err != nil {
		return nil, err
	}
	return Array(item), nil
}

// object lowers an object schema into a Struct definition, recursing
// into each property under a name derived from the parent name and the
// property key.
func (in *inliner) object(schema *openapi3.Schema, name string) (*InlineType, error) {
	required := make(map[string]struct{}, len(schema.Required))
	for _, key := range schema.Required {
		required[key] = struct{}{}
	}

	keys := make([]string, 0, len(schema.Properties))
	for key := range schema.Properties {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	properties := make([]Property, 0, len(keys))
	for _, key := range keys {
		property, err := in.property(schema.Properties[key], key, name, required)
		if err != nil {
			return nil, inContext(err, UnsupportedError, fmt.Sprintf("property %q", key))
		}
		properties = append(properties, property)
	}

	assigned, err := in.store.Push(name, in.version, &Struct{
		Doc:        schema.Description,
		Properties: properties,
	})
	if err != nil {
		return nil, err
	}
	return Reference(assigned), nil
}

func (in *inliner) property(ref *openapi3.SchemaRef, key, parent string, required map[string]struct{}) (Property, error) {
	schema, err := in.ctx.Schema(ref)
	if err != nil {
		return Property{}, inContext(err, ReferenceError, "")
	}

	_, isRequired := required[key]
	hasDefault := schema.Default != nil
	if err := ValidateOptionality(isRequired, hasDefault, schema.Nullable); err != nil {
		return Property{}, err
	}

	inline, err := in.schema(schema, childName(parent, key))
	if err != nil {
		return Property{}, err
	}

	property := Property{
		Name: RustIdentifier(key, CaseSnake),
		Doc:  schema.Description,
		Type: inline,
	}
	if property.Name != key {
		property.Rename = key
	}
	if hasDefault {
		provider, err := defaultProvider(in.store, in.version, inline, schema.Default)
		if err != nil {
			return Property{}, err
		}
		property.Default = provider
	}
	return property, nil
}

// oneOf lowers a discriminated union into a tagged Enum: the
// discriminator property of each branch must be a single-value string
// enumeration; its value names the variant and the property is stripped
// from the branch before the remainder is inlined as the payload.
func (in *inliner) oneOf(schema *openapi3.Schema, name string) (*InlineType, error) {
	disc := schema.Discriminator
	if disc == nil || disc.PropertyName == "" {
		return nil, newError(UnsupportedError, "oneOf without a discriminator is not supported")
	}
	if len(disc.Mapping) > 0 {
		return nil, newError(UnsupportedError, "discriminator mapping is not supported")
	}
	if len(disc.Extensions) > 0 {
		return nil, newError(UnsupportedError, "discriminator extensions are not supported")
	}

	variants := make([]EnumVariant, 0, len(schema.OneOf))
	for _, branchRef := range schema.OneOf {
		branch, err := in.ctx.Schema(branchRef)
		if err != nil {
			return nil, inContext(err, ReferenceError, "")
		}

		tag, err := in.discriminatorValue(branch, disc.PropertyName)
		if err != nil {
			return nil, err
		}

		ident := RustIdentifier(tag, CaseUpperCamel)
		payload, err := in.schema(stripProperty(branch, disc.PropertyName), name+ident)
		if err != nil {
			return nil, inContext(err, UnsupportedError, fmt.Sprintf("oneOf branch %q", tag))
		}

		variant := EnumVariant{Name: ident, Data: payload}
		if tag != ident {
			variant.Rename = tag
		}
		variants = append(variants, variant)
	}

	assigned, err := in.store.Push(name, in.version, &Enum{
		Doc:           schema.Description,
		Discriminator: disc.PropertyName,
		Variants:      variants,
	})
	if err != nil {
		return nil, err
	}
	return Reference(assigned), nil
}

// discriminatorValue extracts the single enumeration value of a branch's
// discriminator property.
func (in *inliner) discriminatorValue(branch *openapi3.Schema, property string) (string, error) {
	ref, ok := branch.Properties[property]
	if !ok {
		return "", newError(UnsupportedError, fmt.Sprintf("oneOf branch has no discriminator property %q", property))
	}
	tagSchema, err := in.ctx.Schema(ref)
	if err != nil {
		return "", inContext(err, ReferenceError, "")
	}
	if tagSchema.Type != "string" || len(tagSchema.Enum) != 1 {
		return "", newError(UnsupportedError, fmt.Sprintf("discriminator property %q must be a single-value string enumeration", property))
	}
	value, ok := tagSchema.Enum[0].(string)
	if !ok {
		return "", newError(UnsupportedError, fmt.Sprintf("discriminator value for property %q is not a string", property))
	}
	if value == "" {
		return "", newError(UnsupportedError, fmt.Sprintf("discriminator value for property %q must not be empty", property))
	}
	return value, nil
}

// stripProperty returns a shallow copy of schema without the named
// property.
func stripProperty(schema *openapi3.Schema, property string) *openapi3.Schema {
	clone := *schema
	clone.Properties = make(openapi3.Schemas, len(schema.Properties))
	for key, value := range schema.Properties {
		if key != property {
			clone.Properties[key] = value
		}
	}
	clone.Required = nil
	for _, key := range schema.Required {
		if key != property {
			clone.Required = append(clone.Required, key)
		}
	}
	return &clone
}

// parameters builds the synthetic struct holding one positional bucket
// of an operation's parameters (path or query), returning nil when the
// bucket is empty.
func (in *inliner) parameters(params []*openapi3.Parameter, name string) (*InlineType, error) {
	if len(params) == 0 {
		return nil, nil
	}

	seen := make(map[string]struct{}, len(params))
	properties := make([]Property, 0, len(params))
	for _, param := range params {
		if _, dup := seen[param.Name]; dup {
			return nil, newError(NamingError, fmt.Sprintf("duplicate parameter name %q", param.Name))
		}
		seen[param.Name] = struct{}{}

		property, err := in.parameter(param, name)
		if err != nil {
			return nil, inContext(err, UnsupportedError, fmt.Sprintf("parameter %q", param.Name))
		}
		properties = append(properties, property)
	}

	assigned, err := in.store.Push(name, in.version, &Struct{Properties: properties})
	if err != nil {
		return nil, err
	}
	return Reference(assigned), nil
}

func (in *inliner) parameter(param *openapi3.Parameter, parent string) (Property, error) {
	schema, err := in.ctx.ParameterSchema(param)
	if err != nil {
		return Property{}, err
	}

	hasDefault := schema.Default != nil
	if err := ValidateOptionality(param.Required, hasDefault, schema.Nullable); err != nil {
		return Property{}, err
	}

	inline, err := in.schema(schema, childName(parent, param.Name))
	if err != nil {
		return Property{}, err
	}

	doc := param.Description
	if doc == "" {
		doc = schema.Description
	}
	property := Property{
		Name: RustIdentifier(param.Name, CaseSnake),
		Doc:  doc,
		Type: inline,
	}
	if property.Name != param.Name {
		property.Rename = param.Name
	}
	if hasDefault {
		provider, err := defaultProvider(in.store, in.version, inline, schema.Default)
		if err != nil {
			return Property{}, err
		}
		property.Default = provider
	}
	return property, nil
}

// requestBody inlines an operation's request body; a non-required body
// wraps the JSON extractor in Option.
func (in *inliner) requestBody(ref *openapi3.RequestBodyRef, name string) (*InlineType, error) {
	if ref == nil {
		return nil, nil
	}
	body, err := in.ctx.RequestBody(ref)
	if err != nil {
		return nil, inContext(err, ReferenceError, "")
	}
	schema, err := in.ctx.RequestBodySchema(body)
	if err != nil {
		return nil, inContext(err, UnsupportedError, "request body")
	}
	inline, err := in.schema(schema, name)
	if err != nil {
		return nil, inContext(err, UnsupportedError, "request body")
	}
	if !body.Required {
		return Option(Json(inline)), nil
	}
	return Json(inline), nil
}

// responses lowers an operation's responses map: exactly one success
// response with literal code 200 is permitted; every other status
// becomes a variant of one merged ApiErr definition.
func (in *inliner) responses(responses openapi3.Responses, opName string) (*InlineType, error) {
	codes := make([]string, 0, len(responses))
	for code := range responses {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var successes []string
	var errorCodes []string
	for _, code := range codes {
		if strings.HasPrefix(code, "2") {
			successes = append(successes, code)
		} else {
			errorCodes = append(errorCodes, code)
		}
	}
	if len(successes) != 1 || successes[0] != "200" {
		return nil, newError(UnsupportedError, "only code 200 supported as a success response")
	}

	success, err := in.ctx.Response(responses["200"])
	if err != nil {
		return nil, inContext(err, ReferenceError, "")
	}
	if len(success.Content) == 0 {
		return nil, newError(UnsupportedError, "200 response must declare content")
	}
	schema, err := in.ctx.ContentSchema(success.Content)
	if err != nil {
		return nil, inContext(err, UnsupportedError, "200 response")
	}
	successType, err := in.schema(schema, opName+"Response")
	if err != nil {
		return nil, inContext(err, UnsupportedError, "200 response")
	}

	if len(errorCodes) == 0 {
		return successType, nil
	}

	var variants []ErrVariant
	for _, code := range errorCodes {
		responseVariants, err := in.errorResponse(responses[code], code)
		if err != nil {
			return nil, inContext(err, UnsupportedError, fmt.Sprintf("%s response", code))
		}
		variants = append(variants, responseVariants...)
	}

	errName, err := in.store.Push(opName+"Error", in.version, &ApiErr{Variants: variants})
	if err != nil {
		return nil, err
	}
	return ResultOf(successType, Detailed(Reference(errName))), nil
}

// errorResponse lowers one non-2xx response into error variants. The
// response must be a string schema with a non-empty enumeration; its
// prose description becomes each variant's detail string.
func (in *inliner) errorResponse(ref *openapi3.ResponseRef, code string) ([]ErrVariant, error) {
	response, err := in.ctx.Response(ref)
	if err != nil {
		return nil, inContext(err, ReferenceError, "")
	}
	symbol, err := statusSymbol(code)
	if err != nil {
		return nil, err
	}
	schema, err := in.ctx.ContentSchema(response.Content)
	if err != nil {
		return nil, err
	}
	if schema.Type != "string" || len(schema.Enum) == 0 {
		return nil, newError(UnsupportedError, "error responses must be string schemas with a non-empty enumeration")
	}

	detail := ""
	if response.Description != nil {
		detail = *response.Description
	}

	variants := make([]ErrVariant, 0, len(schema.Enum))
	for _, raw := range schema.Enum {
		value, ok := raw.(string)
		if !ok {
			return nil, newError(UnsupportedError, fmt.Sprintf("enumeration value %v is not a string", raw))
		}
		variants = append(variants, ErrVariant{
			Name:   RustIdentifier(value, CaseUpperCamel),
			Detail: detail,
			Code:   symbol,
		})
	}
	return variants, nil
}

// statusSymbol maps a literal HTTP status code to the StatusCode
// constant the generated error type answers with.
func statusSymbol(code string) (string, error) {
	symbols := map[string]string{
		"400": "BAD_REQUEST",
		"401": "UNAUTHORIZED",
		"402": "PAYMENT_REQUIRED",
		"403": "FORBIDDEN",
		"404": "NOT_FOUND",
		"405": "METHOD_NOT_ALLOWED",
		"406": "NOT_ACCEPTABLE",
		"408": "REQUEST_TIMEOUT",
		"409": "CONFLICT",
		"410": "GONE",
		"412": "PRECONDITION_FAILED",
		"413": "PAYLOAD_TOO_LARGE",
		"415": "UNSUPPORTED_MEDIA_TYPE",
		"422": "UNPROCESSABLE_ENTITY",
		"429": "TOO_MANY_REQUESTS",
		"500": "INTERNAL_SERVER_ERROR",
		"501": "NOT_IMPLEMENTED",
		"502": "BAD_GATEWAY",
		"503": "SERVICE_UNAVAILABLE",
		"504": "GATEWAY_TIMEOUT",
	}
	symbol, ok := symbols[code]
	if !ok {
		return "", newError(UnsupportedError, fmt.Sprintf("status code %q is not supported", code))
	}
	return symbol, nil
}
