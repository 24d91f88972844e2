// Package openapictx resolves references inside a single OpenAPI v3
// document and classifies operation parameters. It is a thin layer over
// the kin-openapi typed tree: exactly one level of $ref indirection is
// honored, so reference cycles cannot occur by construction.
package openapictx

import (
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Ctx gives access to the document's components container for
// dereferencing. One Ctx serves exactly one document.
type Ctx struct {
	components *openapi3.Components
}

// New creates a resolution context for doc.
func New(doc *openapi3.T) *Ctx {
	return &Ctx{components: doc.Components}
}

// splitRef validates the "#/components/<namespace>/<name>" shape and the
// expected namespace, returning the referenced name.
func (c *Ctx) splitRef(ref, wantNamespace string) (string, error) {
	parts := strings.Split(ref, "/")
	if len(parts) != 4 {
		return "", fmt.Errorf("invalid reference %q", ref)
	}
	if parts[0] != "#" {
		return "", fmt.Errorf("reference %q must start with '#/'", ref)
	}
	if parts[1] != "components" {
		return "", fmt.Errorf("reference %q must start with '#/components/'", ref)
	}
	if parts[2] != wantNamespace {
		return "", fmt.Errorf("expected #/components/%s got #/components/%s", wantNamespace, parts[2])
	}
	if c.components == nil {
		return "", fmt.Errorf("reference %q found, but components are not specified", ref)
	}
	return parts[3], nil
}

// Schema dereferences a schema reference. The target of a reference must
// not itself be a reference.
func (c *Ctx) Schema(ref *openapi3.SchemaRef) (*openapi3.Schema, error) {
	if ref == nil {
		return nil, fmt.Errorf("schema is missing")
	}
	if ref.Ref == "" {
		if ref.Value == nil {
			return nil, fmt.Errorf("schema has no value")
		}
		return ref.Value, nil
	}
	name, err := c.splitRef(ref.Ref, "schemas")
	if err != nil {
		return nil, err
	}
	target, ok := c.components.Schemas[name]
	if !ok {
		return nil, fmt.Errorf("reference %q not found", ref.Ref)
	}
	if target.Ref != "" {
		return nil, fmt.Errorf("reference to a reference is not supported: %q", ref.Ref)
	}
	if target.Value == nil {
		return nil, fmt.Errorf("reference %q resolves to an empty schema", ref.Ref)
	}
	return target.Value, nil
}

// Parameter dereferences a parameter reference.
func (c *Ctx) Parameter(ref *openapi3.ParameterRef) (*openapi3.Parameter, error) {
	if ref == nil {
		return nil, fmt.Errorf("parameter is missing")
	}
	if ref.Ref == "" {
		if ref.Value == nil {
			return nil, fmt.Errorf("parameter has no value")
		}
		return ref.Value, nil
	}
	name, err := c.splitRef(ref.Ref, "parameters")
	if err != nil {
		return nil, err
	}
	target, ok := c.components.Parameters[name]
	if !ok {
		return nil, fmt.Errorf("reference %q not found", ref.Ref)
	}
	if target.Ref != "" {
		return nil, fmt.Errorf("reference to a reference is not supported: %q", ref.Ref)
	}
	if target.Value == nil {
		return nil, fmt.Errorf("reference %q resolves to an empty parameter", ref.Ref)
	}
	return target.Value, nil
}

// Response dereferences a response reference.
func (c *Ctx) Response(ref *openapi3.ResponseRef) (*openapi3.Response, error) {
	if ref == nil {
		return nil, fmt.Errorf("response is missing")
	}
	if ref.Ref == "" {
		if ref.Value == nil {
			return nil, fmt.Errorf("response has no value")
		}
		return ref.Value, nil
	}
	name, err := c.splitRef(ref.Ref, "responses")
	if err != nil {
		return nil, err
	}
	target, ok := c.components.Responses[name]
	if !ok {
		return nil, fmt.Errorf("reference %q not found", ref.Ref)
	}
	if target.Ref != "" {
		return nil, fmt.Errorf("reference to a reference is not supported: %q", ref.Ref)
	}
	if target.Value == nil {
		return nil, fmt.Errorf("reference %q resolves to an empty response", ref.Ref)
	}
	return target.Value, nil
}

// RequestBody dereferences a request body reference.
func (c *Ctx) RequestBody(ref *openapi3.RequestBodyRef) (*openapi3.RequestBody, error) {
	if ref == nil {
		return nil, fmt.Errorf("request body is missing")
	}
	if ref.Ref == "" {
		if ref.Value == nil {
			return nil, fmt.Errorf("request body has no value")
		}
		return ref.Value, nil
	}
	name, err := c.splitRef(ref.Ref, "requestBodies")
	if err != nil {
		return nil, err
	}
	target, ok := c.components.RequestBodies[name]
	if !ok {
		return nil, fmt.Errorf("reference %q not found", ref.Ref)
	}
	if target.Ref != "" {
		return nil, fmt.Errorf("reference to a reference is not supported: %q", ref.Ref)
	}
	if target.Value == nil {
		return nil, fmt.Errorf("reference %q resolves to an empty request body", ref.Ref)
	}
	return target.Value, nil
}

// PathItem rejects path item references; they are not supported at all.
func (c *Ctx) PathItem(item *openapi3.PathItem) (*openapi3.PathItem, error) {
	if item == nil {
		return nil, fmt.Errorf("path item is missing")
	}
	if item.Ref != "" {
		return nil, fmt.Errorf("referencing path items is not supported: %q", item.Ref)
	}
	return item, nil
}
