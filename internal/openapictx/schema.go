package openapictx

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

const jsonContentType = "application/json"

// ContentSchema extracts the single supported schema from a content map.
// Exactly one content type is allowed and it must be application/json.
func (c *Ctx) ContentSchema(content openapi3.Content) (*openapi3.Schema, error) {
	if len(content) > 1 {
		return nil, fmt.Errorf("multiple content types are not supported")
	}
	media, ok := content[jsonContentType]
	if !ok {
		return nil, fmt.Errorf("only %s content type is supported", jsonContentType)
	}
	if media.Schema == nil {
		return nil, fmt.Errorf("content must have a schema specified")
	}
	return c.Schema(media.Schema)
}

// ParameterSchema extracts a parameter's schema, whether given directly
// or through a single-entry content map.
func (c *Ctx) ParameterSchema(param *openapi3.Parameter) (*openapi3.Schema, error) {
	if param.Schema != nil {
		return c.Schema(param.Schema)
	}
	if param.Content != nil {
		return c.ContentSchema(param.Content)
	}
	return nil, fmt.Errorf("parameter %q has neither schema nor content", param.Name)
}

// RequestBodySchema extracts a request body's schema from its content.
func (c *Ctx) RequestBodySchema(body *openapi3.RequestBody) (*openapi3.Schema, error) {
	return c.ContentSchema(body.Content)
}
