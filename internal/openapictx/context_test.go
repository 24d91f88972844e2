package openapictx

import (
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
)

const resolverSpec = `openapi: 3.0.0
info:
  title: Resolver
  version: "1.0.0"
paths: {}
components:
  schemas:
    Pet:
      type: object
      required: [name]
      properties:
        name:
          type: string
    PetAlias:
      $ref: '#/components/schemas/Pet'
  parameters:
    Limit:
      name: limit
      in: query
      required: true
      schema:
        type: integer
  responses:
    Ok:
      description: ok
      content:
        application/json:
          schema:
            type: string
  requestBodies:
    PetBody:
      required: true
      content:
        application/json:
          schema:
            $ref: '#/components/schemas/Pet'
`

func loadDoc(t *testing.T, spec string) *openapi3.T {
	t.Helper()
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData([]byte(strings.TrimSpace(spec)))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return doc
}

func TestSchemaInline(t *testing.T) {
	t.Parallel()
	ctx := New(loadDoc(t, resolverSpec))

	schema, err := ctx.Schema(&openapi3.SchemaRef{Value: &openapi3.Schema{Type: "string"}})
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	if schema.Type != "string" {
		t.Errorf("schema type: got %q", schema.Type)
	}
}

func TestSchemaReference(t *testing.T) {
	t.Parallel()
	ctx := New(loadDoc(t, resolverSpec))

	schema, err := ctx.Schema(&openapi3.SchemaRef{Ref: "#/components/schemas/Pet"})
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	if schema.Type != "object" {
		t.Errorf("schema type: got %q, want object", schema.Type)
	}
	if _, ok := schema.Properties["name"]; !ok {
		t.Errorf("schema: property name missing")
	}
}

func TestSchemaReferenceErrors(t *testing.T) {
	t.Parallel()
	ctx := New(loadDoc(t, resolverSpec))

	cases := []struct {
		ref     string
		wantMsg string
	}{
		{"#/components/schemas/Missing", "not found"},
		{"#/components/schemas/PetAlias", "reference to a reference"},
		{"#/components/parameters/Limit", "expected #/components/schemas"},
		{"#/definitions/Pet", "must start with '#/components/'"},
		{"components/schemas/Pet", "must start with '#/'"},
		{"#/components/schemas/Pet/name", "invalid reference"},
	}
	for _, tc := range cases {
		_, err := ctx.Schema(&openapi3.SchemaRef{Ref: tc.ref})
		if err == nil {
			t.Errorf("ref %q: expected error", tc.ref)
			continue
		}
		if !strings.Contains(err.Error(), tc.wantMsg) {
			t.Errorf("ref %q: got %q, want substring %q", tc.ref, err, tc.wantMsg)
		}
	}
}

func TestSchemaWithoutComponents(t *testing.T) {
	t.Parallel()
	ctx := New(loadDoc(t, `openapi: 3.0.0
info:
  title: Empty
  version: "1.0.0"
paths: {}
`))

	_, err := ctx.Schema(&openapi3.SchemaRef{Ref: "#/components/schemas/Pet"})
	if err == nil || !strings.Contains(err.Error(), "components are not specified") {
		t.Fatalf("schema: got %v, want missing components error", err)
	}
}

func TestParameterReference(t *testing.T) {
	t.Parallel()
	ctx := New(loadDoc(t, resolverSpec))

	param, err := ctx.Parameter(&openapi3.ParameterRef{Ref: "#/components/parameters/Limit"})
	if err != nil {
		t.Fatalf("parameter: %v", err)
	}
	if param.Name != "limit" || param.In != "query" {
		t.Errorf("parameter: got %q in %q", param.Name, param.In)
	}
}

func TestResponseAndRequestBodyReferences(t *testing.T) {
	t.Parallel()
	ctx := New(loadDoc(t, resolverSpec))

	response, err := ctx.Response(&openapi3.ResponseRef{Ref: "#/components/responses/Ok"})
	if err != nil {
		t.Fatalf("response: %v", err)
	}
	if response.Description == nil || *response.Description != "ok" {
		t.Errorf("response description: got %v", response.Description)
	}

	body, err := ctx.RequestBody(&openapi3.RequestBodyRef{Ref: "#/components/requestBodies/PetBody"})
	if err != nil {
		t.Fatalf("request body: %v", err)
	}
	if !body.Required {
		t.Errorf("request body: expected required")
	}
}

func TestPathItemRefRejected(t *testing.T) {
	t.Parallel()
	ctx := New(loadDoc(t, resolverSpec))

	if _, err := ctx.PathItem(&openapi3.PathItem{Ref: "#/components/pathItems/Pets"}); err == nil {
		t.Fatalf("path item: expected reference rejection")
	}
	item := &openapi3.PathItem{}
	got, err := ctx.PathItem(item)
	if err != nil || got != item {
		t.Fatalf("path item: got %v, %v", got, err)
	}
}

func TestSplitParameters(t *testing.T) {
	t.Parallel()
	ctx := New(loadDoc(t, resolverSpec))

	inline := func(name, in string) *openapi3.ParameterRef {
		return &openapi3.ParameterRef{Value: &openapi3.Parameter{
			Name: name, In: in, Required: true,
			Schema: &openapi3.SchemaRef{Value: &openapi3.Schema{Type: "string"}},
		}}
	}

	global := openapi3.Parameters{inline("user", "path"), inline("trace", "header")}
	local := openapi3.Parameters{
		{Ref: "#/components/parameters/Limit"},
		inline("session", "cookie"),
	}

	split, err := ctx.SplitParameters(global, local)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(split.Path) != 1 || split.Path[0].Name != "user" {
		t.Errorf("path bucket: got %+v", split.Path)
	}
	if len(split.Query) != 1 || split.Query[0].Name != "limit" {
		t.Errorf("query bucket: got %+v", split.Query)
	}
	if len(split.Header) != 1 || split.Header[0].Name != "trace" {
		t.Errorf("header bucket: got %+v", split.Header)
	}
	if len(split.Cookie) != 1 || split.Cookie[0].Name != "session" {
		t.Errorf("cookie bucket: got %+v", split.Cookie)
	}
}

func TestSplitParametersUnknownLocation(t *testing.T) {
	t.Parallel()
	ctx := New(loadDoc(t, resolverSpec))

	bad := openapi3.Parameters{{Value: &openapi3.Parameter{Name: "x", In: "body"}}}
	if _, err := ctx.SplitParameters(nil, bad); err == nil {
		t.Fatalf("split: expected unknown location error")
	}
}
