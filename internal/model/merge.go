package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/artefom/apigen/internal/openapictx"
)

// Document pairs a parsed OpenAPI document with the relative path its
// rendered openapi.yaml will be served from. The merger performs no file
// I/O; loading happens at the CLI boundary.
type Document struct {
	Spec     *openapi3.T
	SpecPath string
}

// methodOrder fixes the iteration order over a path item's operations.
var methodOrder = []string{"get", "post", "put", "delete", "patch"}

func pathItemOperations(item *openapi3.PathItem) map[string]*openapi3.Operation {
	return map[string]*openapi3.Operation{
		"get":    item.Get,
		"post":   item.Post,
		"put":    item.Put,
		"delete": item.Delete,
		"patch":  item.Patch,
	}
}

// Merge compiles the document set into one module. Documents are
// processed strictly in order: later documents' dedup and rename
// decisions depend on the accumulated store. Any error aborts the whole
// compilation; a partial model is never usable.
func Merge(docs []Document, docsPath string) (*Module, error) {
	store := NewStore()
	module := &Module{}

	routes := make(map[string]string) // "method path" -> operation name
	versions := make(map[int]struct{}, len(docs))
	maxVersion := 0

	for _, doc := range docs {
		version, err := majorVersion(doc.Spec)
		if err != nil {
			return nil, inContext(err, VersioningError, fmt.Sprintf("document %q", doc.SpecPath))
		}
		if _, dup := versions[version]; dup {
			return nil, newError(VersioningError, fmt.Sprintf("duplicate major version %d in document %q", version, doc.SpecPath))
		}
		versions[version] = struct{}{}
		if version > maxVersion {
			maxVersion = version
		}

		if err := mergeDocument(store, module, routes, doc, version); err != nil {
			return nil, inContext(err, UnsupportedError, fmt.Sprintf("document %q", doc.SpecPath))
		}
		if err := staticServices(store, module, doc, version, docsPath); err != nil {
			return nil, err
		}
	}

	if len(docs) == 0 {
		return nil, newError(VersioningError, "no documents given; cannot select a latest version")
	}
	if err := rootRedirect(store, module, maxVersion); err != nil {
		return nil, err
	}

	module.Definitions = store.Definitions()
	module.Operations = store.Operations()
	sort.Slice(module.Paths, func(i, j int) bool {
		a, b := module.Paths[i], module.Paths[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Method < b.Method
	})
	sort.Slice(module.StaticServices, func(i, j int) bool {
		a, b := module.StaticServices[i], module.StaticServices[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Method < b.Method
	})

	if err := module.checkReferences(); err != nil {
		return nil, err
	}
	return module, nil
}

// majorVersion parses the leading integer segment of info.version.
func majorVersion(spec *openapi3.T) (int, error) {
	if spec.Info == nil || spec.Info.Version == "" {
		return 0, newError(VersioningError, "document has no info.version")
	}
	head := strings.Split(spec.Info.Version, ".")[0]
	version, err := strconv.Atoi(head)
	if err != nil || version < 0 {
		return 0, newError(VersioningError, fmt.Sprintf("cannot parse major version from %q", spec.Info.Version))
	}
	return version, nil
}

func mergeDocument(store *Store, module *Module, routes map[string]string, doc Document, version int) error {
	ctx := openapictx.New(doc.Spec)
	in := &inliner{ctx: ctx, store: store, version: version}

	paths := make([]string, 0, len(doc.Spec.Paths))
	for path := range doc.Spec.Paths {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		item, err := ctx.PathItem(doc.Spec.Paths[path])
		if err != nil {
			return inContext(err, ReferenceError, path)
		}
		operations := pathItemOperations(item)
		for _, method := range methodOrder {
			operation := operations[method]
			if operation == nil {
				continue
			}
			name, err := buildOperation(in, operation, item.Parameters)
			if err != nil {
				return inContext(err, UnsupportedError, fmt.Sprintf("at %s %s", method, path))
			}
			if err := registerRoutes(module, routes, name, method, path, version); err != nil {
				return err
			}
		}
	}
	return nil
}

// buildOperation compiles a single (method, operation) pair into the
// store and returns the assigned operation name.
func buildOperation(in *inliner, operation *openapi3.Operation, globalParams openapi3.Parameters) (string, error) {
	if operation.OperationID == "" {
		return "", newError(NamingError, "operation must have an operationId")
	}
	nameUpper := RustIdentifier(operation.OperationID, CaseUpperCamel)

	split, err := in.ctx.SplitParameters(globalParams, operation.Parameters)
	if err != nil {
		return "", inContext(err, ReferenceError, "")
	}
	if len(split.Header) > 0 {
		return "", newError(UnsupportedError, "header parameters are not supported")
	}
	if len(split.Cookie) > 0 {
		return "", newError(UnsupportedError, "cookie parameters are not supported")
	}

	paramPath, err := in.parameters(split.Path, nameUpper+"Path")
	if err != nil {
		return "", err
	}
	if paramPath != nil {
		paramPath = PathOf(paramPath)
	}
	paramQuery, err := in.parameters(split.Query, nameUpper+"Query")
	if err != nil {
		return "", err
	}
	if paramQuery != nil {
		paramQuery = QueryOf(paramQuery)
	}
	paramBody, err := in.requestBody(operation.RequestBody, nameUpper+"Body")
	if err != nil {
		return "", err
	}
	response, err := in.responses(operation.Responses, nameUpper)
	if err != nil {
		return "", err
	}

	doc := operation.Summary
	if doc == "" {
		doc = operation.Description
	}

	return in.store.PushOperation(operation.OperationID, in.version, Operation{
		Doc:        doc,
		ParamPath:  paramPath,
		ParamQuery: paramQuery,
		ParamBody:  paramBody,
		Response:   response,
	})
}

// registerRoutes records the route table entries for an operation:
// version 1 operations answer at both the bare path and the /v1 prefix
// for backward compatibility, later versions only under their prefix.
// Re-registering an identical route is a no-op; a different operation
// under a taken (method, path) tuple is a hard error.
func registerRoutes(module *Module, routes map[string]string, operation, method, path string, version int) error {
	concrete := []string{fmt.Sprintf("/v%d%s", version, path)}
	if version == 1 {
		concrete = append(concrete, path)
	}
	for _, routePath := range concrete {
		key := method + " " + routePath
		if registered, taken := routes[key]; taken {
			if registered == operation {
				continue
			}
			return newError(NamingError, fmt.Sprintf("duplicate route %s %s registered for %q and %q", method, routePath, registered, operation))
		}
		routes[key] = operation
		module.Paths = append(module.Paths, OperationPath{
			Operation: operation,
			Method:    method,
			Path:      routePath,
		})
	}
	return nil
}

// staticServices registers the per-version documentation surface: the
// served openapi.yaml, the docs page under the bare (version 1 only) and
// versioned prefixes, and a temporary redirect from the versioned root
// to that version's docs.
func staticServices(store *Store, module *Module, doc Document, version int, docsPath string) error {
	specName, err := store.Push("ApiSpec", version, &StaticStr{Path: doc.SpecPath})
	if err != nil {
		return err
	}
	serveSpec, err := store.Push("ServeApiSpec", version, &StaticStringPath{Data: specName})
	if err != nil {
		return err
	}
	docsName, err := store.Push("Docs", version, &StaticStr{Path: docsPath})
	if err != nil {
		return err
	}
	serveDocs, err := store.Push("ServeDocs", version, &StaticHtmlPath{Data: docsName})
	if err != nil {
		return err
	}

	prefixes := []string{fmt.Sprintf("/v%d", version)}
	if version == 1 {
		prefixes = append(prefixes, "")
	}
	for _, prefix := range prefixes {
		module.StaticServices = append(module.StaticServices,
			StaticService{Method: "get", Path: prefix + "/openapi.yaml", Data: serveSpec},
			StaticService{Method: "get", Path: prefix + "/docs", Data: serveDocs},
		)
	}

	redirect, err := store.Push("RedirectDocs", version, &Redirect{Target: fmt.Sprintf("v%d/docs", version)})
	if err != nil {
		return err
	}
	module.StaticServices = append(module.StaticServices, StaticService{
		Method: "get",
		Path:   fmt.Sprintf("/v%d", version),
		Data:   redirect,
	})
	return nil
}

// rootRedirect sends the site root to the highest version's docs.
func rootRedirect(store *Store, module *Module, maxVersion int) error {
	target := "docs"
	if maxVersion != 1 {
		target = fmt.Sprintf("v%d/docs", maxVersion)
	}
	name, err := store.Push("RedirectRoot", maxVersion, &Redirect{Target: target})
	if err != nil {
		return err
	}
	module.StaticServices = append(module.StaticServices, StaticService{
		Method: "get",
		Path:   "/",
		Data:   name,
	})
	return nil
}
