package rustemitter

import (
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/artefom/apigen/internal/model"
)

const renderSpec = `openapi: 3.0.0
info:
  title: Render
  version: "1.0.0"
paths:
  /hello/{user}:
    get:
      operationId: greetUser
      summary: Greet a user
      parameters:
        - name: user
          in: path
          required: true
          schema:
            type: string
      responses:
        "200":
          description: greeting
          content:
            application/json:
              schema:
                type: string
  /items:
    get:
      operationId: listItems
      parameters:
        - name: pageSize
          in: query
          schema:
            type: integer
            default: 10
      responses:
        "200":
          description: items
          content:
            application/json:
              schema:
                type: array
                items:
                  type: string
        "429":
          description: Too many requests
          content:
            application/json:
              schema:
                type: string
                enum: [RateLimited]
`

func compileModule(t *testing.T, spec string) *model.Module {
	t.Helper()
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData([]byte(strings.TrimSpace(spec)))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	mod, err := model.Merge([]model.Document{{Spec: doc, SpecPath: "api_v1.yaml"}}, "docs.html")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	return mod
}

func TestRenderServerSource(t *testing.T) {
	t.Parallel()
	mod := compileModule(t, renderSpec)

	source, err := Render(mod)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	snippets := []string{
		"//! API auto-generated by apigen",

		// default providers
		"fn default_int_10() -> i64 {",

		// structs with wire renames and defaults
		"pub struct GreetUserPath {",
		"    pub user: String,",
		"pub struct ListItemsQuery {",
		`    #[serde(rename = "pageSize", default = "default_int_10")]`,
		"    pub page_size: i64,",

		// merged error enum with Display and status mapping
		"pub enum ListItemsError {",
		"    RateLimited,",
		`            Self::RateLimited => write!(f, "Too many requests"),`,
		"            Self::RateLimited => StatusCode::TOO_MANY_REQUESTS,",

		// embedded static content and redirects
		`static API_SPEC: &str = include_str!("api_v1.yaml");`,
		`static DOCS: &str = include_str!("docs.html");`,
		"async fn serve_api_spec() -> HttpResponse {",
		`.content_type("text/plain; charset=utf-8")`,
		"async fn serve_docs() -> HttpResponse {",
		`.content_type("text/html; charset=utf-8")`,
		`.insert_header(("Location", "v1/docs"))`,
		`.insert_header(("Location", "docs"))`,

		// api trait and handlers
		"pub trait Api: Send + Sync + 'static {",
		"    /// Greet a user",
		"    async fn greet_user(&self, path: web::Path<GreetUserPath>) -> String;",
		"    async fn list_items(&self, query: web::Query<ListItemsQuery>) -> Result<Vec<String>, Detailed<ListItemsError>>;",
		"async fn handle_greet_user<A: Api>(api: web::Data<A>, path: web::Path<GreetUserPath>) -> String {",
		"    api.greet_user(path).await",

		// routing
		"pub fn configure<A: Api>(cfg: &mut web::ServiceConfig) {",
		`    cfg.route("/hello/{user}", web::get().to(handle_greet_user::<A>));`,
		`    cfg.route("/v1/items", web::get().to(handle_list_items::<A>));`,
		`    cfg.route("/docs", web::get().to(serve_docs));`,
		`    cfg.route("/openapi.yaml", web::get().to(serve_api_spec));`,
		`    cfg.route("/v1", web::get().to(redirect_docs));`,
		`    cfg.route("/", web::get().to(redirect_root));`,
	}
	for _, snippet := range snippets {
		if !strings.Contains(source, snippet) {
			t.Errorf("render: missing %q", snippet)
		}
	}
}

func TestRenderStableOutput(t *testing.T) {
	t.Parallel()

	first, err := Render(compileModule(t, renderSpec))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	second, err := Render(compileModule(t, renderSpec))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if first != second {
		t.Fatalf("render differs between identical compilations")
	}
}
