package rustemitter

import (
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/artefom/apigen/internal/model"
)

// Template-facing shapes. Each mirrors one definition category of the
// module, flattened to the strings the template interpolates.

type rustProp struct {
	Title      string
	Doc        string
	Annotation string
	Type       string
}

type rustStruct struct {
	Doc   string
	Title string
	Props []rustProp
}

type rustEnumVariant struct {
	Title      string
	Annotation string
	Data       string
}

type rustEnum struct {
	Doc      string
	Title    string
	Tag      string
	Variants []rustEnumVariant
}

type rustErrorVariant struct {
	Title   string
	Status  string
	Display string
}

type rustError struct {
	Doc      string
	Title    string
	Variants []rustErrorVariant
}

type rustDefault struct {
	Title string
	Type  string
	Value string
}

type rustMethodArg struct {
	Name string
	Type string
}

type rustMethod struct {
	Name         string
	FnName       string
	Doc          string
	ResponseType string
	Args         []rustMethodArg
}

type methodPath struct {
	FnName string
	Path   string
	Method string
}

type staticInclude struct {
	Const    string
	FilePath string
}

type staticContent struct {
	FnName      string
	Const       string
	ContentType string
}

type staticRedirect struct {
	FnName string
	Target string
}

type staticService struct {
	Method string
	Path   string
	FnName string
}

type templateData struct {
	Structs   []rustStruct
	Enums     []rustEnum
	Errors    []rustError
	Defaults  []rustDefault
	Methods   []rustMethod
	Paths     []methodPath
	Includes  []staticInclude
	Contents  []staticContent
	Redirects []staticRedirect
	Services  []staticService
}

// Render produces the server source for the module.
func Render(mod *model.Module) (string, error) {
	data, err := buildTemplateData(mod)
	if err != nil {
		return "", err
	}
	tmpl, err := template.New("api.rs").Funcs(template.FuncMap{
		"doc": docComment,
	}).Parse(apiTemplate)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}
	var out strings.Builder
	if err := tmpl.Execute(&out, data); err != nil {
		return "", fmt.Errorf("render module: %w", err)
	}
	return out.String(), nil
}

func buildTemplateData(mod *model.Module) (*templateData, error) {
	data := &templateData{}

	includeConsts := make(map[string]string)
	contentFns := make(map[string]string)

	for _, def := range mod.Definitions {
		switch payload := def.Data.(type) {
		case *model.Struct:
			data.Structs = append(data.Structs, convertStruct(def.Name, payload))
		case *model.Enum:
			data.Enums = append(data.Enums, convertEnum(def.Name, payload))
		case *model.ApiErr:
			data.Errors = append(data.Errors, convertError(def.Name, payload))
		case *model.DefaultProvider:
			data.Defaults = append(data.Defaults, rustDefault{
				Title: def.Name,
				Type:  payload.Type.String(),
				Value: payload.Value,
			})
		case *model.StaticStr:
			name := screamingSnake(def.Name)
			includeConsts[def.Name] = name
			data.Includes = append(data.Includes, staticInclude{Const: name, FilePath: payload.Path})
		case *model.StaticStringPath:
			fn := model.RustIdentifier(def.Name, model.CaseSnake)
			contentFns[def.Name] = fn
			data.Contents = append(data.Contents, staticContent{
				FnName:      fn,
				Const:       includeConsts[payload.Data],
				ContentType: "text/plain; charset=utf-8",
			})
		case *model.StaticHtmlPath:
			fn := model.RustIdentifier(def.Name, model.CaseSnake)
			contentFns[def.Name] = fn
			data.Contents = append(data.Contents, staticContent{
				FnName:      fn,
				Const:       includeConsts[payload.Data],
				ContentType: "text/html; charset=utf-8",
			})
		case *model.Redirect:
			fn := model.RustIdentifier(def.Name, model.CaseSnake)
			contentFns[def.Name] = fn
			data.Redirects = append(data.Redirects, staticRedirect{FnName: fn, Target: payload.Target})
		default:
			return nil, fmt.Errorf("unknown definition kind %T", def.Data)
		}
	}

	opFns := make(map[string]string, len(mod.Operations))
	for _, op := range mod.Operations {
		method := convertMethod(op.Name, op.Operation)
		opFns[op.Name] = method.FnName
		data.Methods = append(data.Methods, method)
	}

	for _, p := range mod.Paths {
		data.Paths = append(data.Paths, methodPath{
			FnName: opFns[p.Operation],
			Path:   p.Path,
			Method: p.Method,
		})
	}

	for _, service := range mod.StaticServices {
		data.Services = append(data.Services, staticService{
			Method: service.Method,
			Path:   service.Path,
			FnName: contentFns[service.Data],
		})
	}

	return data, nil
}

func convertStruct(name string, def *model.Struct) rustStruct {
	out := rustStruct{Doc: def.Doc, Title: name}
	for _, prop := range def.Properties {
		annotation := serdeAnnotation(prop.Rename, prop.Default)
		out.Props = append(out.Props, rustProp{
			Title:      prop.Name,
			Doc:        prop.Doc,
			Annotation: annotation,
			Type:       prop.Type.String(),
		})
	}
	return out
}

func convertEnum(name string, def *model.Enum) rustEnum {
	out := rustEnum{Doc: def.Doc, Title: name, Tag: def.Discriminator}
	for _, variant := range def.Variants {
		converted := rustEnumVariant{
			Title:      variant.Name,
			Annotation: serdeAnnotation(variant.Rename, ""),
		}
		if variant.Data != nil {
			converted.Data = variant.Data.String()
		}
		out.Variants = append(out.Variants, converted)
	}
	return out
}

func convertError(name string, def *model.ApiErr) rustError {
	out := rustError{Doc: def.Doc, Title: name}
	for _, variant := range def.Variants {
		out.Variants = append(out.Variants, rustErrorVariant{
			Title:   variant.Name,
			Status:  variant.Code,
			Display: variant.Detail,
		})
	}
	return out
}

func convertMethod(name string, op model.Operation) rustMethod {
	method := rustMethod{
		Name:         name,
		FnName:       model.RustIdentifier(name, model.CaseSnake),
		Doc:          op.Doc,
		ResponseType: op.Response.String(),
	}
	if op.ParamPath != nil {
		method.Args = append(method.Args, rustMethodArg{Name: "path", Type: op.ParamPath.String()})
	}
	if op.ParamQuery != nil {
		method.Args = append(method.Args, rustMethodArg{Name: "query", Type: op.ParamQuery.String()})
	}
	if op.ParamBody != nil {
		method.Args = append(method.Args, rustMethodArg{Name: "body", Type: op.ParamBody.String()})
	}
	return method
}

// serdeAnnotation renders the #[serde(...)] attribute for a wire rename
// and/or default provider; empty when neither applies.
func serdeAnnotation(rename, defaultFn string) string {
	var keyvals []string
	if rename != "" {
		keyvals = append(keyvals, "rename = "+strconv.Quote(rename))
	}
	if defaultFn != "" {
		keyvals = append(keyvals, "default = "+strconv.Quote(defaultFn))
	}
	if len(keyvals) == 0 {
		return ""
	}
	return "#[serde(" + strings.Join(keyvals, ", ") + ")]"
}

func screamingSnake(name string) string {
	return strings.ToUpper(model.RustIdentifier(name, model.CaseSnake))
}

// docComment renders a /// comment block indented by the given prefix,
// without a trailing newline.
func docComment(prefix, doc string) string {
	lines := strings.Split(strings.TrimRight(doc, "\n"), "\n")
	rendered := make([]string, 0, len(lines))
	for _, line := range lines {
		rendered = append(rendered, prefix+"/// "+line)
	}
	return strings.Join(rendered, "\n")
}

const apiTemplate = `//! API auto-generated by apigen

use std::fmt::Display;

use std::fmt::Debug;

use serde::{Deserialize, Serialize};

use actix_web::{
    http::StatusCode, web, HttpResponse, ResponseError,
};

use async_trait::async_trait;

// Defaults
// -------------------------------
{{- range .Defaults}}
fn {{.Title}}() -> {{.Type}} {
    {{.Value}}
}
{{- end}}

// Enums
// -------------------------------
{{- range .Enums}}

{{- if .Doc}}
{{doc "" .Doc}}
{{- end}}
#[derive(Debug, Serialize, Deserialize, Clone, PartialEq)]
{{- if .Tag}}
#[serde(tag = "{{.Tag}}")]
{{- end}}
pub enum {{.Title}} {
{{- range .Variants}}
{{- if .Annotation}}
    {{.Annotation}}
{{- end}}
{{- if .Data}}
    {{.Title}}({{.Data}}),
{{- else}}
    {{.Title}},
{{- end}}
{{- end}}
}
{{- end}}

// Struct
// -------------------------------
{{- range .Structs}}

{{- if .Doc}}
{{doc "" .Doc}}
{{- end}}
#[derive(Debug, Serialize, Deserialize, Clone, PartialEq)]
pub struct {{.Title}} {
{{- range .Props}}
{{- if .Doc}}
{{doc "    " .Doc}}
{{- end}}
{{- if .Annotation}}
    {{.Annotation}}
{{- end}}
    pub {{.Title}}: {{.Type}},
{{- end}}
}
{{- end}}

// Error with details
// -------------------------------

/// Bails with detailed api error
#[macro_export]
macro_rules! apibail {
    ($err:expr,$msg:expr) => {
        return Err($crate::server::api::Detailed {
            error: $err,
            details: $msg.to_string(),
        })
    };
}

pub trait StatusCoded {
    fn status_code(&self) -> StatusCode;
}

#[derive(Debug)]
pub struct Detailed<E> {
    pub error: E,
    pub details: String,
}

impl<E: Display> Display for Detailed<E> {
    fn fmt(&self, f: &mut std::fmt::Formatter<'_>) -> std::fmt::Result {
        write!(f, "{}. Reason: {}", self.error, self.details)
    }
}

impl<E: Display + Debug> std::error::Error for Detailed<E> {}

impl<E: Display + Debug> ResponseError for Detailed<E>
where
    E: StatusCoded,
{
    fn status_code(&self) -> StatusCode {
        self.error.status_code()
    }
}

// Errors
// -------------------------------
{{- range .Errors}}

{{- if .Doc}}
{{doc "" .Doc}}
{{- end}}
#[derive(Debug, Serialize, Deserialize, Clone, PartialEq)]
pub enum {{.Title}} {
{{- range .Variants}}
    {{.Title}},
{{- end}}
}

impl Display for {{.Title}} {
    fn fmt(&self, f: &mut std::fmt::Formatter<'_>) -> std::fmt::Result {
        match self {
{{- range .Variants}}
            Self::{{.Title}} => write!(f, "{{.Display}}"),
{{- end}}
        }
    }
}

impl StatusCoded for {{.Title}} {
    fn status_code(&self) -> StatusCode {
        match self {
{{- range .Variants}}
            Self::{{.Title}} => StatusCode::{{.Status}},
{{- end}}
        }
    }
}
{{- end}}

// Static content
// -------------------------------
{{- range .Includes}}
static {{.Const}}: &str = include_str!("{{.FilePath}}");
{{- end}}
{{- range .Contents}}

async fn {{.FnName}}() -> HttpResponse {
    HttpResponse::Ok()
        .content_type("{{.ContentType}}")
        .body({{.Const}})
}
{{- end}}
{{- range .Redirects}}

async fn {{.FnName}}() -> HttpResponse {
    HttpResponse::TemporaryRedirect()
        .insert_header(("Location", "{{.Target}}"))
        .finish()
}
{{- end}}

// Api
// -------------------------------

#[async_trait]
pub trait Api: Send + Sync + 'static {
{{- range .Methods}}
{{- if .Doc}}
{{doc "    " .Doc}}
{{- end}}
    async fn {{.FnName}}(&self{{range .Args}}, {{.Name}}: {{.Type}}{{end}}) -> {{.ResponseType}};
{{- end}}
}
{{- range .Methods}}

async fn handle_{{.FnName}}<A: Api>(api: web::Data<A>{{range .Args}}, {{.Name}}: {{.Type}}{{end}}) -> {{.ResponseType}} {
    api.{{.FnName}}({{range $i, $a := .Args}}{{if $i}}, {{end}}{{$a.Name}}{{end}}).await
}
{{- end}}

/// Binds every route of the api to the service config
pub fn configure<A: Api>(cfg: &mut web::ServiceConfig) {
{{- range .Paths}}
    cfg.route("{{.Path}}", web::{{.Method}}().to(handle_{{.FnName}}::<A>));
{{- end}}
{{- range .Services}}
    cfg.route("{{.Path}}", web::{{.Method}}().to({{.FnName}}));
{{- end}}
}
`
