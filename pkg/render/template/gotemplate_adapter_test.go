package template_test

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"testing"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-diagnostic/pkg/render/template/gotemplate"
	"github.com/goliatone/go-diagnostic/pkg/testsupport"
)

//go:embed testdata/templates/*.tpl
var embeddedTemplates embed.FS

func TestEngine_RenderTemplate(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("greeting", map[string]any{
			"name":   "  Ada ",
			"levels": []string{"B1", "B2"},
		}, w)
	})

	want := "Hello Ada, levels: B1, B2.\n"
	if result != want {
		t.Fatalf("render template mismatch result\nwant: %q\n got: %q", want, result)
	}
	if written != want {
		t.Fatalf("render template mismatch writer\nwant: %q\n got: %q", want, written)
	}
}

func TestEngine_RenderStructUsesJSONNames(t *testing.T) {
	engine := newEngine(t)

	type view struct {
		DisplayName string `json:"name"`
	}
	got, err := engine.RenderString("{{ name }}", view{DisplayName: "Grace"})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if got != "Grace" {
		t.Fatalf("want Grace, got %q", got)
	}
}

func TestEngine_GlobalContext(t *testing.T) {
	engine := newEngine(t)
	if err := engine.GlobalContext(map[string]any{
		"settings": map[string]any{"endpoint": "http://localhost:8888/"},
	}); err != nil {
		t.Fatalf("global context: %v", err)
	}

	result, err := engine.Render("use-global", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "http://localhost:8888/\n" {
		t.Fatalf("unexpected output %q", result)
	}
}

func TestEngine_RegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("emphasise", func(input any, _ any) (any, error) {
		if input == nil {
			return "", nil
		}
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	})
	// pongo2 filters are process-wide; a repeated run sees the earlier registration.
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("register filter: %v", err)
	}

	result, err := engine.RenderTemplate("use-filter.tpl", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "ADA!\n" {
		t.Fatalf("unexpected output %q", result)
	}
}

func shout(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(strings.ToUpper(in.String())), nil
}

func whisper(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(strings.ToLower(in.String())), nil
}

func TestWithTemplateFunc_FilterCollision(t *testing.T) {
	templatesFS, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}
	withFilter := func(fn pongo2.FilterFunction) (*gotemplate.Engine, error) {
		return gotemplate.New(
			gotemplate.WithFS(templatesFS),
			gotemplate.WithTemplateFunc(map[string]any{"shout": fn}),
		)
	}

	first, err := withFilter(shout)
	if err != nil {
		t.Fatalf("first engine: %v", err)
	}
	if _, err := withFilter(shout); err != nil {
		t.Fatalf("same filter on a second engine: %v", err)
	}

	_, err = withFilter(whisper)
	if err == nil || !strings.Contains(err.Error(), "different function") {
		t.Fatalf("expected collision error, got %v", err)
	}

	out, err := first.RenderString("{{ name|shout }}", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "ADA" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestWithTemplateFunc_BuiltinFilterName(t *testing.T) {
	templatesFS, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}
	_, err = gotemplate.New(
		gotemplate.WithFS(templatesFS),
		gotemplate.WithTemplateFunc(map[string]any{"upper": pongo2.FilterFunction(whisper)}),
	)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected builtin collision error, got %v", err)
	}
}

func TestEngine_MissingTemplate(t *testing.T) {
	engine := newEngine(t)
	if _, err := engine.RenderTemplate("nope", nil); err == nil {
		t.Fatalf("expected error for missing template")
	}
}

func TestNew_RequiresSource(t *testing.T) {
	if _, err := gotemplate.New(); err == nil {
		t.Fatalf("expected error without templates")
	}
}

func newEngine(t *testing.T) *gotemplate.Engine {
	t.Helper()

	templatesFS, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}

	engine, err := gotemplate.New(gotemplate.WithFS(templatesFS))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}
