package view

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates/*.html
var templatesFS embed.FS

// NewEngine builds the views engine over the embedded templates with the
// nl2br helper registered.
func NewEngine() (*html.Engine, error) {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("nl2br", Nl2br)
	return engine, nil
}

// Nl2br HTML-escapes a multi-line value and joins its lines with <br>,
// preserving user line breaks without allowing markup injection.
func Nl2br(value string) template.HTML {
	if value == "" {
		return ""
	}
	escaped := template.HTMLEscapeString(value)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	return template.HTML(strings.Join(strings.Split(escaped, "\n"), "<br>"))
}
