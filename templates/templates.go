// Package templates embeds the HTML views.
package templates

import (
	"embed"
	"html/template"
)

//go:embed *.html
var files embed.FS

// Parse compiles every view. Pages are named after their file, e.g.
// "login.html", and share the "header" and "footer" blocks.
func Parse() (*template.Template, error) {
	return template.ParseFS(files, "*.html")
}
