// Package web embeds the page, the fragment templates and the client-side
// reminder script.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"strings"
)

//go:embed static templates
var files embed.FS

// IndexPage returns the home page markup, served as is.
func IndexPage() []byte {
	page, err := files.ReadFile("static/index.html")
	if err != nil {
		panic(err)
	}
	return page
}

// Static is the tree served under /static.
func Static() fs.FS {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Templates parses the result fragments. They are html/template, so form
// values are escaped for both the markup and the inline script.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"join": strings.Join,
	}).ParseFS(files, "templates/*.html"))
}
