package web

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

//go:embed static/*
var embeddedStatic embed.FS

// TemplatesFS exposes the page templates.
func TemplatesFS() fs.FS {
	return mustSub(embeddedTemplates, "templates")
}

// StaticFS exposes the stylesheet and scripts served under /static/.
func StaticFS() fs.FS {
	return mustSub(embeddedStatic, "static")
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic("web: embedded " + dir + " missing: " + err.Error())
	}
	return sub
}
