package definition

import (
	"embed"
	"io/fs"
)

//go:embed definitions/*.yaml
var embeddedDefinitions embed.FS

// EmbeddedFS returns the bundled definitions. Callers may pass this filesystem
// to LoadFS to use the default configuration.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedDefinitions, "definitions")
	if err != nil {
		// The embed directive guarantees the subpath exists, so panic is
		// acceptable here.
		panic(err)
	}
	return sub
}
