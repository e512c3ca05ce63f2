// Package contactbook provides embedded runtime resources.
package contactbook

import (
	"embed"
	"io/fs"
)

//go:embed templates/config.yaml
var rawTemplates embed.FS

// Templates is the embedded templates filesystem with the "templates/" prefix stripped.
var Templates = mustSub(rawTemplates, "templates")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// SampleConfig returns the annotated default config written by "contacts init".
func SampleConfig() []byte {
	data, err := fs.ReadFile(Templates, "config.yaml")
	if err != nil {
		panic(err)
	}
	return data
}
