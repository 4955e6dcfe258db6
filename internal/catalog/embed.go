package catalog

import (
	"embed"
	"io/fs"
)

const (
	solutionsFile = "solutions.yaml"
	mappingsFile  = "audit_mappings.yaml"
)

//go:embed data/*.yaml
var builtinData embed.FS

// BuiltinFS returns the embedded catalog data rooted at its data directory.
func BuiltinFS() fs.FS {
	sub, err := fs.Sub(builtinData, "data")
	if err != nil {
		panic(err)
	}
	return sub
}
