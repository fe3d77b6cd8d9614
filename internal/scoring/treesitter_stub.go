//go:build !cgo

package scoring

import "errors"

// TreeSitterAvailable reports whether this build can parse with tree-sitter.
func TreeSitterAvailable() bool { return false }

// TreeSitterExtractor is unavailable without cgo.
func TreeSitterExtractor() (Extractor, error) {
	return nil, errors.New("tree-sitter parser requires a cgo build")
}
