//go:build cgo

package scoring

import (
	"context"
	"sort"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
)

// declNodeTypes lists the node kinds whose "name" field is an identifier
// worth tracking.
var declNodeTypes = map[string][]string{
	"go":         {"function_declaration", "method_declaration", "type_spec"},
	"python":     {"function_definition", "class_definition"},
	"javascript": {"function_declaration", "generator_function_declaration", "class_declaration", "method_definition", "variable_declarator"},
	"java":       {"method_declaration", "class_declaration", "interface_declaration", "enum_declaration"},
	"rust":       {"function_item", "struct_item", "enum_item", "trait_item"},
}

func sitterLanguage(lang string) *sitter.Language {
	switch lang {
	case "go":
		return golang.GetLanguage()
	case "python":
		return python.GetLanguage()
	case "javascript":
		return javascript.GetLanguage()
	case "java":
		return java.GetLanguage()
	case "rust":
		return rust.GetLanguage()
	}
	return nil
}

type treeSitterExtractor struct {
	mu       sync.Mutex
	parser   *sitter.Parser
	fallback Extractor
}

// TreeSitterAvailable reports whether this build can parse with tree-sitter.
func TreeSitterAvailable() bool { return true }

// TreeSitterExtractor parses content with tree-sitter for the languages it
// has grammars for and uses the regex extractor for the rest.
func TreeSitterExtractor() (Extractor, error) {
	return &treeSitterExtractor{
		parser:   sitter.NewParser(),
		fallback: RegexExtractor(),
	}, nil
}

func (t *treeSitterExtractor) Identifiers(lang string, content []byte) []string {
	tsLang := sitterLanguage(lang)
	if tsLang == nil {
		return t.fallback.Identifiers(lang, content)
	}

	t.mu.Lock()
	t.parser.SetLanguage(tsLang)
	tree, err := t.parser.ParseCtx(context.Background(), nil, content)
	t.mu.Unlock()
	if err != nil || tree == nil {
		return t.fallback.Identifiers(lang, content)
	}
	defer tree.Close()

	wanted := declNodeTypes[lang]
	seen := make(map[string]bool)
	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if containsType(wanted, n.Type()) {
			if name := declName(n, content); name != "" {
				seen[name] = true
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(tree.RootNode())

	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}

func declName(n *sitter.Node, content []byte) string {
	// const f = () => {} only counts when the value is a function.
	if n.Type() == "variable_declarator" {
		v := n.ChildByFieldName("value")
		if v == nil || (v.Type() != "arrow_function" && v.Type() != "function" && v.Type() != "function_expression") {
			return ""
		}
	}
	name := n.ChildByFieldName("name")
	if name == nil {
		return ""
	}
	return name.Content(content)
}

func containsType(types []string, t string) bool {
	for _, s := range types {
		if s == t {
			return true
		}
	}
	return false
}
