package scoring

import (
	"path/filepath"
	"strings"
)

// LanguageAll marks a rule that applies to every language.
const LanguageAll = "all"

// LanguageUnknown is reported for unmapped extensions.
const LanguageUnknown = "unknown"

var languageByExt = map[string]string{
	".py":    "python",
	".js":    "javascript",
	".ts":    "javascript",
	".jsx":   "javascript",
	".tsx":   "javascript",
	".java":  "java",
	".cpp":   "c",
	".c":     "c",
	".h":     "c",
	".go":    "go",
	".rs":    "rust",
	".php":   "php",
	".rb":    "ruby",
	".swift": "swift",
	".kt":    "kotlin",
	".cs":    "csharp",
}

// DetectLanguage maps a file extension to a language name.
func DetectLanguage(path string) string {
	if lang, ok := languageByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return LanguageUnknown
}
