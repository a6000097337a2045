package home

import "strings"

var quoteFolder = strings.NewReplacer("’", "'", "‘", "'")

// FoldName prepares a name for comparison: trimmed, lower-cased, with
// typographic single quotes folded to the ASCII apostrophe.
func FoldName(s string) string {
	return strings.ToLower(quoteFolder.Replace(strings.TrimSpace(s)))
}

// SameName reports whether a and b are equal after folding.
func SameName(a, b string) bool {
	return FoldName(a) == FoldName(b)
}

// ContainsName reports whether name contains part after folding both.
func ContainsName(name, part string) bool {
	return strings.Contains(FoldName(name), FoldName(part))
}
