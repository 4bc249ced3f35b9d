package config

import (
	"slices"
	"sort"
	"strings"
)

// PlainTextTypes defines the extensions searched line by line
var PlainTextTypes = []string{
	"txt", "text", "md", "rst", "log", "csv", "tsv",
	"json", "yaml", "yml", "xml", "html", "htm",
	"cfg", "conf", "ini", "sh", "bat",
	"eml", "mbox", "msg",
}

// PaginatedTypes defines the extensions searched sentence by sentence with page estimates
var PaginatedTypes = []string{
	"pdf",
}

// MessageTypes are line-oriented containers whose body must be decoded first
var MessageTypes = []string{
	"eml", "mbox", "msg",
}

// DefaultExtensions is the filter applied to directory walks when none is configured
var DefaultExtensions = []string{".txt", ".pdf"}

// IsPlainTextFile checks if a file extension is a line-oriented type
func IsPlainTextFile(filename string) bool {
	return slices.Contains(PlainTextTypes, extensionOf(filename))
}

// IsPaginatedFile checks if a file extension is a paginated document type
func IsPaginatedFile(filename string) bool {
	return slices.Contains(PaginatedTypes, extensionOf(filename))
}

// IsMessageFile checks if a file is a mail container
func IsMessageFile(filename string) bool {
	return slices.Contains(MessageTypes, extensionOf(filename))
}

// NormalizeExtensions lower-cases extensions, adds the leading dot and drops duplicates.
// The result is sorted longest first so multi-part suffixes such as ".tar.gz" are tried
// before ".gz".
func NormalizeExtensions(exts []string) []string {
	seen := make(map[string]bool, len(exts))
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		for _, part := range strings.Split(e, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" || part == "." {
				continue
			}
			if !strings.HasPrefix(part, ".") {
				part = "." + part
			}
			if seen[part] {
				continue
			}
			seen[part] = true
			out = append(out, part)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}

// MatchesExtension reports whether filename ends with one of the normalized extensions.
// An empty set accepts every file.
func MatchesExtension(filename string, normalized []string) bool {
	if len(normalized) == 0 {
		return true
	}
	lower := strings.ToLower(filename)
	for _, ext := range normalized {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// GetPerformanceProfile returns worker and heavy-extraction slots based on document count
func GetPerformanceProfile(docCount int) (workers int, heavy int) {
	switch {
	case docCount < 100:
		return 2, 1 // Light workload
	case docCount < 1000:
		return 4, 2 // Medium workload
	case docCount < 10000:
		return 8, 2 // Heavy workload
	default:
		return 16, 4 // Very heavy workload
	}
}

// extensionOf returns the lower-cased extension without the dot
func extensionOf(filename string) string {
	lastDot := strings.LastIndex(filename, ".")
	if lastDot == -1 || lastDot == len(filename)-1 {
		return ""
	}
	if slash := strings.LastIndexAny(filename, `/\`); slash > lastDot {
		return ""
	}
	return strings.ToLower(filename[lastDot+1:])
}

// IsHiddenFile checks if a file should be treated as hidden
func IsHiddenFile(filename string) bool {
	return strings.HasPrefix(filename, ".") && filename != "." && filename != ".."
}

// GetFileTypeDescription returns a human-readable description of an extension filter
func GetFileTypeDescription(exts []string) string {
	if len(exts) == 0 {
		return "all files"
	}
	names := make([]string, len(exts))
	for i, e := range exts {
		names[i] = strings.TrimPrefix(e, ".")
	}
	sort.Strings(names)
	return "documents (" + strings.Join(names, ", ") + ")"
}
