package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeExtensions(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, []string{}},
		{"adds dot and lowercases", []string{"TXT", ".Pdf"}, []string{".txt", ".pdf"}},
		{"comma list", []string{"txt, md,,"}, []string{".txt", ".md"}},
		{"dedupes", []string{".txt", "txt", "TXT"}, []string{".txt"}},
		{"longest first", []string{"gz", "tar.gz"}, []string{".tar.gz", ".gz"}},
		{"drops bare dot", []string{".", " "}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeExtensions(tt.in))
		})
	}
}

func TestMatchesExtension(t *testing.T) {
	exts := NormalizeExtensions([]string{"txt", "tar.gz"})
	assert.True(t, MatchesExtension("notes.TXT", exts))
	assert.True(t, MatchesExtension("/a/b/archive.tar.gz", exts))
	assert.False(t, MatchesExtension("paper.pdf", exts))
	assert.False(t, MatchesExtension("txt", exts))
	assert.True(t, MatchesExtension("anything.bin", nil))
}

func TestFileKinds(t *testing.T) {
	assert.True(t, IsPlainTextFile("/tmp/a.txt"))
	assert.True(t, IsPlainTextFile("mail.EML"))
	assert.False(t, IsPlainTextFile("paper.pdf"))
	assert.True(t, IsPaginatedFile("Paper.PDF"))
	assert.False(t, IsPaginatedFile("dir.pdf/readme"))
	assert.True(t, IsMessageFile("inbox.mbox"))
	assert.False(t, IsMessageFile("notes.txt"))
	assert.False(t, IsPlainTextFile("Makefile"))
}

func TestGetPerformanceProfile(t *testing.T) {
	tests := []struct {
		docs, workers, heavy int
	}{
		{0, 2, 1},
		{99, 2, 1},
		{100, 4, 2},
		{5000, 8, 2},
		{20000, 16, 4},
	}
	for _, tt := range tests {
		w, h := GetPerformanceProfile(tt.docs)
		assert.Equal(t, tt.workers, w, "workers for %d", tt.docs)
		assert.Equal(t, tt.heavy, h, "heavy for %d", tt.docs)
	}
}

func TestIsHiddenFile(t *testing.T) {
	assert.True(t, IsHiddenFile(".git"))
	assert.False(t, IsHiddenFile("."))
	assert.False(t, IsHiddenFile(".."))
	assert.False(t, IsHiddenFile("notes.txt"))
}

func TestGetFileTypeDescription(t *testing.T) {
	assert.Equal(t, "all files", GetFileTypeDescription(nil))
	assert.Equal(t, "documents (pdf, txt)", GetFileTypeDescription([]string{".txt", ".pdf"}))
}
