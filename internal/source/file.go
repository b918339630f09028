package source

import (
	"os"
	"path/filepath"
	"slices"
)

// FileID identifies one version of a file inside a FileSet.
type FileID uint32

// FileFlags records how a file's content was produced.
type FileFlags uint8

const (
	FileVirtual        FileFlags = 1 << iota // added from memory
	FileHadBOM                               // a UTF-8 BOM was stripped
	FileNormalizedCRLF                       // CRLF line endings were folded to LF
)

// File is one immutable version of a source file. Offsets in spans are byte
// offsets into Content.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of every '\n'
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol is a 1-based line and byte column.
type LineCol struct {
	Line uint32
	Col  uint32
}

// Position converts a byte offset to a line and column.
func (f *File) Position(off uint32) LineCol {
	// Number of newlines strictly before off.
	n, _ := slices.BinarySearch(f.LineIdx, off)
	if n == 0 {
		return LineCol{Line: 1, Col: off + 1}
	}
	return LineCol{Line: uint32(n) + 1, Col: off - f.LineIdx[n-1]}
}

// Slice returns the bytes under sp, clamped to the content.
func (f *File) Slice(sp Span) []byte {
	n := uint32(len(f.Content))
	start, end := min(sp.Start, n), min(sp.End, n)
	if start > end {
		return nil
	}
	return f.Content[start:end]
}

// Line returns line n (1-based) without its newline, or "" past the end.
func (f *File) Line(n uint32) string {
	if n == 0 || int(n) > len(f.LineIdx)+1 {
		return ""
	}
	start := uint32(0)
	if n > 1 {
		start = f.LineIdx[n-2] + 1
	}
	end := uint32(len(f.Content))
	if int(n) <= len(f.LineIdx) {
		end = f.LineIdx[n-1]
	}
	return string(f.Content[start:end])
}

// FormatPath renders the path for display. mode is one of absolute,
// relative (to baseDir, or the working directory), basename or auto, which
// keeps short and relative paths and shortens long absolute ones.
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := AbsolutePath(f.Path); err == nil {
			return abs
		}
	case "relative":
		if baseDir == "" {
			baseDir, _ = os.Getwd()
		}
		if rel, err := RelativePath(f.Path, baseDir); err == nil {
			return rel
		}
	case "basename":
		return filepath.Base(f.Path)
	case "auto":
		if len(f.Path) >= 40 && filepath.IsAbs(f.Path) {
			return filepath.Base(f.Path)
		}
	}
	return f.Path
}
