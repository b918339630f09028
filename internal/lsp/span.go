package lsp

import (
	"context"
	"path/filepath"
	"sort"
	"unicode/utf8"

	"fortio.org/safecast"

	"spanres/internal/diag"
	"spanres/internal/source"
	"spanres/internal/span"
)

const maxUint32 = ^uint32(0)

func safeUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return maxUint32
	}
	return v
}

// OffsetForPosition converts a protocol position to a byte offset in file.
// Positions past the end of a line clamp to the line end; a character inside
// a surrogate pair clamps to the start of that rune.
func OffsetForPosition(file *source.File, pos Position) uint32 {
	if file == nil || pos.Line < 0 || pos.Character < 0 {
		return 0
	}
	content := file.Content
	if len(content) == 0 {
		return 0
	}
	lineCount := len(file.LineIdx) + 1
	contentLen := safeUint32(len(content))
	if pos.Line >= lineCount {
		return contentLen
	}
	var lineStart uint32
	if pos.Line > 0 {
		lineStart = file.LineIdx[pos.Line-1] + 1
	}
	lineEnd := contentLen
	if pos.Line < len(file.LineIdx) {
		lineEnd = file.LineIdx[pos.Line]
	}
	if lineStart > lineEnd {
		return lineEnd
	}
	units := 0
	off := lineStart
	for off < lineEnd && units < pos.Character {
		r, size := utf8.DecodeRune(content[off:lineEnd])
		need := 1
		if r > 0xFFFF {
			need = 2
		}
		if units+need > pos.Character {
			break
		}
		units += need
		off += safeUint32(size)
	}
	return off
}

// PositionForOffset converts a byte offset to a protocol position. Offsets
// past the end clamp to the end of the file.
func PositionForOffset(file *source.File, offset uint32) Position {
	if file == nil {
		return Position{}
	}
	contentLen := safeUint32(len(file.Content))
	offset = min(offset, contentLen)
	lineIdx := file.LineIdx
	line := sort.Search(len(lineIdx), func(i int) bool { return lineIdx[i] >= offset })
	var lineStart uint32
	if line > 0 {
		lineStart = lineIdx[line-1] + 1
	}
	lineStart = min(lineStart, offset)
	units := 0
	for off := lineStart; off < offset; {
		r, size := utf8.DecodeRune(file.Content[off:offset])
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
		off += safeUint32(size)
	}
	return Position{Line: line, Character: units}
}

// RangeForSpan converts a byte span to a protocol range.
func RangeForSpan(file *source.File, sp source.Span) Range {
	if file == nil {
		return Range{}
	}
	return Range{
		Start: PositionForOffset(file, sp.Start),
		End:   PositionForOffset(file, sp.End),
	}
}

// LocationForSpan converts sp to a Location. It fails when the span's file
// is not in files. Relative file paths are taken against files.BaseDir().
func LocationForSpan(files *source.FileSet, sp source.Span) (Location, bool) {
	if files == nil {
		return Location{}, false
	}
	file := files.Get(sp.File)
	if file == nil {
		return Location{}, false
	}
	path := file.Path
	if path != "" && !filepath.IsAbs(path) {
		path = filepath.Join(files.BaseDir(), path)
	}
	return Location{URI: URIForPath(path), Range: RangeForSpan(file, sp)}, true
}

// LocationOf resolves a handle for a navigation answer. A desugared node is
// answered with its enclosing construct and placement Fallback; any other
// failure returns the resolution error.
func LocationOf(ctx context.Context, r diag.SpanResolver, files *source.FileSet, h span.LazySpan) (Location, diag.Placement, error) {
	sp, err := r.Resolve(ctx, h)
	placement := diag.Precise
	if err != nil {
		fb, ok := span.FallbackOf(err)
		if !ok {
			return Location{}, diag.Unlocated, err
		}
		sp, placement = fb, diag.Fallback
	}
	loc, ok := LocationForSpan(files, sp)
	if !ok {
		return Location{}, diag.Unlocated, errUnknownFile(sp.File)
	}
	return loc, placement, nil
}
