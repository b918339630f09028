package diagfmt

import (
	"spanres/internal/source"
)

func formatPath(f *source.File, fs *source.FileSet, mode PathMode) string {
	if f == nil {
		return "<unknown>"
	}
	switch mode {
	case PathModeAbsolute:
		return f.FormatPath("absolute", "")
	case PathModeRelative:
		return f.FormatPath("relative", fs.BaseDir())
	case PathModeBasename:
		return f.FormatPath("basename", "")
	default:
		return f.FormatPath("auto", "")
	}
}

// FormatPath renders the path of f the way diagnostics print it.
func FormatPath(f *source.File, fs *source.FileSet, mode PathMode) string {
	return formatPath(f, fs, mode)
}
