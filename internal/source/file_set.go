package source

import (
	"crypto/sha256"
	"fmt"
	"os"

	"fortio.org/safecast"
)

// FileSet owns every file version a snapshot refers to. Adding a path again
// yields a new FileID; spans computed against the older id keep pointing at
// the older content.
type FileSet struct {
	files   []File
	latest  map[string]FileID
	baseDir string
}

func NewFileSet() *FileSet {
	return &FileSet{latest: make(map[string]FileID)}
}

// NewFileSetWithBase returns a FileSet whose relative paths are rendered
// against baseDir.
func NewFileSetWithBase(baseDir string) *FileSet {
	fs := NewFileSet()
	fs.baseDir = baseDir
	return fs
}

func (fs *FileSet) SetBaseDir(dir string) { fs.baseDir = dir }

// BaseDir returns the configured base directory, falling back to the
// working directory.
func (fs *FileSet) BaseDir() string {
	if fs.baseDir != "" {
		return fs.baseDir
	}
	wd, _ := os.Getwd()
	return wd
}

// Add stores content as given under path and returns the new version's id.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	n, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("file set overflow: %w", err))
	}
	if _, err := safecast.Conv[uint32](len(content)); err != nil {
		panic(fmt.Errorf("%s: file too large: %w", path, err))
	}
	id := FileID(n)
	key := normalizePath(path)
	fs.files = append(fs.files, File{
		ID:      id,
		Path:    key,
		Content: content,
		LineIdx: lineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	fs.latest[key] = id
	return id
}

// AddVirtual normalizes in-memory content and adds it under name. Spans
// into the file index the normalized content, not the caller's bytes.
func (fs *FileSet) AddVirtual(name string, content []byte) FileID {
	content, flags := normalizeText(content)
	return fs.Add(name, content, flags|FileVirtual)
}

// Load reads path from disk and adds it under its own name.
func (fs *FileSet) Load(path string) (FileID, error) {
	return fs.LoadAs(path, path)
}

// LoadAs reads diskPath and adds it under name.
func (fs *FileSet) LoadAs(name, diskPath string) (FileID, error) {
	// #nosec G304 -- the caller chooses which file to read
	content, err := os.ReadFile(diskPath)
	if err != nil {
		return 0, err
	}
	content, flags := normalizeText(content)
	return fs.Add(name, content, flags), nil
}

// Get returns the file for id, or nil.
func (fs *FileSet) Get(id FileID) *File {
	if int(id) >= len(fs.files) {
		return nil
	}
	return &fs.files[id]
}

// Latest returns the newest version stored under path.
func (fs *FileSet) Latest(path string) (*File, bool) {
	id, ok := fs.latest[normalizePath(path)]
	if !ok {
		return nil, false
	}
	return &fs.files[id], true
}

// Len counts stored versions, not distinct paths.
func (fs *FileSet) Len() int { return len(fs.files) }

// Resolve converts both ends of sp to line and column.
func (fs *FileSet) Resolve(sp Span) (start, end LineCol) {
	f := fs.Get(sp.File)
	if f == nil {
		return LineCol{}, LineCol{}
	}
	return f.Position(sp.Start), f.Position(sp.End)
}
