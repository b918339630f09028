package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/vmihailenco/msgpack/v5"

	"spanres/internal/diag"
	"spanres/internal/span"
	"spanres/internal/syntax"
	"spanres/internal/version"
)

// CacheSchemaVersion changes whenever CachePayload's layout does.
const CacheSchemaVersion uint16 = 1

// ErrVersionSkew reports a payload written by an incompatible tool version.
var ErrVersionSkew = errors.New("diagnostic cache written by an incompatible version")

// Cache stores unresolved diagnostics on disk. Handles are kept as chains
// (root descriptor plus steps), never as resolved ranges, so a later run can
// resolve them against whatever snapshot it has.
// Thread-safe for concurrent access.
type Cache struct {
	mu      sync.RWMutex
	dir     string
	version *semver.Version
}

// CachePayload is the on-disk record for one key.
type CachePayload struct {
	Schema      uint16
	ToolVersion string
	Written     int64 // unix seconds
	Diagnostics []CachedDiagnostic
}

// CachedDiagnostic is a diag.Diagnostic with its handles flattened.
type CachedDiagnostic struct {
	Severity uint8
	Code     uint16
	Message  string
	Primary  *CachedHandle
	Context  *CachedHandle
	Notes    []CachedNote
}

type CachedNote struct {
	Handle *CachedHandle
	Msg    string
}

// CachedHandle is a chain as plain data.
type CachedHandle struct {
	RootKind  uint8
	ID        uint32
	Container uint32
	Gen       uint64
	File      uint32
	Steps     []CachedStep
}

type CachedStep struct {
	Kind   uint8
	Name   string
	Index  int
	Yields uint16
}

// Loaded is the result of a cache lookup.
type Loaded struct {
	Diagnostics []diag.Diagnostic
	// Stale counts diagnostics dropped because a handle's container was
	// superseded in the snapshot the lookup ran against.
	Stale int
}

// OpenCache opens the cache in dir. An empty dir selects the standard
// location ($XDG_CACHE_HOME/spanres or ~/.cache/spanres). toolVersion is the
// semantic version written into payloads and checked on load.
func OpenCache(dir, toolVersion string) (*Cache, error) {
	v, err := semver.NewVersion(toolVersion)
	if err != nil {
		return nil, fmt.Errorf("cache tool version %q: %w", toolVersion, err)
	}
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, "spanres")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, version: v}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

func (c *Cache) pathFor(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, "diags", hex.EncodeToString(sum[:])+".mp")
}

// Put serializes diags under key, replacing any previous entry atomically.
func (c *Cache) Put(key string, diags []diag.Diagnostic) error {
	if c == nil {
		return nil
	}
	payload := &CachePayload{
		Schema:      CacheSchemaVersion,
		ToolVersion: c.version.String(),
		Written:     time.Now().Unix(),
		Diagnostics: make([]CachedDiagnostic, 0, len(diags)),
	}
	for i := range diags {
		payload.Diagnostics = append(payload.Diagnostics, encodeDiagnostic(&diags[i]))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	renamed := false
	defer func() {
		if !renamed {
			_ = os.Remove(tmp)
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp, p); err != nil {
		return err
	}
	renamed = true
	return nil
}

// Get loads the diagnostics stored under key. Diagnostics whose handles name
// a body or item generation that db no longer holds are dropped and counted
// in Loaded.Stale. A payload from another schema or an incompatible tool
// version fails with ErrVersionSkew.
func (c *Cache) Get(key string, db span.DB) (*Loaded, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	var payload CachePayload
	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	decErr := msgpack.NewDecoder(f).Decode(&payload)
	if closeErr := f.Close(); decErr == nil {
		decErr = closeErr
	}
	if decErr != nil {
		return nil, false, fmt.Errorf("decode cache entry: %w", decErr)
	}
	if err := c.checkCompatible(&payload); err != nil {
		return nil, false, err
	}

	out := &Loaded{Diagnostics: make([]diag.Diagnostic, 0, len(payload.Diagnostics))}
	for i := range payload.Diagnostics {
		d, ok, err := decodeDiagnostic(&payload.Diagnostics[i], db)
		if err != nil {
			return nil, false, fmt.Errorf("cache entry %d: %w", i, err)
		}
		if !ok {
			out.Stale++
			continue
		}
		out.Diagnostics = append(out.Diagnostics, d)
	}
	return out, true, nil
}

// checkCompatible accepts payloads of this schema written by a version in
// the running tool's release line.
func (c *Cache) checkCompatible(p *CachePayload) error {
	if p.Schema != CacheSchemaVersion {
		return fmt.Errorf("%w: schema %d, want %d", ErrVersionSkew, p.Schema, CacheSchemaVersion)
	}
	written, err := semver.NewVersion(p.ToolVersion)
	if err != nil {
		return fmt.Errorf("%w: bad version %q", ErrVersionSkew, p.ToolVersion)
	}
	if !version.Accepts(c.version, written) {
		return fmt.Errorf("%w: written by %s, running %s", ErrVersionSkew, written, c.version)
	}
	return nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

func encodeDiagnostic(d *diag.Diagnostic) CachedDiagnostic {
	out := CachedDiagnostic{
		Severity: uint8(d.Severity),
		Code:     uint16(d.Code),
		Message:  d.Message,
		Primary:  encodeHandle(d.Primary),
		Context:  encodeHandle(d.Context),
	}
	for _, n := range d.Notes {
		out.Notes = append(out.Notes, CachedNote{Handle: encodeHandle(n.Span), Msg: n.Msg})
	}
	return out
}

func encodeHandle(h span.LazySpan) *CachedHandle {
	if h == nil {
		return nil
	}
	chain := h.Chain()
	if chain.Root() == nil {
		return nil
	}
	root := chain.Root().Descriptor()
	out := &CachedHandle{
		RootKind:  uint8(root.Kind),
		ID:        root.ID,
		Container: root.Container,
		Gen:       root.Gen,
		File:      root.File,
	}
	for _, st := range chain.Steps() {
		out.Steps = append(out.Steps, CachedStep{
			Kind:   uint8(st.Kind),
			Name:   st.Name,
			Index:  st.Index,
			Yields: uint16(st.Yields),
		})
	}
	return out
}

// decodeDiagnostic returns ok=false when any handle is stale against db.
func decodeDiagnostic(cd *CachedDiagnostic, db span.DB) (diag.Diagnostic, bool, error) {
	d := diag.Diagnostic{
		Severity: diag.Severity(cd.Severity),
		Code:     diag.Code(cd.Code),
		Message:  cd.Message,
	}
	var ok bool
	var err error
	if d.Primary, ok, err = decodeHandle(cd.Primary, db); err != nil || !ok {
		return d, ok, err
	}
	if d.Context, ok, err = decodeHandle(cd.Context, db); err != nil || !ok {
		return d, ok, err
	}
	for _, n := range cd.Notes {
		h, ok, err := decodeHandle(n.Handle, db)
		if err != nil || !ok {
			return d, ok, err
		}
		d.Notes = append(d.Notes, diag.Note{Span: h, Msg: n.Msg})
	}
	return d, true, nil
}

func decodeHandle(ch *CachedHandle, db span.DB) (span.LazySpan, bool, error) {
	if ch == nil {
		return nil, true, nil
	}
	root := span.RootDescriptor{
		Kind:      span.RootKind(ch.RootKind),
		ID:        ch.ID,
		Container: ch.Container,
		Gen:       ch.Gen,
		File:      ch.File,
	}
	steps := make([]span.Transition, len(ch.Steps))
	for i, st := range ch.Steps {
		steps[i] = span.Transition{
			Kind:   span.TransitionKind(st.Kind),
			Name:   st.Name,
			Index:  st.Index,
			Yields: syntax.Kind(st.Yields),
		}
	}
	chain, err := span.ChainFromParts(root, steps)
	if err != nil {
		return nil, false, err
	}
	if db != nil && !span.RootCurrent(db, root) {
		return nil, false, nil
	}
	return span.Detached(chain), true, nil
}
