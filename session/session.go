// Package session implements the driver-facing scoped temporary-directory
// lifecycle spec.md §6's "Persisted state" names: a uniquely named working
// directory of the form "<tmpdir>/kefir-<pid>-XXXXXX/", removed when the
// session closes.
//
// Grounded on y1yang0-falcon's compile.CompileTheWorld/utils.CopyFilesToTempDir
// (ioutil.TempDir-backed scratch directory, files copied in, binary copied
// back out to the invocation directory) and original_source's
// platform/tempfile.c naming convention, generalized from y1yang0-falcon's
// single long-lived never-cleaned-up temp dir (its own RemoveAll call is
// left commented out) into a Session the caller always closes via defer —
// spec.md §9 forbids the core from installing signal handlers, so deletion
// on an abnormal exit is explicitly out of scope here; ordinary process exit
// and explicit Close are the only guaranteed cleanup paths.
package session

import (
	"fmt"
	"os"
	"path/filepath"

	"occ/diag"
)

// Session owns one compilation's scratch directory and the directory
// intermediate artifacts are staged in. It does not record the paths it
// hands out; Close removes the scratch directory with everything under it.
type Session struct {
	dir     string
	workDir string
}

// New creates a session directory under base (KEFIR_TMPDIR's resolved value,
// see driver/externals.go), named "kefir-<pid>-XXXXXX".
func New(base string) (*Session, error) {
	if base == "" {
		base = os.TempDir()
	}
	pattern := fmt.Sprintf("kefir-%d-*", os.Getpid())
	dir, err := os.MkdirTemp(base, pattern)
	if err != nil {
		return nil, diag.Wrap(diag.OsError, err, "failed to create session directory under %s", base).WithComponent("session")
	}
	return &Session{dir: dir, workDir: dir}, nil
}

// Dir returns the session's scratch directory.
func (s *Session) Dir() string { return s.dir }

// Path joins name onto the session directory.
func (s *Session) Path(name string) string { return filepath.Join(s.dir, name) }

// SetWorkDir overrides the directory intermediate artifacts are staged in
// (KEFIR_WORKDIR, when the caller wants staged files to survive the
// session rather than live only in the scratch directory).
func (s *Session) SetWorkDir(dir string) { s.workDir = dir }

// WorkDir returns the directory intermediate build artifacts are staged in.
func (s *Session) WorkDir() string { return s.workDir }

// Close removes the session's scratch directory and everything under it.
func (s *Session) Close() error {
	if s.dir == "" {
		return nil
	}
	if err := os.RemoveAll(s.dir); err != nil {
		return diag.Wrap(diag.OsError, err, "failed to remove session directory %s", s.dir).WithComponent("session")
	}
	return nil
}
