// Package sandbox confines file tools to one directory tree.
package sandbox

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Rejection codes carried by PathError.
const (
	CodeOutside     = "ERR_PATH_OUTSIDE_SANDBOX"
	CodeDeniedRead  = "ERR_DENIED_READ"
	CodeDeniedWrite = "ERR_DENIED_WRITE"
	CodeNotAFile    = "ERR_NOT_A_FILE"
)

// PathError is a machine-readable rejection, rendered as compact JSON so the
// model can read it from a function result.
type PathError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e PathError) Error() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// Access is what a tool intends to do with a path.
type Access int

const (
	Read Access = iota
	Write
)

// Sandbox resolves tool-supplied relative paths against a fixed root.
type Sandbox struct {
	root string
	// Hidden top-level entries that may be neither read nor written.
	hidden []string
}

// Open returns a sandbox rooted at the absolute, symlink-resolved form of
// root (the working directory when root is empty). .git is hidden.
func Open(root string) (*Sandbox, error) {
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		root = wd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if r, err := filepath.EvalSymlinks(abs); err == nil {
		abs = r
	}
	return &Sandbox{root: abs, hidden: []string{".git"}}, nil
}

func (s *Sandbox) Root() string { return s.root }

// Path maps rel to an absolute path inside the root. Absolute inputs, parent
// traversal and symlink escapes are rejected for both modes, as is anything
// hidden. Writes are further refused on the root itself and on directories.
func (s *Sandbox) Path(rel string, access Access) (string, error) {
	if filepath.IsAbs(rel) {
		return "", PathError{Code: CodeOutside, Message: "absolute paths are not allowed"}
	}
	abs, err := s.realpath(filepath.Join(s.root, filepath.Clean(rel)))
	if err != nil {
		return "", err
	}
	inner, ok := s.within(abs)
	if !ok {
		return "", PathError{Code: CodeOutside, Message: "path resolves outside the working directory"}
	}
	if s.isHidden(inner) {
		if access == Write {
			return "", PathError{Code: CodeDeniedWrite, Message: "writes under " + firstElem(inner) + "/ are not allowed"}
		}
		return "", PathError{Code: CodeDeniedRead, Message: "reads under " + firstElem(inner) + "/ are not allowed"}
	}
	if access == Write {
		if inner == "." {
			return "", PathError{Code: CodeDeniedWrite, Message: "cannot write to the working directory itself"}
		}
		if fi, err := os.Stat(abs); err == nil && fi.IsDir() {
			return "", PathError{Code: CodeNotAFile, Message: "path is a directory"}
		}
	}
	return abs, nil
}

// realpath resolves symlinks in the longest existing prefix of p and joins the
// missing tail back on, so a path that does not exist yet is still checked
// against where its nearest existing ancestor really lives.
func (s *Sandbox) realpath(p string) (string, error) {
	var tail []string
	cur := p
	for {
		r, err := filepath.EvalSymlinks(cur)
		if err == nil {
			return filepath.Join(append([]string{r}, tail...)...), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		if _, lerr := os.Lstat(cur); lerr == nil {
			// A dangling link would be followed on create.
			return "", PathError{Code: CodeOutside, Message: "path goes through a dangling symlink"}
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return p, nil
		}
		tail = append([]string{filepath.Base(cur)}, tail...)
		cur = parent
	}
}

// within reports p relative to the root, and whether it stays inside.
func (s *Sandbox) within(p string) (string, bool) {
	r, err := filepath.Rel(s.root, p)
	if err != nil || filepath.IsAbs(r) || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(r), true
}

func (s *Sandbox) isHidden(inner string) bool {
	first := firstElem(inner)
	for _, h := range s.hidden {
		if first == h {
			return true
		}
	}
	return false
}

func firstElem(slashPath string) string {
	first, _, _ := strings.Cut(slashPath, "/")
	return first
}
