package ast

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

var ErrInvalidPath = errors.New("path cannot be represented as text")

// PathError records an operation on a path that cannot be written into a
// script.
type PathError struct {
	Op   string
	Path string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Op, e.Path, ErrInvalidPath)
}

func (e *PathError) Unwrap() error {
	return ErrInvalidPath
}

// CheckPath returns a *PathError when path contains a NUL byte or is not
// valid UTF-8.
func CheckPath(op, path string) error {
	if !utf8.ValidString(path) || strings.IndexByte(path, 0) != -1 {
		return &PathError{Op: op, Path: path}
	}

	return nil
}
