package ast

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var ErrInvalidFoldName = errors.New("invalid fold name")

// Block creates a Sequence of the given statements.
//
//   stmt := ast.Block(
//       ast.Cmd(ast.Rawf("echo -n hello")),
//       ast.Cmd(ast.Rawf("echo world")),
//   )
func Block(stmts ...Statement) Statement {
	out := make([]Statement, len(stmts))
	copy(out, stmts)

	return Sequence{Statements: out}
}

// Cmd wraps c in an Action with the given options.
func Cmd(c Command, opts ...CommandOption) Statement {
	var copts []CommandOption
	if len(opts) > 0 {
		copts = make([]CommandOption, len(opts))
		copy(copts, opts)
	}

	return Action{Command: c, Options: copts}
}

// Rawf formats a Raw command.
func Rawf(format string, args ...interface{}) Command {
	if len(args) == 0 {
		return Raw{Text: format}
	}

	return Raw{Text: fmt.Sprintf(format, args...)}
}

// Set exports key=value.
func Set(key, value string) Statement {
	return Cmd(SetEnv{Key: key, Value: value})
}

// IfThen runs stmts when cond holds.
func IfThen(cond Condition, stmts ...Statement) Statement {
	return If{Cond: cond, Then: Block(stmts...), Else: Noop}
}

// IfElse runs then when cond holds and otherwise runs els.
func IfElse(cond Condition, then, els Statement) Statement {
	if els == nil {
		els = Noop
	}

	return If{Cond: cond, Then: then, Else: els}
}

// Negate wraps cond in a Not.
func Negate(cond Condition) Condition {
	return Not{Cond: cond}
}

// ValidFoldName checks that name can be written on a fold marker line.
func ValidFoldName(name string) error {
	if name == "" {
		return errors.Wrap(ErrInvalidFoldName, "fold name is empty")
	}

	if strings.ContainsAny(name, "\r\n") {
		return errors.Wrapf(ErrInvalidFoldName, "fold name contains a newline: %q", name)
	}

	return nil
}

// NewFold groups body under name.
func NewFold(name string, body Statement) (Statement, error) {
	if err := ValidFoldName(name); err != nil {
		return nil, err
	}

	if body == nil {
		body = Noop
	}

	return Fold{Name: name, Body: body}, nil
}

// MustFold is NewFold for names known at compile time.
func MustFold(name string, body Statement) Statement {
	f, err := NewFold(name, body)
	if err != nil {
		panic(err)
	}

	return f
}
