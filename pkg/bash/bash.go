// Package bash renders script trees to bash.
//
// The output relies on two shell functions defined by the script header:
// travis_cmd runs a command with --echo/--assert/--display= flags, and
// travis_fold prints the start and end markers of a fold.
package bash

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/lab47/cibuild/pkg/ast"
	"github.com/pkg/errors"
)

const (
	CmdFunction  = "travis_cmd"
	FoldFunction = "travis_fold"
)

var ErrUnknownNode = errors.New("unknown node")

// Render returns the bash text for stmt.
func Render(stmt ast.Statement) (string, error) {
	switch s := stmt.(type) {
	case nil, ast.NoopStatement:
		return "", nil
	case ast.Sequence:
		parts := make([]string, 0, len(s.Statements))

		for _, child := range s.Statements {
			if ast.IsNoop(child) {
				continue
			}

			str, err := Render(child)
			if err != nil {
				return "", err
			}

			parts = append(parts, str)
		}

		return strings.Join(parts, "\n"), nil
	case ast.Fold:
		if err := ast.ValidFoldName(s.Name); err != nil {
			return "", err
		}

		body, err := Render(s.Body)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("%[1]s start %[2]s\n%[3]s\n%[1]s end %[2]s", FoldFunction, s.Name, body), nil
	case ast.Action:
		return renderAction(s)
	case ast.If:
		return renderIf(s)
	default:
		return "", errors.Wrapf(ErrUnknownNode, "statement %T", stmt)
	}
}

func renderAction(a ast.Action) (string, error) {
	cmd, err := RenderCommand(a.Command)
	if err != nil {
		return "", err
	}

	var sb strings.Builder

	sb.WriteString(CmdFunction)
	sb.WriteByte(' ')
	sb.WriteString(Escape(cmd))

	if ast.HasEcho(a.Options) {
		sb.WriteString(" --echo")
	}

	if text, ok := ast.Display(a.Options); ok {
		sb.WriteString(" --display=")
		sb.WriteString(Escape(text))
	}

	if ast.HasAssert(a.Options) {
		sb.WriteString(" --assert")
	}

	return sb.String(), nil
}

func renderIf(i ast.If) (string, error) {
	cond, err := RenderCondition(i.Cond)
	if err != nil {
		return "", err
	}

	then, err := Render(i.Then)
	if err != nil {
		return "", err
	}

	if ast.IsNoop(i.Else) {
		return fmt.Sprintf("if %s; then\n%s\nfi", cond, Indent(then)), nil
	}

	els, err := Render(i.Else)
	if err != nil {
		return "", err
	}

	// A nested If continues as "elif"; its whole block, fi included, is
	// indented one level.
	if _, ok := i.Else.(ast.If); ok {
		return fmt.Sprintf("if %s; then\n%s\nel%s", cond, Indent(then), Indent(els)), nil
	}

	return fmt.Sprintf("if %s; then\n%s\nelse\n%s\nfi", cond, Indent(then), Indent(els)), nil
}

// Indent prefixes every line of input with two spaces.
func Indent(input string) string {
	lines := strings.Split(input, "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}

	return strings.Join(lines, "\n")
}

func path(op, p string) (string, error) {
	if err := ast.CheckPath(op, p); err != nil {
		return "", err
	}

	return Escape(p), nil
}

func paths(op, from, to string) (string, string, error) {
	f, err := path(op, from)
	if err != nil {
		return "", "", err
	}

	t, err := path(op, to)
	if err != nil {
		return "", "", err
	}

	return f, t, nil
}

// RenderCommand returns the shell command for c, unescaped.
func RenderCommand(c ast.Command) (string, error) {
	switch c := c.(type) {
	case ast.Raw:
		return c.Text, nil
	case ast.Echo:
		return "echo " + c.Text, nil
	case ast.Newline:
		return "echo", nil
	case ast.SetEnv:
		return fmt.Sprintf("export %s=%s", c.Key, Escape(c.Value)), nil
	case ast.ChangeDir:
		p, err := path("cd", c.Path)
		if err != nil {
			return "", err
		}

		return "cd " + p, nil
	case ast.WriteFile:
		p, err := path("write", c.Path)
		if err != nil {
			return "", err
		}

		body := base64.StdEncoding.EncodeToString(c.Data)

		return fmt.Sprintf("base64 --decode > %s <<<%s", p, Escape(body)), nil
	case ast.MakeDir:
		p, err := path("mkdir", c.Path)
		if err != nil {
			return "", err
		}

		return "mkdir -p " + p, nil
	case ast.CopyFile:
		f, t, err := paths("cp", c.From, c.To)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("cp -r %s %s", f, t), nil
	case ast.MoveFile:
		f, t, err := paths("mv", c.From, c.To)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("mv %s %s", f, t), nil
	case ast.RemoveFile:
		p, err := path("rm", c.Path)
		if err != nil {
			return "", err
		}

		return "rm -rf " + p, nil
	default:
		return "", errors.Wrapf(ErrUnknownNode, "command %T", c)
	}
}

// RenderCondition returns the bash test for c.
func RenderCondition(c ast.Condition) (string, error) {
	switch c := c.(type) {
	case ast.PathExists:
		return test("-e", c.Path)
	case ast.IsDirectory:
		return test("-d", c.Path)
	case ast.IsFile:
		return test("-f", c.Path)
	case ast.CommandSucceeds:
		return RenderCommand(c.Command)
	case ast.And:
		return binary(c.A, "&&", c.B)
	case ast.Or:
		return binary(c.A, "||", c.B)
	case ast.Not:
		inner, err := RenderCondition(c.Cond)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("{ ! %s; }", inner), nil
	default:
		return "", errors.Wrapf(ErrUnknownNode, "condition %T", c)
	}
}

func test(flag, p string) (string, error) {
	ep, err := path("test "+flag, p)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("[[ %s %s ]]", flag, ep), nil
}

func binary(a ast.Condition, op string, b ast.Condition) (string, error) {
	l, err := RenderCondition(a)
	if err != nil {
		return "", err
	}

	r, err := RenderCondition(b)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("{ %s %s %s; }", l, op, r), nil
}
