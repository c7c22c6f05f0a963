package astrun

import (
	"bytes"
	"context"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-hclog"
	"github.com/lab47/cibuild/pkg/ast"
	"github.com/lab47/cibuild/pkg/event"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, r *Runner, stmt ast.Statement) {
	t.Helper()

	err := r.Run(stmt)
	require.NoError(t, err, spew.Sdump(r.Commands, r.Root))
}

func TestRunner(t *testing.T) {
	t.Run("starts in /home/travis", func(t *testing.T) {
		r := New()

		assert.Equal(t, "/home/travis", r.WorkingDir)
		assert.True(t, r.IsDir("/home/travis"))
		assert.True(t, r.IsDir("/home"))
		assert.Empty(t, r.Commands)
	})

	t.Run("takes the branch matching the condition", func(t *testing.T) {
		r := NewEmpty("/")

		run(t, r, ast.Block(
			ast.Cmd(ast.MakeDir{Path: "/a"}),
			ast.IfElse(ast.IsDirectory{Path: "/a"},
				ast.Cmd(ast.Echo{Text: "yes"}),
				ast.Cmd(ast.Echo{Text: "no"})),
		))

		assert.True(t, r.Ran("echo yes"), r.String())
		assert.False(t, r.Ran("echo no"), r.String())
	})

	t.Run("writes files relative to the working directory", func(t *testing.T) {
		r := NewEmpty("/home")

		body := []byte("some\x00bytes\n")

		run(t, r, ast.Block(
			ast.Cmd(ast.ChangeDir{Path: "build"}),
			ast.Cmd(ast.WriteFile{Path: "f.txt", Data: body}),
		))

		assert.Equal(t, "/home/build", r.WorkingDir)

		data, ok := r.ReadFile("/home/build/f.txt")
		require.True(t, ok, r.String())
		assert.Equal(t, body, data)
	})

	t.Run("logs commands with their options", func(t *testing.T) {
		r := New()

		opts := []ast.CommandOption{ast.EchoOption{}, ast.AssertOption{}}

		run(t, r, ast.Block(
			ast.Cmd(ast.Raw{Text: "make test"}, opts...),
			ast.Cmd(ast.Echo{Text: "hi there"}),
			ast.Cmd(ast.Newline{}),
		))

		expected := []Executed{
			{Command: "make test", Options: opts},
			{Command: "echo hi there"},
			{Command: "echo"},
		}

		assert.Empty(t, cmp.Diff(expected, r.Commands))
	})

	t.Run("does not enforce assert", func(t *testing.T) {
		r := New()

		run(t, r, ast.Block(
			ast.Cmd(ast.Raw{Text: "false"}, ast.AssertOption{}),
			ast.Cmd(ast.Raw{Text: "after"}),
		))

		assert.True(t, r.Ran("after"))
	})

	t.Run("exports variables", func(t *testing.T) {
		r := New()

		run(t, r, ast.Block(ast.Set("CI", "true"), ast.Set("CI", "yes"), ast.Set("X", "a b")))

		assert.Equal(t, map[string]string{"CI": "yes", "X": "a b"}, r.Env)
	})

	t.Run("runs fold bodies", func(t *testing.T) {
		r := New()

		run(t, r, ast.MustFold("stage", ast.Cmd(ast.Raw{Text: "inside"})))

		assert.True(t, r.Ran("inside"))
	})

	t.Run("resolves absolute and dotted paths", func(t *testing.T) {
		r := New()

		assert.Equal(t, "/etc", r.Resolve("/etc"))
		assert.Equal(t, "/home/travis/a/b", r.Resolve("a/./b"))
		assert.Equal(t, "/home/x", r.Resolve("../x"))
	})

	t.Run("zero runner is usable", func(t *testing.T) {
		var r Runner

		run(t, &r, ast.Block(
			ast.Set("CI", "true"),
			ast.Cmd(ast.MakeDir{Path: "a/b"}),
			ast.Cmd(ast.WriteFile{Path: "a/b/f", Data: []byte("x")}),
		))

		assert.Equal(t, "true", r.Env["CI"])
		assert.True(t, r.IsFile("/a/b/f"))

		var direct Runner
		require.NoError(t, direct.MakeDir("/d"))
		assert.True(t, direct.IsDir("/d"))
	})

	t.Run("uses the logger of each context", func(t *testing.T) {
		var first, second bytes.Buffer

		ctxFor := func(buf *bytes.Buffer) context.Context {
			return hclog.WithContext(context.Background(), hclog.New(&hclog.LoggerOptions{
				Level:  hclog.Debug,
				Output: buf,
			}))
		}

		r := New()

		stmt := ast.Cmd(ast.ChangeDir{Path: "/missing"})

		require.NoError(t, r.RunContext(ctxFor(&first), stmt))
		require.NoError(t, r.RunContext(ctxFor(&second), stmt))

		assert.Contains(t, first.String(), "does not exist")
		assert.Contains(t, second.String(), "does not exist")
		assert.Nil(t, r.L)
	})

	t.Run("changes into absolute paths", func(t *testing.T) {
		r := New()

		run(t, r, ast.Block(ast.Cmd(ast.ChangeDir{Path: "/tmp"}), ast.Cmd(ast.ChangeDir{Path: "x"})))

		assert.Equal(t, "/tmp/x", r.WorkingDir)
	})
}

func TestRunnerFilesystem(t *testing.T) {
	t.Run("mkdir creates parents", func(t *testing.T) {
		r := NewEmpty("/")

		run(t, r, ast.Cmd(ast.MakeDir{Path: "a/b/c"}))

		assert.Equal(t, []string{"/a/", "/a/b/", "/a/b/c/"}, r.Root.Paths())
	})

	t.Run("mkdir through a file fails", func(t *testing.T) {
		r := NewEmpty("/")

		require.NoError(t, r.PutFile("/a", []byte("x")))

		err := r.Run(ast.Cmd(ast.MakeDir{Path: "/a/b"}))
		assert.True(t, errors.Is(err, ErrNotDirectory))
	})

	t.Run("writing over a directory fails", func(t *testing.T) {
		r := NewEmpty("/")

		require.NoError(t, r.MakeDir("/a"))

		err := r.Run(ast.Cmd(ast.WriteFile{Path: "/a", Data: []byte("x")}))
		assert.True(t, errors.Is(err, ErrIsDirectory))
	})

	t.Run("copies directories recursively", func(t *testing.T) {
		r := NewEmpty("/")

		require.NoError(t, r.PutFile("/src/a.txt", []byte("a")))
		require.NoError(t, r.PutFile("/src/sub/b.txt", []byte("b")))

		run(t, r, ast.Cmd(ast.CopyFile{From: "/src", To: "/dst"}))

		assert.Equal(t, []string{
			"/dst/", "/dst/a.txt", "/dst/sub/", "/dst/sub/b.txt",
			"/src/", "/src/a.txt", "/src/sub/", "/src/sub/b.txt",
		}, r.Root.Paths())

		require.NoError(t, r.PutFile("/src/a.txt", []byte("changed")))

		data, ok := r.ReadFile("/dst/a.txt")
		require.True(t, ok)
		assert.Equal(t, []byte("a"), data)
	})

	t.Run("copies into an existing directory", func(t *testing.T) {
		r := NewEmpty("/")

		require.NoError(t, r.PutFile("/f", []byte("x")))
		require.NoError(t, r.MakeDir("/d"))

		run(t, r, ast.Cmd(ast.CopyFile{From: "/f", To: "/d"}))

		assert.True(t, r.IsFile("/d/f"))
		assert.True(t, r.IsFile("/f"))
	})

	t.Run("copying a missing file fails", func(t *testing.T) {
		r := NewEmpty("/")

		err := r.Run(ast.Cmd(ast.CopyFile{From: "/nope", To: "/x"}))
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("copying into a missing directory fails", func(t *testing.T) {
		r := NewEmpty("/")

		require.NoError(t, r.PutFile("/f", []byte("x")))

		err := r.Run(ast.Cmd(ast.CopyFile{From: "/f", To: "/no/where"}))
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("moves entries", func(t *testing.T) {
		r := NewEmpty("/")

		require.NoError(t, r.PutFile("/a/f", []byte("x")))

		run(t, r, ast.Cmd(ast.MoveFile{From: "/a", To: "/b"}))

		assert.False(t, r.Exists("/a"))
		assert.True(t, r.IsFile("/b/f"))
	})

	t.Run("refuses to move a directory into itself", func(t *testing.T) {
		r := NewEmpty("/")

		require.NoError(t, r.MakeDir("/a/b"))

		err := r.Run(ast.Cmd(ast.MoveFile{From: "/a", To: "/a/b"}))
		assert.True(t, errors.Is(err, ErrMoveIntoSelf))
		assert.True(t, r.IsDir("/a/b"))
	})

	t.Run("removes recursively and ignores missing paths", func(t *testing.T) {
		r := NewEmpty("/")

		require.NoError(t, r.PutFile("/a/b/c", []byte("x")))

		run(t, r, ast.Block(
			ast.Cmd(ast.RemoveFile{Path: "/a"}),
			ast.Cmd(ast.RemoveFile{Path: "/never/was"}),
		))

		assert.Empty(t, r.Root.Paths())
	})

	t.Run("refuses to move a file onto a directory", func(t *testing.T) {
		r := NewEmpty("/")

		require.NoError(t, r.PutFile("/f", []byte("x")))
		require.NoError(t, r.PutFile("/d/f/keep", []byte("k")))

		err := r.Run(ast.Cmd(ast.MoveFile{From: "/f", To: "/d"}))
		assert.True(t, errors.Is(err, ErrIsDirectory))

		assert.True(t, r.IsFile("/f"))
		assert.True(t, r.IsFile("/d/f/keep"))
	})

	t.Run("refuses to copy a file onto a directory", func(t *testing.T) {
		r := NewEmpty("/")

		require.NoError(t, r.PutFile("/f", []byte("x")))
		require.NoError(t, r.PutFile("/d/f/keep", []byte("k")))

		err := r.Run(ast.Cmd(ast.CopyFile{From: "/f", To: "/d"}))
		assert.True(t, errors.Is(err, ErrIsDirectory))
		assert.True(t, r.IsFile("/d/f/keep"))
	})

	t.Run("merges a copied directory into an existing one", func(t *testing.T) {
		r := NewEmpty("/")

		require.NoError(t, r.PutFile("/a/x", []byte("new")))
		require.NoError(t, r.PutFile("/a/sub/y", []byte("y")))
		require.NoError(t, r.PutFile("/b/a/old", []byte("old")))
		require.NoError(t, r.PutFile("/b/a/x", []byte("stale")))
		require.NoError(t, r.PutFile("/b/a/sub/z", []byte("z")))

		run(t, r, ast.Cmd(ast.CopyFile{From: "/a", To: "/b"}))

		assert.Equal(t, []string{
			"/a/", "/a/sub/", "/a/sub/y", "/a/x",
			"/b/", "/b/a/", "/b/a/old", "/b/a/sub/", "/b/a/sub/y", "/b/a/sub/z", "/b/a/x",
		}, r.Root.Paths())

		data, ok := r.ReadFile("/b/a/x")
		require.True(t, ok)
		assert.Equal(t, []byte("new"), data)

		require.NoError(t, r.PutFile("/a/sub/y", []byte("changed")))

		data, ok = r.ReadFile("/b/a/sub/y")
		require.True(t, ok)
		assert.Equal(t, []byte("y"), data)
	})

	t.Run("refuses to copy a directory into itself", func(t *testing.T) {
		r := NewEmpty("/")

		require.NoError(t, r.MakeDir("/a/sub"))

		err := r.Run(ast.Cmd(ast.CopyFile{From: "/a", To: "/a/sub"}))
		assert.True(t, errors.Is(err, ErrCopyIntoSelf))

		assert.Equal(t, []string{"/a/", "/a/sub/"}, r.Root.Paths())
	})

	t.Run("snapshots are independent", func(t *testing.T) {
		r := NewEmpty("/")

		require.NoError(t, r.PutFile("/f", []byte("x")))

		snap := r.Snapshot()

		require.NoError(t, r.PutFile("/f", []byte("y")))
		require.NoError(t, r.MakeDir("/d"))

		assert.Equal(t, Dir{"f": File("x")}, snap)
	})
}

func TestRunnerConditions(t *testing.T) {
	r := NewEmpty("/")

	require.NoError(t, r.PutFile("/dir/file", []byte("x")))

	cases := []struct {
		cond     ast.Condition
		expected bool
	}{
		{ast.PathExists{Path: "/dir"}, true},
		{ast.PathExists{Path: "/dir/file"}, true},
		{ast.PathExists{Path: "/dir/file/below"}, false},
		{ast.PathExists{Path: "/missing/file"}, false},
		{ast.IsDirectory{Path: "/dir"}, true},
		{ast.IsDirectory{Path: "/dir/file"}, false},
		{ast.IsFile{Path: "dir/file"}, true},
		{ast.IsFile{Path: "/dir"}, false},
		{ast.And{A: ast.IsDirectory{Path: "/dir"}, B: ast.IsFile{Path: "/dir/file"}}, true},
		{ast.And{A: ast.IsDirectory{Path: "/dir"}, B: ast.IsFile{Path: "/nope"}}, false},
		{ast.Or{A: ast.IsFile{Path: "/nope"}, B: ast.IsFile{Path: "/dir/file"}}, true},
		{ast.Negate(ast.PathExists{Path: "/nope"}), true},
		{ast.Negate(ast.Negate(ast.PathExists{Path: "/nope"})), false},
	}

	for _, c := range cases {
		v, err := r.Eval(c.cond)
		require.NoError(t, err)

		assert.Equal(t, c.expected, v, spew.Sdump(c.cond))
	}

	t.Run("command conditions are unsupported", func(t *testing.T) {
		_, err := r.Eval(ast.CommandSucceeds{Command: ast.Raw{Text: "true"}})
		assert.True(t, errors.Is(err, ErrUnsupportedCondition))

		err = r.Run(ast.IfThen(ast.CommandSucceeds{Command: ast.Raw{Text: "true"}}, ast.Cmd(ast.Raw{Text: "x"})))
		assert.True(t, errors.Is(err, ErrUnsupportedCondition))
		assert.False(t, r.Ran("x"))
	})

	t.Run("and evaluates both sides", func(t *testing.T) {
		_, err := r.Eval(ast.And{
			A: ast.IsFile{Path: "/nope"},
			B: ast.CommandSucceeds{Command: ast.Raw{Text: "true"}},
		})
		assert.True(t, errors.Is(err, ErrUnsupportedCondition))

		_, err = r.Eval(ast.Or{
			A: ast.IsFile{Path: "/dir/file"},
			B: ast.CommandSucceeds{Command: ast.Raw{Text: "true"}},
		})
		assert.True(t, errors.Is(err, ErrUnsupportedCondition))
	})

	t.Run("rejects unrepresentable paths", func(t *testing.T) {
		_, err := r.Eval(ast.IsFile{Path: "bad\xff"})
		assert.True(t, errors.Is(err, ast.ErrInvalidPath))

		err = r.Run(ast.Cmd(ast.MakeDir{Path: "nul\x00"}))
		assert.True(t, errors.Is(err, ast.ErrInvalidPath))
	})
}

func TestRunnerEvents(t *testing.T) {
	l, events := event.Collect()

	ctx := event.SetContext(context.Background(), l)

	r := New()

	err := r.RunContext(ctx, ast.MustFold("setup", ast.Block(
		ast.Cmd(ast.MakeDir{Path: "build"}),
		ast.Set("CI", "true"),
		ast.Cmd(ast.Raw{Text: "make"}, ast.EchoOption{}),
	)))
	require.NoError(t, err)

	var types []string
	for _, ev := range *events {
		types = append(types, ev.EventType())
	}

	assert.Equal(t, []string{"fold", "file", "env", "command", "fold"}, types)

	cmd, ok := (*events)[3].(*event.CommandEvent)
	require.True(t, ok)
	assert.Equal(t, "make", cmd.Command)
	assert.True(t, cmd.Echo)
}
