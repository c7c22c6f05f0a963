package ast

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilders(t *testing.T) {
	t.Run("block copies its input", func(t *testing.T) {
		stmts := []Statement{Cmd(Rawf("a")), Cmd(Rawf("b"))}

		b := Block(stmts...)

		stmts[0] = Noop

		seq, ok := b.(Sequence)
		require.True(t, ok)

		assert.Equal(t, Cmd(Rawf("a")), seq.Statements[0])
	})

	t.Run("rawf leaves percent signs alone without args", func(t *testing.T) {
		sedCmd := "sed -e 's/^%.*//'"
		assert.Equal(t, Raw{Text: "sed -e 's/^%.*//'"}, Rawf(sedCmd))
		assert.Equal(t, Raw{Text: "git clone --depth=50"}, Rawf("git clone --depth=%d", 50))
	})

	t.Run("set builds an env action", func(t *testing.T) {
		assert.Equal(t, Action{Command: SetEnv{Key: "CI", Value: "true"}}, Set("CI", "true"))
	})

	t.Run("ifthen has a noop else", func(t *testing.T) {
		stmt := IfThen(IsFile{Path: ".gitmodules"}, Cmd(Rawf("git submodule init")))

		i, ok := stmt.(If)
		require.True(t, ok)

		assert.True(t, IsNoop(i.Else))
	})

	t.Run("negate does not collapse double negation", func(t *testing.T) {
		c := Negate(Negate(PathExists{Path: "x"}))

		diff := cmp.Diff(Not{Cond: Not{Cond: PathExists{Path: "x"}}}, c)
		assert.Empty(t, diff)
	})

	t.Run("options are queried as a set", func(t *testing.T) {
		opts := []CommandOption{AssertOption{}, DisplayOption{Text: "hi"}}

		assert.False(t, HasEcho(opts))
		assert.True(t, HasAssert(opts))

		text, ok := Display(opts)
		assert.True(t, ok)
		assert.Equal(t, "hi", text)

		_, ok = Display(nil)
		assert.False(t, ok)
	})

	t.Run("nil counts as a noop", func(t *testing.T) {
		assert.True(t, IsNoop(nil))
		assert.True(t, IsNoop(Noop))
		assert.False(t, IsNoop(Block()))
	})
}

func TestFold(t *testing.T) {
	t.Run("accepts a plain name", func(t *testing.T) {
		f, err := NewFold("git.checkout", Noop)
		require.NoError(t, err)

		assert.Equal(t, Fold{Name: "git.checkout", Body: Noop}, f)
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		_, err := NewFold("", Noop)
		assert.True(t, errors.Is(err, ErrInvalidFoldName))
	})

	t.Run("rejects names with newlines", func(t *testing.T) {
		_, err := NewFold("a\nb", Noop)
		assert.True(t, errors.Is(err, ErrInvalidFoldName))

		assert.Panics(t, func() {
			MustFold("a\rb", Noop)
		})
	})
}

func TestCheckPath(t *testing.T) {
	t.Run("accepts ordinary paths", func(t *testing.T) {
		assert.NoError(t, CheckPath("cd", "path/to/some where"))
		assert.NoError(t, CheckPath("cd", "/ünïcode"))
	})

	t.Run("rejects invalid utf8 and nul bytes", func(t *testing.T) {
		for _, p := range []string{"bad\xffpath", "nul\x00path"} {
			err := CheckPath("mkdir", p)
			require.Error(t, err)

			var pe *PathError
			require.True(t, errors.As(err, &pe))

			assert.Equal(t, "mkdir", pe.Op)
			assert.Equal(t, p, pe.Path)
			assert.True(t, errors.Is(err, ErrInvalidPath))
		}
	})
}

func TestFingerprint(t *testing.T) {
	tree := func() Statement {
		return Block(
			MustFold("setup", Cmd(MakeDir{Path: "/a"})),
			IfElse(IsDirectory{Path: "/a"},
				Cmd(Echo{Text: "yes"}, EchoOption{}),
				Cmd(Echo{Text: "no"})),
			Cmd(WriteFile{Path: "f", Data: []byte("hello")}),
		)
	}

	t.Run("equal trees share a fingerprint", func(t *testing.T) {
		a, err := Fingerprint(tree())
		require.NoError(t, err)

		b, err := Fingerprint(tree())
		require.NoError(t, err)

		assert.Equal(t, a, b)
		assert.Regexp(t, "^[a-zA-Z0-9]{40,50}$", a)
	})

	t.Run("distinguishes commands with the same text", func(t *testing.T) {
		a, err := Fingerprint(Cmd(Raw{Text: "x"}))
		require.NoError(t, err)

		b, err := Fingerprint(Cmd(Echo{Text: "x"}))
		require.NoError(t, err)

		assert.NotEqual(t, a, b)
	})

	t.Run("options change the fingerprint", func(t *testing.T) {
		a, err := Fingerprint(Cmd(Raw{Text: "x"}))
		require.NoError(t, err)

		b, err := Fingerprint(Cmd(Raw{Text: "x"}, AssertOption{}))
		require.NoError(t, err)

		assert.NotEqual(t, a, b)
	})

	t.Run("string boundaries matter", func(t *testing.T) {
		a, err := Fingerprint(CopyFile{From: "ab", To: "c"})
		require.NoError(t, err)

		b, err := Fingerprint(CopyFile{From: "a", To: "bc"})
		require.NoError(t, err)

		assert.NotEqual(t, a, b)
	})
}
