// Package astrun executes script trees against an in-memory environment.
//
// The Runner never touches the real filesystem or starts a process. It keeps
// a virtual directory tree, a working directory, the exported environment
// and a log of every command that would have been handed to the shell, so
// that tests can check what a script does without matching on bash text.
//
// Conditions that need a real process (ast.CommandSucceeds) cannot be
// evaluated here; running into one is an error, never a guess.
package astrun

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/lab47/cibuild/pkg/ast"
	"github.com/lab47/cibuild/pkg/event"
	"github.com/pkg/errors"
)

var (
	ErrUnsupportedCondition = errors.New("condition cannot be evaluated in memory")
	ErrUnsupportedCommand   = errors.New("command has no in-memory semantics")
	ErrUnsupportedStatement = errors.New("unknown statement")
	ErrNotDirectory         = errors.New("not a directory")
	ErrIsDirectory          = errors.New("is a directory")
	ErrNotFound             = errors.New("no such file or directory")
	ErrMoveIntoSelf         = errors.New("cannot move a directory into itself")
	ErrCopyIntoSelf         = errors.New("cannot copy a directory into itself")
)

// DefaultWorkingDir is where New starts.
const DefaultWorkingDir = "/home/travis"

// Executed is one logged command. Options are recorded as given; the runner
// does not act on them.
type Executed struct {
	Command string
	Options []ast.CommandOption
}

func (e Executed) String() string {
	return e.Command
}

// Runner is usually made with New or NewEmpty. A zero Runner is ready to
// use, starting at / with an empty filesystem.
type Runner struct {
	L hclog.Logger

	Root       Dir
	WorkingDir string
	Env        map[string]string
	Commands   []Executed

	listener *event.Listener
}

// New returns a Runner whose filesystem contains /home/travis, which is
// also the working directory.
func New() *Runner {
	r := NewEmpty(DefaultWorkingDir)

	err := r.MakeDir(DefaultWorkingDir)
	if err != nil {
		panic(err)
	}

	return r
}

// NewEmpty returns a Runner with an empty filesystem and cwd as the working
// directory.
func NewEmpty(cwd string) *Runner {
	if cwd == "" {
		cwd = "/"
	}

	return &Runner{
		Root:       make(Dir),
		WorkingDir: path.Clean("/" + cwd),
		Env:        make(map[string]string),
	}
}

func (r *Runner) logger() hclog.Logger {
	if r.L == nil {
		return hclog.NewNullLogger()
	}

	return r.L
}

// setup fills in the maps of a zero Runner, which starts at / with an
// empty filesystem.
func (r *Runner) setup() {
	if r.Root == nil {
		r.Root = make(Dir)
	}

	if r.Env == nil {
		r.Env = make(map[string]string)
	}
}

// Run executes stmt.
func (r *Runner) Run(stmt ast.Statement) error {
	r.setup()
	return r.runStatement(stmt)
}

// RunContext executes stmt, firing events to the event.Listener in ctx and
// logging to the hclog.Logger in ctx when the Runner has none of its own.
func (r *Runner) RunContext(ctx context.Context, stmt ast.Statement) error {
	r.setup()

	if r.L == nil {
		r.L = hclog.FromContext(ctx).Named("astrun")

		defer func() {
			r.L = nil
		}()
	}

	prev := r.listener
	r.listener = event.FromContext(ctx)

	defer func() {
		r.listener = prev
	}()

	return r.runStatement(stmt)
}

func (r *Runner) runStatement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case nil, ast.NoopStatement:
		return nil
	case ast.Sequence:
		for _, child := range s.Statements {
			err := r.runStatement(child)
			if err != nil {
				return err
			}
		}

		return nil
	case ast.Fold:
		r.listener.Fire(&event.FoldEvent{Name: s.Name, Start: true})

		err := r.runStatement(s.Body)
		if err != nil {
			return err
		}

		r.listener.Fire(&event.FoldEvent{Name: s.Name})

		return nil
	case ast.Action:
		return r.runCommand(s.Command, s.Options)
	case ast.If:
		ok, err := r.Eval(s.Cond)
		if err != nil {
			return err
		}

		if ok {
			return r.runStatement(s.Then)
		}

		return r.runStatement(s.Else)
	default:
		return errors.Wrapf(ErrUnsupportedStatement, "%T", stmt)
	}
}

func (r *Runner) logCommand(text string, opts []ast.CommandOption) {
	var copts []ast.CommandOption
	if len(opts) > 0 {
		copts = make([]ast.CommandOption, len(opts))
		copy(copts, opts)
	}

	r.Commands = append(r.Commands, Executed{Command: text, Options: copts})

	display, _ := ast.Display(opts)

	r.listener.Fire(&event.CommandEvent{
		Command: text,
		Echo:    ast.HasEcho(opts),
		Assert:  ast.HasAssert(opts),
		Display: display,
	})
}

func (r *Runner) runCommand(cmd ast.Command, opts []ast.CommandOption) error {
	switch c := cmd.(type) {
	case ast.Raw:
		r.logCommand(c.Text, opts)
	case ast.Echo:
		r.logCommand("echo "+c.Text, opts)
	case ast.Newline:
		r.logCommand("echo", opts)
	case ast.SetEnv:
		r.Env[c.Key] = c.Value
		r.listener.Fire(&event.EnvEvent{Key: c.Key, Value: c.Value})
	case ast.ChangeDir:
		if err := ast.CheckPath("cd", c.Path); err != nil {
			return err
		}

		r.WorkingDir = r.Resolve(c.Path)

		if !r.IsDir(r.WorkingDir) {
			r.logger().Debug("changed into a directory that does not exist", "path", r.WorkingDir)
		}

		r.listener.Fire(&event.FileEvent{Op: "cd", Path: r.WorkingDir})
	case ast.WriteFile:
		if err := ast.CheckPath("write", c.Path); err != nil {
			return err
		}

		return r.PutFile(c.Path, c.Data)
	case ast.MakeDir:
		if err := ast.CheckPath("mkdir", c.Path); err != nil {
			return err
		}

		return r.MakeDir(c.Path)
	case ast.CopyFile:
		if err := checkPaths("cp", c.From, c.To); err != nil {
			return err
		}

		return r.Copy(c.From, c.To)
	case ast.MoveFile:
		if err := checkPaths("mv", c.From, c.To); err != nil {
			return err
		}

		return r.Move(c.From, c.To)
	case ast.RemoveFile:
		if err := ast.CheckPath("rm", c.Path); err != nil {
			return err
		}

		return r.Remove(c.Path)
	default:
		return errors.Wrapf(ErrUnsupportedCommand, "%T", cmd)
	}

	return nil
}

func checkPaths(op, from, to string) error {
	if err := ast.CheckPath(op, from); err != nil {
		return err
	}

	return ast.CheckPath(op, to)
}

// Eval evaluates cond against the current state. Both operands of And and
// Or are always evaluated.
func (r *Runner) Eval(cond ast.Condition) (bool, error) {
	switch c := cond.(type) {
	case ast.PathExists:
		if err := ast.CheckPath("test -e", c.Path); err != nil {
			return false, err
		}

		return r.Exists(c.Path), nil
	case ast.IsDirectory:
		if err := ast.CheckPath("test -d", c.Path); err != nil {
			return false, err
		}

		return r.IsDir(c.Path), nil
	case ast.IsFile:
		if err := ast.CheckPath("test -f", c.Path); err != nil {
			return false, err
		}

		return r.IsFile(c.Path), nil
	case ast.CommandSucceeds:
		return false, errors.Wrapf(ErrUnsupportedCondition, "command %#v", c.Command)
	case ast.And:
		a, b, err := r.evalBoth(c.A, c.B)
		return a && b, err
	case ast.Or:
		a, b, err := r.evalBoth(c.A, c.B)
		return a || b, err
	case ast.Not:
		v, err := r.Eval(c.Cond)
		return !v, err
	default:
		return false, errors.Wrapf(ErrUnsupportedCondition, "%T", cond)
	}
}

func (r *Runner) evalBoth(a, b ast.Condition) (bool, bool, error) {
	av, err := r.Eval(a)
	if err != nil {
		return false, false, err
	}

	bv, err := r.Eval(b)
	if err != nil {
		return false, false, err
	}

	return av, bv, nil
}

// Resolve returns the absolute, cleaned form of p relative to the working
// directory.
func (r *Runner) Resolve(p string) string {
	if path.IsAbs(p) {
		return path.Clean(p)
	}

	cwd := r.WorkingDir
	if cwd == "" {
		cwd = "/"
	}

	return path.Join(cwd, p)
}

// Lookup returns the entry at p.
func (r *Runner) Lookup(p string) (Entry, bool) {
	return r.Root.Walk(split(r.Resolve(p)))
}

func (r *Runner) Exists(p string) bool {
	_, ok := r.Lookup(p)
	return ok
}

func (r *Runner) IsDir(p string) bool {
	e, ok := r.Lookup(p)
	if !ok {
		return false
	}

	_, ok = e.(Dir)
	return ok
}

func (r *Runner) IsFile(p string) bool {
	e, ok := r.Lookup(p)
	if !ok {
		return false
	}

	_, ok = e.(File)
	return ok
}

// ReadFile returns a copy of the contents of the file at p.
func (r *Runner) ReadFile(p string) ([]byte, bool) {
	e, ok := r.Lookup(p)
	if !ok {
		return nil, false
	}

	f, ok := e.(File)
	if !ok {
		return nil, false
	}

	return []byte(clone(f).(File)), true
}

// Snapshot returns a deep copy of the filesystem.
func (r *Runner) Snapshot() Dir {
	return clone(r.Root).(Dir)
}

// Ran reports whether exactly cmd was logged.
func (r *Runner) Ran(cmd string) bool {
	for _, e := range r.Commands {
		if e.Command == cmd {
			return true
		}
	}

	return false
}

// RanPrefix reports whether any logged command starts with prefix.
func (r *Runner) RanPrefix(prefix string) bool {
	for _, e := range r.Commands {
		if strings.HasPrefix(e.Command, prefix) {
			return true
		}
	}

	return false
}

// Find returns the first logged command equal to cmd.
func (r *Runner) Find(cmd string) (Executed, bool) {
	for _, e := range r.Commands {
		if e.Command == cmd {
			return e, true
		}
	}

	return Executed{}, false
}

// mkdirAll creates every missing directory along abs and returns the last.
func (r *Runner) mkdirAll(abs string) (Dir, error) {
	r.setup()

	cur := r.Root

	for i, seg := range split(abs) {
		next, ok := cur[seg]
		if !ok {
			d := make(Dir)
			cur[seg] = d
			cur = d
			continue
		}

		d, ok := next.(Dir)
		if !ok {
			return nil, errors.Wrapf(ErrNotDirectory, "/%s", strings.Join(split(abs)[:i+1], "/"))
		}

		cur = d
	}

	return cur, nil
}

// parent returns the directory holding abs and the final path segment.
func (r *Runner) parent(abs string) (Dir, string, error) {
	dir, name := path.Split(abs)

	e, ok := r.Root.Walk(split(dir))
	if !ok {
		return nil, "", errors.Wrapf(ErrNotFound, "%s", dir)
	}

	d, ok := e.(Dir)
	if !ok {
		return nil, "", errors.Wrapf(ErrNotDirectory, "%s", dir)
	}

	return d, name, nil
}

// MakeDir creates p and any missing parents, like mkdir -p.
func (r *Runner) MakeDir(p string) error {
	abs := r.Resolve(p)

	_, err := r.mkdirAll(abs)
	if err != nil {
		return err
	}

	r.logger().Trace("mkdir", "path", abs)
	r.listener.Fire(&event.FileEvent{Op: "mkdir", Path: abs})

	return nil
}

// PutFile writes data to p, creating missing parent directories.
func (r *Runner) PutFile(p string, data []byte) error {
	abs := r.Resolve(p)
	if abs == "/" {
		return errors.Wrapf(ErrIsDirectory, "%s", abs)
	}

	dir, name := path.Split(abs)

	d, err := r.mkdirAll(dir)
	if err != nil {
		return err
	}

	if _, ok := d[name].(Dir); ok {
		return errors.Wrapf(ErrIsDirectory, "%s", abs)
	}

	d[name] = clone(File(data))

	r.logger().Trace("write file", "path", abs, "size", len(data))
	r.listener.Fire(&event.FileEvent{Op: "write", Path: abs})

	return nil
}

// target works out where from lands when copied or moved to to. Like cp
// and mv, an existing directory at to receives from under its own name.
func (r *Runner) target(from, to string) (Entry, Dir, string, string, error) {
	src := r.Resolve(from)

	e, ok := r.Root.Walk(split(src))
	if !ok {
		return nil, nil, "", "", errors.Wrapf(ErrNotFound, "%s", src)
	}

	dst := r.Resolve(to)
	if existing, ok := r.Root.Walk(split(dst)); ok {
		if _, isDir := existing.(Dir); isDir {
			dst = path.Join(dst, path.Base(src))
		}
	}

	d, name, err := r.parent(dst)
	if err != nil {
		return nil, nil, "", "", err
	}

	if existing, ok := d[name]; ok {
		_, srcDir := e.(Dir)
		_, dstDir := existing.(Dir)

		switch {
		case srcDir && !dstDir:
			return nil, nil, "", "", errors.Wrapf(ErrNotDirectory, "%s", dst)
		case !srcDir && dstDir:
			return nil, nil, "", "", errors.Wrapf(ErrIsDirectory, "%s", dst)
		}
	}

	return e, d, name, dst, nil
}

// merge copies src into dst, replacing files and descending into
// directories both sides have.
func merge(dst, src Dir) {
	for name, e := range src {
		sd, srcDir := e.(Dir)
		dd, dstDir := dst[name].(Dir)

		if srcDir && dstDir {
			merge(dd, sd)
			continue
		}

		dst[name] = clone(e)
	}
}

// Copy recursively copies from to to, like cp -r. A directory landing on
// an existing directory is merged into it.
func (r *Runner) Copy(from, to string) error {
	src := r.Resolve(from)

	e, d, name, dst, err := r.target(from, to)
	if err != nil {
		return err
	}

	sd, srcDir := e.(Dir)

	if srcDir && (dst == src || src == "/" || strings.HasPrefix(dst, src+"/")) {
		return errors.Wrapf(ErrCopyIntoSelf, "%s => %s", src, dst)
	}

	if dd, ok := d[name].(Dir); ok && srcDir {
		merge(dd, sd)
	} else {
		d[name] = clone(e)
	}

	r.listener.Fire(&event.FileEvent{Op: "cp", Path: src, To: dst})

	return nil
}

// Move moves from to to, like mv.
func (r *Runner) Move(from, to string) error {
	src := r.Resolve(from)

	e, d, name, dst, err := r.target(from, to)
	if err != nil {
		return err
	}

	if dst == src {
		return nil
	}

	if src == "/" || strings.HasPrefix(dst, src+"/") {
		return errors.Wrapf(ErrMoveIntoSelf, "%s => %s", src, dst)
	}

	sd, sname, err := r.parent(src)
	if err != nil {
		return err
	}

	delete(sd, sname)
	d[name] = e

	r.listener.Fire(&event.FileEvent{Op: "mv", Path: src, To: dst})

	return nil
}

// Remove deletes p and everything below it, like rm -rf. A missing path is
// not an error.
func (r *Runner) Remove(p string) error {
	abs := r.Resolve(p)

	if abs == "/" {
		r.Root = make(Dir)
	} else {
		d, name, err := r.parent(abs)
		if err == nil {
			delete(d, name)
		}
	}

	r.listener.Fire(&event.FileEvent{Op: "rm", Path: abs})

	return nil
}

// String summarizes the runner state for failure messages.
func (r *Runner) String() string {
	return fmt.Sprintf("cwd=%s commands=%v files=%v", r.WorkingDir, r.Commands, r.Root.Paths())
}
