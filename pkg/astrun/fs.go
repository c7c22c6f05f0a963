package astrun

import (
	"path"
	"sort"
	"strings"
)

// Entry is a node in the virtual filesystem: a Dir or a File.
type Entry interface {
	entry()
}

// Dir maps names to entries.
type Dir map[string]Entry

// File holds the contents of a regular file.
type File []byte

func (Dir) entry()  {}
func (File) entry() {}

// Names returns the sorted names in d.
func (d Dir) Names() []string {
	names := make([]string, 0, len(d))
	for k := range d {
		names = append(names, k)
	}

	sort.Strings(names)

	return names
}

// Walk follows parts from d. It fails if a segment is missing or passes
// through a file.
func (d Dir) Walk(parts []string) (Entry, bool) {
	var cur Entry = d

	for _, p := range parts {
		dir, ok := cur.(Dir)
		if !ok {
			return nil, false
		}

		cur, ok = dir[p]
		if !ok {
			return nil, false
		}
	}

	return cur, true
}

// Paths lists every entry below d as an absolute path, directories with a
// trailing slash. The result is sorted.
func (d Dir) Paths() []string {
	var out []string

	var walk func(prefix string, d Dir)
	walk = func(prefix string, d Dir) {
		for _, name := range d.Names() {
			p := path.Join(prefix, name)

			switch e := d[name].(type) {
			case Dir:
				out = append(out, p+"/")
				walk(p, e)
			case File:
				out = append(out, p)
			}
		}
	}

	walk("/", d)

	return out
}

func clone(e Entry) Entry {
	switch e := e.(type) {
	case Dir:
		out := make(Dir, len(e))
		for k, v := range e {
			out[k] = clone(v)
		}

		return out
	case File:
		out := make(File, len(e))
		copy(out, e)

		return out
	default:
		return nil
	}
}

// split turns a cleaned absolute path into its segments.
func split(abs string) []string {
	trimmed := strings.Trim(abs, "/")
	if trimmed == "" {
		return nil
	}

	return strings.Split(trimmed, "/")
}
