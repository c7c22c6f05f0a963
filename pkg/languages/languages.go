// Package languages holds the per-ecosystem stages of a build script.
package languages

import (
	"github.com/lab47/cibuild/pkg/ast"
	"github.com/lab47/cibuild/pkg/payload"
	"github.com/pkg/errors"
)

var ErrUnknownLanguage = errors.New("unknown language")

// Language returns the statements for each custom stage of a job. A stage
// with nothing to do returns ast.Noop.
type Language interface {
	Name() string
	Setup() ast.Statement
	Announce() ast.Statement
	Install() ast.Statement
	Script() ast.Statement
}

// Base implements every stage as ast.Noop. Languages embed it and override
// the stages they need.
type Base struct{}

func (Base) Setup() ast.Statement    { return ast.Noop }
func (Base) Announce() ast.Statement { return ast.Noop }
func (Base) Install() ast.Statement  { return ast.Noop }
func (Base) Script() ast.Statement   { return ast.Noop }

type factory func(p *payload.Payload) Language

var registry = map[string]factory{
	"generic": func(p *payload.Payload) Language { return &Generic{} },
	"rust":    func(p *payload.Payload) Language { return &Rust{Payload: p} },
}

// ForPayload picks the language named by config.language. A job without a
// language gets Generic.
func ForPayload(p *payload.Payload) (Language, error) {
	name := p.Config.Language
	if name == "" {
		name = "generic"
	}

	f, ok := registry[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownLanguage, "%s", name)
	}

	return f(p), nil
}

// Known returns whether ForPayload supports name.
func Known(name string) bool {
	_, ok := registry[name]
	return ok
}
