package languages

import (
	"github.com/lab47/cibuild/pkg/ast"
	"github.com/lab47/cibuild/pkg/payload"
)

// Rust builds and tests a cargo project.
type Rust struct {
	Base

	Payload *payload.Payload
}

func (r *Rust) Name() string {
	return "rust"
}

func (r *Rust) Announce() ast.Statement {
	return ast.Block(
		ast.Cmd(ast.Rawf("rustc --version"), ast.EchoOption{}),
		ast.Cmd(ast.Rawf("cargo --version"), ast.EchoOption{}),
	)
}

func (r *Rust) Install() ast.Statement {
	return ast.Cmd(ast.Rawf("cargo build --verbose"), ast.EchoOption{}, ast.AssertOption{})
}

func (r *Rust) Script() ast.Statement {
	return ast.Cmd(ast.Rawf("cargo test --verbose"), ast.EchoOption{})
}
