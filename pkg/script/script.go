// Package script assembles the complete build script for a payload.
package script

import (
	"github.com/hashicorp/go-hclog"
	"github.com/lab47/cibuild/pkg/ast"
	"github.com/lab47/cibuild/pkg/bash"
	"github.com/lab47/cibuild/pkg/components"
	"github.com/lab47/cibuild/pkg/languages"
	"github.com/lab47/cibuild/pkg/payload"
	"github.com/pkg/errors"
)

const (
	resolvFix = "grep '199.91.168' /etc/resolv.conf > /dev/null || echo 'nameserver 199.91.168.70\nnameserver 199.91.168.71' | sudo tee /etc/resolv.conf &> /dev/null"
	hostsFix  = "sudo sed -e 's/^\\(127\\.0\\.0\\.1.*\\)$/\\1 '`hostname`'/' -i'.bak' /etc/hosts"

	paranoidNotice = "Sudo, the Firefox addon, setuid and setgid have been disabled."
	paranoidCmd    = `sudo -n sh -c "sed -e \'s/^%.*//\' -i.bak /etc/sudoers && rm -f /etc/sudoers.d/travis && find / -perm -4000 -exec chmod a-s {} \; 2>/dev/null"`
)

// Script renders a payload to bash. Header and Footer are written around
// the generated body and are expected to define the travis_cmd and
// travis_fold functions.
type Script struct {
	L hclog.Logger

	Payload *payload.Payload
	Header  string
	Footer  string
}

func (s *Script) logger() hclog.Logger {
	if s.L == nil {
		return hclog.NewNullLogger()
	}

	return s.L
}

// Compiled is a rendered script together with the tree it came from.
type Compiled struct {
	Tree     ast.Statement
	Language string
	Text     string
}

// AST builds the tree for the whole job: the builtin stages followed by the
// stages of the job's language.
func (s *Script) AST() (ast.Statement, error) {
	tree, _, err := s.build()
	return tree, err
}

func (s *Script) build() (ast.Statement, languages.Language, error) {
	lang, err := languages.ForPayload(s.Payload)
	if err != nil {
		return nil, nil, err
	}

	s.logger().Debug("generating script",
		"slug", s.Payload.Repository.Slug,
		"commit", s.Payload.Job.Commit,
		"language", lang.Name())

	tree := stage(
		s.builtinStages(),
		customStages(lang),
	)

	return tree, lang, nil
}

// Compile builds the tree and renders it between Header and Footer.
func (s *Script) Compile() (*Compiled, error) {
	tree, lang, err := s.build()
	if err != nil {
		return nil, err
	}

	body, err := bash.Render(tree)
	if err != nil {
		return nil, errors.Wrapf(err, "rendering script for %s", s.Payload.Repository.Slug)
	}

	return &Compiled{
		Tree:     tree,
		Language: lang.Name(),
		Text:     s.Header + body + "\n" + s.Footer,
	}, nil
}

// Render returns the complete script text.
func (s *Script) Render() (string, error) {
	c, err := s.Compile()
	if err != nil {
		return "", err
	}

	return c.Text, nil
}

func (s *Script) builtinStages() ast.Statement {
	return stage(
		s.applyFixes(),
		ast.MustFold("git.checkout", components.GitCheckout(s.Payload)),
		components.StartServices(s.Payload),
		s.paranoidMode(),
		exportVars(),
	)
}

func customStages(lang languages.Language) ast.Statement {
	install := lang.Install()
	if !ast.IsNoop(install) {
		install = ast.MustFold("install", install)
	}

	return stage(
		lang.Setup(),
		lang.Announce(),
		install,
		lang.Script(),
	)
}

// stage is ast.Block without the noops, and ast.Noop when nothing is left,
// so that empty stages don't leave blank lines in the script.
func stage(stmts ...ast.Statement) ast.Statement {
	var out []ast.Statement

	for _, s := range stmts {
		if !ast.IsNoop(s) {
			out = append(out, s)
		}
	}

	if len(out) == 0 {
		return ast.Noop
	}

	return ast.Block(out...)
}

func (s *Script) applyFixes() ast.Statement {
	resolv, hosts := ast.Noop, ast.Noop

	if s.Payload.FixResolvConf {
		resolv = ast.Cmd(ast.Rawf(resolvFix))
	}

	if s.Payload.FixEtcHosts {
		hosts = ast.Cmd(ast.Rawf(hostsFix))
	}

	return stage(resolv, hosts)
}

func (s *Script) paranoidMode() ast.Statement {
	if !s.Payload.Paranoid {
		return ast.Noop
	}

	return ast.Block(
		ast.Cmd(ast.Newline{}),
		ast.Cmd(ast.Echo{Text: paranoidNotice}),
		ast.Cmd(ast.Raw{Text: paranoidCmd}),
	)
}

func exportVars() ast.Statement {
	return ast.Block(
		ast.Set("TRAVIS", "true"),
		ast.Set("CI", "true"),
		ast.Set("CONTINUOUS_INTEGRATION", "true"),
		ast.Set("HAS_JOSH_K_SEAL_OF_APPROVAL", "true"),
	)
}
