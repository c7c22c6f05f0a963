// Package components builds the statements for the stages every job shares:
// checking out the source and starting services.
package components

import (
	"fmt"
	"path"
	"strings"

	"github.com/lab47/cibuild/pkg/ast"
	"github.com/lab47/cibuild/pkg/bash"
	"github.com/lab47/cibuild/pkg/payload"
)

// BuildDir is where repositories are checked out.
const BuildDir = "/home/travis/build"

// GitCheckout returns the statements that check out the job's commit into
// BuildDir/<slug> and leave the working directory there.
func GitCheckout(p *payload.Payload) ast.Statement {
	var fetch ast.Statement

	switch p.Config.Git.Strategy {
	case payload.StrategyTarball:
		fetch = tarballFetch(p)
	default:
		fetch = cloneFetch(p)
	}

	return ast.Block(
		ast.Cmd(ast.MakeDir{Path: BuildDir}),
		ast.Cmd(ast.ChangeDir{Path: "build"}),
		ast.Set("GIT_ASKPASS", "echo"),
		fetch,
		ast.Cmd(ast.ChangeDir{Path: gitPath(p)}),
		fetchRef(p),
		checkout(p),
		submodules(p),
	)
}

func cloneFetch(p *payload.Payload) ast.Statement {
	repo := gitPath(p)

	return ast.IfElse(
		ast.Negate(ast.IsDirectory{Path: path.Join(repo, ".git")}),
		ast.Block(
			ast.Cmd(ast.Rawf("git clone %s %s %s", cloneArgs(p), p.Repository.SourceURL, repo), ast.EchoOption{}, ast.AssertOption{}),
		),
		ast.Block(
			ast.Cmd(ast.Rawf("git -C %s fetch origin", repo), ast.EchoOption{}, ast.AssertOption{}),
			ast.Cmd(ast.Rawf("git -C %s reset --hard", repo), ast.EchoOption{}, ast.AssertOption{}),
		),
	)
}

// tarballFetch downloads the GitHub tarball of the commit instead of
// cloning. GitHub names the top directory owner-repo-sha.
func tarballFetch(p *payload.Payload) ast.Statement {
	repo := gitPath(p)
	archive := strings.Replace(repo, "/", "-", -1) + ".tar.gz"
	url := fmt.Sprintf("https://api.github.com/repos/%s/tarball/%s", repo, p.Job.Commit)

	return ast.Block(
		ast.Cmd(ast.MakeDir{Path: repo}),
		ast.Cmd(ast.Rawf("curl -o %s -L %s", bash.Escape(archive), bash.Escape(url)), ast.EchoOption{}, ast.AssertOption{}),
		ast.Cmd(ast.Rawf("tar xfz %s --strip-components=1 -C %s", bash.Escape(archive), bash.Escape(repo)), ast.EchoOption{}, ast.AssertOption{}),
		ast.Cmd(ast.RemoveFile{Path: archive}),
	)
}

func fetchRef(p *payload.Payload) ast.Statement {
	if p.Job.Ref == nil || p.Config.Git.Strategy == payload.StrategyTarball {
		return ast.Noop
	}

	return ast.Cmd(ast.Rawf("git fetch origin +%s:", *p.Job.Ref), ast.EchoOption{}, ast.AssertOption{})
}

func checkout(p *payload.Payload) ast.Statement {
	if p.Config.Git.Strategy == payload.StrategyTarball {
		return ast.Noop
	}

	rev := p.Job.Commit
	if p.Job.PullRequest {
		rev = "FETCH_HEAD"
	}

	return ast.Cmd(ast.Rawf("git checkout -qf %s", rev), ast.EchoOption{}, ast.AssertOption{})
}

func submodules(p *payload.Payload) ast.Statement {
	if !p.Config.Git.Submodules || p.Config.Git.Strategy == payload.StrategyTarball {
		return ast.Noop
	}

	return ast.IfThen(ast.IsFile{Path: ".gitmodules"},
		ast.Cmd(ast.Rawf("git submodule init"), ast.EchoOption{}),
		ast.Cmd(ast.Rawf("git submodule update%s", submodulesArgs(p)), ast.EchoOption{}),
	)
}

func gitPath(p *payload.Payload) string {
	return p.Repository.Slug
}

func cloneArgs(p *payload.Payload) string {
	if p.Job.Ref != nil {
		return fmt.Sprintf("--depth=%d", p.Config.Git.Depth)
	}

	return fmt.Sprintf("--depth=%d --branch=%s", p.Config.Git.Depth, bash.Escape(p.Job.Branch))
}

func submodulesArgs(p *payload.Payload) string {
	if p.Config.Git.SubmodulesDepth == nil {
		return ""
	}

	return fmt.Sprintf(" --depth=%d", *p.Config.Git.SubmodulesDepth)
}
