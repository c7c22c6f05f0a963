package ops

import (
	"context"
	"crypto/rand"
	"io/ioutil"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/lab47/cibuild/pkg/ast"
	"github.com/lab47/cibuild/pkg/payload"
	"github.com/lab47/cibuild/pkg/script"
	"github.com/oklog/ulid"
)

type ScriptCompile struct {
	common

	dir    string
	header string
	footer string
}

// Compile renders the script for p into the output directory under a new
// id and returns its info.
func (s *ScriptCompile) Compile(ctx context.Context, p *payload.Payload) (*ScriptInfo, error) {
	L := s.L()

	sc := &script.Script{
		L:       L,
		Payload: p,
		Header:  s.header,
		Footer:  s.footer,
	}

	c, err := sc.Compile()
	if err != nil {
		return nil, err
	}

	fp, err := ast.Fingerprint(c.Tree)
	if err != nil {
		return nil, err
	}

	ph, err := p.Hash()
	if err != nil {
		return nil, err
	}

	id, err := ulid.New(ulid.Now(), rand.Reader)
	if err != nil {
		return nil, err
	}

	info := &ScriptInfo{
		ID:          id.String(),
		Slug:        p.Repository.Slug,
		Commit:      p.Job.Commit,
		Language:    c.Language,
		Fingerprint: fp,
		PayloadHash: ph,
	}

	err = os.MkdirAll(s.dir, 0755)
	if err != nil {
		return nil, err
	}

	err = ioutil.WriteFile(scriptPath(s.dir, info.ID), []byte(c.Text), 0755)
	if err != nil {
		return nil, err
	}

	err = writeInfo(s.dir, info)
	if err != nil {
		return nil, err
	}

	hclog.FromContext(ctx).Debug("compiled script", "id", info.ID, "fingerprint", fp)

	L.Info("wrote script", "id", info.ID, "path", scriptPath(s.dir, info.ID))

	return info, nil
}
