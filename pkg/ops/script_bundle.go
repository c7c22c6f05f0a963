package ops

import (
	"os"
	"path/filepath"

	"github.com/mholt/archiver/v3"
)

type ScriptBundle struct {
	common

	dir string
}

// Bundle writes <id>.tar.gz containing the script and its info, returning
// the path of the archive.
func (s *ScriptBundle) Bundle(id string) (string, error) {
	if _, err := ReadInfo(s.dir, id); err != nil {
		return "", err
	}

	sp := scriptPath(s.dir, id)

	if _, err := os.Stat(sp); err != nil {
		return "", err
	}

	out := filepath.Join(s.dir, id+bundleSuffix)

	tgz := archiver.NewTarGz()
	tgz.OverwriteExisting = true

	err := tgz.Archive([]string{sp, infoPath(s.dir, id)}, out)
	if err != nil {
		return "", err
	}

	s.L().Info("bundled script", "id", id, "path", out)

	return out, nil
}
