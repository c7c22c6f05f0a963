package ops

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	infoSuffix   = ".info.json"
	scriptSuffix = ".sh"
	bundleSuffix = ".tar.gz"
)

// ScriptInfo describes a compiled script. It is written next to the script
// as <id>.info.json.
type ScriptInfo struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Commit      string `json:"commit"`
	Language    string `json:"language"`
	Fingerprint string `json:"fingerprint"`
	PayloadHash string `json:"payload_hash"`
}

var ErrUnknownScript = errors.New("unknown script id")

func infoPath(dir, id string) string {
	return filepath.Join(dir, id+infoSuffix)
}

func scriptPath(dir, id string) string {
	return filepath.Join(dir, id+scriptSuffix)
}

func writeInfo(dir string, info *ScriptInfo) error {
	f, err := os.Create(infoPath(dir, info.ID))
	if err != nil {
		return err
	}

	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")

	return enc.Encode(info)
}

// ReadInfo loads the info of the script id compiled into dir.
func ReadInfo(dir, id string) (*ScriptInfo, error) {
	f, err := os.Open(infoPath(dir, id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrUnknownScript, "%s", id)
		}

		return nil, err
	}

	defer f.Close()

	var info ScriptInfo

	err = json.NewDecoder(f).Decode(&info)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding info for %s", id)
	}

	return &info, nil
}
