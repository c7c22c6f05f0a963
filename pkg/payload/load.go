package payload

import (
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter"
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var ErrUnknownFormat = errors.New("unknown payload format")

// FormatFor guesses the format from a file name or URL. Anything that
// isn't obviously YAML is treated as JSON.
func FormatFor(name string) Format {
	if idx := strings.IndexByte(name, '?'); idx > -1 {
		name = name[:idx]
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".yml", ".yaml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load decodes a payload document from r.
func Load(r io.Reader, format Format) (*Payload, error) {
	var doc interface{}

	switch format {
	case FormatJSON, "":
		dec := json.NewDecoder(r)
		dec.UseNumber()

		err := dec.Decode(&doc)
		if err != nil {
			return nil, errors.Wrapf(err, "decoding json payload")
		}
	case FormatYAML:
		err := yaml.NewDecoder(r).Decode(&doc)
		if err != nil {
			return nil, errors.Wrapf(err, "decoding yaml payload")
		}
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "%s", format)
	}

	return Decode(doc)
}

// LoadFile reads a payload from a local file.
func LoadFile(path string) (*Payload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	return Load(f, FormatFor(path))
}

// Fetch retrieves a payload from any source go-getter understands (a local
// path, http(s), s3::, ...) and decodes it. An empty format is guessed from
// src.
func Fetch(ctx context.Context, src string, format Format) (*Payload, error) {
	L := hclog.FromContext(ctx)

	if format == "" {
		format = FormatFor(src)
	}

	dir, err := ioutil.TempDir("", "cibuild-payload")
	if err != nil {
		return nil, err
	}

	defer os.RemoveAll(dir)

	pwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	dst := filepath.Join(dir, "payload")

	client := &getter.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dst,
		Pwd:  pwd,
		Mode: getter.ClientModeFile,
	}

	L.Debug("fetching payload", "src", src, "format", format)

	err = client.Get()
	if err != nil {
		return nil, errors.Wrapf(err, "fetching payload from %s", src)
	}

	f, err := os.Open(dst)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	return Load(f, format)
}
