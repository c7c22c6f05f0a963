package payload

import (
	"encoding/json"
	"math"
	"strings"
)

// decoder reads typed fields out of a generic document, stopping at the
// first problem.
type decoder struct {
	prefix string
	obj    map[string]interface{}
}

func (d *decoder) name(key string) string {
	if d.prefix == "" {
		return key
	}

	return d.prefix + "." + key
}

func asObject(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, v := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = v
		}

		return out, true
	default:
		return nil, false
	}
}

func (d *decoder) lookup(key string) (interface{}, bool) {
	v, ok := d.obj[key]
	if !ok || v == nil {
		return nil, false
	}

	return v, true
}

func (d *decoder) object(key string, required bool) (*decoder, error) {
	v, ok := d.lookup(key)
	if !ok {
		if required {
			return nil, &FieldError{Field: d.name(key), Missing: true}
		}

		return &decoder{prefix: d.name(key)}, nil
	}

	m, ok := asObject(v)
	if !ok {
		return nil, &FieldError{Field: d.name(key), Expected: "an object"}
	}

	return &decoder{prefix: d.name(key), obj: m}, nil
}

func (d *decoder) optString(key string) (string, bool, error) {
	v, ok := d.lookup(key)
	if !ok {
		return "", false, nil
	}

	s, ok := v.(string)
	if !ok {
		return "", false, &FieldError{Field: d.name(key), Expected: "a string"}
	}

	return s, true, nil
}

func (d *decoder) str(key string) (string, error) {
	s, ok, err := d.optString(key)
	if err != nil {
		return "", err
	}

	if !ok {
		return "", &FieldError{Field: d.name(key), Missing: true}
	}

	return s, nil
}

func (d *decoder) optBool(key string, def bool) (bool, error) {
	v, ok := d.lookup(key)
	if !ok {
		return def, nil
	}

	b, ok := v.(bool)
	if !ok {
		return false, &FieldError{Field: d.name(key), Expected: "a bool"}
	}

	return b, nil
}

func (d *decoder) boolean(key string) (bool, error) {
	if _, ok := d.lookup(key); !ok {
		return false, &FieldError{Field: d.name(key), Missing: true}
	}

	return d.optBool(key, false)
}

func toUint(v interface{}) (uint64, bool) {
	switch n := v.(type) {
	case int:
		return uint64(n), n >= 0
	case int64:
		return uint64(n), n >= 0
	case uint64:
		return n, true
	case float64:
		if n < 0 || n != math.Trunc(n) {
			return 0, false
		}
		return uint64(n), true
	case json.Number:
		if strings.ContainsAny(n.String(), ".eE") {
			return 0, false
		}

		i, err := n.Int64()
		if err != nil || i < 0 {
			return 0, false
		}
		return uint64(i), true
	default:
		return 0, false
	}
}

func (d *decoder) optUint(key string) (uint64, bool, error) {
	v, ok := d.lookup(key)
	if !ok {
		return 0, false, nil
	}

	n, ok := toUint(v)
	if !ok {
		return 0, false, &FieldError{Field: d.name(key), Expected: "an int"}
	}

	return n, true, nil
}

func (d *decoder) stringList(key string) ([]string, error) {
	v, ok := d.lookup(key)
	if !ok {
		return nil, nil
	}

	list, ok := v.([]interface{})
	if !ok {
		return nil, &FieldError{Field: d.name(key), Expected: "a list of strings"}
	}

	out := make([]string, 0, len(list))
	for _, e := range list {
		s, ok := e.(string)
		if !ok {
			return nil, &FieldError{Field: d.name(key), Expected: "a list of strings"}
		}
		out = append(out, s)
	}

	return out, nil
}

// Decode builds a Payload from a generic document such as the result of
// decoding JSON or YAML into an interface{}. It returns a *FieldError for
// the first field that is missing or has the wrong kind.
func Decode(doc interface{}) (*Payload, error) {
	obj, ok := asObject(doc)
	if !ok {
		return nil, &FieldError{Field: "payload", Expected: "an object"}
	}

	d := &decoder{obj: obj}

	var (
		p   Payload
		err error
	)

	job, err := d.object("job", true)
	if err != nil {
		return nil, err
	}

	if p.Job, err = decodeJob(job); err != nil {
		return nil, err
	}

	repo, err := d.object("repository", true)
	if err != nil {
		return nil, err
	}

	if p.Repository.Slug, err = repo.str("slug"); err != nil {
		return nil, err
	}

	if p.Repository.SourceURL, err = repo.str("source_url"); err != nil {
		return nil, err
	}

	cfg, err := d.object("config", true)
	if err != nil {
		return nil, err
	}

	if p.Config, err = decodeConfig(cfg); err != nil {
		return nil, err
	}

	if p.Paranoid, err = d.optBool("paranoid", false); err != nil {
		return nil, err
	}

	skipResolv, err := d.optBool("skip_resolv_updates", true)
	if err != nil {
		return nil, err
	}

	skipHosts, err := d.optBool("skip_etc_hosts_fix", true)
	if err != nil {
		return nil, err
	}

	p.FixResolvConf = !skipResolv
	p.FixEtcHosts = !skipHosts

	return &p, nil
}

func decodeJob(d *decoder) (Job, error) {
	var (
		j   Job
		err error
	)

	if j.Branch, err = d.str("branch"); err != nil {
		return j, err
	}

	if j.Commit, err = d.str("commit"); err != nil {
		return j, err
	}

	ref, ok, err := d.optString("ref")
	if err != nil {
		return j, err
	}

	if ok {
		j.Ref = &ref
	}

	if j.PullRequest, err = d.boolean("pull_request"); err != nil {
		return j, err
	}

	return j, nil
}

func decodeConfig(d *decoder) (Config, error) {
	var (
		c   Config
		err error
	)

	if c.Language, _, err = d.optString("language"); err != nil {
		return c, err
	}

	git, err := d.object("git", false)
	if err != nil {
		return c, err
	}

	if c.Git, err = decodeGit(git); err != nil {
		return c, err
	}

	if c.Services, err = d.stringList("services"); err != nil {
		return c, err
	}

	return c, nil
}

func decodeGit(d *decoder) (GitConfig, error) {
	g := DefaultGitConfig()

	depth, ok, err := d.optUint("depth")
	if err != nil {
		return g, err
	}

	if ok {
		g.Depth = depth
	}

	if g.Submodules, err = d.optBool("submodules", true); err != nil {
		return g, err
	}

	sdepth, ok, err := d.optUint("submodules_depth")
	if err != nil {
		return g, err
	}

	if ok {
		g.SubmodulesDepth = &sdepth
	}

	strategy, ok, err := d.optString("strategy")
	if err != nil {
		return g, err
	}

	if ok {
		switch GitStrategy(strategy) {
		case StrategyClone, StrategyTarball:
			g.Strategy = GitStrategy(strategy)
		default:
			return g, &FieldError{Field: d.name("strategy"), Expected: `"clone" or "tarball"`}
		}
	}

	return g, nil
}
