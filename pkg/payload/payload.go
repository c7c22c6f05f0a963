// Package payload describes a single CI job: the repository, the commit to
// build and the job configuration.
package payload

import (
	"fmt"
	"strconv"

	"github.com/mitchellh/hashstructure"
)

type GitStrategy string

const (
	StrategyClone   GitStrategy = "clone"
	StrategyTarball GitStrategy = "tarball"
)

const DefaultGitDepth = 50

type Payload struct {
	Job        Job
	Repository Repository
	Config     Config

	Paranoid      bool
	FixResolvConf bool
	FixEtcHosts   bool
}

type Job struct {
	Branch      string
	Commit      string
	Ref         *string
	PullRequest bool
}

type Repository struct {
	Slug      string
	SourceURL string
}

type Config struct {
	Language string
	Git      GitConfig
	Services []string
}

type GitConfig struct {
	Depth           uint64
	Submodules      bool
	SubmodulesDepth *uint64
	Strategy        GitStrategy
}

// DefaultGitConfig is used for every field missing from config.git.
func DefaultGitConfig() GitConfig {
	return GitConfig{
		Depth:      DefaultGitDepth,
		Submodules: true,
		Strategy:   StrategyClone,
	}
}

// Hash returns a digest of every field, used to tell builds apart in logs.
func (p *Payload) Hash() (string, error) {
	h, err := hashstructure.Hash(p, nil)
	if err != nil {
		return "", err
	}

	return strconv.FormatUint(h, 16), nil
}

// FieldError reports the first field of a payload that is missing or has
// the wrong kind.
type FieldError struct {
	Field    string
	Expected string
	Missing  bool
}

func (e *FieldError) Error() string {
	if e.Missing {
		return fmt.Sprintf("missing field: %s", e.Field)
	}

	return fmt.Sprintf("%s must be %s", e.Field, e.Expected)
}
