// Package ops implements the operations around a compiled build script:
// writing it out, bundling it and shipping it to S3.
package ops

import (
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/hashicorp/go-hclog"
)

// Config is what the operations need from the user's configuration.
type Config struct {
	// OutputDir is where compiled scripts and their info are written.
	OutputDir string

	Header string
	Footer string

	// S3Endpoint overrides the S3 endpoint, for minio and friends.
	S3Endpoint string
}

type Ops struct {
	logger hclog.Logger

	cfg Config
}

func NewOps(logger hclog.Logger, cfg Config) *Ops {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}

	return &Ops{
		logger: logger,
		cfg:    cfg,
	}
}

func (o *Ops) ScriptCompile() *ScriptCompile {
	sc := &ScriptCompile{
		dir:    o.cfg.OutputDir,
		header: o.cfg.Header,
		footer: o.cfg.Footer,
	}

	sc.SetLogger(o.logger.Named("script-compile"))

	return sc
}

func (o *Ops) ScriptBundle() *ScriptBundle {
	sb := &ScriptBundle{dir: o.cfg.OutputDir}

	sb.SetLogger(o.logger.Named("script-bundle"))

	return sb
}

func (o *Ops) ScriptUploadS3(bucket string) (*ScriptUploadS3, error) {
	awscfg := aws.NewConfig()

	ep := o.cfg.S3Endpoint
	if ep == "" {
		ep = os.Getenv("AWS_ENDPOINT_S3")
	}

	if ep != "" {
		awscfg.Endpoint = &ep
		awscfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awscfg)
	if err != nil {
		return nil, err
	}

	su := NewScriptUploadS3(s3.New(sess), bucket, o.cfg.OutputDir)
	su.SetLogger(o.logger.Named("script-upload"))

	return su, nil
}
