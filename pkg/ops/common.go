package ops

import "github.com/hashicorp/go-hclog"

type common struct {
	logger hclog.Logger
}

func (c *common) SetLogger(l hclog.Logger) {
	c.logger = l
}

func (c *common) L() hclog.Logger {
	if c.logger == nil {
		return hclog.NewNullLogger()
	}

	return c.logger
}
