package components

import (
	"github.com/lab47/cibuild/pkg/ast"
	"github.com/lab47/cibuild/pkg/payload"
)

// serviceNames maps the names users write to the init script names.
var serviceNames = map[string]string{
	"hbase":        "hbase-master",
	"memcache":     "memcached",
	"neo4j-server": "neo4j",
	"rabbitmq":     "rabbitmq-server",
	"redis":        "redis-server",
}

// NormalizeService returns the init script name for service.
func NormalizeService(service string) string {
	if name, ok := serviceNames[service]; ok {
		return name
	}

	return service
}

// StartServices starts every service listed in the job config.
func StartServices(p *payload.Payload) ast.Statement {
	if len(p.Config.Services) == 0 {
		return ast.Noop
	}

	stmts := make([]ast.Statement, 0, len(p.Config.Services))

	for _, service := range p.Config.Services {
		stmts = append(stmts, ast.Cmd(ast.Rawf("sudo service %s start", NormalizeService(service)), ast.EchoOption{}))
	}

	return ast.Block(stmts...)
}
