package cmd

import (
	"fmt"
	"os"

	"github.com/lab47/cibuild/pkg/ast"
	"github.com/lab47/cibuild/pkg/script"
	"github.com/spf13/cobra"
)

var (
	sumCmd = &cobra.Command{
		Use:   "sum PAYLOAD",
		Short: "Print the fingerprint of a job's script",
		Long:  ``,
		Args:  cobra.ExactArgs(1),
		Run:   sum,
	}
)

func sum(c *cobra.Command, args []string) {
	ctx, L := rootContext()

	p, err := loadPayload(ctx, args[0])
	if err != nil {
		fmt.Printf("error loading payload: %s\n", err)
		os.Exit(1)
	}

	s := &script.Script{L: L, Payload: p}

	tree, err := s.AST()
	if err != nil {
		fmt.Printf("error generating script: %s\n", err)
		os.Exit(1)
	}

	fp, err := ast.Fingerprint(tree)
	if err != nil {
		fmt.Printf("error calculating fingerprint: %s\n", err)
		os.Exit(1)
	}

	ph, err := p.Hash()
	if err != nil {
		fmt.Printf("error calculating payload hash: %s\n", err)
		os.Exit(1)
	}

	fmt.Printf("Fingerprint: %s\n", fp)
	fmt.Printf("Payload: %s\n", ph)
}
