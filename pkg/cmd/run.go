package cmd

import (
	"fmt"
	"log"
	"sort"

	"github.com/davecgh/go-spew/spew"
	"github.com/lab47/cibuild/pkg/astrun"
	"github.com/lab47/cibuild/pkg/event"
	"github.com/lab47/cibuild/pkg/script"
	"github.com/spf13/cobra"
)

var (
	runCmd = &cobra.Command{
		Use:   "run PAYLOAD",
		Short: "Run a job's script against a simulated machine",
		Long: `Runs the script for PAYLOAD in memory, printing each command that
would be handed to the shell. Nothing is executed.`,
		Args: cobra.ExactArgs(1),
		Run:  runScript,
	}
)

var (
	runDump  bool
	runFiles []string
)

func init() {
	runCmd.PersistentFlags().BoolVar(&runDump, "dump", false, "Dump the final state of the simulated machine")
	runCmd.PersistentFlags().StringSliceVar(&runFiles, "file", nil, "Create this file before running (repeatable)")
}

func runScript(c *cobra.Command, args []string) {
	ctx, L := rootContext()

	p, err := loadPayload(ctx, args[0])
	if err != nil {
		log.Fatal(err)
	}

	s := &script.Script{L: L, Payload: p}

	tree, err := s.AST()
	if err != nil {
		log.Fatal(err)
	}

	r := astrun.New()
	r.L = L.Named("astrun")

	for _, f := range runFiles {
		err = r.PutFile(f, nil)
		if err != nil {
			log.Fatal(err)
		}
	}

	var ren event.Renderer

	err = r.RunContext(ren.WithContext(ctx), tree)
	if err != nil {
		log.Fatal(err)
	}

	if !runDump {
		return
	}

	keys := make([]string, 0, len(r.Env))
	for k := range r.Env {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	fmt.Printf("\nworking dir: %s\n", r.WorkingDir)

	fmt.Println("env:")
	for _, k := range keys {
		fmt.Printf("  %s=%s\n", k, r.Env[k])
	}

	fmt.Println("files:")
	spew.Dump(r.Root.Paths())
}
