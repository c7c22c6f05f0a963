package cmd

import (
	"fmt"
	"log"

	"github.com/lab47/cibuild/pkg/script"
	"github.com/spf13/cobra"
)

var (
	compileCmd = &cobra.Command{
		Use:   "compile PAYLOAD",
		Short: "Compile a job payload into a build script",
		Long:  `PAYLOAD is a path, a URL, or - for stdin.`,
		Args:  cobra.ExactArgs(1),
		Run:   compile,
	}
)

var (
	compilePrint bool
)

func init() {
	compileCmd.PersistentFlags().BoolVarP(&compilePrint, "print", "p", false, "Print the script instead of writing it to the output dir")
}

func compile(c *cobra.Command, args []string) {
	ctx, L := rootContext()

	p, err := loadPayload(ctx, args[0])
	if err != nil {
		log.Fatal(err)
	}

	if compilePrint {
		cfg, err := loadConfig()
		if err != nil {
			log.Fatal(err)
		}

		s := &script.Script{
			L:       L,
			Payload: p,
			Header:  cfg.Header,
			Footer:  cfg.Footer,
		}

		text, err := s.Render()
		if err != nil {
			log.Fatal(err)
		}

		fmt.Print(text)
		return
	}

	o, err := loadAPI(L)
	if err != nil {
		log.Fatal(err)
	}

	info, err := o.ScriptCompile().Compile(ctx, p)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(info.ID)
}
