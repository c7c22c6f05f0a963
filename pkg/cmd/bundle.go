package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var (
	bundleCmd = &cobra.Command{
		Use:   "bundle ID...",
		Short: "Archive compiled scripts with their info",
		Long:  ``,
		Args:  cobra.MinimumNArgs(1),
		Run:   bundle,
	}
)

func bundle(c *cobra.Command, args []string) {
	_, L := rootContext()

	o, err := loadAPI(L)
	if err != nil {
		log.Fatal(err)
	}

	sb := o.ScriptBundle()

	for _, id := range args {
		path, err := sb.Bundle(id)
		if err != nil {
			log.Fatal(err)
		}

		fmt.Println(path)
	}
}
