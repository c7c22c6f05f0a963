package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	uploadCmd = &cobra.Command{
		Use:   "upload ID...",
		Short: "Upload compiled scripts to S3",
		Long:  ``,
		Args:  cobra.MinimumNArgs(1),
		Run:   upload,
	}
)

func init() {
	uploadCmd.PersistentFlags().StringP("bucket", "b", "", "S3 bucket to store scripts into")

	viper.BindPFlag("bucket", uploadCmd.PersistentFlags().Lookup("bucket"))
}

func upload(c *cobra.Command, args []string) {
	_, L := rootContext()

	bucket := viper.GetString("bucket")
	if bucket == "" {
		log.Fatal("no bucket configured, pass --bucket or set bucket in the config")
	}

	o, err := loadAPI(L)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("+ Uploading scripts to %s...\n", bucket)

	su, err := o.ScriptUploadS3(bucket)
	if err != nil {
		log.Fatal(err)
	}

	for _, id := range args {
		err = su.Upload(id)
		if err != nil {
			log.Fatal(err)
		}
	}
}
