package cmd

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/lab47/cibuild/pkg/ops"
	"github.com/lab47/cibuild/pkg/payload"
	"github.com/lab47/cibuild/pkg/script"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Used for flags.
	cfgFile string
	debug   bool

	rootCmd = &cobra.Command{
		Use:   "cibuild",
		Short: "Generate and check CI build scripts",
		Long:  ``,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.cibuild.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "show debugging information")
	rootCmd.PersistentFlags().StringP("output-dir", "d", "", "directory to write compiled scripts to")
	rootCmd.PersistentFlags().String("header", "", "file to use as the script header")
	rootCmd.PersistentFlags().String("footer", "", "file to use as the script footer")
	rootCmd.PersistentFlags().StringP("format", "f", "", "payload format (json or yaml), guessed from the name by default")

	viper.BindPFlag("output_dir", rootCmd.PersistentFlags().Lookup("output-dir"))
	viper.BindPFlag("header", rootCmd.PersistentFlags().Lookup("header"))
	viper.BindPFlag("footer", rootCmd.PersistentFlags().Lookup("footer"))
	viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))

	viper.SetDefault("output_dir", ".")

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sumCmd)
	rootCmd.AddCommand(bundleCmd)
	rootCmd.AddCommand(uploadCmd)
}

func er(msg interface{}) {
	fmt.Println("Error:", msg)
	os.Exit(1)
}

func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			er(err)
		}

		viper.AddConfigPath(home)
		viper.SetConfigName(".cibuild")
	}

	viper.SetEnvPrefix("cibuild")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		logger().Debug("using config file", "path", viper.ConfigFileUsed())
	}
}

func logger() hclog.Logger {
	level := hclog.Info
	if debug || viper.GetBool("debug") {
		level = hclog.Debug
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:   "cibuild",
		Level:  level,
		Output: os.Stderr,
	})
}

func rootContext() (context.Context, hclog.Logger) {
	L := logger()
	return hclog.WithContext(context.Background(), L), L
}

// readTemplate returns the contents of the file named by the config key,
// or def when none is configured.
func readTemplate(key, def string) (string, error) {
	path := viper.GetString(key)
	if path == "" {
		return def, nil
	}

	path, err := homedir.Expand(path)
	if err != nil {
		return "", err
	}

	data, err := ioutil.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "reading %s template", key)
	}

	return string(data), nil
}

func loadConfig() (ops.Config, error) {
	var cfg ops.Config

	header, err := readTemplate("header", script.DefaultHeader)
	if err != nil {
		return cfg, err
	}

	footer, err := readTemplate("footer", script.DefaultFooter)
	if err != nil {
		return cfg, err
	}

	dir, err := homedir.Expand(viper.GetString("output_dir"))
	if err != nil {
		return cfg, err
	}

	cfg.OutputDir = dir
	cfg.Header = header
	cfg.Footer = footer
	cfg.S3Endpoint = viper.GetString("s3_endpoint")

	return cfg, nil
}

func loadAPI(L hclog.Logger) (*ops.Ops, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	return ops.NewOps(L, cfg), nil
}

func loadPayload(ctx context.Context, src string) (*payload.Payload, error) {
	if src == "-" {
		return payload.Load(os.Stdin, payload.Format(viper.GetString("format")))
	}

	return payload.Fetch(ctx, src, payload.Format(viper.GetString("format")))
}
