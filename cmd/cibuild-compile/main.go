package main

import (
	"context"
	"io/ioutil"
	"log"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/lab47/cibuild/pkg/payload"
	"github.com/lab47/cibuild/pkg/script"
	"github.com/spf13/pflag"
)

var (
	fPayload = pflag.StringP("payload", "p", "", "job payload to compile (path, URL, or - for stdin)")
	fOutput  = pflag.StringP("output", "o", "-", "where to write the script")
	fHeader  = pflag.String("header", "", "file to use as the script header")
	fFooter  = pflag.String("footer", "", "file to use as the script footer")
	fDebug   = pflag.Bool("debug", false, "show debugging information")
)

func template(path, def string) string {
	if path == "" {
		return def
	}

	data, err := ioutil.ReadFile(path)
	if err != nil {
		log.Fatal(err)
	}

	return string(data)
}

func main() {
	pflag.Parse()

	if *fPayload == "" {
		log.Fatalln("provide a payload to compile")
	}

	level := hclog.Warn
	if *fDebug {
		level = hclog.Debug
	}

	L := hclog.New(&hclog.LoggerOptions{
		Name:   "cibuild-compile",
		Level:  level,
		Output: os.Stderr,
	})

	ctx := hclog.WithContext(context.Background(), L)

	var (
		p   *payload.Payload
		err error
	)

	if *fPayload == "-" {
		p, err = payload.Load(os.Stdin, payload.FormatJSON)
	} else {
		p, err = payload.Fetch(ctx, *fPayload, "")
	}

	if err != nil {
		log.Fatal(err)
	}

	s := &script.Script{
		L:       L,
		Payload: p,
		Header:  template(*fHeader, script.DefaultHeader),
		Footer:  template(*fFooter, script.DefaultFooter),
	}

	text, err := s.Render()
	if err != nil {
		log.Fatal(err)
	}

	if *fOutput == "-" {
		_, err = os.Stdout.WriteString(text)
	} else {
		err = ioutil.WriteFile(*fOutput, []byte(text), 0755)
	}

	if err != nil {
		log.Fatal(err)
	}
}
