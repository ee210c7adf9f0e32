package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/xmodem.go/pkg/cli/sh"
	fx "github.com/robotalks/xmodem.go/pkg/framework"
	"github.com/robotalks/xmodem.go/pkg/link"
	"github.com/robotalks/xmodem.go/pkg/term"
)

var (
	configFile  string
	interactive bool
)

func init() {
	link.SetupFlags()
	term.SetupFlags()
	sh.SetupFlags()
	flag.StringVar(&configFile, "config", configFile, "TOML file with link settings.")
	flag.BoolVar(&interactive, "i", interactive, "Run the interactive shell, remaining arguments are a shell command.")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] DEVICE FILE\n       %s -i [flags] [COMMAND ARGS...]\n", os.Args[0], os.Args[0])
		flag.PrintDefaults()
	}
}

func fatal(v ...interface{}) {
	glog.Flush()
	log.Fatalln(v...)
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf := link.NewConfig()
	if configFile != "" {
		if err := conf.LoadFile(configFile); err != nil {
			fatal(err)
		}
	}
	session := term.NewSession(conf, term.DefaultOptions(), os.Stdout)

	if interactive {
		sh.New(session).Run(flag.Args()...)
		return
	}

	args := flag.Args()
	switch {
	case len(args) == 2:
		conf.Device = args[0]
	case len(args) == 1 && conf.Device != "":
	default:
		flag.Usage()
		os.Exit(2)
	}
	file := args[len(args)-1]

	if err := session.Open(); err != nil {
		fatal(err)
	}
	runner := fx.NewRunner().HandleSignals()
	runner.Go(fx.NamedRun("xmodem", fx.RunFunc(func(ctx context.Context) error {
		_, err := session.SendFile(ctx, file)
		return err
	})))
	err := runner.Wait()
	session.Close()
	if err != nil {
		fatal("The XModem transfer failed:", err)
	}
}
