package main

import (
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
)

const cliToolVersion = "ipdlc 0.0.0-dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	tty := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	a := newApp(afero.NewOsFs(), colorable.NewColorableStdout(), colorable.NewColorableStderr(), tty)
	return a.execute(args)
}
