package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/mattn/go-colorable"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"ipdl/checker-go/pkg/driver"
)

// exitCode carries a process exit status through cobra's error return.
type exitCode struct {
	Code int
	Err  error
}

func (e exitCode) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

const (
	exitIllTyped = 1
	exitFailure  = 2
)

type app struct {
	fs     afero.Fs
	stdout io.Writer
	stderr io.Writer
	tty    bool
	logger *logrus.Logger

	// newFetcher builds the git fetcher for deps install.
	newFetcher func(cacheDir string) driver.RootFetcher

	manifestPath string
	includes     []string
	verbose      bool
	noColor      bool
	settings     driver.Settings
}

func newApp(fs afero.Fs, stdout, stderr io.Writer, tty bool) *app {
	a := &app{
		fs:     fs,
		stdout: stdout,
		stderr: stderr,
		tty:    tty,
		logger: &logrus.Logger{
			Out:       stderr,
			Formatter: new(logrus.TextFormatter),
			Hooks:     make(logrus.LevelHooks),
			Level:     logrus.InfoLevel,
		},
	}
	a.newFetcher = func(cacheDir string) driver.RootFetcher {
		return driver.NewGitFetcher(driver.GitFetcherOptions{CacheDir: cacheDir, Fs: a.fs, Logger: a.logger})
	}
	return a
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:               "ipdlc",
		Short:             "type checker for IPDL protocol trees",
		Version:           cliToolVersion,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.persistentPreRunE,
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.PersistentFlags().AddFlagSet(a.persistentFlagSet())
	root.AddCommand(
		a.checkCmd(),
		a.dumpCmd(),
		a.depsCmd(),
		a.versionCmd(),
	)
	return root
}

func (a *app) persistentFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.StringVar(&a.manifestPath, "manifest", "", "path to ipdl.yml (default: searched upwards from the first input)")
	flags.StringSliceVarP(&a.includes, "include", "I", nil, "add a directory to the include search path")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored output")
	return flags
}

func (a *app) persistentPreRunE(cmd *cobra.Command, _ []string) error {
	settings, err := driver.LoadSettings()
	if err != nil {
		return err
	}
	a.settings = settings
	if !cmd.Flags().Changed("no-color") && settings.NoColor {
		a.noColor = true
	}

	level, err := logrus.ParseLevel(settings.LogLevel)
	if err != nil {
		return fmt.Errorf("IPDL_LOG_LEVEL: %w", err)
	}
	if a.verbose {
		level = logrus.DebugLevel
	}
	a.logger.SetLevel(level)
	if a.noColor {
		a.logger.SetOutput(colorable.NewNonColorable(a.stderr))
	}
	a.logger.SetFormatter(&logrus.TextFormatter{ForceColors: a.tty && !a.noColor, DisableColors: a.noColor})
	a.logger.Debugf("%s", cliToolVersion)
	return nil
}

func (a *app) execute(args []string) int {
	root := a.rootCmd()
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	if err == nil {
		return 0
	}
	var code exitCode
	if errors.As(err, &code) {
		if code.Err != nil {
			fmt.Fprintf(a.stderr, "ipdlc: %v\n", code.Err)
		}
		return code.Code
	}
	fmt.Fprintf(a.stderr, "ipdlc: %v\n", err)
	return exitFailure
}
