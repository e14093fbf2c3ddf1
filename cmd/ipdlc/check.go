package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <unit.ipdl.yaml>...",
		Short: "Type check translation units",
		Long: `Load each translation-unit document with everything it includes and
run both checking passes. Diagnostics go to stdout; the exit status is 1
when any unit is not well typed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.runCheck,
	}
}

func (a *app) runCheck(_ *cobra.Command, args []string) error {
	sess, err := a.newSession(args[0])
	if err != nil {
		return err
	}
	p := a.printer()
	failed := 0
	for _, path := range args {
		tu, res, err := sess.check(path)
		if err != nil {
			return err
		}
		if !res.WellTyped {
			failed++
			p.diagnostics(res.Diagnostics)
			a.logger.WithField("unit", tu.Name).Debugf("rejected in %s pass", res.Pass)
			continue
		}
		fmt.Fprintf(a.stdout, "%s: ok\n", tu.Filename)
	}
	if failed > 0 {
		return exitCode{Code: exitIllTyped, Err: fmt.Errorf("%d of %d translation units are not well typed", failed, len(args))}
	}
	return nil
}
