package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ipdl/checker-go/pkg/driver"
)

func (a *app) depsCmd() *cobra.Command {
	deps := &cobra.Command{
		Use:   "deps",
		Short: "Manage git include roots",
	}
	deps.AddCommand(&cobra.Command{
		Use:   "install",
		Short: "Fetch the manifest's git includes and write ipdl.lock",
		Args:  cobra.NoArgs,
		RunE:  a.runDepsInstall,
	})
	return deps
}

func (a *app) runDepsInstall(cmd *cobra.Command, _ []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to determine working directory: %w", err)
	}
	manifest, err := a.findManifest(cwd)
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}
	if manifest == nil {
		return fmt.Errorf("unable to locate %s from %s", driver.ManifestFileName, cwd)
	}
	cacheDir, err := driver.ResolveCacheDir(a.settings, manifest)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Manifest: %s\n", manifest.Path)
	fmt.Fprintf(a.stdout, "Git includes: %d\n", len(manifest.GitIncludes))
	fmt.Fprintf(a.stdout, "Cache directory: %s\n", cacheDir)

	lockPath := driver.LockfilePath(manifest)
	lock, err := driver.LoadLockfile(a.fs, lockPath)
	lockCreated := false
	switch {
	case err == nil:
		if lock.Root != manifest.Name {
			return fmt.Errorf("lockfile root %q does not match manifest name %q", lock.Root, manifest.Name)
		}
	case os.IsNotExist(err):
		lock = driver.NewLockfile(manifest.Name, cliToolVersion)
		lockCreated = true
	default:
		return fmt.Errorf("failed to read lockfile: %w", err)
	}
	lock.Tool = cliToolVersion

	changed, logs, err := driver.InstallGitIncludes(cmd.Context(), a.newFetcher(cacheDir), a.fs, cacheDir, manifest, lock)
	for _, line := range logs {
		fmt.Fprintln(a.stdout, line)
	}
	if err != nil {
		return fmt.Errorf("failed to fetch git includes: %w", err)
	}

	if changed || lockCreated {
		action := "Updated"
		if lockCreated {
			action = "Created"
		}
		if err := driver.WriteLockfile(a.fs, lock, lockPath); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "%s %s: %s\n", action, driver.LockFileName, lock.Path)
	} else {
		fmt.Fprintf(a.stdout, "%s already up to date: %s\n", driver.LockFileName, lockPath)
	}
	return nil
}
