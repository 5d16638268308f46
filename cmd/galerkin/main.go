// Package main is the thin CLI driver that exercises the radiosity
// solver library: it resolves configuration from the environment,
// assembles a small demonstration scene, and reports per-iteration
// statistics. The solver itself has no CLI or persisted state of its
// own; everything here is glue.
package main

import (
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/containerd/console"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rpkgo/galerkin/envconfig"
)

func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}
	envUsage := "\nEnvironment Variables:\n"
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-36s   %s\n", e.Name, e.Description)
	}
	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

func newRootCmd() *cobra.Command {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	cobra.EnableCommandSorting = false

	if runtime.GOOS == "windows" && term.IsTerminal(int(os.Stdout.Fd())) {
		console.ConsoleFromFile(os.Stdin) //nolint:errcheck
	}

	root := &cobra.Command{
		Use:           "galerkin",
		Short:         "Hierarchical Galerkin radiosity solver",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	runCmd := newRunCmd()
	configCmd := newConfigCmd()

	envVars := (envconfig.Config{}).AsMap()
	allEnvs := make([]envconfig.EnvVar, 0, len(envVars))
	for _, e := range envVars {
		allEnvs = append(allEnvs, e)
	}
	appendEnvDocs(runCmd, allEnvs)

	root.AddCommand(runCmd, configCmd)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
