/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package main implements stage1ctl, an operator-facing diagnostic CLI
// for the stage1 core. It is not one of the four privileged core
// components spec.md defines — it never chroots, joins a namespace, or
// drops privileges itself — but it exercises the same internal packages
// those components use, so an operator can inspect a pod's pid file,
// decode an env blob, or run the ELF/shebang diagnostic walk against an
// arbitrary binary without constructing a real pod.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rkt/rkt/internal/elfwalk"
	"github.com/rkt/rkt/internal/envblob"
	"github.com/rkt/rkt/internal/lockfd"
	"github.com/rkt/rkt/internal/pidfile"
)

// version is set by ldflags during build.
var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "stage1ctl",
		Short:   "Diagnostic CLI for the stage1 core",
		Version: version,
		Long: `stage1ctl is an operator diagnostic front-end onto the packages the
four stage1 core binaries (prepare-app, enter, diagexec, shim) use.
It never chroots, joins a namespace, or drops privileges; it only
reads state those binaries already produced, or re-runs their pure
diagnostic logic against a path you give it.`,
	}

	rootCmd.AddCommand(pidCmd())
	rootCmd.AddCommand(envCmd())
	rootCmd.AddCommand(diagCmd())
	rootCmd.AddCommand(lockfdCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func pidCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pid <pod-dir>",
		Short: "Print the pod leader pid recorded in <pod-dir>/pid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := pidfile.Read(args[0])
			if err != nil {
				return fmt.Errorf("read pid file: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), pid)
			return nil
		},
	}
}

func envCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env <envfile>",
		Short: "Decode a diagexec environment blob and print it as KEY=VALUE lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read env file: %w", err)
			}
			pairs, err := envblob.Parse(data)
			if err != nil {
				return fmt.Errorf("parse env blob: %w", err)
			}
			for _, p := range pairs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", p.Key, p.Value)
			}
			return nil
		},
	}
}

func diagCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diag <path>",
		Short: "Run diagexec's shebang/ELF PT_INTERP diagnostic walk against a binary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := elfwalk.Diagnose(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "no diagnostic available: binary appears directly executable")
			return nil
		},
	}
}

func lockfdCmd() *cobra.Command {
	var setCloExec bool
	cmd := &cobra.Command{
		Use:   "lockfd",
		Short: "Report or toggle close-on-exec on RKT_LOCK_FD",
		RunE: func(cmd *cobra.Command, args []string) error {
			fd, err := lockfd.Lookup()
			if err != nil {
				return err
			}
			if fd < 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "RKT_LOCK_FD is not set")
				return nil
			}
			if cmd.Flags().Changed("set-cloexec") {
				if err := lockfd.SetCloseOnExec(fd, setCloExec); err != nil {
					return err
				}
			}
			cloexec, err := lockfd.IsCloseOnExec(fd)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "fd=%d cloexec=%t\n", fd, cloexec)
			return nil
		},
	}
	cmd.Flags().BoolVar(&setCloExec, "set-cloexec", false, "set (true) or clear (false) FD_CLOEXEC on the lock fd before reporting")
	return cmd
}
