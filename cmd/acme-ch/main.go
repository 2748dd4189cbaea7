// Package main is the entry point for the acme-ch data-plane agent.
//
// acme-ch reconciles the ClickHouse clusters an organization declares in
// the ACME control plane with ClickHouse operator resources in the local
// Kubernetes cluster.
//
// Commands: reconcile, render, get-clusters, get-org, debug-state,
// config-info, version.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/acmech/dataplane/cmd/acme-ch/commands"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
