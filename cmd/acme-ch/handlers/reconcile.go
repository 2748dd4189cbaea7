package handlers

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/acmech/dataplane/internal/reconciler"
	"github.com/acmech/dataplane/internal/render"
	"github.com/acmech/dataplane/internal/util/keygen"
)

// ReconcileOptions are the flags of the reconcile command.
type ReconcileOptions struct {
	ConfigPath string
	ClusterID  string
	DryRun     bool
	FailFast   bool
	Verbose    bool
}

// Reconcile runs one reconcile pass and prints the results.
// It returns ErrReconcileFailed when any cluster failed.
func Reconcile(ctx context.Context, opts ReconcileOptions) error {
	logger := log.FromContext(ctx)

	cfg, err := loadValidConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	store, err := newStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to kubernetes: %w", err)
	}

	recorder, err := newRecorder()
	if err != nil {
		logger.Error(err, "metrics disabled")
	}

	var arch reconciler.Archiver
	if cfg.Archive.Enabled() && !opts.DryRun {
		arch, err = newArchive(ctx, cfg.Archive, cfg.Timeouts.HTTP)
		if err != nil {
			logger.Error(err, "manifest archive disabled")
			arch = nil
		}
	}

	rec, err := reconciler.New(reconciler.Deps{
		ControlPlane:        newControlPlane(cfg),
		Store:               store,
		Renderer:            render.New(),
		GenerateCredentials: keygen.GenerateCredentials,
		Metrics:             recorder,
		Archive:             arch,
	}, reconciler.Options{
		DryRun:              opts.DryRun,
		StatusRetryAttempts: cfg.Timeouts.StatusRetryMaxAttempts,
		StatusRetryDelay:    cfg.Timeouts.StatusRetryInitialDelay,
	})
	if err != nil {
		return err
	}

	if opts.Verbose {
		printReconcileHeader(stdout, cfg.OrgID, opts)
	}

	results, runErr := rec.Run(ctx, reconciler.RunOptions{
		ClusterID: opts.ClusterID,
		FailFast:  opts.FailFast,
	})
	printResults(stdout, results, opts.Verbose, opts.DryRun)

	if cfg.PushgatewayURL != "" {
		if err := recorder.Push(ctx, cfg.PushgatewayURL, cfg.OrgID, cfg.Timeouts.HTTP); err != nil {
			logger.Error(err, "failed to push metrics")
		}
	}

	if runErr != nil {
		return fmt.Errorf("reconciliation failed: %w", runErr)
	}
	if reconciler.AnyFailed(results) {
		return ErrReconcileFailed
	}
	return nil
}

func printReconcileHeader(out io.Writer, orgID string, opts ReconcileOptions) {
	st := newStyles()
	fmt.Fprintln(out, st.title.Render("Starting reconciliation"))
	fmt.Fprintf(out, "  Organization: %s\n", orgID)
	if opts.ClusterID != "" {
		fmt.Fprintln(out, st.warning.Render("  Filtering to cluster: "+opts.ClusterID))
	}
	if opts.DryRun {
		fmt.Fprintln(out, st.warning.Render("  Mode: DRY-RUN (no changes will be applied)"))
	}
	fmt.Fprintln(out)
}

// printResults writes the results table, secret lines, manifest details for
// failed clusters (all clusters when verbose) and a summary line.
func printResults(out io.Writer, results []reconciler.Result, verbose, dryRun bool) {
	st := newStyles()

	fmt.Fprintln(out, st.title.Render("Reconciliation Results"))
	t := &table{headers: []string{"STATUS", "CLUSTER", "ACTION", "MESSAGE"}}
	for _, r := range results {
		// Skipped clusters are noise unless verbose; a pass-level skip is kept.
		if r.Status == reconciler.StatusSkipped && !verbose && r.ClusterID != "" {
			continue
		}
		t.add(statusLabel(r.Status), r.ClusterName, string(r.Action), r.Message)
		if verbose && r.Err != nil {
			t.add("", "", "", "Error: "+r.Err.Error())
		}
	}
	t.render(out, st, func(row, col int) lipgloss.Style {
		if col != 0 {
			return lipgloss.NewStyle()
		}
		return statusStyle(st, t.rows[row][0])
	})
	fmt.Fprintln(out)

	for _, r := range results {
		if r.Secret == nil {
			continue
		}
		switch {
		case r.Secret.Created && dryRun:
			fmt.Fprintf(out, "%s %s in namespace %s\n", st.warning.Render("Secret would be created:"), r.Secret.Name, r.Secret.Namespace)
		case r.Secret.Created:
			fmt.Fprintf(out, "%s %s in namespace %s\n", st.success.Render("Secret created:"), r.Secret.Name, r.Secret.Namespace)
		default:
			fmt.Fprintf(out, "%s %s in namespace %s\n", st.dim.Render("Secret exists:"), r.Secret.Name, r.Secret.Namespace)
		}
	}

	for _, r := range results {
		if len(r.Manifests) == 0 || (!verbose && r.Status != reconciler.StatusFailed) {
			continue
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, st.header.Render(r.ClusterName+" - Manifest Details"))
		mt := &table{headers: []string{"", "KIND", "NAME", "NAMESPACE", "ACTION"}}
		for _, m := range r.Manifests {
			mt.add(manifestSymbol(m.Action), m.Kind, m.Name, m.Namespace, string(m.Action))
			if m.Err != nil && verbose {
				mt.add("", "", "Error: "+m.Err.Error(), "", "")
			}
		}
		mt.render(out, st, func(row, col int) lipgloss.Style {
			switch {
			case col != 0:
				return lipgloss.NewStyle()
			case mt.rows[row][0] == "✗":
				return st.failure
			case mt.rows[row][0] == "○":
				return st.warning
			default:
				return st.success
			}
		})
	}

	s := reconciler.Summarize(results)
	fmt.Fprintln(out)
	summary := fmt.Sprintf("Success: %d | Failed: %d | Skipped: %d", s.Success, s.Failed, s.Skipped)
	if s.Failed > 0 {
		fmt.Fprintln(out, st.failure.Render(summary))
	} else {
		fmt.Fprintln(out, st.success.Render(summary))
	}
}

func statusLabel(s reconciler.Status) string {
	switch s {
	case reconciler.StatusSuccess:
		return "✓ SUCCESS"
	case reconciler.StatusFailed:
		return "✗ FAILED"
	default:
		return "- SKIPPED"
	}
}

func statusStyle(st styles, label string) lipgloss.Style {
	switch label {
	case "✓ SUCCESS":
		return st.success
	case "✗ FAILED":
		return st.failure
	case "- SKIPPED":
		return st.warning
	default:
		return lipgloss.NewStyle()
	}
}

func manifestSymbol(a reconciler.ManifestAction) string {
	switch a {
	case reconciler.ManifestFailed:
		return "✗"
	case reconciler.ManifestWouldApply:
		return "○"
	default:
		return "✓"
	}
}
