package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerport/internal/balances"
	"github.com/cleared-dev/ledgerport/internal/diag"
	"github.com/cleared-dev/ledgerport/internal/pipeline"
	"github.com/cleared-dev/ledgerport/internal/runlog"
)

type openingOptions struct {
	company      int
	cutoff       string
	fromBalances string
	balancesCSV  string
	outDir       string
	useCache     bool
	saveCache    bool
}

func newOpeningBalancesCommand(root *rootOptions) *cobra.Command {
	var opts openingOptions

	cmd := &cobra.Command{
		Use:   "opening-balances",
		Short: "Compute opening balances at a cutoff date and write them to CSV",
		Long: `Compute each account's balance at the cutoff date from all postings up to
and including it. With --from-balances D0 and --balances-csv, start instead
from the balances in the CSV (dated D0) and roll them forward with the
movements after D0.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOpeningBalances(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.company, "company", 0, "company ID (default from config)")
	f.StringVar(&opts.cutoff, "cutoff", "", "cutoff date, YYYY-MM-DD (required)")
	f.StringVar(&opts.fromBalances, "from-balances", "", "roll forward from balances dated D0")
	f.StringVar(&opts.balancesCSV, "balances-csv", "", "opening balances CSV used with --from-balances")
	f.StringVar(&opts.outDir, "out", "", "output directory (default from config)")
	f.BoolVar(&opts.useCache, "use-cache", false, "use cached opening balances from the database")
	f.BoolVar(&opts.saveCache, "save-cache", false, "store computed opening balances in the database")
	_ = cmd.MarkFlagRequired("cutoff")
	cmd.MarkFlagsRequiredTogether("from-balances", "balances-csv")

	return cmd
}

func runOpeningBalances(cmd *cobra.Command, root *rootOptions, opts openingOptions) error {
	p, err := root.loadProject()
	if err != nil {
		return err
	}
	company, err := p.company(cmd, opts.company)
	if err != nil {
		return err
	}
	cutoff, err := parseDate("cutoff", opts.cutoff)
	if err != nil {
		return err
	}
	var from time.Time
	if opts.fromBalances != "" {
		if from, err = parseDate("from-balances", opts.fromBalances); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	svc, st, err := p.service(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	chart, chartDiags, err := svc.Chart(ctx, company)
	if err != nil {
		return err
	}

	var res *balances.Result
	if from.IsZero() {
		res, err = svc.Opening(ctx, chart, pipeline.OpeningParams{
			Company:   company,
			Cutoff:    cutoff,
			UseCache:  opts.useCache,
			SaveCache: opts.saveCache,
		})
	} else {
		var base *balances.Override
		if base, err = pipeline.ReadOverride(p.path(opts.balancesCSV)); err != nil {
			return err
		}
		res, err = svc.RollForward(ctx, chart, company, from, cutoff, base.Balances)
	}
	if err != nil {
		return err
	}

	path, err := pipeline.WriteOpeningBalances(p.outDir(opts.outDir), res)
	if err != nil {
		return err
	}
	var diags diag.List
	diags.Extend(chartDiags)
	diags.Extend(res.Diagnostics)
	pipeline.LogDiagnostics(p.logger, diags)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, path)
	fmt.Fprintf(out, "%d balances, total %s, %d diagnostics\n",
		len(res.Balances), balances.FormatAmount(res.Total), len(diags))

	entry := runlog.NewEntry("opening-balances", company)
	entry.Details = "cutoff " + cutoff.Format("2006-01-02")
	if !from.IsZero() {
		entry.Details += " from " + from.Format("2006-01-02")
	}
	entry.Diagnostics = len(diags)
	p.record(entry)

	return p.enforce(diags)
}
