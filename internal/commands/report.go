package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerport/internal/pipeline"
	"github.com/cleared-dev/ledgerport/internal/runlog"
	"github.com/cleared-dev/ledgerport/internal/statements"
)

type reportOptions struct {
	company        int
	start          string
	end            string
	period         string
	outDir         string
	includeZeroing bool
}

func newReportCommand(root *rootOptions) *cobra.Command {
	var opts reportOptions

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write the statements workbook (XLSX) for a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.company, "company", 0, "company ID (default from config)")
	f.StringVar(&opts.start, "start", "", "period start date, YYYY-MM-DD (required)")
	f.StringVar(&opts.end, "end", "", "period end date, YYYY-MM-DD (required)")
	f.StringVar(&opts.period, "period", "", "income statement columns: year, quarter or month")
	f.StringVar(&opts.outDir, "out", "", "output directory (default from config)")
	f.BoolVar(&opts.includeZeroing, "include-zeroing", false, "keep zeroing entries (origin 2), dropped by default")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func runReport(cmd *cobra.Command, root *rootOptions, opts reportOptions) error {
	p, err := root.loadProject()
	if err != nil {
		return err
	}
	company, err := p.company(cmd, opts.company)
	if err != nil {
		return err
	}
	start, err := parseDate("start", opts.start)
	if err != nil {
		return err
	}
	end, err := parseDate("end", opts.end)
	if err != nil {
		return err
	}
	period, err := statements.ParsePeriod(opts.period)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	svc, st, err := p.service(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	res, err := svc.Report(ctx, pipeline.Query{
		Company:        company,
		From:           start,
		To:             end,
		Period:         period,
		IncludeZeroing: opts.includeZeroing || p.cfg.Balances.IncludeZeroing,
	}, p.outDir(opts.outDir))
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), res.File)

	entry := runlog.NewEntry("report", company)
	entry.Details = fmt.Sprintf("%s to %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	entry.Diagnostics = len(res.Diagnostics)
	p.record(entry)

	return p.enforce(res.Diagnostics)
}
