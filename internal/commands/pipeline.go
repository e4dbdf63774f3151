package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerport/internal/balances"
	"github.com/cleared-dev/ledgerport/internal/gitops"
	"github.com/cleared-dev/ledgerport/internal/pipeline"
	"github.com/cleared-dev/ledgerport/internal/runlog"
)

type pipelineOptions struct {
	company        int
	start          string
	end            string
	outDir         string
	balancesCSV    string
	useCache       bool
	saveCache      bool
	includeZeroing bool
	commit         bool
	gitInit        bool
}

func newPipelineCommand(root *rootOptions) *cobra.Command {
	var opts pipelineOptions

	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Write the account map, opening trial balance and Beancount ledger for a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.company, "company", 0, "company ID (default from config)")
	f.StringVar(&opts.start, "start", "", "period start date, YYYY-MM-DD (required)")
	f.StringVar(&opts.end, "end", "", "period end date, YYYY-MM-DD (required)")
	f.StringVar(&opts.outDir, "out", "", "output directory (default from config)")
	f.StringVar(&opts.balancesCSV, "balances-csv", "", "use opening balances from this CSV instead of recomputing")
	f.BoolVar(&opts.useCache, "use-cache", false, "use cached opening balances from the database")
	f.BoolVar(&opts.saveCache, "save-cache", false, "store recomputed opening balances in the database")
	f.BoolVar(&opts.includeZeroing, "include-zeroing", false, "keep zeroing entries (origin 2), dropped by default")
	f.BoolVar(&opts.commit, "commit", false, "commit generated files to git in the output directory")
	f.BoolVar(&opts.gitInit, "git-init", false, "initialize a git repository in the output directory if missing")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func runPipeline(cmd *cobra.Command, root *rootOptions, opts pipelineOptions) error {
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

	var override *balances.Override
	if opts.balancesCSV != "" {
		if override, err = pipeline.ReadOverride(p.path(opts.balancesCSV)); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	svc, st, err := p.service(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	outDir := p.outDir(opts.outDir)
	res, err := svc.Run(ctx, pipeline.RunParams{
		Company:        company,
		Start:          start,
		End:            end,
		OutDir:         outDir,
		Override:       override,
		UseCache:       opts.useCache,
		SaveCache:      opts.saveCache,
		IncludeZeroing: opts.includeZeroing || p.cfg.Balances.IncludeZeroing,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, f := range res.Files {
		fmt.Fprintln(out, f)
	}
	fmt.Fprintf(out, "%d accounts, %d entries, %d opening balances, %d diagnostics\n",
		res.Accounts, res.Entries, len(res.Opening.Balances), len(res.Diagnostics))

	entry := runlog.NewEntry("pipeline", company)
	entry.Details = fmt.Sprintf("%s to %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	entry.Diagnostics = len(res.Diagnostics)

	if opts.commit || opts.gitInit || p.cfg.Git.AutoCommit {
		hash, err := commitOutputs(p, outDir, res.Files, gitops.CommitMessage("pipeline", company, start, end), opts.gitInit)
		if err != nil {
			return err
		}
		if hash != "" {
			fmt.Fprintf(out, "Committed %s\n", hash)
		}
		entry.CommitHash = hash
	}
	p.record(entry)

	return p.enforce(res.Diagnostics)
}

func commitOutputs(p *project, dir string, files []string, message string, initRepo bool) (string, error) {
	if !gitops.IsRepo(dir) {
		if !initRepo {
			return "", fmt.Errorf("%s is not a git repository (use --git-init)", dir)
		}
		if err := gitops.Init(dir); err != nil {
			return "", err
		}
	}
	hash, err := gitops.CommitFiles(dir, files, message, p.author())
	if errors.Is(err, gitops.ErrNothingToCommit) {
		p.logger.Info("outputs unchanged, nothing to commit")
		return "", nil
	}
	return hash, err
}
