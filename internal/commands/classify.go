package commands

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerport/internal/classify"
)

func newClassifyCommand(root *rootOptions) *cobra.Command {
	var typeFlag, modelName string

	cmd := &cobra.Command{
		Use:   "classify CODE",
		Short: "Show how a classification code resolves",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := root.loadProject()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("model") {
				modelName = p.cfg.Model.Name
			}
			custom, err := p.cfg.Customizations(p.dir)
			if err != nil {
				return err
			}
			table, err := classify.ResolveModel(modelName, custom)
			if err != nil {
				return err
			}

			r := classify.Resolve(args[0], typeFlag, table)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "code:     %s\n", args[0])
			fmt.Fprintf(out, "category: %s\n", r.Category)
			fmt.Fprintf(out, "group:    %s\n", r.Group)
			fmt.Fprintf(out, "method:   %s\n", r.Method)
			if r.Ambiguous() {
				fmt.Fprintf(out, "warning:  code alone resolves to %s\n", r.CodeCategory)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&typeFlag, "type", "", "account type flag (A, L, E, I, R, X, D)")
	cmd.Flags().StringVar(&modelName, "model", "", "classification model (default from config)")

	return cmd
}

func newModelsCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models [name]",
		Short: "List built-in classification models, or the rules of one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				current := ""
				if p, err := root.loadProject(); err == nil {
					current = p.cfg.Model.Name
				}
				for _, name := range classify.Models() {
					marker := " "
					if name == current {
						marker = "*"
					}
					fmt.Fprintf(out, "%s %s\n", marker, name)
				}
				return nil
			}

			rules, ok := classify.Builtin(args[0])
			if !ok {
				return fmt.Errorf("unknown model %q", args[0])
			}
			prefixes := make([]string, 0, len(rules))
			for k := range rules {
				prefixes = append(prefixes, k)
			}
			sort.Strings(prefixes)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, k := range prefixes {
				fmt.Fprintf(tw, "%s\t%s\n", k, rules[k])
			}
			return tw.Flush()
		},
	}

	return cmd
}
