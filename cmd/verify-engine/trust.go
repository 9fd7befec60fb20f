// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/verify-engine/internal/trust"
)

var trustCmd = &cobra.Command{
	Use:   "trust <url-or-host>...",
	Short: "Print the domain trust prior for URLs or hosts",
	Long: `Trust looks up each argument in the domain trust catalog and prints its
prior, whether it is classified as a news or social domain, and the prior
blended with a fact-match signal and a page-authority score. Use
--catalog to try a replacement catalog file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		policy := trust.Default()
		if path, _ := cmd.Flags().GetString("catalog"); path != "" {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading catalog: %w", err)
			}
			c, err := trust.ParseCatalog(data)
			if err != nil {
				return err
			}
			policy = trust.NewPolicy(c)
		}
		factMatch, _ := cmd.Flags().GetBool("fact-match")
		authority, _ := cmd.Flags().GetFloat64("authority")
		writeTrust(cmd.OutOrStdout(), policy, args, factMatch, authority)
		return nil
	},
}

func init() {
	trustCmd.Flags().String("catalog", "", "YAML catalog file replacing the built-in one")
	trustCmd.Flags().Bool("fact-match", false, "blend in a positive fact-match signal")
	trustCmd.Flags().Float64("authority", 0, "page-authority score in [0,1] to blend in")
	rootCmd.AddCommand(trustCmd)
}

func writeTrust(w io.Writer, p *trust.Policy, targets []string, factMatch bool, authority float64) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "HOST\tPRIOR\tBLENDED\tNEWS\tSOCIAL")
	for _, t := range targets {
		prior := p.TrustPrior(t)
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%t\t%t\n",
			trust.NormalizeHost(t), prior, trust.BlendWithSignals(prior, factMatch, authority),
			p.IsNewsDomain(t), p.IsSocialDomain(t))
	}
	tw.Flush()
}
