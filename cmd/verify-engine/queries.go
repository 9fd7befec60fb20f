// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/verify-engine/internal/verify"
)

var queriesCmd = &cobra.Command{
	Use:   "queries",
	Short: "Show the search plan for a post without searching",
	Long: `Queries prints the normalized text, boosted keywords, extracted facts,
the primary query and the ordered fallback candidates the hybrid path
would try. No provider is called.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := requestFromFlags(cmd)
		if err != nil {
			return err
		}
		plan := verify.New(verify.Options{KeywordLimit: cfg.Search.KeywordLimit, Logger: logger}).Plan(req)
		writePlan(cmd.OutOrStdout(), plan)
		return nil
	},
}

func init() {
	addRequestFlags(queriesCmd)
	rootCmd.AddCommand(queriesCmd)
}

func writePlan(w io.Writer, p verify.Plan) {
	fmt.Fprintf(w, "Normalized: %s\n", p.Normalized)
	fmt.Fprintf(w, "Keywords:   %s\n", strings.Join(p.Keywords, ", "))
	if f := p.Facts; f != nil {
		fmt.Fprintf(w, "Event:      %s\n", f.EventName)
		fmt.Fprintf(w, "Date:       %s\n", f.DateText())
		fmt.Fprintf(w, "Place:      %s\n", f.Place())
		if len(f.Hashtags)+len(f.Handles) > 0 {
			fmt.Fprintf(w, "Anchors:    %s\n", strings.Join(append(append([]string{}, f.Hashtags...), f.Handles...), " "))
		}
	}
	fmt.Fprintf(w, "\nPrimary:    %s\n\nFallback:\n", p.Primary)
	for i, q := range p.Fallback {
		fmt.Fprintf(w, "%3d  %s\n", i+1, q)
	}
}
