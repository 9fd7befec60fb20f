// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/verify-engine/internal/textnorm"
	"github.com/pdiddy/verify-engine/pkg/types"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify one post and print the verdict",
	Long: `Verify runs the configured verification path (hybrid search or llm) for
one post and prints the verdict, confidence, rationale and top evidences.`,
	Example: `  verify-engine verify --platform instagram \
    --source-url https://www.instagram.com/p/abc \
    --title "서울 재즈 페스티벌 10.18 공식 예매"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := requestFromFlags(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		resp := buildEngine(cfg, logger).Verify(ctx, req)
		return writeResponse(cmd.OutOrStdout(), resp, format)
	},
}

func init() {
	addRequestFlags(verifyCmd)
	verifyCmd.Flags().String("format", "table", "output format: table, json or yaml")
	rootCmd.AddCommand(verifyCmd)
}

func addRequestFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("platform", "", "origin platform, e.g. instagram, naver_news (required)")
	f.String("source-url", "", "URL of the post (required)")
	f.String("title", "", "post title")
	f.String("text", "", "post body")
	f.String("language", "", "content language, e.g. ko")
	f.StringSlice("image-url", nil, "attached image URL (repeatable)")
	_ = cmd.MarkFlagRequired("platform")
	_ = cmd.MarkFlagRequired("source-url")
}

func requestFromFlags(cmd *cobra.Command) (types.VerificationRequest, error) {
	f := cmd.Flags()
	var req types.VerificationRequest
	req.Platform, _ = f.GetString("platform")
	req.SourceURL, _ = f.GetString("source-url")
	req.Title, _ = f.GetString("title")
	req.Text, _ = f.GetString("text")
	req.Language, _ = f.GetString("language")
	req.ImageURLs, _ = f.GetStringSlice("image-url")

	if strings.TrimSpace(req.Platform) == "" || strings.TrimSpace(req.SourceURL) == "" {
		return req, fmt.Errorf("--platform and --source-url must not be blank")
	}
	return req, nil
}

// writeResponse renders resp in the requested format.
func writeResponse(w io.Writer, resp types.VerificationResponse, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(resp)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(resp); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		writeTable(w, resp)
		return nil
	default:
		return fmt.Errorf("unknown format %q: expected table, json or yaml", format)
	}
}

func writeTable(w io.Writer, resp types.VerificationResponse) {
	fmt.Fprintf(w, "Verdict:    %s\n", resp.Verdict)
	fmt.Fprintf(w, "Confidence: %d\n", resp.Confidence)
	fmt.Fprintf(w, "Consensus:  %s\n\n", resp.ConsensusSummary)
	fmt.Fprintln(w, resp.Rationale)

	if len(resp.Evidences) == 0 {
		fmt.Fprintln(w, "\nNo evidence found.")
		return
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSIM\tTRUST\tSOURCE\tDOMAIN\tPUBLISHED\tTITLE")
	for i, e := range resp.Evidences {
		published := ""
		if e.PublishedAt != nil {
			published = e.PublishedAt.Format(time.DateOnly)
		}
		fmt.Fprintf(tw, "%d\t%.2f\t%.2f\t%s\t%s\t%s\t%s\n",
			i+1, e.Similarity, e.TrustPrior, e.Source, e.Domain, published, textnorm.Ellipsize(e.Title, 60))
	}
	tw.Flush()
}

