// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/pdiddy/verify-engine/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the verification API over HTTP",
	Long: `Serve exposes POST /api/v1/verify and GET /healthz. The request body is a
JSON object with platform and sourceUrl (required) and optional title,
text, language and imageUrls.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}
		if !cfg.Log.Development {
			gin.SetMode(gin.ReleaseMode)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		h := server.New(buildEngine(cfg, logger), cfg.Server, logger)
		return server.Run(ctx, cfg.Server.Addr, h, logger)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config, :8080)")
	rootCmd.AddCommand(serveCmd)
}
