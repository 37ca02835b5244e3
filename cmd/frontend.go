package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/kilianp07/taxifare/api/static"
	"github.com/kilianp07/taxifare/infra/logger"
)

var (
	frontendDir  string
	frontendAddr string
)

var frontendCmd = &cobra.Command{
	Use:   "frontend",
	Short: "Serve the static frontend with CORS headers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		gin.SetMode(gin.ReleaseMode)
		fmt.Fprintf(cmd.OutOrStdout(), "Serving files from %s\nFrontend URL: http://localhost%s\n", frontendDir, frontendAddr)
		return static.Serve(ctx, frontendAddr, frontendDir, logger.New("frontend"))
	},
}

func init() {
	frontendCmd.Flags().StringVar(&frontendDir, "dir", "frontend", "directory to serve")
	frontendCmd.Flags().StringVar(&frontendAddr, "addr", ":8000", "listen address")
	rootCmd.AddCommand(frontendCmd)
}
