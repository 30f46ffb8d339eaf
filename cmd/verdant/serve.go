package main

import (
	"os"

	"github.com/aretw0/verdant"
	"github.com/aretw0/verdant/internal/cli"
	"github.com/aretw0/verdant/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  `Serves the plant catalog as a JSON API with server-sent state events, Prometheus metrics and an OpenAPI document.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		rt, out, err := setup(sigCtx, cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		addr := rt.Config.HTTP.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}
		opts := cli.ServeOptions{Addr: addr}
		if withMCP, _ := cmd.Flags().GetBool("mcp"); withMCP {
			opts.MCPAddr = rt.Config.HTTP.MCPAddr
		}

		if tui.IsTerminal(os.Stdout) {
			tui.PrintBanner(out.W, verdant.Version)
		}
		err = cli.RunServe(sigCtx, rt, out, opts)
		if sig := sigCtx.Signal(); sig != nil {
			rt.Logger.Info("Shutdown complete", "signal", sig.String())
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
	serveCmd.Flags().Bool("mcp", false, "Also serve MCP over SSE on http.mcp_addr")
}
