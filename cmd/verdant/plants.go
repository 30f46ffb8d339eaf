package main

import (
	"time"

	"github.com/aretw0/verdant/internal/cli"
	"github.com/aretw0/verdant/pkg/domain"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List plants, optionally filtered by type",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, out, err := setup(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		query, _ := cmd.Flags().GetString("query")
		return cli.RunList(cmd.Context(), rt, out, query)
	},
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a plant",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, out, err := setup(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		plantType, _ := cmd.Flags().GetString("type")
		period, _ := cmd.Flags().GetInt("period")
		return cli.RunAdd(cmd.Context(), rt, out, domain.PlantInput{Type: plantType, WateringPeriod: period})
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <id>...",
	Short: "Delete plants by id",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, out, err := setup(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer rt.Close()
		return cli.RunRemove(cmd.Context(), rt, out, args)
	},
}

var enrichCmd = &cobra.Command{
	Use:   "enrich <id>",
	Short: "Ask Gemini how often a plant should be watered",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, out, err := setup(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer rt.Close()
		return cli.RunEnrich(cmd.Context(), rt, out, args[0])
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reprint the plant list whenever the shared catalog changes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		rt, out, err := setup(sigCtx, cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		query, _ := cmd.Flags().GetString("query")
		interval, _ := cmd.Flags().GetDuration("interval")
		return cli.RunWatch(sigCtx, rt, out, cli.WatchOptions{Query: query, Interval: interval})
	},
}

func init() {
	rootCmd.AddCommand(listCmd, addCmd, rmCmd, enrichCmd, watchCmd)

	listCmd.Flags().StringP("query", "q", "", "Case-insensitive substring of the plant type")

	addCmd.Flags().StringP("type", "t", "", "Plant type, e.g. Monstera")
	addCmd.Flags().IntP("period", "p", 0, "Days between waterings")
	_ = addCmd.MarkFlagRequired("type")
	_ = addCmd.MarkFlagRequired("period")

	watchCmd.Flags().StringP("query", "q", "", "Case-insensitive substring of the plant type")
	watchCmd.Flags().Duration("interval", 2*time.Second, "Polling interval")
}
