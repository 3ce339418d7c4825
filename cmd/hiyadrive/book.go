package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/Myangsun/HiyaDrive/internal/cli"
	"github.com/Myangsun/HiyaDrive/internal/presentation/tui"
	"github.com/Myangsun/HiyaDrive/pkg/domain"
	"github.com/spf13/cobra"
)

var bookCmd = &cobra.Command{
	Use:   "book [request...]",
	Short: "Book a reservation from a spoken request",
	Long: `Runs one reservation session. The request is the first utterance; anything missing
is asked for on the console. With --scripted the answers come from mock.replies instead.`,
	Example: `  hiyadrive book "table for 2 at an Italian place in Boston tomorrow at 7pm"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		scripted, _ := cmd.Flags().GetBool("scripted")
		if v, _ := cmd.Flags().GetString("verbosity"); v != "" {
			cfg.Verbosity = v
		}
		requester, _ := cmd.Flags().GetString("requester")
		if requester == "" {
			requester = cfg.RequesterID
		}

		ctx, stop := cli.WithInterrupt(cmd.Context())
		defer stop()

		out := cmd.OutOrStdout()
		app, err := cli.Build(ctx, cfg, cli.Options{
			Console: !scripted,
			Stdin:   cmd.InOrStdin(),
			Stdout:  out,
		})
		if err != nil {
			return err
		}
		defer app.Close()

		if f, ok := out.(*os.File); ok && !scripted && tui.IsTerminal(f) {
			tui.PrintBanner(f)
		}

		s, err := app.Agent.Run(ctx, requester, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(out, render(out, tui.Report(s)))

		if err := cli.Interrupted(ctx); err != nil {
			return err
		}
		if s.Status != domain.StatusCompleted {
			return fmt.Errorf("reservation %s", s.Status)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bookCmd)
	bookCmd.Flags().Bool("scripted", false, "Replay mock.replies instead of reading the console")
	bookCmd.Flags().String("requester", "", "Requester ID (default from config)")
	bookCmd.Flags().String("verbosity", "", "Override verbosity (silent, narrated, interactive)")
}
