package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Myangsun/HiyaDrive"
	"github.com/Myangsun/HiyaDrive/internal/cli"
	"github.com/Myangsun/HiyaDrive/internal/config"
	loamadapter "github.com/Myangsun/HiyaDrive/pkg/adapters/loam"
	redisadapter "github.com/Myangsun/HiyaDrive/pkg/adapters/redis"
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [session-id]",
	Short: "Show past reservation sessions",
	Long: `Without arguments, prints the backend selection, then lists the sessions kept in
the archive (archive.dir) and the outcomes published to Redis (redis.addr).
With a session ID, prints that archived session.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		requester, _ := cmd.Flags().GetString("requester")
		if requester == "" {
			requester = cfg.RequesterID
		}
		limit, _ := cmd.Flags().GetInt("limit")
		out := cmd.OutOrStdout()
		ctx := cmd.Context()

		var archive *loamadapter.Archive
		if cfg.Archive.Dir != "" {
			if archive, err = loamadapter.Open(cfg.Archive.Dir); err != nil {
				return err
			}
		}

		if len(args) == 1 {
			if archive == nil {
				return fmt.Errorf("showing a session needs archive.dir to be configured")
			}
			rec, err := archive.Get(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(out, render(out, recordMarkdown(rec)))
			return nil
		}

		fmt.Fprintf(out, "HiyaDrive %s\n", strings.TrimSpace(hiyadrive.Version))
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, sel := range cli.Backends(cfg) {
			fmt.Fprintf(tw, "  %s\t%s\n", sel.Concern, sel.Backend)
		}
		_ = tw.Flush()

		if archive != nil {
			entries, err := archive.List(ctx, requester)
			if err != nil {
				return err
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}
			fmt.Fprintf(out, "\nArchived sessions for %s:\n", requester)
			printEntries(out, entries)
		}

		if cfg.Redis.Addr != "" {
			return printHistory(ctx, out, cfg, requester, limit)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().String("requester", "", "Requester ID (default from config)")
	statusCmd.Flags().Int("limit", 10, "Maximum number of sessions to list")
}

func printEntries(w io.Writer, entries []loamadapter.Entry) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tSTATUS\tCANDIDATE\tTOKEN\tENDED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.SessionID, e.Status, dash(e.Candidate), dash(e.ConfirmationToken), e.EndedAt)
	}
	_ = tw.Flush()
}

func printHistory(ctx context.Context, w io.Writer, cfg *config.Config, requester string, limit int) error {
	client := backend.NewClient(&backend.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer client.Close()

	pub := redisadapter.NewPublisher(client, redisadapter.WithPrefix(cfg.Redis.Prefix))
	outcomes, err := pub.History(ctx, requester, limit)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\nPublished outcomes for %s:\n", requester)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tSTATUS\tCANDIDATE\tTOKEN\tENDED")
	for _, o := range outcomes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", o.SessionID, o.Status, dash(o.Candidate), dash(o.ConfirmationToken),
			o.EndedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

func recordMarkdown(rec loamadapter.Record) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Reservation %s\n\n", strings.ToUpper(rec.Status))
	fmt.Fprintf(&sb, "- **Session**: `%s`\n", rec.SessionID)
	fmt.Fprintf(&sb, "- **Requester**: %s\n", rec.RequesterID)
	if rec.Candidate != "" {
		fmt.Fprintf(&sb, "- **Restaurant**: %s (%s)\n", rec.Candidate, rec.Contact)
	}
	if rec.ConfirmationToken != "" {
		fmt.Fprintf(&sb, "- **Confirmation**: %s\n", rec.ConfirmationToken)
	}
	fmt.Fprintf(&sb, "- **Retries**: %d, **Turns**: %d\n", rec.Retries, rec.Turns)
	fmt.Fprintf(&sb, "- **Ended**: %s\n", rec.EndedAt)
	if len(rec.Errors) > 0 {
		sb.WriteString("\n## Errors\n\n")
		for _, e := range rec.Errors {
			fmt.Fprintf(&sb, "- %s\n", e)
		}
	}
	if rec.Transcript != "" {
		sb.WriteString("\n## Transcript\n\n")
		sb.WriteString(rec.Transcript)
		sb.WriteString("\n")
	}
	return sb.String()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
