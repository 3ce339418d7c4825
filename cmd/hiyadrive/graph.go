package main

import (
	"encoding/json"
	"fmt"

	"github.com/Myangsun/HiyaDrive/internal/cli"
	"github.com/Myangsun/HiyaDrive/internal/dto"
	"github.com/Myangsun/HiyaDrive/internal/presentation/graph"
	loamadapter "github.com/Myangsun/HiyaDrive/pkg/adapters/loam"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the workflow graph",
	Long: `Prints the reservation workflow as a Mermaid diagram (graph TD), JSON or YAML.
With --demo a mock session is run first and the steps it visited are highlighted;
--session highlights the path of an archived session instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		sessionID, _ := cmd.Flags().GetString("session")
		demo, _ := cmd.Flags().GetBool("demo")

		agent, err := cli.DemoAgent()
		if err != nil {
			return err
		}
		g := agent.Graph()
		out := cmd.OutOrStdout()

		switch format {
		case "mermaid":
			var overlay *graph.Overlay
			switch {
			case demo:
				s, err := agent.Run(cmd.Context(), "demo", cli.DemoRequest)
				if err != nil {
					return err
				}
				overlay = graph.OverlayFromPath(s.Path)
			case sessionID != "":
				cfg, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				if cfg.Archive.Dir == "" {
					return fmt.Errorf("--session needs archive.dir to be configured")
				}
				archive, err := loamadapter.Open(cfg.Archive.Dir)
				if err != nil {
					return err
				}
				rec, err := archive.Get(cmd.Context(), sessionID)
				if err != nil {
					return err
				}
				overlay = graph.OverlayFromPath(rec.Path)
			}
			fmt.Fprint(out, graph.GenerateMermaid(g, overlay))
		case "json":
			data, err := json.MarshalIndent(dto.FromGraph(g), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(data))
		case "yaml":
			data, err := yaml.Marshal(dto.FromGraph(g))
			if err != nil {
				return err
			}
			fmt.Fprint(out, string(data))
		default:
			return fmt.Errorf("unknown format %q (supported: mermaid, json, yaml)", format)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("format", "mermaid", "Output format: mermaid, json or yaml")
	graphCmd.Flags().String("session", "", "Highlight the path of an archived session (mermaid only)")
	graphCmd.Flags().Bool("demo", false, "Highlight the path of a mock demo run (mermaid only)")
}
