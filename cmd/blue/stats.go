package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/suykerbuyk/blue/internal/feedback"
	"github.com/suykerbuyk/blue/internal/history"
)

var (
	statsFormat string
	statsClear  bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show feedback and trigger statistics from the history store",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsFormat, "format", "text", "output format: text, json, yaml")
	statsCmd.Flags().BoolVar(&statsClear, "clear", false, "delete all stored history")
	rootCmd.AddCommand(statsCmd)
}

type statsOutput struct {
	Feedback feedback.Export      `json:"feedback" yaml:"feedback"`
	Triggers history.TriggerStats `json:"triggers" yaml:"triggers"`
}

func runStats(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Store.Enabled {
		return fmt.Errorf("history store is disabled ([store] enabled = false)")
	}

	store, err := history.Open(cfg.StorePath())
	if err != nil {
		return err
	}
	defer store.Close()

	w := cmd.OutOrStdout()
	if statsClear {
		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(w, "history cleared")
		return nil
	}

	records, err := store.Feedback(cfg.Feedback.HistoryLimit)
	if err != nil {
		return err
	}
	initial := cfg.Limits.ScoreThreshold
	current := initial
	if th, ok, err := store.LastThreshold(); err != nil {
		return err
	} else if ok {
		current = th
	}
	triggers, err := store.TriggerStats()
	if err != nil {
		return err
	}

	out := statsOutput{
		Feedback: feedback.Export{
			History:  records,
			Stats:    feedback.ComputeStats(records, initial, current),
			Analysis: feedback.Analyze(records),
		},
		Triggers: triggers,
	}

	switch statsFormat {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(out)
	case "text", "":
		fmt.Fprint(w, feedback.Format(out.Feedback))
		fmt.Fprint(w, formatTriggers(triggers))
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", statsFormat)
	}
}

func formatTriggers(t history.TriggerStats) string {
	s := "\nBatches\n"
	s += fmt.Sprintf("  %-20s %d\n", "released", t.Triggers)
	s += fmt.Sprintf("  %-20s %d\n", "accepted", t.Accepted)
	s += fmt.Sprintf("  %-20s %d\n", "rejected", t.Rejected)
	s += fmt.Sprintf("  %-20s %d\n", "model errors", t.Errors)

	reasons := make([]string, 0, len(t.ByReason))
	for r := range t.ByReason {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)
	for _, r := range reasons {
		s += fmt.Sprintf("    %-22s %d\n", r, t.ByReason[r])
	}
	return s
}
