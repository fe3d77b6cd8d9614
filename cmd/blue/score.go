package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/suykerbuyk/blue/internal/change"
	"github.com/suykerbuyk/blue/internal/logging"
	"github.com/suykerbuyk/blue/internal/scoring"
)

var (
	scoreVerbose bool
	scoreJSON    bool
)

var scoreCmd = &cobra.Command{
	Use:   "score <file>...",
	Short: "Score files once as if each were newly created",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runScore,
}

func init() {
	scoreCmd.Flags().BoolVarP(&scoreVerbose, "verbose", "v", false, "show the per-pattern breakdown")
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "print JSON")
	rootCmd.AddCommand(scoreCmd)
}

type scoreOutput struct {
	File      string             `json:"file"`
	Score     int                `json:"score"`
	Details   change.Details     `json:"details"`
	Breakdown *scoring.Breakdown `json:"breakdown,omitempty"`
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	engine, err := scoring.New(cfg.Scoring, log)
	if err != nil {
		return err
	}
	defer engine.Close()

	var outs []scoreOutput
	for _, path := range args {
		r := engine.ScoreFile(path)
		o := scoreOutput{File: path, Score: r.Score, Details: r.Details}
		if scoreVerbose && !r.Details.Unreadable {
			if content, err := os.ReadFile(path); err == nil {
				b := engine.Breakdown(path, content)
				o.Breakdown = &b
			}
		}
		outs = append(outs, o)
	}

	w := cmd.OutOrStdout()
	if scoreJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(outs)
	}
	for _, o := range outs {
		printScore(w, o)
	}
	return nil
}

func printScore(w io.Writer, o scoreOutput) {
	d := o.Details
	fmt.Fprintf(w, "%s\n", o.File)
	fmt.Fprintf(w, "  %-20s %d\n", "score", o.Score)
	fmt.Fprintf(w, "  %-20s %s\n", "language", d.Language)
	switch {
	case d.Unreadable:
		fmt.Fprintf(w, "  %-20s %s\n", "unreadable", d.Error)
		return
	case d.Binary:
		fmt.Fprintf(w, "  %-20s %s\n", "binary", "yes")
		return
	}
	fmt.Fprintf(w, "  %-20s %+d\n", "lines", d.LinesChanged)
	if len(d.FunctionsAdded) > 0 {
		fmt.Fprintf(w, "  %-20s %s\n", "new", strings.Join(d.FunctionsAdded, ", "))
	}
	var flags []string
	if d.HasSecurity {
		flags = append(flags, "security")
	}
	if d.HasErrorHandling {
		flags = append(flags, "error handling")
	}
	if d.HasTests {
		flags = append(flags, "tests")
	}
	if len(flags) > 0 {
		fmt.Fprintf(w, "  %-20s %s\n", "flags", strings.Join(flags, ", "))
	}

	if o.Breakdown == nil {
		return
	}
	b := o.Breakdown
	fmt.Fprintf(w, "  %-20s %d\n", "base", b.Base)
	cats := make([]string, 0, len(b.CategoryScores))
	for c := range b.CategoryScores {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	for _, c := range cats {
		fmt.Fprintf(w, "  %-20s %d\n", c, b.CategoryScores[c])
	}
	for _, m := range b.Matches {
		fmt.Fprintf(w, "    %-8s %3d x %d  %s\n", m.Category, m.Matches, m.PointsEach, m.Pattern)
	}
	fmt.Fprintf(w, "  %-20s %d\n", "pattern total", b.Total)
}
