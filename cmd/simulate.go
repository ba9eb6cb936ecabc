package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rnwolfe/streak/internal/replay"
	"github.com/rnwolfe/streak/internal/streak"
	"github.com/rnwolfe/streak/internal/ui"
	"github.com/spf13/cobra"
)

// referenceAlgo is the engine every other algorithm is compared against.
const referenceAlgo = "interval"

var (
	simulateAlgo  string
	simulateTrace bool
	simulateRaw   bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate [script|scenario]...",
	Short: "Replay scripted scenarios against streak algorithms",
	Long: `Replay scenarios written in symbolic week times against a simulated
server clock that starts at Mon 00:00.

Each argument is a script file or the name of a built-in scenario. With no
arguments every built-in scenario runs. Script lines:

  utc Mon 12:00           set the server clock
  advance 25h             move the server clock forward
  record Tue 01:00 [+15h] client reports this local time
  record-utc Mon 07:00    set the clock; client reports UTC
  record-tz +13:00        client reports the clock at this offset
  expect 2                the streak length right now

Use --algo all to compare the interval engine with the baselines.`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().StringVar(&simulateAlgo, "algo", referenceAlgo,
		"Algorithm to run: "+strings.Join(streak.AlgorithmNames(), ", ")+" or all")
	simulateCmd.Flags().BoolVar(&simulateTrace, "trace", false, "Print the streak after every step")
	simulateCmd.Flags().BoolVar(&simulateRaw, "raw", false, "Print markdown without rendering")
}

func runSimulate(_ *cobra.Command, args []string) error {
	scripts, err := loadScripts(args)
	if err != nil {
		return err
	}

	algos := []string{simulateAlgo}
	if simulateAlgo == "all" {
		algos = streak.AlgorithmNames()
	} else if _, err := streak.NewAlgorithm(simulateAlgo); err != nil {
		return err
	}

	reports := make(map[string][]replay.Report, len(algos))
	for _, name := range algos {
		for _, s := range scripts {
			a, _ := streak.NewAlgorithm(name)
			reports[name] = append(reports[name], s.Run(a))
		}
	}

	md := simulateMarkdown(scripts, algos, reports)
	if simulateTrace {
		for _, name := range algos {
			for _, rep := range reports[name] {
				md += "\n" + traceMarkdown(name, rep)
			}
		}
	}
	if err := ui.WriteMarkdown(os.Stdout, md, simulateRaw); err != nil {
		return err
	}

	// In comparison mode the baselines are expected to diverge.
	judged := algos
	if simulateAlgo == "all" {
		judged = []string{referenceAlgo}
	}
	failed := 0
	for _, name := range judged {
		for _, rep := range reports[name] {
			if !rep.OK() {
				failed++
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d %s failed", failed, ui.Plural(failed, "scenario", "scenarios"))
	}
	return nil
}

// loadScripts resolves each argument as a file, then as a scenario name.
func loadScripts(args []string) ([]*replay.Script, error) {
	if len(args) == 0 {
		return replay.Scripts()
	}
	scripts := make([]*replay.Script, 0, len(args))
	for _, arg := range args {
		if _, err := os.Stat(arg); err == nil {
			s, err := parseScriptFile(arg)
			if err != nil {
				return nil, err
			}
			scripts = append(scripts, s)
			continue
		}
		s, err := replay.Lookup(arg)
		if err != nil {
			return nil, fmt.Errorf("%s is neither a file nor a built-in scenario", arg)
		}
		scripts = append(scripts, s)
	}
	return scripts, nil
}

func parseScriptFile(path string) (*replay.Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return replay.Parse(name, f)
}

func simulateMarkdown(scripts []*replay.Script, algos []string, reports map[string][]replay.Report) string {
	tbl := ui.NewTable(append([]string{"Scenario"}, algos...)...)
	for i, s := range scripts {
		row := []string{s.Name}
		for _, name := range algos {
			row = append(row, reportCell(reports[name][i]))
		}
		tbl.Row(row...)
	}
	return "# Scenarios\n\n" + tbl.Markdown()
}

func reportCell(rep replay.Report) string {
	switch {
	case rep.Err != nil:
		return "error: " + rep.Err.Error()
	case len(rep.Failures) > 0:
		parts := make([]string, 0, len(rep.Failures))
		for _, f := range rep.Failures {
			parts = append(parts, f.String())
		}
		return "✗ " + strings.Join(parts, "; ")
	default:
		return "✓"
	}
}

func traceMarkdown(algo string, rep replay.Report) string {
	tbl := ui.NewTable("Step", "Server clock", "Streak")
	for _, o := range rep.Outcomes {
		tbl.Row(o.Step.String(), replay.FormatMoment(o.Now), fmt.Sprint(o.Streak))
	}
	return fmt.Sprintf("## %s / %s\n\n", rep.Script, algo) + tbl.Markdown()
}
