// Command postflow-solver is the CLI front end for the postflop solver
// library: parse a position, build a tree, run Discounted-CFR+, print the
// resulting strategy. Flag layout and the load/save/report modes follow the
// teacher's cmd/poker-solver/main.go; the FEN-style position grammar comes
// from pkg/notation; pterm styling and the log/slog+pterm handler pairing
// follow luca-patrignani-mental-poker/cmd/main.go.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"

	"github.com/holdem-tree/postflop-solver/pkg/cards"
	"github.com/holdem-tree/postflop-solver/pkg/codec"
	"github.com/holdem-tree/postflop-solver/pkg/game"
	"github.com/holdem-tree/postflop-solver/pkg/notation"
	"github.com/holdem-tree/postflop-solver/pkg/solver"
	"github.com/holdem-tree/postflop-solver/pkg/solverapi"
	"github.com/holdem-tree/postflop-solver/pkg/tree"
)

func main() {
	// A missing .env is not an error: godotenv.Load only seeds flag
	// defaults for local development, matching jackkayser2005-pokerBench's
	// server/main.go, which ignores the same error for the same reason.
	_ = godotenv.Load()

	logger := slog.New(pterm.NewSlogHandler(&pterm.DefaultLogger))
	slog.SetDefault(logger)

	iterations := flag.Int("iterations", 1000, "number of CFR iterations to run")
	targetExploitability := flag.Float64("target-exploitability", 0, "stop early once exploitability (in chips) falls to or below this; 0 disables early stop")
	compressed := flag.Bool("compressed", false, "use 16-bit compressed storage")
	betSizes := flag.String("bet", "50%,100%", "comma-separated bet sizes for every street")
	raiseSizes := flag.String("raise", "100%", "comma-separated raise sizes for every street")
	donkSizes := flag.String("donk", "", "comma-separated donk-bet sizes for every street (empty disables donking)")
	addAllin := flag.Float64("add-allin-threshold", 0.15, "fold sizes within this fraction of all-in into all-in")
	forceAllin := flag.Float64("force-allin-threshold", 0.05, "force all-in when stack-behind/pot is below this")
	mergeThreshold := flag.Float64("merge-threshold", 0.1, "relative tolerance for deduplicating candidate sizes")
	rakeRate := flag.Float64("rake", 0, "rake rate in [0,1] applied at showdown")
	rakeCap := flag.Float64("rake-cap", 0, "maximum rake in chips")
	saveFile := flag.String("save", "", "save the solved game to this file")
	saveMode := flag.String("save-mode", "river", "street to truncate the save at: flop, turn, or river")
	loadFile := flag.String("load", "", "load a previously saved game instead of solving (skips position parsing)")
	report := flag.Bool("report", false, "print a hand-class strategy breakdown instead of raw per-combo rows")
	verbose := flag.Bool("verbose", false, "log progress during solving")
	batchFile := flag.String("batch", "", "solve one position per line of this file instead of a single CLI position")

	flag.Parse()

	opts := solverapi.Options{
		BetSizes:            *betSizes,
		RaiseSizes:          *raiseSizes,
		DonkSizes:           *donkSizes,
		AddAllinThreshold:   *addAllin,
		ForceAllinThreshold: *forceAllin,
		MergeThreshold:      *mergeThreshold,
		RakeRate:            *rakeRate,
		RakeCap:             *rakeCap,
		Compressed:          *compressed,
	}

	if *loadFile != "" {
		if err := runLoad(*loadFile, *report); err != nil {
			slog.Error("load failed", "error", err)
			os.Exit(1)
		}
		return
	}

	pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("postflow", pterm.FgRed.ToStyle()),
	).Render()

	if *batchFile != "" {
		if err := runBatch(*batchFile, opts, *iterations, *targetExploitability, *saveFile, *saveMode, *report, *verbose); err != nil {
			slog.Error("batch failed", "error", err)
			os.Exit(1)
		}
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: postflow-solver [flags] <position>")
		fmt.Fprintln(os.Stderr, `  position example: "OOP:AA,KK:S100/IP:QQ,JJ:S100|P10|Kh9s4c7d2s"`)
		flag.PrintDefaults()
		os.Exit(1)
	}

	spec, err := notation.ParsePosition(args[0])
	if err != nil {
		slog.Error("failed to parse position", "error", err)
		os.Exit(1)
	}

	g, err := solveOne(spec, opts, *iterations, *targetExploitability, *verbose)
	if err != nil {
		slog.Error("solve failed", "error", err)
		os.Exit(1)
	}

	if *saveFile != "" {
		if err := saveGame(g, *saveFile, *saveMode); err != nil {
			slog.Error("save failed", "error", err)
			os.Exit(1)
		}
		pterm.Success.Printfln("saved to %s", *saveFile)
	}

	printReport(g, spec, *report)
}

// solveOne builds the game for spec+opts and drives the solver one
// SolveStep at a time (spec.md §4.3's solve_step contract), reporting
// progress on a pterm progress bar and stopping early once a positive
// targetExploitability is reached.
func solveOne(spec *notation.PositionSpec, opts solverapi.Options, iterations int, targetExploitability float64, verbose bool) (*game.PostFlopGame, error) {
	g, err := solverapi.NewGame(spec, opts)
	if err != nil {
		return nil, fmt.Errorf("build game: %w", err)
	}
	sv, err := solver.New(g)
	if err != nil {
		return nil, fmt.Errorf("construct solver: %w", err)
	}

	bar, _ := pterm.DefaultProgressbar.WithTotal(iterations).WithTitle("solving").Start()
	start := time.Now()
	if verbose {
		slog.Info("solving", "iterations", iterations, "street", g.StorageMode, "compressed", opts.Compressed)
	}
	ctx := context.Background()
	const probeEvery = 10
	var achieved float64
	for it := 1; it <= iterations; it++ {
		if err := sv.SolveStep(ctx); err != nil {
			return nil, fmt.Errorf("iteration %d: %w", it, err)
		}
		bar.Add(1)
		if it%probeEvery == 0 || it == iterations {
			expl, err := sv.Exploitability(ctx)
			if err != nil {
				return nil, fmt.Errorf("exploitability: %w", err)
			}
			achieved = expl
			if targetExploitability > 0 && expl <= targetExploitability {
				break
			}
		}
	}
	bar.Stop()
	slog.Info("solved", "elapsed", time.Since(start), "iterations", iterations, "exploitability", achieved)
	return g, nil
}

// runBatch solves one position per non-empty, non-comment line of path,
// per SPEC_FULL's batch-solve feature (adapted from
// original_source/examples/batch_solve.rs, which likewise reads one
// position per line and writes one snapshot per line). saveFile, when set,
// becomes the prefix for per-line snapshot files ("<saveFile>.0",
// "<saveFile>.1", ...) since a single name can't hold every line's result.
func runBatch(path string, opts solverapi.Options, iterations int, targetExploitability float64, saveFile, saveMode string, report, verbose bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		line++
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		spec, err := notation.ParsePosition(text)
		if err != nil {
			return fmt.Errorf("line %d: parse position: %w", line, err)
		}
		pterm.Info.Printfln("line %d: %s", line, text)

		g, err := solveOne(spec, opts, iterations, targetExploitability, verbose)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}

		if saveFile != "" {
			path := fmt.Sprintf("%s.%d", saveFile, line-1)
			if err := saveGame(g, path, saveMode); err != nil {
				return fmt.Errorf("line %d: save: %w", line, err)
			}
			pterm.Success.Printfln("line %d: saved to %s", line, path)
		}

		printReport(g, spec, report)
	}
	return scanner.Err()
}

func saveGame(g *game.PostFlopGame, path, modeStr string) error {
	var mode cards.BoardState
	switch modeStr {
	case "flop":
		mode = cards.Flop
	case "turn":
		mode = cards.Turn
	case "river", "":
		mode = cards.River
	default:
		return fmt.Errorf("unknown save-mode %q (want flop, turn, or river)", modeStr)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return codec.Save(g, mode, f)
}

func runLoad(path string, report bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	g, err := codec.Load(f)
	if err != nil {
		return err
	}
	pterm.Info.Printfln("loaded game: storage mode %v, state %v, %d nodes", g.StorageMode, g.State, len(g.Nodes))
	printReport(g, nil, report)
	return nil
}

func printReport(g *game.PostFlopGame, spec *notation.PositionSpec, aggregate bool) {
	root := g.Node(g.Root())
	if root.Kind != tree.PlayerNode {
		pterm.Warning.Println("root is not a player decision node; nothing to report")
		return
	}

	if aggregate {
		printHandClassTable(g, root.ToAct)
		return
	}

	sum := g.StrategyAt(g.Root())
	hands := root.Hands(root.ToAct)
	avg := solver.AverageStrategy(sum, int(root.NumActions), len(hands))
	headerData := pterm.TableData{{"combo", "action probabilities"}}
	for i, combo := range hands {
		headerData = append(headerData, []string{combo.String(), formatProbs(handRow(avg, i, len(hands), int(root.NumActions)))})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(headerData).Render()
}

// handRow extracts hand h's per-action probabilities out of avg's
// action-major layout (index = action*numHands + hand), matching
// pkg/solver/strategy.go's AverageStrategy.
func handRow(avg []float32, hand, numHands, numActions int) []float32 {
	row := make([]float32, numActions)
	for a := 0; a < numActions; a++ {
		row[a] = avg[a*numHands+hand]
	}
	return row
}

func formatProbs(row []float32) string {
	s := ""
	for i, p := range row {
		if i > 0 {
			s += "  "
		}
		s += fmt.Sprintf("a%d=%.3f", i, p)
	}
	return s
}

// printHandClassTable collapses g's root into per hand-class rows (e.g. all
// 6 AA combos to one "AA" row) via game.PostFlopGame.Report, the aggregation
// the teacher's cmd/poker-solver/main.go printRangeStrategies performs.
func printHandClassTable(g *game.PostFlopGame, player tree.Player) {
	rep, err := g.Report(player)
	if err != nil {
		pterm.Warning.Printfln("report: %v", err)
		return
	}
	sort.Slice(rep.Rows, func(i, j int) bool { return rep.Rows[i].Class < rep.Rows[j].Class })

	data := pterm.TableData{{"hand class", "action probabilities", "equity", "ev", "combos"}}
	for _, row := range rep.Rows {
		data = append(data, []string{
			row.Class,
			formatProbs(row.Strategy),
			fmt.Sprintf("%.3f", row.Equity),
			fmt.Sprintf("%.3f", row.EV),
			fmt.Sprintf("%d", row.Combos),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
