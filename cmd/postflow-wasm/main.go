//go:build js && wasm

// Command postflow-wasm exposes the solver to JavaScript as a
// "postflowSolver" global, adapted from the teacher's cmd/wasm/main.go
// syscall/js wiring (Promise-returning solve(), a cancel() channel, a
// synchronous parsePosition()) onto the new vectorized pkg/game/pkg/solver
// API in place of the teacher's per-combo pointer-tree CFR/MCCFR.
package main

import (
	"context"
	"fmt"
	"syscall/js"

	"github.com/holdem-tree/postflop-solver/pkg/notation"
	"github.com/holdem-tree/postflop-solver/pkg/solver"
	"github.com/holdem-tree/postflop-solver/pkg/solverapi"
)

var cancelSolve context.CancelFunc

func main() {
	js.Global().Set("postflowSolver", makeAPI())
	select {}
}

func makeAPI() js.Value {
	api := make(map[string]interface{})
	api["solve"] = js.FuncOf(solveWrapper)
	api["parsePosition"] = js.FuncOf(parsePositionWrapper)
	api["cancel"] = js.FuncOf(cancelWrapper)
	api["version"] = "0.1.0"
	return js.ValueOf(api)
}

// solveWrapper mirrors the teacher's wrapper: args are
// (positionStr, iterations, progressCallback?), return value is a Promise
// resolving to {strategy, numActions, iterations, position}.
func solveWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(map[string]interface{}{"error": "usage: solve(positionStr, iterations, progressCallback?)"})
	}
	positionStr := args[0].String()
	iterations := args[1].Int()
	var progress js.Value
	if len(args) >= 3 && !args[2].IsNull() && !args[2].IsUndefined() {
		progress = args[2]
	}

	promiseCtor := js.Global().Get("Promise")
	handler := js.FuncOf(func(this js.Value, promiseArgs []js.Value) interface{} {
		resolve, reject := promiseArgs[0], promiseArgs[1]
		go func() {
			defer func() {
				if r := recover(); r != nil {
					reject.Invoke(js.ValueOf(fmt.Sprintf("solver panicked: %v", r)))
				}
			}()
			result, err := runSolve(positionStr, iterations, progress)
			if err != nil {
				reject.Invoke(js.ValueOf(err.Error()))
				return
			}
			resolve.Invoke(js.ValueOf(result))
		}()
		return nil
	})
	return promiseCtor.New(handler)
}

// runSolve parses, builds, and drives the solver one SolveStep at a time so
// progress can be reported and cancel() can take effect between iterations,
// the same solve_step loop cmd/postflow-solver runs for its progress bar.
func runSolve(positionStr string, iterations int, progress js.Value) (map[string]interface{}, error) {
	spec, err := notation.ParsePosition(positionStr)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	g, err := solverapi.NewGame(spec, solverapi.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("build error: %w", err)
	}
	sv, err := solver.New(g)
	if err != nil {
		return nil, fmt.Errorf("solver error: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancelSolve = cancel
	defer cancel()

	const progressEvery = 50
	done := 0
	for done < iterations {
		if err := sv.SolveStep(ctx); err != nil {
			if ctx.Err() != nil {
				break // cancelled: report the partial strategy rather than erroring
			}
			return nil, fmt.Errorf("solve error: %w", err)
		}
		done++
		if done%progressEvery == 0 || done == iterations {
			if !progress.IsUndefined() && !progress.IsNull() {
				progress.Invoke(js.ValueOf(map[string]interface{}{
					"iteration": done,
					"total":     iterations,
					"percent":   float64(done) / float64(iterations) * 100,
				}))
			}
		}
	}

	root := g.Node(g.Root())
	hands := root.Hands(root.ToAct)
	sum := g.StrategyAt(g.Root())
	avg := solver.AverageStrategy(sum, int(root.NumActions), len(hands))

	rows := make([]interface{}, len(hands))
	for i, combo := range hands {
		probs := make([]interface{}, root.NumActions)
		for a := 0; a < int(root.NumActions); a++ {
			probs[a] = avg[a*len(hands)+i]
		}
		rows[i] = map[string]interface{}{"hand": combo.String(), "probs": probs}
	}

	return map[string]interface{}{
		"strategy":   rows,
		"numActions": root.NumActions,
		"iterations": done,
		"position":   positionStr,
	}, nil
}

// parsePositionWrapper runs synchronously: parsing is cheap enough not to
// need a Promise, unlike solve().
func parsePositionWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "usage: parsePosition(positionStr)"})
	}
	spec, err := notation.ParsePosition(args[0].String())
	if err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{
		"pot":        spec.StartingPot,
		"stack":      spec.EffectiveStack,
		"boardCards": len(spec.Board),
		"oopCombos":  len(spec.OOPRange),
		"ipCombos":   len(spec.IPRange),
	})
}

func cancelWrapper(this js.Value, args []js.Value) interface{} {
	if cancelSolve != nil {
		cancelSolve()
	}
	return js.ValueOf(map[string]interface{}{"status": "cancelled"})
}
