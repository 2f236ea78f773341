package tree

import (
	"math"

	"github.com/holdem-tree/postflop-solver/pkg/betsize"
	"github.com/holdem-tree/postflop-solver/pkg/cards"
)

// ActionTree is the card-independent abstract betting tree, built once from
// a Config and reused across every concrete deal PostFlopGame enumerates.
type ActionTree struct {
	Config Config
	Root   *Node

	// locks holds deferred lock instructions keyed by path string, applied
	// by pkg/game at PostFlopGame build time (paths are stable; arena
	// indices are not). See spec.md §4.1 / §4.5.
	locks map[string]LockInstruction
}

// LockInstruction is a deferred node lock: install Strategy (one weight per
// action per hand-index placeholder; pkg/game expands it per hand) on the
// node reached by Path once the concrete arena exists.
type LockInstruction struct {
	Path     []Action
	Strategy []float32
}

// New builds the ActionTree from cfg, per spec.md §4.1.
func New(cfg Config) (*ActionTree, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t := &ActionTree{Config: cfg, locks: make(map[string]LockInstruction)}
	root, err := buildPlayerNode(cfg, cfg.InitialState, cfg.StartingPot,
		cfg.EffectiveStack, cfg.EffectiveStack, OOP, 0, 0, 0, nil)
	if err != nil {
		return nil, err
	}
	t.Root = root
	return t, nil
}

// buildPlayerNode constructs the subtree rooted at a decision for toAct.
// facingChips is the amount toAct must call to stay in; lastBet is the size
// of the last wager made this street (0 if the street is unopened);
// numRaises counts raises made this street, consumed by Geometric's
// street-count subtraction on raises.
func buildPlayerNode(cfg Config, street cards.BoardState, pot, stackOOP, stackIP float64,
	toAct Player, facingChips, lastBet, numRaises int32, path []Action) (*Node, error) {

	stackBehind := stackOOP
	if toAct == IP {
		stackBehind = stackIP
	}
	if stackBehind <= 0 {
		// Nothing left to wager; only check/call lines remain, handled by caller.
		stackBehind = 0
	}

	opts := cfg.optionsFor(street)
	var actions []Action
	var raiseSizes []betsize.BetSize

	if facingChips > 0 {
		actions = append(actions, Action{Kind: Fold})
		actions = append(actions, Action{Kind: Call, Chips: facingChips})
		raiseSizes = opts.Bet.Raises()
	} else {
		actions = append(actions, Action{Kind: Check})
		raiseSizes = opts.Bet.Bets()
	}

	chips := resolveSizes(raiseSizes, pot, lastBet, facingChips, stackBehind, streetsRemaining(street)-numRaises, cfg)
	kind := Bet
	if facingChips > 0 {
		kind = Raise
	}
	for _, c := range chips {
		a := Action{Kind: kind, Chips: c}
		if c >= int32(stackBehind) {
			a.Kind = AllIn
		}
		actions = append(actions, a)
	}

	node := &Node{
		Kind: PlayerNode, Street: street, ToAct: toAct, Actions: actions,
		Pot: pot, StackOOP: stackOOP, StackIP: stackIP,
		LastBet: lastBet, NumRaises: numRaises, FacingChips: facingChips,
		path: path,
	}

	node.Children = make([]*Node, len(actions))
	for i, a := range actions {
		childPath := append(append([]Action(nil), path...), a)
		child, err := buildChild(cfg, street, pot, stackOOP, stackIP, toAct, lastBet, numRaises, a, childPath)
		if err != nil {
			return nil, err
		}
		node.Children[i] = child
	}
	return node, nil
}

func buildChild(cfg Config, street cards.BoardState, pot, stackOOP, stackIP float64,
	toAct Player, lastBet, numRaises int32, a Action, path []Action) (*Node, error) {

	switch a.Kind {
	case Fold:
		// ToAct on a fold terminal records who folded, since it would
		// otherwise default to the zero Player value (OOP) regardless of
		// who actually acted.
		return &Node{Kind: TerminalNodeKind, Terminal: TerminalFold, Street: street, ToAct: toAct,
			Pot: pot, StackOOP: stackOOP, StackIP: stackIP, path: path}, nil

	case Check:
		if toAct == IP {
			// Both players checked: advance the street, or showdown on the river.
			return buildNextStreetOrShowdown(cfg, street, pot, stackOOP, stackIP, path)
		}
		return buildPlayerNode(cfg, street, pot, stackOOP, stackIP, toAct.Opponent(), 0, 0, 0, path)

	case Call:
		newPot := pot + float64(a.Chips)
		newStackOOP, newStackIP := stackOOP, stackIP
		if toAct == OOP {
			newStackOOP -= float64(a.Chips)
		} else {
			newStackIP -= float64(a.Chips)
		}
		if newStackOOP <= 0 || newStackIP <= 0 {
			// Both players are committed: deal the remaining streets with no
			// further decisions down to a river showdown, rather than
			// terminating before the board is complete.
			return buildAllinRunout(street, newPot, newStackOOP, newStackIP, path)
		}
		return buildNextStreetOrShowdown(cfg, street, newPot, newStackOOP, newStackIP, path)

	case Bet, Raise, AllIn:
		newPot := pot + float64(a.Chips)
		newStackOOP, newStackIP := stackOOP, stackIP
		if toAct == OOP {
			newStackOOP -= float64(a.Chips)
		} else {
			newStackIP -= float64(a.Chips)
		}
		newNumRaises := numRaises
		if a.Kind != Bet {
			newNumRaises++
		}
		return buildPlayerNode(cfg, street, newPot, newStackOOP, newStackIP, toAct.Opponent(),
			a.Chips, a.Chips, newNumRaises, path)

	default:
		panic("tree: unhandled action kind")
	}
}

// buildAllinRunout deals every remaining street with no decisions, used once
// both players are fully committed, ending in a river showdown terminal.
func buildAllinRunout(street cards.BoardState, pot, stackOOP, stackIP float64, path []Action) (*Node, error) {
	if street == cards.River {
		return &Node{Kind: TerminalNodeKind, Terminal: TerminalShowdownAllIn, Street: street,
			Pot: pot, StackOOP: stackOOP, StackIP: stackIP, path: path}, nil
	}
	nextStreet := street + 1
	chance := &Node{Kind: ChanceNode, Street: nextStreet, Pot: pot, StackOOP: stackOOP, StackIP: stackIP, path: path}
	child, err := buildAllinRunout(nextStreet, pot, stackOOP, stackIP, path)
	if err != nil {
		return nil, err
	}
	chance.Children = []*Node{child}
	return chance, nil
}

func buildNextStreetOrShowdown(cfg Config, street cards.BoardState, pot, stackOOP, stackIP float64, path []Action) (*Node, error) {
	if street == cards.River {
		return &Node{Kind: TerminalNodeKind, Terminal: TerminalShowdownNormal, Street: street,
			Pot: pot, StackOOP: stackOOP, StackIP: stackIP, path: path}, nil
	}
	nextStreet := street + 1
	chance := &Node{Kind: ChanceNode, Street: nextStreet, Pot: pot, StackOOP: stackOOP, StackIP: stackIP, path: path}
	child, err := buildPlayerNode(cfg, nextStreet, pot, stackOOP, stackIP, OOP, 0, 0, 0, path)
	if err != nil {
		return nil, err
	}
	chance.Children = []*Node{child}
	return chance, nil
}

// resolveSizes implements spec.md §4.1 step 1-2: resolve each BetSize
// variant against the current context, then clamp/merge/collapse.
func resolveSizes(sizes []betsize.BetSize, pot float64, lastBet, facingChips int32, stackBehind float64, streetsLeft int32, cfg Config) []int32 {
	var out []int32
	for _, bs := range sizes {
		chips := resolveOne(bs, pot, lastBet, facingChips, stackBehind, streetsLeft)
		if chips <= 0 {
			continue
		}
		out = append(out, chips)
	}
	return filterSizes(out, pot, stackBehind, lastBet, facingChips, cfg)
}

func resolveOne(bs betsize.BetSize, pot float64, lastBet, facingChips int32, stackBehind float64, streetsLeft int32) int32 {
	switch bs.Kind {
	case betsize.PotRelative:
		// The pot a bettor is sizing against includes a call of any
		// outstanding wager, matching the teacher's pot-relative semantics.
		potAfterCall := pot + float64(facingChips)
		return roundChips(bs.Frac * potAfterCall)
	case betsize.PrevBetRelative:
		return roundChips(bs.Frac * float64(lastBet))
	case betsize.Additive:
		return int32(lastBet) + bs.Chips
	case betsize.Geometric:
		return resolveGeometric(pot, facingChips, stackBehind, bs, streetsLeft)
	case betsize.AllIn:
		return int32(stackBehind)
	default:
		return 0
	}
}

// resolveGeometric adapts the teacher's GeometricSizing (pkg/tree/geometric.go,
// growthFactor = (target/pot)^(1/streets), betFraction = (growthFactor-1)/2)
// to original_source's Geometric(streets, maxPotRatio): streets<=0 uses the
// street-dependent default, and an infinite maxPotRatio targets a shove-paced
// geometric sequence ending in all-in.
func resolveGeometric(pot float64, facingChips int32, stackBehind float64, bs betsize.BetSize, defaultStreets int32) int32 {
	streets := bs.Streets
	if streets <= 0 {
		streets = defaultStreets
	}
	if streets < 1 {
		streets = 1
	}
	potAfterCall := pot + float64(facingChips)
	target := potAfterCall + 2*stackBehind // pacing toward an eventual shove
	if !math.IsInf(bs.MaxPotRatio, 1) {
		target = potAfterCall * (1 + bs.MaxPotRatio)
	}
	if target <= potAfterCall {
		return int32(stackBehind)
	}
	growth := math.Pow(target/potAfterCall, 1/float64(streets))
	fraction := (growth - 1) / 2
	chips := fraction * potAfterCall
	if chips <= 0 || chips > stackBehind {
		return int32(stackBehind)
	}
	return roundChips(chips)
}

func roundChips(f float64) int32 {
	if f < 0 {
		return 0
	}
	return int32(math.Round(f))
}

// filterSizes implements spec.md §4.1 step 2: clamp to legal range (at least
// the minimum legal raise, at most all-in), drop near-duplicates, collapse
// near-all-in and force-all-in thresholds.
func filterSizes(sizes []int32, pot, stackBehind float64, lastBet, facingChips int32, cfg Config) []int32 {
	allIn := int32(stackBehind)
	if allIn <= 0 {
		return nil
	}

	// force_allin_threshold: if the stack-behind is small relative to the
	// pot, only all-in remains as a legal wager.
	if cfg.ForceAllinThreshold > 0 && pot > 0 && stackBehind/pot <= cfg.ForceAllinThreshold {
		return []int32{allIn}
	}

	// No-limit minimum-raise rule: a raise must total at least the call
	// amount plus the previous bet/raise increment. Only applies when
	// actually facing a wager; an opening bet has no minimum beyond >0.
	var minLegalRaise int32
	if facingChips > 0 {
		minLegalRaise = facingChips + lastBet
	}

	var clamped []int32
	for _, c := range sizes {
		if c <= 0 {
			continue
		}
		if minLegalRaise > 0 && c < minLegalRaise {
			c = minLegalRaise
		}
		if c > allIn {
			c = allIn
		}
		// add_allin_threshold: sizes within this fraction of all-in collapse to all-in.
		if cfg.AddAllinThreshold > 0 && float64(allIn-c) <= cfg.AddAllinThreshold*float64(allIn) {
			c = allIn
		}
		clamped = append(clamped, c)
	}

	// Deduplicate within merging_threshold relative tolerance.
	var out []int32
	for _, c := range clamped {
		dup := false
		for _, existing := range out {
			tol := cfg.MergingThreshold * float64(existing)
			if tol <= 0 {
				tol = 1
			}
			if math.Abs(float64(c-existing)) <= tol {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, c)
		}
	}
	return out
}
