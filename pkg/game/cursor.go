package game

import (
	"fmt"

	"github.com/holdem-tree/postflop-solver/pkg/cards"
	"github.com/holdem-tree/postflop-solver/pkg/ranges"
	"github.com/holdem-tree/postflop-solver/pkg/tree"
)

// Cursor is spec.md §4.7's navigation cursor: a position inside a solved
// PostFlopGame's arena that a caller walks action-by-action to inspect a
// specific line's strategy, equity, and expected values, the same workflow
// original_source/examples/report.rs and file_io_debug.rs drive through
// play/back_to_root/current_player. PostFlopGame's arena indices are not
// pointers a caller can hold directly (ChildIndices recomputes them from a
// signed offset), so Cursor is the supported way to walk the tree from
// outside the package.
type Cursor struct {
	g       *PostFlopGame
	idx     int
	history []int // branch index taken at each step from the root, root excluded
}

// NewCursor starts a cursor at g's root decision node.
func NewCursor(g *PostFlopGame) *Cursor {
	return &Cursor{g: g, idx: g.Root()}
}

// CurrentNode returns the node the cursor currently sits on.
func (c *Cursor) CurrentNode() *PostFlopNode { return c.g.Node(c.idx) }

// CurrentIndex returns the cursor's current arena index, for callers that
// need to pass it to other PostFlopGame readers (StrategyAt, CFVAt).
func (c *Cursor) CurrentIndex() int { return c.idx }

// BackToRoot resets the cursor to the game's root decision node.
func (c *Cursor) BackToRoot() {
	c.idx = c.g.Root()
	c.history = c.history[:0]
}

// Actions returns the action that leads to each of the current node's
// children, in the same order Play expects as its argument. It is only
// meaningful at a tree.PlayerNode; Chance nodes branch on dealt cards, not
// named actions, so Actions returns nil there.
func (c *Cursor) Actions() []tree.Action {
	n := c.CurrentNode()
	if n.Kind != tree.PlayerNode {
		return nil
	}
	children := c.g.ChildIndices(c.idx)
	out := make([]tree.Action, len(children))
	for i, child := range children {
		out[i] = c.g.Node(child).PrevAction
	}
	return out
}

// ActionIndex finds a's position among Actions(), or -1 if a is not legal
// at the current node. Fold/Check/Call compare by Kind alone (there is only
// ever one of each at a given node); Bet/Raise/AllIn also compare Chips.
func (c *Cursor) ActionIndex(a tree.Action) int {
	for i, cand := range c.Actions() {
		if cand.Kind != a.Kind {
			continue
		}
		switch a.Kind {
		case tree.Bet, tree.Raise, tree.AllIn:
			if cand.Chips == a.Chips {
				return i
			}
		default:
			return i
		}
	}
	return -1
}

// Play advances the cursor to child branchIdx of the current node
// (branchIdx indexes either Actions(), at a PlayerNode, or the dealt-card
// order ChildIndices uses at a ChanceNode). It returns a *tree.StateError if
// branchIdx is out of range, the current node is terminal, or the child lies
// on a street beyond the game's allocated StorageMode.
func (c *Cursor) Play(branchIdx int) error {
	n := c.CurrentNode()
	if n.Kind == tree.TerminalNodeKind {
		return &tree.StateError{Msg: "cursor: cannot play past a terminal node"}
	}
	children := c.g.ChildIndices(c.idx)
	if branchIdx < 0 || branchIdx >= len(children) {
		return &tree.StateError{Msg: fmt.Sprintf("cursor: branch %d out of range (%d children)", branchIdx, len(children))}
	}
	if c.g.State >= MemoryAllocated && c.g.Nodes[children[branchIdx]].Street > c.g.StorageMode {
		return &tree.StateError{Msg: fmt.Sprintf("cursor: street %v is beyond storage mode %v", c.g.Nodes[children[branchIdx]].Street, c.g.StorageMode)}
	}
	c.idx = children[branchIdx]
	c.history = append(c.history, branchIdx)
	return nil
}

// ComputeHistoryRecursive re-derives the sequence of tree.Actions taken to
// reach the cursor's current position by replaying its recorded branch
// path against a fresh walk from the root, rather than trusting each
// visited node's cached PrevAction in isolation - the same distrust of
// stored-vs-derived state spec.md's reload/resolve path takes toward
// cached payoffs.
func (c *Cursor) ComputeHistoryRecursive() []tree.Action {
	return computeHistoryRecursive(c.g, c.g.Root(), c.history)
}

func computeHistoryRecursive(g *PostFlopGame, idx int, remaining []int) []tree.Action {
	if len(remaining) == 0 {
		return nil
	}
	n := g.Node(idx)
	children := g.ChildIndices(idx)
	branch := remaining[0]
	if branch < 0 || branch >= len(children) {
		return nil
	}
	child := children[branch]
	rest := computeHistoryRecursive(g, child, remaining[1:])
	if n.Kind != tree.PlayerNode {
		return rest // Chance-node step; the branch is a dealt card, not a named action.
	}
	return append([]tree.Action{g.Node(child).PrevAction}, rest...)
}

// PrivateCards returns player's live hand combos at the cursor's current
// node (board-filtered at build time by filterHands), per spec.md §4.7.
func (c *Cursor) PrivateCards(player tree.Player) []ranges.Combo {
	return c.CurrentNode().Hands(player)
}

// Strategy returns the current node's average strategy, action-major and
// hand-minor like StrategyAt, normalized per hand and falling back to a
// locked node's fixed strategy where installed. Valid only at a PlayerNode.
func (c *Cursor) Strategy() []float32 {
	n := c.CurrentNode()
	if n.Kind != tree.PlayerNode {
		return nil
	}
	numActions := int(n.NumActions)
	numHands := n.HandCount(n.ToAct)
	if locked, ok := c.g.LockedStrategy(c.idx); ok {
		return expandLockedStrategy(locked, numActions, numHands)
	}
	sum := c.g.StrategyAt(c.idx)
	return averageStrategy(sum, numActions, numHands)
}

// ExpectedValues returns player's per-hand counterfactual value at the
// cursor's current node: the absolute EV of holding each of player's live
// hands here, weighted by the opponent's reach probability into this node,
// per spec.md §4.7.
func (c *Cursor) ExpectedValues(player tree.Player) []float32 {
	return c.g.CFVAt(c.idx, player)
}

// Equity returns player's per-hand equity (win% + tie%/2) against the
// opponent's live hand range at the cursor's current node, enumerating
// exact runouts for any undealt streets past the current board - the same
// computation Equity(heroRange, villainRange, board) performs pre-solve,
// wired here onto the node's already board-filtered Hands() instead of two
// fresh ranges.Range values.
func (c *Cursor) Equity(player tree.Player) ([]EquityRow, error) {
	n := c.CurrentNode()
	board := n.Board()
	state, err := cards.Board(board).State()
	if err != nil {
		return nil, err
	}
	heroHands := n.Hands(player)
	villainHands := n.Hands(player.Opponent())

	rows := make([]EquityRow, 0, len(heroHands))
	for _, hero := range heroHands {
		villain := liveAgainst(villainHands, []cards.Card{hero.Hi, hero.Lo})
		eq, err := equityVsCombos(hero, villain, board, state)
		if err != nil {
			return nil, err
		}
		rows = append(rows, EquityRow{Combo: hero, Equity: eq})
	}
	return rows, nil
}

// averageStrategy duplicates pkg/solver.AverageStrategy's normalization:
// pkg/solver imports pkg/game (for the CFR traversal over its arena), so
// pkg/game cannot import pkg/solver back without a cycle, and this
// normalize-per-hand-column logic is small enough that duplicating it here
// is simpler than a third shared package.
func averageStrategy(sum []float32, numActions, numHands int) []float32 {
	out := make([]float32, numActions*numHands)
	for h := 0; h < numHands; h++ {
		var total float32
		for a := 0; a < numActions; a++ {
			total += sum[a*numHands+h]
		}
		if total > 0 {
			for a := 0; a < numActions; a++ {
				out[a*numHands+h] = sum[a*numHands+h] / total
			}
		} else {
			uniform := float32(1) / float32(numActions)
			for a := 0; a < numActions; a++ {
				out[a*numHands+h] = uniform
			}
		}
	}
	return out
}

// expandLockedStrategy mirrors pkg/solver's function of the same name, for
// the same import-cycle reason as averageStrategy above.
func expandLockedStrategy(locked []float32, numActions, numHands int) []float32 {
	if len(locked) == numActions*numHands {
		return locked
	}
	out := make([]float32, numActions*numHands)
	for a := 0; a < numActions; a++ {
		v := locked[a%len(locked)]
		for h := 0; h < numHands; h++ {
			out[a*numHands+h] = v
		}
	}
	return out
}
