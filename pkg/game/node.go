// Package game implements the PostFlopGame arena: the concrete tree formed
// by cross-producting an ActionTree (pkg/tree) with chance deals over a
// CardConfig, with dense packed node/byte-pool storage as spec.md §3/§4.2/
// §4.4 describe. There is no teacher counterpart to this arena (the
// teacher's pkg/tree built a pointer tree for one concrete combo matchup);
// this package is new code written in the teacher's naming/documentation
// idiom, grounded directly in spec.md's own field-level description.
package game

import (
	"github.com/holdem-tree/postflop-solver/pkg/cards"
	"github.com/holdem-tree/postflop-solver/pkg/ranges"
	"github.com/holdem-tree/postflop-solver/pkg/tree"
)

// Sentinel for "no chips" / "not applicable" on a PostFlopNode's prev_action.
const noChips = -1

// PostFlopNode is spec.md §3's dense fixed-size arena entry. Field naming
// keeps the spec's storage1/2/3 vocabulary in comments while using clearer
// per-purpose names in code, the unification spec.md §9's first Open
// Question explicitly allows ("Implementers may unify into cfv_per_player[2]
// + regrets_per_player[2] if clearer").
type PostFlopNode struct {
	// Identity / tree shape.
	Kind       tree.NodeKind
	Street     cards.BoardState
	ToAct      tree.Player       // valid for Kind == PlayerNode; for Kind == TerminalNodeKind with Terminal == TerminalFold, records who folded
	Terminal   tree.TerminalKind // valid for Kind == TerminalNodeKind
	PrevAction tree.Action       // edge from parent
	TurnCard   cards.Card        // cards.NotDealt if not yet dealt on this path
	RiverCard  cards.Card        // cards.NotDealt if not yet dealt on this path
	Pot        float64           // chips in the middle on reaching this node
	StackOOP   float64           // OOP's remaining stack on reaching this node
	StackIP    float64           // IP's remaining stack on reaching this node

	// ChildOffsets holds, per child, its signed arena-index distance from
	// this node. Children are not uniformly spaced: each one heads a
	// subtree of different size (a Chance node's 44-52 card-deal subtrees
	// in particular vary in size), so a single "first child" offset plus a
	// count is not enough to locate child i>0; every child's own offset is
	// recorded instead.
	ChildOffsets []int32

	NumElements uint32 // per spec.md §3: actions*hands for Player, card-count for Chance

	// Per-node hand-universe sizes after board-removal filtering.
	NumHandsOOP uint16
	NumHandsIP  uint16
	NumActions  uint16 // valid for Kind == PlayerNode

	// storage1 (strategy_pool): running strategy-sum accumulator, Player nodes only.
	StrategyOff uint32
	// storage2 (regret_or_cfv_pool): current regrets for the acting player, Player nodes only.
	RegretOff uint32
	// storage3 (ip_cfv_pool): OOP's counterfactual-value vector, every node.
	CFVOopOff uint32
	// chance_pool, repurposed per the Open Question above: IP's counterfactual-value vector, every node.
	CFVIpOff uint32

	Scale1, Scale2, Scale3 float32 // per-node rescale factors for compressed storage

	IsLocked     bool
	IsCompressed bool

	// board is the concrete board at this node (flop+turn+river dealt so
	// far), used to filter hand universes during build; not part of the
	// spec's persisted record, recomputed on build/reload.
	board []cards.Card
	// oopHands / ipHands are this node's live combos, board-filtered. Not
	// persisted; reconstructed from CardConfig + board on load.
	oopHands []ranges.Combo
	ipHands  []ranges.Combo
}

func (n *PostFlopNode) handCount(p tree.Player) int {
	if p == tree.OOP {
		return int(n.NumHandsOOP)
	}
	return int(n.NumHandsIP)
}

func (n *PostFlopNode) hands(p tree.Player) []ranges.Combo {
	if p == tree.OOP {
		return n.oopHands
	}
	return n.ipHands
}

// HandCount exports handCount for pkg/solver and pkg/codec, which need each
// node's live hand-universe size to size and index regret/strategy/CFV rows.
func (n *PostFlopNode) HandCount(p tree.Player) int { return n.handCount(p) }

// Hands exports hands for pkg/solver and pkg/codec.
func (n *PostFlopNode) Hands(p tree.Player) []ranges.Combo { return n.hands(p) }

// Board returns the concrete board (flop+turn+river dealt so far) at this
// node.
func (n *PostFlopNode) Board() []cards.Card { return n.board }
