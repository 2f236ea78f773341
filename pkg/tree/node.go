package tree

import "github.com/holdem-tree/postflop-solver/pkg/cards"

// NodeKind distinguishes the three ActionTree node tags from spec.md §3.
type NodeKind uint8

const (
	PlayerNode NodeKind = iota
	ChanceNode
	TerminalNodeKind
)

// Node is one abstract (card-free) betting-tree node. The arena that
// PostFlopGame builds from this tree cross-products every PlayerNode and
// ChanceNode with the concrete hands/cards in play; Node itself never
// mentions a card.
type Node struct {
	Kind   NodeKind
	Street cards.BoardState

	// PlayerNode fields.
	ToAct    Player
	Actions  []Action
	Children []*Node // one per Actions[i], or one for ChanceNode's post-deal subtree

	// TerminalNodeKind fields.
	Terminal TerminalKind

	// Context carried for child construction / display, not part of the
	// spec's storage model (that lives in pkg/game's PostFlopNode).
	Pot         float64
	StackOOP    float64
	StackIP     float64
	LastBet     int32 // size of the last wager made this street, 0 if none
	NumRaises   int32 // raises made this street, used for geometric-raise street subtraction
	FacingChips int32 // amount the player to act must call, 0 if none

	// path is this node's action sequence from the root, used as the stable
	// key for lock instructions (node index is not stable across rebuilds).
	path []Action
}

// Path returns the action sequence from the root to this node.
func (n *Node) Path() []Action { return append([]Action(nil), n.path...) }
