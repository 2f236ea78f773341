package game

import (
	"fmt"
	"math"

	"github.com/holdem-tree/postflop-solver/pkg/cards"
	"github.com/holdem-tree/postflop-solver/pkg/ranges"
	"github.com/holdem-tree/postflop-solver/pkg/tree"
)

// CardConfig is spec.md §3's CardConfig.
type CardConfig struct {
	RangeOOP ranges.Range
	RangeIP  ranges.Range
	Flop     [3]cards.Card
	Turn     cards.Card // cards.NotDealt if unset
	River    cards.Card // cards.NotDealt if unset
}

func (c CardConfig) boardSoFar() []cards.Card {
	board := append([]cards.Card{}, c.Flop[:]...)
	if c.Turn != cards.NotDealt {
		board = append(board, c.Turn)
	}
	if c.River != cards.NotDealt {
		board = append(board, c.River)
	}
	return board
}

// State is spec.md §3's PostFlopGame.state enum.
type State uint8

const (
	Uninitialized State = iota
	ConfigErrorState
	TreeBuilt
	MemoryAllocated
	SolvedFlop
	SolvedTurn
	Solved
)

// StorageMode records which streets are backed by allocated storage.
type StorageMode = cards.BoardState

// ResourceError signals a tree too large to allocate, per spec.md §7.
type ResourceError struct{ Msg string }

func (e *ResourceError) Error() string { return "resource error: " + e.Msg }

// PostFlopGame is spec.md §3's PostFlopGame: the concrete arena.
type PostFlopGame struct {
	ActionTree *tree.ActionTree
	CardConfig CardConfig

	Nodes []PostFlopNode

	StrategyPool []byte
	RegretPool   []byte
	IPCFVPool    []byte
	ChancePool   []byte // repurposed as the IP CFV pool; see node.go's doc comment

	LockingStrategy *lockMap

	State        State
	StorageMode  StorageMode
	IsCompressed bool

	elementBytes int // 4 (float32) or 2 (compressed int16), set by AllocateMemory

	// pathIndex maps a tree.Action path (see pathKeyOf) to the arena index
	// of the PlayerNode reached by that path, built during Build and
	// consumed once by applyLocks to resolve tree.ActionTree's deferred
	// path-keyed lock instructions into arena indices.
	pathIndex map[string]int
}

// Build runs spec.md §4.2's phases 1-3: count, allocate the node arena, and
// recursively write nodes in pre-order, each node recording one arena
// offset per child in ChildOffsets. It
// does not allocate the byte pools; call AllocateMemory for that.
func Build(at *tree.ActionTree, cc CardConfig) (*PostFlopGame, error) {
	if at == nil || at.Root == nil {
		return nil, &tree.ConfigError{Msg: "build: nil action tree"}
	}
	g := &PostFlopGame{
		ActionTree:      at,
		CardConfig:      cc,
		LockingStrategy: newLockMap(),
		State:           Uninitialized,
		pathIndex:       make(map[string]int),
	}

	count := countNodes(at.Root, cc.boardSoFar())
	if count > math.MaxUint32 {
		return nil, &ResourceError{Msg: fmt.Sprintf("build: tree has %d nodes, exceeds 2^32", count)}
	}
	g.Nodes = make([]PostFlopNode, 0, count)

	board := cc.boardSoFar()
	_, err := g.appendSubtree(at.Root, board, nil, tree.Action{}, cards.NotDealt, cards.NotDealt)
	if err != nil {
		return nil, err
	}
	g.State = TreeBuilt
	g.applyLocks()
	g.pathIndex = nil // consumed by applyLocks; not needed afterward
	return g, nil
}

// countNodes mirrors appendSubtree's recursion without allocating, for
// spec.md §4.2 Phase 1's size check.
func countNodes(n *tree.Node, board []cards.Card) int {
	total := 1
	switch n.Kind {
	case tree.ChanceNode:
		remaining := cards.RemoveCards(cards.FullDeck(), board...)
		for _, c := range remaining {
			total += countNodes(n.Children[0], append(append([]cards.Card(nil), board...), c))
		}
	default:
		for _, c := range n.Children {
			total += countNodes(c, board)
		}
	}
	return total
}

// appendSubtree writes n and its descendants into g.Nodes in pre-order,
// returning the arena index n was written to. path accumulates the
// tree.Action edges taken from the root, recorded into g.pathIndex for
// PlayerNode entries so applyLocks can resolve deferred lock instructions.
func (g *PostFlopGame) appendSubtree(n *tree.Node, board []cards.Card, path []tree.Action, prevAction tree.Action, turnCard, riverCard cards.Card) (int, error) {
	idx := len(g.Nodes)
	g.Nodes = append(g.Nodes, PostFlopNode{}) // reserve the slot

	oopHands := filterHands(g.CardConfig.RangeOOP, board)
	ipHands := filterHands(g.CardConfig.RangeIP, board)

	node := PostFlopNode{
		Kind:        n.Kind,
		Street:      n.Street,
		ToAct:       n.ToAct,
		Terminal:    n.Terminal,
		PrevAction:  prevAction,
		TurnCard:    turnCard,
		RiverCard:   riverCard,
		Pot:         n.Pot,
		StackOOP:    n.StackOOP,
		StackIP:     n.StackIP,
		NumHandsOOP: uint16(len(oopHands)),
		NumHandsIP:  uint16(len(ipHands)),
		board:       append([]cards.Card(nil), board...),
		oopHands:    oopHands,
		ipHands:     ipHands,
	}

	var childOffsets []int32

	switch n.Kind {
	case tree.PlayerNode:
		node.NumActions = uint16(len(n.Actions))
		node.NumElements = uint32(len(n.Actions)) * uint32(node.handCount(n.ToAct))
		if g.pathIndex != nil {
			g.pathIndex[pathKeyOf(path)] = idx
		}
		childOffsets = make([]int32, len(n.Actions))
		for i, a := range n.Actions {
			childPath := append(append([]tree.Action(nil), path...), a)
			childIdx, err := g.appendSubtree(n.Children[i], board, childPath, a, turnCard, riverCard)
			if err != nil {
				return 0, err
			}
			childOffsets[i] = int32(childIdx - idx)
		}

	case tree.ChanceNode:
		remaining := cards.RemoveCards(cards.FullDeck(), board...)
		node.NumElements = uint32(len(remaining))
		childOffsets = make([]int32, len(remaining))
		for i, c := range remaining {
			newBoard := append(append([]cards.Card(nil), board...), c)
			newTurn, newRiver := turnCard, riverCard
			if n.Street == cards.Turn {
				newTurn = c
			} else if n.Street == cards.River {
				newRiver = c
			}
			childIdx, err := g.appendSubtree(n.Children[0], newBoard, path, tree.Action{}, newTurn, newRiver)
			if err != nil {
				return 0, err
			}
			childOffsets[i] = int32(childIdx - idx)
		}

	case tree.TerminalNodeKind:
		// No children; payoff computed on demand from the hand evaluator.
	}

	node.ChildOffsets = childOffsets
	g.Nodes[idx] = node
	return idx, nil
}

// ChildIndices returns the arena indices of idx's children, in the same
// order as the abstract tree's Actions (for Player nodes) or dealt cards
// (for Chance nodes, in cards.FullDeck order with board cards removed).
func (g *PostFlopGame) ChildIndices(idx int) []int {
	n := &g.Nodes[idx]
	if len(n.ChildOffsets) == 0 {
		return nil
	}
	out := make([]int, len(n.ChildOffsets))
	for i, off := range n.ChildOffsets {
		out[i] = idx + int(off)
	}
	return out
}

// filterHands returns the combos of r with strictly positive weight that do
// not conflict with any card in board, the card-removal step spec.md §8
// requires ("the opponent's reach over h's cards is 0").
func filterHands(r ranges.Range, board []cards.Card) []ranges.Combo {
	live := r.RemoveDeadCards(board...)
	combos := live.Combos()
	ranges.SortCombos(combos)
	return combos
}
