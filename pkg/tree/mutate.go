package tree

import (
	"fmt"
	"strings"
)

func pathKey(path []Action) string {
	var sb strings.Builder
	for _, a := range path {
		sb.WriteString(a.String())
		sb.WriteByte('|')
	}
	return sb.String()
}

// nodeAt walks the tree from the root following path, returning the node or
// nil if the path does not exist.
func (t *ActionTree) nodeAt(path []Action) *Node {
	n := t.Root
	for _, want := range path {
		if n == nil {
			return nil
		}
		if n.Kind == ChanceNode {
			if len(n.Children) != 1 {
				return nil
			}
			n = n.Children[0]
		}
		found := false
		for i, a := range n.Actions {
			if a == want {
				n = n.Children[i]
				found = true
				break
			}
		}
		if !found {
			return nil
		}
	}
	return n
}

// AddLine forces the node reached by path to exist with an explicit action
// even if the build algorithm's filtering dropped it, per spec.md §4.1's
// "maintain abstract node set" contract. The action is appended if not
// already legal at that node.
func (t *ActionTree) AddLine(path []Action) error {
	if len(path) == 0 {
		return &ConfigError{Msg: "add_line: empty path"}
	}
	parent := t.nodeAt(path[:len(path)-1])
	if parent == nil {
		return &ConfigError{Msg: fmt.Sprintf("add_line: parent path not found: %v", path[:len(path)-1])}
	}
	if parent.Kind != PlayerNode {
		return &ConfigError{Msg: "add_line: parent is not a decision node"}
	}
	last := path[len(path)-1]
	for _, a := range parent.Actions {
		if a == last {
			return nil // already present
		}
	}
	childPath := append(append([]Action(nil), path[:len(path)-1]...), last)
	child, err := buildChild(t.Config, parent.Street, parent.Pot, parent.StackOOP, parent.StackIP,
		parent.ToAct, parent.LastBet, parent.NumRaises, last, childPath)
	if err != nil {
		return err
	}
	parent.Actions = append(parent.Actions, last)
	parent.Children = append(parent.Children, child)
	return nil
}

// RemoveLine deletes the action (and its subtree) reached by path from its
// parent's legal action set.
func (t *ActionTree) RemoveLine(path []Action) error {
	if len(path) == 0 {
		return &ConfigError{Msg: "remove_line: empty path"}
	}
	parent := t.nodeAt(path[:len(path)-1])
	if parent == nil || parent.Kind != PlayerNode {
		return &ConfigError{Msg: "remove_line: parent not found or not a decision node"}
	}
	last := path[len(path)-1]
	for i, a := range parent.Actions {
		if a == last {
			parent.Actions = append(parent.Actions[:i], parent.Actions[i+1:]...)
			parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
			return nil
		}
	}
	return &ConfigError{Msg: "remove_line: action not found"}
}

// InvalidTerminals returns the paths to every decision node that now has
// zero remaining actions (e.g. after RemoveLine stripped every option),
// which the caller must resolve before building a PostFlopGame.
func (t *ActionTree) InvalidTerminals() [][]Action {
	var bad [][]Action
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		if n.Kind == PlayerNode && len(n.Actions) == 0 {
			bad = append(bad, n.Path())
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t.Root)
	return bad
}

// SetStrategyLock records a deferred lock instruction for the node at path,
// applied by pkg/game when the concrete arena is built (spec.md §4.5).
func (t *ActionTree) SetStrategyLock(path []Action, strategy []float32) error {
	n := t.nodeAt(path)
	if n == nil {
		return &ConfigError{Msg: fmt.Sprintf("set_strategy_lock: path not found: %v", path)}
	}
	if n.Kind != PlayerNode {
		return &LockError{Msg: "set_strategy_lock: target is not a decision node"}
	}
	if len(strategy)%len(n.Actions) != 0 {
		return &LockError{Msg: "set_strategy_lock: strategy length not a multiple of action count"}
	}
	t.locks[pathKey(path)] = LockInstruction{Path: append([]Action(nil), path...), Strategy: strategy}
	return nil
}

// ClearLock removes a previously set deferred lock instruction.
func (t *ActionTree) ClearLock(path []Action) {
	delete(t.locks, pathKey(path))
}

// Locks returns all deferred lock instructions, for pkg/game to apply.
func (t *ActionTree) Locks() []LockInstruction {
	out := make([]LockInstruction, 0, len(t.locks))
	for _, l := range t.locks {
		out = append(out, l)
	}
	return out
}
