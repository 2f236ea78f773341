package game

import (
	"sync"

	"github.com/holdem-tree/postflop-solver/pkg/tree"
)

// lockMap resolves tree.ActionTree's path-keyed deferred lock instructions
// into arena indices once the concrete PostFlopGame exists (spec.md §4.5:
// "paths are stable across rebuilds; arena indices are not"). It is also the
// live map the solver consults at solve time, so it is mutex-guarded.
type lockMap struct {
	mu      sync.RWMutex
	byIndex map[int][]float32
}

func newLockMap() *lockMap {
	return &lockMap{byIndex: make(map[int][]float32)}
}

func (m *lockMap) set(idx int, strategy []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byIndex[idx] = strategy
}

func (m *lockMap) get(idx int) ([]float32, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.byIndex[idx]
	return s, ok
}

func (m *lockMap) clear(idx int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byIndex, idx)
}

func (m *lockMap) indices() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]int, 0, len(m.byIndex))
	for i := range m.byIndex {
		out = append(out, i)
	}
	return out
}

// LockedStrategy returns the fixed per-action-per-hand strategy installed at
// arena index idx, if any, for pkg/solver to use instead of regret matching.
func (g *PostFlopGame) LockedStrategy(idx int) ([]float32, bool) {
	return g.LockingStrategy.get(idx)
}

// SetLockedStrategy installs a fixed per-action-per-hand strategy directly
// at arena index idx, bypassing ActionTree's path-keyed deferred lock
// instructions. pkg/codec uses this for the synthetic locks spec.md §4.6's
// resolve step installs on copied-street Player nodes: those locks exist
// only for the duration of one resolve's solver run and have no path-level
// lifetime worth recording on the ActionTree.
func (g *PostFlopGame) SetLockedStrategy(idx int, strategy []float32) {
	g.LockingStrategy.set(idx, strategy)
	g.Nodes[idx].IsLocked = true
}

// ClearLockedStrategy removes a lock installed by SetLockedStrategy or by
// ActionTree's deferred path-keyed instructions.
func (g *PostFlopGame) ClearLockedStrategy(idx int) {
	g.LockingStrategy.clear(idx)
	g.Nodes[idx].IsLocked = false
}

// applyLocks resolves g.ActionTree.Locks()'s path instructions against
// g.pathIndex (built during appendSubtree) and marks the matching
// PostFlopNode.IsLocked, per spec.md §4.5.
func (g *PostFlopGame) applyLocks() {
	for _, lock := range g.ActionTree.Locks() {
		idx, ok := g.pathIndex[pathKeyOf(lock.Path)]
		if !ok {
			continue // path no longer exists in the rebuilt tree; caller's responsibility to re-lock
		}
		g.LockingStrategy.set(idx, lock.Strategy)
		g.Nodes[idx].IsLocked = true
	}
}

func pathKeyOf(path []tree.Action) string {
	var b []byte
	for _, a := range path {
		b = append(b, []byte(a.String())...)
		b = append(b, '|')
	}
	return string(b)
}
