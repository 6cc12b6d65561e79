package graph

import "sync"

// Graph is the process-wide registry of live nodes plus the edge table
// between them. Unlike a per-goroutine runtime, a single Graph is shared by
// every goroutine in the process: signals genuinely are shared mutable
// state (spec §5), so there is exactly one graph, and concurrency safety
// comes from per-node locks (node.mu) and the edge-table lock (edgeMu), not
// from giving each goroutine its own private copy.
type Graph struct {
	regMu  sync.Mutex
	nodes  map[uint64]*Node
	nextID uint64

	edgeMu sync.Mutex
}

// New creates an empty graph. Most callers use the package-level Default
// graph; New exists for tests that want an isolated registry.
func New() *Graph {
	return &Graph{nodes: make(map[uint64]*Node)}
}

// Default is the shared graph backing the public API.
var Default = New()

func (g *Graph) newNode(kind Kind) *Node {
	g.regMu.Lock()
	g.nextID++
	id := g.nextID
	g.regMu.Unlock()

	n := &Node{
		id:   id,
		kind: kind,
		g:    g,
	}

	g.regMu.Lock()
	g.nodes[id] = n
	g.regMu.Unlock()

	return n
}

// NewSignal registers a new signal node holding initial.
func (g *Graph) NewSignal(initial any, policy EqualPolicy, equal func(a, b any) bool) *Node {
	n := g.newNode(KindSignal)
	n.value = initial
	n.equalPolicy = policy
	n.customEqual = equal
	n.extSubs = make(map[uint64]func(old, new any))
	return n
}

// NewComputed registers a new computed node. The node starts Dirty so the
// first Read triggers evaluation.
func (g *Graph) NewComputed(compute func() (any, error)) *Node {
	n := g.newNode(KindComputed)
	n.compute = compute
	n.state = Dirty
	return n
}

// NewEffect registers a new effect node. The caller is responsible for
// running it for the first time.
func (g *Graph) NewEffect(run func() (func(), error), priority Priority, category Category) *Node {
	n := g.newNode(KindEffect)
	n.run = run
	n.priority = priority
	n.category = category
	return n
}

func (g *Graph) unregister(n *Node) {
	g.regMu.Lock()
	delete(g.nodes, n.id)
	g.regMu.Unlock()
}

func containsNode(list []*Node, n *Node) bool {
	for _, x := range list {
		if x == n {
			return true
		}
	}
	return false
}

func removeNode(list []*Node, n *Node) []*Node {
	out := list[:0:0]
	for _, x := range list {
		if x != n {
			out = append(out, x)
		}
	}
	return out
}

// Link records that sub reads dep: dep gains sub as a subscriber, sub gains
// dep as a dependency, each appended in call order if not already present.
// A no-op if dep or sub is nil or they are the same node (self-reads never
// create self-edges).
func (g *Graph) Link(dep, sub *Node) {
	if dep == nil || sub == nil || dep == sub {
		return
	}

	g.edgeMu.Lock()
	defer g.edgeMu.Unlock()

	if !containsNode(dep.subs, sub) {
		dep.subs = append(dep.subs, sub)
	}
	if !containsNode(sub.deps, dep) {
		sub.deps = append(sub.deps, dep)
	}
}

// unlink removes the single edge dep->sub, if present.
func (g *Graph) unlink(dep, sub *Node) {
	g.edgeMu.Lock()
	defer g.edgeMu.Unlock()
	dep.subs = removeNode(dep.subs, sub)
	sub.deps = removeNode(sub.deps, dep)
}

// snapshotDeps returns the current dependency list of n, taken under edgeMu.
func (g *Graph) snapshotDeps(n *Node) []*Node {
	g.edgeMu.Lock()
	defer g.edgeMu.Unlock()
	out := make([]*Node, len(n.deps))
	copy(out, n.deps)
	return out
}

// clearDeps removes every dependency edge n currently has, detaching n from
// each dependency's subscriber list.
func (g *Graph) clearDeps(n *Node) {
	g.edgeMu.Lock()
	defer g.edgeMu.Unlock()
	for _, d := range n.deps {
		d.subs = removeNode(d.subs, n)
	}
	n.deps = nil
}

// relinkDeps restores a previously captured dependency list, used to roll
// back a panicked evaluation to exactly its last-good dependency set: any
// dependency edges recorded by the partial, panicked evaluation are torn
// down first, so the restored set is old, not old ∪ partial.
func (g *Graph) relinkDeps(n *Node, deps []*Node) {
	g.edgeMu.Lock()
	defer g.edgeMu.Unlock()

	for _, d := range n.deps {
		d.subs = removeNode(d.subs, n)
	}
	n.deps = nil

	for _, d := range deps {
		if !containsNode(d.subs, n) {
			d.subs = append(d.subs, n)
		}
		n.deps = append(n.deps, d)
	}
}

// detachAll removes every edge touching n, in both directions, as part of
// disposal.
func (g *Graph) detachAll(n *Node) {
	g.edgeMu.Lock()
	defer g.edgeMu.Unlock()

	for _, d := range n.deps {
		d.subs = removeNode(d.subs, n)
	}
	n.deps = nil

	for _, s := range n.subs {
		s.deps = removeNode(s.deps, n)
	}
	n.subs = nil
}

// Subscribers returns a snapshot of n's current subscriber list, in the
// order each subscription was created.
func (g *Graph) Subscribers(n *Node) []*Node {
	g.edgeMu.Lock()
	defer g.edgeMu.Unlock()
	out := make([]*Node, len(n.subs))
	copy(out, n.subs)
	return out
}

// Dependencies returns a snapshot of n's current dependency list.
func (g *Graph) Dependencies(n *Node) []*Node {
	return g.snapshotDeps(n)
}

// CollectReachableEffects walks the subscriber graph reachable from a
// changed node, marking every transitively-reachable computed Dirty and
// collecting every transitively-reachable effect. Computeds are marked but
// never recomputed here — they stay lazy (spec §4.3, §4.5 step 2) — while
// effects must be found eagerly so none are missed (spec §4.5 step 2).
func (g *Graph) CollectReachableEffects(start *Node) []*Node {
	visited := make(map[*Node]bool)
	var effects []*Node

	var visit func(*Node)
	visit = func(n *Node) {
		for _, s := range g.Subscribers(n) {
			if visited[s] {
				continue
			}
			visited[s] = true

			switch s.kind {
			case KindComputed:
				s.mu.Lock()
				if s.state != Disposed && s.state != Computing {
					s.state = Dirty
				}
				s.mu.Unlock()
				visit(s)
			case KindEffect:
				effects = append(effects, s)
			}
		}
	}
	visit(start)

	return effects
}
