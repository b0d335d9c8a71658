package scc

// Buckets accumulates the three reference sets declarations are
// scheduled over: values, constructors, and types. References are
// scoped: entering a lambda or match arm may shadow an outer binder,
// and that shadow must not spuriously satisfy the outer binder's
// unused-check.
type Buckets struct {
	Values       map[string]int
	Constructors map[string]int
	Types        map[string]int
}

func NewBuckets() *Buckets {
	return &Buckets{
		Values:       make(map[string]int),
		Constructors: make(map[string]int),
		Types:        make(map[string]int),
	}
}

func (b *Buckets) Value(name string)       { b.Values[name]++ }
func (b *Buckets) Constructor(name string) { b.Constructors[name]++ }
func (b *Buckets) Type(name string)        { b.Types[name]++ }

// scopeSnapshot is the stashed count for one shadowed name.
type scopeSnapshot struct {
	bucket map[string]int
	name   string
	had    bool
	count  int
}

// Scope is a guard over shadowed names: Shadow stashes any outer
// counter for a shadowed name, and Exit restores every stashed counter.
type Scope struct {
	snapshots []scopeSnapshot
}

// Shadow records that `name` is about to be rebound in bucket, stashing
// the outer count so Exit can restore it.
func (s *Scope) Shadow(bucket map[string]int, name string) {
	count, had := bucket[name]
	s.snapshots = append(s.snapshots, scopeSnapshot{bucket: bucket, name: name, had: had, count: count})
	delete(bucket, name)
}

// Exit restores every stashed outer count, in reverse shadow order.
func (s *Scope) Exit() {
	for i := len(s.snapshots) - 1; i >= 0; i-- {
		snap := s.snapshots[i]
		if snap.had {
			snap.bucket[snap.name] = snap.count
		} else {
			delete(snap.bucket, snap.name)
		}
	}
	s.snapshots = nil
}
