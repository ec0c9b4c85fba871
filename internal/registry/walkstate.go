package registry

// Step is the walk-scoped record for one reached node.
type Step struct {
	Parent    int64
	HasParent bool
	Dist      float64
}

// WalkState is the per-request overlay of parent links, accumulated distance
// and visited flags. It is never shared between walks.
type WalkState struct {
	steps map[int64]Step
}

// NewWalk returns an empty overlay for a fresh walk.
func (r *Registry) NewWalk() *WalkState {
	return &WalkState{steps: make(map[int64]Step)}
}

// Root marks id as the walk's start: visited, no parent, distance zero.
func (s *WalkState) Root(id int64) {
	s.steps[id] = Step{}
}

// Visit records the first discovery of id. Later calls for the same id are
// ignored so the first parent wins.
func (s *WalkState) Visit(id, parent int64, dist float64) bool {
	if _, ok := s.steps[id]; ok {
		return false
	}
	s.steps[id] = Step{Parent: parent, HasParent: true, Dist: dist}
	return true
}

func (s *WalkState) Visited(id int64) bool {
	_, ok := s.steps[id]
	return ok
}

func (s *WalkState) Step(id int64) (Step, bool) {
	st, ok := s.steps[id]
	return st, ok
}

func (s *WalkState) Len() int { return len(s.steps) }

// Each calls fn for every reached node in unspecified order.
func (s *WalkState) Each(fn func(id int64, st Step)) {
	for id, st := range s.steps {
		fn(id, st)
	}
}
