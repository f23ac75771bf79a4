package layout

import "github.com/tabula-go/tabula"

// Stats counts what a reconciliation did with the elements of one or more
// containers.
type Stats struct {
	Created, Reused, Evicted int
}

func (s *Stats) Add(o Stats) {
	s.Created += o.Created
	s.Reused += o.Reused
	s.Evicted += o.Evicted
}

// Reconcile matches the current children of a container against the elements
// built for it in the previous pass. An element whose key is still present
// is reused, one whose key is new is made with create, and update is then
// called on every element, so geometry is always derived in one place.
// Elements whose keys disappeared are handed to evict. The returned slice
// follows the order of children.
func Reconcile[C any, E Element](
	children []C,
	prev map[tabula.ID]E,
	key func(C) tabula.ID,
	create func(C) E,
	update func(E, C),
	evict func(E),
) (next map[tabula.ID]E, ordered []E, stats Stats) {
	next = make(map[tabula.ID]E, len(children))
	ordered = make([]E, 0, len(children))
	for _, c := range children {
		k := key(c)
		e, ok := prev[k]
		if ok {
			stats.Reused++
		} else {
			e = create(c)
			stats.Created++
		}
		update(e, c)
		next[k] = e
		ordered = append(ordered, e)
	}
	for k, e := range prev {
		if _, ok := next[k]; !ok {
			evict(e)
			stats.Evicted++
		}
	}
	return next, ordered, stats
}
