package layout

import "github.com/tabula-go/tabula"

type (
	// Element is a node of the layout tree. Elements point at the domain
	// entity they were built for; the domain never points back.
	// Keys are unique among the elements of a Tab, so an effect shared by
	// several notes has one element per note, each with its own key.
	Element interface {
		Key() tabula.ID
		Bounds() Rect
		children() []Element
		// look is what gets drawn for the element apart from its bounds
		// and children. It must be comparable.
		look() any
	}

	// Renderer is notified after each layout pass. Render is called for
	// every element created in the pass, Update for every element kept from
	// the previous pass whose bounds or look changed, and Unrender for every
	// element that was dropped, children included.
	Renderer interface {
		Render(e Element)
		Update(e Element)
		Unrender(e Element)
	}

	// ChangeSet lists what a layout pass created, changed and evicted.
	ChangeSet struct {
		Created []Element
		Updated []Element
		Evicted []Element
		Stats   Stats
	}

	appearance struct {
		bounds Rect
		look   any
	}
)

// walk calls f on e and everything below it.
func walk(e Element, f func(Element)) {
	f(e)
	for _, c := range e.children() {
		walk(c, f)
	}
}

func (c *ChangeSet) created(e Element) {
	c.Created = append(c.Created, e)
}

func (c *ChangeSet) evicted(e Element) {
	c.Evicted = append(c.Evicted, e)
	for _, child := range e.children() {
		c.evicted(child)
	}
}

// evictInto adapts ChangeSet.evicted to the element type of one level.
func evictInto[E Element](c *ChangeSet) func(E) {
	return func(e E) { c.evicted(e) }
}

func pointers[T any](s []T) []*T {
	ret := make([]*T, len(s))
	for i := range s {
		ret[i] = &s[i]
	}
	return ret
}

func asElements[E Element](s []E) []Element {
	ret := make([]Element, len(s))
	for i, e := range s {
		ret[i] = e
	}
	return ret
}
