package editor

type (
	// Action describes a user action that can be performed on the model, which
	// can be initiated by calling the Do() method. It is usually initiated by a
	// key press. Action advertises whether it is enabled, so a UI can e.g. gray
	// out a menu item when the underlying action is not allowed. The underlying
	// Doer can optionally implement the Enabler interface to decide if the
	// action is enabled or not; if it does not implement the Enabler interface,
	// the action is always allowed.
	Action struct {
		doer Doer
	}

	// Doer is an interface that defines a single Do() method, which is called
	// when an action is performed. A rejected action returns an error and
	// leaves the model unchanged.
	Doer interface {
		Do() error
	}

	// Enabler is an interface that defines a single Enabled() method, which
	// is used to check if an action is enabled or not.
	Enabler interface {
		Enabled() bool
	}

	doerFunc func() error
)

func (f doerFunc) Do() error { return f() }

// Action methods

func MakeAction(doer Doer) Action {
	return Action{doer: doer}
}

// Do performs the action if it is enabled. Doing a disabled action is a
// no-op, not an error.
func (a Action) Do() error {
	e, ok := a.doer.(Enabler)
	if ok && !e.Enabled() {
		return nil
	}
	if a.doer != nil {
		return a.doer.Do()
	}
	return nil
}

func (a Action) Enabled() bool {
	if a.doer == nil {
		return false // no doer, not allowed
	}
	e, ok := a.doer.(Enabler)
	if !ok {
		return true // not enabler, always allowed
	}
	return e.Enabled()
}
