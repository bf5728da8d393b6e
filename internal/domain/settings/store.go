package settings

import "sync/atomic"

// Store holds the current settings. Readers get a value; writers swap in a
// new one.
type Store struct {
	current atomic.Pointer[Settings]
}

// NewStore creates a store seeded with initial, which must be valid.
func NewStore(initial Settings) (*Store, error) {
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	st := &Store{}
	st.current.Store(&initial)
	return st, nil
}

// Get returns the current settings.
func (st *Store) Get() Settings {
	return *st.current.Load()
}

// Apply patches the current settings and stores the result.
func (st *Store) Apply(p Patch) (Settings, error) {
	for {
		old := st.current.Load()
		next, err := old.With(p)
		if err != nil {
			return *old, err
		}
		if st.current.CompareAndSwap(old, &next) {
			return next, nil
		}
	}
}

// Replace stores s after validating it.
func (st *Store) Replace(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	st.current.Store(&s)
	return nil
}
