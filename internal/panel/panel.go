// Package panel tracks which overlay (dialog, dropdown form, picker) is open
// in a screen region. A region holds at most one active panel.
package panel

// Region is the active-panel state of one screen region. The zero value of K
// means no panel is open.
type Region[K comparable] struct {
	active K
}

// Open makes k the active panel, closing whatever was open.
func (r *Region[K]) Open(k K) { r.active = k }

// Close closes the active panel.
func (r *Region[K]) Close() {
	var zero K
	r.active = zero
}

// Toggle opens k, or closes it if it is already the active panel.
func (r *Region[K]) Toggle(k K) {
	if r.active == k {
		r.Close()
		return
	}
	r.active = k
}

func (r *Region[K]) Active() K { return r.active }

func (r *Region[K]) IsOpen(k K) bool {
	var zero K
	return k != zero && r.active == k
}

// AnyOpen reports whether some panel is open.
func (r *Region[K]) AnyOpen() bool {
	var zero K
	return r.active != zero
}
