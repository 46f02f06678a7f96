package order

// ReceiptField is the receipt input of the order detail screen. Confirmed is
// the last value the server accepted.
type ReceiptField struct {
	Input     string
	Confirmed string
	Editable  bool
	Saving    bool
}

// Dirty reports whether the input differs from the confirmed value.
func (f ReceiptField) Dirty() bool {
	return f.Input != f.Confirmed
}

// SaveEnabled reports whether the save action is available.
func (f ReceiptField) SaveEnabled() bool {
	return f.Editable && f.Dirty() && !f.Saving
}

// reset takes the server value as both input and confirmed value.
func (f *ReceiptField) reset(v string) {
	f.Input = v
	f.Confirmed = v
}

// confirm records a server-accepted value. An unsaved edit is kept.
func (f *ReceiptField) confirm(v string) {
	if !f.Dirty() {
		f.Input = v
	}
	f.Confirmed = v
}
