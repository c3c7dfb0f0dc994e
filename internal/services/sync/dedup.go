package sync

// dedup tracks transaction identities already admitted during one refresh.
// Repeated pages, overlapping windows and re-derivations of the same
// economic event all collapse onto one identity, so at most one survives.
type dedup struct {
	seen map[string]struct{}
}

func newDedup() *dedup {
	return &dedup{seen: make(map[string]struct{})}
}

// admit reports whether id is seen for the first time in this refresh.
func (d *dedup) admit(id string) bool {
	if _, ok := d.seen[id]; ok {
		return false
	}
	d.seen[id] = struct{}{}
	return true
}
