package status

// Authority is the capability to mutate one Registry. It is minted only by
// NewRegistry and cannot be constructed elsewhere; a caller without it can
// only read. Passing nil, or a token minted for another registry, turns every
// mutation into a no-op.
type Authority struct {
	reg *Registry
}

func (a *Authority) grants(r *Registry) bool {
	return a != nil && r != nil && a.reg == r
}
