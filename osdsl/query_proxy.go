package osdsl

// queryProxy holds the query currently attached to one UpdateByQuery
// instance. Builder-level combination calls delegate here, so the builder
// itself never touches query internals.
//
// A proxy belongs to exactly one builder. Cloning a builder must rebind the
// proxy via rebind, otherwise combining a query into the clone would leak
// into the parent.
type queryProxy struct {
	owner   *UpdateByQuery
	proxied Query
}

func newQueryProxy(owner *UpdateByQuery) *queryProxy {
	return &queryProxy{owner: owner}
}

// get returns the held query, or the empty marker when none was set.
func (p *queryProxy) get() Query {
	return p.proxied
}

// set replaces the held query outright.
func (p *queryProxy) set(query Query) {
	p.proxied = query
}

// combineInto AND-combines query into the held one and stores the result on
// this proxy's owning builder only.
func (p *queryProxy) combineInto(query Query) {
	p.proxied = p.proxied.And(query)
}

// rebind returns a fresh proxy for newOwner holding the same query value.
func (p *queryProxy) rebind(newOwner *UpdateByQuery) *queryProxy {
	return &queryProxy{owner: newOwner, proxied: p.proxied}
}
