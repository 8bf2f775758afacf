package provider

// Registry is the fixed set of platform integrations, constructed once at
// startup and passed by reference to the aggregation engine and the monitor
// scheduler. Registration order is the priority order monitor ticks iterate
// in.
type Registry struct {
	providers []Provider
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

func (r *Registry) Register(p Provider) {
	if p == nil {
		return
	}
	r.providers = append(r.providers, p)
}

// Enabled returns every enabled provider in registration order.
func (r *Registry) Enabled() []Provider {
	out := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		if p.Enabled() {
			out = append(out, p)
		}
	}
	return out
}

// Checkers returns the enabled verified-capable providers in registration
// order. Search-only providers (the deeplink fallback in particular) are
// structurally excluded: they can never produce a verified slot, so letting
// them into a tick would waste it.
func (r *Registry) Checkers() []AvailabilityChecker {
	out := make([]AvailabilityChecker, 0, len(r.providers))
	for _, p := range r.providers {
		c, ok := p.(AvailabilityChecker)
		if !ok || !p.Enabled() {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (r *Registry) Len() int { return len(r.providers) }
