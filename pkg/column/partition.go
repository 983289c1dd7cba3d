package column

import (
	"cmp"
	"slices"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/errors"
)

// Role classifies a component relative to the key pair.
type Role int

const (
	LightNonKey Role = iota
	LightKey
	HeavyKey
	HeavyNonKey
)

func (r Role) String() string {
	switch r {
	case LightNonKey:
		return "LNK"
	case LightKey:
		return "LK"
	case HeavyKey:
		return "HK"
	default:
		return "HNK"
	}
}

// Component is one species of the feed with its split between the products.
type Component struct {
	Name           string
	K              float64 // vapour-liquid equilibrium ratio at the feed stage
	FeedFraction   float64 // mole fraction in the feed
	FeedFlow       float64 // kmol/h
	DistillateFlow float64 // kmol/h
	BottomsFlow    float64 // kmol/h
	Role           Role
}

// Partition is the key-component view of a simulation result.
type Partition struct {
	Components []Component // sorted by descending K

	Main     string
	LightKey string
	HeavyKey string

	FeedFlow       float64 // kmol/h
	DistillateFlow float64
	BottomsFlow    float64

	Purity   float64 // mole fraction of the main component in the distillate
	Recovery float64 // fraction of the fed main component leaving in the distillate
}

// NewPartition classifies the components of res around main, which becomes the
// light key.
func NewPartition(res *SimulationResult, main string) (*Partition, error) {
	if _, ok := res.KValues[main]; !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "main component %q not in simulation result", main)
	}

	comps := make([]Component, 0, len(res.KValues))
	for name, k := range res.KValues {
		comps = append(comps, Component{
			Name:           name,
			K:              k,
			FeedFraction:   res.Feed.Composition[name],
			FeedFlow:       res.Feed.ComponentFlow(name),
			DistillateFlow: res.Distillate.ComponentFlow(name),
			BottomsFlow:    res.Bottoms.ComponentFlow(name),
		})
	}
	slices.SortFunc(comps, func(a, b Component) int {
		if c := cmp.Compare(b.K, a.K); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	lk := slices.IndexFunc(comps, func(c Component) bool { return c.Name == main })
	if lk == len(comps)-1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "main component %q is the least volatile; no heavy key", main)
	}
	for i := range comps {
		switch {
		case i < lk:
			comps[i].Role = LightNonKey
		case i == lk:
			comps[i].Role = LightKey
		case i == lk+1:
			comps[i].Role = HeavyKey
		default:
			comps[i].Role = HeavyNonKey
		}
	}

	p := &Partition{
		Components:     comps,
		Main:           main,
		LightKey:       main,
		HeavyKey:       comps[lk+1].Name,
		FeedFlow:       res.Feed.Flow,
		DistillateFlow: res.Distillate.Flow,
		BottomsFlow:    res.Bottoms.Flow,
		Purity:         res.Distillate.Composition[main],
	}
	if fed := comps[lk].FeedFlow; fed > 0 {
		p.Recovery = comps[lk].DistillateFlow / fed
	}
	return p, nil
}

// Component returns the named component.
func (p *Partition) Component(name string) (Component, bool) {
	i := slices.IndexFunc(p.Components, func(c Component) bool { return c.Name == name })
	if i < 0 {
		return Component{}, false
	}
	return p.Components[i], true
}

// RelativeVolatility returns K_name / K_HK.
func (p *Partition) RelativeVolatility(name string) float64 {
	c, _ := p.Component(name)
	hk, _ := p.Component(p.HeavyKey)
	return c.K / hk.K
}

// WithRole returns the components holding role r, in descending K order.
func (p *Partition) WithRole(r Role) []Component {
	var out []Component
	for _, c := range p.Components {
		if c.Role == r {
			out = append(out, c)
		}
	}
	return out
}
