package combat

import "fmt"

// TalentTemplate describes a passive modifier in configuration.
//
//	kind: damage     mul: 1.2               all damage +20%
//	kind: damage     mul: 2, crit_only      critical hits double again
//	kind: knockback  add: 0.5               stronger shoves
//	kind: damage     execute_below: 0.3, mul: 1.5
type TalentTemplate struct {
	ID           string  `yaml:"id"`
	Kind         string  `yaml:"kind"`
	Mul          float64 `yaml:"mul"`
	Add          float64 `yaml:"add"`
	CritOnly     bool    `yaml:"crit_only"`
	ExecuteBelow float64 `yaml:"execute_below"`
}

// Modifier compiles the talent into a pipeline stage.
func (t TalentTemplate) Modifier() (Modifier, error) {
	k, err := ParseActionKind(t.Kind)
	if err != nil {
		return nil, fmt.Errorf("talent %s: %w", t.ID, err)
	}
	mul := t.Mul
	if mul == 0 {
		mul = 1
	}
	switch {
	case t.ExecuteBelow > 0:
		if k != ActDamage {
			return nil, fmt.Errorf("talent %s: execute only applies to damage", t.ID)
		}
		return Execute(t.ExecuteBelow, mul), nil
	case t.Add != 0 && mul != 1:
		scale, extend := Scale(k, mul, t.CritOnly), Extend(k, t.Add)
		return func(a Action, src, dst *Unit) Action {
			return extend(scale(a, src, dst), src, dst)
		}, nil
	case t.Add != 0:
		return Extend(k, t.Add), nil
	default:
		return Scale(k, mul, t.CritOnly), nil
	}
}

// BuildPipeline compiles talents in order. Unknown ids are an error.
func BuildPipeline(ids []string, defs map[string]TalentTemplate) (Pipeline, error) {
	p := make(Pipeline, 0, len(ids))
	for _, id := range ids {
		def, ok := defs[id]
		if !ok {
			return nil, fmt.Errorf("unknown talent %q", id)
		}
		m, err := def.Modifier()
		if err != nil {
			return nil, err
		}
		p = append(p, m)
	}
	return p, nil
}
