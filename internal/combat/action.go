package combat

import "fmt"

// ActionKind tags an Action.
type ActionKind uint8

const (
	ActDamage ActionKind = iota
	ActHeal
	ActKnockback
	ActStun
	ActLock
)

func (k ActionKind) String() string {
	switch k {
	case ActDamage:
		return "damage"
	case ActHeal:
		return "heal"
	case ActKnockback:
		return "knockback"
	case ActStun:
		return "stun"
	case ActLock:
		return "lock"
	default:
		return fmt.Sprintf("action(%d)", uint8(k))
	}
}

// ParseActionKind is the inverse of String.
func ParseActionKind(s string) (ActionKind, error) {
	for k := ActDamage; k <= ActLock; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown action kind %q", s)
}

// Action is one effect on one unit. It is a value: modifiers return changed
// copies and never touch units.
//
// Amount is hit points for damage and heal. Force is the knockback impulse.
// Duration is seconds of stun or health lock.
type Action struct {
	Kind     ActionKind
	Amount   float64
	Force    float64
	Duration float64
	Critical bool
	Source   int // unit id of the originator, -1 for none
	FromX    float64
	FromZ    float64
}

// Modifier transforms an action before it resolves. src and dst are
// read-only context; src is nil when the action has no originating unit.
type Modifier func(a Action, src, dst *Unit) Action

// Pipeline applies modifiers in declaration order.
type Pipeline []Modifier

// Run threads a through every modifier.
func (p Pipeline) Run(a Action, src, dst *Unit) Action {
	for _, m := range p {
		a = m(a, src, dst)
	}
	return a
}

// Scale multiplies Amount and Force of actions of kind k. With critOnly set
// it leaves non-critical actions alone.
func Scale(k ActionKind, mul float64, critOnly bool) Modifier {
	return func(a Action, _, _ *Unit) Action {
		if a.Kind != k || (critOnly && !a.Critical) {
			return a
		}
		a.Amount *= mul
		a.Force *= mul
		return a
	}
}

// Extend adds a flat bonus to Amount, Force and Duration of actions of kind k.
func Extend(k ActionKind, add float64) Modifier {
	return func(a Action, _, _ *Unit) Action {
		if a.Kind != k {
			return a
		}
		switch k {
		case ActKnockback:
			a.Force += add
		case ActStun, ActLock:
			a.Duration += add
		default:
			a.Amount += add
		}
		return a
	}
}

// Execute (the "executioner" talent) multiplies damage against targets whose
// health ratio is below threshold.
func Execute(threshold, mul float64) Modifier {
	return func(a Action, _, dst *Unit) Action {
		if a.Kind == ActDamage && dst != nil && dst.HealthRatio() < threshold {
			a.Amount *= mul
		}
		return a
	}
}

// Apply resolves an already-modified action against dst.
func (a Action) Apply(dst *Unit) {
	switch a.Kind {
	case ActDamage:
		dst.TakeDamage(a.Amount, a.Critical)
	case ActHeal:
		dst.TakeDamage(-a.Amount, false)
	case ActKnockback:
		dst.ApplyKnockback(a.FromX, a.FromZ, a.Force)
	case ActStun:
		dst.ApplyStun(a.Duration)
	case ActLock:
		dst.ApplyLock(a.Duration)
	}
}
