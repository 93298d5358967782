package combat

import (
	"fmt"
	"math"
)

// SkillTemplate is a castable ability: a cooldown, a cast range and a list of
// actions, each optionally delayed and optionally area-of-effect.
type SkillTemplate struct {
	ID       string        `yaml:"id"`
	Cooldown float64       `yaml:"cooldown"`
	Range    float64       `yaml:"range"`
	Actions  []SkillAction `yaml:"actions"`
}

// SkillAction is one step of a skill.
type SkillAction struct {
	Kind     string  `yaml:"kind"`
	Amount   float64 `yaml:"amount"`
	Force    float64 `yaml:"force"`
	Duration float64 `yaml:"duration"`
	Delay    float64 `yaml:"delay"`  // seconds after the cast
	Radius   float64 `yaml:"radius"` // >0 hits every unit within radius of the target point
	Allies   bool    `yaml:"allies"` // affect the caster's side instead of the enemy's
}

// Validate checks action kinds and numeric ranges.
func (t SkillTemplate) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("skill without id")
	}
	if t.Cooldown < 0 || t.Range < 0 {
		return fmt.Errorf("skill %s: negative cooldown or range", t.ID)
	}
	for i, a := range t.Actions {
		if _, err := ParseActionKind(a.Kind); err != nil {
			return fmt.Errorf("skill %s action %d: %w", t.ID, i, err)
		}
		if a.Delay < 0 || a.Radius < 0 {
			return fmt.Errorf("skill %s action %d: negative delay or radius", t.ID, i)
		}
	}
	return nil
}

type skillState struct {
	tpl     SkillTemplate
	kinds   []ActionKind
	readyAt float64
}

func newSkillState(t SkillTemplate) (*skillState, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	kinds := make([]ActionKind, len(t.Actions))
	for i, a := range t.Actions {
		kinds[i], _ = ParseActionKind(a.Kind)
	}
	return &skillState{tpl: t, kinds: kinds}, nil
}

// readySkill returns the first skill off cooldown that reaches dist.
func (u *Unit) readySkill(now, dist float64) *skillState {
	for _, s := range u.skills {
		if now >= s.readyAt && dist <= s.tpl.Range {
			return s
		}
	}
	return nil
}

// cast starts a skill on target. The impact point is fixed at cast time so
// delayed area effects land where the target stood.
func (b *Battle) cast(src, target *Unit, s *skillState) {
	s.readyAt = b.now + s.tpl.Cooldown
	b.stats.SkillCasts++
	b.log.Add(b.tick, src.Label(), src.Side.String(), "combat", "skill", s.tpl.ID, 0)
	b.renderer.PlayEffect("skill:"+s.tpl.ID, map[string]float64{"x": target.X, "z": target.Z})

	cx, cz, tid := target.X, target.Z, target.ID
	for i, sa := range s.tpl.Actions {
		kind := s.kinds[i]
		run := func() { b.skillAction(src, tid, cx, cz, kind, sa) }
		if sa.Delay > 0 {
			b.timers.After(sa.Delay, run)
			continue
		}
		run()
	}
}

func (b *Battle) skillAction(src *Unit, targetID int, cx, cz float64, kind ActionKind, sa SkillAction) {
	a := Action{
		Kind:     kind,
		Amount:   sa.Amount,
		Force:    sa.Force,
		Duration: sa.Duration,
		Source:   src.ID,
		FromX:    src.X,
		FromZ:    src.Z,
	}
	side := src.Side.Other()
	if sa.Allies {
		side = src.Side
	}

	if sa.Radius <= 0 {
		dst := b.Unit(targetID)
		if sa.Allies {
			dst = src
		}
		if dst != nil && !dst.Escaped {
			b.resolve(a, src, dst)
		}
		return
	}

	a.FromX, a.FromZ = cx, cz
	b.scratch = b.hash.QueryInto(b.scratch[:0], cx, cz, sa.Radius+b.hash.CellSize())
	hits := 0
	for _, o := range b.scratch {
		if o.dead || o.Escaped || o.Side != side {
			continue
		}
		if math.Hypot(o.X-cx, o.Z-cz) > sa.Radius {
			continue
		}
		b.resolve(a, src, o)
		hits++
	}
	b.log.AddVerbose(b.tick, src.Label(), src.Side.String(), "combat", "aoe", kind.String(), float64(hits))
}
