package world

import "fmt"

// EntityType classifies overworld objects.
type EntityType uint8

const (
	EntityCity EntityType = iota
	EntityEnemyGroup
	EntityPickup
	EntityTree
	EntityCapturedBuilding
	EntityAIHero
	EntityDecoration
)

func (t EntityType) String() string {
	switch t {
	case EntityCity:
		return "city"
	case EntityEnemyGroup:
		return "enemy_group"
	case EntityPickup:
		return "pickup"
	case EntityTree:
		return "tree"
	case EntityCapturedBuilding:
		return "captured_building"
	case EntityAIHero:
		return "ai_hero"
	case EntityDecoration:
		return "decoration"
	default:
		return fmt.Sprintf("entity(%d)", uint8(t))
	}
}

// Entity is an overworld object. Entities are never deleted: Removed hides
// them while keeping ids stable for saves and AI memory.
type Entity struct {
	ID      int        `msgpack:"id"`
	Type    EntityType `msgpack:"type"`
	Kind    string     `msgpack:"kind"` // sub-type: enemy template, building or pickup kind
	Name    string     `msgpack:"name,omitempty"`
	X       float64    `msgpack:"x"`
	Z       float64    `msgpack:"z"`
	Owner   string     `msgpack:"owner,omitempty"` // faction name, empty when unowned
	Removed bool       `msgpack:"removed,omitempty"`
	Hits    int        `msgpack:"hits,omitempty"`  // interactions left before a tree falls
	Value   int        `msgpack:"value,omitempty"` // resources granted or produced per day
}

// Pos implements nav.Body.
func (e *Entity) Pos() (float64, float64) { return e.X, e.Z }

// Alive implements nav.Body.
func (e *Entity) Alive() bool { return !e.Removed }

// Label identifies the entity in logs.
func (e *Entity) Label() string {
	if e.Kind != "" {
		return fmt.Sprintf("%s:%s#%d", e.Type, e.Kind, e.ID)
	}
	return fmt.Sprintf("%s#%d", e.Type, e.ID)
}

// Resource reports which stockpile an entity feeds, if any.
func (e *Entity) Resource() string {
	switch e.Type {
	case EntityTree:
		return "wood"
	case EntityPickup:
		if e.Kind == "wood" {
			return "wood"
		}
		return "gold"
	case EntityCapturedBuilding:
		if e.Kind == "sawmill" {
			return "wood"
		}
		return "gold"
	}
	return ""
}

// Faction owns territory and stockpiles resources.
type Faction struct {
	Name string `msgpack:"name"`
	Kind string `msgpack:"kind"` // player, sect or evil
	Hero string `msgpack:"hero,omitempty"`
	Gold int    `msgpack:"gold"`
	Wood int    `msgpack:"wood"`
}

// Credit adds amount of resource to the stockpile.
func (f *Faction) Credit(resource string, amount int) {
	switch resource {
	case "gold":
		f.Gold += amount
	case "wood":
		f.Wood += amount
	}
}
