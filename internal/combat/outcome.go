package combat

import "fmt"

type Outcome int

const (
	OutcomeInconclusive Outcome = iota
	OutcomePlayerVictory
	OutcomeEnemyVictory
	OutcomeDraw
)

func (o Outcome) String() string {
	switch o {
	case OutcomePlayerVictory:
		return "player_victory"
	case OutcomeEnemyVictory:
		return "enemy_victory"
	case OutcomeDraw:
		return "draw"
	case OutcomeInconclusive:
		return "inconclusive"
	default:
		return "unknown"
	}
}

type OutcomeReason struct {
	Outcome         Outcome
	PlayerSurvivors int
	PlayerTotal     int
	EnemySurvivors  int
	EnemyTotal      int
	PlayerFled      int
	EnemyFled       int
	Description     string
}

func (r OutcomeReason) String() string {
	return fmt.Sprintf("%s (%s) player %d/%d fled %d, enemy %d/%d fled %d",
		r.Outcome, r.Description,
		r.PlayerSurvivors, r.PlayerTotal, r.PlayerFled,
		r.EnemySurvivors, r.EnemyTotal, r.EnemyFled)
}

// Outcome classifies the battle as it stands. A side with nobody left on the
// field has lost, whether its units died or escaped.
func (b *Battle) Outcome() OutcomeReason {
	r := OutcomeReason{
		PlayerFled: b.stats.Fled[SidePlayer],
		EnemyFled:  b.stats.Fled[SideEnemy],
	}
	for _, u := range b.units {
		standing := !u.dead && !u.Escaped
		switch u.Side {
		case SidePlayer:
			r.PlayerTotal++
			if standing {
				r.PlayerSurvivors++
			}
		case SideEnemy:
			r.EnemyTotal++
			if standing {
				r.EnemySurvivors++
			}
		}
	}

	switch {
	case r.PlayerTotal == 0 || r.EnemyTotal == 0:
		r.Outcome, r.Description = OutcomeInconclusive, "not_engaged"
	case r.PlayerSurvivors == 0 && r.EnemySurvivors == 0:
		r.Outcome, r.Description = OutcomeDraw, "mutual_destruction"
	case r.EnemySurvivors == 0:
		r.Outcome = OutcomePlayerVictory
		r.Description = "decisive_player_victory_enemy_eliminated"
		if r.EnemyFled > 0 {
			r.Description = "player_victory_enemy_routed"
		}
	case r.PlayerSurvivors == 0:
		r.Outcome = OutcomeEnemyVictory
		r.Description = "decisive_enemy_victory_player_eliminated"
		if r.PlayerFled > 0 {
			r.Description = "enemy_victory_player_routed"
		}
	default:
		r.Outcome, r.Description = OutcomeInconclusive, "ongoing"
	}
	return r
}
