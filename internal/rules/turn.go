package rules

// TurnResult is the outcome of end-turn processing for one character.
type TurnResult struct {
	// Active holds the effects still running after the turn.
	Active []Effect `json:"active"`
	// Expired holds the effects removed this turn.
	Expired []Effect `json:"expired"`
	// Live holds the recomputed derived stats.
	Live LiveStats `json:"live"`
	// Health is the clamped health after regen and healing.
	Health int `json:"health"`
	// Healed is the total health restored this turn (regen + explicit healing).
	Healed int `json:"healed"`
	// RegenApplied is the portion of Healed contributed by the regen stat.
	RegenApplied int `json:"regen_applied"`
}

// ProcessTurn advances effect durations by one turn. Timed effects decrement
// and expire at zero; scened and permanent effects keep their remaining turns.
// The input slice is not mutated.
func ProcessTurn(effects []Effect) (active, expired []Effect) {
	active = make([]Effect, 0, len(effects))
	for _, effect := range effects {
		switch effect.Tag {
		case TagTimed:
			effect.TurnsLeft--
			if effect.TurnsLeft <= 0 {
				effect.TurnsLeft = 0
				expired = append(expired, effect)
				continue
			}
		case TagScened, TagPermanent:
			// Duration preserved until the scene ends or the effect is dispelled.
		}
		active = append(active, effect)
	}
	return active, expired
}

// EndTurn runs a full end-of-turn resolution: advance durations, recompute
// live stats from the surviving effects, apply regen, then apply explicit
// healing, clamping against the recomputed maximum throughout.
func EndTurn(base BaseStats, currentHealth int, effects []Effect, healAmount int) TurnResult {
	active, expired := ProcessTurn(effects)
	live := RecalculateLiveStats(base, active)

	health := ApplyHealthBonusChanges(currentHealth, live.MaxHealth)

	regenApplied, health := ApplyHealing(health, live.Regen, live.MaxHealth)
	healed, health := ApplyHealing(health, healAmount, live.MaxHealth)

	return TurnResult{
		Active:       active,
		Expired:      expired,
		Live:         live,
		Health:       health,
		Healed:       regenApplied + healed,
		RegenApplied: regenApplied,
	}
}
