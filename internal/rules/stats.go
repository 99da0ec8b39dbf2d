package rules

import "math"

// BaseStats are the persisted, unmodified stats of a character.
type BaseStats struct {
	MaxHealth int `json:"max_health"`
	Attack    int `json:"attack"`
	Defense   int `json:"defense"`
	Speed     int `json:"speed"`
	Regen     int `json:"regen"`
}

// LiveStats are the derived stats after stacking all active effect modifiers.
type LiveStats struct {
	MaxHealth int `json:"max_health"`
	Attack    int `json:"attack"`
	Defense   int `json:"defense"`
	Speed     int `json:"speed"`
	Regen     int `json:"regen"`
}

// RecalculateLiveStats derives live stats from base stats and active effects.
// Additive modifiers stack first, multiplicative modifiers scale the sum, so
// the result does not depend on effect ordering. Expired effects contribute
// nothing. Stats floor at zero and max health never drops below one.
func RecalculateLiveStats(base BaseStats, effects []Effect) LiveStats {
	adds := map[StatName]float64{}
	muls := map[StatName]float64{
		StatMaxHealth: 1,
		StatAttack:    1,
		StatDefense:   1,
		StatSpeed:     1,
		StatRegen:     1,
	}

	for _, effect := range effects {
		if effect.Expired() {
			continue
		}
		for _, mod := range effect.Modifiers {
			switch mod.Op {
			case OpAdd:
				adds[mod.Stat] += mod.Value
			case OpMul:
				muls[mod.Stat] *= mod.Value
			}
		}
	}

	derive := func(stat StatName, baseValue int) int {
		value := (float64(baseValue) + adds[stat]) * muls[stat]
		derived := int(math.Round(value))
		if derived < 0 {
			return 0
		}
		return derived
	}

	live := LiveStats{
		MaxHealth: derive(StatMaxHealth, base.MaxHealth),
		Attack:    derive(StatAttack, base.Attack),
		Defense:   derive(StatDefense, base.Defense),
		Speed:     derive(StatSpeed, base.Speed),
		Regen:     derive(StatRegen, base.Regen),
	}
	if live.MaxHealth < 1 {
		live.MaxHealth = 1
	}
	return live
}

// ApplyHealing raises current health by amount without exceeding max.
// It returns the healing actually applied and the resulting health.
func ApplyHealing(current, amount, max int) (healed, result int) {
	if amount <= 0 || current >= max {
		return 0, clampHealth(current, max)
	}
	result = current + amount
	if result > max {
		result = max
	}
	return result - current, result
}

// ApplyHealthBonusChanges re-clamps current health when the dynamic maximum
// changes. A shrinking maximum caps current health; a growing maximum leaves
// it untouched so losing and regaining a bonus is not free healing.
func ApplyHealthBonusChanges(current, newMax int) int {
	return clampHealth(current, newMax)
}

func clampHealth(current, max int) int {
	if current > max {
		return max
	}
	if current < 0 {
		return 0
	}
	return current
}
