package task

import (
	"fmt"
	"math"
	"strings"

	"github.com/Shopify/go-lua"

	apperrors "github.com/veilspire/gridlink/internal/platform/errors"
)

// RewardScript evaluates task rewards with an operator-supplied Lua hook.
// The script must define `reward(kind, base, streak)` returning a number.
type RewardScript struct {
	source string
}

// CompileRewardScript checks the script loads and defines a reward function.
func CompileRewardScript(source string) (*RewardScript, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, apperrors.New(apperrors.CodeTaskRewardScript, "reward script is empty")
	}

	state := lua.NewState()
	lua.OpenLibraries(state)
	if err := lua.DoString(state, source); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeTaskRewardScript, "load reward script", err)
	}
	state.Global("reward")
	if !state.IsFunction(-1) {
		return nil, apperrors.New(apperrors.CodeTaskRewardScript, "reward script must define reward(kind, base, streak)")
	}
	return &RewardScript{source: source}, nil
}

// Compute runs the hook for one task. Each call uses a fresh interpreter so
// scripts cannot leak state between tasks.
func (s *RewardScript) Compute(kind string, base int64, streak int) (int64, error) {
	if s == nil || s.source == "" {
		return 0, apperrors.New(apperrors.CodeTaskRewardScript, "reward script is not configured")
	}

	state := lua.NewState()
	lua.OpenLibraries(state)
	if err := lua.DoString(state, s.source); err != nil {
		return 0, apperrors.Wrap(apperrors.CodeTaskRewardScript, "load reward script", err)
	}

	state.Global("reward")
	state.PushString(kind)
	state.PushNumber(float64(base))
	state.PushInteger(streak)
	if err := state.ProtectedCall(3, 1, 0); err != nil {
		return 0, apperrors.Wrap(apperrors.CodeTaskRewardScript, "run reward script", err)
	}

	value, ok := state.ToNumber(-1)
	state.Pop(1)
	if !ok {
		return 0, apperrors.New(apperrors.CodeTaskRewardScript, "reward script must return a number")
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, apperrors.New(apperrors.CodeTaskRewardScript, "reward script returned a non-finite number")
	}

	reward := int64(math.Round(value))
	if reward < 0 {
		return 0, apperrors.New(apperrors.CodeTaskRewardScript,
			fmt.Sprintf("reward script returned negative reward %d", reward))
	}
	return reward, nil
}

// DefaultReward is the fallback when no script is configured: the base
// reward plus a ten percent bonus per completion streak.
func DefaultReward(base int64, streak int) int64 {
	if base < 0 {
		return 0
	}
	if streak < 0 {
		streak = 0
	}
	bonus := float64(base) * 0.1 * float64(streak)
	return base + int64(math.Round(bonus))
}
