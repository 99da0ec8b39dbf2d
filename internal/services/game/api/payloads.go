package api

import (
	"time"

	"github.com/veilspire/gridlink/internal/rules"
	"github.com/veilspire/gridlink/internal/services/game/app"
	"github.com/veilspire/gridlink/internal/services/game/domain/character"
	"github.com/veilspire/gridlink/internal/services/game/domain/inventory"
	"github.com/veilspire/gridlink/internal/services/game/domain/payment"
	"github.com/veilspire/gridlink/internal/services/game/domain/task"
)

// characterPayload is the wire shape of a character.
type characterPayload struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	AvatarKey string          `json:"avatar_key,omitempty"`
	Kind      string          `json:"kind"`
	Region    string          `json:"region"`
	Base      rules.BaseStats `json:"base"`
	Live      rules.LiveStats `json:"live"`
	Health    int             `json:"health"`
	Balance   int64           `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func toCharacterPayload(c character.Character) characterPayload {
	return characterPayload{
		ID:        c.ID,
		Name:      c.Name,
		AvatarKey: c.AvatarKey,
		Kind:      string(c.Kind),
		Region:    c.Region,
		Base:      c.Base,
		Live:      c.Live,
		Health:    c.Health,
		Balance:   c.Balance,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// characterDetail pairs a character with its active effects.
type characterDetail struct {
	Character characterPayload `json:"character"`
	Effects   []rules.Effect   `json:"effects"`
}

type characterList struct {
	Characters    []characterPayload `json:"characters"`
	NextPageToken string             `json:"next_page_token,omitempty"`
}

// turnPayload is the wire shape of an end-turn outcome.
type turnPayload struct {
	Character    characterPayload `json:"character"`
	Active       []rules.Effect   `json:"active"`
	Expired      []rules.Effect   `json:"expired"`
	Healed       int              `json:"healed"`
	RegenApplied int              `json:"regen_applied"`
}

func toTurnPayload(outcome app.TurnOutcome) turnPayload {
	return turnPayload{
		Character:    toCharacterPayload(outcome.Character),
		Active:       outcome.Active,
		Expired:      outcome.Expired,
		Healed:       outcome.Healed,
		RegenApplied: outcome.RegenApplied,
	}
}

// taskPayload is the wire shape of an NPC task.
type taskPayload struct {
	ID          string     `json:"id"`
	NPCID       string     `json:"npc_id"`
	CharacterID string     `json:"character_id,omitempty"`
	Kind        string     `json:"kind"`
	BaseReward  int64      `json:"base_reward"`
	Reward      int64      `json:"reward"`
	Streak      int        `json:"streak"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func toTaskPayload(t task.Task) taskPayload {
	return taskPayload{
		ID:          t.ID,
		NPCID:       t.NPCID,
		CharacterID: t.CharacterID,
		Kind:        t.Kind,
		BaseReward:  t.BaseReward,
		Reward:      t.Reward,
		Streak:      t.Streak,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		CompletedAt: t.CompletedAt,
	}
}

type taskList struct {
	Tasks         []taskPayload `json:"tasks"`
	NextPageToken string        `json:"next_page_token,omitempty"`
}

// paymentPayload is the wire shape of a payment receipt.
type paymentPayload struct {
	ID          string    `json:"id"`
	GridTxnID   string    `json:"grid_txn_id"`
	CharacterID string    `json:"character_id"`
	Region      string    `json:"region,omitempty"`
	Amount      int64     `json:"amount"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toPaymentPayload(p payment.Payment) paymentPayload {
	return paymentPayload{
		ID:          p.ID,
		GridTxnID:   p.GridTxnID,
		CharacterID: p.CharacterID,
		Region:      p.Region,
		Amount:      p.Amount,
		Note:        p.Note,
		CreatedAt:   p.CreatedAt,
	}
}

// receiptPayload marks replayed payment deliveries.
type receiptPayload struct {
	Payment   paymentPayload `json:"payment"`
	Duplicate bool           `json:"duplicate"`
}

// stackPayload is the wire shape of an inventory stack.
type stackPayload struct {
	CharacterID string    `json:"character_id"`
	ItemKey     string    `json:"item_key"`
	Quantity    int64     `json:"quantity"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toStackPayload(s inventory.Stack) stackPayload {
	return stackPayload{
		CharacterID: s.CharacterID,
		ItemKey:     s.ItemKey,
		Quantity:    s.Quantity,
		UpdatedAt:   s.UpdatedAt,
	}
}

type stackList struct {
	Stacks []stackPayload `json:"stacks"`
}
