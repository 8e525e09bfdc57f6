package testmodels

import (
	"time"

	"github.com/google/uuid"
)

// Rank is a playing card rank.
//
// ENUM(None, Jack, Queen, King)
type Rank int

const (
	// None is any rank below Jack.
	// schema:value NotFaceCard
	None Rank = iota
	Jack
	Queen
	King
)

// Hidden marks a rank concealed from other players.
// schema:ignore
const Hidden Rank = -1

// Values lists every rank value in declaration order.
func (Rank) Values() []string {
	return []string{"None", "Jack", "Queen", "King"}
}

// SchemaEnumOverrides maps rank names to explicit schema values.
func (Rank) SchemaEnumOverrides() map[string]string {
	return map[string]string{"None": "NotFaceCard"}
}

// Card is a single playing card.
type Card struct {
	// Rank is the card rank.
	Rank Rank `json:"rank"`
	// Face tells whether the card lies face up.
	Face bool `json:"face,omitempty"`
}

// Player is a participant of a [Game].
// Have you seen [Card]?
type Player struct {
	// Name is the display name of the player.
	Name  string `json:"name"`
	Cards []Card `json:"cards"`
	// Buddy points at the player's partner, if any.
	Buddy *Player `json:"buddy,omitempty"`
	// Deprecated: Use Name instead.
	Nickname string `json:"nickname,omitempty"`
}

// Game is the root model used across adapter tests.
//
// Game takes place at a [moremodels.Venue].
type Game struct {
	ID        uuid.UUID      `json:"id"`
	StartedAt time.Time      `json:"startedAt"`
	Players   []Player       `json:"players"`
	Scores    map[string]int `json:"scores,omitempty"`
	// Seats maps seat numbers to player names.
	Seats  map[int]string `json:"seats,omitempty"`
	secret string
}

// Prize is an abstract reward won by a player.
type Prize interface {
	Worth() float64
}

// Trophy is a physical [Prize].
type Trophy struct {
	// Metal names the trophy's material.
	Metal string `json:"metal"`
}

func (t Trophy) Worth() float64 { return 100 }

// Voucher is a monetary [Prize].
type Voucher struct {
	Amount float64 `json:"amount"`
}

func (v Voucher) Worth() float64 { return v.Amount }

// Scored carries common score fields for embedding.
type Scored struct {
	// Points is the accumulated score.
	Points int `json:"points"`
}

// Result embeds [Scored] and adds the winner.
type Result struct {
	Scored
	Winner string `json:"winner"`
}

// Pair is a generic duo of equally typed values.
type Pair[T any] struct {
	First  T `json:"first"`
	Second T `json:"second"`
}
