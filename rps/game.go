// Package rps implements the rock-paper-scissors side bot: a stateless game
// where the running score travels inside the callback payload.
package rps

import (
	"encoding/json"
	"fmt"
)

// Moves in judging order. The move at index i beats the move at index
// (i+2)%3 and loses to the move at (i+1)%3.
var Moves = []string{"Rock", "Paper", "Scissors"}

// Outcome of one round from the player's point of view.
type Outcome int

const (
	Draw Outcome = iota
	PlayerWins
	BotWins
)

// maxPayloadSize is the Telegram callback data limit.
const maxPayloadSize = 64

// Payload is the callback data of a move button: the move it plays plus the
// running [player, bot] score carried from the previous round.
type Payload struct {
	Roll string `json:"roll"`
	Prev [2]int `json:"prev"`
}

// Judge resolves a round by index distance between the two moves.
func Judge(player, bot int) Outcome {
	switch (player - bot + len(Moves)) % len(Moves) {
	case 1:
		return PlayerWins
	case 2:
		return BotWins
	default:
		return Draw
	}
}

// MoveIndex resolves a move name to its index.
func MoveIndex(name string) (int, bool) {
	for i, m := range Moves {
		if m == name {
			return i, true
		}
	}
	return 0, false
}

// EncodePayload serializes a payload, enforcing the callback data limit.
func EncodePayload(p Payload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("rps: encode payload: %w", err)
	}
	if len(data) > maxPayloadSize {
		return "", fmt.Errorf("rps: payload %d bytes exceeds %d", len(data), maxPayloadSize)
	}
	return string(data), nil
}

// DecodePayload parses callback data produced by EncodePayload.
func DecodePayload(data string) (Payload, error) {
	if len(data) > maxPayloadSize {
		return Payload{}, fmt.Errorf("rps: payload %d bytes exceeds %d", len(data), maxPayloadSize)
	}
	var p Payload
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return Payload{}, fmt.Errorf("rps: decode payload: %w", err)
	}
	return p, nil
}
