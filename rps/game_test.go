package rps

import (
	"strings"
	"testing"
)

func TestJudge(t *testing.T) {
	cases := []struct {
		player, bot int
		want        Outcome
	}{
		{0, 0, Draw},
		{1, 0, PlayerWins}, // paper covers rock
		{0, 1, BotWins},
		{2, 1, PlayerWins}, // scissors cut paper
		{1, 2, BotWins},
		{0, 2, PlayerWins}, // rock crushes scissors
		{2, 0, BotWins},
	}
	for _, tc := range cases {
		if got := Judge(tc.player, tc.bot); got != tc.want {
			t.Errorf("Judge(%s, %s) = %v, want %v", Moves[tc.player], Moves[tc.bot], got, tc.want)
		}
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	in := Payload{Roll: "Scissors", Prev: [2]int{12, 7}}
	data, err := EncodePayload(in)
	if err != nil {
		t.Fatalf("EncodePayload: %v", err)
	}
	if len(data) > maxPayloadSize {
		t.Fatalf("payload %d bytes exceeds limit", len(data))
	}
	out, err := DecodePayload(data)
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestDecodePayloadGuards(t *testing.T) {
	if _, err := DecodePayload(strings.Repeat("x", maxPayloadSize+1)); err == nil {
		t.Error("oversized payload should be rejected")
	}
	if _, err := DecodePayload("not json"); err == nil {
		t.Error("malformed payload should be rejected")
	}
}

func TestMoveIndex(t *testing.T) {
	for i, m := range Moves {
		got, ok := MoveIndex(m)
		if !ok || got != i {
			t.Errorf("MoveIndex(%q) = %d, %v", m, got, ok)
		}
	}
	if _, ok := MoveIndex("Lizard"); ok {
		t.Error("unknown move should not resolve")
	}
}
