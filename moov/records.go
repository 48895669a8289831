// Package moov implements the movie bot engine: a collaborative per-chat
// movie list, group voting flows and streaming search, driven by normalized
// bot events. All state lives in durable chat records; the engine itself
// keeps nothing between invocations.
package moov

import (
	"encoding/json"
	"fmt"
)

// Attribute paths inside the record document. Poll lookups scan
// votes.participants.poll_id, which is backed by an expression index.
const (
	attrMovies       = "movies"
	attrWaitMovie    = "waitForMovieInput"
	attrWaitStream   = "waitForStreamingInput"
	attrParticipants = "votes.participants"
	attrWatcherIDs   = "votes.participants.user_ids"
	attrPollID       = "votes.participants.poll_id"
)

// UserData captures the user a private chat record belongs to.
type UserData struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Username       string `json:"username"`
	TimeAdded      int64  `json:"timeUserAdded"`
	TimeLastAction int64  `json:"timeUserLastAction"`
}

// ChatRecord is the document stored for a private chat. The pending-input
// fields hold the id of the message to edit once input arrives; zero means
// no input is awaited.
type ChatRecord struct {
	Movies                []string `json:"movies"`
	WaitForMovieInput     int      `json:"waitForMovieInput"`
	WaitForStreamingInput int      `json:"waitForStreamingInput"`
	User                  UserData `json:"user_data"`
}

// GroupData captures the group a group chat record belongs to.
type GroupData struct {
	Title          string `json:"title"`
	Username       string `json:"username"`
	TimeAdded      int64  `json:"timeGroupAdded"`
	TimeLastAction int64  `json:"timeGroupLastAction"`
}

// Participants tracks the current watcher poll of a group: the poll id the
// answers arrive under and the set of users who answered affirmatively.
type Participants struct {
	Active  bool    `json:"active"`
	PollID  string  `json:"poll_id"`
	UserIDs []int64 `json:"user_ids"`
}

// Votes groups the voting state of a group chat record.
type Votes struct {
	Participants Participants `json:"participants"`
}

// GroupRecord is the document stored for a group chat.
type GroupRecord struct {
	Group GroupData `json:"group_data"`
	Votes Votes     `json:"votes"`
}

func decodeChatRecord(data []byte) (*ChatRecord, error) {
	var rec ChatRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("moov: decode chat record: %w", err)
	}
	return &rec, nil
}

func decodeGroupRecord(data []byte) (*GroupRecord, error) {
	var rec GroupRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("moov: decode group record: %w", err)
	}
	return &rec, nil
}
