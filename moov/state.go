package moov

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/m3rciful/moovbot/core/bot"
	"github.com/m3rciful/moovbot/storage"
)

// Store is the durable record collaborator. storage.Postgres satisfies it;
// tests substitute an in-memory fake.
type Store interface {
	Get(ctx context.Context, key storage.Key) (storage.Record, bool, error)
	Put(ctx context.Context, rec storage.Record) error
	UpdateAttribute(ctx context.Context, key storage.Key, path string, value any) error
	RemoveListElement(ctx context.Context, key storage.Key, path string, index int) error
	AppendListElementBelow(ctx context.Context, key storage.Key, path, value string, max int) (bool, error)
	AddToIntSet(ctx context.Context, key storage.Key, path string, value int64) error
	BatchGet(ctx context.Context, chatIDs []int64) ([]storage.Record, error)
	ScanByAttributeEquality(ctx context.Context, path, value string) ([]storage.Record, error)
}

// States adapts the raw record store into the typed operations the engine
// needs. Mutations go through single-attribute store verbs so concurrent
// updates to one record never clobber each other.
type States struct {
	store Store
	now   func() time.Time
}

// NewStates wraps a record store.
func NewStates(store Store) *States {
	return &States{store: store, now: time.Now}
}

// Chat loads the record of a private chat.
func (s *States) Chat(ctx context.Context, chatID int64) (*ChatRecord, bool, error) {
	raw, found, err := s.store.Get(ctx, storage.ActiveKey(chatID))
	if err != nil || !found {
		return nil, false, err
	}
	rec, err := decodeChatRecord(raw.Data)
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

// EnsureChat loads the record of a private chat, provisioning a fresh one on
// first contact.
func (s *States) EnsureChat(ctx context.Context, chatID int64, sender bot.User) (*ChatRecord, error) {
	rec, found, err := s.Chat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if found {
		return rec, nil
	}

	now := s.now().Unix()
	fresh := &ChatRecord{
		Movies: []string{},
		User: UserData{
			FirstName:      sender.FirstName,
			LastName:       sender.LastName,
			Username:       sender.Username,
			TimeAdded:      now,
			TimeLastAction: now,
		},
	}
	if err := s.put(ctx, chatID, fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

// Group loads the record of a group chat.
func (s *States) Group(ctx context.Context, chatID int64) (*GroupRecord, bool, error) {
	raw, found, err := s.store.Get(ctx, storage.ActiveKey(chatID))
	if err != nil || !found {
		return nil, false, err
	}
	rec, err := decodeGroupRecord(raw.Data)
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

// EnsureGroup loads the record of a group chat, provisioning a fresh one on
// first contact.
func (s *States) EnsureGroup(ctx context.Context, chat bot.Chat) (*GroupRecord, error) {
	rec, found, err := s.Group(ctx, chat.ID)
	if err != nil {
		return nil, err
	}
	if found {
		return rec, nil
	}

	now := s.now().Unix()
	fresh := &GroupRecord{
		Group: GroupData{
			Title:          chat.Title,
			Username:       chat.Username,
			TimeAdded:      now,
			TimeLastAction: now,
		},
		Votes: Votes{Participants: Participants{UserIDs: []int64{}}},
	}
	if err := s.put(ctx, chat.ID, fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

// SetPendingMovieInput marks the chat as awaiting a movie title, remembering
// the message to edit once it arrives. A zero messageID clears the flag.
func (s *States) SetPendingMovieInput(ctx context.Context, chatID int64, messageID int) error {
	return s.store.UpdateAttribute(ctx, storage.ActiveKey(chatID), attrWaitMovie, messageID)
}

// SetPendingStreamInput marks the chat as awaiting a streaming search query.
func (s *States) SetPendingStreamInput(ctx context.Context, chatID int64, messageID int) error {
	return s.store.UpdateAttribute(ctx, storage.ActiveKey(chatID), attrWaitStream, messageID)
}

// AppendMovie appends a title to the chat list while it holds fewer than max
// entries. It reports whether the append was applied; the capacity check is
// evaluated atomically by the store.
func (s *States) AppendMovie(ctx context.Context, chatID int64, title string, max int) (bool, error) {
	return s.store.AppendListElementBelow(ctx, storage.ActiveKey(chatID), attrMovies, title, max)
}

// RemoveMovie deletes the list entry at index.
func (s *States) RemoveMovie(ctx context.Context, chatID int64, index int) error {
	return s.store.RemoveListElement(ctx, storage.ActiveKey(chatID), attrMovies, index)
}

// OpenPoll replaces the group's voting state with a fresh active poll.
func (s *States) OpenPoll(ctx context.Context, chatID int64, pollID string) error {
	return s.store.UpdateAttribute(ctx, storage.ActiveKey(chatID), attrParticipants, Participants{
		Active:  true,
		PollID:  pollID,
		UserIDs: []int64{},
	})
}

// AddWatcher adds a user to the group's watcher set. Adding an already
// present user is a no-op.
func (s *States) AddWatcher(ctx context.Context, chatID, userID int64) error {
	return s.store.AddToIntSet(ctx, storage.ActiveKey(chatID), attrWatcherIDs, userID)
}

// GroupByPoll finds the group whose current watcher poll carries pollID.
func (s *States) GroupByPoll(ctx context.Context, pollID string) (int64, *GroupRecord, bool, error) {
	records, err := s.store.ScanByAttributeEquality(ctx, attrPollID, pollID)
	if err != nil {
		return 0, nil, false, err
	}
	if len(records) == 0 {
		return 0, nil, false, nil
	}
	rec, err := decodeGroupRecord(records[0].Data)
	if err != nil {
		return 0, nil, false, err
	}
	return records[0].ChatID, rec, true, nil
}

// WatcherChats loads the private chat records of the given users in one
// round trip. Users without a record are absent from the result.
func (s *States) WatcherChats(ctx context.Context, userIDs []int64) (map[int64]*ChatRecord, error) {
	if len(userIDs) == 0 {
		return map[int64]*ChatRecord{}, nil
	}
	records, err := s.store.BatchGet(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	chats := make(map[int64]*ChatRecord, len(records))
	for _, raw := range records {
		rec, err := decodeChatRecord(raw.Data)
		if err != nil {
			return nil, err
		}
		chats[raw.ChatID] = rec
	}
	return chats, nil
}

func (s *States) put(ctx context.Context, chatID int64, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("moov: encode record: %w", err)
	}
	return s.store.Put(ctx, storage.Record{Key: storage.ActiveKey(chatID), Data: data})
}
