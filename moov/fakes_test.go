package moov

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/m3rciful/moovbot/core/bot"
	"github.com/m3rciful/moovbot/storage"
)

// fakeStore is an in-memory Store operating on decoded JSON documents. It
// mirrors the attribute semantics of the Postgres implementation closely
// enough for engine scenarios.
type fakeStore struct {
	docs map[int64]map[string]any
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: make(map[int64]map[string]any)}
}

func (s *fakeStore) Get(_ context.Context, key storage.Key) (storage.Record, bool, error) {
	doc, ok := s.docs[key.ChatID]
	if !ok {
		return storage.Record{}, false, nil
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return storage.Record{}, false, err
	}
	return storage.Record{Key: key, Data: data}, true, nil
}

func (s *fakeStore) Put(_ context.Context, rec storage.Record) error {
	var doc map[string]any
	if err := json.Unmarshal(rec.Data, &doc); err != nil {
		return err
	}
	s.docs[rec.ChatID] = doc
	return nil
}

func (s *fakeStore) UpdateAttribute(_ context.Context, key storage.Key, path string, value any) error {
	doc, ok := s.docs[key.ChatID]
	if !ok {
		return storage.ErrNotFound
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	var decoded any
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		return err
	}
	parent, last := navigate(doc, path)
	parent[last] = decoded
	return nil
}

func (s *fakeStore) RemoveListElement(_ context.Context, key storage.Key, path string, index int) error {
	doc, ok := s.docs[key.ChatID]
	if !ok {
		return storage.ErrNotFound
	}
	if index < 0 {
		return fmt.Errorf("negative index %d", index)
	}
	parent, last := navigate(doc, path)
	list, _ := parent[last].([]any)
	if index >= len(list) {
		return nil
	}
	parent[last] = append(list[:index], list[index+1:]...)
	return nil
}

func (s *fakeStore) AppendListElementBelow(_ context.Context, key storage.Key, path, value string, max int) (bool, error) {
	doc, ok := s.docs[key.ChatID]
	if !ok {
		return false, storage.ErrNotFound
	}
	parent, last := navigate(doc, path)
	list, _ := parent[last].([]any)
	if len(list) >= max {
		return false, nil
	}
	parent[last] = append(list, value)
	return true, nil
}

func (s *fakeStore) AddToIntSet(_ context.Context, key storage.Key, path string, value int64) error {
	doc, ok := s.docs[key.ChatID]
	if !ok {
		return storage.ErrNotFound
	}
	parent, last := navigate(doc, path)
	list, _ := parent[last].([]any)
	for _, v := range list {
		if n, ok := v.(float64); ok && int64(n) == value {
			return nil
		}
	}
	parent[last] = append(list, float64(value))
	return nil
}

func (s *fakeStore) BatchGet(ctx context.Context, chatIDs []int64) ([]storage.Record, error) {
	var out []storage.Record
	for _, id := range chatIDs {
		rec, found, err := s.Get(ctx, storage.ActiveKey(id))
		if err != nil {
			return nil, err
		}
		if found {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *fakeStore) ScanByAttributeEquality(_ context.Context, path, value string) ([]storage.Record, error) {
	var out []storage.Record
	for chatID, doc := range s.docs {
		parent, last := navigate(doc, path)
		if v, ok := parent[last].(string); ok && v == value {
			data, err := json.Marshal(doc)
			if err != nil {
				return nil, err
			}
			out = append(out, storage.Record{Key: storage.ActiveKey(chatID), Data: data})
		}
	}
	return out, nil
}

// navigate walks all but the last segment of a dotted path, creating
// intermediate objects, and returns the parent object plus the final key.
func navigate(doc map[string]any, path string) (map[string]any, string) {
	segments := strings.Split(path, ".")
	current := doc
	for _, seg := range segments[:len(segments)-1] {
		next, ok := current[seg].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[seg] = next
		}
		current = next
	}
	return current, segments[len(segments)-1]
}

type sentMessage struct {
	ChatID    int64
	MessageID int
	Text      string
	Buttons   []string // callback tokens, flattened
	Edited    bool
}

type sentPoll struct {
	ChatID   int64
	PollID   string
	Question string
	Options  []string
}

// fakeTransport records outbound traffic and hands out sequential ids. It is
// mutex-guarded because vote handlers fan out effects concurrently.
type fakeTransport struct {
	mu       sync.Mutex
	nextID   int
	messages []sentMessage
	polls    []sentPoll
	deleted  []int
	admins   map[int64]bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{admins: map[int64]bool{}}
}

func (t *fakeTransport) Send(_ context.Context, chatID int64, text string, opts *bot.SendOptions) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	t.messages = append(t.messages, sentMessage{
		ChatID:    chatID,
		MessageID: t.nextID,
		Text:      text,
		Buttons:   flatButtons(opts),
	})
	return t.nextID, nil
}

func (t *fakeTransport) Edit(_ context.Context, chatID int64, messageID int, text string, opts *bot.SendOptions) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, sentMessage{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
		Buttons:   flatButtons(opts),
		Edited:    true,
	})
	return messageID, nil
}

func (t *fakeTransport) SendPoll(_ context.Context, chatID int64, question string, options []string, _ bot.PollOptions) (string, int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	pollID := fmt.Sprintf("poll-%d", t.nextID)
	t.polls = append(t.polls, sentPoll{
		ChatID:   chatID,
		PollID:   pollID,
		Question: question,
		Options:  options,
	})
	return pollID, t.nextID, nil
}

func (t *fakeTransport) Delete(_ context.Context, _ int64, messageID int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.deleted = append(t.deleted, messageID)
	return nil
}

func (t *fakeTransport) Administrators(_ context.Context, _ int64) (map[int64]bool, error) {
	return t.admins, nil
}

func (t *fakeTransport) last(tb testing.TB) sentMessage {
	tb.Helper()
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.messages) == 0 {
		tb.Fatal("no messages sent")
	}
	return t.messages[len(t.messages)-1]
}

func flatButtons(opts *bot.SendOptions) []string {
	if opts == nil {
		return nil
	}
	var tokens []string
	for _, row := range opts.Keyboard {
		for _, b := range row {
			tokens = append(tokens, b.Data)
		}
	}
	return tokens
}

func newTestEngine(tr *fakeTransport, st Store) *Engine {
	return NewEngine(Config{
		BotName:   "moovbot",
		Limits:    Limits{MaxMovies: 3, MaxTitleLength: 100, MaxVoteOptions: 10},
		Transport: tr,
		Store:     st,
	})
}

func privateMessage(chatID int64, text string) bot.MessageEvent {
	return bot.MessageEvent{
		Chat:   bot.Chat{ID: chatID, Private: true},
		Sender: bot.User{ID: chatID, FirstName: "Test"},
		Text:   text,
	}
}

func groupMessage(chatID, userID int64, msgID int, text string) bot.MessageEvent {
	return bot.MessageEvent{
		Chat:      bot.Chat{ID: chatID, Title: "Movie club"},
		Sender:    bot.User{ID: userID},
		MessageID: msgID,
		Text:      text,
	}
}

func callback(chatID int64, msgID int, data string) bot.CallbackEvent {
	return bot.CallbackEvent{
		Chat:      bot.Chat{ID: chatID, Private: true},
		Sender:    bot.User{ID: chatID},
		MessageID: msgID,
		Data:      data,
	}
}
