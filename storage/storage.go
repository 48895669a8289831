// Package storage implements the durable per-chat record store on top of
// Postgres. Records are JSONB documents addressed by the composite key
// (chat_id, deleted) with DynamoDB-style partial updates: single-attribute
// set, list element removal by index, conditional list append, batched and
// scanned reads. Attribute paths support dotted nesting (votes.participants).
package storage

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Key identifies one chat record. Deleted participates in the key so a
// soft-deleted row never shadows the live one.
type Key struct {
	ChatID  int64
	Deleted int
}

// ActiveKey returns the key of the live (non-deleted) record for a chat.
func ActiveKey(chatID int64) Key {
	return Key{ChatID: chatID}
}

// Record is one stored document. Data holds the raw JSON body; callers
// unmarshal it into their own schema.
type Record struct {
	Key
	Data []byte
}

var pathSegmentRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// parsePath splits a dotted attribute path into jsonb path segments,
// rejecting anything that could not have come from the schema.
func parsePath(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("storage: empty attribute path")
	}
	segments := strings.Split(path, ".")
	if len(segments) > 3 {
		return nil, fmt.Errorf("storage: attribute path %q nests too deep", path)
	}
	for _, seg := range segments {
		if !pathSegmentRe.MatchString(seg) {
			return nil, fmt.Errorf("storage: invalid attribute path segment %q", seg)
		}
	}
	return segments, nil
}

func pathWithIndex(segments []string, index int) []string {
	out := make([]string, 0, len(segments)+1)
	out = append(out, segments...)
	return append(out, strconv.Itoa(index))
}
