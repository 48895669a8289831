package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ErrNotFound reports a write against a record that does not exist.
var ErrNotFound = errors.New("storage: record not found")

const queryTimeout = 5 * time.Second

// Postgres stores chat records in the records table.
type Postgres struct {
	db *sqlx.DB
}

// NewPostgres wraps an open sqlx connection pool.
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

// Get loads a record by key. Absence is reported via the boolean, not an error.
func (s *Postgres) Get(ctx context.Context, key Key) (Record, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rec := Record{Key: key}
	err := s.db.QueryRowxContext(ctx,
		`SELECT data FROM records WHERE chat_id = $1 AND deleted = $2`,
		key.ChatID, key.Deleted,
	).Scan(&rec.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("storage get: %w", err)
	}
	return rec, true, nil
}

// Put upserts the whole document for a key.
func (s *Postgres) Put(ctx context.Context, rec Record) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO records (chat_id, deleted, data) VALUES ($1, $2, $3)
		 ON CONFLICT (chat_id, deleted) DO UPDATE SET data = EXCLUDED.data`,
		rec.ChatID, rec.Deleted, rec.Data,
	)
	if err != nil {
		return fmt.Errorf("storage put: %w", err)
	}
	return nil
}

// UpdateAttribute overwrites a single attribute addressed by a dotted path,
// leaving sibling attributes untouched.
func (s *Postgres) UpdateAttribute(ctx context.Context, key Key, path string, value any) error {
	segments, err := parsePath(path)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("storage update %s: %w", path, err)
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx,
		`UPDATE records SET data = jsonb_set(data, $3::text[], $4::jsonb, true)
		 WHERE chat_id = $1 AND deleted = $2`,
		key.ChatID, key.Deleted, pq.StringArray(segments), encoded,
	)
	if err != nil {
		return fmt.Errorf("storage update %s: %w", path, err)
	}
	return requireRow(res, path)
}

// RemoveListElement deletes the list element at index under path. Removing an
// out-of-range index leaves the document unchanged, matching jsonb semantics.
func (s *Postgres) RemoveListElement(ctx context.Context, key Key, path string, index int) error {
	segments, err := parsePath(path)
	if err != nil {
		return err
	}
	if index < 0 {
		return fmt.Errorf("storage remove %s: negative index %d", path, index)
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx,
		`UPDATE records SET data = data #- $3::text[]
		 WHERE chat_id = $1 AND deleted = $2`,
		key.ChatID, key.Deleted, pq.StringArray(pathWithIndex(segments, index)),
	)
	if err != nil {
		return fmt.Errorf("storage remove %s[%d]: %w", path, index, err)
	}
	return requireRow(res, path)
}

// AppendListElementBelow appends value to the list under path only while the
// stored list is shorter than max. The capacity check runs inside the UPDATE,
// so concurrent appends cannot both pass it against a stale read. The boolean
// reports whether the append was applied.
func (s *Postgres) AppendListElementBelow(ctx context.Context, key Key, path, value string, max int) (bool, error) {
	segments, err := parsePath(path)
	if err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx,
		`UPDATE records
		    SET data = jsonb_set(data, $3::text[], (data #> $3::text[]) || to_jsonb($4::text))
		  WHERE chat_id = $1 AND deleted = $2
		    AND jsonb_array_length(data #> $3::text[]) < $5`,
		key.ChatID, key.Deleted, pq.StringArray(segments), value, max,
	)
	if err != nil {
		return false, fmt.Errorf("storage append %s: %w", path, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("storage append %s: %w", path, err)
	}
	return n == 1, nil
}

// AddToIntSet inserts value into the integer list under path with set
// semantics: a value already present leaves the document unchanged.
func (s *Postgres) AddToIntSet(ctx context.Context, key Key, path string, value int64) error {
	segments, err := parsePath(path)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err = s.db.ExecContext(ctx,
		`UPDATE records
		    SET data = jsonb_set(data, $3::text[], (data #> $3::text[]) || to_jsonb($4::bigint))
		  WHERE chat_id = $1 AND deleted = $2
		    AND NOT (data #> $3::text[]) @> to_jsonb($4::bigint)`,
		key.ChatID, key.Deleted, pq.StringArray(segments), value,
	)
	if err != nil {
		return fmt.Errorf("storage set-add %s: %w", path, err)
	}
	return nil
}

// BatchGet loads the live records for the given chat ids in one round trip.
// Soft-deleted rows are excluded; missing chats are silently absent from the
// result, mirroring a key-value batch read.
func (s *Postgres) BatchGet(ctx context.Context, chatIDs []int64) ([]Record, error) {
	if len(chatIDs) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.QueryxContext(ctx,
		`SELECT chat_id, deleted, data FROM records
		 WHERE deleted = 0 AND chat_id = ANY($1)`,
		pq.Int64Array(chatIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("storage batch get: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

// ScanByAttributeEquality returns all live records whose attribute at the
// dotted path equals the given text value.
func (s *Postgres) ScanByAttributeEquality(ctx context.Context, path, value string) ([]Record, error) {
	segments, err := parsePath(path)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.QueryxContext(ctx,
		`SELECT chat_id, deleted, data FROM records
		 WHERE deleted = 0 AND data #>> $1::text[] = $2`,
		pq.StringArray(segments), value,
	)
	if err != nil {
		return nil, fmt.Errorf("storage scan %s: %w", path, err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

func collectRecords(rows *sqlx.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ChatID, &rec.Deleted, &rec.Data); err != nil {
			return nil, fmt.Errorf("storage scan row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage rows: %w", err)
	}
	return out, nil
}

func requireRow(res sql.Result, path string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage %s: %w", path, err)
	}
	if n == 0 {
		return fmt.Errorf("storage %s: %w", path, ErrNotFound)
	}
	return nil
}
