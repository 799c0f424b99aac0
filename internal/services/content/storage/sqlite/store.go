package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/louisbranch/contentrepository/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/contentrepository/internal/platform/timeouts"
	"github.com/louisbranch/contentrepository/internal/services/content/core/encoding"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/event"
	"github.com/louisbranch/contentrepository/internal/services/content/storage/sqlite/migrations"
)

const eventsTable = "events"

var eventColumns = []string{
	"stream_name", "version", "event_type", "content_stream_id", "node_aggregate_id",
	"timestamp", "command_type", "correlation_id", "initiating_user_id", "payload_json", "event_hash",
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Store is a SQLite-backed event store.
type Store struct {
	sqlDB *sql.DB
}

// Open opens the event store at path and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)", cleanPath, timeouts.StoreBusy.Milliseconds())
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(context.Background(), sqlDB, migrations.EventsFS, "events"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	applied, err := sqlitemigrate.AppliedMigrations(context.Background(), sqlDB)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	log.Printf("content events: opened %s with migrations %s", cleanPath, strings.Join(applied, ", "))
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the underlying database. It is nil-safe.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Publish appends batch to its stream in one transaction and returns the
// stored events with versions and hashes assigned. It fails with
// event.ErrConcurrencyConflict when the stream is not at the expected version.
func (s *Store) Publish(ctx context.Context, batch event.EventsToPublish) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(batch.StreamName) == "" {
		return nil, event.ErrStreamNameRequired
	}
	if len(batch.Events) == 0 {
		return nil, nil
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	current, err := streamVersion(ctx, tx, batch.StreamName)
	if err != nil {
		return nil, err
	}
	if current != batch.ExpectedVersion {
		log.Printf("content events: conflict on %s at version %d, expected %d", batch.StreamName, current, batch.ExpectedVersion)
		return nil, conflict(batch, current)
	}

	insert := sq.Insert(eventsTable).Columns(eventColumns...)
	stored := make([]event.Event, len(batch.Events))
	for i, evt := range batch.Events {
		if evt.StreamName != batch.StreamName {
			return nil, fmt.Errorf("event %d: %w", i, event.ErrStreamMismatch)
		}
		evt.Version = current + i + 1
		evt.Timestamp = evt.Timestamp.UTC().Truncate(time.Millisecond)
		hash, err := encoding.ContentHash(json.RawMessage(evt.PayloadJSON))
		if err != nil {
			return nil, fmt.Errorf("event %d: hash payload: %w", i, err)
		}
		evt.Hash = hash
		insert = insert.Values(
			evt.StreamName, evt.Version, string(evt.Type), evt.ContentStreamID, evt.NodeAggregateID,
			toMillis(evt.Timestamp), evt.CommandType, evt.CorrelationID, evt.InitiatingUserID, evt.PayloadJSON, evt.Hash,
		)
		stored[i] = evt
	}
	if _, err := insert.RunWith(tx).ExecContext(ctx); err != nil {
		if isConstraintError(err) {
			return nil, conflict(batch, current)
		}
		return nil, fmt.Errorf("insert events: %w", err)
	}
	if err := tx.Commit(); err != nil {
		if isSQLiteBusyError(err) {
			return nil, conflict(batch, current)
		}
		return nil, fmt.Errorf("commit: %w", err)
	}
	return stored, nil
}

// Version returns the version of a stream; a stream without events is at 0.
func (s *Store) Version(ctx context.Context, streamName string) (int, error) {
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	return streamVersion(ctx, s.sqlDB, streamName)
}

// ListEvents returns the events of a stream after afterVersion in version
// order.
func (s *Store) ListEvents(ctx context.Context, streamName string, afterVersion int) ([]event.Event, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	query := sq.Select(eventColumns...).
		From(eventsTable).
		Where(sq.Eq{"stream_name": streamName}).
		Where(sq.Gt{"version": afterVersion}).
		OrderBy("version ASC")
	rows, err := query.RunWith(s.sqlDB).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		var (
			evt       event.Event
			eventType string
			timestamp int64
		)
		if err := rows.Scan(
			&evt.StreamName, &evt.Version, &eventType, &evt.ContentStreamID, &evt.NodeAggregateID,
			&timestamp, &evt.CommandType, &evt.CorrelationID, &evt.InitiatingUserID, &evt.PayloadJSON, &evt.Hash,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		evt.Type = event.Type(eventType)
		evt.Timestamp = fromMillis(timestamp)
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return events, nil
}

func streamVersion(ctx context.Context, runner sq.BaseRunner, streamName string) (int, error) {
	var version int
	err := sq.Select("COALESCE(MAX(version), 0)").
		From(eventsTable).
		Where(sq.Eq{"stream_name": streamName}).
		RunWith(runner).
		QueryRowContext(ctx).
		Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("read stream version: %w", err)
	}
	return version, nil
}

func conflict(batch event.EventsToPublish, current int) error {
	return fmt.Errorf("%w: stream %s is at version %d, expected %d", event.ErrConcurrencyConflict, batch.StreamName, current, batch.ExpectedVersion)
}

func isConstraintError(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

func isSQLiteBusyError(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED
}
