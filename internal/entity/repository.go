package entity

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/hass-agent/internal/model"
)

// Repository defines ledger persistence operations.
type Repository interface {
	RecordAnnouncement(ctx context.Context, id model.DeviceID, doc *model.Discovery) error
	List(ctx context.Context) ([]Entity, error)
	GetByConfigTopic(ctx context.Context, topic string) (*Entity, error)
	SaveState(ctx context.Context, topic string, payload []byte) error
	LastState(ctx context.Context, topic string) (string, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRepository creates a new SQLite-backed entity ledger.
// The entities and entity_states tables must already exist.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

// RecordAnnouncement stores doc under the entity's config topic.
//
// Re-announcing an entity replaces the stored document and increments its
// announce count.
func (r *SQLiteRepository) RecordAnnouncement(ctx context.Context, id model.DeviceID, doc *model.Discovery) error {
	if id.ID == "" {
		return fmt.Errorf("entity id is required")
	}
	if doc == nil {
		return fmt.Errorf("discovery document is required")
	}

	document, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshalling discovery document: %w", err)
	}

	const query = `INSERT INTO entities
		(config_topic, unique_id, component, node_id, object_id, document, announced_at, announce_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1)
		ON CONFLICT(config_topic) DO UPDATE SET
			unique_id = excluded.unique_id,
			document = excluded.document,
			announced_at = excluded.announced_at,
			announce_count = entities.announce_count + 1`
	_, err = r.db.ExecContext(ctx, query,
		id.ConfigTopic(), doc.UniqueID, id.Component.String(), id.NodeID, id.ID,
		string(document), r.timestamp())
	if err != nil {
		return fmt.Errorf("recording announcement %s: %w", id.ConfigTopic(), err)
	}
	return nil
}

// List returns every recorded entity ordered by config topic, each with its
// last state when the component publishes one.
func (r *SQLiteRepository) List(ctx context.Context) ([]Entity, error) {
	const query = `SELECT config_topic, unique_id, component, node_id, object_id,
		document, announced_at, announce_count
		FROM entities ORDER BY config_topic`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying entities: %w", err)
	}
	defer rows.Close()

	entities := make([]Entity, 0)
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		entities = append(entities, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entities: %w", err)
	}
	// rows must be closed before the state lookups reuse the single connection.
	rows.Close()

	for i := range entities {
		if err := r.attachState(ctx, &entities[i]); err != nil {
			return nil, err
		}
	}
	return entities, nil
}

// GetByConfigTopic returns the entity announced on topic.
// Returns ErrEntityNotFound if nothing was announced there.
func (r *SQLiteRepository) GetByConfigTopic(ctx context.Context, topic string) (*Entity, error) {
	const query = `SELECT config_topic, unique_id, component, node_id, object_id,
		document, announced_at, announce_count
		FROM entities WHERE config_topic = ?`
	e, err := scanEntity(r.db.QueryRowContext(ctx, query, topic))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntityNotFound
		}
		return nil, err
	}
	if err := r.attachState(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// SaveState stores payload as the last state published on topic.
func (r *SQLiteRepository) SaveState(ctx context.Context, topic string, payload []byte) error {
	if topic == "" {
		return fmt.Errorf("state topic is required")
	}

	const query = `INSERT INTO entity_states (state_topic, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(state_topic) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at`
	if _, err := r.db.ExecContext(ctx, query, topic, string(payload), r.timestamp()); err != nil {
		return fmt.Errorf("saving state %s: %w", topic, err)
	}
	return nil
}

// LastState returns the last payload saved for topic.
// Returns ErrStateNotFound if none was saved.
func (r *SQLiteRepository) LastState(ctx context.Context, topic string) (string, error) {
	s, err := r.getState(ctx, topic)
	if err != nil {
		return "", err
	}
	return s.Payload, nil
}

func (r *SQLiteRepository) getState(ctx context.Context, topic string) (*State, error) {
	var (
		s         State
		updatedAt string
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT state_topic, payload, updated_at FROM entity_states WHERE state_topic = ?",
		topic,
	).Scan(&s.Topic, &s.Payload, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStateNotFound
		}
		return nil, fmt.Errorf("scanning state: %w", err)
	}
	if s.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &s, nil
}

// attachState loads the state stored for e, if it has a state topic.
func (r *SQLiteRepository) attachState(ctx context.Context, e *Entity) error {
	topic, ok := stateTopicFor(e)
	if !ok {
		return nil
	}
	s, err := r.getState(ctx, topic)
	if errors.Is(err, ErrStateNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	e.State = s
	return nil
}

func (r *SQLiteRepository) timestamp() string {
	return r.now().UTC().Format(time.RFC3339Nano)
}

// stateTopicFor derives the state topic from the stored identity fields.
func stateTopicFor(e *Entity) (string, bool) {
	kind := model.Kind(e.Component)
	if !kind.HasState() {
		return "", false
	}
	return model.EntityTopic(kind, e.NodeID, e.ObjectID, model.SuffixState), true
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntity(row scanner) (*Entity, error) {
	var (
		e           Entity
		document    string
		announcedAt string
	)
	err := row.Scan(&e.ConfigTopic, &e.UniqueID, &e.Component, &e.NodeID, &e.ObjectID,
		&document, &announcedAt, &e.AnnounceCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning entity: %w", err)
	}
	e.Document = json.RawMessage(document)
	if e.AnnouncedAt, err = time.Parse(time.RFC3339Nano, announcedAt); err != nil {
		return nil, fmt.Errorf("parsing announced_at: %w", err)
	}
	return &e, nil
}
