// Package store persists a visitor's answers in a durable per-category slot.
//
// Records carry no schema version: a stored answer set is judged against the
// current catalog by the controller, so the store only has to tell well-formed
// records from garbage.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"provider-funnel/internal/common/logger"
	"provider-funnel/internal/common/validation"
	"provider-funnel/internal/models"
)

var ErrSlotEmpty = errors.New("SLOT_EMPTY")

// SlotKey addresses one category's answers for one visitor session.
type SlotKey struct {
	SessionID string
	Category  string
}

func (k SlotKey) String() string {
	return fmt.Sprintf("funnel:%s:%s", k.SessionID, k.Category)
}

// Slot is a raw key/value backend for serialized records.
type Slot interface {
	Load(ctx context.Context, key SlotKey) ([]byte, error)
	Save(ctx context.Context, key SlotKey, data []byte) error
	Clear(ctx context.Context, key SlotKey) error
}

// Record is the serialized shape kept in a slot.
type Record struct {
	Category string           `json:"category"`
	Answers  models.AnswerSet `json:"answers"`
	SavedAt  time.Time        `json:"savedAt"`
}

const recordSchema = `{
	"type": "object",
	"required": ["category", "answers"],
	"properties": {
		"category": {"type": "string", "minLength": 1},
		"answers": {
			"type": "object",
			"additionalProperties": {"type": "string", "minLength": 1}
		},
		"savedAt": {"type": "string"}
	}
}`

var schema = validation.MustCompile(recordSchema)

// Store encodes answer sets into records and back.
type Store struct {
	slot   Slot
	logger logger.Logger
	now    func() time.Time
}

func New(slot Slot, log logger.Logger) *Store {
	return &Store{
		slot:   slot,
		logger: log.WithFields(map[string]interface{}{"component": "answer-store"}),
		now:    time.Now,
	}
}

// Load returns the stored answers and true, or false when the slot is empty,
// unreadable or holds a malformed record.
func (s *Store) Load(ctx context.Context, key SlotKey) (models.AnswerSet, bool) {
	data, err := s.slot.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrSlotEmpty) {
			s.logger.Warn("answer slot read failed", map[string]interface{}{
				"slot":  key.String(),
				"error": err,
			})
		}
		return nil, false
	}

	rec, err := Decode(data)
	if err != nil {
		s.logger.Info("discarding malformed answer record", map[string]interface{}{
			"slot":  key.String(),
			"error": err,
		})
		return nil, false
	}
	if rec.Category != key.Category {
		s.logger.Info("discarding answer record for another category", map[string]interface{}{
			"slot":     key.String(),
			"recorded": rec.Category,
		})
		return nil, false
	}
	if rec.Answers == nil {
		rec.Answers = models.AnswerSet{}
	}
	return rec.Answers, true
}

// Save writes answers to the slot, replacing whatever was there.
func (s *Store) Save(ctx context.Context, key SlotKey, answers models.AnswerSet) error {
	data, err := json.Marshal(Record{
		Category: key.Category,
		Answers:  answers.Clone(),
		SavedAt:  s.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode answer record: %w", err)
	}
	if err := s.slot.Save(ctx, key, data); err != nil {
		return fmt.Errorf("save answer slot %s: %w", key, err)
	}
	return nil
}

// Clear empties the slot.
func (s *Store) Clear(ctx context.Context, key SlotKey) error {
	if err := s.slot.Clear(ctx, key); err != nil {
		return fmt.Errorf("clear answer slot %s: %w", key, err)
	}
	return nil
}

// Decode validates data against the record schema and unmarshals it.
func Decode(data []byte) (*Record, error) {
	if err := schema.Check(data); err != nil {
		return nil, fmt.Errorf("answer record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &rec, nil
}
