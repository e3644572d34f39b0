package storage

import (
	"context"
	"fmt"
	"interaction-lab/domain"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// OffloadPrefix is the key space of continuation records, also used by the debug inspector.
const OffloadPrefix = "offload:"

// OffloadRepository persists the lifecycle of offloaded continuations.
// Keys are "offload:<started_at_nanos>:<id>" so that a scan returns records oldest first,
// and every status change of a continuation overwrites the same key.
type OffloadRepository struct {
	db        *badger.DB
	log       *slog.Logger
	retention time.Duration
}

// NewOffloadRepository keeps records for retention. Zero keeps them forever.
func NewOffloadRepository(db *badger.DB, log *slog.Logger, retention time.Duration) *OffloadRepository {
	return &OffloadRepository{
		db:        db,
		log:       log,
		retention: retention,
	}
}

// Record stores the latest known state of a continuation.
func (r *OffloadRepository) Record(_ context.Context, record domain.OffloadRecord) error {
	p, err := toPbOffload(record)
	if err != nil {
		return fmt.Errorf("failed to convert offload record: %w", err)
	}
	data, err := proto.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal offload record: %w", err)
	}

	entry := badger.NewEntry(offloadKey(record), data)
	if r.retention > 0 {
		entry = entry.WithTTL(r.retention)
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(entry)
	})
}

// List returns at most limit records, oldest first. A limit of zero or less means no limit.
func (r *OffloadRepository) List(limit int) ([]domain.OffloadRecord, error) {
	var records []domain.OffloadRecord
	prefix := []byte(OffloadPrefix)

	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(records) >= limit {
				break
			}
			err := it.Item().Value(func(v []byte) error {
				record, err := DecodeOffload(v)
				if err != nil {
					return err
				}
				records = append(records, record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error during offload scan: %w", err)
	}
	return records, nil
}

// Pending returns the continuations that never reached a terminal status,
// typically because the process stopped while they were running.
func (r *OffloadRepository) Pending() ([]domain.OffloadRecord, error) {
	records, err := r.List(0)
	if err != nil {
		return nil, err
	}
	var pending []domain.OffloadRecord
	for _, record := range records {
		if !record.Terminal() {
			pending = append(pending, record)
		}
	}
	return pending, nil
}

// Abandon marks every pending record as abandoned. It runs at start-up: a continuation
// of a previous process can no longer complete. It returns how many were updated.
func (r *OffloadRepository) Abandon(ctx context.Context, reason string) (int, error) {
	pending, err := r.Pending()
	if err != nil {
		return 0, err
	}
	for _, record := range pending {
		record.Status = domain.OffloadAbandoned
		record.Error = reason
		record.EndedAt = time.Now().UTC()
		if err := r.Record(ctx, record); err != nil {
			return 0, err
		}
	}
	if len(pending) > 0 {
		r.log.Warn("Abandoned continuations of a previous run", "count", len(pending))
	}
	return len(pending), nil
}

func offloadKey(record domain.OffloadRecord) []byte {
	return []byte(fmt.Sprintf("%s%019d:%s", OffloadPrefix, record.StartedAt.UnixNano(), record.ID))
}

// DecodeOffload reads a stored record back.
func DecodeOffload(data []byte) (domain.OffloadRecord, error) {
	var p structpb.Struct
	if err := proto.Unmarshal(data, &p); err != nil {
		return domain.OffloadRecord{}, fmt.Errorf("failed to unmarshal offload record: %w", err)
	}
	return fromPbOffload(&p)
}

func toPbOffload(record domain.OffloadRecord) (*structpb.Struct, error) {
	fields := map[string]any{
		"id":             record.ID,
		"interaction_id": record.InteractionID,
		"prefix":         record.Prefix,
		"status":         string(record.Status),
		"error":          record.Error,
		"started_at":     formatTime(record.StartedAt),
		"ended_at":       formatTime(record.EndedAt),
	}
	return structpb.NewStruct(fields)
}

func fromPbOffload(p *structpb.Struct) (domain.OffloadRecord, error) {
	str := func(name string) string {
		return p.GetFields()[name].GetStringValue()
	}
	startedAt, err := parseTime(str("started_at"))
	if err != nil {
		return domain.OffloadRecord{}, err
	}
	endedAt, err := parseTime(str("ended_at"))
	if err != nil {
		return domain.OffloadRecord{}, err
	}
	return domain.OffloadRecord{
		ID:            str("id"),
		InteractionID: str("interaction_id"),
		Prefix:        str("prefix"),
		Status:        domain.OffloadStatus(str("status")),
		Error:         str("error"),
		StartedAt:     startedAt,
		EndedAt:       endedAt,
	}, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid offload timestamp %q: %w", s, err)
	}
	return t, nil
}
