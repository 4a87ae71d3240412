package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// BucketBuilds is the KV bucket holding build records.
const BucketBuilds = "ADDONSMITH_BUILDS"

// BuildRecord describes the last successful build of one behavior file.
type BuildRecord struct {
	Path       string         `json:"path"`
	SourceHash string         `json:"source_hash"`
	OutputHash string         `json:"output_hash"`
	Identifier string         `json:"identifier,omitempty"`
	Expanded   map[string]int `json:"expanded,omitempty"`
	BuiltAt    time.Time      `json:"built_at"`
}

// RecordStore keeps build records in NATS KV so unchanged files can be
// skipped across runs and machines sharing a server.
type RecordStore struct {
	kv jetstream.KeyValue
}

// NewRecordStore opens the builds bucket, creating it if it doesn't exist.
func NewRecordStore(ctx context.Context, js jetstream.JetStream) (*RecordStore, error) {
	kv, err := js.KeyValue(ctx, BucketBuilds)
	if err != nil {
		kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:      BucketBuilds,
			Description: "addonsmith build records",
			History:     5,
		})
		if err != nil {
			return nil, fmt.Errorf("create builds bucket: %w", err)
		}
	}
	return &RecordStore{kv: kv}, nil
}

// Get returns the record for path, or ErrNotFound.
func (s *RecordStore) Get(ctx context.Context, path string) (*BuildRecord, error) {
	entry, err := s.kv.Get(ctx, RecordKey(path))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get build record: %w", err)
	}

	var rec BuildRecord
	if err := json.Unmarshal(entry.Value(), &rec); err != nil {
		return nil, fmt.Errorf("unmarshal build record: %w", err)
	}
	return &rec, nil
}

// Put stores rec, stamping BuiltAt when unset.
func (s *RecordStore) Put(ctx context.Context, rec *BuildRecord) error {
	if rec.BuiltAt.IsZero() {
		rec.BuiltAt = time.Now()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal build record: %w", err)
	}
	if _, err := s.kv.Put(ctx, RecordKey(rec.Path), data); err != nil {
		return fmt.Errorf("store build record: %w", err)
	}
	return nil
}

// Delete removes the record for path.
func (s *RecordStore) Delete(ctx context.Context, path string) error {
	if err := s.kv.Delete(ctx, RecordKey(path)); err != nil && !isNotFound(err) {
		return fmt.Errorf("delete build record: %w", err)
	}
	return nil
}

// RecordKey maps a file path to a KV-safe key.
func RecordKey(path string) string {
	sum := sha256.Sum256([]byte(filepath.ToSlash(filepath.Clean(path))))
	return hex.EncodeToString(sum[:16])
}

func isNotFound(err error) bool {
	return errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted)
}
