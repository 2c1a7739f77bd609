package localstore

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"go.etcd.io/bbolt"

	"github.com/danateck/eco-file-system/internal/domain/entities"
	"github.com/danateck/eco-file-system/internal/domain/repositories"
)

var (
	bucketFiles       = []byte("files")
	bucketSnapshots   = []byte("snapshots")
	bucketUserRecords = []byte("userrecords")
	bucketUsers       = []byte("users")
)

// BoltStore is the local persistent key-value store: file bytes by document
// id (data-URL encoded), last-known document snapshots per user, and the
// offline fallback user records.
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketFiles, bucketSnapshots, bucketUserRecords, bucketUsers} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init local store buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// EncodeDataURL wraps raw bytes the way the cache stores them.
func EncodeDataURL(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL is the inverse of EncodeDataURL.
func DecodeDataURL(dataURL string) (mimeType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data URL")
	}
	mimeType = strings.TrimSuffix(meta, ";base64")
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode data URL payload: %w", err)
	}
	return mimeType, data, nil
}

func (s *BoltStore) PutFile(_ context.Context, id, mimeType string, data []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketFiles).Put([]byte(id), []byte(EncodeDataURL(mimeType, data)))
	})
}

func (s *BoltStore) GetFile(_ context.Context, id string) (string, []byte, bool, error) {
	var raw []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucketFiles).Get([]byte(id)); v != nil {
			raw = make([]byte, len(v))
			copy(raw, v)
		}
		return nil
	})
	if err != nil {
		return "", nil, false, err
	}
	if raw == nil {
		return "", nil, false, nil
	}
	mimeType, data, err := DecodeDataURL(string(raw))
	if err != nil {
		return "", nil, false, err
	}
	return mimeType, data, true, nil
}

// DeleteFile is idempotent: deleting a missing id is a no-op.
func (s *BoltStore) DeleteFile(_ context.Context, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketFiles).Delete([]byte(id))
	})
}

func (s *BoltStore) SaveSnapshot(_ context.Context, email string, docs []*entities.Document) error {
	data, err := json.Marshal(docs)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSnapshots).Put([]byte(email), data)
	})
}

func (s *BoltStore) LoadSnapshot(_ context.Context, email string) ([]*entities.Document, error) {
	var raw []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucketSnapshots).Get([]byte(email)); v != nil {
			raw = make([]byte, len(v))
			copy(raw, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	var docs []*entities.Document
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *BoltStore) LoadUserRecord(_ context.Context, email string) (*entities.UserRecord, error) {
	var raw []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucketUserRecords).Get([]byte(email)); v != nil {
			raw = make([]byte, len(v))
			copy(raw, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return &entities.UserRecord{
			Email:         email,
			SharedFolders: map[string]entities.SharedFolder{},
		}, nil
	}
	var rec entities.UserRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	if rec.SharedFolders == nil {
		rec.SharedFolders = map[string]entities.SharedFolder{}
	}
	return &rec, nil
}

func (s *BoltStore) SaveUserRecord(_ context.Context, rec *entities.UserRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketUserRecords).Put([]byte(rec.Email), data)
	})
}

var _ repositories.FileCache = (*BoltStore)(nil)
