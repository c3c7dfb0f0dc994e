// Package ledgerlog persists sync outcomes between runs on behalf of the
// host. The sync core never reads it: each refresh rebuilds its state from
// the exchange, and only the since boundary flows back in through the
// caller.
package ledgerlog

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"eurledger/internal/domain"
)

const (
	segmentThreshold = 1000
	maxSegments      = 100
	entryKeyPrefix   = "sync_"
)

// Entry is one persisted sync outcome: the boundary to resume from and the
// ledger produced by that refresh.
type Entry struct {
	BoundaryMs int64             `json:"boundaryMs"`
	Result     domain.SyncResult `json:"result"`
}

// Store is a WAL-backed log of sync entries.
type Store struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

func New(dir string) (*Store, error) {
	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "ledger_",
		SegmentThreshold: segmentThreshold,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init ledger WAL")
	}
	return &Store{wal: wal}, nil
}

// Save appends one sync outcome.
func (s *Store) Save(entry Entry) error {
	if s == nil || s.wal == nil {
		return errors.New("ledger store is not initialized")
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "marshal ledger entry")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, entryKeyPrefix+"entry", payload)
}

// Last returns the most recent sync outcome, or ok=false for a fresh log.
func (s *Store) Last() (Entry, bool, error) {
	if s == nil || s.wal == nil {
		return Entry{}, false, errors.New("ledger store is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		last  Entry
		found bool
	)
	for msg := range s.wal.Iterator() {
		if !strings.HasPrefix(msg.Key, entryKeyPrefix) {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(msg.Value, &entry); err != nil {
			return Entry{}, false, errors.Wrap(err, "decode ledger entry")
		}
		last = entry
		found = true
	}
	return last, found, nil
}

// Close closes the underlying WAL.
func (s *Store) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("ledger store is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
