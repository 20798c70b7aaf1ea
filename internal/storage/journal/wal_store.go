// Package journal persists closed trades in a write-ahead log so a run's
// trades survive crashes and can be replayed.
package journal

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/indexalgo/weeklyshort/internal/domain"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"
)

const (
	defaultDir     = "./wal/trades"
	segmentLimit   = 1000
	maxSegments    = 100
	tradeKeyPrefix = "trade_"
)

// WALStore appends trades to a gowal log.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.Mutex
}

// NewWALStore initializes the trade WAL in dir.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = defaultDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "log_",
		SegmentThreshold: segmentLimit,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init trade WAL")
	}
	return &WALStore{wal: wal}, nil
}

// Append writes one closed trade keyed by run ID.
func (s *WALStore) Append(runID string, trade domain.Trade) error {
	if s == nil || s.wal == nil {
		return errors.New("trade journal is not initialized")
	}
	if trade.ID == "" {
		return errors.New("trade ID is required")
	}

	payload, err := json.Marshal(trade)
	if err != nil {
		return errors.Wrap(err, "marshal trade")
	}

	key := fmt.Sprintf("%s%s_%s", tradeKeyPrefix, runID, trade.ID)

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, key, payload)
}

// Trades replays all journalled trades for a run, in write order.
func (s *WALStore) Trades(runID string) ([]domain.Trade, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("trade journal is not initialized")
	}

	prefix := fmt.Sprintf("%s%s_", tradeKeyPrefix, runID)

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Trade
	for msg := range s.wal.Iterator() {
		if !strings.HasPrefix(msg.Key, prefix) {
			continue
		}
		var t domain.Trade
		if err := json.Unmarshal(msg.Value, &t); err != nil {
			return nil, errors.Wrapf(err, "unmarshal trade %s", msg.Key)
		}
		out = append(out, t)
	}
	return out, nil
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return nil
	}
	return s.wal.Close()
}
