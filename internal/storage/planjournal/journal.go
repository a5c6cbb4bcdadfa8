// Package planjournal persists tactical plans in a WAL so the dashboard can
// stream them and history survives restarts.
package planjournal

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"github.com/caisyy0514/sentinel/internal/domain"
)

const (
	defaultDir       = "data/journal"
	dirPermissions   = 0o755
	segmentThreshold = 1000
	maxSegments      = 10
	planKeyPrefix    = "plan_"
	maxRetainedInMem = segmentThreshold * maxSegments
)

// Journal is a WAL-backed append-only store of tactical plans. Replayed
// records are kept in memory so readers never touch segment files.
type Journal struct {
	wal     *gowal.Wal
	mu      sync.RWMutex
	records []domain.PlanRecord
}

// Open initializes the journal under dir, replaying any retained plans.
func Open(dir string) (*Journal, error) {
	if dir == "" {
		dir = defaultDir
	}
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, errors.Wrapf(err, "failed to ensure journal directory %s", dir)
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "journal_",
		SegmentThreshold: segmentThreshold,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init plan journal WAL")
	}

	j := &Journal{wal: wal}
	if err := j.replay(); err != nil {
		_ = wal.Close()
		return nil, err
	}

	return j, nil
}

// replay loads retained WAL entries into memory. Every write uses
// CurrentIndex()+1, so retained indices are contiguous and end at
// CurrentIndex.
func (j *Journal) replay() error {
	var (
		keys     []string
		payloads [][]byte
	)
	for msg := range j.wal.Iterator() {
		keys = append(keys, msg.Key)
		payloads = append(payloads, msg.Value)
	}
	if len(keys) == 0 {
		return nil
	}

	base := j.wal.CurrentIndex() + 1 - uint64(len(keys))
	j.records = make([]domain.PlanRecord, 0, len(keys))
	for i, key := range keys {
		if !strings.HasPrefix(key, planKeyPrefix) {
			continue
		}
		var plan domain.TacticalPlan
		if err := json.Unmarshal(payloads[i], &plan); err != nil {
			return errors.Wrapf(err, "decode journaled plan %s", key)
		}
		j.records = append(j.records, domain.PlanRecord{
			Index: base + uint64(i),
			Plan:  plan,
		})
	}

	return nil
}

// Save appends the plan to the journal.
func (j *Journal) Save(plan domain.TacticalPlan) error {
	if j == nil || j.wal == nil {
		return errors.New("plan journal is not initialized")
	}
	if plan.Symbol == "" {
		return errors.New("plan symbol is required")
	}

	payload, err := json.Marshal(plan)
	if err != nil {
		return errors.Wrap(err, "marshal plan")
	}

	key := fmt.Sprintf("%s%s", planKeyPrefix, plan.Symbol)

	j.mu.Lock()
	defer j.mu.Unlock()

	nextIndex := j.wal.CurrentIndex() + 1
	if err := j.wal.Write(nextIndex, key, payload); err != nil {
		return errors.Wrap(err, "append plan to journal")
	}

	j.records = append(j.records, domain.PlanRecord{Index: nextIndex, Plan: plan})
	if len(j.records) > maxRetainedInMem {
		trimmed := make([]domain.PlanRecord, maxRetainedInMem)
		copy(trimmed, j.records[len(j.records)-maxRetainedInMem:])
		j.records = trimmed
	}

	return nil
}

// EventsAfter returns all plans journaled after the provided index.
func (j *Journal) EventsAfter(index uint64) ([]domain.PlanRecord, error) {
	if j == nil || j.wal == nil {
		return nil, errors.New("plan journal is not initialized")
	}

	j.mu.RLock()
	defer j.mu.RUnlock()

	records := make([]domain.PlanRecord, 0)
	for _, rec := range j.records {
		if rec.Index > index {
			records = append(records, rec)
		}
	}

	return records, nil
}

// CurrentIndex returns the latest journal index stored.
func (j *Journal) CurrentIndex() uint64 {
	if j == nil || j.wal == nil {
		return 0
	}

	j.mu.RLock()
	defer j.mu.RUnlock()

	return j.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (j *Journal) Close() error {
	if j == nil || j.wal == nil {
		return errors.New("plan journal is not initialized")
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	return j.wal.Close()
}
