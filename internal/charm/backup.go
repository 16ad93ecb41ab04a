// ABOUTME: Cloud backup operations for daily records and baselines.
// ABOUTME: Pushes local store contents to Charm KV and restores them back.
package charm

import (
	"fmt"
	"sort"

	json "github.com/goccy/go-json"

	"github.com/harperreed/morning/internal/models"
	"github.com/harperreed/morning/internal/storage"
)

// Stats describes what the cloud copy currently holds.
type Stats struct {
	Records      int
	OldestDate   string
	NewestDate   string
	HasBaselines bool
	ReadOnly     bool
}

// PushAll mirrors every local daily record plus the baseline set to Charm
// Cloud. Returns the number of records pushed. Writes land in the local
// replica and the closing Sync sends the whole batch up at once.
func (c *Client) PushAll(store *storage.Store) (int, error) {
	records, err := store.LoadHistoricalMetrics(0)
	if err != nil {
		return 0, fmt.Errorf("load records: %w", err)
	}

	pushed := 0
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return pushed, fmt.Errorf("marshal record %s: %w", rec.Date, err)
		}
		if err := c.set(RecordPrefix+rec.Date, data); err != nil {
			return pushed, fmt.Errorf("push record %s: %w", rec.Date, err)
		}
		pushed++
	}

	baselines, err := store.LoadBaselines()
	if err != nil {
		return pushed, fmt.Errorf("load baselines: %w", err)
	}
	// Zero data points means no baselines on disk; leave the cloud copy alone.
	if baselines.DataPoints > 0 {
		data, err := json.Marshal(baselines)
		if err != nil {
			return pushed, fmt.Errorf("marshal baselines: %w", err)
		}
		if err := c.set(BaselinesKey, data); err != nil {
			return pushed, fmt.Errorf("push baselines: %w", err)
		}
	}

	if err := c.Sync(); err != nil {
		return pushed, fmt.Errorf("sync: %w", err)
	}
	return pushed, nil
}

// Pull restores daily records and baselines from Charm Cloud into the local
// store, overwriting files that share a date. Returns the number of records
// restored. Invalid cloud entries are skipped.
func (c *Client) Pull(store *storage.Store) (int, error) {
	// Refresh the local replica first so we restore current cloud state.
	if err := c.Sync(); err != nil {
		return 0, fmt.Errorf("sync: %w", err)
	}

	keys, err := c.keysByPrefix(RecordPrefix)
	if err != nil {
		return 0, fmt.Errorf("list records: %w", err)
	}

	restored := 0
	for _, key := range keys {
		blob, err := c.get(key)
		if err != nil {
			return restored, fmt.Errorf("get %s: %w", key, err)
		}
		rec, err := unmarshalJSON[models.DailyRecord](blob)
		if err != nil || rec.Date == "" {
			continue
		}
		if err := store.SaveDailyMetrics(rec.Date, rec.Summary, rec.DetailedSleep, rec.DetailedWorkouts, false); err != nil {
			return restored, fmt.Errorf("restore record %s: %w", rec.Date, err)
		}
		restored++
	}

	keys, err = c.keysByPrefix(BaselinesKey)
	if err != nil {
		return restored, fmt.Errorf("list baselines: %w", err)
	}
	if len(keys) > 0 {
		blob, err := c.get(BaselinesKey)
		if err != nil {
			return restored, fmt.Errorf("get baselines: %w", err)
		}
		set, err := unmarshalJSON[models.BaselineSet](blob)
		if err != nil {
			return restored, fmt.Errorf("decode baselines: %w", err)
		}
		if err := store.SaveBaselines(set); err != nil {
			return restored, fmt.Errorf("restore baselines: %w", err)
		}
	}

	return restored, nil
}

// Status reports what the cloud copy holds without modifying anything.
func (c *Client) Status() (*Stats, error) {
	keys, err := c.keysByPrefix(RecordPrefix)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	dates := make([]string, 0, len(keys))
	for _, key := range keys {
		dates = append(dates, extractDate(key, RecordPrefix))
	}
	sort.Strings(dates)

	stats := &Stats{
		Records:  len(dates),
		ReadOnly: c.IsReadOnly(),
	}
	if len(dates) > 0 {
		stats.OldestDate = dates[0]
		stats.NewestDate = dates[len(dates)-1]
	}

	baselineKeys, err := c.keysByPrefix(BaselinesKey)
	if err != nil {
		return nil, fmt.Errorf("list baselines: %w", err)
	}
	stats.HasBaselines = len(baselineKeys) > 0

	return stats, nil
}
