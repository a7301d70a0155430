package hsr

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Ratio is a scaling multiplier that arrives on the wire either as a bare
// number or wrapped as {"Value": n}. Null leaves the current value alone,
// so wire structs can pre-fill field defaults.
type Ratio float64

// UnmarshalJSON accepts both wire encodings.
func (r *Ratio) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '{' {
		var wrapped struct {
			Value float64 `json:"Value"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return fmt.Errorf("parsing wrapped ratio: %w", err)
		}
		*r = Ratio(wrapped.Value)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parsing ratio: %w", err)
	}
	*r = Ratio(f)
	return nil
}

// EliteGroup is the scaling-ratio bundle applied to elite-tier enemies,
// keyed by a single group id. Every ratio is multiplicative and applies
// uniformly regardless of which enemy it scales; 1.0 is the identity.
type EliteGroup struct {
	ID           int64
	AttackRatio  float64
	DefenceRatio float64
	HPRatio      float64
	SpeedRatio   float64
	StanceRatio  float64
}

// GroupKey identifies one HardLevelGroup row: the (group, level) pair.
type GroupKey struct {
	ID    int64
	Level int64
}

// HardLevelGroup is the per-(group, level) scaling bundle used for
// boss-tier enemies. Alongside the multiplicative ratios it carries an
// additive status-resistance term (default 0).
type HardLevelGroup struct {
	ID               int64
	Level            int64
	AttackRatio      float64
	DefenceRatio     float64
	HPRatio          float64
	SpeedRatio       float64
	StanceRatio      float64
	StatusResistance float64
}

type eliteGroupRow struct {
	ID           *int64 `json:"EliteGroup"`
	AttackRatio  Ratio  `json:"AttackRatio"`
	DefenceRatio Ratio  `json:"DefenceRatio"`
	HPRatio      Ratio  `json:"HPRatio"`
	SpeedRatio   Ratio  `json:"SpeedRatio"`
	StanceRatio  Ratio  `json:"StanceRatio"`
}

type hardLevelGroupRow struct {
	ID               *int64 `json:"HardLevelGroup"`
	Level            *int64 `json:"Level"`
	AttackRatio      Ratio  `json:"AttackRatio"`
	DefenceRatio     Ratio  `json:"DefenceRatio"`
	HPRatio          Ratio  `json:"HPRatio"`
	SpeedRatio       Ratio  `json:"SpeedRatio"`
	StanceRatio      Ratio  `json:"StanceRatio"`
	StatusResistance Ratio  `json:"StatusResistance"`
}

// parseEliteGroups indexes the bulk table by group id, skipping rows that
// lack the key field.
func parseEliteGroups(body []byte) (map[int64]EliteGroup, error) {
	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("parsing elite group table: %w", err)
	}

	groups := make(map[int64]EliteGroup, len(rows))
	for _, raw := range rows {
		row := eliteGroupRow{AttackRatio: 1, DefenceRatio: 1, HPRatio: 1, SpeedRatio: 1, StanceRatio: 1}
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, fmt.Errorf("parsing elite group row: %w", err)
		}
		if row.ID == nil {
			continue
		}
		groups[*row.ID] = EliteGroup{
			ID:           *row.ID,
			AttackRatio:  float64(row.AttackRatio),
			DefenceRatio: float64(row.DefenceRatio),
			HPRatio:      float64(row.HPRatio),
			SpeedRatio:   float64(row.SpeedRatio),
			StanceRatio:  float64(row.StanceRatio),
		}
	}
	return groups, nil
}

// parseHardLevelGroups indexes the bulk table by (group, level), skipping
// rows that lack either key field.
func parseHardLevelGroups(body []byte) (map[GroupKey]HardLevelGroup, error) {
	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("parsing hard level group table: %w", err)
	}

	groups := make(map[GroupKey]HardLevelGroup, len(rows))
	for _, raw := range rows {
		row := hardLevelGroupRow{AttackRatio: 1, DefenceRatio: 1, HPRatio: 1, SpeedRatio: 1, StanceRatio: 1}
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, fmt.Errorf("parsing hard level group row: %w", err)
		}
		if row.ID == nil || row.Level == nil {
			continue
		}
		groups[GroupKey{ID: *row.ID, Level: *row.Level}] = HardLevelGroup{
			ID:               *row.ID,
			Level:            *row.Level,
			AttackRatio:      float64(row.AttackRatio),
			DefenceRatio:     float64(row.DefenceRatio),
			HPRatio:          float64(row.HPRatio),
			SpeedRatio:       float64(row.SpeedRatio),
			StanceRatio:      float64(row.StanceRatio),
			StatusResistance: float64(row.StatusResistance),
		}
	}
	return groups, nil
}

// groupCache memoizes the two scaling tables with populate-then-freeze
// discipline: the maps are built once under the lock and never mutated
// afterwards, so callers may read the returned maps without coordination
// (but must not write to them).
type groupCache struct {
	mu    sync.Mutex
	elite map[int64]EliteGroup
	hard  map[GroupKey]HardLevelGroup
}

// EliteGroups returns the elite-group table keyed by group id. The first
// successful fetch is memoized for the life of the client; BypassCache
// forces a re-fetch and re-memoization.
func (c *Client) EliteGroups(ctx context.Context, opts ...FetchOption) (map[int64]EliteGroup, error) {
	s := applyFetchOptions(opts)

	c.groups.mu.Lock()
	defer c.groups.mu.Unlock()

	if c.groups.elite != nil && !s.bypassCache {
		return c.groups.elite, nil
	}

	body, err := c.fetcher.FetchJSON(ctx, c.eliteGroupURL, !s.bypassCache)
	if err != nil {
		return nil, fmt.Errorf("fetching elite group table: %w", err)
	}
	groups, err := parseEliteGroups(body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("elite group table populated", zap.Int("rows", len(groups)))
	c.groups.elite = groups
	return groups, nil
}

// HardLevelGroups returns the hard-level-group table keyed by (group,
// level). Memoization behaves as in EliteGroups.
func (c *Client) HardLevelGroups(ctx context.Context, opts ...FetchOption) (map[GroupKey]HardLevelGroup, error) {
	s := applyFetchOptions(opts)

	c.groups.mu.Lock()
	defer c.groups.mu.Unlock()

	if c.groups.hard != nil && !s.bypassCache {
		return c.groups.hard, nil
	}

	body, err := c.fetcher.FetchJSON(ctx, c.hardLevelGroupURL, !s.bypassCache)
	if err != nil {
		return nil, fmt.Errorf("fetching hard level group table: %w", err)
	}
	groups, err := parseHardLevelGroups(body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("hard level group table populated", zap.Int("rows", len(groups)))
	c.groups.hard = groups
	return groups, nil
}
