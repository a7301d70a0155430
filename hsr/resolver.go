package hsr

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/hakushin"
)

// maxDirectInstanceID is the largest enemy instance id that is itself a
// catalog id. Longer ids carry a phase/variant suffix; their catalog id is
// the first seven digits.
const maxDirectInstanceID = 9_999_999

// CatalogID maps an enemy instance id to the monster template id to
// fetch. The truncation is positional on the decimal digits, not modular
// arithmetic.
func CatalogID(instanceID int64) int64 {
	if instanceID <= maxDirectInstanceID {
		return instanceID
	}
	s := strconv.FormatInt(instanceID, 10)
	id, err := strconv.ParseInt(s[:7], 10, 64)
	if err != nil {
		// Unreachable: the first seven digits of a positive decimal
		// rendering always parse.
		return instanceID
	}
	return id
}

// ResolvedEnemy is the final computed combat-stat record for one enemy
// instance in one wave. Speed, Toughness, and EffectRes are nil when the
// catalog entry has no corresponding base stat.
type ResolvedEnemy struct {
	ID         int64
	Name       string
	Weaknesses []Element
	Level      int64
	BaseHP     int64
	Speed      *int64
	Toughness  *int64
	EffectRes  *float64
}

// ResolvedWave mirrors EndgameWave with resolved stat records in place of
// raw instance ids.
type ResolvedWave struct {
	Enemies      []ResolvedEnemy
	HPMultiplier float64
}

// ResolvedHalf mirrors EndgameHalf after stat resolution.
type ResolvedHalf struct {
	HardLevelGroupID    int64
	HardLevelGroupLevel int64
	EliteGroupID        int64
	Waves               []ResolvedWave
}

// ResolvedStage mirrors EndgameStage after stat resolution.
type ResolvedStage struct {
	ID                   int64
	Name                 string
	FirstHalfWeaknesses  []Element
	SecondHalfWeaknesses []Element
	FirstHalf            ResolvedHalf
	SecondHalf           *ResolvedHalf
}

// stanceDivisor converts the raw stance value to the displayed toughness
// scale. Fixed by the game formula.
const stanceDivisor = 3

// ResolveStage computes effective combat stats for every enemy instance
// in every wave of the stage, against the supplied scaling tables.
//
// Catalog entries are fetched once per distinct template id across both
// halves, concurrently; the batch completes in full before any stat math
// runs, and any single failed fetch fails the whole resolution. A half
// referencing a group key absent from the tables is a hard error wrapping
// hakushin.ErrInconsistentStage. Instances with no matching child variant
// are dropped from the output (logged at debug), never raised.
//
// Postcondition: output preserves the stage's half/wave nesting and the
// id order within each wave, minus dropped instances.
func (c *Client) ResolveStage(
	ctx context.Context,
	stage *EndgameStage,
	eliteGroups map[int64]EliteGroup,
	hardLevelGroups map[GroupKey]HardLevelGroup,
	opts ...FetchOption,
) (*ResolvedStage, error) {
	catalog, err := c.fetchStageCatalog(ctx, stage, opts)
	if err != nil {
		return nil, err
	}

	resolved := &ResolvedStage{
		ID:                   stage.ID,
		Name:                 stage.Name,
		FirstHalfWeaknesses:  stage.FirstHalfWeaknesses,
		SecondHalfWeaknesses: stage.SecondHalfWeaknesses,
	}

	resolved.FirstHalf, err = c.resolveHalf(&stage.FirstHalf, eliteGroups, hardLevelGroups, catalog)
	if err != nil {
		return nil, fmt.Errorf("resolving stage %d first half: %w", stage.ID, err)
	}
	if stage.SecondHalf != nil {
		second, err := c.resolveHalf(stage.SecondHalf, eliteGroups, hardLevelGroups, catalog)
		if err != nil {
			return nil, fmt.Errorf("resolving stage %d second half: %w", stage.ID, err)
		}
		resolved.SecondHalf = &second
	}
	return resolved, nil
}

// fetchStageCatalog collects the distinct catalog ids referenced anywhere
// in the stage and fetches each entry exactly once. The wait is a barrier:
// stat computation never overlaps the fetches.
func (c *Client) fetchStageCatalog(ctx context.Context, stage *EndgameStage, opts []FetchOption) (map[int64]*MonsterDetail, error) {
	seen := make(map[int64]struct{})
	var ids []int64
	collect := func(half *EndgameHalf) {
		for _, wave := range half.Waves {
			for _, instanceID := range wave.EnemyIDs {
				id := CatalogID(instanceID)
				if _, ok := seen[id]; ok {
					continue
				}
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	collect(&stage.FirstHalf)
	if stage.SecondHalf != nil {
		collect(stage.SecondHalf)
	}

	entries := make([]*MonsterDetail, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			detail, err := c.MonsterDetail(gctx, id, opts...)
			if err != nil {
				return err
			}
			entries[i] = detail
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	catalog := make(map[int64]*MonsterDetail, len(entries))
	for _, entry := range entries {
		catalog[entry.ID] = entry
	}
	return catalog, nil
}

func (c *Client) resolveHalf(
	half *EndgameHalf,
	eliteGroups map[int64]EliteGroup,
	hardLevelGroups map[GroupKey]HardLevelGroup,
	catalog map[int64]*MonsterDetail,
) (ResolvedHalf, error) {
	elite, ok := eliteGroups[half.EliteGroupID]
	if !ok {
		return ResolvedHalf{}, fmt.Errorf("elite group %d: %w",
			half.EliteGroupID, hakushin.ErrInconsistentStage)
	}
	key := GroupKey{ID: half.HardLevelGroupID, Level: half.HardLevelGroupLevel}
	hard, ok := hardLevelGroups[key]
	if !ok {
		return ResolvedHalf{}, fmt.Errorf("hard level group %d level %d: %w",
			key.ID, key.Level, hakushin.ErrInconsistentStage)
	}

	out := ResolvedHalf{
		HardLevelGroupID:    half.HardLevelGroupID,
		HardLevelGroupLevel: half.HardLevelGroupLevel,
		EliteGroupID:        half.EliteGroupID,
		Waves:               make([]ResolvedWave, 0, len(half.Waves)),
	}
	for _, wave := range half.Waves {
		rw := ResolvedWave{
			Enemies:      make([]ResolvedEnemy, 0, len(wave.EnemyIDs)),
			HPMultiplier: wave.HPMultiplier,
		}
		for _, instanceID := range wave.EnemyIDs {
			entry := catalog[CatalogID(instanceID)]
			enemy, ok := resolveEnemy(instanceID, entry, elite, hard, wave.HPMultiplier)
			if !ok {
				// Sparse placeholder ids in the source data; expected.
				c.logger.Debug("dropping enemy instance with no matching variant",
					zap.Int64("instance_id", instanceID),
					zap.Int64("catalog_id", CatalogID(instanceID)))
				continue
			}
			rw.Enemies = append(rw.Enemies, enemy)
		}
		out.Waves = append(out.Waves, rw)
	}
	return out, nil
}

// resolveEnemy applies the scaling formula to one enemy instance. Returns
// ok false when the catalog entry has no child variant for the instance.
func resolveEnemy(
	instanceID int64,
	entry *MonsterDetail,
	elite EliteGroup,
	hard HardLevelGroup,
	hpMultiplier float64,
) (ResolvedEnemy, bool) {
	if entry == nil {
		return ResolvedEnemy{}, false
	}
	variant := entry.Child(instanceID)
	if variant == nil {
		return ResolvedEnemy{}, false
	}

	enemy := ResolvedEnemy{
		ID:         instanceID,
		Name:       entry.Name,
		Weaknesses: variant.StanceWeakList,
		Level:      hard.Level,
		BaseHP: roundToInt(entry.HPBase * variant.HPModifyRatio *
			elite.HPRatio * hard.HPRatio * (1 + hpMultiplier)),
	}

	if entry.SpeedBase != 0 {
		speed := roundToInt(entry.SpeedBase * variant.SpeedModifyRatio *
			elite.SpeedRatio * hard.SpeedRatio)
		enemy.Speed = &speed
	}
	if entry.StanceBase != 0 {
		toughness := roundToInt(entry.StanceBase * variant.StanceModifyValue *
			elite.StanceRatio * hard.StanceRatio / stanceDivisor)
		enemy.Toughness = &toughness
	}
	if entry.StatusResistanceBase != 0 {
		// Intentionally narrower than the other stats: no elite-group
		// ratio and no wave HP multiplier apply here.
		effectRes := entry.StatusResistanceBase + hard.StatusResistance
		enemy.EffectRes = &effectRes
	}
	return enemy, true
}

func roundToInt(v float64) int64 {
	return int64(math.Round(v))
}
