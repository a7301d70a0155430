package hsr

import (
	"context"
	"encoding/json"
	"fmt"
)

// Mode tags an endgame rotation type. The value is the endpoint path
// segment for that mode's stage-detail resource.
type Mode string

const (
	// ModeMemoryOfChaos is the classic two-half wave gauntlet.
	ModeMemoryOfChaos Mode = "maze"
	// ModePureFiction is the infinite-scaling survival mode.
	ModePureFiction Mode = "story"
	// ModeApocalypticShadow is the boss-rush mode.
	ModeApocalypticShadow Mode = "boss"
)

// Valid reports whether m is a known endgame mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeMemoryOfChaos, ModePureFiction, ModeApocalypticShadow:
		return true
	}
	return false
}

// EndgameWave is an ordered group of enemies appearing together in a half.
// HPMultiplier is an additional per-wave HP boost, layered multiplicatively
// as (1 + HPMultiplier) on top of the group scaling.
type EndgameWave struct {
	EnemyIDs     []int64
	HPMultiplier float64
}

// EndgameHalf is one of up to two independently-scaled wave groups in a
// stage. The scaling references default to 1 when absent from the wire.
type EndgameHalf struct {
	HardLevelGroupID    int64
	HardLevelGroupLevel int64
	EliteGroupID        int64
	Waves               []EndgameWave
}

// EndgameStage is one stage of an endgame rotation. SecondHalf is nil for
// single-half "solo boss" stages.
type EndgameStage struct {
	ID                   int64
	Name                 string
	FirstHalfWeaknesses  []Element
	SecondHalfWeaknesses []Element
	FirstHalf            EndgameHalf
	SecondHalf           *EndgameHalf
}

// EndgameBuff is the fixed global modifier in Apocalyptic Shadow.
type EndgameBuff struct {
	Name string `json:"Name"`
	Desc string `json:"Desc"`
}

// EndgameBuffOption is one selectable buff modifier.
type EndgameBuffOption struct {
	Name   string    `json:"Name"`
	Desc   string    `json:"Desc"`
	Params []float64 `json:"Param"`
}

// EndgameDetail is a decoded endgame rotation: its stages plus the
// mode-specific metadata. Only the fields for the detail's own mode are
// populated.
type EndgameDetail struct {
	Mode      Mode
	ID        int64
	Name      string
	BeginTime string
	EndTime   string

	// MemoryTurbulence is the rotation-wide modifier text (Memory of
	// Chaos only).
	MemoryTurbulence string

	// Buff, BuffList1, and BuffList2 are the Apocalyptic Shadow global
	// buff and the per-half selectable buffs.
	Buff      *EndgameBuff
	BuffList1 []EndgameBuffOption
	BuffList2 []EndgameBuffOption

	// BuffOptions and BuffSuboptions are the two Pure Fiction buff tiers.
	BuffOptions    []EndgameBuffOption
	BuffSuboptions []EndgameBuffOption

	Stages []EndgameStage
}

type endgameDetailRaw struct {
	ID        int64             `json:"Id"`
	Name      string            `json:"Name"`
	BeginTime string            `json:"BeginTime"`
	EndTime   string            `json:"EndTime"`
	Level     []json.RawMessage `json:"Level"`

	Buff      *EndgameBuff        `json:"Buff"`
	BuffList1 []EndgameBuffOption `json:"BuffList1"`
	BuffList2 []EndgameBuffOption `json:"BuffList2"`
	Option    []EndgameBuffOption `json:"Option"`
	SubOption []EndgameBuffOption `json:"SubOption"`
}

type endgameStageRaw struct {
	ID          int64     `json:"Id"`
	Name        string    `json:"Name"`
	GroupName   string    `json:"GroupName"`
	Desc        string    `json:"Desc"`
	BeginTime   string    `json:"BeginTime"`
	EndTime     string    `json:"EndTime"`
	DamageType1 []Element `json:"DamageType1"`
	DamageType2 []Element `json:"DamageType2"`

	// Each event list is a single-element array; an empty second list
	// signals a single-half stage.
	EventIDList1 []endgameHalfRaw `json:"EventIDList1"`
	EventIDList2 []endgameHalfRaw `json:"EventIDList2"`

	// The infinite-wave structures are kept raw so their emission order
	// survives decoding (Pure Fiction only).
	InfiniteList1 json.RawMessage `json:"InfiniteList1"`
	InfiniteList2 json.RawMessage `json:"InfiniteList2"`
}

type endgameHalfRaw struct {
	HardLevelGroup *int64            `json:"HardLevelGroup"`
	Level          *int64            `json:"Level"`
	EliteGroup     *int64            `json:"EliteGroup"`
	MonsterList    []json.RawMessage `json:"MonsterList"`
}

type infiniteWaveRaw struct {
	EliteGroup         *int64    `json:"EliteGroup"`
	MonsterGroupIDList []int64   `json:"MonsterGroupIDList"`
	ParamList          []float64 `json:"ParamList"`
}

// defaultGroupRef is the fallback for scaling-group reference fields
// missing from a half on the wire.
const defaultGroupRef = int64(1)

func groupRef(v *int64) int64 {
	if v == nil {
		return defaultGroupRef
	}
	return *v
}

func decodeHalf(raw endgameHalfRaw) (EndgameHalf, error) {
	half := EndgameHalf{
		HardLevelGroupID:    groupRef(raw.HardLevelGroup),
		HardLevelGroupLevel: groupRef(raw.Level),
		EliteGroupID:        groupRef(raw.EliteGroup),
		Waves:               make([]EndgameWave, 0, len(raw.MonsterList)),
	}
	for _, rawWave := range raw.MonsterList {
		wave, err := decodeWave(rawWave)
		if err != nil {
			return EndgameHalf{}, err
		}
		half.Waves = append(half.Waves, wave)
	}
	return half, nil
}

// decodeInfiniteHalf flattens a Pure Fiction infinite-wave structure into
// the common half shape. Enemy ids within one generated wave are
// deduplicated (set union, first-seen order), the wave's HP multiplier is
// the second parameter (default 0 when the list is too short), and the
// half's elite group comes from the first wave.
func decodeInfiniteHalf(raw endgameHalfRaw, infinite json.RawMessage) (EndgameHalf, error) {
	half := EndgameHalf{
		HardLevelGroupID:    groupRef(raw.HardLevelGroup),
		HardLevelGroupLevel: groupRef(raw.Level),
		EliteGroupID:        groupRef(raw.EliteGroup),
	}
	if len(infinite) == 0 {
		return half, nil
	}

	fields, err := orderedFields(infinite)
	if err != nil {
		return EndgameHalf{}, fmt.Errorf("scanning infinite wave list: %w", err)
	}

	for i, f := range fields {
		var wave infiniteWaveRaw
		if err := json.Unmarshal(f.value, &wave); err != nil {
			return EndgameHalf{}, fmt.Errorf("parsing infinite wave %q: %w", f.key, err)
		}
		if i == 0 && wave.EliteGroup != nil {
			half.EliteGroupID = *wave.EliteGroup
		}

		seen := make(map[int64]struct{}, len(wave.MonsterGroupIDList))
		var ids []int64
		for _, id := range wave.MonsterGroupIDList {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}

		var hpMultiplier float64
		if len(wave.ParamList) > 1 {
			hpMultiplier = wave.ParamList[1]
		}
		half.Waves = append(half.Waves, EndgameWave{EnemyIDs: ids, HPMultiplier: hpMultiplier})
	}
	return half, nil
}

func decodeStage(mode Mode, raw json.RawMessage) (EndgameStage, error) {
	var sr endgameStageRaw
	if err := json.Unmarshal(raw, &sr); err != nil {
		return EndgameStage{}, fmt.Errorf("parsing stage: %w", err)
	}

	stage := EndgameStage{
		ID:                   sr.ID,
		Name:                 sr.Name,
		FirstHalfWeaknesses:  sr.DamageType1,
		SecondHalfWeaknesses: sr.DamageType2,
	}

	if len(sr.EventIDList1) == 0 {
		return EndgameStage{}, fmt.Errorf("stage %d has no first half", sr.ID)
	}

	var err error
	if mode == ModePureFiction {
		stage.FirstHalf, err = decodeInfiniteHalf(sr.EventIDList1[0], sr.InfiniteList1)
	} else {
		stage.FirstHalf, err = decodeHalf(sr.EventIDList1[0])
	}
	if err != nil {
		return EndgameStage{}, fmt.Errorf("decoding stage %d first half: %w", sr.ID, err)
	}

	if len(sr.EventIDList2) > 0 {
		var second EndgameHalf
		if mode == ModePureFiction {
			second, err = decodeInfiniteHalf(sr.EventIDList2[0], sr.InfiniteList2)
		} else {
			second, err = decodeHalf(sr.EventIDList2[0])
		}
		if err != nil {
			return EndgameStage{}, fmt.Errorf("decoding stage %d second half: %w", sr.ID, err)
		}
		stage.SecondHalf = &second
	}

	return stage, nil
}

// decodeEndgameDetail parses a raw stage-detail payload for the given
// mode, applying the mode's wire-format quirks before the common stage
// decode.
func decodeEndgameDetail(mode Mode, body []byte) (*EndgameDetail, error) {
	var dr endgameDetailRaw
	if err := json.Unmarshal(body, &dr); err != nil {
		return nil, fmt.Errorf("parsing endgame detail: %w", err)
	}

	detail := &EndgameDetail{
		Mode:      mode,
		ID:        dr.ID,
		Name:      dr.Name,
		BeginTime: dr.BeginTime,
		EndTime:   dr.EndTime,
	}

	switch mode {
	case ModeApocalypticShadow:
		detail.Buff = dr.Buff
		detail.BuffList1 = dr.BuffList1
		detail.BuffList2 = dr.BuffList2
	case ModePureFiction:
		detail.BuffOptions = dr.Option
		detail.BuffSuboptions = dr.SubOption
	case ModeMemoryOfChaos:
		// The rotation name, turbulence text, and time window are not
		// top-level; they ride on a stage entry and are lifted out here
		// before per-stage decoding runs.
		if len(dr.Level) > 0 {
			lifted := dr.Level[0]
			if len(dr.Level) > 1 {
				lifted = dr.Level[1]
			}
			var sr endgameStageRaw
			if err := json.Unmarshal(lifted, &sr); err != nil {
				return nil, fmt.Errorf("parsing chaos rotation metadata: %w", err)
			}
			detail.Name = sr.GroupName
			detail.MemoryTurbulence = sr.Desc
			detail.BeginTime = sr.BeginTime
			detail.EndTime = sr.EndTime
		}
	}

	detail.Stages = make([]EndgameStage, 0, len(dr.Level))
	for _, rawStage := range dr.Level {
		stage, err := decodeStage(mode, rawStage)
		if err != nil {
			return nil, err
		}
		detail.Stages = append(detail.Stages, stage)
	}
	return detail, nil
}

// EndgameDetail fetches and decodes the stage detail for one endgame
// rotation. Enemy waves hold raw instance ids; use EndgameFullDetail for
// resolved stats.
func (c *Client) EndgameDetail(ctx context.Context, mode Mode, endgameID int64, opts ...FetchOption) (*EndgameDetail, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("unknown endgame mode %q", mode)
	}
	s := applyFetchOptions(opts)

	url := c.dataURL(fmt.Sprintf("%s/%d", mode, endgameID))
	body, err := c.fetcher.FetchJSON(ctx, url, !s.bypassCache)
	if err != nil {
		return nil, fmt.Errorf("fetching %s detail %d: %w", mode, endgameID, err)
	}
	return decodeEndgameDetail(mode, body)
}
