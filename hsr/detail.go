package hsr

import (
	"context"
	"fmt"
)

// EndgameFullDetail is an EndgameDetail whose stages carry resolved enemy
// stat records in place of raw instance ids. The shape is otherwise
// identical to the plain detail.
type EndgameFullDetail struct {
	Mode      Mode
	ID        int64
	Name      string
	BeginTime string
	EndTime   string

	MemoryTurbulence string

	Buff      *EndgameBuff
	BuffList1 []EndgameBuffOption
	BuffList2 []EndgameBuffOption

	BuffOptions    []EndgameBuffOption
	BuffSuboptions []EndgameBuffOption

	Stages []ResolvedStage
}

// EndgameFullDetail fetches the stage detail for one endgame rotation and
// resolves every enemy instance into its effective combat stats: the
// scaling tables are loaded (from the memoized copies unless bypassed),
// each stage is resolved, and the resolved waves are spliced back into
// the detail structure.
//
// Any failure along the way aborts the whole call; no partial detail is
// ever returned.
func (c *Client) EndgameFullDetail(ctx context.Context, mode Mode, endgameID int64, opts ...FetchOption) (*EndgameFullDetail, error) {
	detail, err := c.EndgameDetail(ctx, mode, endgameID, opts...)
	if err != nil {
		return nil, err
	}

	eliteGroups, err := c.EliteGroups(ctx, opts...)
	if err != nil {
		return nil, err
	}
	hardLevelGroups, err := c.HardLevelGroups(ctx, opts...)
	if err != nil {
		return nil, err
	}

	full := &EndgameFullDetail{
		Mode:             detail.Mode,
		ID:               detail.ID,
		Name:             detail.Name,
		BeginTime:        detail.BeginTime,
		EndTime:          detail.EndTime,
		MemoryTurbulence: detail.MemoryTurbulence,
		Buff:             detail.Buff,
		BuffList1:        detail.BuffList1,
		BuffList2:        detail.BuffList2,
		BuffOptions:      detail.BuffOptions,
		BuffSuboptions:   detail.BuffSuboptions,
		Stages:           make([]ResolvedStage, 0, len(detail.Stages)),
	}

	for i := range detail.Stages {
		resolved, err := c.ResolveStage(ctx, &detail.Stages[i], eliteGroups, hardLevelGroups, opts...)
		if err != nil {
			return nil, fmt.Errorf("resolving %s %d: %w", mode, endgameID, err)
		}
		full.Stages = append(full.Stages, *resolved)
	}
	return full, nil
}
