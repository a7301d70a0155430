package hsr

import (
	"context"
	"encoding/json"
	"fmt"
)

// DamageTypeResistance is one elemental damage resistance on a child
// monster.
type DamageTypeResistance struct {
	Element Element `json:"DamageType"`
	Value   float64 `json:"Value"`
}

// EnemySkill is one ability on a child monster. Name and description
// default to empty strings; DamageType is empty for typeless skills.
type EnemySkill struct {
	ID         int64   `json:"Id"`
	Name       string  `json:"SkillName"`
	Desc       string  `json:"SkillDesc"`
	DamageType Element `json:"DamageType"`
}

// ChildMonster is one concrete instance flavor of a monster template. Its
// id is the fully-specified instance id, distinct from the parent catalog
// id. Modify ratios default to the multiplicative identity 1.0.
type ChildMonster struct {
	ID                 int64
	AttackModifyRatio  float64
	DefenceModifyRatio float64
	HPModifyRatio      float64
	SpeedModifyRatio   float64
	SpeedModifyValue   *float64
	StanceModifyValue  float64
	StanceWeakList     []Element
	DamageResistances  []DamageTypeResistance
	Skills             []EnemySkill
}

// MonsterDetail is the base-stat record for a monster template, shared by
// all of its child variants. Base stats default to 0 when absent or null
// in the source. The Children list is exhaustive for every instance id
// that can reference this template.
type MonsterDetail struct {
	ID                   int64   `json:"Id"`
	Rank                 string  `json:"Rank"`
	Name                 string  `json:"Name"`
	Desc                 string  `json:"Desc"`
	AttackBase           float64 `json:"AttackBase"`
	DefenceBase          float64 `json:"DefenceBase"`
	HPBase               float64 `json:"HPBase"`
	SpeedBase            float64 `json:"SpeedBase"`
	StanceBase           float64 `json:"StanceBase"`
	StatusResistanceBase float64 `json:"StatusResistanceBase"`

	Children []ChildMonster `json:"-"`
}

// Icon returns the monster's figure icon URL.
func (m *MonsterDetail) Icon() string {
	return fmt.Sprintf("%s/hsr/UI/monsterfigure/Monster_%d.webp", DefaultBaseURL, m.ID)
}

// Child returns the child variant with the given instance id, or nil when
// no variant matches.
func (m *MonsterDetail) Child(instanceID int64) *ChildMonster {
	for i := range m.Children {
		if m.Children[i].ID == instanceID {
			return &m.Children[i]
		}
	}
	return nil
}

type childMonsterRaw struct {
	ID                 int64                  `json:"Id"`
	AttackModifyRatio  float64                `json:"AttackModifyRatio"`
	DefenceModifyRatio float64                `json:"DefenceModifyRatio"`
	HPModifyRatio      float64                `json:"HPModifyRatio"`
	SpeedModifyRatio   float64                `json:"SpeedModifyRatio"`
	SpeedModifyValue   *float64               `json:"SpeedModifyValue"`
	StanceModifyRatio  float64                `json:"StanceModifyRatio"`
	StanceWeakList     []Element              `json:"StanceWeakList"`
	DamageTypeRes      []DamageTypeResistance `json:"DamageTypeResistance"`
	SkillList          []EnemySkill           `json:"SkillList"`
}

func decodeMonsterDetail(body []byte) (*MonsterDetail, error) {
	var detail MonsterDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, fmt.Errorf("parsing monster detail: %w", err)
	}

	var wrapper struct {
		Child []json.RawMessage `json:"Child"`
	}
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, fmt.Errorf("parsing monster child list: %w", err)
	}

	detail.Children = make([]ChildMonster, 0, len(wrapper.Child))
	for _, rawChild := range wrapper.Child {
		// Pre-fill the multiplicative identities; absent and null fields
		// both leave them in place.
		row := childMonsterRaw{
			AttackModifyRatio:  1,
			DefenceModifyRatio: 1,
			HPModifyRatio:      1,
			SpeedModifyRatio:   1,
			StanceModifyRatio:  1,
		}
		if err := json.Unmarshal(rawChild, &row); err != nil {
			return nil, fmt.Errorf("parsing monster child: %w", err)
		}
		detail.Children = append(detail.Children, ChildMonster{
			ID:                 row.ID,
			AttackModifyRatio:  row.AttackModifyRatio,
			DefenceModifyRatio: row.DefenceModifyRatio,
			HPModifyRatio:      row.HPModifyRatio,
			SpeedModifyRatio:   row.SpeedModifyRatio,
			SpeedModifyValue:   row.SpeedModifyValue,
			StanceModifyValue:  row.StanceModifyRatio,
			StanceWeakList:     row.StanceWeakList,
			DamageResistances:  row.DamageTypeRes,
			Skills:             row.SkillList,
		})
	}
	return &detail, nil
}

// MonsterDetail fetches one enemy catalog entry by its template id. Each
// distinct id is one network fetch; deduplication across a stage belongs
// to ResolveStage.
func (c *Client) MonsterDetail(ctx context.Context, monsterID int64, opts ...FetchOption) (*MonsterDetail, error) {
	s := applyFetchOptions(opts)

	url := c.dataURL(fmt.Sprintf("monster/%d", monsterID))
	body, err := c.fetcher.FetchJSON(ctx, url, !s.bypassCache)
	if err != nil {
		return nil, fmt.Errorf("fetching monster %d: %w", monsterID, err)
	}
	return decodeMonsterDetail(body)
}
