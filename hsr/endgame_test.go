package hsr_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/hakushin/hsr"
)

func TestEndgameDetail_UnknownMode(t *testing.T) {
	client := newTestClient(t, newFakeFetcher())
	_, err := client.EndgameDetail(context.Background(), hsr.Mode("arcade"), 1)
	require.Error(t, err)
}

func TestEndgameDetail_MemoryOfChaos_LiftsRotationMetadata(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.responses[endgameURL(hsr.ModeMemoryOfChaos, 3001)] = `{
		"Id": 3001,
		"Level": [
			{
				"Id": 1,
				"Name": "Stage 1",
				"DamageType1": ["Fire"],
				"DamageType2": ["Ice"],
				"EventIDList1": [{"HardLevelGroup": 31, "Level": 90, "EliteGroup": 20, "MonsterList": [
					{"Monster0": 1004010, "HPMultiplier": 0.1}
				]}],
				"EventIDList2": [{"HardLevelGroup": 31, "Level": 90, "EliteGroup": 20, "MonsterList": []}]
			},
			{
				"Id": 2,
				"Name": "Stage 2",
				"GroupName": "Memory of Swarms",
				"Desc": "All enemies gain stuff.",
				"BeginTime": "2024-06-01 04:00:00",
				"EndTime": "2024-07-01 03:59:59",
				"EventIDList1": [{"HardLevelGroup": 31, "Level": 92, "EliteGroup": 20, "MonsterList": []}],
				"EventIDList2": []
			}
		]
	}`
	client := newTestClient(t, fetcher)

	detail, err := client.EndgameDetail(context.Background(), hsr.ModeMemoryOfChaos, 3001)
	require.NoError(t, err)

	assert.Equal(t, "Memory of Swarms", detail.Name)
	assert.Equal(t, "All enemies gain stuff.", detail.MemoryTurbulence)
	assert.Equal(t, "2024-06-01 04:00:00", detail.BeginTime)
	assert.Equal(t, "2024-07-01 03:59:59", detail.EndTime)
	require.Len(t, detail.Stages, 2)

	first := detail.Stages[0]
	assert.Equal(t, []hsr.Element{hsr.ElementFire}, first.FirstHalfWeaknesses)
	require.NotNil(t, first.SecondHalf)
	require.Len(t, first.FirstHalf.Waves, 1)
	assert.Equal(t, []int64{1004010}, first.FirstHalf.Waves[0].EnemyIDs)
	assert.Equal(t, 0.1, first.FirstHalf.Waves[0].HPMultiplier)
}

func TestEndgameDetail_EmptySecondEventListMeansSoloStage(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.responses[endgameURL(hsr.ModeApocalypticShadow, 4001)] = `{
		"Id": 4001,
		"Name": "Shadow of Something",
		"Buff": {"Name": "Global", "Desc": "Applies to all."},
		"BuffList1": [{"Name": "A", "Desc": "a", "Param": [0.5]}],
		"BuffList2": [{"Name": "B", "Desc": "b", "Param": [0.3]}],
		"Level": [
			{
				"Id": 1,
				"Name": "Boss Stage",
				"EventIDList1": [{"HardLevelGroup": 32, "Level": 88, "EliteGroup": 21, "MonsterList": [
					{"Monster0": 8013010, "HPMultiplier": null}
				]}],
				"EventIDList2": []
			}
		]
	}`
	client := newTestClient(t, fetcher)

	detail, err := client.EndgameDetail(context.Background(), hsr.ModeApocalypticShadow, 4001)
	require.NoError(t, err)

	require.NotNil(t, detail.Buff)
	assert.Equal(t, "Global", detail.Buff.Name)
	require.Len(t, detail.BuffList1, 1)
	require.Len(t, detail.Stages, 1)

	stage := detail.Stages[0]
	assert.Nil(t, stage.SecondHalf)
	require.Len(t, stage.FirstHalf.Waves, 1)
	assert.Equal(t, 0.0, stage.FirstHalf.Waves[0].HPMultiplier)
}

func TestEndgameDetail_MissingGroupRefsDefaultToOne(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.responses[endgameURL(hsr.ModeApocalypticShadow, 4002)] = `{
		"Id": 4002,
		"Level": [
			{
				"Id": 1,
				"EventIDList1": [{"MonsterList": []}],
				"EventIDList2": []
			}
		]
	}`
	client := newTestClient(t, fetcher)

	detail, err := client.EndgameDetail(context.Background(), hsr.ModeApocalypticShadow, 4002)
	require.NoError(t, err)

	half := detail.Stages[0].FirstHalf
	assert.Equal(t, int64(1), half.HardLevelGroupID)
	assert.Equal(t, int64(1), half.HardLevelGroupLevel)
	assert.Equal(t, int64(1), half.EliteGroupID)
}

func TestEndgameDetail_WaveMonsterKeysKeepEmissionOrder(t *testing.T) {
	// Keys out of ordinal order, a gap in the ordinals, and a non-integer
	// Monster-prefixed value to be skipped.
	fetcher := newFakeFetcher()
	fetcher.responses[endgameURL(hsr.ModeApocalypticShadow, 4003)] = `{
		"Id": 4003,
		"Level": [
			{
				"Id": 1,
				"EventIDList1": [{"HardLevelGroup": 1, "Level": 1, "EliteGroup": 1, "MonsterList": [
					{"Monster5": 111, "Monster0": 222, "Monster9": 333, "MonsterNote": "skip", "HPMultiplier": 0.0}
				]}],
				"EventIDList2": []
			}
		]
	}`
	client := newTestClient(t, fetcher)

	detail, err := client.EndgameDetail(context.Background(), hsr.ModeApocalypticShadow, 4003)
	require.NoError(t, err)

	wave := detail.Stages[0].FirstHalf.Waves[0]
	assert.Equal(t, []int64{111, 222, 333}, wave.EnemyIDs)
}

func TestEndgameDetail_PureFiction_FlattensInfiniteWaves(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.responses[endgameURL(hsr.ModePureFiction, 5001)] = `{
		"Id": 5001,
		"Name": "Fictional",
		"Option": [{"Name": "Opt", "Desc": "o", "Param": [1.0]}],
		"SubOption": [{"Name": "Sub", "Desc": "s", "Param": [2.0]}],
		"Level": [
			{
				"Id": 1,
				"EventIDList1": [{"HardLevelGroup": 31, "Level": 90, "EliteGroup": 1}],
				"EventIDList2": [{"HardLevelGroup": 31, "Level": 90, "EliteGroup": 1}],
				"InfiniteList1": {
					"1": {"EliteGroup": 25, "MonsterGroupIDList": [1004010, 1004010, 1005010], "ParamList": [1.0, 0.5]},
					"2": {"EliteGroup": 26, "MonsterGroupIDList": [1005010], "ParamList": [1.0]}
				},
				"InfiniteList2": {
					"1": {"EliteGroup": 27, "MonsterGroupIDList": [1006010], "ParamList": [1.0, 0.25]}
				}
			}
		]
	}`
	client := newTestClient(t, fetcher)

	detail, err := client.EndgameDetail(context.Background(), hsr.ModePureFiction, 5001)
	require.NoError(t, err)

	require.Len(t, detail.BuffOptions, 1)
	require.Len(t, detail.BuffSuboptions, 1)
	require.Len(t, detail.Stages, 1)

	first := detail.Stages[0].FirstHalf
	// The half's elite group comes from the first flattened wave.
	assert.Equal(t, int64(25), first.EliteGroupID)
	require.Len(t, first.Waves, 2)

	// Duplicated ids collapse, first-seen order kept.
	assert.Equal(t, []int64{1004010, 1005010}, first.Waves[0].EnemyIDs)
	assert.Equal(t, 0.5, first.Waves[0].HPMultiplier)

	// A short ParamList defaults the multiplier to 0.
	assert.Equal(t, []int64{1005010}, first.Waves[1].EnemyIDs)
	assert.Equal(t, 0.0, first.Waves[1].HPMultiplier)

	second := detail.Stages[0].SecondHalf
	require.NotNil(t, second)
	assert.Equal(t, int64(27), second.EliteGroupID)
	require.Len(t, second.Waves, 1)
	assert.Equal(t, 0.25, second.Waves[0].HPMultiplier)
}
