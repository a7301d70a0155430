package hsr_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/hakushin"
	"github.com/cory-johannsen/hakushin/hsr"
)

// fullDetailFixture stocks everything one Memory of Chaos rotation needs:
// the stage payload, both scaling tables, and two monster templates.
func fullDetailFixture(fetcher *fakeFetcher) {
	fetcher.responses[endgameURL(hsr.ModeMemoryOfChaos, 3001)] = `{
		"Id": 3001,
		"Level": [
			{
				"Id": 1,
				"Name": "Stage 1",
				"DamageType1": ["Fire"],
				"DamageType2": ["Ice"],
				"EventIDList1": [{"HardLevelGroup": 31, "Level": 90, "EliteGroup": 20, "MonsterList": [
					{"Monster0": 1004010, "Monster1": 10050101, "HPMultiplier": 0.0}
				]}],
				"EventIDList2": [{"HardLevelGroup": 31, "Level": 90, "EliteGroup": 20, "MonsterList": [
					{"Monster0": 1005010, "HPMultiplier": 0.5}
				]}]
			},
			{
				"Id": 2,
				"GroupName": "Memory of Tests",
				"Desc": "Turbulence.",
				"BeginTime": "2024-06-01 04:00:00",
				"EndTime": "2024-07-01 03:59:59",
				"EventIDList1": [{"HardLevelGroup": 31, "Level": 90, "EliteGroup": 20, "MonsterList": []}],
				"EventIDList2": []
			}
		]
	}`
	fetcher.responses[testEliteURL] = `[{"EliteGroup": 20, "HPRatio": 1.2}]`
	fetcher.responses[testHardLevelURL] = `[{"HardLevelGroup": 31, "Level": 90, "HPRatio": 1.1, "StatusResistance": 0.1}]`
	fetcher.responses[monsterURL(1004010)] = `{
		"Id": 1004010,
		"Name": "Trampler",
		"HPBase": 1000,
		"Child": [{"Id": 1004010, "StanceWeakList": ["Ice"]}]
	}`
	fetcher.responses[monsterURL(1005010)] = `{
		"Id": 1005010,
		"Name": "Warp Trotter",
		"HPBase": 2000,
		"Child": [{"Id": 1005010, "StanceWeakList": ["Wind"]}, {"Id": 10050101, "StanceWeakList": ["Quantum"]}]
	}`
}

func TestEndgameFullDetail_SplicesResolvedEnemies(t *testing.T) {
	fetcher := newFakeFetcher()
	fullDetailFixture(fetcher)
	client := newTestClient(t, fetcher)

	full, err := client.EndgameFullDetail(context.Background(), hsr.ModeMemoryOfChaos, 3001)
	require.NoError(t, err)

	assert.Equal(t, "Memory of Tests", full.Name)
	assert.Equal(t, "Turbulence.", full.MemoryTurbulence)
	require.Len(t, full.Stages, 2)

	stage := full.Stages[0]
	assert.Equal(t, []hsr.Element{hsr.ElementFire}, stage.FirstHalfWeaknesses)
	require.Len(t, stage.FirstHalf.Waves, 1)
	enemies := stage.FirstHalf.Waves[0].Enemies
	require.Len(t, enemies, 2)

	// round(1000 * 1.2 * 1.1)
	assert.Equal(t, int64(1004010), enemies[0].ID)
	assert.Equal(t, int64(1320), enemies[0].BaseHP)
	// The phase-variant instance resolves through its truncated template.
	assert.Equal(t, int64(10050101), enemies[1].ID)
	assert.Equal(t, int64(2640), enemies[1].BaseHP)
	assert.Equal(t, []hsr.Element{hsr.ElementQuantum}, enemies[1].Weaknesses)

	second := stage.SecondHalf
	require.NotNil(t, second)
	require.Len(t, second.Waves, 1)
	require.Len(t, second.Waves[0].Enemies, 1)
	// round(2000 * 1.2 * 1.1 * 1.5)
	assert.Equal(t, int64(3960), second.Waves[0].Enemies[0].BaseHP)

	// Both templates fetched exactly once across the whole rotation...
	assert.Equal(t, 1, fetcher.callCount(monsterURL(1005010)))
	// ...and the scaling tables exactly once despite two stages.
	assert.Equal(t, 1, fetcher.callCount(testEliteURL))
	assert.Equal(t, 1, fetcher.callCount(testHardLevelURL))
}

func TestEndgameFullDetail_StageFetchErrorAborts(t *testing.T) {
	fetcher := newFakeFetcher()
	client := newTestClient(t, fetcher)

	_, err := client.EndgameFullDetail(context.Background(), hsr.ModeMemoryOfChaos, 999)
	require.Error(t, err)
	assert.True(t, hakushin.IsNotFound(err))
}

func TestEndgameFullDetail_TableErrorAborts(t *testing.T) {
	fetcher := newFakeFetcher()
	fullDetailFixture(fetcher)
	fetcher.errs[testHardLevelURL] = &hakushin.APIError{Status: 503, URL: testHardLevelURL}
	client := newTestClient(t, fetcher)

	_, err := client.EndgameFullDetail(context.Background(), hsr.ModeMemoryOfChaos, 3001)
	require.Error(t, err)

	var apiErr *hakushin.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 503, apiErr.Status)
}

func TestEndgameFullDetail_InconsistentTablesAbort(t *testing.T) {
	fetcher := newFakeFetcher()
	fullDetailFixture(fetcher)
	fetcher.responses[testEliteURL] = `[{"EliteGroup": 999}]`
	client := newTestClient(t, fetcher)

	_, err := client.EndgameFullDetail(context.Background(), hsr.ModeMemoryOfChaos, 3001)
	require.Error(t, err)
	assert.ErrorIs(t, err, hakushin.ErrInconsistentStage)
}
