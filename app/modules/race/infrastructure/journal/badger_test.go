package racejournal

import (
	"testing"

	raceservice "github.com/Black-And-White-Club/race-tally/app/modules/race/application"
	racedomain "github.com/Black-And-White-Club/race-tally/app/modules/race/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgerJournalRoundTrip(t *testing.T) {
	j, err := Open("")
	require.NoError(t, err)
	defer j.Close()

	driver := racedomain.Driver{ID: uuid.New(), Number: 12, Name: "Ann", LastName: "Lee"}
	lr := racedomain.LiveRace{
		Race:    racedomain.Race{ID: uuid.New(), Title: "Heat"},
		Drivers: []racedomain.Driver{driver},
	}
	lr, err = lr.Tick(15)
	require.NoError(t, err)
	lr, err = lr.RecordCrossing(driver.ID, true)
	require.NoError(t, err)

	snap := raceservice.SessionSnapshot{SessionID: "2Dk9", Version: 2, State: lr}
	require.NoError(t, j.Save(snap))

	loaded, err := j.Load("2Dk9")
	require.NoError(t, err)
	if diff := cmp.Diff(snap.State.Circles, loaded.State.Circles); diff != "" {
		t.Errorf("circles changed through the journal (-want +got):\n%s", diff)
	}
	assert.Equal(t, snap.Version, loaded.Version)
	assert.Equal(t, lr.Race.ID, loaded.State.Race.ID)
	assert.Equal(t, []int64{12}, loaded.State.Race.FinishOrder)
	assert.Equal(t, int64(15), loaded.State.Elapsed)

	require.NoError(t, j.Save(raceservice.SessionSnapshot{SessionID: "2Dka", State: lr}))
	all, err := j.List()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, j.Delete("2Dk9"))
	require.NoError(t, j.Delete("missing"))
	all, err = j.List()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "2Dka", all[0].SessionID)

	_, err = j.Load("2Dk9")
	assert.Error(t, err)
}
