package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStayMinutes(t *testing.T) {
	at := func(s string) *string { return &s }

	d, ok := stayMinutes("19:00", at("20:45"))
	assert.True(t, ok)
	assert.Equal(t, 105, d)

	d, ok = stayMinutes("23:00", at("01:00"))
	assert.True(t, ok)
	assert.Equal(t, 120, d)

	_, ok = stayMinutes("19:00", at("19:00"))
	assert.False(t, ok)
	_, ok = stayMinutes("19:00", nil)
	assert.False(t, ok)
}

func TestBuildReport(t *testing.T) {
	env := newTestEnv(t)
	first := env.today()

	env.book(t, 302, first, "12:00", 3)
	released := env.book(t, 101, first, "17:00", 4)
	_, err := env.reservations.Release(env.ctx, released.ID)
	require.NoError(t, err)

	env.advance(1)
	_, err = env.sweeper.ExpireStale(env.ctx)
	require.NoError(t, err)

	env.book(t, 102, env.today(), "19:00", 2)
	env.book(t, 301, env.dayOffset(1), "19:00", 6)

	report, err := env.reports.Build(env.ctx, first, env.dayOffset(1))
	require.NoError(t, err)

	require.Len(t, report.Rows, 4)
	assert.Equal(t, RowExpired, report.Rows[0].Status)
	assert.Equal(t, 302, report.Rows[0].TableNumber)
	assert.Nil(t, report.Rows[0].ReleaseTime)
	assert.Equal(t, RowReleased, report.Rows[1].Status)
	require.NotNil(t, report.Rows[1].ReleaseTime)
	assert.Equal(t, "18:00", *report.Rows[1].ReleaseTime)
	assert.Equal(t, RowActive, report.Rows[2].Status)
	assert.Equal(t, 102, report.Rows[2].TableNumber)
	assert.Equal(t, 301, report.Rows[3].TableNumber)

	assert.Equal(t, 4, report.TotalReservations)
	assert.Equal(t, 15, report.TotalGuests)
	assert.Equal(t, 2, report.Completed)
	assert.InDelta(t, 50, report.CompletionRate(), 0.001)
	assert.InDelta(t, 3.75, report.AverageGuests, 0.001)
	// 17:00 -> 18:00 released, 12:00 -> 18:00 swept
	assert.Equal(t, 2, report.StaySamples)
	assert.InDelta(t, 210, report.AverageStayMinutes, 0.001)
	assert.Equal(t, "19:00", report.PopularSlot)
	assert.Equal(t, 2, report.PopularSlotCount)

	assert.Equal(t, []AreaSummary{
		{Area: "garden", Reservations: 2, Guests: 9},
		{Area: "interior", Reservations: 2, Guests: 6},
	}, report.Areas)

	narrow, err := env.reports.Build(env.ctx, env.today(), env.today())
	require.NoError(t, err)
	require.Len(t, narrow.Rows, 1)
	assert.Equal(t, "Juan Pérez", narrow.Rows[0].Requester)
}

func TestBuildReportEmptyAndInvalid(t *testing.T) {
	env := newTestEnv(t)

	report, err := env.reports.Build(env.ctx, env.today(), env.today())
	require.NoError(t, err)
	assert.Empty(t, report.Rows)
	assert.NotNil(t, report.Areas)
	assert.Zero(t, report.AverageGuests)
	assert.Empty(t, report.PopularSlot)

	_, err = env.reports.Build(env.ctx, env.dayOffset(1), env.today())
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.reports.Build(env.ctx, "", env.today())
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAverageStayCountsSweptEntries(t *testing.T) {
	env := newTestEnv(t)
	first := env.today()

	released := env.book(t, 101, first, "17:00", 2)
	_, err := env.reservations.Release(env.ctx, released.ID)
	require.NoError(t, err)
	env.book(t, 102, first, "19:00", 2)

	env.advance(1)
	expired, err := env.sweeper.ExpireStale(env.ctx)
	require.NoError(t, err)
	require.Equal(t, 1, expired)

	report, err := env.reports.Build(env.ctx, first, first)
	require.NoError(t, err)
	require.Len(t, report.Rows, 2)
	assert.Equal(t, RowReleased, report.Rows[0].Status)
	assert.Equal(t, RowExpired, report.Rows[1].Status)
	assert.Nil(t, report.Rows[1].ReleaseTime)

	// 60 minutes for the release, 19:00 -> 18:00 the next day for the sweep
	assert.Equal(t, 2, report.StaySamples)
	assert.InDelta(t, (60+1380)/2.0, report.AverageStayMinutes, 0.001)
}

func TestPopularSlotTieGoesToFirstSeen(t *testing.T) {
	env := newTestEnv(t)

	env.book(t, 101, env.dayOffset(1), "19:00", 2)
	env.book(t, 101, env.dayOffset(2), "13:00", 2)
	env.book(t, 102, env.dayOffset(3), "13:00", 2)
	env.book(t, 101, env.dayOffset(3), "19:00", 2)

	report, err := env.reports.Build(env.ctx, env.dayOffset(1), env.dayOffset(3))
	require.NoError(t, err)
	require.Len(t, report.Rows, 4)
	assert.Equal(t, "19:00", report.PopularSlot)
	assert.Equal(t, 2, report.PopularSlotCount)
}
