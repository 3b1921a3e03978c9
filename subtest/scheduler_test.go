package subtest_test

import (
	"testing"

	"github.com/castline/subject/subtest"
	"github.com/stretchr/testify/require"
)

func TestScheduler_runsActionsInTimestampOrder(t *testing.T) {
	t.Parallel()

	sched := subtest.NewScheduler()
	var order []int

	sched.ScheduleAbsolute(30, func() { order = append(order, 30) })
	sched.ScheduleAbsolute(10, func() { order = append(order, 10) })
	sched.ScheduleAbsolute(20, func() { order = append(order, 20) })

	sched.AdvanceTo(100)

	require.Equal(t, []int{10, 20, 30}, order)
	require.Equal(t, subtest.Timestamp(100), sched.Now())
}

func TestScheduler_sameTimestampRunsInScheduleOrder(t *testing.T) {
	t.Parallel()

	sched := subtest.NewScheduler()
	var order []string

	sched.ScheduleAbsolute(10, func() { order = append(order, "first") })
	sched.ScheduleAbsolute(10, func() { order = append(order, "second") })

	sched.AdvanceTo(10)

	require.Equal(t, []string{"first", "second"}, order)
}

func TestScheduler_actionsCanScheduleFollowUpWork(t *testing.T) {
	t.Parallel()

	sched := subtest.NewScheduler()
	var order []int

	sched.ScheduleAbsolute(10, func() {
		order = append(order, 10)
		sched.ScheduleAbsolute(15, func() { order = append(order, 15) })
	})

	sched.AdvanceTo(20)

	require.Equal(t, []int{10, 15}, order)
}

func TestScheduler_advanceToStopsAtHorizon(t *testing.T) {
	t.Parallel()

	sched := subtest.NewScheduler()
	var ran bool

	sched.ScheduleAbsolute(50, func() { ran = true })

	sched.AdvanceTo(49)
	require.False(t, ran)
	require.Equal(t, subtest.Timestamp(49), sched.Now())

	sched.AdvanceTo(50)
	require.True(t, ran)
}

func TestRecorder_timestampsEveryNotification(t *testing.T) {
	t.Parallel()

	sched := subtest.NewScheduler()
	rec := subtest.NewRecorder[int](sched)

	sched.ScheduleAbsolute(210, func() { rec.OnNext(2) })
	sched.ScheduleAbsolute(220, func() { rec.OnNext(3) })
	sched.ScheduleAbsolute(250, func() { rec.OnCompleted() })

	sched.AdvanceTo(1000)

	require.Equal(t, []subtest.Record[int]{
		{At: 210, Kind: subtest.KindNext, Val: 2},
		{At: 220, Kind: subtest.KindNext, Val: 3},
		{At: 250, Kind: subtest.KindCompleted},
	}, rec.Messages())
}
