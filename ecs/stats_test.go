package ecs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageStatsSnapshot(t *testing.T) {
	registry := NewComponentRegistry()
	RegisterComponent[int](registry)
	RegisterComponent[string](registry)
	RegisterComponent[float64](registry)

	storage := NewStorage(registry)

	stats := storage.CollectStats()
	assert.Equal(t, 0, stats.ArchetypeCount)
	assert.Equal(t, 0, stats.TotalEntityCount)
	assert.Equal(t, 0, stats.SingletonCount)

	storage.Spawn(42, "hello")
	storage.Spawn(100, "world")
	storage.Spawn(200.0, "test")

	NewSingleton(storage, 3.14)
	NewSingleton(storage, "singleton")

	stats = storage.CollectStats()
	assert.Equal(t, 2, stats.ArchetypeCount)
	assert.Equal(t, 3, stats.TotalEntityCount)
	assert.Equal(t, 2, stats.SingletonCount)
	require.Len(t, stats.ArchetypeBreakdown, 2)
	assert.Equal(t, []string{"float64", "string"}, stats.SingletonTypes)

	counts := []int{stats.ArchetypeBreakdown[0].EntityCount, stats.ArchetypeBreakdown[1].EntityCount}
	assert.ElementsMatch(t, []int{2, 1}, counts)
}

type sleepySystem struct {
	executeCount int
	sleepDur     time.Duration
}

func (s *sleepySystem) Execute(frame *UpdateFrame) {
	s.executeCount++
	if s.sleepDur > 0 {
		time.Sleep(s.sleepDur)
	}
}

func TestSchedulerStatsAccumulate(t *testing.T) {
	storage := NewStorage(NewComponentRegistry())
	scheduler := NewScheduler(storage)

	stats := scheduler.GetStats()
	assert.Equal(t, 0, stats.SystemCount)
	assert.Equal(t, int64(0), stats.TotalExecutions)

	sys1 := &sleepySystem{sleepDur: time.Millisecond}
	sys2 := &sleepySystem{sleepDur: 2 * time.Millisecond}
	scheduler.Register(sys1)
	scheduler.Register(sys2)

	scheduler.Once(0.016)
	scheduler.Once(0.016)
	scheduler.Once(0.016)

	stats = scheduler.GetStats()
	assert.Equal(t, 2, stats.SystemCount)
	assert.Equal(t, int64(6), stats.TotalExecutions)
	require.Len(t, stats.Systems, 2)

	for _, sysStats := range stats.Systems {
		assert.Equal(t, "sleepySystem", sysStats.Name)
		assert.Equal(t, StageUpdate, sysStats.Stage)
		assert.Equal(t, int64(3), sysStats.ExecutionCount)
		assert.NotZero(t, sysStats.MinDuration)
		assert.NotZero(t, sysStats.LastDuration)
		assert.LessOrEqual(t, sysStats.MinDuration, sysStats.AvgDuration)
		assert.LessOrEqual(t, sysStats.AvgDuration, sysStats.MaxDuration)
		assert.GreaterOrEqual(t, sysStats.TotalDuration, sysStats.MaxDuration)
	}

	assert.Equal(t, 3, sys1.executeCount)
	assert.Equal(t, 3, sys2.executeCount)
}
