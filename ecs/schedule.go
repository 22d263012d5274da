package ecs

import (
	"context"
	"reflect"
	"sync"
	"time"
)

// Stage is a named group of systems. Stages run strictly in order with a
// command flush between them; systems inside a stage may run in parallel
// when their access sets do not conflict.
type Stage int

const (
	// StageStartup runs exactly once, before the first frame's stages.
	StageStartup Stage = iota
	// StageFirst runs at the top of every frame, right after event queues
	// rotate.
	StageFirst
	StagePreUpdate
	StageUpdate
	StagePostUpdate
	StageLast
	// StageRender is not part of Once; the window runner executes it
	// separately during draw.
	StageRender

	stageCount
)

var stageNames = [stageCount]string{
	"startup", "first", "pre_update", "update", "post_update", "last", "render",
}

func (s Stage) String() string {
	if s < 0 || s >= stageCount {
		return "unknown"
	}
	return stageNames[s]
}

// onceStages are the stages executed by a single Once call, in order.
var onceStages = []Stage{StageFirst, StagePreUpdate, StageUpdate, StagePostUpdate, StageLast}

// SchedulerStats summarizes system execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats holds execution statistics for a single system.
type SystemStats struct {
	Name           string
	Stage          Stage
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type scheduledSystem struct {
	system   System
	name     string
	stage    Stage
	fields   []systemField
	access   *accessSet
	commands *Commands

	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

func (s *scheduledSystem) record(d time.Duration) {
	s.executionCount++
	s.lastDuration = d
	s.totalDuration += d
	if d < s.minDuration {
		s.minDuration = d
	}
	if d > s.maxDuration {
		s.maxDuration = d
	}
}

// Scheduler orders and executes systems across stages. Within a stage,
// systems are partitioned into batches by their declared access sets; a
// batch runs its systems concurrently. Command buffers are flushed only at
// stage boundaries, never while systems run.
type Scheduler struct {
	storage *Storage

	stages  [stageCount][]*scheduledSystem
	batches [stageCount][][]*scheduledSystem
	dirty   [stageCount]bool

	startupDone bool
}

// NewScheduler creates a scheduler for the given storage.
func NewScheduler(storage *Storage) *Scheduler {
	return &Scheduler{storage: storage}
}

// Storage returns the storage the scheduler drives.
func (s *Scheduler) Storage() *Storage {
	return s.storage
}

// Register adds a system to the Update stage.
func (s *Scheduler) Register(system System) {
	s.RegisterAt(StageUpdate, system)
}

// RegisterAt adds a system to the given stage, binding its Query, Singleton
// and event fields and deriving its access set.
func (s *Scheduler) RegisterAt(stage Stage, system System) {
	if stage < 0 || stage >= stageCount {
		panic("ecs: invalid stage")
	}

	access, fields := s.bind(system)
	if accessor, ok := system.(Accessor); ok {
		access.demote(accessor.ReadOnly())
	}

	systemType := reflect.TypeOf(system)
	if systemType.Kind() == reflect.Ptr {
		systemType = systemType.Elem()
	}

	s.stages[stage] = append(s.stages[stage], &scheduledSystem{
		system:      system,
		name:        systemType.Name(),
		stage:       stage,
		fields:      fields,
		access:      access,
		commands:    NewCommands(),
		minDuration: time.Duration(1<<63 - 1),
	})
	s.dirty[stage] = true
}

// bind walks the system struct, initializes every bindable field against the
// storage and accumulates the system's access set.
func (s *Scheduler) bind(system System) (*accessSet, []systemField) {
	access := newAccessSet()
	var fields []systemField

	systemValue := reflect.ValueOf(system)
	if systemValue.Kind() == reflect.Ptr {
		systemValue = systemValue.Elem()
	}
	if systemValue.Kind() != reflect.Struct {
		return access, nil
	}

	for i := 0; i < systemValue.NumField(); i++ {
		fieldValue := systemValue.Field(i)
		if !fieldValue.CanSet() || fieldValue.Kind() != reflect.Struct {
			continue
		}
		field, ok := fieldValue.Addr().Interface().(systemField)
		if !ok {
			continue
		}
		field.Init(s.storage)
		access.add(field.access())
		fields = append(fields, field)
	}

	return access, fields
}

// rebuildBatches partitions a stage's systems into parallel batches. Each
// system lands in the earliest batch after every earlier system it conflicts
// with, so conflicting systems keep their registration order.
func (s *Scheduler) rebuildBatches(stage Stage) {
	systems := s.stages[stage]
	batchOf := make([]int, len(systems))
	maxBatch := -1

	for i, sys := range systems {
		batch := 0
		for j := 0; j < i; j++ {
			if sys.access.conflictsWith(systems[j].access) && batchOf[j] >= batch {
				batch = batchOf[j] + 1
			}
		}
		batchOf[i] = batch
		if batch > maxBatch {
			maxBatch = batch
		}
	}

	batches := make([][]*scheduledSystem, maxBatch+1)
	for i, sys := range systems {
		batches[batchOf[i]] = append(batches[batchOf[i]], sys)
	}
	s.batches[stage] = batches
	s.dirty[stage] = false
}

// RunStage executes one stage: refresh queries, run batches, flush commands.
func (s *Scheduler) RunStage(stage Stage, dt float64) {
	systems := s.stages[stage]
	if len(systems) == 0 {
		return
	}
	if s.dirty[stage] {
		s.rebuildBatches(stage)
	}

	for _, sys := range systems {
		for _, field := range sys.fields {
			field.refresh()
		}
	}

	for _, batch := range s.batches[stage] {
		if len(batch) == 1 {
			s.runSystem(batch[0], dt)
			continue
		}
		var wg sync.WaitGroup
		for _, sys := range batch {
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.runSystem(sys, dt)
			}()
		}
		wg.Wait()
	}

	// Flush in registration order at the stage barrier, sharing one state so
	// deletes and migrations in an earlier buffer bind the buffers after it.
	state := newFlushState()
	for _, sys := range systems {
		sys.commands.flush(s.storage, state)
	}
}

func (s *Scheduler) runSystem(sys *scheduledSystem, dt float64) {
	frame := &UpdateFrame{
		DeltaTime: dt,
		Commands:  sys.commands,
		Storage:   s.storage,
	}
	start := time.Now()
	sys.system.Execute(frame)
	sys.record(time.Since(start))
}

// Once executes one full tick: event rotation, startup systems on the first
// call, then every stage from First through Last.
func (s *Scheduler) Once(dt float64) {
	s.storage.advanceEvents()

	if !s.startupDone {
		s.startupDone = true
		s.RunStage(StageStartup, dt)
	}

	for _, stage := range onceStages {
		s.RunStage(stage, dt)
	}
}

// Run ticks the scheduler at the given interval until the context is
// cancelled.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			s.Once(dt)
		}
	}
}

// StageBatches returns the batch layout of a stage as system names, mainly
// for diagnostics and tests.
func (s *Scheduler) StageBatches(stage Stage) [][]string {
	if s.dirty[stage] {
		s.rebuildBatches(stage)
	}
	layout := make([][]string, len(s.batches[stage]))
	for i, batch := range s.batches[stage] {
		for _, sys := range batch {
			layout[i] = append(layout[i], sys.name)
		}
	}
	return layout
}

// GetStats returns execution statistics for every registered system, in
// stage then registration order.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{}

	for stage := Stage(0); stage < stageCount; stage++ {
		for _, sys := range s.stages[stage] {
			avg := time.Duration(0)
			min := time.Duration(0)
			if sys.executionCount > 0 {
				avg = sys.totalDuration / time.Duration(sys.executionCount)
				min = sys.minDuration
			}
			stats.Systems = append(stats.Systems, SystemStats{
				Name:           sys.name,
				Stage:          sys.stage,
				ExecutionCount: sys.executionCount,
				MinDuration:    min,
				MaxDuration:    sys.maxDuration,
				AvgDuration:    avg,
				LastDuration:   sys.lastDuration,
				TotalDuration:  sys.totalDuration,
			})
			stats.TotalExecutions += sys.executionCount
			stats.SystemCount++
		}
	}
	return stats
}
