package ecs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nolantait/flock/ecs"
)

type collisionEvent struct {
	A, B ecs.EntityId
}

type scoreEvent struct {
	Amount int
}

func collectEvents[T any](reader *ecs.EventReader[T]) []T {
	var out []T
	for event := range reader.Read() {
		out = append(out, event)
	}
	return out
}

func TestEventsRetainedForTwoFrames(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	queue := ecs.RegisterEvents[scoreEvent](storage)

	reader := &ecs.EventReader[scoreEvent]{}
	reader.Init(storage)

	queue.Send(scoreEvent{Amount: 10})
	assert.Len(t, collectEvents(reader), 1)

	// Still retained after one rotation for late readers.
	late := &ecs.EventReader[scoreEvent]{}
	late.Init(storage)
	queue.Update()
	assert.Len(t, collectEvents(late), 1)

	// Dropped after the second rotation.
	queue.Update()
	assert.Equal(t, 0, queue.Len())
}

func TestEventsMissedCounting(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	queue := ecs.RegisterEvents[scoreEvent](storage)

	reader := &ecs.EventReader[scoreEvent]{}
	reader.Init(storage)

	queue.SendBatch(scoreEvent{Amount: 1}, scoreEvent{Amount: 2}, scoreEvent{Amount: 3})
	queue.Update()
	queue.Update()
	queue.Send(scoreEvent{Amount: 4})

	got := collectEvents(reader)
	assert.Len(t, got, 1)
	assert.Equal(t, 4, got[0].Amount)
	assert.Equal(t, uint64(3), reader.Missed())
}

func TestEventsIndependentReaders(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	queue := ecs.RegisterEvents[scoreEvent](storage)

	first := &ecs.EventReader[scoreEvent]{}
	first.Init(storage)
	second := &ecs.EventReader[scoreEvent]{}
	second.Init(storage)

	queue.Send(scoreEvent{Amount: 7})

	assert.Len(t, collectEvents(first), 1)
	// The first reader consuming does not advance the second's cursor.
	assert.Len(t, collectEvents(second), 1)
	assert.Empty(t, collectEvents(first))
}

func TestEventsClear(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	queue := ecs.RegisterEvents[scoreEvent](storage)

	reader := &ecs.EventReader[scoreEvent]{}
	reader.Init(storage)

	queue.Send(scoreEvent{Amount: 1})
	queue.Update()
	queue.Send(scoreEvent{Amount: 2})
	queue.Clear()

	assert.Equal(t, 0, queue.Len())
	assert.Empty(t, collectEvents(reader))
	// Clear drops events unseen by the reader; they count as missed.
	assert.Equal(t, uint64(2), reader.Missed())
}

func TestRegisterEventsIdempotent(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	a := ecs.RegisterEvents[collisionEvent](storage)
	b := ecs.RegisterEvents[collisionEvent](storage)
	assert.Same(t, a, b)

	a.Send(collisionEvent{})
	assert.Equal(t, 1, b.Len())
}

type scoreProducer struct {
	Writer ecs.EventWriter[scoreEvent]
}

func (s *scoreProducer) Execute(frame *ecs.UpdateFrame) {
	s.Writer.Send(scoreEvent{Amount: 1})
}

type scoreConsumer struct {
	Reader ecs.EventReader[scoreEvent]

	total int
}

func (s *scoreConsumer) Execute(frame *ecs.UpdateFrame) {
	for event := range s.Reader.Read() {
		s.total += event.Amount
	}
}

func TestEventsThroughScheduler(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	scheduler := ecs.NewScheduler(storage)

	consumer := &scoreConsumer{}
	scheduler.RegisterAt(ecs.StagePreUpdate, &scoreProducer{})
	scheduler.RegisterAt(ecs.StageUpdate, consumer)

	scheduler.Once(0.016)
	scheduler.Once(0.016)
	scheduler.Once(0.016)

	// One event per tick, consumed the same tick it was sent.
	assert.Equal(t, 3, consumer.total)
	assert.Equal(t, uint64(0), consumer.Reader.Missed())
}
