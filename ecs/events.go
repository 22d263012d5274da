package ecs

import (
	"iter"
	"reflect"
)

// Events is a double-buffered queue for messages of type T, stored as a
// singleton. Events sent during a frame stay readable for that frame and the
// next one, then they are dropped; readers that fall more than one frame
// behind miss events. Update advances the frame and is called by the
// Scheduler at the top of every tick.
type Events[T any] struct {
	front      []T // previous frame
	back       []T // current frame
	frontStart uint64
}

// Send appends an event to the current frame's buffer.
func (e *Events[T]) Send(event T) {
	e.back = append(e.back, event)
}

// SendBatch appends several events at once.
func (e *Events[T]) SendBatch(events ...T) {
	e.back = append(e.back, events...)
}

// Update rotates the buffers: last frame's events are dropped, this frame's
// become readable for one more frame.
func (e *Events[T]) Update() {
	e.frontStart += uint64(len(e.front))
	e.front = e.back
	e.back = nil
}

// Clear drops all buffered events without disturbing reader cursors.
func (e *Events[T]) Clear() {
	e.frontStart += uint64(len(e.front) + len(e.back))
	e.front = nil
	e.back = nil
}

// Len returns the number of events currently held in both buffers.
func (e *Events[T]) Len() int {
	return len(e.front) + len(e.back)
}

// oldest returns the absolute index of the oldest retained event.
func (e *Events[T]) oldest() uint64 {
	return e.frontStart
}

// next returns the absolute index one past the newest event.
func (e *Events[T]) next() uint64 {
	return e.frontStart + uint64(len(e.front)+len(e.back))
}

// get returns the event at absolute index i; i must be in [oldest, next).
func (e *Events[T]) get(i uint64) T {
	offset := int(i - e.frontStart)
	if offset < len(e.front) {
		return e.front[offset]
	}
	return e.back[offset-len(e.front)]
}

// RegisterEvents ensures an Events[T] singleton exists in the storage and
// that the Scheduler rotates it every tick. Safe to call more than once.
func RegisterEvents[T any](storage *Storage) *Events[T] {
	eventsType := reflect.TypeFor[Events[T]]()

	if entry := storage.getSingletonEntry(eventsType); entry != nil {
		return (*Events[T])(entry.dataPtr)
	}

	storage.AddSingleton(Events[T]{})
	entry := storage.getSingletonEntry(eventsType)
	queue := (*Events[T])(entry.dataPtr)
	storage.eventUpdaters = append(storage.eventUpdaters, queue.Update)
	return queue
}

// advanceEvents rotates every registered event queue. Called once per tick
// before any stage runs.
func (s *Storage) advanceEvents() {
	for _, update := range s.eventUpdaters {
		update()
	}
}

// EventWriter is a system field for publishing events. The Scheduler binds
// it during registration and treats it as a writer on the queue type.
type EventWriter[T any] struct {
	events *Events[T]
}

// Init binds the writer to the storage's Events[T] singleton.
func (w *EventWriter[T]) Init(storage *Storage) {
	w.events = RegisterEvents[T](storage)
}

// Send publishes an event.
func (w *EventWriter[T]) Send(event T) {
	w.events.Send(event)
}

func (w *EventWriter[T]) access() fieldAccess {
	return fieldAccess{writes: []reflect.Type{reflect.TypeFor[Events[T]]()}}
}

func (w *EventWriter[T]) refresh() {}

// EventReader is a system field for consuming events. Each reader keeps its
// own cursor, so several systems can independently read the same queue.
type EventReader[T any] struct {
	events *Events[T]
	cursor uint64
	missed uint64
}

// Init binds the reader to the storage's Events[T] singleton.
func (r *EventReader[T]) Init(storage *Storage) {
	r.events = RegisterEvents[T](storage)
	r.cursor = r.events.oldest()
}

// Read yields every retained event the reader has not seen yet and advances
// the cursor past it.
func (r *EventReader[T]) Read() iter.Seq[T] {
	return func(yield func(T) bool) {
		if oldest := r.events.oldest(); r.cursor < oldest {
			r.missed += oldest - r.cursor
			r.cursor = oldest
		}
		for r.cursor < r.events.next() {
			event := r.events.get(r.cursor)
			r.cursor++
			if !yield(event) {
				return
			}
		}
	}
}

// Missed returns how many events were dropped from the retention window
// before this reader consumed them.
func (r *EventReader[T]) Missed() uint64 {
	return r.missed
}

func (r *EventReader[T]) access() fieldAccess {
	return fieldAccess{reads: []reflect.Type{reflect.TypeFor[Events[T]]()}}
}

func (r *EventReader[T]) refresh() {}
