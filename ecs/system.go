package ecs

// System is a unit of behavior run by the Scheduler. Implementations are
// structs whose Query, Singleton, EventReader and EventWriter fields are
// bound automatically at registration; any other fields persist between
// frames as system-local state.
type System interface {
	Execute(frame *UpdateFrame)
}

// Accessor lets a system refine its derived access set by declaring types it
// only reads. Queries and singletons count as writers by default because
// they hand out live pointers; a system that merely inspects components can
// report them here to unlock more parallelism.
type Accessor interface {
	ReadOnly() []ComponentType
}

// UpdateFrame carries per-tick context into a system's Execute. Each system
// receives its own command buffer; buffers are flushed in registration order
// at the stage boundary.
type UpdateFrame struct {
	DeltaTime float64
	Commands  *Commands
	Storage   *Storage
}
