package ecs

import "reflect"

// ComponentType identifies a component or singleton type in access
// declarations.
type ComponentType = reflect.Type

// TypeOf returns the ComponentType for T, for use with Accessor.
func TypeOf[T any]() ComponentType {
	return reflect.TypeFor[T]()
}

// systemField is implemented by the bindable system field types (Query,
// Singleton, EventReader, EventWriter). The Scheduler discovers them by
// reflection during registration.
type systemField interface {
	Init(*Storage)
	access() fieldAccess
	refresh()
}

// fieldAccess is the data-access footprint of one system field.
type fieldAccess struct {
	reads  []reflect.Type
	writes []reflect.Type
}

// accessSet is the merged footprint of a whole system.
type accessSet struct {
	reads  map[reflect.Type]struct{}
	writes map[reflect.Type]struct{}

	// derived is false when the system exposed no bindable fields; such a
	// system may touch storage directly, so it runs exclusively.
	derived bool
}

func newAccessSet() *accessSet {
	return &accessSet{
		reads:  make(map[reflect.Type]struct{}),
		writes: make(map[reflect.Type]struct{}),
	}
}

func (a *accessSet) add(fa fieldAccess) {
	for _, t := range fa.reads {
		a.reads[t] = struct{}{}
	}
	for _, t := range fa.writes {
		a.writes[t] = struct{}{}
	}
	a.derived = true
}

// demote moves the listed types from the write set to the read set, per the
// system's Accessor declaration.
func (a *accessSet) demote(readOnly []ComponentType) {
	for _, t := range readOnly {
		if _, ok := a.writes[t]; ok {
			delete(a.writes, t)
			a.reads[t] = struct{}{}
		}
	}
}

// conflictsWith reports whether two systems may not share a parallel batch:
// either side writing a type the other touches, or either side having an
// unknown (underived) footprint.
func (a *accessSet) conflictsWith(b *accessSet) bool {
	if !a.derived || !b.derived {
		return true
	}
	for t := range a.writes {
		if _, ok := b.writes[t]; ok {
			return true
		}
		if _, ok := b.reads[t]; ok {
			return true
		}
	}
	for t := range b.writes {
		if _, ok := a.reads[t]; ok {
			return true
		}
	}
	return false
}
