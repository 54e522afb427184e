package ecs

import (
	"errors"

	"github.com/Faultbox/strider/internal/engine/scene"
)

// ErrAlreadyAttached is returned by AttachNode when a component is bound twice.
var ErrAlreadyAttached = errors.New("ecs: component already attached")

// Kind tags a component variant so entities can look components up without
// type switches.
type Kind string

// Component is per-frame behaviour bound to one entity for its lifetime.
type Component interface {
	Kind() Kind
	// AttachNode binds the component to its owner. A second call must fail
	// with ErrAlreadyAttached and leave the first binding in place.
	AttachNode(e *Entity, w *World) error
	Start()
	Update(dt float64)
}

// Base implements the binding half of Component. Embed it and provide Kind,
// plus Start and Update where needed.
type Base struct {
	entity *Entity
	world  *World
}

// AttachNode records the owning entity once.
func (b *Base) AttachNode(e *Entity, w *World) error {
	if b.entity != nil {
		return ErrAlreadyAttached
	}
	b.entity = e
	b.world = w
	return nil
}

// Start does nothing.
func (b *Base) Start() {}

// Update does nothing.
func (b *Base) Update(float64) {}

// Entity returns the owner, nil before attachment.
func (b *Base) Entity() *Entity { return b.entity }

// World returns the owner's world, nil before attachment.
func (b *Base) World() *World { return b.world }

// Transform returns the owner's transform, nil before attachment.
func (b *Base) Transform() *scene.Transform {
	if b.entity == nil {
		return nil
	}
	return b.entity.Transform()
}
