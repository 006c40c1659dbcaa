// Package reconcile computes how a persisted list of child entities has to
// change to match a list submitted by a client.
package reconcile

import (
	"fmt"
	"strings"

	"github.com/kusalwijekoon97/ml-be/pkg/errcodes"
)

// ChildID is the optional identity of a submitted child. Missing, empty and
// whitespace-only ids all mean the child is new.
type ChildID struct {
	id string
}

// NewChildID builds a ChildID from a raw submitted value.
func NewChildID(raw *string) ChildID {
	if raw == nil {
		return ChildID{}
	}
	return ChildID{id: strings.TrimSpace(*raw)}
}

// Existing returns a ChildID that refers to the persisted child id.
func Existing(id string) ChildID {
	return NewChildID(&id)
}

// Get returns the id and whether there is one.
func (c ChildID) Get() (string, bool) {
	return c.id, c.id != ""
}

// IsNew reports whether the child has no id and has to be created.
func (c ChildID) IsNew() bool {
	return c.id == ""
}

// Child is one element of a submitted child list.
type Child[T any] struct {
	ID    ChildID
	Input T
}

// Update replaces every field of the existing child ID with Input.
type Update[T any] struct {
	ID    string
	Input T
}

// Slot is one position of the rebuilt child list. It either refers to an
// existing child or to an element of Plan.ToCreate.
type Slot struct {
	ExistingID  string
	CreateIndex int
}

// IsNew reports whether the slot refers to a created child.
func (s Slot) IsNew() bool {
	return s.ExistingID == ""
}

// Plan is the set of writes that turns the persisted children into the
// submitted ones.
type Plan[T any] struct {
	ToCreate []T
	ToUpdate []Update[T]
	ToDelete []string
	Order    []Slot
}

// Validator checks a single submitted child. path is the position of the
// child in the submission, e.g. "[2]".
type Validator[T any] func(path string, input T) error

// Reconcile diffs the submitted children against the ids of the persisted
// ones. Every input is validated before a plan is returned, so a failing
// child never results in a partially applied plan.
//
// Submitted ids that don't belong to a persisted child and ids submitted more
// than once are rejected.
func Reconcile[T any](existingIDs []string, incoming []Child[T], validate Validator[T]) (*Plan[T], error) {
	existing := make(map[string]bool, len(existingIDs))
	for _, id := range existingIDs {
		existing[id] = true
	}

	plan := &Plan[T]{
		ToCreate: []T{},
		ToUpdate: []Update[T]{},
		ToDelete: []string{},
		Order:    make([]Slot, 0, len(incoming)),
	}
	kept := make(map[string]bool, len(incoming))

	for i, child := range incoming {
		path := fmt.Sprintf("[%d]", i)
		if validate != nil {
			if err := validate(path, child.Input); err != nil {
				return nil, err
			}
		}

		id, ok := child.ID.Get()
		if !ok {
			plan.Order = append(plan.Order, Slot{CreateIndex: len(plan.ToCreate)})
			plan.ToCreate = append(plan.ToCreate, child.Input)
			continue
		}
		if !existing[id] {
			return nil, errcodes.FieldValidationError(path+"._id", fmt.Sprintf("%q does not refer to an existing entry", id))
		}
		if kept[id] {
			return nil, errcodes.FieldValidationError(path+"._id", fmt.Sprintf("%q is submitted more than once", id))
		}
		kept[id] = true
		plan.Order = append(plan.Order, Slot{ExistingID: id})
		plan.ToUpdate = append(plan.ToUpdate, Update[T]{ID: id, Input: child.Input})
	}

	for _, id := range existingIDs {
		if !kept[id] {
			plan.ToDelete = append(plan.ToDelete, id)
		}
	}

	return plan, nil
}

// OrderedIDs rebuilds the child id list given the ids assigned to the
// created children, in the same order as ToCreate.
func (p *Plan[T]) OrderedIDs(createdIDs []string) []string {
	ids := make([]string, 0, len(p.Order))
	for _, slot := range p.Order {
		if slot.IsNew() {
			ids = append(ids, createdIDs[slot.CreateIndex])
			continue
		}
		ids = append(ids, slot.ExistingID)
	}
	return ids
}
