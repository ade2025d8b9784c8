package domain

import (
	"strings"

	"github.com/google/uuid"
)

// TempIDPrefix marks cart item ids generated locally before the backend assigns one
const TempIDPrefix = "temp-"

// NewTempID returns a fresh placeholder cart item id
func NewTempID() string {
	return TempIDPrefix + uuid.NewString()
}

// IsTempID checks if a cart item id is a local placeholder
func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

// Mutation identifies a cart mutation operation
type Mutation string

const (
	MutationAdd     Mutation = "add"
	MutationUpdate  Mutation = "update"
	MutationRemove  Mutation = "remove"
	MutationPlace   Mutation = "place_order"
	MutationReorder Mutation = "reorder"
)

// IsValid checks if the mutation is known
func (m Mutation) IsValid() bool {
	switch m {
	case MutationAdd, MutationUpdate, MutationRemove, MutationPlace, MutationReorder:
		return true
	default:
		return false
	}
}

// FailureMessage is the notification text shown when the mutation fails
func (m Mutation) FailureMessage() string {
	switch m {
	case MutationAdd:
		return "Failed to add item"
	case MutationUpdate:
		return "Failed to update item"
	case MutationRemove:
		return "Failed to remove item"
	case MutationPlace:
		return "Failed to place order. Please try again."
	case MutationReorder:
		return "Failed to reorder. Please try again."
	default:
		return "Request failed"
	}
}
