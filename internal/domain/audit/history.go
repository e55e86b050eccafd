package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/reparto/backend/internal/domain/identity"
)

// Action is a closed set of things that can appear in an aggregate's audit
// trail. Rendering code can switch over it exhaustively instead of matching
// free-form strings.
type Action string

const (
	ActionCreated           Action = "CREATED"
	ActionAdvanced          Action = "ADVANCED"
	ActionQuantityEdited    Action = "QUANTITY_EDITED"
	ActionPriceEdited       Action = "PRICE_EDITED"
	ActionProductAdded      Action = "PRODUCT_ADDED"
	ActionProductRemoved    Action = "PRODUCT_REMOVED"
	ActionCheckToggled      Action = "CHECK_TOGGLED"
	ActionMetadataEdited    Action = "METADATA_EDITED"
	ActionDeleted           Action = "DELETED"
	ActionClosed            Action = "CLOSED"
	ActionReopened          Action = "REOPENED"
	ActionPaymentRegistered Action = "PAYMENT_REGISTERED"
	ActionBalanceOverridden Action = "BALANCE_OVERRIDDEN"
	ActionExpenseRecorded   Action = "EXPENSE_RECORDED"
)

// IsValid checks if the action is part of the closed set
func (a Action) IsValid() bool {
	switch a {
	case ActionCreated, ActionAdvanced, ActionQuantityEdited, ActionPriceEdited,
		ActionProductAdded, ActionProductRemoved, ActionCheckToggled,
		ActionMetadataEdited, ActionDeleted, ActionClosed, ActionReopened,
		ActionPaymentRegistered, ActionBalanceOverridden, ActionExpenseRecorded:
		return true
	}
	return false
}

// Aggregate types recorded in the trail
const (
	AggregateOrder = "order"
	AggregateTrip  = "trip"
)

// Entry is one line of an aggregate's audit trail. Entries are immutable
// once appended; their order is the source of truth for who did what, when.
type Entry struct {
	ID            uuid.UUID `json:"id"`
	AggregateID   uuid.UUID `json:"aggregate_id" gorm:"index"`
	AggregateType string    `json:"aggregate_type"`
	Timestamp     time.Time `json:"timestamp"`
	UserID        uuid.UUID `json:"user_id"`
	UserName      string    `json:"user_name"`
	Action        Action    `json:"action"`
	NewState      string    `json:"new_state,omitempty"`
	Details       string    `json:"details,omitempty"`
}

// TableName maps all entries to a single audit table
func (Entry) TableName() string {
	return "audit_entries"
}

// NewEntry builds an audit entry stamped with the current time
func NewEntry(aggType string, aggID uuid.UUID, actor identity.Actor, action Action, newState, details string) Entry {
	return Entry{
		ID:            uuid.New(),
		AggregateID:   aggID,
		AggregateType: aggType,
		Timestamp:     time.Now(),
		UserID:        actor.ID,
		UserName:      actor.Name,
		Action:        action,
		NewState:      newState,
		Details:       details,
	}
}

// Append returns the trail with the entry added. Prior entries are never
// mutated, removed or reordered.
func Append(trail []Entry, entry Entry) []Entry {
	return append(trail, entry)
}
