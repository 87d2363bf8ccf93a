package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name  string
		actor Actor
		from  Status
		to    Status
		want  bool
	}{
		{"owner confirms pending", ActorGarageOwner, StatusPending, StatusConfirmed, true},
		{"owner cancels pending", ActorGarageOwner, StatusPending, StatusCancelled, true},
		{"owner completes confirmed", ActorGarageOwner, StatusConfirmed, StatusCompleted, true},
		{"owner cancels confirmed", ActorGarageOwner, StatusConfirmed, StatusCancelled, true},
		{"owner cannot complete pending", ActorGarageOwner, StatusPending, StatusCompleted, false},
		{"owner cannot reopen cancelled", ActorGarageOwner, StatusCancelled, StatusPending, false},
		{"owner cannot undo completed", ActorGarageOwner, StatusCompleted, StatusConfirmed, false},

		{"customer cancels pending", ActorCustomer, StatusPending, StatusCancelled, true},
		{"customer cancels confirmed", ActorCustomer, StatusConfirmed, StatusCancelled, true},
		{"customer cannot confirm", ActorCustomer, StatusPending, StatusConfirmed, false},
		{"customer cannot complete", ActorCustomer, StatusConfirmed, StatusCompleted, false},
		{"customer cannot cancel completed", ActorCustomer, StatusCompleted, StatusCancelled, false},
		{"customer cannot cancel twice", ActorCustomer, StatusCancelled, StatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.actor, tt.from, tt.to))
		})
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	actors := []Actor{ActorCustomer, ActorGarageOwner}
	statuses := []Status{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}

	for _, actor := range actors {
		for _, to := range statuses {
			assert.False(t, CanTransition(actor, StatusCompleted, to),
				"%s should not move a completed booking to %s", actor, to)
			assert.False(t, CanTransition(actor, StatusCancelled, to),
				"%s should not move a cancelled booking to %s", actor, to)
		}
	}
}
