package cart

import (
	"time"

	"github.com/google/uuid"
)

// EventTypeCartMigrated tags the event published after a cart moves between
// customers, typically from a guest session to the account it signed into.
const EventTypeCartMigrated = "cart.migrated"

// CartMigratedEvent is the payload published on EventTypeCartMigrated.
type CartMigratedEvent struct {
	FromCustomerID uuid.UUID `json:"from_customer_id"`
	ToCustomerID   uuid.UUID `json:"to_customer_id"`
	ItemCount      int       `json:"item_count"`
	MigratedAt     time.Time `json:"migrated_at"`
}
