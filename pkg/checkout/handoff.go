package checkout

import (
	"time"

	"github.com/aussiebroadwan/storefront/pkg/storesdk"
)

// DefaultHandoffTTL is how long a just created order is kept for the
// payment step.
const DefaultHandoffTTL = 15 * time.Minute

type handoff struct {
	created storesdk.OrderCreated
	expires time.Time
}

// handoffs holds just created orders by order number. Guarded by the
// coordinator's mutex.
type handoffs map[string]handoff

func (h handoffs) put(created storesdk.OrderCreated, expires time.Time) {
	h[created.Order.OrderNumber] = handoff{created: created, expires: expires}
}

// take removes and returns the entry for orderNumber if it has not expired.
func (h handoffs) take(orderNumber string, now time.Time) (storesdk.OrderCreated, bool) {
	e, ok := h[orderNumber]
	if !ok {
		return storesdk.OrderCreated{}, false
	}
	delete(h, orderNumber)
	if !now.Before(e.expires) {
		return storesdk.OrderCreated{}, false
	}
	return e.created, true
}

func (h handoffs) prune(now time.Time) {
	for n, e := range h {
		if !now.Before(e.expires) {
			delete(h, n)
		}
	}
}
