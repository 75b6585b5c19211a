package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/storefront/pkg/slogx"
	"github.com/aussiebroadwan/storefront/pkg/storesdk"
)

// Backend is the part of the storefront API the coordinator drives.
// *storesdk.Client implements it.
type Backend interface {
	IsAuthenticated() bool

	GetCart(ctx context.Context) (*storesdk.Cart, error)
	AddToCart(ctx context.Context, productID int64, quantity int) (*storesdk.Cart, error)
	UpdateCartItem(ctx context.Context, itemID int64, quantity int) (*storesdk.Cart, error)
	RemoveCartItem(ctx context.Context, itemID int64) (*storesdk.Cart, error)

	CreateOrder(ctx context.Context, addressID int64, paymentMethod string) (storesdk.CreateOrderResult, error)
	GetOrder(ctx context.Context, orderNumber string) (*storesdk.Order, error)
	CancelOrder(ctx context.Context, orderNumber string) error
	SubmitPaymentProof(ctx context.Context, orderNumber string, proof storesdk.PaymentProof) error
}

var _ Backend = (*storesdk.Client)(nil)

var (
	// ErrBusy is returned when a checkout step starts while another one is
	// still running.
	ErrBusy = errors.New("checkout: another checkout step is running")

	// ErrOrderMismatch is returned when payment is submitted for an order
	// other than the one being checked out.
	ErrOrderMismatch = errors.New("checkout: order is not the one being checked out")
)

// maxHistory bounds the recorded transitions.
const maxHistory = 64

// Coordinator sequences cart, order and payment calls for one user and
// keeps the client observed checkout state. It is safe for concurrent use;
// cart mutations may overlap, checkout steps may not.
type Coordinator struct {
	// Logger defaults to the context logger of each call.
	Logger *slog.Logger

	// HandoffTTL is how long a created order stays available to
	// TakeHandoff.
	HandoffTTL time.Duration

	// Now is the clock, for tests.
	Now func() time.Time

	backend Backend

	mu       sync.Mutex
	state    State
	order    *storesdk.Order
	conflict *storesdk.OrderConflict
	history  []Transition
	cart     *storesdk.Cart
	cartSeq  sequencer
	orderSeq sequencer
	handoffs handoffs
}

func New(b Backend) *Coordinator {
	return &Coordinator{
		HandoffTTL: DefaultHandoffTTL,
		backend:    b,
		handoffs:   make(handoffs),
	}
}

func (c *Coordinator) logger(ctx context.Context) *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slogx.FromContext(ctx)
}

func (c *Coordinator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// requireSession fails without a network call when nobody is signed in.
func (c *Coordinator) requireSession() error {
	if !c.backend.IsAuthenticated() {
		return storesdk.Unauthenticated(storesdk.ErrNotAuthenticated)
	}
	return nil
}

// State returns the current checkout state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Order returns the order being checked out, if any.
func (c *Coordinator) Order() *storesdk.Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.order == nil {
		return nil
	}
	o := *c.order
	return &o
}

// Conflict returns the last order conflict while in the Conflict state.
func (c *Coordinator) Conflict() *storesdk.OrderConflict {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Conflict || c.conflict == nil {
		return nil
	}
	oc := *c.conflict
	return &oc
}

// History returns the recorded transitions, oldest first.
func (c *Coordinator) History() []Transition {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Transition, len(c.history))
	copy(out, c.history)
	return out
}

// Reset forgets all checkout state, for example after logout.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = NoOrder
	c.order = nil
	c.conflict = nil
	c.history = nil
	c.cart = nil
	c.cartSeq.apply(c.cartSeq.next())
	c.orderSeq.apply(c.orderSeq.next())
	clear(c.handoffs)
}

// begin enters the in-flight state to. A settled state with no direct
// edge to it starts a new attempt from NoOrder when that is allowed.
func (c *Coordinator) begin(ctx context.Context, to State, order string) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	from := c.state
	if from.InFlight() {
		return from, fmt.Errorf("%w: %s", ErrBusy, from)
	}
	if !CanTransition(from, to) {
		if !CanTransition(NoOrder, to) {
			return from, &TransitionError{From: from, To: to}
		}
		c.recordLocked(ctx, NoOrder, order)
	}
	c.recordLocked(ctx, to, order)
	return from, nil
}

func (c *Coordinator) settle(ctx context.Context, to State, order string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recordLocked(ctx, to, order)
}

func (c *Coordinator) recordLocked(ctx context.Context, to State, order string) {
	t := Transition{From: c.state, To: to, At: c.now(), Order: order}
	if len(c.history) == maxHistory {
		c.history = append(c.history[:0], c.history[1:]...)
	}
	c.history = append(c.history, t)
	c.state = to
	c.logger(ctx).Debug("checkout state changed", "from", t.From, "to", t.To, "order", order)
}
