package checkout

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/aussiebroadwan/storefront/pkg/storesdk"
)

// memBackend is an in memory Backend recording every call it serves.
type memBackend struct {
	mu     sync.Mutex
	authed bool
	calls  []string
	cart   storesdk.Cart
	nextID int64
	orders map[string]storesdk.Order

	// createResults are returned by successive CreateOrder calls; once
	// drained a fresh order is created.
	createResults []storesdk.CreateOrderResult
	createErr     error
	cancelErr     error
	getErr        error
	submitErrs    []error

	// gates, when set for a call name, block that call until closed.
	gates map[string]chan struct{}
}

func newMemBackend() *memBackend {
	return &memBackend{
		authed: true,
		cart:   storesdk.Cart{CartID: 1},
		orders: make(map[string]storesdk.Order),
		gates:  make(map[string]chan struct{}),
	}
}

func (m *memBackend) record(ctx context.Context, call string) error {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	gate := m.gates[call]
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (m *memBackend) gate(call string) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan struct{})
	m.gates[call] = ch
	return ch
}

func (m *memBackend) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *memBackend) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authed
}

func (m *memBackend) snapshotLocked() *storesdk.Cart {
	cart := m.cart
	cart.Items = append([]storesdk.CartItem(nil), m.cart.Items...)
	cart.TotalItems = len(cart.Items)
	total := decimal.Zero
	for _, it := range cart.Items {
		total = total.Add(it.TotalPrice)
	}
	cart.TotalPrice = total
	return &cart
}

// GetCart snapshots before waiting on its gate, so a gated fetch returns
// the cart as it was when the request reached the server.
func (m *memBackend) GetCart(ctx context.Context) (*storesdk.Cart, error) {
	m.mu.Lock()
	m.calls = append(m.calls, "get_cart")
	snap := m.snapshotLocked()
	gate := m.gates["get_cart"]
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return snap, nil
}

func (m *memBackend) AddToCart(ctx context.Context, productID int64, quantity int) (*storesdk.Cart, error) {
	if err := m.record(ctx, fmt.Sprintf("add %d %d", productID, quantity)); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	price := decimal.NewFromInt(10)
	m.cart.Items = append(m.cart.Items, storesdk.CartItem{
		ID:           m.nextID,
		Product:      productID,
		ProductPrice: price,
		Quantity:     quantity,
		TotalPrice:   price.Mul(decimal.NewFromInt(int64(quantity))),
	})
	return m.snapshotLocked(), nil
}

func (m *memBackend) UpdateCartItem(ctx context.Context, itemID int64, quantity int) (*storesdk.Cart, error) {
	if err := m.record(ctx, fmt.Sprintf("update %d %d", itemID, quantity)); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.cart.Items {
		if m.cart.Items[i].ID == itemID {
			m.cart.Items[i].Quantity = quantity
		}
	}
	return m.snapshotLocked(), nil
}

func (m *memBackend) RemoveCartItem(ctx context.Context, itemID int64) (*storesdk.Cart, error) {
	if err := m.record(ctx, fmt.Sprintf("remove %d", itemID)); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.cart.Items[:0]
	for _, it := range m.cart.Items {
		if it.ID != itemID {
			items = append(items, it)
		}
	}
	m.cart.Items = items
	return m.snapshotLocked(), nil
}

func (m *memBackend) CreateOrder(ctx context.Context, addressID int64, paymentMethod string) (storesdk.CreateOrderResult, error) {
	if err := m.record(ctx, fmt.Sprintf("create %d %s", addressID, paymentMethod)); err != nil {
		return storesdk.CreateOrderResult{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return storesdk.CreateOrderResult{}, m.createErr
	}
	if len(m.createResults) > 0 {
		res := m.createResults[0]
		m.createResults = m.createResults[1:]
		if res.Created != nil {
			m.orders[res.Created.Order.OrderNumber] = res.Created.Order
		}
		return res, nil
	}

	n := fmt.Sprintf("ORD2026101400%02d", len(m.orders)+1)
	o := storesdk.Order{OrderNumber: n, Status: storesdk.StatusPendingPayment, TotalAmount: decimal.NewFromInt(20)}
	m.orders[n] = o
	m.cart.Items = nil
	return storesdk.CreateOrderResult{Created: &storesdk.OrderCreated{
		Message: "Order created successfully",
		Order:   o,
		Payment: &storesdk.Payment{PaymentMethod: paymentMethod, Amount: o.TotalAmount, Status: "pending"},
	}}, nil
}

func (m *memBackend) GetOrder(ctx context.Context, orderNumber string) (*storesdk.Order, error) {
	if err := m.record(ctx, "get_order "+orderNumber); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	o, ok := m.orders[orderNumber]
	if !ok {
		return nil, &storesdk.APIError{Kind: storesdk.KindServerRejected, StatusCode: 404, Message: "Not found."}
	}
	return &o, nil
}

func (m *memBackend) CancelOrder(ctx context.Context, orderNumber string) error {
	if err := m.record(ctx, "cancel "+orderNumber); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancelErr != nil {
		return m.cancelErr
	}
	o := m.orders[orderNumber]
	o.Status = storesdk.StatusCancelled
	m.orders[orderNumber] = o
	return nil
}

func (m *memBackend) SubmitPaymentProof(ctx context.Context, orderNumber string, proof storesdk.PaymentProof) error {
	if err := m.record(ctx, "submit "+orderNumber+" "+proof.ReferenceID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.submitErrs) > 0 {
		err := m.submitErrs[0]
		m.submitErrs = m.submitErrs[1:]
		if err != nil {
			return err
		}
	}
	o := m.orders[orderNumber]
	o.Status = storesdk.StatusPaymentSubmitted
	m.orders[orderNumber] = o
	return nil
}
