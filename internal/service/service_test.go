package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/flicky/custorder-api/internal/events"
	"github.com/flicky/custorder-api/internal/repository/memstore"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.OrderEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store     *memstore.Store
	customers *CustomerService
	orders    *OrderService
	products  *ProductService
	publisher *recordingPublisher
	now       time.Time
}

func newFixture() *fixture {
	f := &fixture{
		store:     memstore.New(),
		publisher: &recordingPublisher{},
		now:       time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	f.customers = NewCustomerService(f.store.Customers())
	f.orders = NewOrderService(f.store.Orders(), f.customers, f.publisher, WithOrderClock(clock))
	f.products = NewProductService(f.store.Products())
	return f
}

func strPtr(s string) *string { return &s }

var errBroker = errors.New("broker unavailable")
