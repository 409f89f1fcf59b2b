// Package memstore keeps customers, orders and products in process memory.
// It honours the same contract as the PostgreSQL repositories: absent rows
// read as (nil, nil), writes to missing ids return repository.ErrNoRows,
// a reused email returns repository.ErrDuplicate and deleting a customer
// deletes its orders.
package memstore

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/flicky/custorder-api/internal/model"
	"github.com/flicky/custorder-api/internal/repository"
)

// Store is shared by the three repositories so the customer cascade and
// the with/without-orders queries can see orders.
type Store struct {
	mu        sync.RWMutex
	now       func() time.Time
	nextID    map[string]int64
	customers map[int64]model.Customer
	orders    map[int64]model.Order
	products  map[int64]model.Product
}

type Option func(*Store)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{
		now:       time.Now,
		nextID:    make(map[string]int64),
		customers: make(map[int64]model.Customer),
		orders:    make(map[int64]model.Order),
		products:  make(map[int64]model.Product),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Customers() *CustomerRepo { return &CustomerRepo{s: s} }
func (s *Store) Orders() *OrderRepo { return &OrderRepo{s: s} }
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// errUnknownCustomer mirrors the orders.customer_id foreign key.
var errUnknownCustomer = fmt.Errorf("insert order: %w (orders_customer_id_fkey)", repository.ErrForeignKey)

func (s *Store) id(table string) int64 {
	s.nextID[table]++
	return s.nextID[table]
}

func containsFold(field, sub string) bool {
	return strings.Contains(strings.ToLower(field), strings.ToLower(sub))
}

func optContainsFold(field *string, sub string) bool {
	return field != nil && containsFold(*field, sub)
}

func optEqualFold(field *string, value string) bool {
	return field != nil && strings.EqualFold(*field, value)
}

func sortedByID[T any](rows map[int64]T, keep func(T) bool) []T {
	ids := make([]int64, 0, len(rows))
	for id, row := range rows {
		if keep == nil || keep(row) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, rows[id])
	}
	return out
}

func cloneStr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func compareDesc[T cmp.Ordered](a, b T) int { return cmp.Compare(b, a) }
