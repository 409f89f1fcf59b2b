package memstore

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flicky/custorder-api/internal/model"
	"github.com/flicky/custorder-api/internal/repository"
)

type OrderRepo struct{ s *Store }

var _ repository.OrderRepository = (*OrderRepo)(nil)

func cloneOrder(o model.Order) model.Order {
	o.ShippingAddress = cloneStr(o.ShippingAddress)
	return o
}

func (r *OrderRepo) Save(_ context.Context, o *model.Order) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[o.CustomerID]; !ok {
		return errUnknownCustomer
	}

	now := s.now()
	if o.ID == 0 {
		o.ApplyDefaults(now)
		o.ID = s.id("orders")
		o.CreatedAt = now
	} else {
		existing, ok := s.orders[o.ID]
		if !ok {
			return repository.ErrNoRows
		}
		o.CreatedAt = existing.CreatedAt
	}
	o.UpdatedAt = now
	s.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (r *OrderRepo) FindByID(_ context.Context, id int64) (*model.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	o = cloneOrder(o)
	return &o, nil
}

func (r *OrderRepo) FindAll(_ context.Context) ([]model.Order, error) {
	return r.filter(nil), nil
}

func (r *OrderRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[id]; !ok {
		return repository.ErrNoRows
	}
	delete(r.s.orders, id)
	return nil
}

func (r *OrderRepo) FindByCustomerID(_ context.Context, customerID int64) ([]model.Order, error) {
	return newestFirst(r.filter(func(o model.Order) bool { return o.CustomerID == customerID })), nil
}

func (r *OrderRepo) FindByStatus(_ context.Context, status model.OrderStatus) ([]model.Order, error) {
	return newestFirst(r.filter(func(o model.Order) bool { return o.Status == status })), nil
}

func (r *OrderRepo) FindByCustomerAndStatus(_ context.Context, customerID int64, status model.OrderStatus) ([]model.Order, error) {
	return newestFirst(r.filter(func(o model.Order) bool {
		return o.CustomerID == customerID && o.Status == status
	})), nil
}

func (r *OrderRepo) FindByDateRange(_ context.Context, start, end time.Time) ([]model.Order, error) {
	return oldestFirst(r.filter(func(o model.Order) bool { return between(o.OrderDate, start, end) })), nil
}

func (r *OrderRepo) FindByCustomerAndDateRange(_ context.Context, customerID int64, start, end time.Time) ([]model.Order, error) {
	return oldestFirst(r.filter(func(o model.Order) bool {
		return o.CustomerID == customerID && between(o.OrderDate, start, end)
	})), nil
}

func (r *OrderRepo) FindByTotalAmountRange(_ context.Context, min, max decimal.Decimal) ([]model.Order, error) {
	return byAmount(r.filter(func(o model.Order) bool {
		return o.TotalAmount.GreaterThanOrEqual(min) && o.TotalAmount.LessThanOrEqual(max)
	})), nil
}

func (r *OrderRepo) FindByTotalAmountAtLeast(_ context.Context, min decimal.Decimal) ([]model.Order, error) {
	return byAmount(r.filter(func(o model.Order) bool { return o.TotalAmount.GreaterThanOrEqual(min) })), nil
}

func (r *OrderRepo) FindByShippingAddress(_ context.Context, address string) ([]model.Order, error) {
	return r.filter(func(o model.Order) bool { return optContainsFold(o.ShippingAddress, address) }), nil
}

func (r *OrderRepo) FindRecent(_ context.Context, since time.Time) ([]model.Order, error) {
	return newestFirst(r.filter(func(o model.Order) bool { return !o.OrderDate.Before(since) })), nil
}

func (r *OrderRepo) TotalSales(_ context.Context) (decimal.Decimal, error) {
	return sum(r.filter(notCancelled)), nil
}

func (r *OrderRepo) TotalSalesBetween(_ context.Context, start, end time.Time) (decimal.Decimal, error) {
	return sum(r.filter(func(o model.Order) bool {
		return notCancelled(o) && between(o.OrderDate, start, end)
	})), nil
}

func (r *OrderRepo) CountByStatus(_ context.Context, status model.OrderStatus) (int64, error) {
	return int64(len(r.filter(func(o model.Order) bool { return o.Status == status }))), nil
}

func (r *OrderRepo) TopCustomersByOrderCount(_ context.Context) ([]model.CustomerStat, error) {
	stats := r.perCustomer(nil, func(st *model.CustomerStat, _ model.Order) { st.OrderCount++ })
	slices.SortStableFunc(stats, func(a, b model.CustomerStat) int {
		return compareDesc(a.OrderCount, b.OrderCount)
	})
	return stats, nil
}

func (r *OrderRepo) TopCustomersByTotalSpent(_ context.Context) ([]model.CustomerStat, error) {
	stats := r.perCustomer(notCancelled, func(st *model.CustomerStat, o model.Order) {
		st.TotalSpent = st.TotalSpent.Add(o.TotalAmount)
	})
	slices.SortStableFunc(stats, func(a, b model.CustomerStat) int {
		return b.TotalSpent.Cmp(a.TotalSpent)
	})
	return stats, nil
}

func (r *OrderRepo) MonthlySales(_ context.Context) ([]model.MonthlySales, error) {
	type month struct{ year, month int }
	buckets := make(map[month]*model.MonthlySales)
	var keys []month
	for _, o := range r.filter(notCancelled) {
		k := month{o.OrderDate.Year(), int(o.OrderDate.Month())}
		b, ok := buckets[k]
		if !ok {
			b = &model.MonthlySales{Year: k.year, Month: k.month}
			buckets[k] = b
			keys = append(keys, k)
		}
		b.Total = b.Total.Add(o.TotalAmount)
		b.Count++
	}
	slices.SortFunc(keys, func(a, b month) int {
		if a.year != b.year {
			return compareDesc(a.year, b.year)
		}
		return compareDesc(a.month, b.month)
	})
	out := make([]model.MonthlySales, 0, len(keys))
	for _, k := range keys {
		out = append(out, *buckets[k])
	}
	return out, nil
}

// perCustomer folds the matching orders into one stat per customer, ordered
// by customer id so the stable sorts above break ties the way SQL does.
func (r *OrderRepo) perCustomer(keep func(model.Order) bool, add func(*model.CustomerStat, model.Order)) []model.CustomerStat {
	byCustomer := make(map[int64]*model.CustomerStat)
	for _, o := range r.filter(keep) {
		st, ok := byCustomer[o.CustomerID]
		if !ok {
			st = &model.CustomerStat{CustomerID: o.CustomerID}
			byCustomer[o.CustomerID] = st
		}
		add(st, o)
	}
	out := make([]model.CustomerStat, 0, len(byCustomer))
	for _, st := range byCustomer {
		out = append(out, *st)
	}
	slices.SortFunc(out, func(a, b model.CustomerStat) int { return cmp.Compare(a.CustomerID, b.CustomerID) })
	return out
}

func (r *OrderRepo) filter(keep func(model.Order) bool) []model.Order {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := sortedByID(r.s.orders, keep)
	for i := range rows {
		rows[i] = cloneOrder(rows[i])
	}
	return rows
}

func notCancelled(o model.Order) bool { return o.Status != model.OrderStatusCancelled }

func between(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

func sum(orders []model.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.TotalAmount)
	}
	return total
}

func newestFirst(orders []model.Order) []model.Order {
	slices.SortStableFunc(orders, func(a, b model.Order) int { return b.OrderDate.Compare(a.OrderDate) })
	return orders
}

func oldestFirst(orders []model.Order) []model.Order {
	slices.SortStableFunc(orders, func(a, b model.Order) int { return a.OrderDate.Compare(b.OrderDate) })
	return orders
}

func byAmount(orders []model.Order) []model.Order {
	slices.SortStableFunc(orders, func(a, b model.Order) int { return a.TotalAmount.Cmp(b.TotalAmount) })
	return orders
}
