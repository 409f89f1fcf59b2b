package memstore

import (
	"context"

	"github.com/flicky/custorder-api/internal/model"
	"github.com/flicky/custorder-api/internal/repository"
)

type CustomerRepo struct{ s *Store }

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

func cloneCustomer(c model.Customer) model.Customer {
	c.Phone = cloneStr(c.Phone)
	c.Address = cloneStr(c.Address)
	return c
}

func (r *CustomerRepo) Save(_ context.Context, c *model.Customer) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.customers {
		if id != c.ID && existing.Email == c.Email {
			return repository.ErrDuplicate
		}
	}

	now := s.now()
	if c.ID == 0 {
		c.ID = s.id("customers")
		c.CreatedAt = now
	} else {
		existing, ok := s.customers[c.ID]
		if !ok {
			return repository.ErrNoRows
		}
		c.CreatedAt = existing.CreatedAt
	}
	c.UpdatedAt = now
	s.customers[c.ID] = cloneCustomer(*c)
	return nil
}

func (r *CustomerRepo) FindByID(_ context.Context, id int64) (*model.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.customers[id]
	if !ok {
		return nil, nil
	}
	c = cloneCustomer(c)
	return &c, nil
}

func (r *CustomerRepo) FindAll(_ context.Context) ([]model.Customer, error) {
	return r.filter(nil), nil
}

func (r *CustomerRepo) Delete(_ context.Context, id int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[id]; !ok {
		return repository.ErrNoRows
	}
	delete(s.customers, id)
	for oid, o := range s.orders {
		if o.CustomerID == id {
			delete(s.orders, oid)
		}
	}
	return nil
}

func (r *CustomerRepo) FindByEmail(_ context.Context, email string) (*model.Customer, error) {
	return r.first(func(c model.Customer) bool { return c.Email == email }), nil
}

func (r *CustomerRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	c, err := r.FindByEmail(ctx, email)
	return c != nil, err
}

func (r *CustomerRepo) FindByPhone(_ context.Context, phone string) (*model.Customer, error) {
	return r.first(func(c model.Customer) bool { return c.Phone != nil && *c.Phone == phone }), nil
}

func (r *CustomerRepo) SearchByFirstName(_ context.Context, firstName string) ([]model.Customer, error) {
	return r.filter(func(c model.Customer) bool { return containsFold(c.FirstName, firstName) }), nil
}

func (r *CustomerRepo) SearchByLastName(_ context.Context, lastName string) ([]model.Customer, error) {
	return r.filter(func(c model.Customer) bool { return containsFold(c.LastName, lastName) }), nil
}

func (r *CustomerRepo) SearchByFullName(_ context.Context, fullName string) ([]model.Customer, error) {
	return r.filter(func(c model.Customer) bool { return containsFold(c.FullName(), fullName) }), nil
}

func (r *CustomerRepo) SearchByAddress(_ context.Context, address string) ([]model.Customer, error) {
	return r.filter(func(c model.Customer) bool { return optContainsFold(c.Address, address) }), nil
}

func (r *CustomerRepo) FindWithOrders(_ context.Context) ([]model.Customer, error) {
	return r.filterWithOrders(true), nil
}

func (r *CustomerRepo) FindWithoutOrders(_ context.Context) ([]model.Customer, error) {
	return r.filterWithOrders(false), nil
}

func (r *CustomerRepo) filterWithOrders(want bool) []model.Customer {
	r.s.mu.RLock()
	owners := make(map[int64]bool, len(r.s.orders))
	for _, o := range r.s.orders {
		owners[o.CustomerID] = true
	}
	r.s.mu.RUnlock()
	return r.filter(func(c model.Customer) bool { return owners[c.ID] == want })
}

func (r *CustomerRepo) filter(keep func(model.Customer) bool) []model.Customer {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := sortedByID(r.s.customers, keep)
	for i := range rows {
		rows[i] = cloneCustomer(rows[i])
	}
	return rows
}

func (r *CustomerRepo) first(match func(model.Customer) bool) *model.Customer {
	rows := r.filter(match)
	if len(rows) == 0 {
		return nil
	}
	return &rows[0]
}
