package custorder

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/custorder-api/internal/model"
	"github.com/flicky/custorder-api/internal/service"
)

// fakeRepo mirrors the upsert and cascade rules of the SQL repository.
type fakeRepo struct {
	mu        sync.Mutex
	nextID    int64
	customers map[int64]model.Customer
	orders    map[int64]model.Order
	err       error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{customers: map[int64]model.Customer{}, orders: map[int64]model.Order{}}
}

func (r *fakeRepo) SaveCustomer(_ context.Context, c *model.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for id, existing := range r.customers {
		if existing.Email == c.Email && id != c.ID {
			return ErrDuplicate
		}
	}
	if _, ok := r.customers[c.ID]; !ok {
		r.nextID++
		c.ID = r.nextID
	}
	r.customers[c.ID] = *c
	return nil
}

func (r *fakeRepo) ListCustomers(context.Context) ([]model.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Customer{}
	for _, c := range r.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, r.err
}

func (r *fakeRepo) FindCustomer(_ context.Context, id int64) (*model.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	c, ok := r.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *fakeRepo) DeleteCustomer(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.customers, id)
	for oid, o := range r.orders {
		if o.CustomerID == id {
			delete(r.orders, oid)
		}
	}
	return r.err
}

func (r *fakeRepo) SaveOrder(_ context.Context, o *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.customers[o.CustomerID]; !ok {
		return ErrUnknownCustomer
	}
	if _, ok := r.orders[o.ID]; !ok {
		r.nextID++
		o.ID = r.nextID
	}
	r.orders[o.ID] = *o
	return nil
}

func (r *fakeRepo) ListOrders(context.Context) ([]model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Order{}
	for _, o := range r.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, r.err
}

func (r *fakeRepo) FindOrder(_ context.Context, id int64) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r *fakeRepo) DeleteOrder(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.orders, id)
	return r.err
}

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	return NewService(repo, WithClock(func() time.Time { return fixedNow })), repo
}

func TestService_Customers(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	saved, err := svc.SaveCustomer(ctx, &model.Customer{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"})
	require.NoError(t, err)
	require.NotZero(t, saved.ID)

	got, err := svc.GetCustomer(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got.Email)

	_, err = svc.SaveCustomer(ctx, &model.Customer{FirstName: "Eve", LastName: "X", Email: "ada@example.com"})
	assert.ErrorIs(t, err, service.ErrDuplicateKey)

	list, err := svc.ListCustomers(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	msg, err := svc.DeleteCustomer(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Deleted Customer with ID: 1", msg)

	_, err = svc.GetCustomer(ctx, saved.ID)
	var nf *service.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Customer not found with id: 1", nf.Error())
}

func TestService_DeleteCustomer_Missing(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.DeleteCustomer(context.Background(), 77)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestService_SaveOrder_Defaults(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	c, err := svc.SaveCustomer(ctx, &model.Customer{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"})
	require.NoError(t, err)

	o, err := svc.SaveOrder(ctx, &model.Order{CustomerID: c.ID})
	require.NoError(t, err)
	assert.Equal(t, fixedNow, o.OrderDate)
	assert.Equal(t, model.OrderStatusPending, o.Status)
	assert.True(t, o.TotalAmount.IsZero())

	got, err := svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
}

func TestService_SaveOrder_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.SaveOrder(ctx, &model.Order{})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = svc.SaveOrder(ctx, &model.Order{CustomerID: 1, TotalAmount: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = svc.SaveOrder(ctx, &model.Order{CustomerID: 1, Status: "LOST"})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = svc.SaveOrder(ctx, &model.Order{CustomerID: 12})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestService_DeleteOrder_IsSilent(t *testing.T) {
	svc, _ := newTestService()

	msg, err := svc.DeleteOrder(context.Background(), 12345)
	require.NoError(t, err)
	assert.Equal(t, "Deleted", msg)

	_, err = svc.GetOrder(context.Background(), 12345)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestService_StoreError(t *testing.T) {
	svc, repo := newTestService()
	repo.err = errors.New("connection reset")

	_, err := svc.ListOrders(context.Background())
	assert.ErrorContains(t, err, "connection reset")
	assert.NotErrorIs(t, err, service.ErrNotFound)
}
