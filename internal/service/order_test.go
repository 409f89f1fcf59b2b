package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/flicky/custorder-api/internal/events"
	"github.com/flicky/custorder-api/internal/logger"
	"github.com/flicky/custorder-api/internal/model"
	"github.com/flicky/custorder-api/internal/repository"
	"github.com/flicky/custorder-api/internal/repository/memstore"
)

func seedCustomer(t *testing.T, f *fixture) *model.Customer {
	t.Helper()
	c, err := f.customers.Create(context.Background(), johnDoe())
	require.NoError(t, err)
	return c
}

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestOrderService_Create(t *testing.T) {
	f := newFixture()
	c := seedCustomer(t, f)

	o, err := f.orders.Create(context.Background(), c.ID, strPtr("123 Main St"), amount("999.99"))
	require.NoError(t, err)
	assert.NotZero(t, o.ID)
	assert.Equal(t, model.OrderStatusPending, o.Status)
	assert.Equal(t, f.now, o.OrderDate)
	assert.Equal(t, "999.99", o.TotalAmount.StringFixed(2))
	assert.Equal(t, []events.EventType{events.OrderCreated}, f.publisher.types())
}

func TestOrderService_Create_DefaultsTotal(t *testing.T) {
	f := newFixture()
	c := seedCustomer(t, f)

	o, err := f.orders.Create(context.Background(), c.ID, nil, nil)
	require.NoError(t, err)
	assert.True(t, o.TotalAmount.IsZero())
	assert.Nil(t, o.ShippingAddress)
}

func TestOrderService_Create_Rejects(t *testing.T) {
	f := newFixture()
	c := seedCustomer(t, f)
	ctx := context.Background()

	_, err := f.orders.Create(ctx, c.ID+100, nil, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.orders.Create(ctx, c.ID, nil, amount("-0.01"))
	assert.ErrorIs(t, err, ErrValidation)

	all, err := f.orders.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, f.publisher.types())
}

// staleCustomers still finds a customer that the order store no longer has.
type staleCustomers struct {
	repository.CustomerRepository
}

func (staleCustomers) FindByID(_ context.Context, id int64) (*model.Customer, error) {
	return &model.Customer{ID: id, FirstName: "Gone", LastName: "Away", Email: "gone@example.com"}, nil
}

func TestOrderService_Create_CustomerDeletedBeforeInsert(t *testing.T) {
	publisher := &recordingPublisher{}
	orders := NewOrderService(memstore.New().Orders(), NewCustomerService(staleCustomers{}), publisher)

	_, err := orders.Create(context.Background(), 5, nil, nil)

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Customer not found with id: 5", nf.Error())
	assert.Empty(t, publisher.types())
}

func TestOrderService_Create_PublishFailureIsLogged(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	restore := logger.Replace(zap.New(core))
	defer restore()

	f := newFixture()
	f.publisher.err = errBroker
	c := seedCustomer(t, f)

	o, err := f.orders.Create(context.Background(), c.ID, nil, nil)
	require.NoError(t, err)
	assert.NotZero(t, o.ID)

	logs := observed.FilterMessage("publish order event").All()
	require.Len(t, logs, 1)
	assert.Equal(t, "order.created", logs[0].ContextMap()["event"])
}

func TestOrderService_Cancel(t *testing.T) {
	statuses := []model.OrderStatus{
		model.OrderStatusPending, model.OrderStatusConfirmed, model.OrderStatusProcessing,
		model.OrderStatusShipped, model.OrderStatusCancelled, model.OrderStatusRefunded,
	}
	for _, status := range statuses {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture()
			c := seedCustomer(t, f)
			ctx := context.Background()

			o, err := f.orders.Create(ctx, c.ID, nil, nil)
			require.NoError(t, err)
			_, err = f.orders.UpdateStatus(ctx, o.ID, status)
			require.NoError(t, err)

			cancelled, err := f.orders.Cancel(ctx, o.ID)
			require.NoError(t, err)
			assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)
		})
	}
}

func TestOrderService_Cancel_Delivered(t *testing.T) {
	f := newFixture()
	c := seedCustomer(t, f)
	ctx := context.Background()

	o, err := f.orders.Create(ctx, c.ID, nil, nil)
	require.NoError(t, err)
	_, err = f.orders.UpdateStatus(ctx, o.ID, model.OrderStatusDelivered)
	require.NoError(t, err)

	_, err = f.orders.Cancel(ctx, o.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	got, err := f.orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusDelivered, got.Status)
	assert.Equal(t, []events.EventType{events.OrderCreated, events.OrderStatusChanged}, f.publisher.types())
}

func TestOrderService_AbsentID(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.orders.UpdateStatus(ctx, 1, model.OrderStatusShipped)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.orders.UpdateTotal(ctx, 1, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.orders.Cancel(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.orders.Delete(ctx, 1), ErrNotFound)

	o, err := f.orders.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, o)
}

func TestOrderService_UpdateTotal(t *testing.T) {
	f := newFixture()
	c := seedCustomer(t, f)
	ctx := context.Background()

	o, err := f.orders.Create(ctx, c.ID, nil, nil)
	require.NoError(t, err)

	_, err = f.orders.UpdateTotal(ctx, o.ID, decimal.NewFromInt(-5))
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := f.orders.UpdateTotal(ctx, o.ID, decimal.RequireFromString("42.10"))
	require.NoError(t, err)
	assert.Equal(t, "42.10", updated.TotalAmount.StringFixed(2))
}

func TestOrderService_TotalSalesExcludesCancelled(t *testing.T) {
	f := newFixture()
	c := seedCustomer(t, f)
	ctx := context.Background()

	o, err := f.orders.Create(ctx, c.ID, nil, amount("999.99"))
	require.NoError(t, err)

	total, err := f.orders.TotalSales(ctx)
	require.NoError(t, err)
	assert.Equal(t, "999.99", total.StringFixed(2))

	_, err = f.orders.Cancel(ctx, o.ID)
	require.NoError(t, err)

	total, err = f.orders.TotalSales(ctx)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestOrderService_GetRecent(t *testing.T) {
	f := newFixture()
	c := seedCustomer(t, f)
	ctx := context.Background()

	old, err := f.orders.Create(ctx, c.ID, nil, nil)
	require.NoError(t, err)

	f.now = f.now.Add(31 * 24 * time.Hour)
	fresh, err := f.orders.Create(ctx, c.ID, nil, nil)
	require.NoError(t, err)

	recent, err := f.orders.GetRecent(ctx)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, fresh.ID, recent[0].ID)
	assert.NotEqual(t, old.ID, recent[0].ID)
}

func TestOrderService_RangeValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	start, end := f.now, f.now.Add(-time.Hour)

	_, err := f.orders.GetByDateRange(ctx, start, end)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.orders.TotalSalesBetween(ctx, start, end)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.orders.GetByAmountRange(ctx, decimal.NewFromInt(10), decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.orders.GetByCustomerAndDateRange(ctx, 1, start, end)
	assert.ErrorIs(t, err, ErrValidation)

	res, err := f.orders.GetByDateRange(ctx, end, start)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestOrderService_Reports(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := seedCustomer(t, f)
	b, err := f.customers.Create(ctx, CustomerInput{FirstName: "Jane", LastName: "Smith", Email: "jane@example.com"})
	require.NoError(t, err)

	_, err = f.orders.Create(ctx, a.ID, nil, amount("100"))
	require.NoError(t, err)
	_, err = f.orders.Create(ctx, b.ID, nil, amount("10"))
	require.NoError(t, err)
	_, err = f.orders.Create(ctx, b.ID, nil, amount("20"))
	require.NoError(t, err)

	byCount, err := f.orders.TopCustomersByOrderCount(ctx)
	require.NoError(t, err)
	require.Len(t, byCount, 2)
	assert.Equal(t, b.ID, byCount[0].CustomerID)

	bySpent, err := f.orders.TopCustomersByTotalSpent(ctx)
	require.NoError(t, err)
	require.Len(t, bySpent, 2)
	assert.Equal(t, a.ID, bySpent[0].CustomerID)

	monthly, err := f.orders.MonthlySales(ctx)
	require.NoError(t, err)
	require.Len(t, monthly, 1)
	assert.Equal(t, model.MonthlySales{Year: 2024, Month: 6, Total: monthly[0].Total, Count: 3}, monthly[0])
	assert.Equal(t, "130.00", monthly[0].Total.StringFixed(2))

	pending, err := f.orders.CountByStatus(ctx, model.OrderStatusPending)
	require.NoError(t, err)
	assert.Equal(t, int64(3), pending)

	forB, err := f.orders.GetByCustomerAndStatus(ctx, b.ID, model.OrderStatusPending)
	require.NoError(t, err)
	assert.Len(t, forB, 2)
}
