package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/custorder-api/internal/model"
)

func johnDoe() CustomerInput {
	return CustomerInput{
		FirstName: "John", LastName: "Doe", Email: "john.doe@example.com",
		Phone: strPtr("+1234567890"), Address: strPtr("123 Main St, New York, NY 10001"),
	}
}

func TestCustomerService_Create(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	c, err := f.customers.Create(ctx, johnDoe())
	require.NoError(t, err)
	assert.NotZero(t, c.ID)
	assert.False(t, c.CreatedAt.IsZero())
	assert.False(t, c.UpdatedAt.Before(c.CreatedAt))

	got, err := f.customers.GetByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "John", got.FirstName)
	assert.Equal(t, "john.doe@example.com", got.Email)
	assert.Equal(t, "+1234567890", *got.Phone)
}

func TestCustomerService_Create_DuplicateEmail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.customers.Create(ctx, johnDoe())
	require.NoError(t, err)

	in := johnDoe()
	in.FirstName = "Johnny"
	_, err = f.customers.Create(ctx, in)
	assert.ErrorIs(t, err, ErrDuplicateKey)

	all, err := f.customers.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCustomerService_GetByID_Absent(t *testing.T) {
	f := newFixture()
	c, err := f.customers.GetByID(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestCustomerService_Update(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	john, err := f.customers.Create(ctx, johnDoe())
	require.NoError(t, err)
	_, err = f.customers.Create(ctx, CustomerInput{FirstName: "Jane", LastName: "Smith", Email: "jane@example.com"})
	require.NoError(t, err)

	t.Run("same email is not a conflict", func(t *testing.T) {
		in := johnDoe()
		in.Address = nil
		updated, err := f.customers.Update(ctx, john.ID, in)
		require.NoError(t, err)
		assert.Nil(t, updated.Address)
	})

	t.Run("email of another customer", func(t *testing.T) {
		in := johnDoe()
		in.Email = "jane@example.com"
		_, err := f.customers.Update(ctx, john.ID, in)
		assert.ErrorIs(t, err, ErrDuplicateKey)
	})

	t.Run("absent id", func(t *testing.T) {
		_, err := f.customers.Update(ctx, 404, johnDoe())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCustomerService_Delete_CascadesOrders(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	c, err := f.customers.Create(ctx, johnDoe())
	require.NoError(t, err)
	o, err := f.orders.Create(ctx, c.ID, nil, nil)
	require.NoError(t, err)

	require.NoError(t, f.customers.Delete(ctx, c.ID))

	got, err := f.orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	err = f.customers.Delete(ctx, c.ID)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Customer", nf.Entity)
}

func TestCustomerService_Searches(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	john, err := f.customers.Create(ctx, johnDoe())
	require.NoError(t, err)
	jane, err := f.customers.Create(ctx, CustomerInput{FirstName: "Jane", LastName: "Smith", Email: "jane@example.com", Address: strPtr("456 Oak Ave, Los Angeles")})
	require.NoError(t, err)
	_, err = f.orders.Create(ctx, jane.ID, nil, nil)
	require.NoError(t, err)

	byName, err := f.customers.SearchByName(ctx, "john doe")
	require.NoError(t, err)
	assert.Equal(t, []int64{john.ID}, ids(byName))

	byAddr, err := f.customers.SearchByAddress(ctx, "oak")
	require.NoError(t, err)
	assert.Equal(t, []int64{jane.ID}, ids(byAddr))

	with, err := f.customers.WithOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{jane.ID}, ids(with))

	without, err := f.customers.WithoutOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{john.ID}, ids(without))

	exists, err := f.customers.ExistsByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	byPhone, err := f.customers.GetByPhone(ctx, "+1234567890")
	require.NoError(t, err)
	require.NotNil(t, byPhone)
	assert.Equal(t, john.ID, byPhone.ID)
}

func ids(customers []model.Customer) []int64 {
	out := make([]int64, 0, len(customers))
	for _, c := range customers {
		out = append(out, c.ID)
	}
	return out
}
