package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/flicky/custorder-api/internal/model"
	"github.com/flicky/custorder-api/internal/repository"
)

// CustomerInput carries the mutable customer fields.
type CustomerInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     *string
	Address   *string
}

type CustomerService struct {
	customerRepo repository.CustomerRepository
}

func NewCustomerService(customerRepo repository.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

func (s *CustomerService) Create(ctx context.Context, in CustomerInput) (*model.Customer, error) {
	exists, err := s.customerRepo.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, duplicateEmail(in.Email)
	}

	customer := &model.Customer{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		Address:   in.Address,
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, duplicateEmail(in.Email)
		}
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return customer, nil
}

func (s *CustomerService) Update(ctx context.Context, id int64, in CustomerInput) (*model.Customer, error) {
	customer, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != customer.Email {
		exists, err := s.customerRepo.ExistsByEmail(ctx, in.Email)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if exists {
			return nil, duplicateEmail(in.Email)
		}
	}

	customer.FirstName = in.FirstName
	customer.LastName = in.LastName
	customer.Email = in.Email
	customer.Phone = in.Phone
	customer.Address = in.Address

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, duplicateEmail(in.Email)
		case errors.Is(err, repository.ErrNoRows):
			return nil, notFound("Customer", id)
		}
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return customer, nil
}

// Delete removes the customer together with its orders.
func (s *CustomerService) Delete(ctx context.Context, id int64) error {
	if _, err := s.mustGet(ctx, id); err != nil {
		return err
	}
	if err := s.customerRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return notFound("Customer", id)
		}
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}

func (s *CustomerService) GetAll(ctx context.Context) ([]model.Customer, error) {
	return s.customerRepo.FindAll(ctx)
}

// GetByID returns nil, nil when no customer has the id.
func (s *CustomerService) GetByID(ctx context.Context, id int64) (*model.Customer, error) {
	return s.customerRepo.FindByID(ctx, id)
}

func (s *CustomerService) GetByEmail(ctx context.Context, email string) (*model.Customer, error) {
	return s.customerRepo.FindByEmail(ctx, email)
}

func (s *CustomerService) GetByPhone(ctx context.Context, phone string) (*model.Customer, error) {
	return s.customerRepo.FindByPhone(ctx, phone)
}

func (s *CustomerService) SearchByName(ctx context.Context, name string) ([]model.Customer, error) {
	return s.customerRepo.SearchByFullName(ctx, name)
}

func (s *CustomerService) SearchByFirstName(ctx context.Context, firstName string) ([]model.Customer, error) {
	return s.customerRepo.SearchByFirstName(ctx, firstName)
}

func (s *CustomerService) SearchByLastName(ctx context.Context, lastName string) ([]model.Customer, error) {
	return s.customerRepo.SearchByLastName(ctx, lastName)
}

func (s *CustomerService) SearchByAddress(ctx context.Context, address string) ([]model.Customer, error) {
	return s.customerRepo.SearchByAddress(ctx, address)
}

func (s *CustomerService) WithOrders(ctx context.Context) ([]model.Customer, error) {
	return s.customerRepo.FindWithOrders(ctx)
}

func (s *CustomerService) WithoutOrders(ctx context.Context) ([]model.Customer, error) {
	return s.customerRepo.FindWithoutOrders(ctx)
}

func (s *CustomerService) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.customerRepo.ExistsByEmail(ctx, email)
}

func (s *CustomerService) mustGet(ctx context.Context, id int64) (*model.Customer, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	if customer == nil {
		return nil, notFound("Customer", id)
	}
	return customer, nil
}

func duplicateEmail(email string) error {
	return fmt.Errorf("%w: customer with email %s already exists", ErrDuplicateKey, email)
}
