package service

import (
	"context"
	"errors"
	"fmt"

	"crmbackend/internal/model"
	"crmbackend/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CustomerRequest struct {
	Name       string `json:"name" binding:"required"`
	OrgNumber  string `json:"org_number"`
	Email      string `json:"email" binding:"omitempty,email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
}

// --- Interface ---

type CustomerService interface {
	CreateCustomer(ctx context.Context, req CustomerRequest) (*model.Customer, error)
	GetCustomer(ctx context.Context, id string) (*model.Customer, error)
	ListCustomers(ctx context.Context, search string, page, limit int) ([]model.Customer, int64, error)
	UpdateCustomer(ctx context.Context, id string, req CustomerRequest) (*model.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
}

type customerService struct {
	customerRepo repository.CustomerRepository
}

func NewCustomerService(customerRepo repository.CustomerRepository) CustomerService {
	return &customerService{customerRepo: customerRepo}
}

func (s *customerService) CreateCustomer(ctx context.Context, req CustomerRequest) (*model.Customer, error) {
	customer := &model.Customer{
		Name:       req.Name,
		OrgNumber:  req.OrgNumber,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		PostalCode: req.PostalCode,
		City:       req.City,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return customer, nil
}

func (s *customerService) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid customer id: %w", err)
	}
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, errors.New("customer not found")
	}
	return customer, nil
}

func (s *customerService) ListCustomers(ctx context.Context, search string, page, limit int) ([]model.Customer, int64, error) {
	return s.customerRepo.List(ctx, search, page, limit)
}

func (s *customerService) UpdateCustomer(ctx context.Context, id string, req CustomerRequest) (*model.Customer, error) {
	customer, err := s.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	customer.Name = req.Name
	customer.OrgNumber = req.OrgNumber
	customer.Email = req.Email
	customer.Phone = req.Phone
	customer.Address = req.Address
	customer.PostalCode = req.PostalCode
	customer.City = req.City

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	return customer, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, id string) error {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid customer id: %w", err)
	}
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		return errors.New("customer not found")
	}
	return s.customerRepo.Delete(ctx, customerID)
}
