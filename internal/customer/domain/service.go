package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/faktura/pkg/db/pagination"
)

type ListCustomerRequest struct {
	PageToken string
	PageSize  int32
	Name      string
	Email     string
}

type ListCustomerFilter struct {
	Name  string
	Email string
}

type ListCustomerResponse struct {
	pagination.PageInfo
	Customers []Customer `json:"customers"`
}

type CreateCustomerRequest struct {
	Name       string
	Email      string
	Company    string
	Phone      string
	Address    string
	City       string
	State      string
	PostalCode string
	Country    string
	Notes      string
}

// UpdateCustomerRequest enumerates the user-mutable customer fields.
// Nil means "leave unchanged".
type UpdateCustomerRequest struct {
	ID         string
	Name       *string
	Email      *string
	Company    *string
	Phone      *string
	Address    *string
	City       *string
	State      *string
	PostalCode *string
	Country    *string
	Notes      *string
}

type GetCustomerRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateCustomerRequest) (Customer, error)
	Update(context.Context, UpdateCustomerRequest) (Customer, error)
	Delete(ctx context.Context, id string) error
	List(context.Context, ListCustomerRequest) (ListCustomerResponse, error)
	GetByID(context.Context, GetCustomerRequest) (Customer, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
	ErrHasInvoices         = errors.New("customer_has_invoices")
)
