package uow

import (
	"context"

	domainbooking "glampstay/internal/domain/booking"
	domaincontact "glampstay/internal/domain/contact"
	domainproperty "glampstay/internal/domain/property"
	domainuser "glampstay/internal/domain/user"
)

// UnitOfWork groups the repositories touched by one command so their writes commit together.
type UnitOfWork interface {
	Properties() domainproperty.Repository
	Bookings() domainbooking.Repository
	Users() domainuser.Repository
	Contacts() domaincontact.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

type TxOptions struct {
	ReadOnly bool
}
