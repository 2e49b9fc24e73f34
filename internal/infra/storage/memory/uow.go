package memory

import (
	"context"
	"errors"
	"sync"

	"glampstay/internal/app/uow"
	domainbooking "glampstay/internal/domain/booking"
	domaincontact "glampstay/internal/domain/contact"
	domainproperty "glampstay/internal/domain/property"
	domainuser "glampstay/internal/domain/user"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
// Writing units run one at a time so an availability check and the save
// that follows it cannot interleave with another writer.
type Factory struct {
	PropertiesRepo domainproperty.Repository
	BookingsRepo   domainbooking.Repository
	UsersRepo      domainuser.Repository
	ContactsRepo   domaincontact.Repository

	writeSlot chan struct{}
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

func NewFactory(properties domainproperty.Repository, bookings domainbooking.Repository, users domainuser.Repository, contacts domaincontact.Repository) Factory {
	return Factory{
		PropertiesRepo: properties,
		BookingsRepo:   bookings,
		UsersRepo:      users,
		ContactsRepo:   contacts,
		writeSlot:      make(chan struct{}, 1),
	}
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.PropertiesRepo == nil || f.BookingsRepo == nil || f.UsersRepo == nil || f.ContactsRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	unit := &Unit{
		properties: f.PropertiesRepo,
		bookings:   f.BookingsRepo,
		users:      f.UsersRepo,
		contacts:   f.ContactsRepo,
	}
	if !opts.ReadOnly && f.writeSlot != nil {
		select {
		case f.writeSlot <- struct{}{}:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		slot := f.writeSlot
		unit.release = func() { <-slot }
	}
	return unit, nil
}

// Unit is a uow.UnitOfWork backed by in-memory stores. Writes are applied
// immediately, so Rollback only releases the write lock.
type Unit struct {
	properties domainproperty.Repository
	bookings   domainbooking.Repository
	users      domainuser.Repository
	contacts   domaincontact.Repository

	once    sync.Once
	release func()
}

func (u *Unit) Properties() domainproperty.Repository { return u.properties }
func (u *Unit) Bookings() domainbooking.Repository    { return u.bookings }
func (u *Unit) Users() domainuser.Repository          { return u.users }
func (u *Unit) Contacts() domaincontact.Repository    { return u.contacts }

func (u *Unit) Commit(ctx context.Context) error {
	u.done()
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	u.done()
	return nil
}

func (u *Unit) done() {
	u.once.Do(func() {
		if u.release != nil {
			u.release()
		}
	})
}
