package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"

	"glampstay/internal/app/uow"
	domainbooking "glampstay/internal/domain/booking"
	domaincontact "glampstay/internal/domain/contact"
	domainproperty "glampstay/internal/domain/property"
	domainuser "glampstay/internal/domain/user"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	PropertiesRepo domainproperty.Repository
	BookingsRepo   domainbooking.Repository
	UsersRepo      domainuser.Repository
	ContactsRepo   domaincontact.Repository
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// NewFactory builds every repository on db.
func NewFactory(db *mongo.Database) Factory {
	return Factory{
		DB:             db,
		PropertiesRepo: NewPropertyRepository(db),
		BookingsRepo:   NewBookingRepository(db),
		UsersRepo:      NewUserRepository(db),
		ContactsRepo:   NewContactRepository(db),
	}
}

// Begin starts a MongoDB session/transaction. Writing units use snapshot
// reads so the availability check sees the same data the commit is judged against.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(readconcern.Snapshot()).SetWriteConcern(f.DB.WriteConcern())
	if opts.ReadOnly {
		txnOpts = txnOpts.SetReadConcern(f.DB.ReadConcern())
	}
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		session:    session,
		properties: f.PropertiesRepo,
		bookings:   f.BookingsRepo,
		users:      f.UsersRepo,
		contacts:   f.ContactsRepo,
	}, nil
}

type Unit struct {
	session mongo.Session

	properties domainproperty.Repository
	bookings   domainbooking.Repository
	users      domainuser.Repository
	contacts   domaincontact.Repository
}

func (u *Unit) Properties() domainproperty.Repository { return u.properties }
func (u *Unit) Bookings() domainbooking.Repository    { return u.bookings }
func (u *Unit) Users() domainuser.Repository          { return u.users }
func (u *Unit) Contacts() domaincontact.Repository    { return u.contacts }

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}
