package memory

import (
	"context"
	"sync"

	domaincontact "glampstay/internal/domain/contact"
)

type ContactRepository struct {
	mu    sync.Mutex
	items []domaincontact.Message
}

func NewContactRepository() *ContactRepository {
	return &ContactRepository{}
}

func (r *ContactRepository) Save(ctx context.Context, msg *domaincontact.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *msg
	stored.ClearEvents()
	r.items = append(r.items, stored)
	return nil
}

// Messages returns stored messages oldest first.
func (r *ContactRepository) Messages() []domaincontact.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domaincontact.Message(nil), r.items...)
}

var _ domaincontact.Repository = (*ContactRepository)(nil)
