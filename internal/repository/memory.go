package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/kudzaim/kiosk-commerce/internal/models"
)

// MemoryStore is an in-memory implementation of every repository interface,
// used by tests and local development without Postgres.
type MemoryStore struct {
	mu           sync.RWMutex
	nextOutboxID int64
	ordersByID   map[string]models.Order
	productsByID map[string]models.Product
	usersByID    map[string]models.User
	outboxByID   map[int64]models.OutboxMessage
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextOutboxID: 1,
		ordersByID:   make(map[string]models.Order),
		productsByID: make(map[string]models.Product),
		usersByID:    make(map[string]models.User),
		outboxByID:   make(map[int64]models.OutboxMessage),
	}
}

// Orders returns the store as an OrderRepository
func (m *MemoryStore) Orders() OrderRepository { return (*memoryOrders)(m) }

// Products returns the store as a ProductRepository
func (m *MemoryStore) Products() ProductRepository { return (*memoryProducts)(m) }

// Users returns the store as a UserRepository
func (m *MemoryStore) Users() UserRepository { return (*memoryUsers)(m) }

// Outbox returns the store as an OutboxRepository
func (m *MemoryStore) Outbox() OutboxRepository { return (*memoryOutbox)(m) }

func (m *MemoryStore) addOutboxLocked(event *models.OutboxMessage) {
	event.ID = m.nextOutboxID
	m.nextOutboxID++
	m.outboxByID[event.ID] = *event
}

type memoryOrders MemoryStore

var _ OrderRepository = (*memoryOrders)(nil)

func (m *memoryOrders) Create(ctx context.Context, order *models.Order, event *models.OutboxMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ordersByID[order.ID] = *order

	if event != nil {
		(*MemoryStore)(m).addOutboxLocked(event)
	}

	return nil
}

func (m *memoryOrders) GetByID(ctx context.Context, id string) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.ordersByID[id]
	if !ok {
		return nil, ErrNotFound
	}

	cp := o
	return &cp, nil
}

func (m *memoryOrders) GetByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	return m.findOne(func(o models.Order) bool { return o.OrderID == orderID })
}

func (m *memoryOrders) GetByReference(ctx context.Context, reference string) (*models.Order, error) {
	return m.findOne(func(o models.Order) bool { return o.PaynowReference == reference })
}

func (m *memoryOrders) findOne(match func(models.Order) bool) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, o := range m.ordersByID {
		if match(o) {
			cp := o
			return &cp, nil
		}
	}

	return nil, ErrNotFound
}

func (m *memoryOrders) GetAll(ctx context.Context, limit, offset int) ([]*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]*models.Order, 0, len(m.ordersByID))
	for _, o := range m.ordersByID {
		cp := o
		all = append(all, &cp)
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return []*models.Order{}, nil
	}
	all = all[offset:]

	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}

	return all, nil
}

func (m *memoryOrders) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.ordersByID), nil
}

func (m *memoryOrders) TransitionStatus(ctx context.Context, id string, to models.OrderStatus, event *models.OutboxMessage) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.ordersByID[id]
	if !ok {
		return false, ErrNotFound
	}

	if o.Status != models.OrderStatusPendingPayment {
		return false, nil
	}

	o.Status = to
	o.UpdatedAt = models.GetCurrentTime()
	m.ordersByID[id] = o

	if event != nil {
		(*MemoryStore)(m).addOutboxLocked(event)
	}

	return true, nil
}

func (m *memoryOrders) UpdatePaymentMethod(ctx context.Context, id string, method models.PaymentMethod) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.ordersByID[id]
	if !ok {
		return ErrNotFound
	}

	o.PaymentMethod = method
	o.UpdatedAt = models.GetCurrentTime()
	m.ordersByID[id] = o
	return nil
}

func (m *memoryOrders) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ordersByID[id]; !ok {
		return ErrNotFound
	}

	delete(m.ordersByID, id)
	return nil
}

type memoryProducts MemoryStore

var _ ProductRepository = (*memoryProducts)(nil)

func (m *memoryProducts) Create(ctx context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.productsByID[p.ID] = *p
	return nil
}

func (m *memoryProducts) GetByID(ctx context.Context, id string) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.productsByID[id]
	if !ok {
		return nil, ErrNotFound
	}

	cp := p
	return &cp, nil
}

func (m *memoryProducts) GetAll(ctx context.Context) ([]*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]*models.Product, 0, len(m.productsByID))
	for _, p := range m.productsByID {
		cp := p
		all = append(all, &cp)
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	return all, nil
}

func (m *memoryProducts) Update(ctx context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.productsByID[p.ID]; !ok {
		return ErrNotFound
	}

	m.productsByID[p.ID] = *p
	return nil
}

func (m *memoryProducts) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.productsByID[id]; !ok {
		return ErrNotFound
	}

	delete(m.productsByID, id)
	return nil
}

type memoryUsers MemoryStore

var _ UserRepository = (*memoryUsers)(nil)

func (m *memoryUsers) Create(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.usersByID {
		if existing.Email == u.Email {
			return ErrDuplicate
		}
	}

	m.usersByID[u.ID] = *u
	return nil
}

func (m *memoryUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.usersByID[id]
	if !ok {
		return nil, ErrNotFound
	}

	cp := u
	return &cp, nil
}

func (m *memoryUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.usersByID {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}

	return nil, ErrNotFound
}

func (m *memoryUsers) GetAll(ctx context.Context) ([]*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]*models.User, 0, len(m.usersByID))
	for _, u := range m.usersByID {
		cp := u
		all = append(all, &cp)
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	return all, nil
}

func (m *memoryUsers) Update(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.usersByID[u.ID]
	if !ok {
		return ErrNotFound
	}

	for id, other := range m.usersByID {
		if id != u.ID && other.Email == u.Email {
			return ErrDuplicate
		}
	}

	existing.Name = u.Name
	existing.Email = u.Email
	existing.Role = u.Role
	existing.Status = u.Status
	existing.UpdatedAt = models.GetCurrentTime()
	m.usersByID[u.ID] = existing
	return nil
}

func (m *memoryUsers) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.usersByID[id]
	if !ok {
		return ErrNotFound
	}

	u.PasswordHash = passwordHash
	u.IsFirstLogin = false
	u.UpdatedAt = models.GetCurrentTime()
	m.usersByID[id] = u
	return nil
}

func (m *memoryUsers) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.usersByID[id]; !ok {
		return ErrNotFound
	}

	delete(m.usersByID, id)
	return nil
}

type memoryOutbox MemoryStore

var _ OutboxRepository = (*memoryOutbox)(nil)

func (m *memoryOutbox) GetPendingMessages(ctx context.Context, limit int) ([]*models.OutboxMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pending := make([]*models.OutboxMessage, 0)
	for _, msg := range m.outboxByID {
		if msg.Status == models.OutboxStatusPending || msg.Status == models.OutboxStatusProcessing {
			cp := msg
			pending = append(pending, &cp)
		}
	}

	sort.Slice(pending, func(i, j int) bool {
		return pending[i].ID < pending[j].ID
	})

	if limit > 0 && limit < len(pending) {
		pending = pending[:limit]
	}

	return pending, nil
}

func (m *memoryOutbox) MarkAsProcessing(ctx context.Context, id int64) error {
	return m.update(id, func(msg *models.OutboxMessage) {
		msg.Status = models.OutboxStatusProcessing
		msg.ProcessingAttempts++
	})
}

func (m *memoryOutbox) MarkAsCompleted(ctx context.Context, id int64) error {
	return m.update(id, func(msg *models.OutboxMessage) {
		now := models.GetCurrentTime()
		msg.Status = models.OutboxStatusCompleted
		msg.ProcessedAt = &now
	})
}

func (m *memoryOutbox) MarkAsFailed(ctx context.Context, id int64, reason string) error {
	return m.update(id, func(msg *models.OutboxMessage) {
		msg.Status = models.OutboxStatusFailed
		msg.LastError = &reason
	})
}

func (m *memoryOutbox) update(id int64, apply func(*models.OutboxMessage)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	msg, ok := m.outboxByID[id]
	if !ok {
		return ErrNotFound
	}

	apply(&msg)
	m.outboxByID[id] = msg
	return nil
}
