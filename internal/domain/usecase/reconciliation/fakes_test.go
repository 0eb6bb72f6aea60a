package reconciliation

import (
	"context"
	"sync"
	"time"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/persistence"
)

// memoryLedger is an in-memory unit of work whose compare-and-swap mirrors the
// conditional UPDATE used by the gorm repository
type memoryLedger struct {
	mu        sync.Mutex
	attempts  map[string]*entity.PaymentAttempt
	orders    map[uint64]*entity.Order
	anomalies []*entity.Anomaly
	completed int
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{
		attempts: make(map[string]*entity.PaymentAttempt),
		orders:   make(map[uint64]*entity.Order),
	}
}

func (m *memoryLedger) putOrder(order *entity.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = order
}

func (m *memoryLedger) putAttempt(attempt *entity.PaymentAttempt) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts[attempt.CorrelationID] = attempt
}

func (m *memoryLedger) attempt(id string) entity.PaymentAttempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.attempts[id]
}

func (m *memoryLedger) order(id uint64) entity.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	order := *m.orders[id]
	order.Items = append([]entity.OrderItem(nil), order.Items...)
	return order
}

func (m *memoryLedger) anomalyCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.anomalies)
}

func (m *memoryLedger) Do(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (m *memoryLedger) GetAttemptRepository(ctx context.Context) persistence.PaymentAttemptRepository {
	return (*memoryAttempts)(m)
}

func (m *memoryLedger) GetOrderRepository(ctx context.Context) persistence.OrderRepository {
	return (*memoryOrders)(m)
}

func (m *memoryLedger) GetAnomalyRepository(ctx context.Context) persistence.AnomalyRepository {
	return (*memoryAnomalies)(m)
}

type memoryAttempts memoryLedger

func (r *memoryAttempts) Create(ctx context.Context, attempt *entity.PaymentAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.attempts[attempt.CorrelationID]; exists {
		return errs.ErrDuplicateAttempt
	}
	stored := *attempt
	r.attempts[attempt.CorrelationID] = &stored
	return nil
}

func (r *memoryAttempts) GetByCorrelationID(ctx context.Context, correlationID string) (*entity.PaymentAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	attempt, ok := r.attempts[correlationID]
	if !ok {
		return nil, errs.ErrAttemptNotFound
	}
	copied := *attempt
	return &copied, nil
}

func (r *memoryAttempts) TransitionFromPending(ctx context.Context, correlationID string, outcome entity.Outcome, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	attempt, ok := r.attempts[correlationID]
	if !ok {
		return false, nil
	}
	return attempt.Apply(outcome, at), nil
}

func (r *memoryAttempts) ListPending(ctx context.Context, olderThan time.Time, limit int) ([]*entity.PaymentAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var pending []*entity.PaymentAttempt
	for _, attempt := range r.attempts {
		if attempt.Status == entity.StatusPending && attempt.CreatedAt.Before(olderThan) {
			copied := *attempt
			pending = append(pending, &copied)
		}
	}
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (r *memoryAttempts) ListByOrder(ctx context.Context, orderID uint64) ([]*entity.PaymentAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var attempts []*entity.PaymentAttempt
	for _, attempt := range r.attempts {
		if attempt.OrderID == orderID {
			copied := *attempt
			attempts = append(attempts, &copied)
		}
	}
	return attempts, nil
}

type memoryOrders memoryLedger

func (r *memoryOrders) GetByID(ctx context.Context, id uint64) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, errs.ErrOrderNotFound
	}
	copied := *order
	copied.Items = append([]entity.OrderItem(nil), order.Items...)
	return &copied, nil
}

func (r *memoryOrders) Create(ctx context.Context, order *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = order
	return nil
}

func (r *memoryOrders) SaveBilling(ctx context.Context, orderID uint64, method entity.PaymentMethod, billing entity.Billing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return errs.ErrOrderNotFound
	}
	order.PaymentMethod = method
	order.Billing = billing
	return nil
}

func (r *memoryOrders) MarkCompleted(ctx context.Context, orderID uint64, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return false, errs.ErrOrderNotFound
	}
	changed := order.MarkCompleted(at)
	if changed {
		r.completed++
	}
	return changed, nil
}

func (r *memoryOrders) MarkPaymentFailed(ctx context.Context, orderID uint64, status entity.PaymentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return errs.ErrOrderNotFound
	}
	if !order.IsCompleted() {
		order.PaymentStatus = status
	}
	return nil
}

type memoryAnomalies memoryLedger

func (r *memoryAnomalies) Record(ctx context.Context, anomaly *entity.Anomaly) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.anomalies = append(r.anomalies, anomaly)
	return nil
}

func (r *memoryAnomalies) ListByCorrelationID(ctx context.Context, correlationID string) ([]*entity.Anomaly, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []*entity.Anomaly
	for _, anomaly := range r.anomalies {
		if anomaly.CorrelationID == correlationID {
			found = append(found, anomaly)
		}
	}
	return found, nil
}
