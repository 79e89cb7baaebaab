package mocks

import (
	"context"
	"sort"
	"sync"

	notificationDomain "github.com/davicafu/tasksense/internal/notification/domain"
	sharedQuery "github.com/davicafu/tasksense/internal/shared/infra/platform/query"
	suggestionDomain "github.com/davicafu/tasksense/internal/suggestion/domain"
)

// InMemorySuggestionRepo simula SuggestionRepository.
type InMemorySuggestionRepo struct {
	Items    map[int64]*suggestionDomain.Suggestion
	FailSave error
	nextID   int64
	mu       sync.Mutex
}

var _ suggestionDomain.SuggestionRepository = (*InMemorySuggestionRepo)(nil)

func NewInMemorySuggestionRepo() *InMemorySuggestionRepo {
	return &InMemorySuggestionRepo{Items: make(map[int64]*suggestionDomain.Suggestion)}
}

func (r *InMemorySuggestionRepo) Save(ctx context.Context, s *suggestionDomain.Suggestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailSave != nil {
		return r.FailSave
	}
	r.nextID++
	s.ID = r.nextID
	copied := *s
	r.Items[s.ID] = &copied
	return nil
}

func (r *InMemorySuggestionRepo) GetByID(ctx context.Context, id int64) (*suggestionDomain.Suggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.Items[id]
	if !ok {
		return nil, suggestionDomain.ErrSuggestionNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *InMemorySuggestionRepo) ListByOwner(ctx context.Context, userID int64, page sharedQuery.OffsetPagination) ([]*suggestionDomain.Suggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := []*suggestionDomain.Suggestion{}
	for _, s := range r.Items {
		if s.UserID == userID {
			copied := *s
			list = append(list, &copied)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return paginate(list, page), nil
}

func (r *InMemorySuggestionRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Items[id]; !ok {
		return suggestionDomain.ErrSuggestionNotFound
	}
	delete(r.Items, id)
	return nil
}

// All devuelve las sugerencias en orden de creación.
func (r *InMemorySuggestionRepo) All() []*suggestionDomain.Suggestion {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]*suggestionDomain.Suggestion, 0, len(r.Items))
	for _, s := range r.Items {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// InMemoryNotificationRepo simula NotificationRepository.
type InMemoryNotificationRepo struct {
	Items    map[int64]*notificationDomain.Notification
	FailSave error
	nextID   int64
	mu       sync.Mutex
}

var _ notificationDomain.NotificationRepository = (*InMemoryNotificationRepo)(nil)

func NewInMemoryNotificationRepo() *InMemoryNotificationRepo {
	return &InMemoryNotificationRepo{Items: make(map[int64]*notificationDomain.Notification)}
}

func (r *InMemoryNotificationRepo) Save(ctx context.Context, n *notificationDomain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailSave != nil {
		return r.FailSave
	}
	r.nextID++
	n.ID = r.nextID
	copied := *n
	r.Items[n.ID] = &copied
	return nil
}

func (r *InMemoryNotificationRepo) GetByID(ctx context.Context, id int64) (*notificationDomain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.Items[id]
	if !ok {
		return nil, notificationDomain.ErrNotificationNotFound
	}
	copied := *n
	return &copied, nil
}

func (r *InMemoryNotificationRepo) ListByOwner(ctx context.Context, userID int64, page sharedQuery.OffsetPagination) ([]*notificationDomain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := []*notificationDomain.Notification{}
	for _, n := range r.Items {
		if n.UserID == userID {
			copied := *n
			list = append(list, &copied)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return paginate(list, page), nil
}

func (r *InMemoryNotificationRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Items[id]; !ok {
		return notificationDomain.ErrNotificationNotFound
	}
	delete(r.Items, id)
	return nil
}

// ForUser devuelve los mensajes de un usuario en orden de creación.
func (r *InMemoryNotificationRepo) ForUser(userID int64) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []int64
	for id, n := range r.Items {
		if n.UserID == userID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.Items[id].Message)
	}
	return out
}

// InMemoryDeadLetter guarda los registros descartados en memoria.
type InMemoryDeadLetter struct {
	mu      sync.Mutex
	Records []suggestionDomain.SkippedRecord
}

func (d *InMemoryDeadLetter) Archive(ctx context.Context, rec suggestionDomain.SkippedRecord) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Records = append(d.Records, rec)
	return nil
}

func (d *InMemoryDeadLetter) Reasons() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.Records))
	for _, r := range d.Records {
		out = append(out, r.Reason)
	}
	return out
}
