package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	sharedQuery "github.com/davicafu/tasksense/internal/shared/infra/platform/query"
	userDomain "github.com/davicafu/tasksense/internal/user/domain"
)

// InMemoryUserRepo simula UserRepository.
// FailGet y FailList hacen fallar GetByID y ListAll con ese error.
type InMemoryUserRepo struct {
	Users    map[int64]*userDomain.User
	FailGet  error
	FailList error
	GetCalls int
	nextID   int64
	mu       sync.Mutex
}

var _ userDomain.UserRepository = (*InMemoryUserRepo)(nil)

func NewInMemoryUserRepo() *InMemoryUserRepo {
	return &InMemoryUserRepo{Users: make(map[int64]*userDomain.User)}
}

func (r *InMemoryUserRepo) Create(ctx context.Context, u *userDomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.Users {
		if strings.EqualFold(existing.Email, u.Email) {
			return userDomain.ErrUserAlreadyExists
		}
	}
	r.nextID++
	u.ID = r.nextID
	copied := *u
	r.Users[u.ID] = &copied
	return nil
}

// Add inserta un usuario ya construido; atajo para preparar tests.
func (r *InMemoryUserRepo) Add(name, email string) *userDomain.User {
	u := &userDomain.User{Name: name, Email: email}
	_ = r.Create(context.Background(), u)
	return u
}

func (r *InMemoryUserRepo) GetByID(ctx context.Context, id int64) (*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.GetCalls++
	if r.FailGet != nil {
		return nil, r.FailGet
	}
	u, ok := r.Users[id]
	if !ok {
		return nil, userDomain.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *InMemoryUserRepo) List(ctx context.Context, page sharedQuery.OffsetPagination) ([]*userDomain.User, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return paginate(all, page), nil
}

func (r *InMemoryUserRepo) ListAll(ctx context.Context) ([]*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailList != nil {
		return nil, r.FailList
	}
	list := make([]*userDomain.User, 0, len(r.Users))
	for _, u := range r.Users {
		copied := *u
		list = append(list, &copied)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func paginate[T any](list []T, page sharedQuery.OffsetPagination) []T {
	if page.Limit <= 0 {
		return list
	}
	start := page.Offset
	if start > len(list) {
		return []T{}
	}
	end := start + page.Limit
	if end > len(list) {
		end = len(list)
	}
	return list[start:end]
}
