package service

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/msomdec/user-dashboard/internal/domain"
)

// UserService bridges dashboard intents to the remote API and keeps the local
// store in step with it. The store is only touched after the remote call
// succeeded, so a failed call leaves local state unchanged.
type UserService struct {
	store    domain.UserStore
	api      domain.UserAPI
	mapper   RemoteMapper
	pageSize int

	fetches singleflight.Group
	// idMu serialises id assignment with the Add that uses it, and with Reset.
	idMu sync.Mutex

	mu      sync.RWMutex
	loadErr error
}

// NewUserService creates a new UserService.
func NewUserService(store domain.UserStore, api domain.UserAPI, mapper RemoteMapper, pageSize int) *UserService {
	if pageSize < 1 {
		pageSize = domain.DefaultPageSize
	}
	return &UserService{
		store:    store,
		api:      api,
		mapper:   mapper,
		pageSize: pageSize,
	}
}

// FetchAll reloads every user from the remote API and replaces the local store
// on success. Concurrent calls share a single remote request, which runs
// detached from any one caller's cancellation; the client timeout bounds it.
// A caller whose ctx ends first gets ctx's error while the shared reload
// carries on for the others. It returns the number of users loaded.
func (s *UserService) FetchAll(ctx context.Context) (int, error) {
	shared := context.WithoutCancel(ctx)
	ch := s.fetches.DoChan("users", func() (any, error) {
		n, err := s.reload(shared)

		s.mu.Lock()
		s.loadErr = err
		s.mu.Unlock()
		return n, err
	})

	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%w: %w", domain.ErrFetch, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return 0, res.Err
		}
		return res.Val.(int), nil
	}
}

func (s *UserService) reload(ctx context.Context) (int, error) {
	remote, err := s.api.ListUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrFetch, err)
	}

	users := s.mapper.Map(remote)

	// Held so a reload cannot land between id assignment and Add in Create.
	s.idMu.Lock()
	defer s.idMu.Unlock()
	if err := s.store.Reset(users); err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrFetch, err)
	}
	return len(users), nil
}

// LoadError returns the error of the most recent FetchAll, or nil if it succeeded.
func (s *UserService) LoadError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// Create validates the fields, submits them upstream and, on success, adds the
// user locally with the next free id (largest existing id plus one).
func (s *UserService) Create(ctx context.Context, fields domain.UserFields) (domain.User, error) {
	if err := ValidateUserFields(fields); err != nil {
		return domain.User{}, err
	}

	if err := s.api.CreateUser(ctx, fields); err != nil {
		return domain.User{}, fmt.Errorf("%w: %w", domain.ErrCreate, err)
	}

	s.idMu.Lock()
	defer s.idMu.Unlock()

	user := domain.User{
		ID:         s.store.MaxID() + 1,
		FirstName:  fields.FirstName,
		LastName:   fields.LastName,
		Email:      fields.Email,
		Department: fields.Department,
	}
	if err := s.store.Add(user); err != nil {
		return domain.User{}, fmt.Errorf("add user: %w", err)
	}
	return user, nil
}

// Update validates the fields, replaces the user upstream and then locally.
// Unknown ids fail with domain.ErrNotFound before any remote call.
func (s *UserService) Update(ctx context.Context, id int64, fields domain.UserFields) (domain.User, error) {
	if err := ValidateUserFields(fields); err != nil {
		return domain.User{}, err
	}
	if _, err := s.store.Get(id); err != nil {
		return domain.User{}, err
	}

	if err := s.api.UpdateUser(ctx, id, fields); err != nil {
		return domain.User{}, fmt.Errorf("%w: %w", domain.ErrUpdate, err)
	}

	return s.store.Replace(id, fields)
}

// Delete removes the user upstream and then locally.
// Unknown ids fail with domain.ErrNotFound before any remote call.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if _, err := s.store.Get(id); err != nil {
		return err
	}

	if err := s.api.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrDelete, err)
	}

	return s.store.Remove(id)
}

// GetByID returns the user with the given id from the local store.
func (s *UserService) GetByID(id int64) (domain.User, error) {
	return s.store.Get(id)
}

// Query derives the visible page for q from the current store contents.
func (s *UserService) Query(q domain.Query) domain.View {
	return ApplyQuery(s.store.All(), q, s.pageSize)
}

// Departments returns the distinct departments currently present in the store.
func (s *UserService) Departments() []string {
	return Departments(s.store.All())
}

// PageSize returns the configured page size.
func (s *UserService) PageSize() int {
	return s.pageSize
}
