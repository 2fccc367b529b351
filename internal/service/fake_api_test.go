package service_test

import (
	"context"
	"sync"

	"github.com/msomdec/user-dashboard/internal/domain"
)

// fakeAPI is an in-memory domain.UserAPI that records calls and can be told to fail.
type fakeAPI struct {
	mu     sync.Mutex
	remote []domain.RemoteUser
	err    error
	calls  []string

	// When release is set, ListUsers signals started and then blocks until
	// release is closed or its ctx ends.
	started chan struct{}
	release chan struct{}
}

func (f *fakeAPI) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeAPI) ListUsers(ctx context.Context) ([]domain.RemoteUser, error) {
	if err := f.record("list"); err != nil {
		return nil, err
	}
	if f.release != nil {
		select {
		case f.started <- struct{}{}:
		default:
		}
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.remote, nil
}

func (f *fakeAPI) CreateUser(ctx context.Context, fields domain.UserFields) error {
	return f.record("create")
}

func (f *fakeAPI) UpdateUser(ctx context.Context, id int64, fields domain.UserFields) error {
	return f.record("update")
}

func (f *fakeAPI) DeleteUser(ctx context.Context, id int64) error {
	return f.record("delete")
}
