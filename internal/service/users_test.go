package service_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/msomdec/user-dashboard/internal/domain"
	"github.com/msomdec/user-dashboard/internal/repository/memory"
	"github.com/msomdec/user-dashboard/internal/service"
)

func newTestUserService(t *testing.T, ids ...int64) (*service.UserService, *memory.UserStore, *fakeAPI) {
	t.Helper()
	store := memory.NewUserStore()
	for _, id := range ids {
		u := domain.User{ID: id, FirstName: "User", LastName: "Test", Email: "user@example.com", Department: "HR"}
		if err := store.Add(u); err != nil {
			t.Fatalf("seed user %d: %v", id, err)
		}
	}
	api := &fakeAPI{}
	return service.NewUserService(store, api, service.RemoteMapper{}, 10), store, api
}

func storeIDs(s *memory.UserStore) []int64 {
	var out []int64
	for _, u := range s.All() {
		out = append(out, u.ID)
	}
	return out
}

func TestUserService_FetchAll(t *testing.T) {
	svc, store, api := newTestUserService(t, 40, 41)
	api.remote = []domain.RemoteUser{
		{ID: 1, Name: "Leanne Graham", Email: "Sincere@april.biz"},
		{ID: 1, Name: "Ervin Howell", Email: "Shanna@melissa.tv"},
	}

	n, err := svc.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 users loaded, got %d", n)
	}
	if got := storeIDs(store); !slices.Equal(got, []int64{1, 2}) {
		t.Fatalf("expected ids [1 2], got %v", got)
	}
	if svc.LoadError() != nil {
		t.Fatalf("expected no load error, got %v", svc.LoadError())
	}
}

func TestUserService_FetchAllFailureKeepsStore(t *testing.T) {
	svc, store, api := newTestUserService(t, 1, 2, 3)
	api.err = errors.New("connection refused")

	_, err := svc.FetchAll(context.Background())
	if !errors.Is(err, domain.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
	if got := storeIDs(store); !slices.Equal(got, []int64{1, 2, 3}) {
		t.Fatalf("store changed on failed fetch: %v", got)
	}
	if !errors.Is(svc.LoadError(), domain.ErrFetch) {
		t.Fatalf("expected LoadError to report ErrFetch, got %v", svc.LoadError())
	}

	// A later successful fetch clears the load error.
	api.err = nil
	if _, err := svc.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if svc.LoadError() != nil {
		t.Fatalf("expected load error cleared, got %v", svc.LoadError())
	}
}

type fetchResult struct {
	n   int
	err error
}

func fetchAsync(ctx context.Context, svc *service.UserService) <-chan fetchResult {
	out := make(chan fetchResult, 1)
	go func() {
		n, err := svc.FetchAll(ctx)
		out <- fetchResult{n, err}
	}()
	return out
}

func TestUserService_FetchAllCallerCancelDoesNotFailOthers(t *testing.T) {
	svc, store, api := newTestUserService(t)
	api.remote = []domain.RemoteUser{
		{ID: 1, Name: "Leanne Graham", Email: "Sincere@april.biz"},
		{ID: 2, Name: "Ervin Howell", Email: "Shanna@melissa.tv"},
	}
	api.started = make(chan struct{}, 1)
	api.release = make(chan struct{})

	ctxA, cancelA := context.WithCancel(context.Background())
	resA := fetchAsync(ctxA, svc)
	<-api.started

	cancelA()
	a := <-resA
	if !errors.Is(a.err, context.Canceled) || !errors.Is(a.err, domain.ErrFetch) {
		t.Fatalf("expected cancelled caller to get ErrFetch wrapping context.Canceled, got %v", a.err)
	}

	resB := fetchAsync(context.Background(), svc)
	close(api.release)
	b := <-resB
	if b.err != nil {
		t.Fatalf("second caller: %v", b.err)
	}
	if b.n != 2 {
		t.Fatalf("expected 2 users loaded, got %d", b.n)
	}
	if err := svc.LoadError(); err != nil {
		t.Fatalf("expected no load error, got %v", err)
	}
	if got := storeIDs(store); !slices.Equal(got, []int64{1, 2}) {
		t.Fatalf("expected ids [1 2], got %v", got)
	}
}

func TestUserService_FetchAllConcurrentCallers(t *testing.T) {
	svc, store, api := newTestUserService(t)
	api.remote = []domain.RemoteUser{{ID: 1, Name: "Leanne Graham", Email: "Sincere@april.biz"}}
	api.started = make(chan struct{}, 1)
	api.release = make(chan struct{})

	first := fetchAsync(context.Background(), svc)
	<-api.started
	others := make([]<-chan fetchResult, 5)
	for i := range others {
		others[i] = fetchAsync(context.Background(), svc)
	}
	close(api.release)

	for i, ch := range append(others, first) {
		if res := <-ch; res.err != nil || res.n != 1 {
			t.Fatalf("caller %d: got n=%d err=%v", i, res.n, res.err)
		}
	}
	if api.callCount() > len(others)+1 {
		t.Fatalf("expected at most %d remote calls, got %d", len(others)+1, api.callCount())
	}
	if got := storeIDs(store); !slices.Equal(got, []int64{1}) {
		t.Fatalf("expected ids [1], got %v", got)
	}
}

func TestUserService_ReloadRacingCreateKeepsStoreConsistent(t *testing.T) {
	for i := range 50 {
		svc, store, api := newTestUserService(t)
		api.remote = []domain.RemoteUser{
			{ID: 1, Name: "Leanne Graham", Email: "Sincere@april.biz"},
			{ID: 2, Name: "Ervin Howell", Email: "Shanna@melissa.tv"},
			{ID: 3, Name: "Clementine Bauch", Email: "Nathan@yesenia.net"},
		}
		if _, err := svc.FetchAll(context.Background()); err != nil {
			t.Fatalf("initial FetchAll: %v", err)
		}

		var wg sync.WaitGroup
		var createErr, fetchErr error
		wg.Go(func() {
			_, createErr = svc.Create(context.Background(), domain.UserFields{
				FirstName: "Jane", LastName: "Doe", Email: "jane@example.com", Department: "Sales",
			})
		})
		wg.Go(func() {
			_, fetchErr = svc.FetchAll(context.Background())
		})
		wg.Wait()

		if createErr != nil {
			t.Fatalf("run %d: Create: %v", i, createErr)
		}
		if fetchErr != nil {
			t.Fatalf("run %d: FetchAll: %v", i, fetchErr)
		}

		// Either the reload landed last (remote state) or the create did.
		got := storeIDs(store)
		if !slices.Equal(got, []int64{1, 2, 3}) && !slices.Equal(got, []int64{1, 2, 3, 4}) {
			t.Fatalf("run %d: inconsistent store ids %v", i, got)
		}
	}
}

func TestUserService_CreateAssignsNextID(t *testing.T) {
	svc, store, api := newTestUserService(t, 1, 3)

	user, err := svc.Create(context.Background(), validFields())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.ID != 4 {
		t.Fatalf("expected id 4, got %d", user.ID)
	}
	if got := storeIDs(store); !slices.Equal(got, []int64{1, 3, 4}) {
		t.Fatalf("expected ids [1 3 4], got %v", got)
	}
	stored, err := store.Get(4)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Email != "jane@example.com" || stored.Department != "HR" {
		t.Fatalf("unexpected stored user %+v", stored)
	}
	if api.callCount() != 1 {
		t.Fatalf("expected 1 remote call, got %d", api.callCount())
	}
}

func TestUserService_CreateIntoEmptyStore(t *testing.T) {
	svc, _, _ := newTestUserService(t)

	user, err := svc.Create(context.Background(), validFields())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.ID != 1 {
		t.Fatalf("expected id 1, got %d", user.ID)
	}
}

func TestUserService_CreateRemoteFailure(t *testing.T) {
	svc, store, api := newTestUserService(t, 1)
	api.err = errors.New("HTTP 500")

	_, err := svc.Create(context.Background(), validFields())
	if !errors.Is(err, domain.ErrCreate) {
		t.Fatalf("expected ErrCreate, got %v", err)
	}
	if got := storeIDs(store); !slices.Equal(got, []int64{1}) {
		t.Fatalf("store changed on failed create: %v", got)
	}
}

func TestUserService_CreateInvalidMakesNoCall(t *testing.T) {
	svc, store, api := newTestUserService(t)

	f := validFields()
	f.Email = ""
	_, err := svc.Create(context.Background(), f)

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := ve.Fields["email"]; !ok {
		t.Fatalf("expected email error, got %v", ve.Fields)
	}
	if api.callCount() != 0 {
		t.Fatalf("expected no remote call, got %d", api.callCount())
	}
	if len(store.All()) != 0 {
		t.Fatal("expected store to stay empty")
	}
}

func TestUserService_Update(t *testing.T) {
	svc, store, _ := newTestUserService(t, 1, 2)

	f := validFields()
	f.Department = "Sales"
	user, err := svc.Update(context.Background(), 2, f)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if user.ID != 2 || user.FirstName != "Jane" || user.Department != "Sales" {
		t.Fatalf("unexpected updated user %+v", user)
	}
	stored, _ := store.Get(2)
	if stored != user {
		t.Fatalf("store not updated: %+v", stored)
	}
}

func TestUserService_UpdateRemoteFailure(t *testing.T) {
	svc, store, api := newTestUserService(t, 1)
	before, _ := store.Get(1)
	api.err = errors.New("HTTP 503")

	_, err := svc.Update(context.Background(), 1, validFields())
	if !errors.Is(err, domain.ErrUpdate) {
		t.Fatalf("expected ErrUpdate, got %v", err)
	}
	after, _ := store.Get(1)
	if after != before {
		t.Fatalf("store changed on failed update: %+v", after)
	}
}

func TestUserService_UpdateUnknownID(t *testing.T) {
	svc, _, api := newTestUserService(t, 1)

	_, err := svc.Update(context.Background(), 99, validFields())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if api.callCount() != 0 {
		t.Fatalf("expected no remote call, got %d", api.callCount())
	}
}

func TestUserService_UpdateInvalid(t *testing.T) {
	svc, _, api := newTestUserService(t, 1)

	f := validFields()
	f.Email = "not-an-email"
	_, err := svc.Update(context.Background(), 1, f)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if api.callCount() != 0 {
		t.Fatalf("expected no remote call, got %d", api.callCount())
	}
}

func TestUserService_Delete(t *testing.T) {
	svc, store, _ := newTestUserService(t, 1, 2, 3)

	if err := svc.Delete(context.Background(), 2); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := storeIDs(store); !slices.Equal(got, []int64{1, 3}) {
		t.Fatalf("expected ids [1 3], got %v", got)
	}
}

func TestUserService_DeleteUnknownID(t *testing.T) {
	svc, store, api := newTestUserService(t, 1, 2)

	err := svc.Delete(context.Background(), 7)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if got := storeIDs(store); !slices.Equal(got, []int64{1, 2}) {
		t.Fatalf("store changed: %v", got)
	}
	if api.callCount() != 0 {
		t.Fatalf("expected no remote call, got %d", api.callCount())
	}
}

func TestUserService_DeleteRemoteFailure(t *testing.T) {
	svc, store, api := newTestUserService(t, 1, 2)
	api.err = errors.New("HTTP 404")

	err := svc.Delete(context.Background(), 1)
	if !errors.Is(err, domain.ErrDelete) {
		t.Fatalf("expected ErrDelete, got %v", err)
	}
	if got := storeIDs(store); !slices.Equal(got, []int64{1, 2}) {
		t.Fatalf("store changed on failed delete: %v", got)
	}
}

func TestUserService_QueryUsesPageSize(t *testing.T) {
	store := memory.NewUserStore()
	if err := store.Reset(makeUsers(7)); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	svc := service.NewUserService(store, &fakeAPI{}, service.RemoteMapper{}, 3)

	view := svc.Query(domain.Query{Page: 3})
	if view.TotalPages != 3 || len(view.Users) != 1 {
		t.Fatalf("expected 3 pages with 1 user on the last, got %d pages, %d users", view.TotalPages, len(view.Users))
	}
	if svc.PageSize() != 3 {
		t.Fatalf("expected page size 3, got %d", svc.PageSize())
	}
}

func TestUserService_Departments(t *testing.T) {
	svc, _, api := newTestUserService(t)
	api.remote = []domain.RemoteUser{{Name: "A B"}, {Name: "C D"}, {Name: "E F"}}

	if _, err := svc.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	got := svc.Departments()
	if !slices.Equal(got, []string{"Engineering", "HR", "Sales"}) {
		t.Fatalf("unexpected departments %v", got)
	}
}
