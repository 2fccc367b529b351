package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/msomdec/user-dashboard/internal/domain"
	"github.com/msomdec/user-dashboard/internal/handler"
	"github.com/msomdec/user-dashboard/internal/repository/memory"
	"github.com/msomdec/user-dashboard/internal/service"
	"github.com/msomdec/user-dashboard/internal/upstream"
)

const testJWTSecret = "test-secret-for-handler-tests-0123456789"

var testDepartments = []string{"HR", "Engineering", "Sales", "Marketing"}

// fakeRemote is a stand-in for the remote REST API.
type fakeRemote struct {
	mu    sync.Mutex
	users []domain.RemoteUser
	fail  map[string]bool // HTTP method -> answer 500
	calls []string
}

func (f *fakeRemote) setFail(method string, fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[method] = fail
}

func (f *fakeRemote) callsFor(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, method+" ") {
			n++
		}
	}
	return n
}

func (f *fakeRemote) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	if f.fail[r.Method] {
		http.Error(w, "remote failure", http.StatusInternalServerError)
		return
	}
	if r.Method == http.MethodGet {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(f.users)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{}`))
}

// newFakeRemote serves n users named "First{i} Last{i}" with emails user{i}@example.com.
func newFakeRemote(t *testing.T, n int) (*fakeRemote, *httptest.Server) {
	t.Helper()
	f := &fakeRemote{fail: make(map[string]bool)}
	for i := 1; i <= n; i++ {
		f.users = append(f.users, domain.RemoteUser{
			ID:    int64(i),
			Name:  fmt.Sprintf("First%d Last%d", i, i),
			Email: fmt.Sprintf("user%d@example.com", i),
		})
	}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

type testEnv struct {
	srv    *httptest.Server
	users  *service.UserService
	remote *fakeRemote
	client *http.Client
}

// newTestEnv starts the dashboard against a fake remote holding n users.
// With withAuth the operator login is enabled (admin / password123).
func newTestEnv(t *testing.T, n int, withAuth bool) *testEnv {
	t.Helper()
	remote, remoteSrv := newFakeRemote(t, n)

	users := service.NewUserService(
		memory.NewUserStore(),
		upstream.NewClient(remoteSrv.URL),
		service.RemoteMapper{Departments: testDepartments},
		10,
	)
	if _, err := users.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll: %v", err)
	}

	var auth *service.AuthService
	if withAuth {
		var err error
		auth, err = service.NewAuthService("admin", "password123", testJWTSecret, 4)
		if err != nil {
			t.Fatalf("NewAuthService: %v", err)
		}
	}
	limiter := service.NewRateLimiter(0, 3)
	t.Cleanup(limiter.Close)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, users, auth, limiter, testDepartments, false)

	srv := httptest.NewServer(handler.RequestLogger(handler.SecurityHeaders(mux)))
	t.Cleanup(srv.Close)

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse // don't follow redirects automatically
		},
	}
	return &testEnv{srv: srv, users: users, remote: remote, client: client}
}

// datastarGet issues a datastar GET carrying signals in the query string.
func (e *testEnv) datastarGet(t *testing.T, path string, signals any) (int, string) {
	t.Helper()
	data, err := json.Marshal(signals)
	if err != nil {
		t.Fatalf("marshal signals: %v", err)
	}
	req, err := http.NewRequest(http.MethodGet, e.srv.URL+path+"?datastar="+url.QueryEscape(string(data)), nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Datastar-Request", "true")
	return e.do(t, req)
}

// datastarSend issues a datastar POST/PUT/DELETE carrying signals as a JSON body.
func (e *testEnv) datastarSend(t *testing.T, method, path string, signals any) (int, string) {
	t.Helper()
	data, err := json.Marshal(signals)
	if err != nil {
		t.Fatalf("marshal signals: %v", err)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Datastar-Request", "true")
	return e.do(t, req)
}

func (e *testEnv) do(t *testing.T, req *http.Request) (int, string) {
	t.Helper()
	resp, err := e.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func signals(search, department string, page int, form map[string]string) map[string]any {
	s := map[string]any{"search": search, "department": department, "page": page}
	if form != nil {
		s["form"] = form
	}
	return s
}

func validForm() map[string]string {
	return map[string]string{
		"firstName":  "Jane",
		"lastName":   "Doe",
		"email":      "jane@example.com",
		"department": "Sales",
	}
}

func validFormFields() domain.UserFields {
	f := validForm()
	return domain.UserFields{
		FirstName:  f["firstName"],
		LastName:   f["lastName"],
		Email:      f["email"],
		Department: f["department"],
	}
}

func queryAll() domain.Query {
	return domain.Query{Page: 1}
}
