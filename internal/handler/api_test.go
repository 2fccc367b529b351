package handler_test

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"
	"testing"
)

type listResponse struct {
	Users []struct {
		ID         int64  `json:"id"`
		FirstName  string `json:"firstName"`
		Email      string `json:"email"`
		Department string `json:"department"`
	} `json:"users"`
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
	Total      int `json:"total"`
}

func (e *testEnv) apiRequest(t *testing.T, method, path, body string) (int, string) {
	t.Helper()
	var req *http.Request
	var err error
	if body == "" {
		req, err = http.NewRequest(method, e.srv.URL+path, nil)
	} else {
		req, err = http.NewRequest(method, e.srv.URL+path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	return e.do(t, req)
}

const validUserJSON = `{"firstName":"Jane","lastName":"Doe","email":"jane@example.com","department":"Sales"}`

func TestAPIList_SecondPage(t *testing.T) {
	env := newTestEnv(t, 15, false)

	status, body := env.apiRequest(t, http.MethodGet, "/api/users?page=2", "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	var resp listResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Page != 2 || resp.TotalPages != 2 || resp.Total != 15 {
		t.Fatalf("unexpected paging: %+v", resp)
	}
	if len(resp.Users) != 5 || resp.Users[0].ID != 11 {
		t.Fatalf("expected users 11..15, got %+v", resp.Users)
	}
}

func TestAPIList_FilterAndSearch(t *testing.T) {
	env := newTestEnv(t, 15, false)

	_, body := env.apiRequest(t, http.MethodGet, "/api/users?department=Engineering&search=first1", "")

	var resp listResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Engineering holds ids 2, 6, 10, 14; "first1" matches 10 and 14.
	if resp.Total != 2 {
		t.Fatalf("expected 2 matches, got %d", resp.Total)
	}
	for _, u := range resp.Users {
		if u.Department != "Engineering" {
			t.Fatalf("unexpected department %q", u.Department)
		}
	}
}

func TestAPIList_PagePastEndIsEmpty(t *testing.T) {
	env := newTestEnv(t, 5, false)

	_, body := env.apiRequest(t, http.MethodGet, "/api/users?page=9", "")

	var resp listResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Users) != 0 || resp.TotalPages != 1 {
		t.Fatalf("expected empty page of 1 total, got %+v", resp)
	}
	if !strings.Contains(body, `"users":[]`) {
		t.Fatal("expected an empty array rather than null")
	}
}

func TestAPIList_HugePageIsEmpty(t *testing.T) {
	env := newTestEnv(t, 15, false)

	status, body := env.apiRequest(t, http.MethodGet, "/api/users?page="+strconv.Itoa(math.MaxInt), "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	var resp listResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Users) != 0 || resp.TotalPages != 2 || resp.Total != 15 {
		t.Fatalf("expected empty page of 2 total, got %+v", resp)
	}
}

func TestAPIList_BadPage(t *testing.T) {
	env := newTestEnv(t, 5, false)

	for _, page := range []string{"0", "-1", "abc"} {
		status, _ := env.apiRequest(t, http.MethodGet, "/api/users?page="+page, "")
		if status != http.StatusBadRequest {
			t.Fatalf("page=%s: expected 400, got %d", page, status)
		}
	}
}

func TestAPIGet(t *testing.T) {
	env := newTestEnv(t, 3, false)

	status, body := env.apiRequest(t, http.MethodGet, "/api/users/3", "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if !strings.Contains(body, `"email":"user3@example.com"`) {
		t.Fatalf("unexpected body: %s", body)
	}

	status, _ = env.apiRequest(t, http.MethodGet, "/api/users/30", "")
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
}

func TestAPICreate(t *testing.T) {
	env := newTestEnv(t, 3, false)

	status, body := env.apiRequest(t, http.MethodPost, "/api/users", validUserJSON)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", status, body)
	}
	if !strings.Contains(body, `"id":4`) {
		t.Fatalf("expected id 4, got %s", body)
	}
}

func TestAPICreate_Validation(t *testing.T) {
	env := newTestEnv(t, 3, false)

	status, body := env.apiRequest(t, http.MethodPost, "/api/users", `{"firstName":"Jane"}`)
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", status)
	}

	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Fields["lastName"] != "Last name is required" || resp.Fields["email"] != "Email is required" {
		t.Fatalf("unexpected field errors: %v", resp.Fields)
	}
	if _, ok := resp.Fields["firstName"]; ok {
		t.Fatal("firstName was provided and should not be reported")
	}
	if env.remote.callsFor(http.MethodPost) != 0 {
		t.Fatal("invalid input must not reach the remote API")
	}
}

func TestAPICreate_BadJSON(t *testing.T) {
	env := newTestEnv(t, 1, false)

	status, _ := env.apiRequest(t, http.MethodPost, "/api/users", `{not json`)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestAPICreate_RemoteFailure(t *testing.T) {
	env := newTestEnv(t, 3, false)
	env.remote.setFail(http.MethodPost, true)

	status, body := env.apiRequest(t, http.MethodPost, "/api/users", validUserJSON)
	if status != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", status)
	}
	if !strings.Contains(body, "Failed to add user") {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestAPIUpdate(t *testing.T) {
	env := newTestEnv(t, 3, false)

	status, body := env.apiRequest(t, http.MethodPut, "/api/users/1", validUserJSON)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	if !strings.Contains(body, `"id":1`) || !strings.Contains(body, `"email":"jane@example.com"`) {
		t.Fatalf("unexpected body: %s", body)
	}

	status, _ = env.apiRequest(t, http.MethodPut, "/api/users/77", validUserJSON)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
}

func TestAPIDelete(t *testing.T) {
	env := newTestEnv(t, 3, false)

	status, _ := env.apiRequest(t, http.MethodDelete, "/api/users/1", "")
	if status != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", status)
	}

	status, _ = env.apiRequest(t, http.MethodDelete, "/api/users/1", "")
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", status)
	}
}

func TestAPIRefresh(t *testing.T) {
	env := newTestEnv(t, 4, false)

	status, body := env.apiRequest(t, http.MethodPost, "/api/users/refresh", "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if !strings.Contains(body, `"loaded":4`) {
		t.Fatalf("unexpected body: %s", body)
	}

	env.remote.setFail(http.MethodGet, true)
	status, _ = env.apiRequest(t, http.MethodPost, "/api/users/refresh", "")
	if status != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", status)
	}
}
