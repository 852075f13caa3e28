package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Marcel-mosha/task-manager/config"
	"github.com/Marcel-mosha/task-manager/internal/services"
	"github.com/Marcel-mosha/task-manager/internal/store"
	"github.com/Marcel-mosha/task-manager/types"
	"github.com/go-chi/chi/v5"
)

// testEnv wires the real services and handlers over in-memory
// repositories, exactly as the server does over postgres.
type testEnv struct {
	router   *chi.Mux
	sessions *fakeSessionStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := &fakeUserRepo{users: make(map[int]types.User)}
	tokens := &fakeTokenRepo{users: users, tokens: make(map[int]string)}
	tasks := &fakeTaskRepo{tasks: make(map[int]types.Task)}
	sessions := &fakeSessionStore{sessions: make(map[string]int)}

	authService := services.NewAuthService(users, tokens, services.DefaultPasswordPolicy(config.PasswordConfig{MinLength: 8}))
	taskService := services.NewTaskService(tasks, nil)

	authHandler := NewAuthHandler(authService, sessions, "sessionid", time.Hour)

	router := chi.NewRouter()
	AuthRouter(router, authHandler)
	router.Route("/tasks", func(r chi.Router) {
		TaskRouter(r, taskService, authHandler.RequireAuth)
	})

	return &testEnv{router: router, sessions: sessions}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) register(t *testing.T, username, email string) string {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": "Str0ngPass!",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d: %s", username, rec.Code, rec.Body)
	}

	var resp AuthResponse
	decodeBody(t, rec, &resp)
	if resp.Token == "" {
		t.Fatalf("register %s: missing token", username)
	}
	return resp.Token
}

func (e *testEnv) createTask(t *testing.T, token, title string) int {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/tasks", token, map[string]string{"title": title})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create task: status %d: %s", rec.Code, rec.Body)
	}

	var resp TaskDetailResponse
	decodeBody(t, rec, &resp)
	return resp.ID
}

func (e *testEnv) doWithHeader(t *testing.T, method, path, authorization string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", authorization)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func newRequest(t *testing.T, method, path string) *http.Request {
	t.Helper()
	return httptest.NewRequest(method, path, nil)
}

func serve(e *testEnv, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// sessionCookie extracts the session cookie set by a register or login
// response.
func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "sessionid" && cookie.Value != "" {
			return cookie
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, value any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(value); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// In-memory repositories and session store.

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]types.User
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return types.User{}, store.ErrDuplicateUsername
		}
		if existing.Email == user.Email {
			return types.User{}, store.ErrDuplicateEmail
		}
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.users[user.ID] = user
	return user, nil
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	users  *fakeUserRepo
	nextID int
	tokens map[int]string
}

func (r *fakeTokenRepo) GetOrCreate(_ context.Context, userID int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if key, ok := r.tokens[userID]; ok {
		return key, nil
	}
	r.nextID++
	key := fmt.Sprintf("key-%d-%d", userID, r.nextID)
	r.tokens[userID] = key
	return key, nil
}

func (r *fakeTokenRepo) GetUserByKey(ctx context.Context, key string) (types.User, error) {
	r.mu.Lock()
	var userID int
	found := false
	for id, stored := range r.tokens {
		if stored == key {
			userID = id
			found = true
			break
		}
	}
	r.mu.Unlock()
	if !found {
		return types.User{}, store.ErrNotFound
	}
	return r.users.GetByID(ctx, userID)
}

type fakeTaskRepo struct {
	mu     sync.Mutex
	nextID int
	tasks  map[int]types.Task
}

func (r *fakeTaskRepo) ListByOwner(_ context.Context, userID int, completed *bool) ([]types.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tasks := make([]types.Task, 0)
	for id := 1; id <= r.nextID; id++ {
		task, ok := r.tasks[id]
		if !ok || task.UserID != userID {
			continue
		}
		if completed != nil && task.Completed != *completed {
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (r *fakeTaskRepo) GetByID(_ context.Context, userID, id int) (types.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok || task.UserID != userID {
		return types.Task{}, store.ErrNotFound
	}
	return task, nil
}

func (r *fakeTaskRepo) Create(_ context.Context, task types.Task) (types.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	task.ID = r.nextID
	task.Completed = false
	task.CreatedAt = time.Now()
	r.tasks[task.ID] = task
	return task, nil
}

func (r *fakeTaskRepo) Update(_ context.Context, task types.Task) (types.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.tasks[task.ID]
	if !ok || current.UserID != task.UserID {
		return types.Task{}, store.ErrNotFound
	}
	current.Title = task.Title
	current.Description = task.Description
	current.Completed = task.Completed
	r.tasks[task.ID] = current
	return current, nil
}

func (r *fakeTaskRepo) Toggle(_ context.Context, userID, id int) (types.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok || task.UserID != userID {
		return types.Task{}, store.ErrNotFound
	}
	task.Completed = !task.Completed
	r.tasks[id] = task
	return task, nil
}

func (r *fakeTaskRepo) Delete(_ context.Context, userID, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok || task.UserID != userID {
		return store.ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

type fakeSessionStore struct {
	mu       sync.Mutex
	nextID   int
	sessions map[string]int
}

func (s *fakeSessionStore) Create(_ context.Context, userID int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	value := fmt.Sprintf("session-%d", s.nextID)
	s.sessions[value] = userID
	return value, nil
}

func (s *fakeSessionStore) Resolve(_ context.Context, cookieValue string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.sessions[cookieValue]
	if !ok {
		return 0, errors.New("invalid session")
	}
	return userID, nil
}

func (s *fakeSessionStore) Revoke(_ context.Context, cookieValue string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, cookieValue)
	return nil
}
