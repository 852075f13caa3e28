package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Marcel-mosha/task-manager/internal/store"
	"github.com/Marcel-mosha/task-manager/types"
)

// In-memory repositories mirroring the store semantics: uniqueness
// enforcement, owner-scoped lookups, and idempotent token issuance.

type memUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]types.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[int]types.User)}
}

func (r *memUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *memUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
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

type memTokenRepo struct {
	mu     sync.Mutex
	users  *memUserRepo
	nextID int
	tokens map[int]string
}

func newMemTokenRepo(users *memUserRepo) *memTokenRepo {
	return &memTokenRepo{users: users, tokens: make(map[int]string)}
}

func (r *memTokenRepo) GetOrCreate(_ context.Context, userID int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if key, ok := r.tokens[userID]; ok {
		return key, nil
	}
	r.nextID++
	key := fmt.Sprintf("token-%d-%d", userID, r.nextID)
	r.tokens[userID] = key
	return key, nil
}

func (r *memTokenRepo) GetUserByKey(ctx context.Context, key string) (types.User, error) {
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

type memTaskRepo struct {
	mu     sync.Mutex
	nextID int
	tasks  map[int]types.Task
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: make(map[int]types.Task)}
}

func (r *memTaskRepo) ListByOwner(_ context.Context, userID int, completed *bool) ([]types.Task, error) {
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

func (r *memTaskRepo) GetByID(_ context.Context, userID, id int) (types.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok || task.UserID != userID {
		return types.Task{}, store.ErrNotFound
	}
	return task, nil
}

func (r *memTaskRepo) Create(_ context.Context, task types.Task) (types.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	task.ID = r.nextID
	task.Completed = false
	task.CreatedAt = time.Now()
	r.tasks[task.ID] = task
	return task, nil
}

func (r *memTaskRepo) Update(_ context.Context, task types.Task) (types.Task, error) {
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

func (r *memTaskRepo) Toggle(_ context.Context, userID, id int) (types.Task, error) {
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

func (r *memTaskRepo) Delete(_ context.Context, userID, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok || task.UserID != userID {
		return store.ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}
