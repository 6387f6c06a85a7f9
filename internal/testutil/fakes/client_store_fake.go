package fakes

import (
	"context"
	"slices"
	"sync"

	"github.com/dhima/client-service/internal/models"
	"github.com/dhima/client-service/internal/storage"
)

// FakeClientStore is an in-memory implementation of clients.Store. Roles
// seeds the joined role name and description returned by GetClient.
type FakeClientStore struct {
	mu      sync.Mutex
	nextID  int64
	clients map[int64]models.Client
	Roles   map[int64][2]string
	// Err, when set, is returned by every call.
	Err error
}

func NewFakeClientStore() *FakeClientStore {
	return &FakeClientStore{
		nextID:  1,
		clients: make(map[int64]models.Client),
		Roles:   map[int64][2]string{1: {"admin", "Administrator"}},
	}
}

func (f *FakeClientStore) ListClients(_ context.Context, page, limit int) ([]models.Client, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, 0, f.Err
	}
	ids := f.sortedIDs()
	total := int64(len(ids))
	start := (page - 1) * limit
	if start > len(ids) {
		return []models.Client{}, total, nil
	}
	end := min(start+limit, len(ids))
	out := make([]models.Client, 0, end-start)
	for _, id := range ids[start:end] {
		out = append(out, f.clients[id])
	}
	return out, total, nil
}

func (f *FakeClientStore) GetClient(_ context.Context, id int64) (*models.ClientDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	c, ok := f.clients[id]
	if !ok {
		return nil, storage.ErrClientNotFound
	}
	detail := &models.ClientDetail{
		ID:         c.ID,
		FirstName:  c.FirstName,
		MiddleName: c.MiddleName,
		LastName:   c.LastName,
		Phone:      c.Phone,
		Position:   c.Position,
		Email:      c.Email,
	}
	if role, ok := f.Roles[c.RoleID]; ok {
		name, desc := role[0], role[1]
		detail.Role, detail.RoleDescription = &name, &desc
	}
	return detail, nil
}

func (f *FakeClientStore) CreateClient(_ context.Context, client *models.Client) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return 0, f.Err
	}
	return f.insert(*client), nil
}

func (f *FakeClientStore) CreateClients(_ context.Context, clients []models.Client) (storage.ExecResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return storage.ExecResult{}, f.Err
	}
	var first int64
	for i, c := range clients {
		id := f.insert(c)
		if i == 0 {
			first = id
		}
	}
	return storage.ExecResult{LastInsertID: first, RowsAffected: int64(len(clients))}, nil
}

func (f *FakeClientStore) UpdateClient(_ context.Context, client *models.Client) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return 0, f.Err
	}
	current, ok := f.clients[client.ID]
	if !ok {
		return 0, storage.ErrClientNotFound
	}
	updated := *client
	updated.PasswordHash = current.PasswordHash
	f.clients[client.ID] = updated
	return 1, nil
}

func (f *FakeClientStore) DeleteClients(_ context.Context, ids []int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return 0, f.Err
	}
	var n int64
	for _, id := range ids {
		if _, ok := f.clients[id]; ok {
			delete(f.clients, id)
			n++
		}
	}
	return n, nil
}

// Client returns the stored row for id, password hash included.
func (f *FakeClientStore) Client(id int64) (models.Client, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.clients[id]
	return c, ok
}

func (f *FakeClientStore) insert(c models.Client) int64 {
	c.ID = f.nextID
	f.nextID++
	f.clients[c.ID] = c
	return c.ID
}

func (f *FakeClientStore) sortedIDs() []int64 {
	ids := make([]int64, 0, len(f.clients))
	for id := range f.clients {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
