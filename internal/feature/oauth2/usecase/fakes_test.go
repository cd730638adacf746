package usecase

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"shop_backend/internal/feature/oauth2/domain/entity"
)

// memApps is an in-memory ApplicationRepository.
type memApps struct {
	mu   sync.Mutex
	apps []*entity.Application
}

func (m *memApps) Create(_ context.Context, app *entity.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	app.ID = uint(len(m.apps) + 1)
	cp := *app
	m.apps = append(m.apps, &cp)
	return nil
}

func (m *memApps) FindByClientID(_ context.Context, clientID string) (*entity.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.apps {
		if a.ClientID == clientID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrApplicationNotFound
}

func (m *memApps) FindByID(_ context.Context, id uint) (*entity.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.apps {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrApplicationNotFound
}

func (m *memApps) UpdateSecretHash(_ context.Context, id uint, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.apps {
		if a.ID == id {
			a.ClientSecretHash = hash
			return nil
		}
	}
	return ErrApplicationNotFound
}

// memAccess is an in-memory AccessTokenRepository.
type memAccess struct {
	mu   sync.Mutex
	rows map[string]*entity.AccessToken
}

func newMemAccess() *memAccess { return &memAccess{rows: map[string]*entity.AccessToken{}} }

func (m *memAccess) Create(_ context.Context, t *entity.AccessToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = uint(len(m.rows) + 1)
	cp := *t
	m.rows[t.JTI] = &cp
	return nil
}

func (m *memAccess) FindByJTI(_ context.Context, jti string) (*entity.AccessToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[jti]
	if !ok {
		return nil, ErrAccessTokenNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memAccess) Revoke(_ context.Context, jti string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[jti]
	if !ok {
		return ErrAccessTokenNotFound
	}
	t.RevokedAt = &at
	return nil
}

func (m *memAccess) RevokeAllByUserID(_ context.Context, userID uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.rows {
		if t.UserID != nil && *t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &at
		}
	}
	return nil
}

func (m *memAccess) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for jti, t := range m.rows {
		if !t.IsActive(now) {
			delete(m.rows, jti)
			n++
		}
	}
	return n, nil
}

// memRefresh is an in-memory RefreshTokenRepository.
type memRefresh struct {
	mu   sync.Mutex
	rows map[string]*entity.RefreshToken
}

func newMemRefresh() *memRefresh { return &memRefresh{rows: map[string]*entity.RefreshToken{}} }

func (m *memRefresh) Create(_ context.Context, t *entity.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.rows[t.ID] = &cp
	return nil
}

func (m *memRefresh) FindByID(_ context.Context, id string) (*entity.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[id]
	if !ok {
		return nil, ErrRefreshTokenNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memRefresh) activeTokens(_ context.Context, userID uuid.UUID) ([]*entity.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.RefreshToken
	for _, t := range m.rows {
		if t.UserID == userID && t.IsValid(time.Now()) {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memRefresh) Revoke(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[id]
	if !ok {
		return ErrRefreshTokenNotFound
	}
	if t.RevokedAt != nil {
		return ErrRefreshTokenRevoked
	}
	now := time.Now()
	t.RevokedAt = &now
	return nil
}

// racingRefresh holds FindByID for one token until n callers have read it,
// so concurrent grants all see the token as still valid.
type racingRefresh struct {
	*memRefresh
	target  string
	n       int32
	arrived atomic.Int32
	release chan struct{}
}

func newRacingRefresh(inner *memRefresh, target string, n int32) *racingRefresh {
	return &racingRefresh{memRefresh: inner, target: target, n: n, release: make(chan struct{})}
}

func (r *racingRefresh) FindByID(ctx context.Context, id string) (*entity.RefreshToken, error) {
	t, err := r.memRefresh.FindByID(ctx, id)
	if id != r.target {
		return t, err
	}
	if r.arrived.Add(1) == r.n {
		close(r.release)
	}
	<-r.release
	return t, err
}

func (m *memRefresh) RevokeAllByUserID(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, t := range m.rows {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	return nil
}

func (m *memRefresh) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, t := range m.rows {
		if !t.IsValid(now) {
			delete(m.rows, id)
			n++
		}
	}
	return n, nil
}

func (m *memRefresh) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	tokens, _ := m.activeTokens(ctx, userID)
	return int64(len(tokens)), nil
}

func (m *memRefresh) DeleteOldestByUserID(ctx context.Context, userID uuid.UUID) error {
	tokens, _ := m.activeTokens(ctx, userID)
	if len(tokens) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, tokens[0].ID)
	return nil
}

// memUsers is an in-memory UserDirectory keyed by email with plaintext passwords.
type memUsers struct {
	mu        sync.Mutex
	owners    map[uuid.UUID]*ResourceOwner
	passwords map[uuid.UUID]string
}

func newMemUsers() *memUsers {
	return &memUsers{owners: map[uuid.UUID]*ResourceOwner{}, passwords: map[uuid.UUID]string{}}
}

func (m *memUsers) add(email, password string) *ResourceOwner {
	m.mu.Lock()
	defer m.mu.Unlock()
	o := &ResourceOwner{ID: uuid.New(), Email: email, IsActive: true}
	m.owners[o.ID] = o
	m.passwords[o.ID] = password
	return o
}

func (m *memUsers) setActive(id uuid.UUID, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.owners[id].IsActive = active
}

func (m *memUsers) Authenticate(_ context.Context, email, password string) (*ResourceOwner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, o := range m.owners {
		if o.Email == email && m.passwords[id] == password && o.IsActive {
			cp := *o
			return &cp, nil
		}
	}
	return nil, ErrOwnerNotFound
}

func (m *memUsers) FindByID(_ context.Context, id uuid.UUID) (*ResourceOwner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.owners[id]
	if !ok {
		return nil, ErrOwnerNotFound
	}
	cp := *o
	return &cp, nil
}
