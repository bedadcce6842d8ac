package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/and161185/salesgate/internal/errs"
	"github.com/and161185/salesgate/internal/model"
	"github.com/and161185/salesgate/internal/repository"
	"github.com/and161185/salesgate/internal/token"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
)

/************ blacklist ************/

type fakeBlacklist struct {
	mu      sync.Mutex
	entries map[string]model.BlacklistEntry

	upsertErr error
	existsErr error
	deleteErr error
}

var _ repository.BlacklistRepository = (*fakeBlacklist)(nil)

func newFakeBlacklist() *fakeBlacklist {
	return &fakeBlacklist{entries: map[string]model.BlacklistEntry{}}
}

func (f *fakeBlacklist) Upsert(_ context.Context, e model.BlacklistEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.entries[e.TokenHash] = e
	return nil
}

func (f *fakeBlacklist) Exists(_ context.Context, hash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.entries[hash]
	return ok, nil
}

func (f *fakeBlacklist) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	var n int64
	for h, e := range f.entries {
		if !e.ExpiresAt.After(now) {
			delete(f.entries, h)
			n++
		}
	}
	return n, nil
}

func (f *fakeBlacklist) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

/************ activity ************/

type fakeActivity struct {
	mu      sync.Mutex
	records map[string]model.ActivityRecord

	getErr    error
	touchErr  error
	deleteErr error
	touches   int
}

var _ repository.ActivityRepository = (*fakeActivity)(nil)

func newFakeActivity() *fakeActivity {
	return &fakeActivity{records: map[string]model.ActivityRecord{}}
}

func (f *fakeActivity) Get(_ context.Context, hash string) (*model.ActivityRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	r, ok := f.records[hash]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &r, nil
}

func (f *fakeActivity) Touch(_ context.Context, hash, userID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.touchErr != nil {
		return f.touchErr
	}
	f.touches++
	r, ok := f.records[hash]
	if !ok {
		r = model.ActivityRecord{TokenHash: hash, UserID: userID, CreatedAt: at}
	}
	r.LastActivityAt = at
	f.records[hash] = r
	return nil
}

func (f *fakeActivity) Delete(_ context.Context, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.records, hash)
	return nil
}

func (f *fakeActivity) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	var n int64
	for h, r := range f.records {
		if r.LastActivityAt.Before(cutoff) {
			delete(f.records, h)
			n++
		}
	}
	return n, nil
}

func (f *fakeActivity) put(r model.ActivityRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[r.TokenHash] = r
}

func (f *fakeActivity) get(hash string) (model.ActivityRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[hash]
	return r, ok
}

/************ tokens ************/

func newTestIssuer(t *testing.T) *token.Issuer {
	t.Helper()
	iss, err := token.NewIssuer([]byte("test-secret"), "salesgate", 24*time.Hour)
	require.NoError(t, err)
	return iss
}

func issueToken(t *testing.T, iss *token.Issuer, sub string) string {
	t.Helper()
	raw, _, err := iss.IssueAccessToken(sub, token.Profile{Email: "a@b.c", CustomerCode: "C-1", Roles: token.RoleUser}, 0)
	require.NoError(t, err)
	return raw
}

/************ users ************/

type fakeUsers struct {
	mu     sync.Mutex
	byMail map[string]*model.User
	resets map[string]resetEntry

	createErr error
	getErr    error
}

type resetEntry struct {
	userID  uuid.UUID
	expires time.Time
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byMail: map[string]*model.User{}, resets: map[string]resetEntry{}}
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, exists := f.byMail[u.Email]; exists {
		return errs.ErrAlreadyExists
	}
	cpy := *u
	cpy.CreatedAt = time.Now()
	f.byMail[u.Email] = &cpy
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byMail {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byMail[email]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) SetResetToken(_ context.Context, id uuid.UUID, tok string, exp time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, r := range f.resets {
		if r.userID == id {
			delete(f.resets, k)
		}
	}
	f.resets[tok] = resetEntry{userID: id, expires: exp}
	return nil
}

func (f *fakeUsers) ConsumeResetToken(_ context.Context, tok, hash string, now time.Time) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.resets[tok]
	if !ok || !r.expires.After(now) {
		return uuid.Nil, errs.ErrNotFound
	}
	delete(f.resets, tok)
	for _, u := range f.byMail {
		if u.ID == r.userID {
			u.PwdHash = hash
		}
	}
	return r.userID, nil
}

/************ sales ************/

type fakeSales struct {
	byID      map[uuid.UUID]model.Sale
	createErr error
}

var _ repository.SaleRepository = (*fakeSales)(nil)

func (f *fakeSales) Create(_ context.Context, s *model.Sale) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.byID == nil {
		f.byID = map[uuid.UUID]model.Sale{}
	}
	s.CreatedAt = time.Now()
	f.byID[s.ID] = *s
	return nil
}

func (f *fakeSales) GetByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &s, nil
}

func (f *fakeSales) ListByCustomer(_ context.Context, code string) ([]model.Sale, error) {
	var out []model.Sale
	for _, s := range f.byID {
		if s.CustomerCode == code {
			out = append(out, s)
		}
	}
	return out, nil
}
