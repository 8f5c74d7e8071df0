package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/userservice/internal/common"
	"github.com/dmitrijs2005/userservice/internal/dbx"
	"github.com/dmitrijs2005/userservice/internal/logging"
	"github.com/dmitrijs2005/userservice/internal/server/config"
	"github.com/dmitrijs2005/userservice/internal/server/models"
	accountsrepo "github.com/dmitrijs2005/userservice/internal/server/repositories/accounts"
	profilesrepo "github.com/dmitrijs2005/userservice/internal/server/repositories/profiles"
	refreshtokensrepo "github.com/dmitrijs2005/userservice/internal/server/repositories/refreshtokens"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// memStore is an in-memory stand-in for the three tables.
type memStore struct {
	mu       sync.Mutex
	nextID   int64
	accounts map[int64]models.Account
	profiles map[int64]models.Profile // keyed by account id
	tokens   map[string]models.RefreshToken

	accountCreateErr error
	accountUpdateErr error
	profileCreateErr error
	profileUpdateErr error
	tokenCreateErr   error
	tokenDeleteErr   error
	tokenFindErr     error
	listErr          error
	touchErr         error
}

func newMemStore() *memStore {
	return &memStore{
		accounts: map[int64]models.Account{},
		profiles: map[int64]models.Profile{},
		tokens:   map[string]models.RefreshToken{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *memStore) Accounts(dbx.DBTX) accountsrepo.Repository {
	return memAccounts{m}
}

func (m *memStore) Profiles(dbx.DBTX) profilesrepo.Repository {
	return memProfiles{m}
}

func (m *memStore) RefreshTokens(dbx.DBTX) refreshtokensrepo.Repository {
	return memTokens{m}
}

// seedAccount inserts an account with a profile and returns both.
func (m *memStore) seedAccount(email, password string, staff bool, p models.Profile) (*models.Account, *models.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	a := models.Account{ID: m.id(), Email: email, PasswordHash: string(hash), IsStaff: staff, IsActive: true, DateJoined: time.Now()}
	m.accounts[a.ID] = a
	p.ID = m.id()
	p.AccountID = a.ID
	m.profiles[a.ID] = p
	return &a, &p
}

type memAccounts struct{ m *memStore }

func (r memAccounts) Create(_ context.Context, a *models.Account) (*models.Account, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.accountCreateErr != nil {
		return nil, r.m.accountCreateErr
	}
	for _, other := range r.m.accounts {
		if strings.EqualFold(other.Email, a.Email) {
			return nil, common.ErrorAlreadyExists
		}
	}
	c := *a
	c.ID = r.m.id()
	c.DateJoined = time.Now()
	r.m.accounts[c.ID] = c
	return &c, nil
}

func (r memAccounts) Update(_ context.Context, a *models.Account) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.accountUpdateErr != nil {
		return r.m.accountUpdateErr
	}
	if _, ok := r.m.accounts[a.ID]; !ok {
		return common.ErrorNotFound
	}
	for id, other := range r.m.accounts {
		if id != a.ID && strings.EqualFold(other.Email, a.Email) {
			return common.ErrorAlreadyExists
		}
	}
	r.m.accounts[a.ID] = *a
	return nil
}

func (r memAccounts) GetByID(_ context.Context, id int64) (*models.Account, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a, ok := r.m.accounts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &a, nil
}

func (r memAccounts) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, a := range r.m.accounts {
		if strings.EqualFold(a.Email, email) {
			a := a
			return &a, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memAccounts) List(_ context.Context) ([]*models.Account, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.listErr != nil {
		return nil, r.m.listErr
	}
	var res []*models.Account
	for id := int64(1); id <= r.m.nextID; id++ {
		if a, ok := r.m.accounts[id]; ok {
			res = append(res, &a)
		}
	}
	return res, nil
}

func (r memAccounts) Delete(_ context.Context, id int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.accounts[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.m.accounts, id)
	delete(r.m.profiles, id)
	return nil
}

func (r memAccounts) TouchLastLogin(_ context.Context, id int64, at time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.touchErr != nil {
		return r.m.touchErr
	}
	a := r.m.accounts[id]
	a.LastLogin = &at
	r.m.accounts[id] = a
	return nil
}

type memProfiles struct{ m *memStore }

func (r memProfiles) Create(_ context.Context, p *models.Profile) (*models.Profile, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.profileCreateErr != nil {
		return nil, r.m.profileCreateErr
	}
	if _, ok := r.m.profiles[p.AccountID]; ok {
		return nil, common.ErrorAlreadyExists
	}
	c := *p
	c.ID = r.m.id()
	r.m.profiles[c.AccountID] = c
	return &c, nil
}

func (r memProfiles) Update(_ context.Context, p *models.Profile) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.profileUpdateErr != nil {
		return r.m.profileUpdateErr
	}
	if _, ok := r.m.profiles[p.AccountID]; !ok {
		return common.ErrorNotFound
	}
	r.m.profiles[p.AccountID] = *p
	return nil
}

func (r memProfiles) GetByAccountID(_ context.Context, id int64) (*models.Profile, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.profiles[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &p, nil
}

func (r memProfiles) List(_ context.Context) ([]*models.Profile, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var res []*models.Profile
	for _, p := range r.m.profiles {
		p := p
		res = append(res, &p)
	}
	return res, nil
}

type memTokens struct{ m *memStore }

func (r memTokens) Create(_ context.Context, accountID int64, token string, validity time.Duration) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.tokenCreateErr != nil {
		return r.m.tokenCreateErr
	}
	r.m.tokens[token] = models.RefreshToken{ID: r.m.id(), AccountID: accountID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (r memTokens) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.tokenFindErr != nil {
		return nil, r.m.tokenFindErr
	}
	t, ok := r.m.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &t, nil
}

func (r memTokens) Delete(_ context.Context, token string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.tokenDeleteErr != nil {
		return r.m.tokenDeleteErr
	}
	delete(r.m.tokens, token)
	return nil
}

// memStorage is a filestore.Storage keeping files in memory.
type memStorage struct {
	mu        sync.Mutex
	files     map[string][]byte
	saveErr   error
	deleteErr error
	deleted   []string
}

func newMemStorage() *memStorage {
	return &memStorage{files: map[string][]byte{}}
}

func (s *memStorage) Save(_ context.Context, name string, r io.Reader) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = b
	return nil
}

func (s *memStorage) Open(_ context.Context, name string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.files[name]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (s *memStorage) Exists(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[name]
	return ok, nil
}

func (s *memStorage) Delete(_ context.Context, name string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, name)
	s.deleted = append(s.deleted, name)
	return nil
}

func (s *memStorage) URL(name string) string { return "/media/" + name }

// storedNames lists the stored files in sorted order.
func storedNames(s *memStorage) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *memStorage) has(name string) bool {
	ok, _ := s.Exists(context.Background(), name)
	return ok
}

type recordingProcessor struct {
	processed []string
	err       error
}

func (p *recordingProcessor) Process(_ context.Context, name string) error {
	p.processed = append(p.processed, name)
	return p.err
}

var errProcess = errors.New("process failed")

type fixture struct {
	db        *sql.DB
	mock      sqlmock.Sqlmock
	store     *memStore
	storage   *memStorage
	processor *recordingProcessor
	profiles  *ProfileService
	accounts  *AccountService
	auth      *AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, mock := newSQLMockDB(t)
	f := &fixture{
		db:        db,
		mock:      mock,
		store:     newMemStore(),
		storage:   newMemStorage(),
		processor: &recordingProcessor{},
	}
	f.profiles = NewProfileService(f.store, f.storage, f.processor, logging.Nop())
	f.accounts = NewAccountService(db, f.store, f.profiles, logging.Nop())
	f.accounts.bcryptCost = bcrypt.MinCost
	f.auth = NewAuthService(db, f.store, &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
	}, logging.Nop())
	return f
}

func (f *fixture) expectTx(commit bool) {
	f.mock.ExpectBegin()
	if commit {
		f.mock.ExpectCommit()
	} else {
		f.mock.ExpectRollback()
	}
}

func ptr[T any](v T) *T { return &v }
