package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/roomify-app/roomify/internal/common"
	"github.com/roomify-app/roomify/internal/dbx"
	"github.com/roomify-app/roomify/internal/server/events"
	"github.com/roomify-app/roomify/internal/server/models"
	"github.com/roomify-app/roomify/internal/server/repositories/apikeys"
	"github.com/roomify-app/roomify/internal/server/repositories/passwordresets"
	"github.com/roomify-app/roomify/internal/server/repositories/refreshtokens"
	"github.com/roomify-app/roomify/internal/server/repositories/subscriptions"
	"github.com/roomify-app/roomify/internal/server/repositories/usagelogs"
	"github.com/roomify-app/roomify/internal/server/repositories/users"
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

// --- users ---

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	getOut *models.User
	getErr error

	updateErr     error
	updatedID     string
	updatedHash   []byte
	createdEmails []string
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.createdEmails = append(f.createdEmails, u.Email)
	if f.createOut != nil {
		return f.createOut, nil
	}
	out := *u
	out.ID = "new-user"
	return &out, nil
}

func (f *fakeUsersRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) UpdatePassword(ctx context.Context, id string, hash []byte) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updatedID, f.updatedHash = id, hash
	return nil
}

// --- refresh tokens ---

type fakeRefreshRepo struct {
	findOut *models.RefreshToken
	findErr error

	delErr       error
	delByUserErr error
	createErr    error

	created      []string
	deletedUsers []string
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID, token string, validity time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, userID)
	return nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	return f.delErr
}

func (f *fakeRefreshRepo) DeleteByUser(ctx context.Context, userID string) error {
	if f.delByUserErr != nil {
		return f.delByUserErr
	}
	f.deletedUsers = append(f.deletedUsers, userID)
	return nil
}

// --- password resets ---

type fakeResetsRepo struct {
	createErr error
	created   []string

	findOut *models.PasswordReset
	findErr error

	markErr error
	marked  []string
}

func (f *fakeResetsRepo) Create(ctx context.Context, userID, tokenHash string, validity time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, tokenHash)
	return nil
}

func (f *fakeResetsRepo) FindByHash(ctx context.Context, tokenHash string) (*models.PasswordReset, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeResetsRepo) MarkUsed(ctx context.Context, id string) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.marked = append(f.marked, id)
	return nil
}

// --- api keys (stateful) ---

type memKeysRepo struct {
	mu   sync.Mutex
	keys []models.APIKey

	createErr error
	listErr   error
	deletes   int
}

func (r *memKeysRepo) List(ctx context.Context, userID string) ([]models.APIKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := []models.APIKey{}
	for i := len(r.keys) - 1; i >= 0; i-- {
		if r.keys[i].UserID == userID {
			out = append(out, r.keys[i])
		}
	}
	return out, nil
}

func (r *memKeysRepo) Create(ctx context.Context, key *models.APIKey) (*models.APIKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	k := *key
	k.ID = uuid.NewString()
	k.CreatedAt = time.Now()
	k.UpdatedAt = k.CreatedAt
	r.keys = append(r.keys, k)
	return &k, nil
}

func (r *memKeysRepo) DeactivateActive(ctx context.Context, userID string, provider common.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.keys {
		if r.keys[i].UserID == userID && r.keys[i].Provider == provider {
			r.keys[i].IsActive = false
		}
	}
	return nil
}

func (r *memKeysRepo) Delete(ctx context.Context, keyID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes++
	for i := range r.keys {
		if r.keys[i].ID == keyID && r.keys[i].UserID == userID {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *memKeysRepo) FindActive(ctx context.Context, userID string, provider common.Provider) (*models.APIKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.keys {
		k := r.keys[i]
		if k.UserID == userID && k.Provider == provider && k.IsActive {
			return &k, nil
		}
	}
	return nil, common.ErrorNotFound
}

// --- usage logs ---

type fakeUsageRepo struct {
	createErr error
	entries   []models.UsageLog
	gotLimit  int
}

func (f *fakeUsageRepo) Create(ctx context.Context, e *models.UsageLog) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeUsageRepo) ListByUser(ctx context.Context, userID string, limit int) ([]models.UsageLog, error) {
	f.gotLimit = limit
	return f.entries, nil
}

// --- subscriptions ---

type fakeSubsRepo struct {
	out *models.Subscription
	err error
}

func (f *fakeSubsRepo) FindByUser(ctx context.Context, userID string) (*models.Subscription, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func (f *fakeSubsRepo) Upsert(ctx context.Context, s *models.Subscription) error { return nil }

// --- manager ---

type fakeRepoManager struct {
	u  *fakeUsersRepo
	r  *fakeRefreshRepo
	pr *fakeResetsRepo
	k  *memKeysRepo
	ul *fakeUsageRepo
	s  *fakeSubsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error         { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository                   { return m.u }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository   { return m.r }
func (m *fakeRepoManager) PasswordResets(db dbx.DBTX) passwordresets.Repository { return m.pr }
func (m *fakeRepoManager) APIKeys(db dbx.DBTX) apikeys.Repository               { return m.k }
func (m *fakeRepoManager) UsageLogs(db dbx.DBTX) usagelogs.Repository           { return m.ul }
func (m *fakeRepoManager) Subscriptions(db dbx.DBTX) subscriptions.Repository   { return m.s }

// --- broker, mailer, cipher ---

type recordingBroker struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (b *recordingBroker) Publish(ctx context.Context, e events.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
	return b.err
}

func (b *recordingBroker) Subscribe(ctx context.Context, userID string) (<-chan events.Event, func(), error) {
	return nil, func() {}, errors.New("not implemented")
}

func (b *recordingBroker) Close() error { return nil }

func (b *recordingBroker) types() []events.Type {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]events.Type, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.Type)
	}
	return out
}

type recordingMailer struct {
	email, token string
	err          error
}

func (m *recordingMailer) SendRecovery(ctx context.Context, email, token string) error {
	m.email, m.token = email, token
	return m.err
}

// reverseCipher is a reversible stand-in for cryptox.Cipher.
type reverseCipher struct {
	encErr, decErr error
}

func (c reverseCipher) Encrypt(s string) (string, error) {
	if c.encErr != nil {
		return "", c.encErr
	}
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return "enc:" + string(r), nil
}

func (c reverseCipher) Decrypt(s string) (string, error) {
	if c.decErr != nil {
		return "", c.decErr
	}
	r := []rune(strings.TrimPrefix(s, "enc:"))
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r), nil
}
