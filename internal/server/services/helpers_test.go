package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Batajoo/youtube-backend-clone/internal/logging"
	"github.com/Batajoo/youtube-backend-clone/internal/server/config"
	"github.com/Batajoo/youtube-backend-clone/internal/server/media"
	"github.com/Batajoo/youtube-backend-clone/internal/server/models"
	"github.com/Batajoo/youtube-backend-clone/internal/server/repositories/repomanager"
)

func testConfig() *config.Config {
	return &config.Config{
		AccessTokenSecret:            "access-k",
		AccessTokenValidityDuration:  time.Minute,
		RefreshTokenSecret:           "refresh-k",
		RefreshTokenValidityDuration: time.Hour,
		BcryptCost:                   bcrypt.MinCost,
	}
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []string
}

func (r *fakeRecorder) AuthEvent(op, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, op+":"+outcome)
}

// fakeStore wraps a MemoryStore and can be told to fail.
type fakeStore struct {
	*media.MemoryStore
	failUploadAfter int // fail once this many uploads succeeded; <0 never
	uploads         int
	deleted         []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{MemoryStore: media.NewMemoryStore("http://media.test"), failUploadAfter: -1}
}

func (f *fakeStore) Upload(ctx context.Context, folder, name, contentType string, body io.Reader, size int64) (string, error) {
	if f.failUploadAfter >= 0 && f.uploads >= f.failUploadAfter {
		return "", errors.New("bucket unavailable")
	}
	f.uploads++
	return f.MemoryStore.Upload(ctx, folder, name, contentType, body, size)
}

func (f *fakeStore) Delete(ctx context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	return f.MemoryStore.Delete(ctx, url)
}

type fixture struct {
	svc      *UserService
	rm       *repomanager.MemoryRepositoryManager
	store    *fakeStore
	recorder *fakeRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		rm:       repomanager.NewMemoryRepositoryManager(),
		store:    newFakeStore(),
		recorder: &fakeRecorder{},
	}
	f.svc = NewUserService(f.rm, f.store, testConfig(), logging.Nop(), WithRecorder(f.recorder))
	return f
}

func image(name string) *FileUpload {
	return &FileUpload{Name: name, ContentType: "image/png", Size: 3, Body: strings.NewReader("img")}
}

// registerAda creates the account used throughout the scenarios.
func (f *fixture) registerAda(t *testing.T) *models.Identity {
	t.Helper()
	u, err := f.svc.Register(context.Background(), RegisterInput{
		Username: "ada",
		Email:    "ada@x.io",
		FullName: "Ada Lovelace",
		Password: "Secret123",
		Avatar:   image("ada.png"),
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) stored(t *testing.T, id string) *models.Identity {
	t.Helper()
	u, err := f.rm.Users().FindByID(context.Background(), id)
	require.NoError(t, err)
	return u
}
