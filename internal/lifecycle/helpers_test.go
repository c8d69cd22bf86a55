package lifecycle

import (
	"bytes"
	"context"
	"database/sql"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMemBlobs() *memBlobs {
	return &memBlobs{objects: make(map[string][]byte)}
}

func (m *memBlobs) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return "", m.putErr
	}
	m.objects[key] = data
	return "/api/photos/" + key, nil
}

func (m *memBlobs) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memBlobs) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type env struct {
	db       *sql.DB
	engine   *Engine
	blobs    *memBlobs
	finder   *auth.Identity
	claimant *auth.Identity
	admin    *auth.Identity
	category *model.Category
	location *model.Location
}

func newEnv(t *testing.T, opts ...Option) *env {
	t.Helper()
	database := db.NewTestDB(t)
	ctx := context.Background()

	newIdentity := func(identifier, name, role string) *auth.Identity {
		u, err := store.CreateUser(ctx, database, store.NewUser{
			Identifier: identifier, DisplayName: name, PasswordHash: "hash", Role: role,
		})
		require.NoError(t, err)
		return &auth.Identity{UserID: u.ID, Identifier: u.Identifier, DisplayName: u.DisplayName, Role: u.Role}
	}

	cat, err := store.CreateCategory(ctx, database, "Electronics")
	require.NoError(t, err)
	loc, err := store.CreateLocation(ctx, database, "Main Library")
	require.NoError(t, err)

	blobs := newMemBlobs()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]Option{WithLogger(logger), WithRetryDelay(time.Millisecond)}, opts...)

	return &env{
		db:       database,
		engine:   New(database, blobs, opts...),
		blobs:    blobs,
		finder:   newIdentity("63200001", "Fiona Finder", model.RoleUser),
		claimant: newIdentity("63200002", "Carl Claimant", model.RoleUser),
		admin:    newIdentity("admin", "Ada Admin", model.RoleAdmin),
		category: cat,
		location: loc,
	}
}

func (e *env) newUser(t *testing.T, identifier string) *auth.Identity {
	t.Helper()
	u, err := store.CreateUser(context.Background(), e.db, store.NewUser{
		Identifier: identifier, DisplayName: "User " + identifier, PasswordHash: "hash",
	})
	require.NoError(t, err)
	return &auth.Identity{UserID: u.ID, Identifier: u.Identifier, Role: u.Role}
}

func (e *env) foundInput() CreateItemInput {
	found := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	return CreateItemInput{
		Title:       "Black Phone",
		Description: "Cracked screen, blue case",
		Type:        model.ItemTypeFound,
		CategoryID:  e.category.ID,
		LocationID:  e.location.ID,
		DateFound:   &found,
		SecurityQuestions: []QuestionInput{
			{Question: "What is the lock screen picture?", Answer: "A dog"},
		},
	}
}

func (e *env) reportFound(t *testing.T) *model.Item {
	t.Helper()
	item, err := e.engine.CreateItem(context.Background(), e.finder.UserID, e.foundInput())
	require.NoError(t, err)
	return item
}

func (e *env) user(t *testing.T, id int64) *model.User {
	t.Helper()
	u, err := store.GetUser(context.Background(), e.db, id)
	require.NoError(t, err)
	require.NotNil(t, u)
	return u
}

func (e *env) item(t *testing.T, id int64) *model.Item {
	t.Helper()
	it, err := store.GetItem(context.Background(), e.db, id)
	require.NoError(t, err)
	require.NotNil(t, it)
	return it
}

func pngUpload(t *testing.T, name string) Upload {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{10, 200, 30, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return Upload{Filename: name, Body: &buf}
}
