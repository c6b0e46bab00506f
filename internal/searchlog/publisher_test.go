package searchlog_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workcheck/internal/employee"
	"workcheck/internal/searchlog"
	"workcheck/internal/user"
	id "workcheck/pkg/domain"
	"workcheck/pkg/platform/middleware/metadata"
)

func newStores(t *testing.T) (*user.InMemoryStore, *employee.InMemoryStore, *searchlog.InMemoryStore) {
	t.Helper()
	users := user.NewInMemoryStore()
	employees := employee.NewInMemoryStore()
	return users, employees, searchlog.NewInMemoryStore(users, employees)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublisher_RecordsAsynchronously(t *testing.T) {
	users, employees, store := newStores(t)
	ctx := context.Background()

	u := &user.User{ID: id.UserID(uuid.New()), Email: "hr@acme.test", DocumentNumber: "900123456", FirstName: "Diana", LastName: "Torres", Role: user.RoleUser, Status: user.StatusActive, CreatedAt: time.Now()}
	require.NoError(t, users.Create(ctx, u))

	emp := &employee.Employee{ID: id.EmployeeID(uuid.New()), DocumentNumber: "12345", FirstName: "Laura", LastName: "Mendoza", City: "Bogotá", Status: employee.StatusActive, CreatedAt: time.Now()}
	_, _, err := employees.CreateIfAbsent(ctx, emp)
	require.NoError(t, err)

	publisher := searchlog.NewPublisher(store, searchlog.WithPublisherLogger(discardLogger()))
	publisher.Record(ctx, u.ID, &emp.ID, "12345")
	publisher.Record(ctx, u.ID, nil, "00000")
	publisher.Close()

	details, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, details, 2)

	var resolved, unresolved *searchlog.Detail
	for _, d := range details {
		if d.Entry.EmployeeID != nil {
			resolved = d
		} else {
			unresolved = d
		}
	}
	require.NotNil(t, resolved)
	require.NotNil(t, unresolved)

	assert.Equal(t, "hr@acme.test", resolved.UserEmail)
	assert.Equal(t, "Diana Torres", resolved.UserName)
	assert.Equal(t, "Laura Mendoza", resolved.EmployeeName)
	assert.Equal(t, "12345", resolved.DocumentNumber)
	assert.Equal(t, "00000", unresolved.Entry.Query)
	assert.Empty(t, unresolved.EmployeeName)
}

func TestPublisher_CapturesClientMetadata(t *testing.T) {
	_, _, store := newStores(t)
	publisher := searchlog.NewPublisher(store, searchlog.WithPublisherLogger(discardLogger()))

	ctx := metadata.WithClientMetadata(context.Background(), "203.0.113.7", "curl/8.5.0")
	publisher.Record(ctx, id.UserID(uuid.New()), nil, "12345")
	publisher.Close()

	details, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "203.0.113.7", details[0].Entry.IPAddress)
	assert.Equal(t, "curl/8.5.0", details[0].Entry.UserAgent)
}

func TestPublisher_CloseDrainsInbox(t *testing.T) {
	_, _, store := newStores(t)
	publisher := searchlog.NewPublisher(store, searchlog.WithPublisherLogger(discardLogger()))

	userID := id.UserID(uuid.New())
	for i := 0; i < 100; i++ {
		publisher.Record(context.Background(), userID, nil, "query")
	}
	publisher.Close()

	details, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, details, 100)
}

type captureMirror struct {
	mu      sync.Mutex
	entries []*searchlog.Entry
}

func (m *captureMirror) Publish(_ context.Context, e *searchlog.Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
}

func TestPublisher_FansOutToMirror(t *testing.T) {
	_, _, store := newStores(t)
	mirror := &captureMirror{}
	publisher := searchlog.NewPublisher(store,
		searchlog.WithPublisherLogger(discardLogger()),
		searchlog.WithMirror(mirror),
	)

	publisher.Record(context.Background(), id.UserID(uuid.New()), nil, "12345")
	publisher.Close()

	mirror.mu.Lock()
	defer mirror.mu.Unlock()
	require.Len(t, mirror.entries, 1)
	assert.Equal(t, "12345", mirror.entries[0].Query)
}
