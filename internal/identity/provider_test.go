package identity

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qzaway/foodcourt/internal/repository/file"
)

type memoryStore struct {
	values  map[string]string
	getErr  error
	putErr  error
	getCall int
}

func (m *memoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	m.getCall++
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memoryStore) Put(ctx context.Context, key, value string) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.values[key] = value
	return nil
}

func TestUserID_CreatesOnceAndReuses(t *testing.T) {
	store := &memoryStore{values: map[string]string{}}
	provider := NewProvider(store, zap.NewNop())

	first := provider.UserID(context.Background())
	require.NotEmpty(t, first)
	parsed, err := uuid.Parse(first)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())

	assert.Equal(t, first, provider.UserID(context.Background()))
	assert.Equal(t, first, store.values[StorageKey])
	assert.Equal(t, 1, store.getCall)
}

func TestUserID_ReturnsStoredValue(t *testing.T) {
	store := &memoryStore{values: map[string]string{StorageKey: "existing-id"}}
	provider := NewProvider(store, zap.NewNop())

	assert.Equal(t, "existing-id", provider.UserID(context.Background()))
}

func TestUserID_EmptyWithoutStorage(t *testing.T) {
	assert.Equal(t, "", NewProvider(nil, zap.NewNop()).UserID(context.Background()))

	broken := &memoryStore{values: map[string]string{}, getErr: errors.New("disk gone")}
	assert.Equal(t, "", NewProvider(broken, zap.NewNop()).UserID(context.Background()))

	readOnly := &memoryStore{values: map[string]string{}, putErr: errors.New("read-only")}
	assert.Equal(t, "", NewProvider(readOnly, zap.NewNop()).UserID(context.Background()))
}

func TestUserID_SurvivesRestartWithFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	first := NewProvider(file.NewIdentityRepository(path, zap.NewNop()), zap.NewNop()).UserID(context.Background())
	second := NewProvider(file.NewIdentityRepository(path, zap.NewNop()), zap.NewNop()).UserID(context.Background())

	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
}
