package sessions_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/seniorinteract/internal/errors"
	"github.com/jrsteele09/seniorinteract/internal/utils"
	"github.com/jrsteele09/seniorinteract/rut"
	"github.com/jrsteele09/seniorinteract/sessions"
	"github.com/jrsteele09/seniorinteract/storage"
	"github.com/jrsteele09/seniorinteract/users"
	"github.com/stretchr/testify/require"
)

const (
	testSlotKey = "senioriteract_sesion"
	testTTL     = 24 * time.Hour
)

type testConfig struct {
	ttl  time.Duration
	slot string
}

func (c testConfig) GetSessionTTL() time.Duration { return c.ttl }
func (c testConfig) GetStorageSlotKey() string    { return c.slot }

// testClock is a settable clock shared with the store under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testFixture struct {
	backend *storage.MemoryBackend
	clock   *testClock
	store   *sessions.Store
}

func setupTestFixture(t *testing.T, backend *storage.MemoryBackend) *testFixture {
	t.Helper()

	if backend == nil {
		backend = storage.NewMemoryBackend()
	}
	// millisecond precision matches what the wire format keeps
	clock := &testClock{now: time.UnixMilli(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC).UnixMilli())}

	store, err := sessions.NewStore(backend, testConfig{ttl: testTTL, slot: testSlotKey}, sessions.WithNowTime(clock.Now))
	require.NoError(t, err)

	return &testFixture{backend: backend, clock: clock, store: store}
}

func testUser(t *testing.T, id string) sessions.UserSnapshot {
	t.Helper()
	identifier, err := rut.Parse("12345678-5")
	require.NoError(t, err)

	return sessions.UserSnapshot{
		ID:         id,
		Email:      id + "@example.com",
		Name:       "María",
		Surname:    "González",
		Identifier: utils.Ptr(identifier),
		Role:       users.RoleEndUser,
		BirthDate:  "1950-05-15",
		Phone:      "+56912345678",
	}
}

func testCredentials(suffix string) sessions.Credentials {
	return sessions.Credentials{
		AccessToken:  "access-" + suffix,
		RefreshToken: "refresh-" + suffix,
		RemoteExpiry: 1709373600,
	}
}

func TestNewStore(t *testing.T) {
	backend := storage.NewMemoryBackend()

	_, err := sessions.NewStore(nil, testConfig{ttl: testTTL, slot: testSlotKey})
	require.Error(t, err)

	_, err = sessions.NewStore(backend, testConfig{ttl: testTTL})
	require.Error(t, err)

	_, err = sessions.NewStore(backend, testConfig{slot: testSlotKey})
	require.Error(t, err)

	store, err := sessions.NewStore(backend, testConfig{ttl: time.Hour, slot: testSlotKey})
	require.NoError(t, err)
	require.Equal(t, time.Hour, store.TTL())
}

func TestStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t, nil)

	user := testUser(t, "u1")
	require.NoError(t, f.store.Save(ctx, user, testCredentials("1")))

	record, ok := f.store.Load(ctx)
	require.True(t, ok)
	require.Equal(t, user, record.User)
	require.Equal(t, "access-1", record.Credentials.AccessToken)
	require.Equal(t, "refresh-1", record.Credentials.RefreshToken)
	require.Equal(t, int64(1709373600), record.Credentials.RemoteExpiry)
	require.True(t, f.clock.Now().Equal(record.Credentials.CreatedAt))
	require.False(t, record.IsExpired(f.clock.Now(), testTTL))

	require.True(t, f.store.IsActive(ctx))
	current, ok := f.store.CurrentUser(ctx)
	require.True(t, ok)
	require.Equal(t, "u1@example.com", current.Email)
}

func TestStore_LoadEmpty(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t, nil)

	_, ok := f.store.Load(ctx)
	require.False(t, ok)
	require.False(t, f.store.IsActive(ctx))
	_, ok = f.store.CurrentUser(ctx)
	require.False(t, ok)
}

func TestStore_Expiry(t *testing.T) {
	ctx := context.Background()

	t.Run("valid at exactly the ttl", func(t *testing.T) {
		f := setupTestFixture(t, nil)
		require.NoError(t, f.store.Save(ctx, testUser(t, "u1"), testCredentials("1")))

		f.clock.Advance(testTTL)
		_, ok := f.store.Load(ctx)
		require.True(t, ok)
	})

	t.Run("expired one millisecond past the ttl", func(t *testing.T) {
		f := setupTestFixture(t, nil)
		require.NoError(t, f.store.Save(ctx, testUser(t, "u1"), testCredentials("1")))

		f.clock.Advance(testTTL + time.Millisecond)
		_, ok := f.store.Load(ctx)
		require.False(t, ok)

		// the slot was cleared, not just reported empty once
		_, found, err := f.backend.Get(ctx, testSlotKey)
		require.NoError(t, err)
		require.False(t, found)

		_, ok = f.store.Load(ctx)
		require.False(t, ok)
	})

	t.Run("missing createdAt is expired", func(t *testing.T) {
		f := setupTestFixture(t, nil)
		require.NoError(t, f.backend.Set(ctx, testSlotKey, `{"user":{"id":"u1"},"credentials":{"accessToken":"a"}}`))

		_, ok := f.store.Load(ctx)
		require.False(t, ok)
		require.Equal(t, 0, f.backend.Len())
	})
}

func TestStore_CorruptionSelfHeals(t *testing.T) {
	ctx := context.Background()

	for _, raw := range []string{
		"not json at all",
		"null",
		"[]",
		`{"user":{"id":"u1"}}`,
		`{"user":{"id":"u1","identifier":"12.345.678-5"},"credentials":{"createdAt":1709287200000}}`,
	} {
		t.Run(raw, func(t *testing.T) {
			f := setupTestFixture(t, nil)
			require.NoError(t, f.backend.Set(ctx, testSlotKey, raw))

			_, ok := f.store.Load(ctx)
			require.False(t, ok)

			_, found, err := f.backend.Get(ctx, testSlotKey)
			require.NoError(t, err)
			require.False(t, found)

			_, ok = f.store.Load(ctx)
			require.False(t, ok)

			// corruption never blocks the next save
			require.NoError(t, f.store.Save(ctx, testUser(t, "u2"), testCredentials("2")))
			require.True(t, f.store.IsActive(ctx))
		})
	}
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()

	t.Run("empty slot", func(t *testing.T) {
		f := setupTestFixture(t, nil)
		require.NoError(t, f.store.Clear(ctx))
		require.NoError(t, f.store.Clear(ctx))
		require.False(t, f.store.IsActive(ctx))
	})

	t.Run("removes saved session", func(t *testing.T) {
		f := setupTestFixture(t, nil)
		require.NoError(t, f.store.Save(ctx, testUser(t, "u1"), testCredentials("1")))
		require.NoError(t, f.store.Clear(ctx))
		require.False(t, f.store.IsActive(ctx))
		require.Equal(t, 0, f.backend.Len())
	})
}

func TestStore_OverwriteNeverMerges(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t, nil)

	require.NoError(t, f.store.Save(ctx, testUser(t, "u1"), testCredentials("1")))
	f.clock.Advance(time.Hour)

	u2 := sessions.UserSnapshot{ID: "u2", Email: "u2@example.com"}
	require.NoError(t, f.store.Save(ctx, u2, sessions.Credentials{AccessToken: "access-2"}))

	record, ok := f.store.Load(ctx)
	require.True(t, ok)
	require.Equal(t, "u2", record.User.ID)
	require.Nil(t, record.User.Identifier)
	require.Equal(t, "", record.User.Name)
	require.Equal(t, users.RoleEndUser, record.User.Role)
	require.Equal(t, "access-2", record.Credentials.AccessToken)
	require.Equal(t, "", record.Credentials.RefreshToken)
	require.True(t, f.clock.Now().Equal(record.Credentials.CreatedAt))
}

func TestStore_OverwriteResetsCreatedAt(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t, nil)

	require.NoError(t, f.store.Save(ctx, testUser(t, "u1"), testCredentials("1")))
	f.clock.Advance(testTTL - time.Minute)
	require.NoError(t, f.store.Save(ctx, testUser(t, "u1"), testCredentials("2")))

	f.clock.Advance(2 * time.Minute)
	record, ok := f.store.Load(ctx)
	require.True(t, ok)
	require.Equal(t, "access-2", record.Credentials.AccessToken)
}

func TestStore_SaveWriteFailure(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t, storage.NewMemoryBackend(storage.WithCapacity(16)))

	err := f.store.Save(ctx, testUser(t, "u1"), testCredentials("1"))
	require.ErrorIs(t, err, errors.ErrStorageWriteFailed)
	require.ErrorIs(t, err, errors.ErrQuotaExceeded)
	require.False(t, f.store.IsActive(ctx))
}

func TestStore_ReadsPriorVersionRecords(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t, nil)

	createdAt := f.clock.Now().Add(-time.Hour).UnixMilli()
	raw := fmt.Sprintf(`{
		"user": {"id": "local_demo", "email": "demo@senioriteract.com", "name": "María", "identifier": "12345678-5", "role": "moderador", "extra": true},
		"credentials": {"accessToken": "tok", "refreshToken": "ref", "remoteExpiry": 1700000000, "createdAt": %d}
	}`, createdAt)
	require.NoError(t, f.backend.Set(ctx, testSlotKey, raw))

	record, ok := f.store.Load(ctx)
	require.True(t, ok)
	require.Equal(t, "local_demo", record.User.ID)
	require.Equal(t, "", record.User.Surname)
	require.Equal(t, "", record.User.Phone)
	require.Equal(t, users.RoleModerator, record.User.Role)
	require.NotNil(t, record.User.Identifier)
	require.Equal(t, "12.345.678-5", record.User.Identifier.Formatted())
	require.Equal(t, int64(1700000000), record.Credentials.RemoteExpiry)
	require.Equal(t, createdAt, record.Credentials.CreatedAt.UnixMilli())
}

func TestStore_WritesStableFieldNames(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t, nil)

	require.NoError(t, f.store.Save(ctx, testUser(t, "u1"), testCredentials("1")))
	raw, found, err := f.backend.Get(ctx, testSlotKey)
	require.NoError(t, err)
	require.True(t, found)

	for _, field := range []string{
		`"user":`, `"id":"u1"`, `"email":`, `"name":`, `"surname":`, `"identifier":"12345678-5"`,
		`"role":"adulto_mayor"`, `"birthDate":"1950-05-15"`, `"phone":`,
		`"credentials":`, `"accessToken":"access-1"`, `"refreshToken":`, `"remoteExpiry":1709373600`,
		fmt.Sprintf(`"createdAt":%d`, f.clock.Now().UnixMilli()),
	} {
		require.Contains(t, raw, field)
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("u%d", i)
			_ = f.store.Save(ctx, sessions.UserSnapshot{ID: id}, sessions.Credentials{AccessToken: id})
			f.store.Load(ctx)
			if i%5 == 0 {
				_ = f.store.Clear(ctx)
			}
		}(i)
	}
	wg.Wait()

	// whatever won, the slot holds either nothing or one whole record
	if record, ok := f.store.Load(ctx); ok {
		require.Equal(t, record.User.ID, record.Credentials.AccessToken)
	}
}
