package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/sessiond/config"
	"github.com/tech-arch1tect/sessiond/services/auth"
	"github.com/tech-arch1tect/sessiond/services/jwt"
	"github.com/tech-arch1tect/sessiond/services/refreshtoken"
	"github.com/tech-arch1tect/sessiond/services/user"
	"github.com/tech-arch1tect/sessiond/testutils"
	"gorm.io/gorm"
)

const (
	testEmail    = "alice@example.com"
	testPassword = "CorrectPass123"
	testUA       = "Mozilla/5.0 (X11; Linux x86_64; rv:120.0) Gecko/20100101 Firefox/120.0"
)

type testEnv struct {
	manager *Manager
	users   *user.Service
	codec   *jwt.Service
	db      *gorm.DB
	cfg     *config.Config
	alice   *user.User
}

func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	cfg := testutils.GetTestConfig()
	for _, fn := range mutate {
		fn(cfg)
	}

	db := testutils.SetupTestDB(t, &user.User{}, &refreshtoken.RefreshToken{})

	verifier := auth.NewService(cfg, nil)
	users := user.NewService(db, verifier, nil)
	verifier.SetUserStore(users)
	codec := jwt.NewService(cfg, nil)
	tokens := refreshtoken.NewService(db, nil)

	alice, err := users.Create(user.CreateUserInput{
		FirstName: "alice",
		LastName:  "smith",
		Email:     testEmail,
		Password:  testPassword,
	})
	require.NoError(t, err)

	return &testEnv{
		manager: NewManager(db, cfg, verifier, codec, tokens, nil),
		users:   users,
		codec:   codec,
		db:      db,
		cfg:     cfg,
		alice:   alice,
	}
}

// setLastAccessed rewinds the user's window anchor so the next access takes
// the cold path (or stays warm, depending on the offset).
func (e *testEnv) setLastAccessed(t *testing.T, at time.Time) {
	t.Helper()
	err := e.db.Model(&user.User{}).Where("id = ?", e.alice.ID).
		Update("last_accessed", at).Error
	require.NoError(t, err)
}

func (e *testEnv) reloadAlice(t *testing.T) *user.User {
	t.Helper()
	var u user.User
	require.NoError(t, e.db.First(&u, e.alice.ID).Error)
	return &u
}

func TestManager_Login(t *testing.T) {
	t.Run("valid credentials yield decodable pair", func(t *testing.T) {
		env := newTestEnv(t)

		pair, err := env.manager.Login(testEmail, testPassword, testUA)
		require.NoError(t, err)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)

		claims, err := env.codec.Decode(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, testEmail, claims.Subject)
		assert.Equal(t, env.alice.ID, claims.UserID)

		var record refreshtoken.RefreshToken
		require.NoError(t, env.db.Where("token = ?", pair.RefreshToken).First(&record).Error)
		assert.Equal(t, env.alice.ID, record.UserID)
		assert.False(t, record.Revoked)
		assert.Contains(t, record.DeviceInfo, "Firefox")
	})

	t.Run("invalid credentials", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.manager.Login(testEmail, "WrongPass123", testUA)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

		_, err = env.manager.Login("nobody@example.com", testPassword, testUA)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("login invalidates the previous session", func(t *testing.T) {
		env := newTestEnv(t)

		first, err := env.manager.Login(testEmail, testPassword, testUA)
		require.NoError(t, err)

		env.setLastAccessed(t, time.Now().Add(-2*time.Minute))
		_, err = env.manager.Login(testEmail, testPassword, testUA)
		require.NoError(t, err)

		_, err = env.manager.Refresh(first.RefreshToken, testUA)
		assert.ErrorIs(t, err, ErrTokenReuse)
	})

	t.Run("resets the rate limit counter on the cold path", func(t *testing.T) {
		env := newTestEnv(t)

		env.setLastAccessed(t, time.Now().Add(-2*time.Minute))
		_, err := env.manager.Login(testEmail, testPassword, testUA)
		require.NoError(t, err)

		assert.Equal(t, 1, env.reloadAlice(t).RefreshLimit)
	})
}

func TestManager_Refresh(t *testing.T) {
	t.Run("rotation issues a new pair and consumes the old token", func(t *testing.T) {
		env := newTestEnv(t)

		pair, err := env.manager.Login(testEmail, testPassword, testUA)
		require.NoError(t, err)

		rotated, err := env.manager.Refresh(pair.RefreshToken, testUA)
		require.NoError(t, err)
		assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

		claims, err := env.codec.Decode(rotated.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, env.alice.ID, claims.UserID)
	})

	t.Run("replay of a consumed token is a hard failure", func(t *testing.T) {
		env := newTestEnv(t)

		pair, err := env.manager.Login(testEmail, testPassword, testUA)
		require.NoError(t, err)

		_, err = env.manager.Refresh(pair.RefreshToken, testUA)
		require.NoError(t, err)

		_, err = env.manager.Refresh(pair.RefreshToken, testUA)
		assert.ErrorIs(t, err, ErrTokenReuse)
	})

	t.Run("missing token", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.manager.Refresh("", testUA)
		assert.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("malformed token", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.manager.Refresh("garbage", testUA)
		assert.ErrorIs(t, err, jwt.ErrMalformedToken)
	})

	t.Run("expired token fails and the record is revoked", func(t *testing.T) {
		env := newTestEnv(t, func(cfg *config.Config) {
			cfg.RefreshToken.Expiry = -time.Minute
		})

		pair, err := env.manager.Login(testEmail, testPassword, testUA)
		require.NoError(t, err)

		_, err = env.manager.Refresh(pair.RefreshToken, testUA)
		assert.ErrorIs(t, err, ErrTokenExpired)

		var record refreshtoken.RefreshToken
		require.NoError(t, env.db.Where("token = ?", pair.RefreshToken).First(&record).Error)
		assert.True(t, record.Revoked)
	})

	t.Run("token for a deleted user reads as reuse", func(t *testing.T) {
		env := newTestEnv(t)

		pair, err := env.manager.Login(testEmail, testPassword, testUA)
		require.NoError(t, err)

		require.NoError(t, env.db.Delete(&user.User{}, env.alice.ID).Error)

		_, err = env.manager.Refresh(pair.RefreshToken, testUA)
		assert.ErrorIs(t, err, ErrTokenReuse)
	})
}

func TestManager_RateLimit(t *testing.T) {
	t.Run("limit reached within the window", func(t *testing.T) {
		env := newTestEnv(t)

		pair, err := env.manager.Login(testEmail, testPassword, testUA)
		require.NoError(t, err)

		// Anchor the window before the refresh burst so the first refresh
		// takes the cold path.
		env.setLastAccessed(t, time.Now().Add(-2*time.Minute))

		for i := 0; i < env.cfg.RateLimit.MaxAttempts; i++ {
			pair, err = env.manager.Refresh(pair.RefreshToken, testUA)
			require.NoError(t, err, "refresh %d should be within the limit", i+1)
		}

		_, err = env.manager.Refresh(pair.RefreshToken, testUA)
		assert.ErrorIs(t, err, ErrRateLimited)
	})

	t.Run("rate limited refresh does not consume the token", func(t *testing.T) {
		env := newTestEnv(t)

		pair, err := env.manager.Login(testEmail, testPassword, testUA)
		require.NoError(t, err)

		env.setLastAccessed(t, time.Now().Add(-2*time.Minute))
		for i := 0; i < env.cfg.RateLimit.MaxAttempts; i++ {
			pair, err = env.manager.Refresh(pair.RefreshToken, testUA)
			require.NoError(t, err)
		}

		_, err = env.manager.Refresh(pair.RefreshToken, testUA)
		require.ErrorIs(t, err, ErrRateLimited)

		// Once the window elapses the same token must still rotate.
		env.setLastAccessed(t, time.Now().Add(-2*time.Minute))
		_, err = env.manager.Refresh(pair.RefreshToken, testUA)
		require.NoError(t, err)
		assert.Equal(t, 1, env.reloadAlice(t).RefreshLimit)
	})

	t.Run("login is rate limited like refresh", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.manager.Login(testEmail, testPassword, testUA)
		require.NoError(t, err)

		for i := 0; i < env.cfg.RateLimit.MaxAttempts-1; i++ {
			_, err = env.manager.Login(testEmail, testPassword, testUA)
			require.NoError(t, err)
		}

		_, err = env.manager.Login(testEmail, testPassword, testUA)
		assert.ErrorIs(t, err, ErrRateLimited)
	})
}

func TestManager_Logout(t *testing.T) {
	t.Run("revokes the active token", func(t *testing.T) {
		env := newTestEnv(t)

		pair, err := env.manager.Login(testEmail, testPassword, testUA)
		require.NoError(t, err)

		userID, err := env.manager.Logout(pair.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, env.alice.ID, userID)

		_, err = env.manager.Refresh(pair.RefreshToken, testUA)
		assert.ErrorIs(t, err, ErrTokenReuse)
	})

	t.Run("is idempotent", func(t *testing.T) {
		env := newTestEnv(t)

		pair, err := env.manager.Login(testEmail, testPassword, testUA)
		require.NoError(t, err)

		_, err = env.manager.Logout(pair.RefreshToken)
		require.NoError(t, err)

		_, err = env.manager.Logout(pair.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("rejects malformed tokens", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.manager.Logout("garbage")
		assert.ErrorIs(t, err, jwt.ErrMalformedToken)
	})

	t.Run("rejects missing tokens", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.manager.Logout("")
		assert.ErrorIs(t, err, ErrMissingToken)
	})
}
