package http

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/launchstack/chatroom-server/internal/auth"
	"github.com/launchstack/chatroom-server/internal/config"
	"github.com/launchstack/chatroom-server/internal/core"
	"github.com/launchstack/chatroom-server/internal/service/rooms"
	"github.com/launchstack/chatroom-server/internal/store"
	"github.com/launchstack/chatroom-server/internal/store/sqlite"
)

// testEnv bundles the wired components behind a test router.
type testEnv struct {
	store    store.Store
	hub      *core.Hub
	auth     *auth.Service
	verifier auth.Verifier
	rooms    *rooms.Service
	cfg      config.Config
	jwtCfg   *auth.JWTConfig
}

// token issues a signed credential for the given email.
func (env *testEnv) token(t *testing.T, email string) string {
	t.Helper()

	token, err := auth.GenerateToken(env.jwtCfg, email)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

// createTestStore creates an in-memory SQLite store with the schema applied.
func createTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st := createTestStore(t)

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte("test-secret"),
		Issuer:   "test",
		Audience: "test",
		TTL:      24 * time.Hour,
	}
	verifier, err := auth.NewJWTVerifier(jwtConfig)
	if err != nil {
		t.Fatalf("failed to create verifier: %v", err)
	}

	logger := zerolog.Nop()
	hub := core.NewHub(st, 0, &logger)

	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.VerifyTimeout = time.Second

	return &testEnv{
		store:    st,
		hub:      hub,
		auth:     auth.NewService(st, jwtConfig),
		verifier: verifier,
		rooms:    rooms.NewService(st, hub, &logger),
		cfg:      cfg,
		jwtCfg:   jwtConfig,
	}
}
