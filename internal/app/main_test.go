//go:build integration

package app_test

import (
	"context"
	"log"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/atelier-cms/atelier/internal/app"
	"github.com/atelier-cms/atelier/internal/config"
	"github.com/atelier-cms/atelier/internal/testutil"
)

const openAPISpecPath = "../../api/openapi/openapi.yaml"

var (
	testServer    *httptest.Server
	testDB        *pgxpool.Pool
	testClient    *testutil.Client
	testValidator *testutil.OpenAPIValidator
)

func newTestClient(t *testing.T) *testutil.Client {
	t.Helper()
	client := testutil.NewClientWithValidator(testServer.URL, testValidator)
	client.SetT(t)
	return client
}

// newTestClientWithoutValidation creates a test client without OpenAPI
// validation, for requests outside the API surface (pages, redirects).
func newTestClientWithoutValidation() *testutil.Client {
	return testutil.NewClient(testServer.URL)
}

func TestMain(m *testing.M) {
	ctx := context.Background()

	pgContainer, err := testutil.NewPostgresContainer(ctx)
	if err != nil {
		log.Fatalf("start postgres: %v", err)
	}
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			log.Printf("terminate postgres: %v", err)
		}
	}()

	migrator, err := migrate.New(
		"file://../../migrations",
		pgContainer.ConnectionString,
	)
	if err != nil {
		log.Fatalf("create migrator: %v", err)
	}
	if err := migrator.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatalf("run migrations: %v", err)
	}

	uploadsDir, err := os.MkdirTemp("", "atelier-uploads-*")
	if err != nil {
		log.Fatalf("create uploads dir: %v", err)
	}
	defer func() { _ = os.RemoveAll(uploadsDir) }()

	cfg := config.Defaults()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = "0"
	cfg.Server.MetricsPort = "0"
	cfg.Database.URL = pgContainer.ConnectionString
	cfg.Database.MaxOpenConns = 5
	cfg.Database.ConnectAttempts = 3
	cfg.Log.Level = "error"
	cfg.Log.Format = "text"
	cfg.JWT.SecretKey = "test-secret-key"
	cfg.JWT.RefreshTokenDuration = 24 * time.Hour
	cfg.Cookie.Secure = false
	cfg.Uploads.Dir = uploadsDir
	// High enough that the suite never trips the limiter; the dedicated
	// rate-limit test builds its own limiter.
	cfg.Login.RatePerMinute = 1000
	cfg.Login.Burst = 1000

	application, err := app.New(&cfg)
	if err != nil {
		log.Fatalf("create app: %v", err)
	}

	testDB, err = pgxpool.New(ctx, pgContainer.ConnectionString)
	if err != nil {
		log.Fatalf("create test db pool: %v", err)
	}

	if err := seedUsers(ctx); err != nil {
		log.Fatalf("seed users: %v", err)
	}

	testServer = httptest.NewServer(application.Router())

	testValidator, err = testutil.LoadOpenAPIValidator(openAPISpecPath)
	if err != nil {
		log.Fatalf("load OpenAPI validator: %v", err)
	}

	testClient = testutil.NewClientWithValidator(testServer.URL, testValidator)

	code := m.Run()

	testServer.Close()
	testDB.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := application.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown app: %v", err)
	}

	os.Exit(code)
}

// seedUsers creates one account per role matching the testutil login helpers.
func seedUsers(ctx context.Context) error {
	accounts := []struct {
		email    string
		password string
		role     string
	}{
		{"admin@example.com", "admin-pass-123", "admin"},
		{"manager@example.com", "manager-pass-123", "manager"},
		{"user@example.com", "user-pass-123", "user"},
	}

	for _, a := range accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.password), bcrypt.MinCost)
		if err != nil {
			return err
		}
		_, err = testDB.Exec(ctx, `
			INSERT INTO users (email, name, password_hash, role)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (email) DO NOTHING
		`, a.email, a.role, string(hash), a.role)
		if err != nil {
			return err
		}
	}
	return nil
}
