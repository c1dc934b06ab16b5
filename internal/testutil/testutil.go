package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dom/visa-booking-website/internal/api"
	"github.com/dom/visa-booking-website/internal/config"
	"github.com/dom/visa-booking-website/internal/logging"
	"github.com/dom/visa-booking-website/internal/repository"
	"github.com/dom/visa-booking-website/internal/repository/memory"
	repoPostgres "github.com/dom/visa-booking-website/internal/repository/postgres"
	"github.com/dom/visa-booking-website/internal/service"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB creates a new PostgreSQL testcontainer and returns a connection.
// The test is skipped when no container runtime is reachable.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_visa_booking"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	if err := repoPostgres.Migrate(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	testDB := &TestDB{
		Container: container,
		DB:        db,
		DSN:       dsn,
	}

	t.Cleanup(func() {
		testDB.Cleanup()
	})

	return testDB
}

// Cleanup terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		ctx := context.Background()
		tdb.Container.Terminate(ctx)
	}
}

// TestSecret is the signing secret used by TestConfig.
const TestSecret = "test-jwt-secret-key-for-testing-only"

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:               "0", // Random port
		Environment:        "test",
		RequestTimeout:     5 * time.Second,
		CORSOrigin:         "*",
		StoreDriver:        config.StoreDriverMemory,
		JWTSecret:          TestSecret,
		JWTExpirationHours: 1,
		JWTIssuer:          "visa-booking-test",
		BcryptCost:         bcrypt.MinCost, // Fast hashing for tests
		LogLevel:           "error",
		LogFormat:          "text",
		Notifier:           config.NotifierOutbox,
		NotifyTimeout:      time.Second,
	}
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	Repos    *repository.Repositories
	Services *service.Services
	Config   *config.Config
}

// NewTestServer creates a complete test server backed by in-memory repositories
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	return NewTestServerWithRepos(t, memory.NewRepositories())
}

// NewTestServerWithRepos creates a test server over the given repositories
func NewTestServerWithRepos(t *testing.T, repos *repository.Repositories) *TestServer {
	t.Helper()

	cfg := TestConfig()
	log := logging.Discard()

	services, err := service.NewServices(repos, cfg, log)
	if err != nil {
		t.Fatalf("failed to build services: %v", err)
	}
	router := api.NewRouter(services, cfg, log)

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		Repos:    repos,
		Services: services,
		Config:   cfg,
	}

	t.Cleanup(func() {
		server.Close()
		services.Auth.Wait()
	})

	return ts
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api/v1%s", ts.Server.URL, path)
}
