package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"tengen/gateway/internal/api"
	"tengen/gateway/internal/auth"
	"tengen/gateway/internal/gateway"
	"tengen/gateway/internal/models"
	"tengen/gateway/internal/websocket"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Configure GORM logger to ignore "record not found" errors
	// This suppresses expected errors when callers probe unknown job IDs
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Info,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	// Database connection: postgres when DATABASE_URL is set, local sqlite
	// file otherwise
	var db *gorm.DB
	var err error
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: newLogger})
	} else {
		path := os.Getenv("SQLITE_PATH")
		if path == "" {
			path = "./gateway.db"
		}
		db, err = gorm.Open(sqlite.Open(path), &gorm.Config{Logger: newLogger})
	}
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := models.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Administrator identity; every privileged gateway call is checked
	// against it
	adminAddress := os.Getenv("ADMIN_ADDRESS")
	if adminAddress == "" {
		log.Fatal("ADMIN_ADDRESS must be set")
	}

	if err := seedAdminUser(db, adminAddress); err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}

	if err := seedMinFee(db); err != nil {
		log.Fatalf("Failed to seed minimum fee: %v", err)
	}

	// Initialize event hub
	hub := websocket.NewHub()
	go hub.Run()

	// Initialize the gateway ledger
	gw := gateway.New(db, adminAddress, hub)

	// Initialize REST API server
	apiServer := api.NewServer(db, gw, hub)

	// Start HTTP server
	httpPort := os.Getenv("HTTP_PORT")
	if httpPort == "" {
		httpPort = "8080"
	}

	log.Printf("Starting HTTP server on 0.0.0.0:%s", httpPort)
	log.Printf("WebSocket event stream: ws://0.0.0.0:%s/ws", httpPort)
	log.Printf("REST API endpoint: http://0.0.0.0:%s/api/v1", httpPort)
	log.Printf("Administrator: %s", adminAddress)

	if err := http.ListenAndServe("0.0.0.0:"+httpPort, apiServer.GetRouter()); err != nil {
		log.Fatalf("HTTP server failed: %v", err)
	}
}

// seedAdminUser creates the dashboard login for the administrator if it does
// not exist yet
func seedAdminUser(db *gorm.DB, adminAddress string) error {
	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}

	var existing models.User
	if err := db.First(&existing, "username = ?", username).Error; err == nil {
		return nil
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin"
		log.Println("ADMIN_PASSWORD not set, using default credentials")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	now := time.Now()
	return db.Create(&models.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: hash,
		Address:      adminAddress,
		CreatedAt:    now,
		UpdatedAt:    now,
	}).Error
}

// seedMinFee applies MIN_FEE_PER_JOB to a fresh database. An already
// initialized ledger keeps its stored fee; changes go through the admin API.
func seedMinFee(db *gorm.DB) error {
	raw := os.Getenv("MIN_FEE_PER_JOB")
	if raw == "" {
		return nil
	}

	minFee, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return err
	}

	var state models.GatewayState
	if err := db.First(&state, 1).Error; err != nil {
		return err
	}
	if state.NextJobID > 0 || state.MinFeePerJob > 0 {
		return nil
	}

	return db.Model(&state).Update("min_fee_per_job", minFee).Error
}
