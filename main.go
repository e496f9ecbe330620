package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"

	"github.com/example/chatroom-playground/modules/api"
	"github.com/example/chatroom-playground/modules/audit"
	"github.com/example/chatroom-playground/modules/auth"
	"github.com/example/chatroom-playground/modules/chat"
	"github.com/example/chatroom-playground/modules/hub"
	"github.com/example/chatroom-playground/modules/ratelimit"
)

const shutdownTimeout = 30 * time.Second

// Config holds the application configuration read from the environment.
type Config struct {
	Port               string
	DBPath             string
	JWTSecretKey       string
	JWTIssuer          string
	RedisURL           string
	MessageRateLimit   int
	MessageBurst       int
	AutoCloseEmpty     bool
	OutboxSize         int
	CORSAllowedOrigins string
	DevUserID          string
}

func loadConfig() Config {
	jwtDefaults := auth.DefaultJWTConfig()
	limitDefaults := ratelimit.DefaultConfig()
	return Config{
		Port:               getEnv("PORT", "3000"),
		DBPath:             getEnv("DB_PATH", "chatroom.db"),
		JWTSecretKey:       getEnv("JWT_SECRET_KEY", jwtDefaults.SecretKey),
		JWTIssuer:          getEnv("JWT_ISSUER", jwtDefaults.Issuer),
		RedisURL:           getEnv("REDIS_URL", ""),
		MessageRateLimit:   getEnvInt("MESSAGE_RATE_LIMIT", limitDefaults.Rate),
		MessageBurst:       getEnvInt("MESSAGE_BURST", limitDefaults.Burst),
		AutoCloseEmpty:     getEnvBool("ROOMS_AUTO_CLOSE_EMPTY", false),
		OutboxSize:         getEnvInt("OUTBOX_SIZE", hub.DefaultOutboxSize),
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", ""),
		DevUserID:          getEnv("DEV_USER_ID", ""),
	}
}

func main() {
	log.Println("=== Chat Room Playground - Fiber WebSocket + EventBus ===")

	cfg := loadConfig()

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	jwtConfig := auth.DefaultJWTConfig()
	jwtConfig.SecretKey = cfg.JWTSecretKey
	jwtConfig.Issuer = cfg.JWTIssuer

	limitConfig := ratelimit.DefaultConfig()
	limitConfig.Rate = cfg.MessageRateLimit
	limitConfig.Burst = cfg.MessageBurst

	// Create modules
	rateLimitModule := ratelimit.NewModule(cfg.RedisURL, limitConfig, app.Logger())
	authModule := auth.NewModule(cfg.DBPath, jwtConfig, app.Logger())
	auditModule := audit.NewModule(cfg.DBPath, app.Logger())
	chatModule := chat.NewModule(chat.Config{
		Hub: hub.Config{
			OutboxSize: cfg.OutboxSize,
			Directory:  hub.DirectoryConfig{AutoCloseEmpty: cfg.AutoCloseEmpty},
		},
	}, rateLimitModule, app.Logger())
	apiModule := api.NewModule(api.Config{
		Port:           cfg.Port,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}, app.Logger())

	// Live sockets are not reachable through the ServiceContainer, so the
	// API talks to the chat module directly for them.
	apiModule.SetSessions(chatModule)

	// Register modules with the framework.
	// Order: independent modules first, then modules with dependencies
	// - rate-limiter: Message rate limiting (Redis or in-memory)
	// - auth: Token validation against the user table
	// - audit: Room lifecycle audit trail (EventConsumerModule)
	// - chat: Rooms, dispatcher and bot (EventEmitterModule)
	// - api: Driving adapter (Fiber HTTP/WebSocket server)
	for _, module := range []mono.Module{rateLimitModule, authModule, auditModule, chatModule, apiModule} {
		if err := app.Register(module); err != nil {
			log.Fatalf("Failed to register %s module: %v", module.Name(), err)
		}
	}

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	devToken := ""
	if cfg.DevUserID != "" {
		devToken, err = authModule.SeedDevUser(context.Background(), cfg.DevUserID, cfg.DevUserID+"@localhost")
		if err != nil {
			log.Printf("Failed to seed dev user %s: %v", cfg.DevUserID, err)
		}
	}

	printStartupInfo(cfg, devToken)

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(cfg Config, devToken string) {
	limiter := "in-memory token bucket"
	if cfg.RedisURL != "" {
		limiter = "Redis sliding window"
	}

	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("Architecture:")
	log.Println("  - HTTP Framework: Fiber with WebSocket support")
	log.Println("  - Event Bus: room lifecycle events -> audit module")
	log.Printf("  - Database: %s", cfg.DBPath)
	log.Printf("  - Rate limiter: %s (%d msg/s, burst %d)", limiter, cfg.MessageRateLimit, cfg.MessageBurst)
	log.Printf("  - Auto-close empty rooms: %t", cfg.AutoCloseEmpty)
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%s):", cfg.Port)
	log.Println("  GET    /health                 - Health check")
	log.Println("  GET    /api/v1/rooms           - List open rooms")
	log.Println("  GET    /api/v1/audit-logs      - Room audit trail (?room=&limit=)")
	log.Println("  GET    /playground             - Browser test client")
	log.Println("")
	log.Printf("WebSocket Endpoint (ws://localhost:%s/ws):", cfg.Port)
	log.Printf("  Connect with: ws://localhost:%s/ws?token=<access token>", cfg.Port)
	log.Println("  Message types: create_room, join_room, leave_room, close_room, list_rooms, message")
	if devToken != "" {
		log.Println("")
		log.Printf("Dev user %s token: %s", cfg.DevUserID, devToken)
	}
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}

// getEnv returns environment variable value or default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns environment variable as int or default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Warning: invalid int value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvBool returns environment variable as bool or default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
		log.Printf("Warning: invalid bool value for %s: %s, using default: %t", key, value, defaultValue)
	}
	return defaultValue
}
