package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go_releasehub/api/v1"
	"go_releasehub/internal/auth"
	"go_releasehub/internal/cache"
	"go_releasehub/internal/cma"
	"go_releasehub/internal/config"
	"go_releasehub/internal/db"
	"go_releasehub/internal/jobwatch"
	"go_releasehub/internal/notify"
	"go_releasehub/internal/preference"
	"go_releasehub/internal/release"
	"go_releasehub/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "path to an ini config file (default: environment)")
	flag.Parse()

	// 1. Load configuration
	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFromINI(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
		os.Exit(1)
	}
	log.Println("✓ Configuration loaded")

	logger := logrus.NewEntry(logrus.StandardLogger())

	// 2. Initialize MySQL
	gdb, err := db.Open(cfg.MySQL.DSN)
	if err != nil {
		log.Fatalf("Failed to initialize MySQL: %v", err)
		os.Exit(1)
	}
	defer db.Close(gdb)

	if cfg.Migrate {
		if err := db.Migrate(gdb); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
			os.Exit(1)
		}
	}

	users := auth.NewUserStore(gdb)
	seedCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := users.EnsureAdmin(seedCtx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
		cancel()
		log.Fatalf("Failed to seed admin user: %v", err)
		os.Exit(1)
	}
	cancel()

	// 3. Initialize Redis
	rdb, err := cache.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// 4. Auth and CMA client
	tokens, err := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.ExpireMinutes)*time.Minute)
	if err != nil {
		log.Fatalf("Failed to initialize JWT: %v", err)
		os.Exit(1)
	}

	client, err := cma.NewClient(cfg.CMA)
	if err != nil {
		log.Fatalf("Failed to initialize CMA client: %v", err)
		os.Exit(1)
	}
	log.Printf("✓ CMA client ready (space %s, environment %s)", cfg.CMA.SpaceID, client.EnvironmentID())

	// 5. Notifications: store, Socket.IO hub, publisher
	store := notify.NewGormStore(gdb)
	hub := ws.NewHub(tokens, store, logger)
	hub.Start()
	defer hub.Close()

	publisher := notify.NewPublisher(store, hub, logger)

	// 6. Release workflow
	registry := release.NewRegistry(release.Deps{
		API:      client,
		Notifier: publisher,
		Logger:   logger,
		Sleep:    release.TimerSleep,
	})

	if cfg.JobWatcher.Enabled {
		watcher := jobwatch.NewWorker(&jobwatch.Config{
			Source: jobwatch.RegistrySource{
				Registry: registry,
				MaxIdle:  time.Duration(cfg.JobWatcher.MaxIdleMin) * time.Minute,
			},
			Logger:      logger,
			IntervalSec: cfg.JobWatcher.IntervalSec,
			Concurrency: cfg.JobWatcher.Concurrency,
		})
		watcher.Start()
		defer watcher.Stop()
		log.Println("✓ Job watcher started")
	}

	// 7. Initialize Gin router
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	v1.SetupRouter(r, v1.Deps{
		Users:    users,
		Tokens:   tokens,
		Releases: release.NewService(client),
		Registry: registry,
		Replay:   publisher,
		Layouts:  preference.NewLayoutStore(rdb),
		Socket:   hub.Handler(),
	})

	log.Printf("✓ Server starting on %s", cfg.HTTPAddr)

	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
		os.Exit(1)
	}
}
