package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iliyamo/unit-reservation/internal/config"
	"github.com/iliyamo/unit-reservation/internal/database"
	"github.com/iliyamo/unit-reservation/internal/handler"
	"github.com/iliyamo/unit-reservation/internal/jobs"
	"github.com/iliyamo/unit-reservation/internal/logger"
	"github.com/iliyamo/unit-reservation/internal/model"
	"github.com/iliyamo/unit-reservation/internal/queue"
	"github.com/iliyamo/unit-reservation/internal/repository"
	"github.com/iliyamo/unit-reservation/internal/repository/memory"
	"github.com/iliyamo/unit-reservation/internal/router"
	"github.com/iliyamo/unit-reservation/internal/service"
	"github.com/iliyamo/unit-reservation/internal/storage"
)

// store is what main needs from either backend.
type store interface {
	repository.Store
	Ping(ctx context.Context) error
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat, "unit-reservation")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, zl *zap.Logger) error {
	st, closeStore, err := openStore(ctx, cfg, zl)
	if err != nil {
		return err
	}
	defer closeStore()

	rdb := config.NewRedisClient(zl)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	disk, err := storage.NewDiskStore(cfg.UploadDir, "/uploads", zl)
	if err != nil {
		return err
	}
	policy := storage.DefaultImagePolicy()
	policy.MaxBytes = cfg.UploadMaxBytes

	events := startEvents(ctx, cfg, zl)

	janitor := jobs.NewTokenJanitor(st.Tokens(), zl.Named("janitor"))
	janitorDone, err := janitor.Start(ctx, cfg.TokenPurgeSpec)
	if err != nil {
		return err
	}

	h := router.Handlers{
		Auth: handler.NewAuthHandler(service.NewAuthService(st, service.TokenConfig{
			Secret:         cfg.JWTSecret,
			AccessTTLMin:   cfg.AccessTTLMin,
			RefreshTTLDays: cfg.RefreshTTLDays,
		}), zl),
		Users:        handler.NewUserHandler(service.NewUserService(st, cfg.BcryptCost), zl),
		Towers:       handler.NewCatalogHandler[model.Tower](service.NewTowerService(st), zl),
		RoomTypes:    handler.NewCatalogHandler[model.RoomType](service.NewRoomTypeService(st), zl),
		Facilities:   handler.NewCatalogHandler[model.Facility](service.NewFacilityService(st), zl),
		Floors:       handler.NewFloorHandler(service.NewFloorService(st, disk, policy, zl), zl),
		Units:        handler.NewUnitHandler(service.NewUnitService(st, disk, policy, zl), zl),
		Reservations: handler.NewReservationHandler(service.NewReservationService(st, disk, policy, events, zl), zl),
	}
	e := router.New(h, router.Options{
		JWTSecret: cfg.JWTSecret,
		UploadDir: cfg.UploadDir,
		// a unit write may carry several images
		BodyLimit: bodyLimit(cfg.UploadMaxBytes * 10),
		Health:    st,
		Redis:     rdb,
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     config.LoadCacheConfig(),
		Log:       zl,
	})

	errc := make(chan error, 1)
	go func() {
		zl.Info("listening", zap.String("addr", ":"+cfg.Port), zap.String("env", cfg.Env), zap.String("store", cfg.StoreDriver))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Warn("http shutdown", zap.Error(err))
	}
	<-janitorDone
	return nil
}

func openStore(ctx context.Context, cfg config.Config, zl *zap.Logger) (store, func(), error) {
	if cfg.StoreDriver == config.DriverMemory {
		zl.Warn("using in-memory store; data is lost on exit")
		return memory.NewStore(), func() {}, nil
	}
	db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return repository.NewMySQLStore(db, cfg.TxIsolation), func() { _ = db.Close() }, nil
}

// startEvents returns the reservation event publisher and, when RabbitMQ is
// configured, starts the audit consumer that appends events to
// AUDIT_LOG_PATH.
func startEvents(ctx context.Context, cfg config.Config, zl *zap.Logger) service.EventPublisher {
	if cfg.RabbitURL == "" {
		zl.Info("RABBITMQ_URL not set, reservation events disabled")
		return queue.NopPublisher{}
	}
	if err := os.MkdirAll(filepath.Dir(cfg.AuditLogPath), 0o755); err != nil {
		zl.Warn("audit log dir", zap.Error(err))
	}
	audit, err := logger.NewFile(cfg.AuditLogPath)
	if err != nil {
		zl.Warn("audit logger unavailable, consumer not started", zap.Error(err))
	} else {
		go func() {
			defer func() { _ = audit.Sync() }()
			err := queue.StartAuditConsumer(ctx, cfg.RabbitURL, cfg.EventsQueue, audit, zl.Named("audit"))
			if err != nil && !errors.Is(err, context.Canceled) {
				zl.Warn("audit consumer stopped", zap.Error(err))
			}
		}()
	}
	return queue.NewAMQPPublisher(cfg.RabbitURL, cfg.EventsQueue, zl.Named("events"))
}

// bodyLimit renders n bytes in the form echo's BodyLimit expects.
func bodyLimit(n int64) string {
	const mb = 1 << 20
	if n < mb {
		n = mb
	}
	return strconv.FormatInt(n/mb, 10) + "M"
}
