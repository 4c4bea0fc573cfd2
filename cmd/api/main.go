package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"mycoseed/internal/config"
	"mycoseed/internal/pkg"
	"mycoseed/internal/pkg/logger"
	"mycoseed/internal/pkg/storage"
	"mycoseed/internal/pkg/storage/minio"
	"mycoseed/internal/repository/mysql"
	"mycoseed/internal/repository/redis"
	"mycoseed/internal/router"
	"mycoseed/internal/service"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "mycoseed",
	Short: "mycoseed community backend",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "create or update database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()
		defer closeDB(db)
		if err := mysql.AutoMigrate(db); err != nil {
			return err
		}
		logger.Infow("migration finished", "app", cfg.App.Name)
		return nil
	},
}

var grantAdminCmd = &cobra.Command{
	Use:   "grant-admin [user-id...]",
	Short: "grant system admin to users (defaults to bootstrap.system_admins)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()
		defer closeDB(db)

		ids := args
		if len(ids) == 0 {
			ids = cfg.Bootstrap.SystemAdmins
		}
		if len(ids) == 0 {
			return errors.New("no user ids given and bootstrap.system_admins is empty")
		}
		svc := service.NewCommunityService(mysql.NewStore(db))
		for _, id := range ids {
			err := svc.GrantSystemAdmin(cmd.Context(), id)
			switch {
			case errors.Is(err, service.ErrAlreadySystemAdmin):
				logger.Infow("already system admin", "user_id", id)
			case err != nil:
				return fmt.Errorf("grant %s: %w", id, err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")
	rootCmd.AddCommand(serveCmd, migrateCmd, grantAdminCmd)
}

// setup 读取配置、初始化日志并连接数据库
func setup() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if _, err := logger.New(cfg.Log); err != nil {
		return nil, nil, err
	}
	db, err := mysql.InitDB(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func serve(ctx context.Context) error {
	cfg, db, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer closeDB(db)

	// 自动建表（开发阶段 OK）
	if cfg.App.Env == "development" {
		if err := mysql.AutoMigrate(db); err != nil {
			return err
		}
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	objects, err := newStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	jwt := pkg.NewJWT(cfg.JWT)
	store := mysql.NewStore(db)
	tokens := redis.NewTokenRepository(rdb, jwt.AccessTTL())

	gin.SetMode(cfg.HTTP.Mode)
	r := router.InitRouter(router.Services{
		Users:         service.NewUserService(store, tokens, jwt),
		Communities:   service.NewCommunityService(store),
		Joins:         service.NewJoinService(store),
		Members:       service.NewMemberService(store),
		Announcements: service.NewAnnouncementService(store),
		Posts:         service.NewPostService(store),
		Uploads:       service.NewUploadService(store, objects),
	})

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("http server listening", "addr", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func closeDB(db *gorm.DB) {
	if err := mysql.Close(db); err != nil {
		logger.Warnw("close database failed", "err", err)
	}
}

func newStorage(ctx context.Context, cfg config.StorageConfig) (storage.Service, error) {
	if cfg.Driver == "memory" {
		return storage.NewMemory(cfg.BaseURL), nil
	}
	client, err := minio.New(ctx, cfg.Minio)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
