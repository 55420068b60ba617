package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ardanlabs/conf"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"indengsvc/backend/foundation/web"
	"indengsvc/backend/internal/auth"
	"indengsvc/backend/internal/commands"
	"indengsvc/backend/internal/legacy"
	"indengsvc/backend/internal/pkg/config"
	"indengsvc/backend/internal/pkg/lock"
	"indengsvc/backend/internal/pkg/logger"
	"indengsvc/backend/internal/pkg/repository/postgresql"
	"indengsvc/backend/internal/repository/postgres/syncrun"
	"indengsvc/backend/internal/repository/postgres/user"
	"indengsvc/backend/internal/router"
	"indengsvc/backend/internal/service/employee"
)

func main() {
	root := &cobra.Command{
		Use:           "indengsvc",
		Short:         "Employee and user API backed by the legacy employee service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		command("serve", "Run the HTTP API", serve),
		command("sync", "Synchronize employees from the legacy service once", syncOnce),
		command("migrate", "Create the tables owned by this service", migrate),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// command leaves flag parsing to conf so flags and environment share one
// definition.
func command(use, short string, run func(ctx context.Context, cfg *config.Config, log *log.Logger, w io.Writer) error) *cobra.Command {
	return &cobra.Command{
		Use:                use,
		Short:              short,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewConfig(args)
			if err != nil {
				if errors.Is(err, conf.ErrHelpWanted) {
					fmt.Println(config.Usage())
					return nil
				}
				return errors.Wrap(err, "parsing config")
			}

			log, w := logger.New(cfg.Log)
			log.Printf("main: %s: config:\n%v\n", use, cfg)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg, log, w)
		},
	}
}

func openDatabase(cfg *config.Config, log *log.Logger, w io.Writer) (*postgresql.Database, error) {
	db, err := postgresql.NewDatabase(cfg.DB, log, w)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to database")
	}
	return db, nil
}

func openLocker(ctx context.Context, cfg config.Redis, log *log.Logger) (*redis.Client, lock.Locker, error) {
	if cfg.Addr == "" {
		return nil, lock.NewLocal(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, errors.Wrap(err, "connecting to redis")
	}

	return client, lock.NewRedis(client, cfg.LockTTL, func(err error) { log.Println(err) }), nil
}

func serve(ctx context.Context, cfg *config.Config, log *log.Logger, w io.Writer) error {
	db, err := openDatabase(cfg, log, w)
	if err != nil {
		return err
	}
	defer db.Close()

	if err = commands.MigrateUP(ctx, db, log); err != nil {
		return err
	}

	redisDB, locker, err := openLocker(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	if redisDB != nil {
		defer redisDB.Close()
	}

	a, err := auth.New(cfg.Auth)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	app := web.NewApp(log, w)

	r := router.NewRouter(app, db, a, legacy.New(cfg.Legacy), router.Options{
		AllowedOrigins: cfg.Web.AllowedOrigins,
		Workers:        cfg.Legacy.Workers,
		Locker:         locker,
	}, log)
	r.Init()

	srv := &http.Server{
		Addr:     cfg.Web.Port,
		Handler:  app,
		ErrorLog: log,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("main: API listening on %s", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err = <-serverErrors:
		return errors.Wrap(err, "server error")

	case <-ctx.Done():
		log.Println("main: start shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err = srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return errors.Wrap(err, "could not stop server gracefully")
		}
	}

	return nil
}

func syncOnce(ctx context.Context, cfg *config.Config, log *log.Logger, w io.Writer) error {
	db, err := openDatabase(cfg, log, w)
	if err != nil {
		return err
	}
	defer db.Close()

	redisDB, locker, err := openLocker(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	if redisDB != nil {
		defer redisDB.Close()
	}

	svc := employee.NewService(
		legacy.New(cfg.Legacy),
		user.NewRepository(db),
		syncrun.NewRepository(db),
		locker,
		cfg.Legacy.Workers,
		log,
	)

	employees, err := svc.Synchronize(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%d employees have been synchronized\n", len(employees))
	return nil
}

func migrate(ctx context.Context, cfg *config.Config, log *log.Logger, w io.Writer) error {
	db, err := openDatabase(cfg, log, w)
	if err != nil {
		return err
	}
	defer db.Close()

	return commands.MigrateUP(ctx, db, log)
}
