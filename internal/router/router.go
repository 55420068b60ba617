package router

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uptrace/bun"

	"indengsvc/backend/foundation/web"
	"indengsvc/backend/internal/auth"
	"indengsvc/backend/internal/middleware"
	"indengsvc/backend/internal/pkg/lock"
	"indengsvc/backend/internal/pkg/repository/postgresql"
	"indengsvc/backend/internal/repository/postgres/syncrun"
	"indengsvc/backend/internal/repository/postgres/user"
	"indengsvc/backend/internal/service/employee"

	employee_controller "indengsvc/backend/internal/controller/http/v1/employee"
	syncrun_controller "indengsvc/backend/internal/controller/http/v1/syncrun"
	user_controller "indengsvc/backend/internal/controller/http/v1/user"
)

type Options struct {
	AllowedOrigins []string
	Workers        int
	// Locker guards employee synchronization. A nil Locker falls back to an
	// in-process one.
	Locker lock.Locker
}

type Router struct {
	*web.App
	postgresDB *postgresql.Database
	auth       *auth.Auth
	legacy     employee.Legacy
	opts       Options
	log        *log.Logger
}

func NewRouter(
	app *web.App,
	postgresDB *postgresql.Database,
	auth *auth.Auth,
	legacy employee.Legacy,
	opts Options,
	logger *log.Logger,
) *Router {
	return &Router{
		app,
		postgresDB,
		auth,
		legacy,
		opts,
		logger,
	}
}

// Init registers every route. It must run before the app serves traffic.
func (r Router) Init() {
	r.HandleMethodNotAllowed = true
	r.Use(middleware.CORSMiddleware(r.opts.AllowedOrigins))

	// - postgresql
	userPostgres := user.NewRepository(r.postgresDB)
	syncRunPostgres := syncrun.NewRepository(r.postgresDB)

	// service
	locker := r.opts.Locker
	if locker == nil {
		locker = lock.NewLocal()
	}
	employeeService := employee.NewService(r.legacy, userPostgres, syncRunPostgres, locker, r.opts.Workers, r.log)

	// controller
	userController := user_controller.NewController(userPostgres)
	employeeController := employee_controller.NewController(employeeService)
	syncRunController := syncrun_controller.NewController(syncRunPostgres)

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusTemporaryRedirect, "/v1/users")
	})
	r.Get("/healthz", r.health)

	// #employee
	r.Get("/v1/employees", employeeController.Synchronize, middleware.Authenticate(r.auth))

	// #user
	r.Get("/v1/users", userController.GetUserList, middleware.Authenticate(r.auth))
	r.Get("/v1/users/export", userController.ExportUsers, middleware.Authenticate(r.auth))
	r.Get("/v1/users/:id", userController.GetUserDetailById, middleware.Authenticate(r.auth))

	// #sync
	r.Get("/v1/sync/runs", syncRunController.GetList, middleware.Authenticate(r.auth))
}

func (r Router) health(c *web.Context) error {
	err := r.postgresDB.WithSession(c.Ctx, func(ctx context.Context, tx bun.Tx) error {
		var one int
		return tx.QueryRowContext(ctx, "SELECT 1").Scan(&one)
	})
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   "ok",
		"status": true,
	}, http.StatusOK)
}
