// Package web is a thin layer over gin: handlers return errors and a single
// place turns those errors into responses.
package web

import (
	"context"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler handles one request. A returned error that was not already
// responded to is rendered by RespondError.
type Handler func(c *Context) error

// Middleware wraps a Handler.
type Middleware func(Handler) Handler

// Context carries the gin context plus the request context handlers pass to
// services and repositories.
type Context struct {
	*gin.Context
	Ctx context.Context
	log *log.Logger
}

type App struct {
	*gin.Engine
	log *log.Logger
	mw  []Middleware
}

// NewApp builds a gin engine that logs requests to accessLog and applies mw
// to every handler registered through Handle.
func NewApp(logger *log.Logger, accessLog io.Writer, mw ...Middleware) *App {
	engine := gin.New()
	if accessLog != nil {
		engine.Use(gin.LoggerWithWriter(accessLog))
	}

	return &App{
		Engine: engine,
		log:    logger,
		mw:     append([]Middleware{Panics()}, mw...),
	}
}

// Handle registers handler for method and path. Route middleware runs inside
// the app-wide middleware.
func (a *App) Handle(method, path string, handler Handler, mw ...Middleware) {
	handler = wrapMiddleware(mw, handler)
	handler = wrapMiddleware(a.mw, handler)

	a.Engine.Handle(method, path, func(gc *gin.Context) {
		c := &Context{
			Context: gc,
			Ctx:     gc.Request.Context(),
			log:     a.log,
		}

		if err := handler(c); err != nil {
			_ = c.RespondError(err)
		}
	})
}

func (a *App) Get(path string, handler Handler, mw ...Middleware) {
	a.Handle(http.MethodGet, path, handler, mw...)
}

func (a *App) Post(path string, handler Handler, mw ...Middleware) {
	a.Handle(http.MethodPost, path, handler, mw...)
}

func wrapMiddleware(mw []Middleware, handler Handler) Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		if mw[i] != nil {
			handler = mw[i](handler)
		}
	}
	return handler
}
