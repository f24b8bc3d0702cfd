// Package statusapi serves a read-only JSON view of the capacity and the
// sessions of a Manager over HTTP.
package statusapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/xaionaro-go/hwdec/logger"
	"github.com/xaionaro-go/hwdec/manager"
	"github.com/xaionaro-go/hwdec/resource"
)

type Source interface {
	Capacity() []resource.KindUsage
	Sessions(ctx context.Context) []manager.SessionInfo
	SessionInfoByID(ctx context.Context, id string) (manager.SessionInfo, bool)
}

var _ Source = (*manager.Manager)(nil)

type API struct {
	Source Source
}

func NewRouter(
	ctx context.Context,
	source Source,
) http.Handler {
	api := &API{Source: source}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(ctx))

	r.Get("/ping", PingHandler)
	r.Get("/capacity", api.CapacityHandler)
	r.Get("/sessions", api.SessionsHandler)
	r.Get("/sessions/{id}", api.SessionHandler)
	return r
}

func requestLogger(ctx context.Context) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			startedAt := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debugf(ctx, "%s %s: %d (%s, request %s)",
				r.Method, r.URL.Path, ww.Status(), time.Since(startedAt), middleware.GetReqID(r.Context()))
		})
	}
}
