package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/andrebq/keycard/internal/logutil"
)

type (
	Timeouts struct {
		Read       time.Duration
		Write      time.Duration
		ReadHeader time.Duration
		Idle       time.Duration
		Shutdown   time.Duration
	}
)

// DefaultTimeouts keeps slow clients from holding connections while still
// leaving room for a bcrypt round on every request.
var DefaultTimeouts = Timeouts{
	Read:       time.Second * 30,
	Write:      time.Second * 30,
	ReadHeader: time.Second * 10,
	Idle:       time.Minute * 2,
	Shutdown:   time.Second * 30,
}

// Serve blocks until ctx is cancelled or the listener fails. Cancelling
// ctx triggers a graceful shutdown.
func Serve(ctx context.Context, bind string, handler http.Handler) error {
	return ServeWithTimeouts(ctx, bind, handler, DefaultTimeouts)
}

func ServeWithTimeouts(ctx context.Context, bind string, handler http.Handler, t Timeouts) error {
	server := http.Server{
		Handler:           handler,
		Addr:              bind,
		ReadTimeout:       t.Read,
		WriteTimeout:      t.Write,
		ReadHeaderTimeout: t.ReadHeader,
		IdleTimeout:       t.Idle,
	}
	err := make(chan error, 1)
	done := make(chan struct{})
	go serveInBackground(ctx, &server, t.Shutdown, err, done)
	<-done
	return <-err
}

func serveInBackground(ctx context.Context, server *http.Server, shutdownTimeout time.Duration, firstErr chan<- error, done chan<- struct{}) {
	log := logutil.GetOrDefault(ctx).With().Str("server.addr", server.Addr).Logger()
	defer close(done)
	serverCtx, cancel := context.WithCancel(ctx)
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		defer cancel()
		log.Info().Msg("Starting HTTP server")
		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			log.Info().Msg("Server closed")
			return
		} else if err != nil {
			firstErr <- err
		}
	}()
	<-serverCtx.Done()
	if ctx.Err() != nil {
		log.Info().Msg("Initiating shutdown process")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Shutdown did not complete cleanly")
		}
		log.Info().Msg("Shutdown completed")
	}
	<-stopped
	close(firstErr)
}
