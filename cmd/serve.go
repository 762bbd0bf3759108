package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/kamusis/brewq/internal/config"
	"github.com/kamusis/brewq/internal/pipeline"
)

var flagServeListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve incremental search over HTTP",
	Long: `Serve search results as NDJSON, one line per batch, flushed as each batch
arrives. Closing the connection cancels the query and its brew process.

  GET /search?q=wget            plain query
  GET /search?input=brew%20wget launcher input; must start with the trigger
  GET /metrics                  Prometheus metrics`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeListen, "listen", "", "Address to listen on (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(func(cfg *config.Config) {
		if flagServeListen != "" {
			cfg.Listen = flagServeListen
		}
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              a.cfg.Listen,
		Handler:           newServeMux(a.handler),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	printOK("", fmt.Sprintf("listening on http://%s", a.cfg.Listen))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	printInfo("", "server stopped")
	return nil
}

func newServeMux(h *pipeline.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /search", searchHandler(h))
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

// searchHandler streams batches for q, or for input after stripping the
// trigger. Input without the trigger yields an empty body.
func searchHandler(h *pipeline.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := r.URL.Query()
		query := params.Get("q")
		if input, ok := params["input"]; ok && len(input) > 0 {
			var triggered bool
			query, triggered = pipeline.ParseTrigger(input[0], h.Trigger())
			if !triggered {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}

		w.Header().Set("Content-Type", "application/x-ndjson")
		w.Header().Set("Cache-Control", "no-store")
		flusher, _ := w.(http.Flusher)
		bw := newBatchWriter(w, true)

		ctx := r.Context()
		s := h.Search(ctx, query)
		for items := range s.All() {
			if err := bw.write(items); err != nil {
				slog.DebugContext(ctx, "client went away", "reason", err)
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if err := s.Err(); err != nil {
			slog.WarnContext(ctx, "search finished with skipped batches", "query", query, "reason", err)
		}
	}
}
