package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/teaser-cli/internal/pipeline"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server for profile requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx, "serve")
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newServeMux(ctx, env),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(context.Background()) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newServeMux builds the HTTP routes. runCtx outlives individual requests
// and bounds the asynchronous pipeline runs.
func newServeMux(runCtx context.Context, env *pipelineEnv) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /projects/process", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
			URL  string `json:"url"`
			Dir  string `json:"dir"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if req.Name == "" {
			writeJSONResponse(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
			return
		}

		var docs []pipeline.Document
		if req.Dir != "" {
			var err error
			docs, err = pipeline.DiscoverDocuments(req.Dir)
			if err != nil {
				writeJSONResponse(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
				return
			}
		}
		if len(docs) == 0 && req.URL == "" {
			writeJSONResponse(w, http.StatusBadRequest, map[string]string{"error": "dir with documents or url is required"})
			return
		}

		proj, err := env.Store.CreateProject(r.Context(), req.Name, req.URL)
		if err != nil {
			writeJSONResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		for _, doc := range docs {
			if _, err := env.Store.AddFile(r.Context(), proj.ID, doc.Path, doc.Kind); err != nil {
				writeJSONResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
				return
			}
		}

		// Run asynchronously; the project record carries the outcome.
		go func() {
			if _, err := env.Pipeline.Run(runCtx, proj.ID); err != nil {
				zap.L().Error("async profile build failed",
					zap.String("project_id", proj.ID),
					zap.Error(err))
			}
		}()

		writeJSONResponse(w, http.StatusAccepted, map[string]string{
			"status":     "accepted",
			"project_id": proj.ID,
		})
	})

	mux.HandleFunc("GET /projects/{id}", func(w http.ResponseWriter, r *http.Request) {
		proj, err := env.Store.GetProject(r.Context(), r.PathValue("id"))
		if err != nil {
			writeJSONResponse(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		writeJSONResponse(w, http.StatusOK, proj)
	})

	return mux
}

func writeJSONResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
