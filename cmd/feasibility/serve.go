package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/feasibility/assessment"
	"github.com/tailored-agentic-units/feasibility/feasibility"
	"github.com/tailored-agentic-units/feasibility/push"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		addr         string
		fixturesFile string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve assessments over HTTP with live tool events on /ws",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = os.Getenv(envAddr)
			}
			if addr == "" {
				addr = ":8080"
			}

			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			fixtures, err := loadFixtures(fixturesFile)
			if err != nil {
				return err
			}

			svc, err := feasibility.New(cfg, feasibility.WithLogger(root.logger))
			if err != nil {
				return fmt.Errorf("failed to create service: %w", err)
			}
			defer svc.Close()

			if err := fixtures.register(svc.Registry()); err != nil {
				return fmt.Errorf("failed to register providers: %w", err)
			}

			hub := push.New(push.WithStats(svc.Stats), push.WithLogger(root.logger))
			defer hub.Close()
			if _, err := svc.Bus().Subscribe(hub); err != nil {
				return fmt.Errorf("failed to subscribe push hub: %w", err)
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           newMux(svc, hub),
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				root.logger.Info("serving", "addr", addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (env "+envAddr+", default :8080)")
	cmd.Flags().StringVar(&fixturesFile, "fixtures", "", "Path to provider fixtures YAML (required)")
	_ = cmd.MarkFlagRequired("fixtures")
	return cmd
}

func newMux(svc *feasibility.Service, hub *push.Hub) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("GET /ws", hub)

	mux.HandleFunc("GET /stats", func(w http.ResponseWriter, r *http.Request) {
		writeHTTPJSON(w, http.StatusOK, svc.Stats())
	})

	mux.HandleFunc("DELETE /stats", func(w http.ResponseWriter, r *http.Request) {
		svc.ResetStats()
		writeHTTPJSON(w, http.StatusOK, svc.Stats())
	})

	mux.HandleFunc("POST /assess", func(w http.ResponseWriter, r *http.Request) {
		var req feasibility.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeHTTPJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		res, err := svc.Assess(r.Context(), req)
		switch {
		case errors.Is(err, assessment.ErrInvalidInput):
			writeHTTPJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case err != nil:
			writeHTTPJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		default:
			writeHTTPJSON(w, http.StatusOK, res)
		}
	})

	return mux
}

func writeHTTPJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
