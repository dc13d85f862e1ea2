package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-quality-cli/internal/config"
	"github.com/sells-group/lead-quality-cli/internal/model"
	"github.com/sells-group/lead-quality-cli/internal/scorer"
	"github.com/sells-group/lead-quality-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the scoring API server",
	Long:  "Starts an HTTP server exposing lead scoring and run history over JSON.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		api := &apiServer{
			store:      st,
			featureCfg: cfg.Feature,
			modelCfg:   cfg.Model,
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(api, cfg.Server),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// apiServer holds the HTTP handler dependencies. Scoring passes are
// serialized; each request trains its own model so concurrent requests
// would only burn CPU.
type apiServer struct {
	store      store.Store
	featureCfg config.FeatureConfig
	modelCfg   config.ModelConfig
	mu         sync.Mutex
}

func newRouter(api *apiServer, serverCfg config.ServerConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: serverCfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", api.handleHealth)
	r.Post("/score", api.handleScore)
	r.Get("/runs", api.handleListRuns)
	r.Get("/runs/{id}", api.handleGetRun)

	return r
}

func (api *apiServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type scoreRequest struct {
	Leads []model.Lead `json:"leads"`
	Seed  *int64       `json:"seed,omitempty"`
	Save  bool         `json:"save,omitempty"`
}

type scoredLeadView struct {
	model.ScoredLead
	Reasons []string `json:"reasons"`
}

type scoreResponse struct {
	Leads      []scoredLeadView      `json:"leads"`
	Stats      model.TrainStats      `json:"stats"`
	Importance []model.FeatureWeight `json:"importance"`
	RunID      string                `json:"run_id,omitempty"`
}

func (api *apiServer) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Leads) == 0 {
		writeError(w, http.StatusBadRequest, "leads are required")
		return
	}

	modelCfg := api.modelCfg
	if req.Seed != nil {
		modelCfg.Seed = *req.Seed
	}

	api.mu.Lock()
	result, err := scoreLeads(req.Leads, api.featureCfg, modelCfg)
	api.mu.Unlock()
	if err != nil {
		zap.L().Error("score request failed", zap.Error(err))
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	views := make([]scoredLeadView, len(result.Leads))
	for i, lead := range result.Leads {
		views[i] = scoredLeadView{ScoredLead: lead, Reasons: scorer.Explain(lead.Features)}
	}

	resp := scoreResponse{
		Leads:      views,
		Stats:      result.Stats,
		Importance: result.Importance,
	}

	if req.Save {
		run := &model.Run{
			Source:     "api",
			Stats:      result.Stats,
			Importance: result.Importance,
		}
		if err := api.store.SaveRun(r.Context(), run, result.Leads); err != nil {
			zap.L().Error("save run failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to persist run")
			return
		}
		resp.RunID = run.ID
	}

	writeJSON(w, http.StatusOK, resp)
}

func (api *apiServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	filter := store.RunFilter{Source: r.URL.Query().Get("source")}

	runs, err := api.store.ListRuns(r.Context(), filter)
	if err != nil {
		zap.L().Error("list runs failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []model.Run{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (api *apiServer) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")

	run, err := api.store.GetRun(r.Context(), runID)
	if err != nil {
		if eris.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		zap.L().Error("get run failed", zap.Error(err), zap.String("run_id", runID))
		writeError(w, http.StatusInternalServerError, "failed to load run")
		return
	}

	leads, err := api.store.GetRunLeads(r.Context(), runID)
	if err != nil {
		zap.L().Error("get run leads failed", zap.Error(err), zap.String("run_id", runID))
		writeError(w, http.StatusInternalServerError, "failed to load run leads")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"run": run, "leads": leads})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
