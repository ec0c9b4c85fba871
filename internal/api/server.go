package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/atharv3903/roamer/internal/algo"
	"github.com/atharv3903/roamer/internal/cache"
	"github.com/atharv3903/roamer/internal/db"
	"github.com/atharv3903/roamer/internal/logger"
	"github.com/atharv3903/roamer/internal/metrics"
	"github.com/atharv3903/roamer/internal/model"
	"github.com/atharv3903/roamer/internal/planner"
)

const maxBody = 1 << 20

// Planner generates routes. *planner.Planner satisfies it.
type Planner interface {
	Plan(ctx context.Context, start model.Coord, targetKm float64) (*model.Route, error)
}

// RoadStore applies road closures. Nil when the graph comes from a file.
type RoadStore interface {
	UpdateEdgeClosed(ctx context.Context, edgeID int64, closed bool) error
	EdgeSource(ctx context.Context, edgeID int64) (int64, error)
}

type Deps struct {
	Planner Planner
	Store   RoadStore
	Adj     *cache.AdjCache
	Logger  *slog.Logger
}

type Server struct {
	Mux     chi.Router
	Planner Planner
	Store   RoadStore
	Adj     *cache.AdjCache

	log      *slog.Logger
	validate *validator.Validate
}

func New(d Deps) *Server {
	s := &Server{
		Mux:      chi.NewRouter(),
		Planner:  d.Planner,
		Store:    d.Store,
		Adj:      d.Adj,
		log:      d.Logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	if s.log == nil {
		s.log = logger.L()
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.Mux.ServeHTTP(w, r) }

func (s *Server) routes() {
	s.Mux.Use(middleware.RequestID)
	s.Mux.Use(middleware.Recoverer)
	s.Mux.Use(logger.AccessMiddleware(s.log))
	s.Mux.Use(cors)

	s.Mux.Post("/imfeelinglucky", s.handleRoute)

	healthy := func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("API Healthy"))
	}
	s.Mux.Get("/test", healthy)
	s.Mux.Post("/test", healthy)
	s.Mux.Head("/test", healthy)

	s.Mux.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	s.Mux.Handle("/metrics", metrics.Handler())

	if s.Store != nil {
		s.Mux.Post("/road/update", s.handleUpdate)
	}
	if s.Adj != nil {
		s.Mux.Get("/debug/clear_cache", func(w http.ResponseWriter, _ *http.Request) {
			s.Adj.Clear()
			_, _ = w.Write([]byte("cleared"))
		})
		s.Mux.Get("/debug/adjcache_stats", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, s.Adj.Stats())
		})
	}
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	var req model.RouteRequest
	if err := s.decode(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	start := model.Coord{Lat: *req.StartingLat, Lng: *req.StartingLng}
	route, err := s.Planner.Plan(r.Context(), start, float64(*req.TargetDist))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, route)
	case errors.Is(err, planner.ErrNoNearbyStart):
		http.Error(w, "No routes nearby, try another point!", http.StatusNotFound)
	case errors.Is(err, algo.ErrNoRouteFound):
		http.Error(w, "No route long enough from this point, try a shorter distance!", http.StatusUnprocessableEntity)
	default:
		s.log.Error("route_error",
			"request_id", middleware.GetReqID(r.Context()),
			"lat", start.Lat,
			"lng", start.Lng,
			"target_km", *req.TargetDist,
			"err", err,
		)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
	}
}

type updateRequest struct {
	EdgeID int64  `json:"edge_id" validate:"required"`
	Closed *bool  `json:"closed" validate:"required"`
	Src    *int64 `json:"src_node,omitempty"`
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := s.decode(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if err := s.Store.UpdateEdgeClosed(ctx, req.EdgeID, *req.Closed); err != nil {
		if errors.Is(err, db.ErrEdgeNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		s.log.Error("road_update_error", "edge_id", req.EdgeID, "err", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	if s.Adj != nil {
		src := req.Src
		if src == nil {
			if id, err := s.Store.EdgeSource(ctx, req.EdgeID); err == nil {
				src = &id
			} else {
				s.log.Warn("road_update_source_error", "edge_id", req.EdgeID, "err", err)
				s.Adj.Clear()
			}
		}
		if src != nil {
			s.Adj.Invalidate(*src)
		}
	}
	s.log.Info("road_update", "edge_id", req.EdgeID, "closed", *req.Closed)

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// decode reads a JSON body into dst and validates it.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid request: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// cors allows any origin with credentials, echoing the caller's Origin.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
			if r.Method == http.MethodOptions {
				h.Set("Access-Control-Allow-Methods", "GET, POST, HEAD, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
