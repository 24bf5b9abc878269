package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/voicevault/backend/internal/api/handlers"
	"github.com/voicevault/backend/internal/api/middleware"
	"github.com/voicevault/backend/internal/cache"
	"github.com/voicevault/backend/internal/config"
	"github.com/voicevault/backend/internal/embedding"
	"github.com/voicevault/backend/internal/ingest"
	"github.com/voicevault/backend/internal/stt"
	"github.com/voicevault/backend/internal/vectorstore"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	redis *redis.Client
	cfg   *config.Config
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		redis: rdb,
		cfg:   cfg,
	}
}

func (rt *Router) Setup() (http.Handler, error) {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS)

	rl := middleware.NewRateLimiter(10, 20)
	r.Use(rl.Limit)

	// Health endpoints
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/", health.Root)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Long-lived service handles, constructed once per process
	stager, err := ingest.NewStager(rt.cfg.Upload.Dir)
	if err != nil {
		return nil, err
	}

	translator, err := rt.newTranslator()
	if err != nil {
		return nil, err
	}

	store, err := rt.newStore()
	if err != nil {
		return nil, err
	}

	embedSvc := embedding.NewService(rt.cfg.Embedding.APIKey, rt.cfg.Embedding.Model)
	pipeline := ingest.NewPipeline(stager, translator, embedSvc, store)

	var c *cache.Cache
	if rt.redis != nil {
		c = cache.NewCache(rt.redis)
	}

	ingestH := handlers.NewIngestHandler(pipeline, rt.cfg.Upload.MaxBytes)
	searchH := handlers.NewSearchHandler(embedSvc, store, c)

	r.Route("/api", func(r chi.Router) {
		r.Post("/input", ingestH.Input)
		r.Get("/search", searchH.Search)
	})

	return r, nil
}

func (rt *Router) newTranslator() (stt.Translator, error) {
	var base stt.Translator
	switch rt.cfg.STT.Backend {
	case "openai":
		base = stt.NewWhisperClient(stt.WhisperConfig{
			APIKey:  rt.cfg.STT.APIKey,
			BaseURL: rt.cfg.STT.BaseURL,
			Model:   rt.cfg.STT.Model,
		})
	case "local":
		base = stt.NewLocal(stt.LocalConfig{BaseURL: rt.cfg.STT.BaseURL})
	default:
		return nil, fmt.Errorf("unknown STT_BACKEND %q", rt.cfg.STT.Backend)
	}
	return stt.NewPool(base, rt.cfg.STT.Workers), nil
}

func (rt *Router) newStore() (vectorstore.Store, error) {
	switch rt.cfg.Vector.Backend {
	case "pinecone":
		return vectorstore.NewPineconeStore(vectorstore.PineconeConfig{
			APIKey:      rt.cfg.Vector.PineconeAPIKey,
			Environment: rt.cfg.Vector.PineconeEnvironment,
			IndexHost:   rt.cfg.Vector.PineconeIndexHost,
			Index:       rt.cfg.Vector.PineconeIndex,
			Namespace:   rt.cfg.Vector.Namespace,
		}), nil
	case "pgvector":
		if rt.db == nil {
			return nil, fmt.Errorf("pgvector backend requires a database connection")
		}
		return vectorstore.NewPgVectorStore(rt.db), nil
	default:
		return nil, fmt.Errorf("unknown VECTOR_BACKEND %q", rt.cfg.Vector.Backend)
	}
}
