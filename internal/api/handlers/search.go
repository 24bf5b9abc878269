package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/voicevault/backend/internal/cache"
	"github.com/voicevault/backend/internal/ingest"
	"github.com/voicevault/backend/internal/vectorstore"
)

const searchCacheTTL = 30 * time.Second

type searchResponse struct {
	Query   string              `json:"query"`
	Matches []vectorstore.Match `json:"matches"`
	Count   int                 `json:"count"`
}

// SearchHandler retrieves stored transcripts by similarity to a query string.
type SearchHandler struct {
	embedder ingest.Embedder
	store    vectorstore.Store
	cache    *cache.Cache // nil when redis is unavailable
}

func NewSearchHandler(embedder ingest.Embedder, store vectorstore.Store, c *cache.Cache) *SearchHandler {
	return &SearchHandler{embedder: embedder, store: store, cache: c}
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "q parameter required"})
		return
	}

	topK, _ := strconv.Atoi(r.URL.Query().Get("top_k"))
	if topK <= 0 {
		topK = 10
	}

	cacheKey := fmt.Sprintf("search:%d:%s", topK, query)
	if h.cache != nil {
		var cached searchResponse
		if err := h.cache.Get(r.Context(), cacheKey, &cached); err == nil {
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	vec, err := h.embedder.EmbedSingle(r.Context(), query)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	matches, err := h.store.Query(r.Context(), vec, topK)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	resp := searchResponse{Query: query, Matches: matches, Count: len(matches)}
	if h.cache != nil {
		_ = h.cache.Set(r.Context(), cacheKey, resp, searchCacheTTL)
	}

	writeJSON(w, http.StatusOK, resp)
}
