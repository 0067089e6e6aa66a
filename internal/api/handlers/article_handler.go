package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/markdave123-py/newsprint/internal/core"
	"github.com/markdave123-py/newsprint/internal/models"
)

const (
	maxListLimit    = 200
	defaultTopK     = 5
	maxTopK         = 20
	askSystemPrompt = "You are a news assistant answering only from the article summaries given. If they do not contain the answer, say 'I cannot find this in the stored articles.'"
)

// ArticleHandler serves stored articles. searcher, embedder and llm are
// optional; the endpoints needing them answer 501 when they are missing.
type ArticleHandler struct {
	store    core.ArticleStore
	searcher core.VectorSearcher
	embedder core.EmbeddingProvider
	llm      core.LLMProvider
	log      logrus.FieldLogger
}

func NewArticleHandler(store core.ArticleStore, searcher core.VectorSearcher, emb core.EmbeddingProvider, llm core.LLMProvider, log logrus.FieldLogger) *ArticleHandler {
	return &ArticleHandler{store: store, searcher: searcher, embedder: emb, llm: llm, log: log}
}

// ListArticles handles GET /api/articles?newspaper=&city=&date=&hashtag=&limit=.
func (h *ArticleHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.ArticleFilter{
		Newspaper: q.Get("newspaper"),
		City:      q.Get("city"),
		Date:      q.Get("date"),
		Hashtag:   q.Get("hashtag"),
	}
	if tag := filter.Hashtag; tag != "" && !strings.HasPrefix(tag, "#") {
		filter.Hashtag = "#" + tag
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		filter.Limit = min(n, maxListLimit)
	}

	articles, err := h.store.ListArticles(r.Context(), filter)
	if err != nil {
		h.log.WithError(err).Error("list articles")
		http.Error(w, "failed to list articles", http.StatusInternalServerError)
		return
	}
	if articles == nil {
		articles = []models.StoredDocument{}
	}
	writeJSON(w, http.StatusOK, articles)
}

// GetArticle handles GET /api/articles/{id}.
func (h *ArticleHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := h.store.GetArticle(r.Context(), id)
	if errors.Is(err, core.ErrArticleNotFound) {
		http.Error(w, "article not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.WithError(err).WithField("id", id).Error("get article")
		http.Error(w, "failed to load article", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type askResponse struct {
	Answer  string                  `json:"answer"`
	Sources []models.StoredDocument `json:"sources"`
}

// SearchArticles handles POST /api/articles/search.
func (h *ArticleHandler) SearchArticles(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeSearch(w, r)
	if !ok {
		return
	}
	docs, ok := h.nearest(w, r, req)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// AskArticles handles POST /api/articles/ask: it retrieves the nearest
// articles and has the LLM answer from their summaries.
func (h *ArticleHandler) AskArticles(w http.ResponseWriter, r *http.Request) {
	if h.llm == nil {
		http.Error(w, "no language model configured", http.StatusNotImplemented)
		return
	}
	req, ok := h.decodeSearch(w, r)
	if !ok {
		return
	}
	docs, ok := h.nearest(w, r, req)
	if !ok {
		return
	}

	var sb strings.Builder
	for _, d := range docs {
		sb.WriteString(d.Heading)
		sb.WriteString("\n")
		for _, p := range d.SummaryPoints {
			sb.WriteString("- ")
			sb.WriteString(p)
			sb.WriteString("\n")
		}
		sb.WriteString("---\n")
	}
	userPrompt := fmt.Sprintf("Articles:\n%s\nQuestion: %s", sb.String(), req.Query)

	answer, err := h.llm.Generate(r.Context(), askSystemPrompt, userPrompt)
	if err != nil {
		h.log.WithError(err).Error("ask: generate")
		http.Error(w, "language model failed", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, askResponse{Answer: answer, Sources: docs})
}

func (h *ArticleHandler) decodeSearch(w http.ResponseWriter, r *http.Request) (searchRequest, bool) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return req, false
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return req, false
	}
	if req.Limit <= 0 {
		req.Limit = defaultTopK
	}
	req.Limit = min(req.Limit, maxTopK)
	return req, true
}

func (h *ArticleHandler) nearest(w http.ResponseWriter, r *http.Request, req searchRequest) ([]models.StoredDocument, bool) {
	if h.searcher == nil || h.embedder == nil {
		http.Error(w, "semantic search is not available for this store", http.StatusNotImplemented)
		return nil, false
	}

	vecs, err := h.embedder.EmbedTexts(r.Context(), []string{req.Query})
	if err != nil || len(vecs) == 0 {
		h.log.WithError(err).Error("search: embed query")
		http.Error(w, "embedding failed", http.StatusBadGateway)
		return nil, false
	}

	docs, err := h.searcher.SearchArticles(r.Context(), vecs[0], req.Limit)
	if err != nil {
		h.log.WithError(err).Error("search: query store")
		http.Error(w, "search failed", http.StatusInternalServerError)
		return nil, false
	}
	if docs == nil {
		docs = []models.StoredDocument{}
	}
	return docs, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
