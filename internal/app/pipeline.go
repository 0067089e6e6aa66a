package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/markdave123-py/newsprint/internal/config"
	"github.com/markdave123-py/newsprint/internal/core"
	db "github.com/markdave123-py/newsprint/internal/core/database"
	"github.com/markdave123-py/newsprint/internal/core/heuristics"
	"github.com/markdave123-py/newsprint/internal/core/ingestion_engine"
	"github.com/markdave123-py/newsprint/internal/core/llm"
	"github.com/markdave123-py/newsprint/internal/core/nlp"
	objectclient "github.com/markdave123-py/newsprint/internal/core/object-client"
	"github.com/markdave123-py/newsprint/internal/core/summarizer"
	"github.com/markdave123-py/newsprint/internal/services"
)

// nerInputLimit bounds the text sent to an LLM entity recognizer.
const nerInputLimit = 4000

// Pipeline holds every component a CLI command or the API needs. Optional
// parts (LLM, Embedder, Objects) are nil when not configured.
type Pipeline struct {
	Store     core.ArticleStore
	Objects   core.ObjectClient
	LLM       core.LLMProvider
	Embedder  core.EmbeddingProvider
	NER       core.EntityRecognizer
	Meta      *heuristics.Extractor
	Extractor core.PageExtractor
	Output    *services.DocumentService
	Saver     *services.SummaryService
	Ingestor  *ingestion_engine.DocumentIngestor

	// QueryEmbedder embeds search queries into the same space as Embedder.
	QueryEmbedder core.EmbeddingProvider
	PagesPerChunk int

	closers []func() error
}

// NewPipeline builds the components named by cfg. Missing model credentials
// leave the summarizer on its local fallbacks instead of failing.
func NewPipeline(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*Pipeline, error) {
	p := &Pipeline{PagesPerChunk: cfg.PagesPerChunk}

	tables, err := heuristics.LoadTables(cfg.TablesFile)
	if err != nil {
		return nil, fmt.Errorf("load heuristic tables: %w", err)
	}
	p.Meta = heuristics.New(tables)

	store, err := db.NewArticleStore(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("document store: %w", err)
	}
	p.Store = store
	p.closers = append(p.closers, store.Close)

	objects, err := objectclient.NewS3Client(ctx, cfg, log)
	switch {
	case errors.Is(err, objectclient.ErrArchiveDisabled):
	case err != nil:
		log.WithError(err).Warn("object archive unavailable")
	default:
		p.Objects = objects
	}

	if err := p.buildModels(ctx, cfg, log); err != nil {
		p.Close()
		return nil, err
	}

	switch {
	case cfg.NERProvider == config.NERLLM && p.LLM != nil:
		p.NER = nlp.NewLLMEntityRecognizer(p.LLM, nerInputLimit)
	case cfg.NERProvider == config.NERGazetteer:
		p.NER = nlp.NewGazetteerRecognizer(tables)
	default:
		p.NER = nlp.NewProseRecognizer(tables)
	}

	var model core.SummaryModel
	if p.LLM != nil {
		model = llm.NewLLMSummaryModel(p.LLM)
	}
	sum := summarizer.New(model, nlp.NewLocalAnalyzer(p.NER), p.Meta, log.WithField("component", "summarizer"))

	if cfg.PDFExtractor == config.ExtractorDocconv {
		p.Extractor = ingestion_engine.NewDocconvExtractor(log)
	} else {
		p.Extractor = ingestion_engine.NewPDFPageExtractor(log)
	}

	p.Output = services.NewDocumentService(cfg.OutputDir, cfg.ChunksDir, p.Meta, p.NER, p.Objects, log.WithField("component", "output"))
	p.Saver = services.NewSummaryService(p.Store, p.Embedder, cfg.PingTimeout, log.WithField("component", "store"))

	ingCfg := &ingestion_engine.IngestConfig{
		PagesPerChunk: cfg.PagesPerChunk,
		QueueSize:     64,
		JobTimeout:    10 * time.Minute,
	}
	p.Ingestor = ingestion_engine.NewDocumentIngestor(p.Extractor, sum, p.Saver, p.Output, ingCfg, log.WithField("component", "ingestor"))

	return p, nil
}

// buildModels picks the LLM and embedding providers and wraps the LLM in the
// redis cache when REDIS_ADDR is set.
func (p *Pipeline) buildModels(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) error {
	var name string

	switch cfg.LLMProvider {
	case config.LLMGemini:
		if cfg.AIAPIKey == "" {
			log.Warn("GEMINI_API_KEY not set, summaries use local fallbacks")
			return nil
		}
		gen, err := llm.NewGeminiLLM(ctx, cfg.AIAPIKey, cfg.GenModel)
		if err != nil {
			return fmt.Errorf("couldn't initialize the gemini model: %w", err)
		}
		emb, err := llm.NewGeminiEmbedder(ctx, cfg.AIAPIKey, cfg.EmbedModel)
		if err != nil {
			gen.Close()
			return fmt.Errorf("couldn't initialize the embedder: %w", err)
		}
		p.closers = append(p.closers, gen.Close, emb.Close)
		p.LLM, p.Embedder, p.QueryEmbedder, name = gen, emb, emb.ForQueries(), gen.Name()

	case config.LLMAnthropic:
		if cfg.AnthropicAPIKey == "" {
			log.Warn("ANTHROPIC_API_KEY not set, summaries use local fallbacks")
			return nil
		}
		gen := llm.NewAnthropicLLM(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		p.LLM, name = gen, gen.Name()

	case config.LLMCohere:
		if cfg.CohereAPIKey == "" {
			log.Warn("COHERE_API_KEY not set, summaries use local fallbacks")
			return nil
		}
		gen := llm.NewCohereLLM(cfg.CohereAPIKey, cfg.CohereModel)
		p.LLM, name = gen, gen.Name()
		emb := llm.NewCohereEmbedder(cfg.CohereAPIKey, cfg.EmbedModel)
		p.Embedder, p.QueryEmbedder = emb, emb.ForQueries()
	}

	if p.LLM == nil || cfg.RedisAddr == "" {
		return nil
	}
	rdb, err := llm.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.WithError(err).Warn("summary cache disabled")
		return nil
	}
	p.closers = append(p.closers, rdb.Close)
	p.LLM = llm.NewCachedLLM(p.LLM, name, rdb, cfg.CacheTTL, log.WithField("component", "cache"))
	return nil
}

// Searcher returns the store's vector search when it has one.
func (p *Pipeline) Searcher() core.VectorSearcher {
	if vs, ok := p.Store.(core.VectorSearcher); ok {
		return vs
	}
	return nil
}

// Close releases clients in reverse order of creation.
func (p *Pipeline) Close() {
	for i := len(p.closers) - 1; i >= 0; i-- {
		_ = p.closers[i]()
	}
}
