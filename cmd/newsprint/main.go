package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/markdave123-py/newsprint/internal/api/handlers"
	appMiddleware "github.com/markdave123-py/newsprint/internal/api/middlewares"
	"github.com/markdave123-py/newsprint/internal/app"
	"github.com/markdave123-py/newsprint/internal/config"
	"github.com/markdave123-py/newsprint/internal/core"
	"github.com/markdave123-py/newsprint/internal/core/heuristics"
	"github.com/markdave123-py/newsprint/internal/core/ingestion_engine"
	"github.com/markdave123-py/newsprint/internal/logger"
	"github.com/markdave123-py/newsprint/internal/models"
	"github.com/markdave123-py/newsprint/internal/services"
)

// previewChars is how much of each page `pages` prints.
const previewChars = 200

var (
	cli = kingpin.New("newsprint", "extract, segment and summarize newspaper PDFs")

	pagesCmd = cli.Command("pages", "print the raw text of every page")
	pagesPDF = pagesCmd.Arg("pdf", "input PDF").Required().String()
	pagesAll = pagesCmd.Flag("full", "print whole pages instead of a preview").Bool()

	chunkCmd = cli.Command("chunk", "write normalized page chunks and document metadata files")
	chunkPDF = chunkCmd.Arg("pdf", "input PDF").Required().String()

	metaCmd = cli.Command("metadata", "print newspaper, date and edition guessed from the file")
	metaPDF = metaCmd.Arg("pdf", "input PDF").Required().String()

	entCmd = cli.Command("entities", "print metadata found by entity recognition on the first page")
	entPDF = entCmd.Arg("pdf", "input PDF").Required().String()

	sumCmd  = cli.Command("summarize", "summarize and store the articles of a chunk text file")
	sumFile = sumCmd.Arg("textfile", "normalized text file, e.g. chunks/chunk_1.txt").Required().String()

	runCmd = cli.Command("run", "run the whole pipeline over one PDF")
	runPDF = runCmd.Arg("pdf", "input PDF").Required().String()

	watchCmd  = cli.Command("watch", "process PDFs dropped into the inbox on a schedule")
	watchOnce = watchCmd.Flag("once", "scan the inbox once and exit").Bool()

	tokenCmd  = cli.Command("token", "issue an API token for the upload endpoint")
	tokenUser = tokenCmd.Arg("user", "user id carried by the token").Default("operator").String()

	hashCmd = cli.Command("hash-password", "print the bcrypt hash for OPERATOR_PASSWORD_HASH")
	hashPw  = hashCmd.Arg("password", "operator password").Required().String()

	jsonOut = cli.Flag("json", "print run reports as JSON").Bool()
)

func main() {
	command := kingpin.MustParse(cli.Parse(os.Args[1:]))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.LoadConfig()
	log := logger.New(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	var err error
	switch command {
	case pagesCmd.FullCommand():
		err = printPages(ctx, cfg, log, *pagesPDF, *pagesAll)
	case metaCmd.FullCommand():
		err = printMetadata(ctx, cfg, log, *metaPDF)
	case tokenCmd.FullCommand():
		err = printToken(cfg, *tokenUser)
	case hashCmd.FullCommand():
		err = printHash(*hashPw)
	default:
		err = withPipeline(ctx, cfg, log, func(p *app.Pipeline) error {
			switch command {
			case chunkCmd.FullCommand():
				return writeChunks(ctx, p, *chunkPDF)
			case entCmd.FullCommand():
				return printEntities(ctx, p, *entPDF)
			case sumCmd.FullCommand():
				return report(p.Ingestor.SummarizeFile(ctx, *sumFile))
			case runCmd.FullCommand():
				return report(p.Ingestor.Run(ctx, *runPDF))
			case watchCmd.FullCommand():
				w := newWatcher(cfg.InboxDir, p.Ingestor, log.WithField("component", "watch"))
				if *watchOnce {
					w.scan(ctx)
					return nil
				}
				return w.run(ctx, cfg.WatchSchedule)
			}
			return nil
		})
	}

	switch {
	case err == nil:
	case ingestion_engine.IsInputError(err):
		// unusable input is reported, not treated as a crash
		log.WithError(err).Warn("input skipped")
	case ctx.Err() != nil:
		log.Warn("interrupted")
		os.Exit(130)
	default:
		log.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

func withPipeline(ctx context.Context, cfg *config.Config, log logrus.FieldLogger, fn func(*app.Pipeline) error) error {
	p, err := app.NewPipeline(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer p.Close()
	return fn(p)
}

// pageSource picks the configured extractor without connecting to any store.
func pageSource(cfg *config.Config, log logrus.FieldLogger) core.PageExtractor {
	if cfg.PDFExtractor == config.ExtractorDocconv {
		return ingestion_engine.NewDocconvExtractor(log)
	}
	return ingestion_engine.NewPDFPageExtractor(log)
}

func extract(ctx context.Context, ex core.PageExtractor, path string) ([]models.RawPage, error) {
	if err := ingestion_engine.CheckPDF(path); err != nil {
		return nil, err
	}
	pages, err := ex.ExtractPages(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, core.ErrNoPages
	}
	return pages, nil
}

func printPages(ctx context.Context, cfg *config.Config, log logrus.FieldLogger, path string, full bool) error {
	pages, err := extract(ctx, pageSource(cfg, log), path)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d pages\n", filepath.Base(path), len(pages))
	for _, p := range pages {
		text := p.Text
		if !full && len([]rune(text)) > previewChars {
			text = string([]rune(text)[:previewChars]) + "..."
		}
		fmt.Printf("\n%s\n%s\n", ingestion_engine.PageMarker(p.Number), text)
	}
	return nil
}

func printMetadata(ctx context.Context, cfg *config.Config, log logrus.FieldLogger, path string) error {
	tables, err := heuristics.LoadTables(cfg.TablesFile)
	if err != nil {
		return err
	}
	pages, err := extract(ctx, pageSource(cfg, log), path)
	if err != nil {
		return err
	}
	md := heuristics.New(tables).FileMetadata(filepath.Base(path), pages[0].Text)
	fmt.Print(services.FormatFileMetadata(md))
	return nil
}

func printEntities(ctx context.Context, p *app.Pipeline, path string) error {
	pages, err := extract(ctx, p.Extractor, path)
	if err != nil {
		return err
	}
	fmt.Print(services.FormatEntityMetadata(p.Output.EntityMetadata(ctx, pages[0].Text)))
	return nil
}

// writeChunks produces the file outputs of a run without summarizing.
func writeChunks(ctx context.Context, p *app.Pipeline, path string) error {
	pages, err := extract(ctx, p.Extractor, path)
	if err != nil {
		return err
	}
	cleaned := ingestion_engine.NormalizePages(pages)
	for _, c := range ingestion_engine.ChunkPages(cleaned, p.PagesPerChunk) {
		out, err := p.Output.WriteChunk(ctx, path, c)
		if err != nil {
			return err
		}
		fmt.Println(out)
	}
	return p.Output.WriteDocument(ctx, path, pages, ingestion_engine.JoinPages(cleaned))
}

func report(r *models.RunReport, err error) error {
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	fmt.Printf("pages: %d  chunks: %d  candidates: %d  articles: %d  saved: %d\n",
		r.Pages, len(r.ChunkFiles), r.Candidates, r.Articles, r.Saved)
	return nil
}

func printToken(cfg *config.Config, user string) error {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	token, err := appMiddleware.IssueToken(cfg.JWTSecret, user, ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func printHash(password string) error {
	hash, err := handlers.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}
