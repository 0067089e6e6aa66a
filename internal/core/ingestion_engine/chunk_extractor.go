package ingestion_engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/markdave123-py/newsprint/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// NormalizePages runs Normalize over every page, keeping page numbers.
func NormalizePages(pages []models.RawPage) []models.RawPage {
	out := make([]models.RawPage, len(pages))
	for i, p := range pages {
		out[i] = models.RawPage{Number: p.Number, Text: Normalize(p.Text)}
	}
	return out
}

// ChunkPages groups normalized pages perChunk at a time. Each page is written
// under its own PageMarker line.
func ChunkPages(pages []models.RawPage, perChunk int) []models.PageChunk {
	if perChunk < 1 {
		perChunk = 1
	}
	var chunks []models.PageChunk
	for i := 0; i < len(pages); i += perChunk {
		end := min(i+perChunk, len(pages))
		chunks = append(chunks, buildChunk(len(chunks)+1, pages[i:end]))
	}
	return chunks
}

func buildChunk(index int, pages []models.RawPage) models.PageChunk {
	var sb strings.Builder
	for _, p := range pages {
		fmt.Fprintf(&sb, "\n\n%s\n\n%s\n", PageMarker(p.Number), p.Text)
	}
	return models.PageChunk{
		Index:     index,
		FirstPage: pages[0].Number,
		LastPage:  pages[len(pages)-1].Number,
		Text:      strings.TrimSpace(sb.String()),
	}
}

// JoinPages renders the whole cleaned document with a PageMarker above each page.
func JoinPages(pages []models.RawPage) string {
	var sb strings.Builder
	for _, p := range pages {
		fmt.Fprintf(&sb, "\n\n%s\n\n%s", PageMarker(p.Number), p.Text)
	}
	return strings.TrimSpace(sb.String())
}

// streamChunk groups incoming normalized pages into fixed-size page chunks.
//
// pages:     upstream normalized pages, in page order.
// perChunk:  pages per chunk; the last chunk may be shorter.
// out:       receive-only channel of chunks, closed when pages is drained.
func (i *DocumentIngestor) streamChunk(
	ctx context.Context,
	g *errgroup.Group,
	pages <-chan models.RawPage,
	perChunk int,
) <-chan models.PageChunk {
	out := make(chan models.PageChunk, 4)

	g.Go(func() error {
		defer close(out)

		var (
			buf   []models.RawPage
			index int
		)

		flush := func() error {
			if len(buf) == 0 {
				return nil
			}
			index++
			ch := buildChunk(index, buf)
			buf = nil

			// Backpressure applies here.
			select {
			case out <- ch:
			case <-ctx.Done():
				return ctx.Err()
			}
			i.log.WithFields(logrus.Fields{
				"chunk": ch.Index,
				"pages": fmt.Sprintf("%d-%d", ch.FirstPage, ch.LastPage),
			}).Debug("chunk emitted")
			return nil
		}

		for p := range pages {
			buf = append(buf, p)
			if len(buf) >= perChunk {
				if err := flush(); err != nil {
					return err
				}
			}
		}

		// Emit remaining tail (if any).
		return flush()
	})

	return out
}
