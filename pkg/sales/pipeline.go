package sales

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/6529-Collections/salesbot/pkg/sales/models"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

type Assembler interface {
	Assemble(ctx context.Context, lg types.Log) (*models.SaleRecord, error)
}

type ImageDownloader interface {
	Download(ctx context.Context, imageURL string) ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, announcement models.Announcement) error
}

type Stats struct {
	Received  uint64 `json:"received"`
	Skipped   uint64 `json:"skipped"`
	Dropped   uint64 `json:"dropped"`
	Published uint64 `json:"published"`
	Failed    uint64 `json:"failed"`
}

// Pipeline turns raw Transfer logs into published announcements. Every
// event is independent: a failure is counted and logged, never retried, and
// never stops the workers.
type Pipeline struct {
	assembler Assembler
	renderer  *Renderer
	images    ImageDownloader
	publisher Publisher
	workers   int

	received  atomic.Uint64
	skipped   atomic.Uint64
	dropped   atomic.Uint64
	published atomic.Uint64
	failed    atomic.Uint64
}

func NewPipeline(assembler Assembler, renderer *Renderer, images ImageDownloader, publisher Publisher, workers int) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		assembler: assembler,
		renderer:  renderer,
		images:    images,
		publisher: publisher,
		workers:   workers,
	}
}

// Run drains events until the channel is closed or ctx is done.
func (p *Pipeline) Run(ctx context.Context, events <-chan types.Log) {
	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case lg, ok := <-events:
					if !ok {
						return
					}
					_ = p.Process(ctx, lg)
				}
			}
		}()
	}
	wg.Wait()
}

// Process handles one event end to end.
func (p *Pipeline) Process(ctx context.Context, lg types.Log) error {
	p.received.Add(1)

	announcement, err := p.Prepare(ctx, lg)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrSkipped):
			p.skipped.Add(1)
			zap.L().Debug("Transfer skipped", zap.String("txHash", lg.TxHash.Hex()), zap.Error(err))
		case errors.Is(err, models.ErrDecode):
			p.dropped.Add(1)
			zap.L().Warn("Dropping malformed transfer", zap.String("txHash", lg.TxHash.Hex()), zap.Error(err))
		default:
			p.dropped.Add(1)
		}
		return err
	}

	if err := p.publisher.Publish(ctx, *announcement); err != nil {
		p.failed.Add(1)
		zap.L().Error("Failed to publish announcement", zap.String("txHash", lg.TxHash.Hex()), zap.Error(err))
		return errors.Mark(err, models.ErrPublish)
	}
	p.published.Add(1)
	zap.L().Info("Successfully posted", zap.String("text", announcement.Text))
	return nil
}

// Prepare assembles and renders one event without publishing it. The image
// is attached when it can be downloaded.
func (p *Pipeline) Prepare(ctx context.Context, lg types.Log) (*models.Announcement, error) {
	sale, err := p.assembler.Assemble(ctx, lg)
	if err != nil {
		return nil, err
	}
	announcement := p.renderer.Render(*sale)
	if announcement.ImageURL != "" && p.images != nil {
		image, err := p.images.Download(ctx, announcement.ImageURL)
		if err != nil {
			zap.L().Warn("Image download failed, posting without media",
				zap.String("tokenId", sale.TokenID),
				zap.Error(err),
			)
		} else {
			announcement.Image = image
		}
	}
	return &announcement, nil
}

func (p *Pipeline) Stats() Stats {
	return Stats{
		Received:  p.received.Load(),
		Skipped:   p.skipped.Load(),
		Dropped:   p.dropped.Load(),
		Published: p.published.Load(),
		Failed:    p.failed.Load(),
	}
}
