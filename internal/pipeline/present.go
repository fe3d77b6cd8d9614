package pipeline

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/suykerbuyk/blue/internal/render"
)

// WriterPresenter prints accepted batches as markdown.
type WriterPresenter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterPresenter(w io.Writer) *WriterPresenter {
	return &WriterPresenter{w: w}
}

func (p *WriterPresenter) Present(_ context.Context, b Batch) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := fmt.Fprintf(p.w, "\n%s", render.Batch(b.Summary)); err != nil {
		return fmt.Errorf("write batch: %w", err)
	}
	if b.Verdict.Confidence > 0 {
		if _, err := fmt.Fprintf(p.w, "\nconfidence %d/10\n", b.Verdict.Confidence); err != nil {
			return fmt.Errorf("write batch: %w", err)
		}
	}
	return nil
}
