package pipeline

import (
	"bufio"
	"context"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/suykerbuyk/blue/internal/change"
)

// Source produces notifications until its context ends.
type Source interface {
	Run(ctx context.Context) error
	Events() <-chan change.Notification
}

// FeedbackSink consumes free-text user reactions.
type FeedbackSink interface {
	ProcessFeedback(text string) bool
}

// Run drives src and coord together. When input is non-nil each line read
// from it is passed to fb; an input that is also an io.Closer is closed on
// shutdown to release the reader. Run returns when ctx ends or a component
// fails.
func Run(ctx context.Context, src Source, coord *Coordinator, fb FeedbackSink, input io.Reader, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return src.Run(ctx) })
	g.Go(func() error { return coord.Run(ctx, src.Events()) })

	if input != nil && fb != nil {
		lines := make(chan string)
		// The scanner blocks in Read; closing the input is the only way to
		// unblock it before EOF.
		go scanLines(ctx, input, lines)
		g.Go(func() error { return consumeFeedback(ctx, lines, fb, log) })
		if c, ok := input.(io.Closer); ok {
			g.Go(func() error {
				<-ctx.Done()
				if err := c.Close(); err != nil {
					log.Debug("close feedback input", zap.Error(err))
				}
				return nil
			})
		}
	}

	return g.Wait()
}

func scanLines(ctx context.Context, r io.Reader, out chan<- string) {
	defer close(out)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		select {
		case out <- sc.Text():
		case <-ctx.Done():
			return
		}
	}
}

func consumeFeedback(ctx context.Context, lines <-chan string, fb FeedbackSink, log *zap.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if !fb.ProcessFeedback(line) {
				log.Debug("feedback not applied")
			}
		}
	}
}
