package apng

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Frame produces the standalone PNG encoding of one animation frame. Encode
// may block; it should return early when ctx is cancelled.
type Frame interface {
	Encode(ctx context.Context) (RawFrame, error)
}

// FrameError wraps the failure of one frame with its position.
type FrameError struct {
	Index int
	Err   error
}

func (e *FrameError) Error() string { return fmt.Sprintf("apng: frame %d: %v", e.Index, e.Err) }

func (e *FrameError) Unwrap() error { return e.Err }

type buildOptions struct {
	progress     func()
	logger       *slog.Logger
	concurrency  int
	checkHeaders bool
}

// Option configures Build.
type Option func(*buildOptions)

// WithProgress registers fn to be called once per frame whose payload has been
// extracted. Calls are serialized but may come from any goroutine.
func WithProgress(fn func()) Option {
	return func(o *buildOptions) { o.progress = fn }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *buildOptions) { o.logger = l }
}

// WithConcurrency limits how many frames are encoded at once. n <= 0, the
// default, starts one task per frame.
func WithConcurrency(n int) Option {
	return func(o *buildOptions) { o.concurrency = n }
}

// WithCheckHeaders makes Build read every frame's IHDR and reject frames
// whose size is not the canvas size or whose pixels are not 8-bit RGBA
// without interlacing, the format the assembled header declares.
func WithCheckHeaders(check bool) Option {
	return func(o *buildOptions) { o.checkHeaders = check }
}

// Build encodes all frames concurrently, extracts their payloads and
// assembles the animation. Payloads are kept in frame order whatever order the
// encoders finish in. The first failing frame cancels the others and is
// returned as a *FrameError; no stream is produced in that case.
func Build(ctx context.Context, a Animation, frames []Frame, opts ...Option) (*Stream, error) {
	o := buildOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger.With("build_id", uuid.New().String())
	start := time.Now()

	log.Debug("apng: build started",
		"frames", len(frames),
		"width", a.Width,
		"height", a.Height,
		"delay_den", a.DelayDen,
		"num_plays", a.NumPlays,
	)

	payloads := make([]FramePayload, len(frames))
	var progressMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	if o.concurrency > 0 {
		g.SetLimit(o.concurrency)
	} else {
		g.SetLimit(-1)
	}
	for i, f := range frames {
		i, f := i, f
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return &FrameError{Index: i, Err: err}
			}
			raw, err := f.Encode(gctx)
			if err != nil {
				return &FrameError{Index: i, Err: err}
			}
			if o.checkHeaders {
				if err := checkHeader(a, raw); err != nil {
					return &FrameError{Index: i, Err: err}
				}
			}
			p, err := ExtractPayload(raw)
			if err != nil {
				return &FrameError{Index: i, Err: err}
			}
			payloads[i] = p

			log.Debug("apng: frame extracted",
				"frame", i,
				"blocks", len(p),
				"bytes", p.Len(),
			)
			if o.progress != nil {
				progressMu.Lock()
				o.progress()
				progressMu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Debug("apng: build failed", "error", err)
		return nil, err
	}

	s, err := Assemble(a, payloads)
	if err != nil {
		log.Debug("apng: assembly failed", "error", err)
		return nil, err
	}

	log.Debug("apng: build complete",
		"frames", len(frames),
		"bytes", len(s.Data),
		"elapsed", time.Since(start),
	)
	return s, nil
}

func checkHeader(a Animation, raw RawFrame) error {
	h, err := ReadHeader(raw)
	if err != nil {
		return err
	}
	if h.Width != a.Width || h.Height != a.Height {
		return &PreconditionError{
			Op:  "check header",
			Err: fmt.Errorf("%w: %dx%d, canvas %dx%d", ErrDimensions, h.Width, h.Height, a.Width, a.Height),
		}
	}
	want := NewChunk_IHDR(a.Width, a.Height)
	if h != *want {
		return &PreconditionError{
			Op: "check header",
			Err: fmt.Errorf("%w: depth %d color type %d interlace %d, want depth %d color type %d interlace %d",
				ErrPixelFormat, h.BitDepth, h.ColorType, h.InterlaceMethod, want.BitDepth, want.ColorType, want.InterlaceMethod),
		}
	}
	return nil
}
