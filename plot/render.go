package plot

import (
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BrugadaSyndrome/bslogger"
)

// Renderer draws a whole image on the local machine, one row per job, across Settings.Workers
// goroutines.
type Renderer struct {
	completed atomic.Uint64
	failed    atomic.Uint64
	logger    bslogger.Logger
	plotter   *Plotter

	ProgressInterval time.Duration
}

func NewRenderer(settings Settings) (*Renderer, error) {
	plotter, err := NewPlotter(settings)
	if err != nil {
		return nil, err
	}
	return &Renderer{
		logger:           bslogger.NewLogger("Renderer", bslogger.Normal, nil),
		plotter:          plotter,
		ProgressInterval: 5 * time.Second,
	}, nil
}

func (r *Renderer) Plotter() *Plotter {
	return r.plotter
}

// Failed returns the number of samples painted with the sentinel colour by the last Render.
func (r *Renderer) Failed() uint64 {
	return r.failed.Load()
}

// Render evaluates every sample and returns the finished buffer. Under the Abort policy the
// first failing sample stops the render and no buffer is returned.
func (r *Renderer) Render() (*image.RGBA, error) {
	settings := r.plotter.Settings()
	size := int(settings.Size)
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	total := uint64(size) * uint64(size)
	r.completed.Store(0)
	r.failed.Store(0)

	r.logger.Infof("Rendering %q at %dx%d over [-%g, %g] with %d workers", settings.Expression, size, size, settings.Range, settings.Range, settings.Workers)
	r.logger.Debugf("Expression %s", r.plotter.Describe())
	if !r.plotter.Expression().UsesVariable() {
		r.logger.Warningf("%q does not use %s, every pixel will be the same colour", settings.Expression, settings.Variable)
	}
	startTime := time.Now()

	rows := make(chan uint)
	stop := make(chan struct{})
	var stopOnce sync.Once
	var renderErr error
	fail := func(err error) {
		stopOnce.Do(func() {
			renderErr = err
			close(stop)
		})
	}

	done := make(chan struct{})
	go r.tickers(total, done)

	var wg sync.WaitGroup
	for i := 0; i < settings.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for row := range rows {
				if err := r.renderRow(img, row); err != nil {
					fail(err)
					return
				}
			}
		}()
	}

	// Rows are handed out in order. Each goroutine writes only the pixels of its own row.
dispatch:
	for row := uint(0); row < settings.Size; row++ {
		select {
		case rows <- row:
		case <-stop:
			break dispatch
		}
	}
	close(rows)
	wg.Wait()
	close(done)

	if renderErr != nil {
		return nil, renderErr
	}

	r.logger.Infof("Rendered %d pixels in %s", total, time.Since(startTime))
	if failed := r.failed.Load(); failed > 0 {
		r.logger.Warningf("%d samples failed to evaluate and were painted %v", failed, settings.SentinelColor)
	}
	return img, nil
}

func (r *Renderer) renderRow(img *image.RGBA, row uint) error {
	size := r.plotter.Settings().Size
	for column := uint(0); column < size; column++ {
		c, outcome, err := r.plotter.Pixel(column, row)
		if err != nil {
			return err
		}
		if outcome.Failed() {
			r.failed.Add(1)
		}
		img.SetRGBA(int(column), int(row), c)
	}
	r.completed.Add(uint64(size))
	return nil
}

func (r *Renderer) tickers(total uint64, done <-chan struct{}) {
	if r.ProgressInterval <= 0 {
		return
	}
	heartBeat := time.NewTicker(r.ProgressInterval)
	defer heartBeat.Stop()

	for {
		select {
		case <-heartBeat.C:
			completed := r.completed.Load()
			r.logger.Infof("Pixels [Completed: %d/%d] [%.1f%%]", completed, total, 100*float64(completed)/float64(total))
		case <-done:
			return
		}
	}
}
