package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Options configures the progress reporter.
type Options struct {
	// TotalFiles is the number of files to download.
	TotalFiles int

	// Workers is the number of parallel workers.
	Workers int

	// Output is where to write progress output.
	// Default: os.Stderr
	Output io.Writer

	// UpdateInterval is how often to update the progress display.
	// Default: 500ms
	UpdateInterval time.Duration

	// Source is the repository being downloaded (for display).
	Source string

	// Bar renders a progress bar instead of periodic status lines.
	Bar bool
}

// Reporter outputs human-readable progress information.
// The File* methods are safe for concurrent use.
type Reporter struct {
	opts Options

	mu             sync.Mutex
	completedBytes atomic.Int64
	completedFiles atomic.Int32
	failedFiles    atomic.Int32
	inProgress     atomic.Int32
	startTime      time.Time
	lastUpdate     time.Time
	lastBytes      int64
	bar            *progressbar.ProgressBar
	stopCh         chan struct{}
	doneCh         chan struct{}
	started        bool
	stopped        bool
}

// NewReporter creates a new progress reporter.
func NewReporter(opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.UpdateInterval == 0 {
		opts.UpdateInterval = 500 * time.Millisecond
	}

	return &Reporter{
		opts:   opts,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// SetTotal sets the number of files once the listing is known.
func (r *Reporter) SetTotal(files int) {
	r.mu.Lock()
	r.opts.TotalFiles = files
	if r.started {
		r.newBar()
	}
	r.mu.Unlock()
}

// newBar creates the progress bar once the total is known. r.mu must be held.
func (r *Reporter) newBar() {
	if !r.opts.Bar || r.bar != nil || r.opts.TotalFiles <= 0 {
		return
	}
	out := r.opts.Output
	r.bar = progressbar.NewOptions(
		r.opts.TotalFiles,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription(fmt.Sprintf("[reposlurp] files(%d workers)", r.opts.Workers)),
		progressbar.OptionThrottle(80*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(out)
		}),
	)
}

func (r *Reporter) advanceBar() {
	r.mu.Lock()
	bar := r.bar
	r.mu.Unlock()
	if bar != nil {
		_ = bar.Add(1)
	}
}

// Start begins outputting progress information.
func (r *Reporter) Start() {
	r.mu.Lock()
	r.started = true
	r.startTime = time.Now()
	r.lastUpdate = r.startTime
	total := r.opts.TotalFiles
	r.newBar()
	r.mu.Unlock()

	fmt.Fprintf(r.opts.Output, "[reposlurp] Downloading: %s\n", r.opts.Source)
	fmt.Fprintf(r.opts.Output, "[reposlurp] Files: %d | Workers: %d\n", total, r.opts.Workers)

	go r.updateLoop()
}

// Stop stops the reporter and prints the final status.
// It waits for the final status to be written.
func (r *Reporter) Stop() {
	r.mu.Lock()
	if r.stopped || !r.started {
		r.stopped = true
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	close(r.stopCh)
	<-r.doneCh
}

// FileStarted marks a file as in progress.
func (r *Reporter) FileStarted() {
	r.inProgress.Add(1)
}

// FileCompleted marks a file as saved.
func (r *Reporter) FileCompleted(size int64) {
	r.completedBytes.Add(size)
	r.completedFiles.Add(1)
	r.inProgress.Add(-1)
	r.advanceBar()
}

// FileFailed marks a file as not saved.
func (r *Reporter) FileFailed() {
	r.failedFiles.Add(1)
	r.inProgress.Add(-1)
	r.advanceBar()
}

// Counts returns the number of saved and failed files so far.
func (r *Reporter) Counts() (saved, failed int) {
	return int(r.completedFiles.Load()), int(r.failedFiles.Load())
}

// updateLoop periodically updates the progress display.
func (r *Reporter) updateLoop() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.opts.UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			r.printFinalStatus()
			return
		case <-ticker.C:
			r.printProgress()
		}
	}
}

// printProgress outputs the current progress.
func (r *Reporter) printProgress() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.opts.Bar {
		return
	}

	now := time.Now()
	completed := r.completedBytes.Load()
	files := int(r.completedFiles.Load())
	failed := int(r.failedFiles.Load())
	inProgress := int(r.inProgress.Load())

	elapsed := now.Sub(r.lastUpdate).Seconds()
	if elapsed < 0.1 {
		elapsed = 0.1
	}
	speed := float64(completed-r.lastBytes) / elapsed

	r.lastUpdate = now
	r.lastBytes = completed

	var percent float64
	if r.opts.TotalFiles > 0 {
		percent = float64(files+failed) / float64(r.opts.TotalFiles) * 100
	}

	pending := r.opts.TotalFiles - files - failed - inProgress
	if pending < 0 {
		pending = 0
	}

	fmt.Fprintf(r.opts.Output, "\r[reposlurp] Progress: %.1f%% | %d/%d files | %s | Speed: %s/s | %d in-progress | %d pending | %d failed    ",
		percent,
		files,
		r.opts.TotalFiles,
		formatBytes(completed),
		formatBytes(int64(speed)),
		inProgress,
		pending,
		failed,
	)
}

// printFinalStatus outputs the final status.
func (r *Reporter) printFinalStatus() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar != nil && !r.bar.IsFinished() {
		_ = r.bar.Finish()
	}

	completed := r.completedBytes.Load()
	duration := time.Since(r.startTime)
	var avgSpeed float64
	if s := duration.Seconds(); s > 0 {
		avgSpeed = float64(completed) / s
	}

	fmt.Fprintf(r.opts.Output, "\r[reposlurp] Files: %d saved | %d failed | %d total    \n",
		r.completedFiles.Load(),
		r.failedFiles.Load(),
		r.opts.TotalFiles,
	)
	fmt.Fprintf(r.opts.Output, "[reposlurp] Total: %s in %s | Average speed: %s/s\n",
		formatBytes(completed),
		formatDuration(duration),
		formatBytes(int64(avgSpeed)),
	)
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(b int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case b >= TB:
		return fmt.Sprintf("%.2f TB", float64(b)/float64(TB))
	case b >= GB:
		return fmt.Sprintf("%.2f GB", float64(b)/float64(GB))
	case b >= MB:
		return fmt.Sprintf("%.2f MB", float64(b)/float64(MB))
	case b >= KB:
		return fmt.Sprintf("%.2f KB", float64(b)/float64(KB))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatDuration formats a duration as a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}

// FormatBytes is exported for use by other packages.
func FormatBytes(b int64) string {
	return formatBytes(b)
}
