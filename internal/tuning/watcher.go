package tuning

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/rigidsync/internal/config"
	"github.com/san-kum/rigidsync/internal/logging"
	"github.com/san-kum/rigidsync/internal/sim"
)

// Watcher reloads a config file whenever it changes and publishes its
// gravity. Only the latest value is kept; the frame loop drains it.
type Watcher struct {
	path    string
	fs      *fsnotify.Watcher
	updates chan mgl32.Vec3
	log     *log.Logger

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Watch starts watching path. The parent directory is watched so editors
// that replace the file on save are still seen.
func Watch(path string, l *log.Logger) (*Watcher, error) {
	if l == nil {
		l = logging.Discard()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatch.Add(filepath.Dir(abs)); err != nil {
		fsWatch.Close()
		return nil, err
	}

	w := &Watcher{
		path:    abs,
		fs:      fsWatch,
		updates: make(chan mgl32.Vec3, 1),
		log:     l,
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *Watcher) Updates() <-chan mgl32.Vec3 { return w.updates }

func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fs.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case e, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != w.path {
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.reload()
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher", "err", err)

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) reload() {
	data, err := os.ReadFile(w.path)
	if err != nil || len(data) == 0 {
		return
	}
	g, ok, err := config.ParseGravity(data)
	if err != nil {
		// Half-written files are common mid-save; the next write retries.
		w.log.Debug("config reload skipped", "path", w.path, "err", err)
		return
	}
	if !ok {
		w.log.Debug("config has no gravity, keeping current", "path", w.path)
		return
	}
	w.publish(g)
	w.log.Info("config reloaded", "gravity", g)
}

func (w *Watcher) publish(g mgl32.Vec3) {
	for {
		select {
		case w.updates <- g:
			return
		default:
		}
		select {
		case <-w.updates:
		default:
		}
	}
}

// Drain applies the most recent pending update, if any, without blocking.
func Drain(updates <-chan mgl32.Vec3, p *Panel) bool {
	applied := false
	for {
		select {
		case g := <-updates:
			p.Apply(g)
			applied = true
		default:
			return applied
		}
	}
}

// Pacer drains pending gravity updates at the top of every cycle and then
// defers to next, which may be nil.
func Pacer(updates <-chan mgl32.Vec3, p *Panel, next sim.Pacer) sim.Pacer {
	return func(ctx context.Context) error {
		Drain(updates, p)
		if next == nil {
			return nil
		}
		return next(ctx)
	}
}
