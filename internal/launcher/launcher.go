package launcher

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/kataras/golog"
)

var log = golog.Child("[launcher]")

var (
	// ErrUnknownGame is returned for a game ID not in the table.
	ErrUnknownGame = errors.New("unknown game")
	// ErrNotInstalled is returned when a game's binary is missing.
	ErrNotInstalled = errors.New("controller binary not found")
	// ErrAlreadyRunning is returned when a game is launched twice.
	ErrAlreadyRunning = errors.New("controller already running")
)

// stopTimeout is how long Stop waits for a controller to drain its keys
// before killing it.
const stopTimeout = 3 * time.Second

// Launcher finds controller binaries and tracks the processes it started.
type Launcher struct {
	binDir    string
	games     map[string]Game
	installed map[string]string
	running   map[string]*exec.Cmd
	onExit    func(id string, err error)
	mu        sync.RWMutex
}

// New creates a Launcher looking for controller binaries in binDir.
func New(binDir string) *Launcher {
	games := make(map[string]Game)
	for _, g := range Games() {
		games[g.ID] = g
	}
	return &Launcher{
		binDir:    binDir,
		games:     games,
		installed: make(map[string]string),
		running:   make(map[string]*exec.Cmd),
	}
}

// OnExit sets a callback invoked when a launched controller exits.
func (l *Launcher) OnExit(fn func(id string, err error)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onExit = fn
}

// Discover scans binDir for the controller binaries.
func (l *Launcher) Discover() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.installed = make(map[string]string)

	info, err := os.Stat(l.binDir)
	if os.IsNotExist(err) {
		return nil // No binaries, nothing to discover
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return nil
	}

	for id, g := range l.games {
		name := g.Binary
		if runtime.GOOS == "windows" {
			name += ".exe"
		}
		path := filepath.Join(l.binDir, name)
		st, err := os.Stat(path)
		if err != nil || st.IsDir() {
			continue
		}
		l.installed[id] = path
	}

	return nil
}

// Installed returns the IDs of the games whose binary was found, sorted.
func (l *Launcher) Installed() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := make([]string, 0, len(l.installed))
	for id := range l.installed {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Command builds the controller command for id without starting it.
func (l *Launcher) Command(id string, o Options) (*exec.Cmd, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	g, ok := l.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGame, id)
	}
	path, ok := l.installed[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", ErrNotInstalled, g.Binary, l.binDir)
	}

	cmd := exec.Command(path, g.Args(o)...)
	cmd.Dir = l.binDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd, nil
}

// Launch starts the controller for id. It returns once the process started.
func (l *Launcher) Launch(id string, o Options) error {
	l.mu.RLock()
	_, busy := l.running[id]
	l.mu.RUnlock()
	if busy {
		return fmt.Errorf("%w: %s", ErrAlreadyRunning, id)
	}

	cmd, err := l.Command(id, o)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", id, err)
	}
	log.Infof("started %s (pid %d): %v", id, cmd.Process.Pid, cmd.Args[1:])

	l.mu.Lock()
	l.running[id] = cmd
	l.mu.Unlock()

	go l.wait(id, cmd)
	return nil
}

func (l *Launcher) wait(id string, cmd *exec.Cmd) {
	err := cmd.Wait()
	if err != nil {
		log.Warnf("%s exited: %v", id, err)
	} else {
		log.Infof("%s exited", id)
	}

	l.mu.Lock()
	delete(l.running, id)
	callback := l.onExit
	l.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(id, err)
	}
}

// Running returns the IDs of controllers currently running, sorted.
func (l *Launcher) Running() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := make([]string, 0, len(l.running))
	for id := range l.running {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Stop asks the controller to shut down and kills it if it does not exit in time.
func (l *Launcher) Stop(id string) {
	l.mu.RLock()
	cmd, ok := l.running[id]
	l.mu.RUnlock()
	if !ok {
		return
	}

	// An interrupt lets the controller release its keys; Windows has no SIGINT.
	if runtime.GOOS == "windows" || cmd.Process.Signal(os.Interrupt) != nil {
		cmd.Process.Kill()
		return
	}

	deadline := time.Now().Add(stopTimeout)
	for time.Now().Before(deadline) {
		l.mu.RLock()
		_, still := l.running[id]
		l.mu.RUnlock()
		if !still {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	log.Warnf("%s did not exit after interrupt, killing", id)
	cmd.Process.Kill()
}

// StopAll stops every running controller.
func (l *Launcher) StopAll() {
	for _, id := range l.Running() {
		l.Stop(id)
	}
}

// BinDir returns the directory searched for controller binaries.
func (l *Launcher) BinDir() string {
	return l.binDir
}
