// Package tray provides the system tray menu that picks a camera and launches
// the game controllers.
package tray

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/getlantern/systray"
	"github.com/kataras/golog"

	"github.com/ayusman/cvgames/internal/capture"
	"github.com/ayusman/cvgames/internal/launcher"
	"github.com/ayusman/cvgames/internal/store"
)

var log = golog.Child("[menu]")

// PreviewFlag is the menu binary flag that shows a single camera preview and
// exits. HighGUI windows need the process main thread, which systray already
// owns, so the preview runs in a child process.
const PreviewFlag = "test-camera"

// Config holds the tray collaborators.
type Config struct {
	Launcher *launcher.Launcher
	Settings *store.SettingsRepository
	// Cameras lists the usable cameras. Defaults to capture.ListCameras.
	Cameras    func(maxProbe int) []capture.Info
	MaxCameras int
	// Defaults are used for selections never made before.
	Defaults launcher.Options
	// Executable is re-run with PreviewFlag for camera tests. Defaults to the
	// running binary.
	Executable string
}

// Tray represents the system tray application.
type Tray struct {
	config  Config
	options launcher.Options
	onQuit  func()
	mu      sync.RWMutex

	previewCancel context.CancelFunc

	// Menu items stored for later updates
	menuStatus  *systray.MenuItem
	menuCameras *systray.MenuItem
	cameraItems map[int]*systray.MenuItem
	sensItems   map[float64]*systray.MenuItem
	smoothItems map[float64]*systray.MenuItem
}

// New creates a Tray, restoring the remembered camera and mouse settings.
func New(config Config) *Tray {
	if config.Cameras == nil {
		config.Cameras = capture.ListCameras
	}
	if config.Executable == "" {
		if exe, err := os.Executable(); err == nil {
			config.Executable = exe
		} else {
			config.Executable = os.Args[0]
		}
	}
	return &Tray{
		config:      config,
		options:     LoadOptions(config.Settings, config.Defaults),
		cameraItems: make(map[int]*systray.MenuItem),
		sensItems:   make(map[float64]*systray.MenuItem),
		smoothItems: make(map[float64]*systray.MenuItem),
	}
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Options returns the current selections.
func (t *Tray) Options() launcher.Options {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.options
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	t.config.Launcher.OnExit(func(id string, err error) {
		t.refreshStatus()
	})
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetTitle("cvgames")
	systray.SetTooltip("Webcam gesture controllers")

	t.menuStatus = systray.AddMenuItem("Idle", "Running controllers")
	t.menuStatus.Disable()
	systray.AddSeparator()

	t.menuCameras = systray.AddMenuItem("Camera", "Pick the camera used by the controllers")
	t.addCameraItems()
	menuRefresh := systray.AddMenuItem("Rescan cameras", "Probe camera devices again")
	menuTest := systray.AddMenuItem("Test camera", "Open a preview window, ESC closes it")
	systray.AddSeparator()

	installed := t.config.Launcher.Installed()
	for _, g := range launcher.Games() {
		item := systray.AddMenuItem(g.Title, "Launch "+g.ID)
		if !slices.Contains(installed, g.ID) {
			item.SetTitle(g.Title + " (not installed)")
			item.Disable()
			continue
		}
		go t.watchLaunch(item, g.ID)
	}
	systray.AddSeparator()

	menuMouse := systray.AddMenuItem("Hand mouse", "Settings for the hand mouse controller")
	opts := t.Options()
	t.mu.Lock()
	for _, s := range SensitivityPresets {
		item := menuMouse.AddSubMenuItem("Sensitivity "+formatFloat(s), "Cursor speed")
		t.sensItems[s] = item
		go t.watchPreset(item, s, t.setSensitivity)
	}
	for _, s := range SmoothingPresets {
		item := menuMouse.AddSubMenuItem("Smoothing "+formatFloat(s), "Cursor smoothing")
		t.smoothItems[s] = item
		go t.watchPreset(item, s, t.setSmoothing)
	}
	checkOnly(t.sensItems, opts.Sensitivity)
	checkOnly(t.smoothItems, opts.Smoothing)
	t.mu.Unlock()
	systray.AddSeparator()

	menuStop := systray.AddMenuItem("Stop controllers", "Stop every running controller")
	menuQuit := systray.AddMenuItem("Quit", "Stop controllers and quit")

	go func() {
		for {
			select {
			case <-menuRefresh.ClickedCh:
				t.addCameraItems()
			case <-menuTest.ClickedCh:
				t.handleTest()
			case <-menuStop.ClickedCh:
				t.config.Launcher.StopAll()
				t.refreshStatus()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {
	t.stopPreview()
}

// addCameraItems probes the cameras and adds a submenu entry for each new one.
// systray cannot remove items, so cameras that vanished are disabled.
func (t *Tray) addCameraItems() {
	found := t.config.Cameras(t.config.MaxCameras)
	log.Infof("found %d camera(s)", len(found))

	seen := make(map[int]bool, len(found))
	t.mu.Lock()
	for _, info := range found {
		seen[info.Index] = true
		if item, ok := t.cameraItems[info.Index]; ok {
			item.Enable()
			continue
		}
		item := t.menuCameras.AddSubMenuItem(info.String(), "Use camera "+strconv.Itoa(info.Index))
		t.cameraItems[info.Index] = item
		go t.watchPreset(item, float64(info.Index), func(v float64) { t.setCamera(int(v)) })
	}
	for idx, item := range t.cameraItems {
		if !seen[idx] {
			item.Disable()
		}
	}
	t.mu.Unlock()

	current := t.Options().Camera
	if !seen[current] && len(found) > 0 {
		t.setCamera(found[0].Index)
		return
	}
	t.checkCamera(current)
}

func (t *Tray) watchLaunch(item *systray.MenuItem, id string) {
	for range item.ClickedCh {
		t.handleLaunch(id)
	}
}

func (t *Tray) watchPreset(item *systray.MenuItem, v float64, set func(float64)) {
	for range item.ClickedCh {
		set(v)
	}
}

func (t *Tray) handleLaunch(id string) {
	t.stopPreview()
	opts := t.Options()
	if err := t.config.Launcher.Launch(id, opts); err != nil {
		log.Errorf("launch %s: %v", id, err)
		return
	}
	t.refreshStatus()
}

// handleTest opens a preview of the selected camera in a child process.
func (t *Tray) handleTest() {
	if running := t.config.Launcher.Running(); len(running) > 0 {
		log.Warnf("camera busy: %s running", strings.Join(running, ", "))
		return
	}

	t.stopPreview()
	ctx, cancel := context.WithCancel(context.Background())
	cmd := previewCommand(ctx, t.config.Executable, t.Options().Camera)
	if err := cmd.Start(); err != nil {
		cancel()
		log.Errorf("camera test: %v", err)
		return
	}

	t.mu.Lock()
	t.previewCancel = cancel
	t.mu.Unlock()

	go func() {
		defer cancel()
		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			log.Errorf("camera test: %v", err)
		}
	}()
}

// previewCommand runs exe in preview mode for camera. Cancelling ctx kills it.
func previewCommand(ctx context.Context, exe string, camera int) *exec.Cmd {
	cmd := exec.CommandContext(ctx, exe, "-"+PreviewFlag, strconv.Itoa(camera))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd
}

func (t *Tray) stopPreview() {
	t.mu.Lock()
	cancel := t.previewCancel
	t.previewCancel = nil
	t.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (t *Tray) handleQuit() {
	t.stopPreview()
	t.config.Launcher.StopAll()

	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

func (t *Tray) setCamera(idx int) {
	t.update(func(o *launcher.Options) { o.Camera = idx })
	t.checkCamera(idx)
}

func (t *Tray) setSensitivity(v float64) {
	t.update(func(o *launcher.Options) { o.Sensitivity = v })
	t.mu.RLock()
	checkOnly(t.sensItems, v)
	t.mu.RUnlock()
}

func (t *Tray) setSmoothing(v float64) {
	t.update(func(o *launcher.Options) { o.Smoothing = v })
	t.mu.RLock()
	checkOnly(t.smoothItems, v)
	t.mu.RUnlock()
}

func (t *Tray) update(fn func(o *launcher.Options)) {
	t.mu.Lock()
	fn(&t.options)
	opts := t.options
	t.mu.Unlock()

	if err := SaveOptions(t.config.Settings, opts); err != nil {
		log.Warnf("failed to save settings: %v", err)
	}
}

func (t *Tray) checkCamera(idx int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i, item := range t.cameraItems {
		if i == idx {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
	if t.menuCameras != nil {
		t.menuCameras.SetTitle(fmt.Sprintf("Camera: %d", idx))
	}
}

func (t *Tray) refreshStatus() {
	if t.menuStatus == nil {
		return
	}
	running := t.config.Launcher.Running()
	if len(running) == 0 {
		t.menuStatus.SetTitle("Idle")
		return
	}
	t.menuStatus.SetTitle("Running: " + strings.Join(running, ", "))
}

func checkOnly[K comparable](items map[K]*systray.MenuItem, selected K) {
	for k, item := range items {
		if k == selected {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
