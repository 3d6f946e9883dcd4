package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"io"
	"log"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/tinyrange/multiwin/internal/config"
	glpkg "github.com/tinyrange/multiwin/internal/gl"
	"github.com/tinyrange/multiwin/internal/graphics"
	"github.com/tinyrange/multiwin/internal/host"
	"github.com/tinyrange/multiwin/internal/platform"
	"github.com/tinyrange/multiwin/internal/window/sdlwin"
	"github.com/veandco/go-sdl2/sdl"
)

func init() {
	// GL contexts are bound to the thread that made them current.
	runtime.LockOSThread()
}

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	configPath := fs.String("config", "", "config file (default $MULTIWIN_CONFIG or ~/.config/multiwin/config.yaml)")
	count := fs.Int("windows", 2, "number of auxiliary windows to open")
	frames := fs.Int("frames", 0, "exit after this many frames (0 runs until every window is closed)")

	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}

	path := *configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			log.Fatalf("config path: %v", err)
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := newLogger(cfg.Log, os.Stderr)
	if err != nil {
		log.Fatalf("log level: %v", err)
	}

	if err := run(cfg, logger, *count, *frames); err != nil {
		log.Fatalf("run: %v", err)
	}
}

func newLogger(cfg config.Log, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// demoHost plays the part of the embedding application: it owns the GL
// context and one texture per auxiliary window.
type demoHost struct {
	log      *slog.Logger
	gl       glpkg.OpenGL
	manager  *graphics.Manager
	textures map[host.Handle]uint32
}

func run(cfg *config.Config, logger *slog.Logger, count, frames int) error {
	system, err := sdlwin.New(cfg.GL)
	if err != nil {
		return err
	}

	hostWin, err := sdl.CreateWindow("multiwin host", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, 640, 480, sdl.WINDOW_OPENGL|sdl.WINDOW_HIDDEN)
	if err != nil {
		system.Close()
		return fmt.Errorf("create host window: %w", err)
	}
	hostCtx, err := hostWin.GLCreateContext()
	if err != nil {
		hostWin.Destroy()
		system.Close()
		return fmt.Errorf("create host context: %w", err)
	}
	closeHost := func() {
		sdl.GLDeleteContext(hostCtx)
		hostWin.Destroy()
	}

	gl, err := glpkg.Load()
	if err != nil {
		closeHost()
		system.Close()
		return fmt.Errorf("load GL: %w", err)
	}

	plat, err := platform.New(cfg.Host)
	if err != nil {
		logger.Warn("platform integration unavailable, drag disabled", "error", err)
	}

	d := &demoHost{log: logger, gl: gl, textures: map[host.Handle]uint32{}}
	d.manager, err = graphics.New(graphics.Options{
		System:   system,
		Platform: plat,
		Bridge: &host.Callbacks{
			Message:     d.onMessage,
			Close:       d.onClose,
			Resize:      d.onResize,
			MouseUpdate: d.onMouse,
			Move:        d.onMove,
		},
		Config: cfg,
	})
	if err != nil {
		closeHost()
		system.Close()
		return err
	}

	d.manager.DeviceEvent(graphics.DeviceInitialize, graphics.RendererOpenGLCore)
	defer func() {
		// GL objects go while the host context is still alive; SDL goes last.
		d.releaseTextures()
		d.manager.DeviceEvent(graphics.DeviceShutdown, graphics.RendererOpenGLCore)
		closeHost()
		d.manager.Shutdown()
	}()

	for i := 0; i < count; i++ {
		width, height := 400+80*i, 300+60*i
		tex := graphics.NewTexture(gl, checkerboard(width, height, i))
		h, err := d.manager.CreateWindow(fmt.Sprintf("multiwin %d", i+1), width, height, true, tex)
		if err != nil {
			graphics.DeleteTexture(gl, tex)
			continue
		}
		d.textures[h] = tex
	}

	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()

	for frame := 0; frames == 0 || frame < frames; frame++ {
		if d.manager.Len() == 0 {
			logger.Info("all windows closed")
			break
		}
		d.manager.UpdateWindows()
		<-ticker.C
	}
	return nil
}

func (d *demoHost) onMessage(message string) {
	d.log.Info("multiwin", "message", message)
}

func (d *demoHost) onClose(h host.Handle) {
	d.log.Info("window closed", "window", h)
	d.manager.DisposeWindow(h)
	graphics.DeleteTexture(d.gl, d.textures[h])
	delete(d.textures, h)
}

// onResize replaces the window's texture with one matching its new size.
func (d *demoHost) onResize(h host.Handle, width, height int) uint32 {
	graphics.DeleteTexture(d.gl, d.textures[h])
	tex := graphics.NewTexture(d.gl, checkerboard(width, height, int(h)))
	d.textures[h] = tex
	return tex
}

// onMouse starts dragging a window when it is clicked.
func (d *demoHost) onMouse(h host.Handle, x, y int, buttons host.ButtonMask) {
	d.log.Debug("mouse", "window", h, "x", x, "y", y, "buttons", buttons)
	if buttons&host.ButtonLeft == 0 {
		return
	}
	if w := d.manager.Window(h); w != nil && !w.Dragging() {
		w.Drag()
	}
}

func (d *demoHost) onMove(h host.Handle, x, y int, inside bool) {
	d.log.Info("window moved", "window", h, "x", x, "y", y, "over_host", inside)
}

func (d *demoHost) releaseTextures() {
	for h, tex := range d.textures {
		graphics.DeleteTexture(d.gl, tex)
		delete(d.textures, h)
	}
}

// checkerboard draws a 32px checker tinted by index so windows are easy to
// tell apart.
func checkerboard(width, height, index int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	tints := []color.RGBA{
		{R: 0xe0, G: 0x60, B: 0x40, A: 0xff},
		{R: 0x40, G: 0xa0, B: 0xe0, A: 0xff},
		{R: 0x60, G: 0xc0, B: 0x60, A: 0xff},
	}
	tint := tints[index%len(tints)]
	dark := color.RGBA{R: 0x20, G: 0x20, B: 0x28, A: 0xff}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x/32+y/32)%2 == 0 {
				img.SetRGBA(x, y, tint)
			} else {
				img.SetRGBA(x, y, dark)
			}
		}
	}
	return img
}
