package bridge

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/nvimlink/internal/config"
	"github.com/dshills/nvimlink/internal/event"
	"github.com/dshills/nvimlink/internal/host"
	"github.com/dshills/nvimlink/internal/logging"
	"github.com/dshills/nvimlink/internal/process"
)

// Client identity announced to the engine at startup.
const (
	clientName   = "nvimlink"
	versionMajor = 0
	versionMinor = 1
	versionPatch = 0
)

// channelVar is the engine-side global variable naming this endpoint's
// channel id, so engine scripts can address messages back to exactly this
// controller.
const channelVar = "nvimlink_channel"

// TopicEngineExited is published when the engine process exits. The payload
// is the exit code.
const TopicEngineExited = "engine.exited"

// defaultUIWidth applies when no width is configured. The height is fixed;
// the attached UI is a logical grid, not a visible surface.
const (
	defaultUIWidth = 1000
	uiHeight       = 100
)

// shutdownGrace is how long the engine gets to exit on SIGTERM before
// escalation.
const shutdownGrace = 2 * time.Second

// resolveCallbackLua invokes the engine-side callback resolver installed by
// the runtime post-script.
const resolveCallbackLua = `return _G.__nvimlink_resolve(...)`

// ChannelFactory builds a Channel over the engine's standard I/O.
// It exists so tests can substitute a fake channel.
type ChannelFactory func(r io.Reader, w io.Writer, c io.Closer, logf func(string, ...any)) (Channel, error)

// Controller owns the engine process and RPC channel lifecycle for one
// editing session: spawn, attach, demultiplex, dispose. It is created once
// per session and cannot be restarted after Close.
type Controller struct {
	cfg    config.Config
	log    *logging.Logger
	bus    event.Bus
	editor *host.Editor

	newChannel ChannelFactory

	mu     sync.Mutex
	proc   *process.Process
	ch     Channel
	router *Router

	started   atomic.Bool
	closed    atomic.Bool
	closeOnce sync.Once
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithChannelFactory substitutes the channel construction, for tests.
func WithChannelFactory(f ChannelFactory) ControllerOption {
	return func(c *Controller) { c.newChannel = f }
}

// NewController creates a controller. Start launches the session.
func NewController(cfg config.Config, editor *host.Editor, bus event.Bus, log *logging.Logger, opts ...ControllerOption) *Controller {
	if log == nil {
		log = logging.NullLogger
	}
	c := &Controller{
		cfg:        cfg,
		log:        log.WithComponent("bridge"),
		bus:        bus,
		editor:     editor,
		newChannel: NewChannel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start spawns the engine, wires the channel, and attaches the UI.
//
// The initialization order is fixed: handlers are registered and the
// receive loop is running before the client identity, channel variable,
// and UI attach calls go out, so nothing the engine sends in response is
// lost.
//
// A spawn failure is fatal to the session: Start returns the error and the
// controller stays non-functional. There is no retry.
func (c *Controller) Start(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if c.started.Swap(true) {
		return ErrAlreadyStarted
	}

	proc, err := process.Start(process.Config{
		Command: c.cfg.Engine.Path,
		Args:    BuildArgs(c.cfg.Engine),
		Env:     BuildEnv(c.cfg.Engine),
	}, process.WithName("engine"), process.WithExitCallback(c.onEngineExit))
	if err != nil {
		c.log.Error("engine spawn failed: %v", err)
		return err
	}
	c.log.Info("engine started pid=%d", proc.PID())

	c.mu.Lock()
	c.proc = proc
	c.mu.Unlock()

	ch, err := c.newChannel(proc.Stdout(), proc.Stdin(), proc, c.rpcLogf)
	if err != nil {
		_ = c.Close()
		return err
	}

	c.mu.Lock()
	c.ch = ch
	c.router = NewRouter(NewDispatcher(c.editor, c.log), NewAccumulator(), c.bus, c, c.log)
	router := c.router
	c.mu.Unlock()

	if err := c.registerHandlers(ch, router); err != nil {
		_ = c.Close()
		return err
	}

	go func() {
		if err := ch.Serve(); err != nil && !c.closed.Load() {
			c.log.Error("channel closed: %v", err)
		}
	}()

	if err := c.attach(ctx, ch); err != nil {
		_ = c.Close()
		return err
	}

	c.log.Info("engine attached channel=%d", ch.ChannelID())
	return nil
}

// registerHandlers installs the inbound method handlers. Only these three
// methods exist; the rpc layer answers anything else.
func (c *Controller) registerHandlers(ch Channel, router *Router) error {
	if err := ch.RegisterHandler(methodAction, func(args ...any) (any, error) {
		return router.HandleAction(args)
	}); err != nil {
		return err
	}
	if err := ch.RegisterHandler(methodEvent, func(args ...any) {
		router.HandleEvent(args)
	}); err != nil {
		return err
	}
	return ch.RegisterHandler(methodRedraw, func(updates ...[]any) {
		router.HandleRedraw(updates)
	})
}

// attach announces the client, publishes the channel id, and attaches the
// UI with the extended capability set.
func (c *Controller) attach(_ context.Context, ch Channel) error {
	if err := ch.SetClientInfo(clientName, versionMajor, versionMinor, versionPatch); err != nil {
		return err
	}
	if err := ch.SetVar(channelVar, ch.ChannelID()); err != nil {
		return err
	}

	width := c.cfg.UI.Width
	if width <= 0 {
		width = defaultUIWidth
	}
	return ch.AttachUI(width, uiHeight, uiOptions())
}

// uiOptions is the fixed capability flag set for the UI attach.
func uiOptions() map[string]any {
	return map[string]any{
		"rgb":           true,
		"ext_cmdline":   true,
		"ext_linegrid":  true,
		"ext_hlstate":   true,
		"ext_messages":  true,
		"ext_multigrid": true,
		"ext_popupmenu": true,
		"ext_tabline":   true,
		"ext_wildmenu":  true,
	}
}

// InvokeCallback implements CallbackInvoker: best-effort, fire-and-forget
// delivery of an action result to an engine-side callback. Failures are
// logged and otherwise dropped.
func (c *Controller) InvokeCallback(id string, result any, isError bool) {
	c.mu.Lock()
	ch := c.ch
	c.mu.Unlock()
	if ch == nil {
		return
	}

	go func() {
		if err := ch.ExecLua(resolveCallbackLua, nil, id, result, isError); err != nil {
			c.log.Warn("callback %s: delivery failed: %v", id, err)
		}
	}()
}

// RunLua executes a Lua chunk in the engine on behalf of the host.
func (c *Controller) RunLua(code string, result any, args ...any) error {
	if code == "" {
		c.log.Warn("run lua: %v", ErrNoPayload)
		return ErrNoPayload
	}

	c.mu.Lock()
	ch := c.ch
	c.mu.Unlock()
	if ch == nil {
		return ErrNotStarted
	}
	return ch.ExecLua(code, result, args...)
}

// onEngineExit runs on the process wait goroutine when the engine exits.
// An exit during normal teardown is expected; anything else is fatal to the
// session and surfaced on the bus.
func (c *Controller) onEngineExit(p *process.Process) {
	if c.closed.Load() {
		return
	}

	c.log.Error("engine exited unexpectedly code=%d", p.ExitCode())
	c.bus.Publish(TopicEngineExited, p.ExitCode())
}

// Close disposes the session: the channel is closed and the engine process
// is terminated. Close is idempotent and safe to call before Start.
func (c *Controller) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.teardown()
	})
	return nil
}

// teardown shuts the channel and process down. Safe when partially started.
func (c *Controller) teardown() {
	c.mu.Lock()
	ch := c.ch
	proc := c.proc
	c.ch = nil
	c.proc = nil
	c.mu.Unlock()

	if ch != nil {
		if err := ch.Close(); err != nil {
			c.log.Debug("channel close: %v", err)
		}
	}
	if proc != nil {
		proc.Shutdown(shutdownGrace)
		c.log.Info("engine stopped code=%d", proc.ExitCode())
	}
}

// rpcLogf adapts the rpc layer's diagnostics to the controller logger.
func (c *Controller) rpcLogf(format string, args ...any) {
	c.log.Debug(format, args...)
}
