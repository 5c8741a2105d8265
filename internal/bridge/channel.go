package bridge

import (
	"io"

	"github.com/neovim/go-client/nvim"
)

// Channel is the RPC surface the controller needs from the engine
// connection. The production implementation wraps the msgpack-RPC client;
// tests substitute a fake.
type Channel interface {
	// RegisterHandler registers fn for an inbound method. For requests the
	// handler's return values become the response; for notifications they
	// are discarded.
	RegisterHandler(method string, fn any) error

	// Serve runs the channel's receive loop until the connection closes.
	Serve() error

	// Close closes the channel.
	Close() error

	// ChannelID returns the engine-assigned id of this RPC endpoint.
	ChannelID() int

	// SetClientInfo announces the client identity to the engine.
	SetClientInfo(name string, major, minor, patch int) error

	// SetVar sets an engine-side global variable.
	SetVar(name string, value any) error

	// AttachUI attaches this endpoint as a UI with the given dimensions
	// and capability options.
	AttachUI(width, height int, options map[string]any) error

	// ExecLua runs a Lua chunk in the engine.
	ExecLua(code string, result any, args ...any) error
}

// nvimChannel implements Channel over a live go-client connection.
type nvimChannel struct {
	v *nvim.Nvim
}

// NewChannel creates a Channel over the engine's standard I/O. The reader
// is the engine's stdout, the writer its stdin; closer is closed with the
// channel. logf receives the rpc layer's diagnostics.
func NewChannel(r io.Reader, w io.Writer, c io.Closer, logf func(string, ...any)) (Channel, error) {
	v, err := nvim.New(r, w, c, logf)
	if err != nil {
		return nil, err
	}
	return &nvimChannel{v: v}, nil
}

func (c *nvimChannel) RegisterHandler(method string, fn any) error {
	return c.v.RegisterHandler(method, fn)
}

func (c *nvimChannel) Serve() error {
	return c.v.Serve()
}

func (c *nvimChannel) Close() error {
	return c.v.Close()
}

func (c *nvimChannel) ChannelID() int {
	return c.v.ChannelID()
}

func (c *nvimChannel) SetClientInfo(name string, major, minor, patch int) error {
	version := nvim.ClientVersion{Major: major, Minor: minor, Patch: patch}
	return c.v.SetClientInfo(name, version, nvim.EmbedderClientType, nil, nvim.ClientAttributes{})
}

func (c *nvimChannel) SetVar(name string, value any) error {
	return c.v.SetVar(name, value)
}

func (c *nvimChannel) AttachUI(width, height int, options map[string]any) error {
	return c.v.AttachUI(width, height, options)
}

func (c *nvimChannel) ExecLua(code string, result any, args ...any) error {
	return c.v.ExecLua(code, result, args...)
}
