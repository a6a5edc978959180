package plugin

import (
	"context"
	"net/rpc"

	"github.com/hashicorp/go-plugin"
)

// BackendRPC implements plugin.Plugin for extraction backends.
type BackendRPC struct {
	plugin.Plugin
	Impl Backend
}

// Server returns the RPC server wrapping Impl.
func (p *BackendRPC) Server(*plugin.MuxBroker) (any, error) {
	return &BackendRPCServer{Impl: p.Impl}, nil
}

// Client returns the host side RPC client.
func (p *BackendRPC) Client(_ *plugin.MuxBroker, c *rpc.Client) (any, error) {
	return &BackendRPCClient{client: c}, nil
}

// ExtractArgs is the request of the Extract RPC.
type ExtractArgs struct {
	ImagePath string
}

// BackendRPCServer runs in the plugin process.
type BackendRPCServer struct {
	Impl Backend
}

// Extract implements the Extract RPC.
func (s *BackendRPCServer) Extract(args ExtractArgs, resp *[]RGBColour) error {
	colours, err := s.Impl.Extract(context.Background(), args.ImagePath)
	if err != nil {
		return err
	}
	*resp = colours
	return nil
}

// Info implements the Info RPC.
func (s *BackendRPCServer) Info(_ any, resp *PluginInfo) error {
	*resp = s.Impl.Info()
	return nil
}

// BackendRPCClient runs in the host and implements Backend over RPC.
type BackendRPCClient struct {
	client *rpc.Client
}

// Extract calls the plugin. net/rpc cannot cancel a call in flight, so a
// cancelled ctx returns immediately and the reply is discarded.
func (c *BackendRPCClient) Extract(ctx context.Context, imagePath string) ([]RGBColour, error) {
	var resp []RGBColour
	call := c.client.Go("Plugin.Extract", ExtractArgs{ImagePath: imagePath}, &resp, make(chan *rpc.Call, 1))
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-call.Done:
		if call.Error != nil {
			return nil, call.Error
		}
		return resp, nil
	}
}

// Info calls the plugin's Info method. Errors yield an empty PluginInfo.
func (c *BackendRPCClient) Info() PluginInfo {
	var info PluginInfo
	if err := c.client.Call("Plugin.Info", new(any), &info); err != nil {
		return PluginInfo{}
	}
	return info
}
