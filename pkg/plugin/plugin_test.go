package plugin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/rpc"
	"slices"
	"strings"
	"testing"
)

type mockBackend struct {
	colours []RGBColour
	err     error
	block   chan struct{}
	gotPath string
}

func (m *mockBackend) Extract(_ context.Context, imagePath string) ([]RGBColour, error) {
	if m.block != nil {
		<-m.block
	}
	m.gotPath = imagePath
	return m.colours, m.err
}

func (m *mockBackend) Info() PluginInfo {
	return PluginInfo{Name: "mock", Version: "1.2.3", ProtocolVersion: ProtocolVersion, Description: "mock backend"}
}

// connect serves impl over an in-memory net/rpc connection and returns the
// host side client.
func connect(t *testing.T, impl Backend) *BackendRPCClient {
	t.Helper()

	p := &BackendRPC{Impl: impl}
	srv, err := p.Server(nil)
	if err != nil {
		t.Fatalf("Server() error = %v", err)
	}

	server := rpc.NewServer()
	if err := server.RegisterName("Plugin", srv); err != nil {
		t.Fatalf("RegisterName() error = %v", err)
	}
	serverConn, clientConn := net.Pipe()
	go server.ServeConn(serverConn)

	rpcClient := rpc.NewClient(clientConn)
	t.Cleanup(func() { rpcClient.Close() })

	c, err := p.Client(nil, rpcClient)
	if err != nil {
		t.Fatalf("Client() error = %v", err)
	}
	client, ok := c.(*BackendRPCClient)
	if !ok {
		t.Fatalf("Client() returned %T", c)
	}
	return client
}

func TestBackendRPC(t *testing.T) {
	mock := &mockBackend{colours: []RGBColour{{R: 255}, {G: 255}, {B: 255}}}
	client := connect(t, mock)

	got, err := client.Extract(context.Background(), "/walls/a.png")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !slices.Equal(got, mock.colours) {
		t.Errorf("Extract() = %v, want %v", got, mock.colours)
	}
	if mock.gotPath != "/walls/a.png" {
		t.Errorf("plugin received path %q", mock.gotPath)
	}

	info := client.Info()
	if info.Name != "mock" || info.Version != "1.2.3" {
		t.Errorf("Info() = %+v", info)
	}
}

func TestBackendRPCError(t *testing.T) {
	client := connect(t, &mockBackend{err: errors.New("unsupported format")})

	_, err := client.Extract(context.Background(), "/walls/a.bmp")
	if err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Errorf("Extract() error = %v", err)
	}
}

func TestBackendRPCCancelled(t *testing.T) {
	mock := &mockBackend{block: make(chan struct{})}
	defer close(mock.block)
	client := connect(t, mock)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.Extract(ctx, "/walls/a.png"); !errors.Is(err, context.Canceled) {
		t.Errorf("Extract() error = %v, want context.Canceled", err)
	}
}

func TestIsCompatible(t *testing.T) {
	tests := []struct {
		version string
		want    bool
		wantErr bool
	}{
		{version: ProtocolVersion, want: true},
		{version: "1.4.2", want: true},
		{version: "v1.0.0", want: true},
		{version: "2.0.0", wantErr: true},
		{version: "0.9.0", wantErr: true},
		{version: "not-a-version", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			got, err := IsCompatible(tt.version)
			if (err != nil) != tt.wantErr {
				t.Fatalf("IsCompatible() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("IsCompatible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWriteInfo(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteInfo(&buf, PluginInfo{Name: "colorz", Version: "0.1.0"}); err != nil {
		t.Fatalf("WriteInfo() error = %v", err)
	}

	var info PluginInfo
	if err := json.Unmarshal(buf.Bytes(), &info); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if info.Name != "colorz" || info.ProtocolVersion != ProtocolVersion {
		t.Errorf("WriteInfo() wrote %+v", info)
	}
}
