package mgmt

// DCSO rdnscache
// Copyright (c) 2026, DCSO GmbH

import (
	context "context"

	grpc "google.golang.org/grpc"
	emptypb "google.golang.org/protobuf/types/known/emptypb"
	structpb "google.golang.org/protobuf/types/known/structpb"
	wrapperspb "google.golang.org/protobuf/types/known/wrapperspb"
)

// LookupResult is the cached state of an address.
type LookupResult struct {
	Found    bool
	State    string
	Hostname string
}

// ResolveResult is the outcome of a resolution request.
type ResolveResult struct {
	Status   string
	Hostname string
}

// StatsResult holds cache statistics.
type StatsResult struct {
	Entries        int
	Buckets        int
	ResolveEnabled bool
}

// Client is a typed wrapper around MgmtServiceClient.
type Client struct {
	conn *grpc.ClientConn
	clt  *MgmtServiceClient
}

// Dial connects to the management endpoint described by cfg.
func Dial(cfg GRPCEndpointConfig) (*Client, error) {
	conn, err := grpc.Dial(cfg.DialString(), cfg.DialOptions...)
	if err != nil {
		return nil, err
	}
	return &Client{
		conn: conn,
		clt:  NewMgmtServiceClient(conn),
	}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Alive sends msg and returns the server's echo.
func (c *Client) Alive(ctx context.Context, msg string) (string, error) {
	resp, err := c.clt.Alive(ctx, wrapperspb.String(msg))
	if err != nil {
		return "", err
	}
	return resp.GetValue(), nil
}

// Lookup returns the cached state of addr.
func (c *Client) Lookup(ctx context.Context, addr string) (LookupResult, error) {
	resp, err := c.clt.Lookup(ctx, wrapperspb.String(addr))
	if err != nil {
		return LookupResult{}, err
	}
	f := resp.GetFields()
	return LookupResult{
		Found:    f["found"].GetBoolValue(),
		State:    f["state"].GetStringValue(),
		Hostname: f["hostname"].GetStringValue(),
	}, nil
}

// Insert stores hostname for addr if addr is not cached yet, and reports
// whether it was stored.
func (c *Client) Insert(ctx context.Context, addr, hostname string) (bool, error) {
	req, err := structpb.NewStruct(map[string]interface{}{
		"address":  addr,
		"hostname": hostname,
	})
	if err != nil {
		return false, err
	}
	resp, err := c.clt.Insert(ctx, req)
	if err != nil {
		return false, err
	}
	return resp.GetValue(), nil
}

// Resolve asks the server to resolve addr.
func (c *Client) Resolve(ctx context.Context, addr string) (ResolveResult, error) {
	resp, err := c.clt.Resolve(ctx, wrapperspb.String(addr))
	if err != nil {
		return ResolveResult{}, err
	}
	f := resp.GetFields()
	return ResolveResult{
		Status:   f["status"].GetStringValue(),
		Hostname: f["hostname"].GetStringValue(),
	}, nil
}

// SetResolve enables or disables active resolution.
func (c *Client) SetResolve(ctx context.Context, enabled bool) error {
	_, err := c.clt.SetResolve(ctx, wrapperspb.Bool(enabled))
	return err
}

// Stats returns cache statistics.
func (c *Client) Stats(ctx context.Context) (StatsResult, error) {
	resp, err := c.clt.Stats(ctx, &emptypb.Empty{})
	if err != nil {
		return StatsResult{}, err
	}
	f := resp.GetFields()
	return StatsResult{
		Entries:        int(f["entries"].GetNumberValue()),
		Buckets:        int(f["buckets"].GetNumberValue()),
		ResolveEnabled: f["resolve_enabled"].GetBoolValue(),
	}, nil
}
