package mgmt

// DCSO rdnscache
// Copyright (c) 2021, 2026, DCSO GmbH

import (
	context "context"
	"errors"
	"net"
	"os"
	"path/filepath"

	"github.com/DCSO/rdnscache/resolv"
	"github.com/DCSO/rdnscache/types"

	"github.com/sirupsen/logrus"
	grpc "google.golang.org/grpc"
	codes "google.golang.org/grpc/codes"
	status "google.golang.org/grpc/status"
	emptypb "google.golang.org/protobuf/types/known/emptypb"
	structpb "google.golang.org/protobuf/types/known/structpb"
	wrapperspb "google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	permSocketPath = 0750
)

type mgmtServer struct {
	ctx     context.Context
	Logger  *logrus.Entry
	grpcSrv *grpc.Server
	cfg     GRPCEndpointConfig
	state   *State
}

// NewMgmtServer returns a new mamagement server instance registered with gRPC.
func NewMgmtServer(parent context.Context, cfg GRPCEndpointConfig, state *State) (Server, error) {
	if state == nil || state.Cache == nil {
		return nil, errors.New("management server needs a cache")
	}
	srv := &mgmtServer{
		ctx:   parent,
		cfg:   cfg,
		state: state,
		Logger: logrus.StandardLogger().WithFields(logrus.Fields{
			"domain": "mgmt",
		}),
	}
	srv.grpcSrv = grpc.NewServer(cfg.ServerOptions...)
	RegisterMgmtServiceServer(srv.grpcSrv, srv)

	return srv, nil
}

// Stop stops the mgmtServer.
func (srv *mgmtServer) Stop() {
	srv.grpcSrv.GracefulStop()
}

// ListenAndServe starts the mgmtServer, accepting connections on the given
// communication channel.
func (srv *mgmtServer) ListenAndServe() (err error) {
	var ln net.Listener

	if srv.cfg.Network == "unix" {
		if err = os.MkdirAll(filepath.Dir(srv.cfg.ListenerAddress), permSocketPath); err != nil {
			srv.Logger.WithError(err).WithFields(logrus.Fields{
				"path":      filepath.Dir(srv.cfg.ListenerAddress),
				"perm_path": permSocketPath,
			}).Error("unable to create path")
			return
		}
	}

	if ln, err = net.Listen(srv.cfg.Network, srv.cfg.ListenerAddress); err != nil {
		srv.Logger.WithError(err).WithFields(logrus.Fields{
			"network": srv.cfg.Network,
			"address": srv.cfg.ListenerAddress,
		}).Error("setting up mgmt endpoint")
		return
	}
	defer ln.Close()

	if dsln, ok := ln.(*net.UnixListener); ok {
		dsln.SetUnlinkOnClose(true)
	}

	srv.Logger.Info("gRPC mgmt service listening ...")
	err = srv.grpcSrv.Serve(ln)
	srv.Logger.Info("gRPC mgmt service stopped")
	return err
}

func parseAddress(s string) (types.Address, error) {
	addr, err := types.ParseAddress(s)
	if err != nil {
		return addr, status.Errorf(codes.InvalidArgument, "%s: %q", err.Error(), s)
	}
	return addr, nil
}

//
// MgmtServiceServer interface
//

// Alive implements a simple echo command.
func (srv *mgmtServer) Alive(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	return wrapperspb.String(req.GetValue()), nil
}

// Lookup returns the cached state for an address without triggering
// resolution.
func (srv *mgmtServer) Lookup(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	srv.Logger.Debug("responding to Lookup")
	addr, err := parseAddress(req.GetValue())
	if err != nil {
		return nil, err
	}
	out, found := srv.state.Cache.Lookup(addr)
	return structpb.NewStruct(map[string]interface{}{
		"found":    found,
		"state":    out.Kind.String(),
		"hostname": out.Hostname,
	})
}

// Insert stores a hostname for an address unless the address is already
// cached. An empty hostname records a negative entry.
func (srv *mgmtServer) Insert(ctx context.Context, req *structpb.Struct) (*wrapperspb.BoolValue, error) {
	srv.Logger.Debug("responding to Insert")
	fields := req.GetFields()
	addr, err := parseAddress(fields["address"].GetStringValue())
	if err != nil {
		return nil, err
	}
	if addr.IsUnspecified() {
		return nil, status.Error(codes.InvalidArgument, "unspecified address cannot be cached")
	}
	inserted := srv.state.Cache.Insert(addr, fields["hostname"].GetStringValue())
	return wrapperspb.Bool(inserted), nil
}

// Resolve runs a full resolution for an address, as done for events.
func (srv *mgmtServer) Resolve(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	srv.Logger.Debug("responding to Resolve")
	if srv.state.Orchestrator == nil {
		return nil, status.Error(codes.Unavailable, "no resolver configured")
	}
	addr, err := parseAddress(req.GetValue())
	if err != nil {
		return nil, err
	}
	name, err := srv.state.Orchestrator.Resolve(ctx, addr)
	st := StatusOK
	switch {
	case errors.Is(err, resolv.ErrNotHandled):
		st = StatusNotHandled
	case errors.Is(err, resolv.ErrNotFound):
		st = StatusNotFound
	case err != nil:
		return nil, status.Error(codes.Internal, err.Error())
	}
	return structpb.NewStruct(map[string]interface{}{
		"status":   st,
		"hostname": name,
	})
}

// SetResolve switches active resolution on or off.
func (srv *mgmtServer) SetResolve(ctx context.Context, req *wrapperspb.BoolValue) (*emptypb.Empty, error) {
	if srv.state.Toggle == nil {
		return nil, status.Error(codes.Unavailable, "resolution cannot be switched")
	}
	srv.Logger.WithField("enabled", req.GetValue()).Info("setting active resolution")
	srv.state.Toggle.Set(req.GetValue())
	return &emptypb.Empty{}, nil
}

// Stats returns cache statistics.
func (srv *mgmtServer) Stats(ctx context.Context, _req *emptypb.Empty) (*structpb.Struct, error) {
	enabled := srv.state.Toggle != nil && srv.state.Toggle.Enabled()
	return structpb.NewStruct(map[string]interface{}{
		"entries":         srv.state.Cache.Len(),
		"buckets":         srv.state.Cache.Buckets(),
		"resolve_enabled": enabled,
	})
}
