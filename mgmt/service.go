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

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "rdnscache.MgmtService"

// Resolve status values.
const (
	StatusOK         = "ok"
	StatusNotFound   = "not_found"
	StatusNotHandled = "not_handled"
)

// MgmtServiceServer is the server API for the management service. All
// messages are protobuf well-known types.
type MgmtServiceServer interface {
	Alive(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	Lookup(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	Insert(context.Context, *structpb.Struct) (*wrapperspb.BoolValue, error)
	Resolve(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	SetResolve(context.Context, *wrapperspb.BoolValue) (*emptypb.Empty, error)
	Stats(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

func unaryHandler[Req any, Resp any](
	name string,
	newReq func() *Req,
	call func(MgmtServiceServer, context.Context, *Req) (Resp, error),
) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := newReq()
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(MgmtServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(MgmtServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// MgmtServiceDesc is the grpc.ServiceDesc for the management service.
var MgmtServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MgmtServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("Alive", func() *wrapperspb.StringValue { return new(wrapperspb.StringValue) },
			func(s MgmtServiceServer, ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
				return s.Alive(ctx, in)
			}),
		unaryHandler("Lookup", func() *wrapperspb.StringValue { return new(wrapperspb.StringValue) },
			func(s MgmtServiceServer, ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
				return s.Lookup(ctx, in)
			}),
		unaryHandler("Insert", func() *structpb.Struct { return new(structpb.Struct) },
			func(s MgmtServiceServer, ctx context.Context, in *structpb.Struct) (*wrapperspb.BoolValue, error) {
				return s.Insert(ctx, in)
			}),
		unaryHandler("Resolve", func() *wrapperspb.StringValue { return new(wrapperspb.StringValue) },
			func(s MgmtServiceServer, ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
				return s.Resolve(ctx, in)
			}),
		unaryHandler("SetResolve", func() *wrapperspb.BoolValue { return new(wrapperspb.BoolValue) },
			func(s MgmtServiceServer, ctx context.Context, in *wrapperspb.BoolValue) (*emptypb.Empty, error) {
				return s.SetResolve(ctx, in)
			}),
		unaryHandler("Stats", func() *emptypb.Empty { return new(emptypb.Empty) },
			func(s MgmtServiceServer, ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error) {
				return s.Stats(ctx, in)
			}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rdnscache/mgmt.proto",
}

// RegisterMgmtServiceServer registers the management service implementation
// with a gRPC server.
func RegisterMgmtServiceServer(s grpc.ServiceRegistrar, srv MgmtServiceServer) {
	s.RegisterService(&MgmtServiceDesc, srv)
}

// MgmtServiceClient is the raw client API for the management service.
type MgmtServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewMgmtServiceClient returns a MgmtServiceClient using the given connection.
func NewMgmtServiceClient(cc grpc.ClientConnInterface) *MgmtServiceClient {
	return &MgmtServiceClient{cc: cc}
}

func (c *MgmtServiceClient) invoke(ctx context.Context, method string, in, out interface{}, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...)
}

// Alive calls the Alive method.
func (c *MgmtServiceClient) Alive(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.invoke(ctx, "Alive", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Lookup calls the Lookup method.
func (c *MgmtServiceClient) Lookup(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, "Lookup", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Insert calls the Insert method.
func (c *MgmtServiceClient) Insert(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.invoke(ctx, "Insert", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Resolve calls the Resolve method.
func (c *MgmtServiceClient) Resolve(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, "Resolve", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// SetResolve calls the SetResolve method.
func (c *MgmtServiceClient) SetResolve(ctx context.Context, in *wrapperspb.BoolValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.invoke(ctx, "SetResolve", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Stats calls the Stats method.
func (c *MgmtServiceClient) Stats(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, "Stats", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
