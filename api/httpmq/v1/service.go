package httpmqv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "httpmq.v1.Queues"

const (
	methodPut         = "/" + ServiceName + "/Put"
	methodGet         = "/" + ServiceName + "/Get"
	methodStatus      = "/" + ServiceName + "/Status"
	methodReset       = "/" + ServiceName + "/Reset"
	methodSetMaxQueue = "/" + ServiceName + "/SetMaxQueue"
	methodView        = "/" + ServiceName + "/View"
	methodList        = "/" + ServiceName + "/List"
	methodItems       = "/" + ServiceName + "/Items"
)

// QueuesServer is the server API for the Queues service.
type QueuesServer interface {
	Put(context.Context, *PutRequest) (*PutResponse, error)
	Get(context.Context, *GetRequest) (*GetResponse, error)
	Status(context.Context, *StatusRequest) (*QueueStatus, error)
	Reset(context.Context, *ResetRequest) (*ResetResponse, error)
	SetMaxQueue(context.Context, *SetMaxQueueRequest) (*SetMaxQueueResponse, error)
	View(context.Context, *ViewRequest) (*Item, error)
	List(context.Context, *ListRequest) (*ListResponse, error)
	Items(context.Context, *ItemsRequest) (*ItemsResponse, error)
}

// UnimplementedQueuesServer answers Unimplemented for every method.
type UnimplementedQueuesServer struct{}

func (UnimplementedQueuesServer) Put(context.Context, *PutRequest) (*PutResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Put not implemented")
}
func (UnimplementedQueuesServer) Get(context.Context, *GetRequest) (*GetResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Get not implemented")
}
func (UnimplementedQueuesServer) Status(context.Context, *StatusRequest) (*QueueStatus, error) {
	return nil, status.Error(codes.Unimplemented, "method Status not implemented")
}
func (UnimplementedQueuesServer) Reset(context.Context, *ResetRequest) (*ResetResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Reset not implemented")
}
func (UnimplementedQueuesServer) SetMaxQueue(context.Context, *SetMaxQueueRequest) (*SetMaxQueueResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SetMaxQueue not implemented")
}
func (UnimplementedQueuesServer) View(context.Context, *ViewRequest) (*Item, error) {
	return nil, status.Error(codes.Unimplemented, "method View not implemented")
}
func (UnimplementedQueuesServer) List(context.Context, *ListRequest) (*ListResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method List not implemented")
}
func (UnimplementedQueuesServer) Items(context.Context, *ItemsRequest) (*ItemsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Items not implemented")
}

// RegisterQueuesServer registers srv on s.
func RegisterQueuesServer(s grpc.ServiceRegistrar, srv QueuesServer) {
	s.RegisterService(&Queues_ServiceDesc, srv)
}

// unary builds a MethodDesc handler for one request type.
func unary[Req any, Resp any](name, fullMethod string, call func(QueuesServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(QueuesServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(QueuesServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// Queues_ServiceDesc describes the Queues service for grpc.Server.
var Queues_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*QueuesServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Put", methodPut, QueuesServer.Put),
		unary("Get", methodGet, QueuesServer.Get),
		unary("Status", methodStatus, QueuesServer.Status),
		unary("Reset", methodReset, QueuesServer.Reset),
		unary("SetMaxQueue", methodSetMaxQueue, QueuesServer.SetMaxQueue),
		unary("View", methodView, QueuesServer.View),
		unary("List", methodList, QueuesServer.List),
		unary("Items", methodItems, QueuesServer.Items),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "httpmq/v1/queues",
}

// QueuesClient is the client API for the Queues service.
type QueuesClient interface {
	Put(ctx context.Context, in *PutRequest, opts ...grpc.CallOption) (*PutResponse, error)
	Get(ctx context.Context, in *GetRequest, opts ...grpc.CallOption) (*GetResponse, error)
	Status(ctx context.Context, in *StatusRequest, opts ...grpc.CallOption) (*QueueStatus, error)
	Reset(ctx context.Context, in *ResetRequest, opts ...grpc.CallOption) (*ResetResponse, error)
	SetMaxQueue(ctx context.Context, in *SetMaxQueueRequest, opts ...grpc.CallOption) (*SetMaxQueueResponse, error)
	View(ctx context.Context, in *ViewRequest, opts ...grpc.CallOption) (*Item, error)
	List(ctx context.Context, in *ListRequest, opts ...grpc.CallOption) (*ListResponse, error)
	Items(ctx context.Context, in *ItemsRequest, opts ...grpc.CallOption) (*ItemsResponse, error)
}

type queuesClient struct {
	cc grpc.ClientConnInterface
}

// NewQueuesClient returns a client that speaks the JSON codec over cc.
func NewQueuesClient(cc grpc.ClientConnInterface) QueuesClient {
	return &queuesClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *queuesClient) Put(ctx context.Context, in *PutRequest, opts ...grpc.CallOption) (*PutResponse, error) {
	return invoke[PutResponse](ctx, c.cc, methodPut, in, opts)
}

func (c *queuesClient) Get(ctx context.Context, in *GetRequest, opts ...grpc.CallOption) (*GetResponse, error) {
	return invoke[GetResponse](ctx, c.cc, methodGet, in, opts)
}

func (c *queuesClient) Status(ctx context.Context, in *StatusRequest, opts ...grpc.CallOption) (*QueueStatus, error) {
	return invoke[QueueStatus](ctx, c.cc, methodStatus, in, opts)
}

func (c *queuesClient) Reset(ctx context.Context, in *ResetRequest, opts ...grpc.CallOption) (*ResetResponse, error) {
	return invoke[ResetResponse](ctx, c.cc, methodReset, in, opts)
}

func (c *queuesClient) SetMaxQueue(ctx context.Context, in *SetMaxQueueRequest, opts ...grpc.CallOption) (*SetMaxQueueResponse, error) {
	return invoke[SetMaxQueueResponse](ctx, c.cc, methodSetMaxQueue, in, opts)
}

func (c *queuesClient) View(ctx context.Context, in *ViewRequest, opts ...grpc.CallOption) (*Item, error) {
	return invoke[Item](ctx, c.cc, methodView, in, opts)
}

func (c *queuesClient) List(ctx context.Context, in *ListRequest, opts ...grpc.CallOption) (*ListResponse, error) {
	return invoke[ListResponse](ctx, c.cc, methodList, in, opts)
}

func (c *queuesClient) Items(ctx context.Context, in *ItemsRequest, opts ...grpc.CallOption) (*ItemsResponse, error) {
	return invoke[ItemsResponse](ctx, c.cc, methodItems, in, opts)
}
