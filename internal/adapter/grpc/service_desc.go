package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "store.v1.UserService"

// Full method names.
const (
	LoginMethod      = "/" + ServiceName + "/Login"
	CreateUserMethod = "/" + ServiceName + "/CreateUser"
	GetUserMethod    = "/" + ServiceName + "/GetUser"
	UpdateUserMethod = "/" + ServiceName + "/UpdateUser"
	DeleteUserMethod = "/" + ServiceName + "/DeleteUser"
)

// UserServiceServer is the server API of store.v1.UserService. Messages are
// protobuf well-known types so no generated code is needed.
type UserServiceServer interface {
	Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	CreateUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	GetUser(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error)
	UpdateUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	DeleteUser(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error)
}

// RegisterUserServiceServer registers srv on s.
func RegisterUserServiceServer(s grpc.ServiceRegistrar, srv UserServiceServer) {
	s.RegisterService(&UserServiceDesc, srv)
}

// unaryHandler adapts a typed method to grpc.MethodHandler.
func unaryHandler[Req any, PReq interface{ *Req }](fullMethod string, call func(UserServiceServer, context.Context, PReq) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := PReq(new(Req))
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(UserServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(UserServiceServer), ctx, req.(PReq))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// UserServiceDesc is the grpc.ServiceDesc for store.v1.UserService.
var UserServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*UserServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Login",
			Handler:    unaryHandler(LoginMethod, UserServiceServer.Login),
		},
		{
			MethodName: "CreateUser",
			Handler:    unaryHandler(CreateUserMethod, UserServiceServer.CreateUser),
		},
		{
			MethodName: "GetUser",
			Handler:    unaryHandler(GetUserMethod, UserServiceServer.GetUser),
		},
		{
			MethodName: "UpdateUser",
			Handler:    unaryHandler(UpdateUserMethod, UserServiceServer.UpdateUser),
		},
		{
			MethodName: "DeleteUser",
			Handler:    unaryHandler(DeleteUserMethod, UserServiceServer.DeleteUser),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "store/v1/user.proto",
}

// UserServiceClient calls store.v1.UserService.
type UserServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewUserServiceClient creates a client over cc.
func NewUserServiceClient(cc grpc.ClientConnInterface) *UserServiceClient {
	return &UserServiceClient{cc: cc}
}

func (c *UserServiceClient) invoke(ctx context.Context, method string, in any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *UserServiceClient) Login(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, LoginMethod, in, opts...)
}

func (c *UserServiceClient) CreateUser(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, CreateUserMethod, in, opts...)
}

func (c *UserServiceClient) GetUser(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GetUserMethod, in, opts...)
}

func (c *UserServiceClient) UpdateUser(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, UpdateUserMethod, in, opts...)
}

func (c *UserServiceClient) DeleteUser(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, DeleteUserMethod, in, opts...)
}
