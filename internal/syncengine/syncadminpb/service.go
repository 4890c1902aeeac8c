// Package syncadminpb is the gRPC wire surface for internal/syncengine's
// Admin logic, mirroring the teacher's rpc-service split (a thin generated
// server registered against a zrpc.RpcServer, delegating to a plain logic
// struct). Request/response messages reuse the protobuf well-known types
// (structpb, wrapperspb) already pulled in transitively by go-zero's zrpc,
// rather than hand-authoring protoc-generated message types.
package syncadminpb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/google/uuid"

	"github.com/entativa/eid/internal/errs"
	"github.com/entativa/eid/internal/syncengine"
)

// Server adapts syncengine.Admin to the SyncAdmin gRPC contract.
type Server struct {
	admin *syncengine.Admin
}

func NewServer(admin *syncengine.Admin) *Server {
	return &Server{admin: admin}
}

func (s *Server) JobStatus(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	id, err := uuid.Parse(req.GetValue())
	if err != nil {
		return nil, errs.Newf(errs.InvalidArgument, "invalid job id: %v", err)
	}
	job, err := s.admin.JobStatus(ctx, id)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(map[string]any{
		"id":            job.ID.String(),
		"status":        string(job.Status),
		"attempts":      job.Attempts,
		"max_attempts":  job.MaxAttempts,
		"has_conflicts": job.HasConflicts,
	})
}

func (s *Server) Requeue(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	id, err := uuid.Parse(req.GetValue())
	if err != nil {
		return nil, errs.Newf(errs.InvalidArgument, "invalid job id: %v", err)
	}
	if err := s.admin.Requeue(ctx, id); err != nil {
		return nil, err
	}
	return &emptypb.Empty{}, nil
}

func (s *Server) Cancel(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	id, err := uuid.Parse(req.GetValue())
	if err != nil {
		return nil, errs.Newf(errs.InvalidArgument, "invalid job id: %v", err)
	}
	if err := s.admin.Cancel(ctx, id); err != nil {
		return nil, err
	}
	return &emptypb.Empty{}, nil
}

func jobStatusHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(*Server).JobStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/eid.syncadmin.SyncAdmin/JobStatus"}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(*Server).JobStatus(ctx, req.(*wrapperspb.StringValue))
	})
}

func requeueHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(*Server).Requeue(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/eid.syncadmin.SyncAdmin/Requeue"}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(*Server).Requeue(ctx, req.(*wrapperspb.StringValue))
	})
}

func cancelHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(*Server).Cancel(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/eid.syncadmin.SyncAdmin/Cancel"}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(*Server).Cancel(ctx, req.(*wrapperspb.StringValue))
	})
}

// ServiceDesc is the grpc.ServiceDesc goctl would otherwise generate from
// a syncadmin.proto; spelled out by hand here since this module runs
// without a protoc step.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: "eid.syncadmin.SyncAdmin",
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "JobStatus", Handler: jobStatusHandler},
		{MethodName: "Requeue", Handler: requeueHandler},
		{MethodName: "Cancel", Handler: cancelHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "syncadmin.proto",
}

// Register attaches Server to a *grpc.Server, the same call shape as a
// generated RegisterSyncAdminServer function.
func Register(s *grpc.Server, server *Server) {
	s.RegisterService(&ServiceDesc, server)
}
