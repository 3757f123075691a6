package client

import (
	"context"
	"errors"
	"io"
	"wish-wall/infrastructure/grpc/server"
	"wish-wall/projection"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// WallClient talks to the wall service for the moderator and display terminals.
type WallClient struct {
	conn  grpc.ClientConnInterface
	token string
}

func NewWallClient(conn grpc.ClientConnInterface) *WallClient {
	return &WallClient{conn: conn}
}

// Connect opens an anonymous session; every later call carries its token.
func (c *WallClient) Connect(ctx context.Context) error {
	out := new(wrapperspb.StringValue)
	if err := c.conn.Invoke(ctx, server.WallService_CreateSession_FullMethodName, &emptypb.Empty{}, out); err != nil {
		return err
	}
	c.token = out.GetValue()
	return nil
}

func (c *WallClient) Submit(ctx context.Context, text string) (string, error) {
	out := new(wrapperspb.StringValue)
	if err := c.conn.Invoke(c.withToken(ctx), server.WallService_Submit_FullMethodName, wrapperspb.String(text), out); err != nil {
		return "", err
	}
	return out.GetValue(), nil
}

func (c *WallClient) Approve(ctx context.Context, id string) error {
	return c.conn.Invoke(c.withToken(ctx), server.WallService_Approve_FullMethodName, wrapperspb.String(id), new(emptypb.Empty))
}

func (c *WallClient) Reject(ctx context.Context, id string) error {
	return c.conn.Invoke(c.withToken(ctx), server.WallService_Reject_FullMethodName, wrapperspb.String(id), new(emptypb.Empty))
}

func (c *WallClient) ClearAll(ctx context.Context, confirmed bool) (int, error) {
	out := new(wrapperspb.Int64Value)
	if err := c.conn.Invoke(c.withToken(ctx), server.WallService_ClearAll_FullMethodName, wrapperspb.Bool(confirmed), out); err != nil {
		return 0, err
	}
	return int(out.GetValue()), nil
}

// WatchQueue calls onView for every queue view until ctx ends, the stream
// closes or onView returns an error.
func (c *WallClient) WatchQueue(ctx context.Context, onView func(projection.QueueView) error) error {
	return c.watch(ctx, 0, server.WallService_WatchQueue_FullMethodName, func(msg *structpb.Struct) error {
		var view projection.QueueView
		if err := server.FromStruct(msg, &view); err != nil {
			return err
		}
		return onView(view)
	})
}

func (c *WallClient) WatchWall(ctx context.Context, onView func(projection.WallView) error) error {
	return c.watch(ctx, 1, server.WallService_WatchWall_FullMethodName, func(msg *structpb.Struct) error {
		var view projection.WallView
		if err := server.FromStruct(msg, &view); err != nil {
			return err
		}
		return onView(view)
	})
}

func (c *WallClient) watch(ctx context.Context, streamIdx int, method string, handle func(*structpb.Struct) error) error {
	desc := &server.WallService_ServiceDesc.Streams[streamIdx]
	stream, err := c.conn.NewStream(c.withToken(ctx), desc, method)
	if err != nil {
		return err
	}
	if err = stream.SendMsg(&emptypb.Empty{}); err != nil {
		return err
	}
	if err = stream.CloseSend(); err != nil {
		return err
	}
	for {
		msg := new(structpb.Struct)
		if err = stream.RecvMsg(msg); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if err = handle(msg); err != nil {
			return err
		}
	}
}

func (c *WallClient) withToken(ctx context.Context) context.Context {
	if c.token == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.token)
}
