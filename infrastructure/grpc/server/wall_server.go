package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"wish-wall/auth"
	"wish-wall/contract"
	"wish-wall/errors"
	"wish-wall/services"
	"wish-wall/sink"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type watchable interface {
	Watch(ctx context.Context, viewerID string, sink contract.ViewSink)
	Unwatch(viewerID string)
}

type WallServer struct {
	UnimplementedWallServiceServer
	issuer     *auth.Issuer
	submission services.ISubmissionService
	moderation services.IModerationService
	broadcast  services.IBroadcastService
	log        *slog.Logger
}

func NewWallServer(
	log *slog.Logger,
	issuer *auth.Issuer,
	submission services.ISubmissionService,
	moderation services.IModerationService,
	broadcast services.IBroadcastService,
) *WallServer {
	return &WallServer{
		issuer:     issuer,
		submission: submission,
		moderation: moderation,
		broadcast:  broadcast,
		log:        log,
	}
}

func (s *WallServer) CreateSession(_ context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	token, sessionID, err := s.issuer.Issue()
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	s.log.Debug("Session created", "session_id", sessionID)
	return wrapperspb.String(token), nil
}

func (s *WallServer) Submit(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	id, err := s.submission.Submit(ctx, req.GetValue())
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return wrapperspb.String(id), nil
}

func (s *WallServer) Approve(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := s.moderation.Approve(ctx, req.GetValue()); err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *WallServer) Reject(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := s.moderation.Reject(ctx, req.GetValue()); err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *WallServer) ClearAll(ctx context.Context, req *wrapperspb.BoolValue) (*wrapperspb.Int64Value, error) {
	count, err := s.moderation.ClearAll(ctx, req.GetValue())
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return wrapperspb.Int64(int64(count)), nil
}

func (s *WallServer) WatchQueue(_ *emptypb.Empty, stream WallService_WatchServer) error {
	return s.watch(s.moderation, stream)
}

func (s *WallServer) WatchWall(_ *emptypb.Empty, stream WallService_WatchServer) error {
	return s.watch(s.broadcast, stream)
}

// watch registers a dedicated sink for the connection and streams every
// view until the client leaves. Cleanup is deferred so the registry never
// keeps a dead viewer.
func (s *WallServer) watch(feed watchable, stream WallService_WatchServer) error {
	ctx := stream.Context()
	viewerID := fmt.Sprintf("%s/%s", auth.SessionID(ctx), uuid.NewString())
	viewSink := sink.NewViewSink()
	feed.Watch(ctx, viewerID, viewSink)
	defer feed.Unwatch(viewerID)

	for {
		select {
		case <-ctx.Done():
			s.log.Debug("Viewer disconnected", "viewer_id", viewerID)
			return nil
		case view := <-viewSink.Views():
			msg, err := ToStruct(view)
			if err != nil {
				return errors.MapToGRPCError(err)
			}
			if err = stream.Send(msg); err != nil {
				s.log.Warn("Failed to push view", "viewer_id", viewerID, "error", err)
				return err
			}
		}
	}
}

// ToStruct converts a view into a protobuf Struct through its JSON form.
func ToStruct(view contract.View) (*structpb.Struct, error) {
	b, err := json.Marshal(view)
	if err != nil {
		return nil, err
	}
	msg := &structpb.Struct{}
	if err = protojson.Unmarshal(b, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// FromStruct decodes a streamed view into its typed form.
func FromStruct(msg *structpb.Struct, view any) error {
	b, err := protojson.Marshal(msg)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, view)
}
