package server_test

import (
	"context"
	"log/slog"
	"net"
	"testing"
	"time"
	"wish-wall/auth"
	"wish-wall/domain/wall"
	"wish-wall/infrastructure/grpc/client"
	"wish-wall/infrastructure/grpc/server"
	"wish-wall/infrastructure/storage"
	"wish-wall/projection"
	"wish-wall/runtime"
	"wish-wall/runtime/workers"
	"wish-wall/services"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

// startServer serves the wall service over an in-memory listener.
func startServer(t *testing.T) *grpc.ClientConn {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLogger(nil))
	require.NoError(t, err)
	store := storage.NewBadgerStore(db, log)
	collection := wall.Collection("grpc-test")
	registry := runtime.NewRegistry()
	issuer := auth.NewIssuer("grpc_test_secret_long_enough", time.Hour)

	moderation := services.NewModerationService(store, collection, registry, nil, log, 50*time.Millisecond)
	broadcast := services.NewBroadcastService(store, collection, registry, log, 50*time.Millisecond)
	submission := services.NewSubmissionService(store, collection, log)

	ctx, cancel := context.WithCancel(context.Background())
	sup := workers.NewSupervisor(log, 20*time.Millisecond)
	sup.Add(moderation, broadcast)
	supDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supDone)
	}()

	interceptor := auth.NewInterceptor(issuer, server.WallService_CreateSession_FullMethodName)
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(interceptor.Unary),
		grpc.ChainStreamInterceptor(interceptor.Stream),
	)
	server.RegisterWallServiceServer(s, server.NewWallServer(log, issuer, submission, moderation, broadcast))

	listener := bufconn.Listen(1 << 20)
	go func() { _ = s.Serve(listener) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		s.Stop()
		cancel()
		<-supDone
		_ = store.Close()
		_ = db.Close()
	})
	return conn
}

func TestWallServer_Requires_Session(t *testing.T) {
	req := require.New(t)
	c := client.NewWallClient(startServer(t))

	// Given no session
	_, err := c.Submit(context.Background(), "Peace on Earth")

	// Then the call is refused
	req.Equal(codes.Unauthenticated, status.Code(err))
}

func TestWallServer_Submit_Validation(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	c := client.NewWallClient(startServer(t))
	req.NoError(c.Connect(ctx))

	_, err := c.Submit(ctx, "   ")
	req.Equal(codes.InvalidArgument, status.Code(err))

	_, err = c.ClearAll(ctx, false)
	req.Equal(codes.FailedPrecondition, status.Code(err))

	err = c.Approve(ctx, "ghost")
	req.Equal(codes.NotFound, status.Code(err))
}

func TestWallServer_Submit_Approve_Watch(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c := client.NewWallClient(startServer(t))
	req.NoError(c.Connect(ctx))

	queueViews := make(chan projection.QueueView, 16)
	wallViews := make(chan projection.WallView, 16)
	go func() {
		_ = c.WatchQueue(ctx, func(v projection.QueueView) error { queueViews <- v; return nil })
	}()
	go func() {
		_ = c.WatchWall(ctx, func(v projection.WallView) error { wallViews <- v; return nil })
	}()

	// Given a submitted wish
	id, err := c.Submit(ctx, "Peace on Earth")
	req.NoError(err)
	waitQueue(t, queueViews, func(v projection.QueueView) bool {
		return len(v.Items) == 1 && v.Items[0].ID == id && v.Items[0].Text == "Peace on Earth"
	})

	// When approved
	req.NoError(c.Approve(ctx, id))

	// Then the wall shows it with its layout
	tile := waitWall(t, wallViews, func(v projection.WallView) bool { return len(v.Tiles) == 1 }).Tiles[0]
	req.Equal(id, tile.ID)
	req.Equal(wall.Approved, tile.Status)
	req.NotEmpty(tile.Layout.Theme.Name)

	// And the queue empties
	waitQueue(t, queueViews, func(v projection.QueueView) bool {
		return len(v.Items) == 0 && v.Placeholder == projection.QueuePlaceholder
	})

	// When everything is cleared
	count, err := c.ClearAll(ctx, true)
	req.NoError(err)
	req.Equal(1, count)
	waitWall(t, wallViews, func(v projection.WallView) bool {
		return len(v.Tiles) == 0 && v.Placeholder == projection.WallPlaceholder
	})
}

func waitQueue(t *testing.T, views <-chan projection.QueueView, cond func(projection.QueueView) bool) projection.QueueView {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case v := <-views:
			if cond(v) {
				return v
			}
		case <-deadline:
			require.FailNow(t, "expected queue view never arrived")
		}
	}
}

func waitWall(t *testing.T, views <-chan projection.WallView, cond func(projection.WallView) bool) projection.WallView {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case v := <-views:
			if cond(v) {
				return v
			}
		case <-deadline:
			require.FailNow(t, "expected wall view never arrived")
		}
	}
}
