package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"wish-wall/infrastructure/grpc/client"
	"wish-wall/projection"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const usage = `usage: moderator <command>

  watch            follow the moderation queue
  approve <id>     put a wish on the wall
  reject <id>      hide a wish
  clear --yes      delete every wish, whatever its status
  submit <text>    send a wish as a guest would`

type Config struct {
	WallAddr string        `envconfig:"WALL_ADDR" default:"localhost:50051"`
	LogLevel string        `envconfig:"LOG_LEVEL" default:"INFO"`
	Timeout  time.Duration `envconfig:"MODERATOR_TIMEOUT" default:"10s"`
}

func main() {
	code, err := run(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Moderator error: %v\n", err)
	}
	os.Exit(code)
}

func run(args []string) (int, error) {
	_ = godotenv.Load()
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if len(args) == 0 {
		return exitConfig, errors.New(usage)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := grpc.NewClient(config.WallAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to wall at %s: %w", config.WallAddr, err)
	}
	defer func() {
		log.Debug("Closing connection...")
		_ = conn.Close()
	}()

	wallClient := client.NewWallClient(conn)
	if err = wallClient.Connect(ctx); err != nil {
		return exitRuntime, fmt.Errorf("session creation failed: %w", err)
	}

	command, rest := args[0], args[1:]
	if command == "watch" {
		log.Info("Watching the moderation queue (Ctrl+C to quit)", "wall", config.WallAddr)
		err = wallClient.WatchQueue(ctx, func(view projection.QueueView) error {
			fmt.Print("\033[H\033[2J")
			renderQueue(os.Stdout, view, time.Now())
			return nil
		})
		if err != nil && ctx.Err() == nil {
			return exitRuntime, err
		}
		return exitOK, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()
	if err = execute(callCtx, wallClient, command, rest, os.Stdout); err != nil {
		return exitRuntime, err
	}
	return exitOK, nil
}

type commander interface {
	Submit(ctx context.Context, text string) (string, error)
	Approve(ctx context.Context, id string) error
	Reject(ctx context.Context, id string) error
	ClearAll(ctx context.Context, confirmed bool) (int, error)
}

// execute runs a one-shot command and prints its outcome.
func execute(ctx context.Context, c commander, command string, args []string, out io.Writer) error {
	switch command {
	case "approve", "reject":
		if len(args) != 1 {
			return fmt.Errorf("%s needs exactly one id", command)
		}
		decide := c.Approve
		if command == "reject" {
			decide = c.Reject
		}
		if err := decide(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %s\n", command, args[0])
		return nil
	case "clear":
		flags := flag.NewFlagSet("clear", flag.ContinueOnError)
		flags.SetOutput(out)
		yes := flags.Bool("yes", false, "confirm deleting every wish")
		if err := flags.Parse(args); err != nil {
			return err
		}
		count, err := c.ClearAll(ctx, *yes)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "cleared %d wishes\n", count)
		return nil
	case "submit":
		id, err := c.Submit(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "submitted %s\n", id)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
}

// renderQueue prints the pending wishes, oldest first, with their hints.
func renderQueue(out io.Writer, view projection.QueueView, now time.Time) {
	if len(view.Items) == 0 {
		fmt.Fprintln(out, view.Placeholder)
		return
	}
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"#", "ID", "Age", "Lang", "Flagged", "Wish"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for i, item := range view.Items {
		age := now.Sub(item.CreatedTime()).Truncate(time.Second)
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			item.ID,
			age.String(),
			item.Lang,
			strings.Join(item.Flagged, ","),
			item.Text,
		})
	}
	table.Render()
}
