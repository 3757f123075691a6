package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"wish-wall/infrastructure/grpc/client"
	"wish-wall/layout"
	"wish-wall/projection"

	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

type Config struct {
	WallAddr string `envconfig:"WALL_ADDR" default:"localhost:50051"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`
	// Columns is the terminal width the tile percentages apply to.
	Columns  int    `envconfig:"DISPLAY_COLUMNS" default:"80"`
	Colours  bool   `envconfig:"DISPLAY_COLOURS" default:"true"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Display error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	_ = godotenv.Load()
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
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

	log.Info("Displaying the wall (Ctrl+C to quit)", "wall", config.WallAddr)
	renderer := renderer{columns: config.Columns, colours: config.Colours}
	err = wallClient.WatchWall(ctx, func(view projection.WallView) error {
		fmt.Print("\033[H\033[2J")
		fmt.Print(renderer.render(view))
		return nil
	})
	if err != nil && ctx.Err() == nil {
		return exitRuntime, err
	}
	return exitOK, nil
}

type renderer struct {
	columns int
	colours bool
}

// render draws every tile in order, newest first, sized and indented from its layout profile.
func (r renderer) render(view projection.WallView) string {
	var b strings.Builder
	if len(view.Tiles) == 0 {
		b.WriteString(view.Placeholder)
		b.WriteString("\n")
		return b.String()
	}
	for _, tile := range view.Tiles {
		b.WriteString(r.tile(tile))
	}
	return b.String()
}

func (r renderer) tile(tile projection.Tile) string {
	profile := tile.Layout
	width := max(r.columns*profile.Percent/100, 12)
	indent := strings.Repeat(" ", profile.OffsetPx/8)

	text := tile.Text
	if profile.Font == layout.Headline {
		text = strings.ToUpper(text)
	}
	line := fmt.Sprintf(" %s %s", badgeGlyph(profile.Badge), text)
	if pad := width - len([]rune(line)); pad > 0 {
		line += strings.Repeat(" ", pad)
	}
	if r.colours {
		style := color.NewRGBStyle(color.HEX(profile.Theme.Text), color.HEX(profile.Theme.Background))
		line = style.Sprint(line)
	}
	return indent + line + "\n\n"
}

func badgeGlyph(b layout.Badge) string {
	if b == layout.Gift {
		return "🎁"
	}
	return "❄"
}
