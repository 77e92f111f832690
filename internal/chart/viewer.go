package chart

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/chromedp/chromedp"

	"sessioncli/internal/config"
	"sessioncli/internal/infrastructure"
)

// Viewer displays a rendered chart.
type Viewer interface {
	Show(ctx context.Context, png []byte) error
}

// NewViewer returns the viewer selected by cfg.Viewer.
func NewViewer(cfg config.ChartConfig, logger *slog.Logger) (Viewer, error) {
	logger = infrastructure.WithComponent(logger, "chart")

	switch cfg.Viewer {
	case config.ViewerSystem, "":
		return &SystemViewer{Open: openWithSystem, logger: logger}, nil
	case config.ViewerBrowser:
		return &BrowserViewer{DisplayFor: cfg.DisplayFor, Headless: cfg.Headless, logger: logger}, nil
	case config.ViewerNone:
		return NoneViewer{}, nil
	default:
		return nil, fmt.Errorf("unknown chart viewer %q", cfg.Viewer)
	}
}

// NoneViewer discards the chart.
type NoneViewer struct{}

// Show does nothing.
func (NoneViewer) Show(context.Context, []byte) error { return nil }

// SystemViewer writes the chart to a temp file and hands it to the desktop
// opener. The file is left for the opener to read.
type SystemViewer struct {
	Open   func(path string) error
	logger *slog.Logger
}

// Show writes the PNG and opens it.
func (v *SystemViewer) Show(ctx context.Context, png []byte) error {
	path, err := writeTempPNG(png)
	if err != nil {
		return err
	}
	if v.logger != nil {
		v.logger.InfoContext(ctx, "Opening chart", slog.String("path", path))
	}
	if err := v.Open(path); err != nil {
		return fmt.Errorf("failed to open chart viewer: %w", err)
	}
	return nil
}

// openWithSystem runs the desktop opener and waits for it. The openers hand
// the file to the viewer application and exit.
func openWithSystem(path string) error {
	return openerCommand(runtime.GOOS, path).Run()
}

func openerCommand(goos, path string) *exec.Cmd {
	switch goos {
	case "darwin":
		return exec.Command("open", path)
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		return exec.Command("xdg-open", path)
	}
}

// BrowserViewer shows the chart in a Chrome window driven by chromedp for
// DisplayFor, then closes it.
type BrowserViewer struct {
	DisplayFor time.Duration
	Headless   bool
	logger     *slog.Logger

	// run replaces the chromedp session in tests
	run func(ctx context.Context, pageURL string) error
}

// Show opens the chart in the browser and blocks until DisplayFor elapses.
func (v *BrowserViewer) Show(ctx context.Context, png []byte) error {
	path, err := writeTempPNG(png)
	if err != nil {
		return err
	}
	defer os.Remove(path)

	pageURL := (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
	if v.logger != nil {
		v.logger.InfoContext(ctx, "Showing chart in browser",
			slog.String("url", pageURL),
			slog.Duration("display_for", v.DisplayFor),
			slog.Bool("headless", v.Headless))
	}

	run := v.run
	if run == nil {
		run = v.runChrome
	}
	if err := run(ctx, pageURL); err != nil {
		return fmt.Errorf("browser viewer failed: %w", err)
	}
	return nil
}

func (v *BrowserViewer) runChrome(ctx context.Context, pageURL string) error {
	opts := chromedp.DefaultExecAllocatorOptions[:]
	opts = append(opts, chromedp.Flag("headless", v.Headless))

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	return chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitVisible("img", chromedp.ByQuery),
		chromedp.Sleep(v.DisplayFor),
	)
}

func writeTempPNG(png []byte) (string, error) {
	f, err := os.CreateTemp("", "visitors-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create chart file: %w", err)
	}
	if _, err := f.Write(png); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write chart file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to close chart file: %w", err)
	}
	return f.Name(), nil
}
