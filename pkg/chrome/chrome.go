// Package chrome opens the projdesk UI in a dedicated Chrome window.
package chrome

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/chromedp/chromedp"
)

var ErrURLMustBeSet = errors.New("chrome: URL must be set")

type Config struct {
	// URL is loaded once the browser has started.
	URL string
	// NoSandbox disables Chrome's sandbox, which is needed when running as root.
	NoSandbox bool
}

var defaultExecAllocatorOptions = []chromedp.ExecAllocatorOption{
	chromedp.NoFirstRun,
	chromedp.NoDefaultBrowserCheck,
	chromedp.Flag("disable-background-networking", true),
	chromedp.Flag("enable-features", "NetworkService,NetworkServiceInProcess"),
	chromedp.Flag("disable-background-timer-throttling", true),
	chromedp.Flag("disable-backgrounding-occluded-windows", true),
	chromedp.Flag("disable-breakpad", true),
	chromedp.Flag("disable-client-side-phishing-detection", true),
	chromedp.Flag("disable-default-apps", true),
	chromedp.Flag("disable-dev-shm-usage", true),
	chromedp.Flag("disable-extensions", true),
	chromedp.Flag("disable-features", "site-per-process,Translate,BlinkGenPropertyTrees"),
	chromedp.Flag("disable-hang-monitor", true),
	chromedp.Flag("disable-ipc-flooding-protection", true),
	chromedp.Flag("disable-popup-blocking", true),
	chromedp.Flag("disable-prompt-on-repost", true),
	chromedp.Flag("disable-renderer-backgrounding", true),
	chromedp.Flag("disable-sync", true),
	chromedp.Flag("force-color-profile", "srgb"),
	chromedp.Flag("metrics-recording-only", true),
	chromedp.Flag("safebrowsing-disable-auto-update", true),
	chromedp.Flag("password-store", "basic"),
	chromedp.Flag("use-mock-keychain", true),
}

// AllocatorOptions returns the Chrome flags used to launch the browser window.
func AllocatorOptions(cfg Config) []chromedp.ExecAllocatorOption {
	opts := make([]chromedp.ExecAllocatorOption, len(defaultExecAllocatorOptions), len(defaultExecAllocatorOptions)+2)
	copy(opts, defaultExecAllocatorOptions)

	opts = append(opts, chromedp.Flag("app", cfg.URL))

	if cfg.NoSandbox || os.Getenv("PROJDESK_CHROME_NO_SANDBOX") != "" {
		opts = append(opts, chromedp.NoSandbox)
	}

	return opts
}

// Open starts Chrome and navigates to cfg.URL. The browser is closed when ctx
// is canceled; the returned cancel func closes it early.
func Open(ctx context.Context, cfg Config) (context.CancelFunc, error) {
	if cfg.URL == "" {
		return nil, ErrURLMustBeSet
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, AllocatorOptions(cfg)...)
	taskCtx, taskCancel := chromedp.NewContext(allocCtx)

	cancel := func() {
		taskCancel()
		allocCancel()
	}

	if err := chromedp.Run(taskCtx, chromedp.Navigate(cfg.URL)); err != nil {
		cancel()
		return nil, fmt.Errorf("chrome: failed to open %v: %w", cfg.URL, err)
	}

	return cancel, nil
}
