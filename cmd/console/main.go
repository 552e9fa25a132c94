package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"relayconsole/config"
	"relayconsole/internal/httpclient"
	pkgconfig "relayconsole/pkg/config"
	"relayconsole/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	fs := flag.NewFlagSet("relayconsole", flag.ExitOnError)
	fs.Usage = printUsage
	configDir := fs.String("config-dir", pkgconfig.GetEnv("RELAY_CONFIG_DIR", "config"), "directory holding base.yaml and <env>.yaml")
	env := fs.String("env", pkgconfig.GetConfigEnv(), "config environment (dev, prod, ...)")
	verbose := fs.Bool("v", false, "debug logging")
	fs.Parse(os.Args[1:])

	args := fs.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load(*env, *configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.Development)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, args[0], args[1:]); err != nil {
		reportError(err)
		stop()
		log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger, cmd string, args []string) error {
	switch cmd {
	case "proxy":
		return runProxy(ctx, cfg, args, log)
	case "help", "-h", "--help":
		printUsage()
		return nil
	}

	path, ok := pagePaths[cmd]
	if !ok && cmd != "logout" && cmd != "status" {
		printUsage()
		return fmt.Errorf("unknown command: %s", cmd)
	}

	app, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	switch cmd {
	case "logout":
		return app.logout(ctx)
	case "status":
		return app.status()
	default:
		return app.navigate(ctx, path, args)
	}
}

// 命令与控制台页面的对应关系
var pagePaths = map[string]string{
	"login":     "/login",
	"dashboard": "/",
	"mapping":   "/mapping",
	"dead":      "/dead",
	"qq":        "/qq",
}

func reportError(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)

	var apiErr *httpclient.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Unauthorized():
			fmt.Fprintln(os.Stderr, "The backend rejected the saved token. Run `relayconsole logout` and log in again.")
		case apiErr.Kind == httpclient.KindNetwork || apiErr.Kind == httpclient.KindTimeout:
			fmt.Fprintln(os.Stderr, "Check api.base_url or RELAY_API_BASE_URL.")
		}
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: relayconsole [-config-dir dir] [-env name] [-v] <command> [options]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  login                         Log in with the admin password")
	fmt.Fprintln(os.Stderr, "  logout                        Forget the saved token")
	fmt.Fprintln(os.Stderr, "  status                        Show whether a token is saved and when it expires")
	fmt.Fprintln(os.Stderr, "  dashboard                     Show relay queue and delivery counters")
	fmt.Fprintln(os.Stderr, "  mapping list|create|update|delete")
	fmt.Fprintln(os.Stderr, "                                Manage Telegram to QQ channel mappings")
	fmt.Fprintln(os.Stderr, "  dead list|retry <id>...|retry -all")
	fmt.Fprintln(os.Stderr, "                                Inspect and requeue dead letters")
	fmt.Fprintln(os.Stderr, "  qq guilds|channels <guild>|pick <guild>")
	fmt.Fprintln(os.Stderr, "                                Browse QQ guilds and channels")
	fmt.Fprintln(os.Stderr, "  proxy                         Run the development proxy")
}
