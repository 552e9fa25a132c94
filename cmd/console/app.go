package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"relayconsole/config"
	"relayconsole/internal/authstore"
	"relayconsole/internal/console"
	"relayconsole/internal/httpclient"
	"relayconsole/internal/resource"

	"go.uber.org/zap"
	"golang.org/x/term"
)

type app struct {
	storage   authstore.Storage
	store     *authstore.Store
	navigator *console.Navigator
	log       *zap.Logger
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	storage, err := authstore.OpenStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open token storage: %w", err)
	}

	store, err := authstore.New(ctx, storage)
	if err != nil {
		storage.Close()
		return nil, fmt.Errorf("load token: %w", err)
	}

	client := httpclient.New(httpclient.Config{
		BaseURL:  cfg.API.BaseURL,
		BasePath: cfg.API.BasePath,
		Timeout:  cfg.API.Timeout(),
	}, store, log)

	prefix := cfg.API.DeadLetterPrefix
	api := resource.New(client, resource.Options{DeadLetterPrefix: &prefix})

	nav := console.NewNavigator(store, log)
	console.NewPages(store, api, os.Stdout, promptPassword, log).Register(nav)

	return &app{storage: storage, store: store, navigator: nav, log: log}, nil
}

func (a *app) Close() error {
	return a.storage.Close()
}

func (a *app) navigate(ctx context.Context, path string, args []string) error {
	m, err := a.navigator.Navigate(ctx, path, args)
	if err != nil {
		return err
	}
	if m.Path != console.Normalize(path) {
		a.log.Debug("Landed on a different page", zap.String("requested", path), zap.String("page", m.Page))
	}
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if err := a.store.Logout(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	fmt.Println("Logged out.")
	return nil
}

func (a *app) status() error {
	if !a.store.Authenticated() {
		fmt.Println("Not logged in.")
		return nil
	}

	claims, err := a.store.Claims()
	if err != nil {
		// token 不是 JWT 时仍视为已登录，由后端判断是否有效
		fmt.Println("Logged in.")
		a.log.Debug("Token is not a readable JWT", zap.Error(err))
		return nil
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		fmt.Println("Logged in (no expiry).")
		return nil
	}
	if exp.Before(time.Now()) {
		fmt.Printf("Logged in, but the token expired at %s.\n", exp.Local().Format(time.RFC3339))
		return nil
	}
	fmt.Printf("Logged in until %s.\n", exp.Local().Format(time.RFC3339))
	return nil
}

// promptPassword 终端下不回显，管道输入时读取一行
func promptPassword(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, label)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
