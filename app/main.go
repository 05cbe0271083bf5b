package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/umputun/shade/app/server"
	"github.com/umputun/shade/app/store"
)

var opts struct {
	DB string `short:"d" long:"db" env:"SHADE_DB" default:"shade.db" description:"database URL (sqlite file or postgres://...)"`

	Server struct {
		Address     string `long:"address" env:"ADDRESS" default:":8480" description:"server listen address"`
		ReadTimeout int    `long:"read-timeout" env:"READ_TIMEOUT" default:"5" description:"read timeout in seconds"`
		BaseURL     string `long:"base-url" env:"BASE_URL" default:"" description:"base URL path for reverse proxy"`
		Title       string `long:"title" env:"TITLE" default:"Shade" description:"page title"`
	} `group:"server" namespace:"server" env-namespace:"SHADE_SERVER"`

	Cache struct {
		MaxKeys int `long:"max-keys" env:"MAX_KEYS" default:"1000" description:"max cached visitor preferences"`
	} `group:"cache" namespace:"cache" env-namespace:"SHADE_CACHE"`

	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `long:"version" description:"show version and exit"`
}

var revision = "unknown"

func main() {
	fmt.Printf("shade %s\n", revision)

	p := flags.NewParser(&opts, flags.PassDoubleDash|flags.HelpFlag)
	if _, err := p.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			p.WriteHelp(os.Stderr)
			os.Exit(2)
		}
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}

	if opts.Version {
		os.Exit(0)
	}

	setupLogs()

	defer func() {
		if x := recover(); x != nil {
			log.Printf("[WARN] run time panic:\n%v", x)
			panic(x)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	signals(cancel)

	if err := run(ctx); err != nil {
		log.Printf("[ERROR] failed: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	log.Printf("[INFO] starting shade server on %s", opts.Server.Address)

	cached, err := store.NewCached(makeStore(opts.DB), opts.Cache.MaxKeys)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	defer cached.Close()

	srv, err := server.New(cached, server.Config{
		Address:     opts.Server.Address,
		ReadTimeout: time.Duration(opts.Server.ReadTimeout) * time.Second,
		BaseURL:     opts.Server.BaseURL,
		Title:       opts.Server.Title,
		Version:     revision,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// makeStore initializes durable preference storage, degrading to the
// in-memory store when the database is unavailable. Preferences then
// survive for the process lifetime only, the theme cookie still carries
// each visitor's choice.
func makeStore(dbURL string) store.Interface {
	dbStore, err := store.NewDB(dbURL)
	if err != nil {
		log.Printf("[WARN] durable store unavailable, falling back to in-memory: %v", err)
		return store.NewMemory()
	}
	return dbStore
}

func setupLogs() io.Writer {
	log.Setup(log.Msec)
	if opts.Debug {
		log.Setup(log.Debug, log.CallerFunc, log.CallerPkg, log.CallerFile)
	}
	return os.Stdout
}

func signals(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	go func() {
		stacktrace := make([]byte, 8192)
		for sig := range sigChan {
			switch sig {
			case syscall.SIGQUIT:
				length := runtime.Stack(stacktrace, true)
				fmt.Println(string(stacktrace[:length]))
			case syscall.SIGTERM, syscall.SIGINT:
				cancel()
			}
		}
	}()
	signal.Notify(sigChan, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGINT)
}
