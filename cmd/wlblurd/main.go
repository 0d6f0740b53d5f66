// Command wlblurd is the compositor-agnostic background-blur daemon:
// it owns the GPU context, accepts client connections on a Unix
// socket, and serves CREATE_NODE/DESTROY_NODE/RENDER_BLUR requests.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/wlblur/wlblurd/internal/config"
	"github.com/wlblur/wlblurd/internal/daemon"
	"github.com/wlblur/wlblurd/internal/ipcserver"
)

// version is the string --version prints. It is a constant, so it
// cannot be overridden at build time with -ldflags "-X"; this
// repository has no release tooling of its own.
const version = "dev"

func main() {
	configPath := flag.String("config", "", "path to daemon configuration file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("wlblurd", version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := run(log, *configPath); err != nil {
		log.Error("fatal", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(log *slog.Logger, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	log = log.With(slog.String("socket", cfg.SocketPath))

	state, err := daemon.New(log, configPath, cfg)
	if err != nil {
		return fmt.Errorf("initializing gpu context: %w", err)
	}
	defer state.Close()

	server, err := ipcserver.New(state)
	if err != nil {
		return fmt.Errorf("starting ipc server: %w", err)
	}
	defer server.Close()

	installSignalHandlers(state)

	var stopping atomic.Bool
	go watchTermination(&stopping)

	log.Info("wlblurd started", slog.String("version", version))
	return server.Run(stopping.Load)
}

// installSignalHandlers wires SIGUSR1 into state's reload-pending flag
// (spec §9: the only state a signal context may touch) and ignores
// SIGPIPE -- Go never delivers it to a process for writes to a closed
// socket in the first place, but the write still surfaces as an
// EPIPE error, which ipcserver already treats as a client teardown
// rather than a fatal error.
func installSignalHandlers(state *daemon.State) {
	reload := make(chan os.Signal, 1)
	signal.Notify(reload, unix.SIGUSR1)
	go func() {
		for range reload {
			state.ReloadPending.Store(true)
		}
	}()
}

// watchTermination blocks until SIGTERM or SIGINT, then flips stopping
// so the event loop exits on its next iteration.
func watchTermination(stopping *atomic.Bool) {
	term := make(chan os.Signal, 1)
	signal.Notify(term, unix.SIGTERM, unix.SIGINT)
	<-term
	stopping.Store(true)
}
