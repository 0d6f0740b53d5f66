// Package ipcserver implements the connection multiplexer (spec §4.9):
// a Unix stream socket accepted and polled with epoll, dispatching
// fixed-layout requests (internal/wire) to the daemon state.
//
// The server is single-threaded by construction: Run never spawns a
// goroutine, so the GPU context, node registry, and client table it
// drives are never touched from more than one goroutine, satisfying
// spec §5's concurrency model without any locking.
package ipcserver

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sys/unix"

	"github.com/wlblur/wlblurd/internal/daemon"
)

// MaxClients is the hard cap on concurrent client connections (spec
// §4.9).
const MaxClients = 64

// ListenBacklog is the socket's listen backlog.
const ListenBacklog = 8

// pollTimeoutMillis bounds the epoll_wait call so the reload-pending
// flag is polled at roughly a 1 Hz rate even with no socket activity.
const pollTimeoutMillis = 1000

// client is a client record (spec §3): its socket, assigned identity,
// and liveness.
type client struct {
	fd       int
	clientID uint32
	active   bool
}

// Server owns the listening socket, the epoll instance, and the
// client table.
type Server struct {
	state *daemon.State
	log   *slog.Logger

	socketPath string
	listenFD   int
	epollFD    int

	clients      map[int]*client
	nextClientID uint32
}

// New creates and binds the listening socket at state's configured
// path, but does not yet start accepting connections; call Run for
// that.
func New(state *daemon.State) (*Server, error) {
	path := state.Config().SocketPath
	log := state.Log

	_ = os.Remove(path) // stale socket from a prior run; ignore absence

	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, fmt.Errorf("ipcserver: socket: %w", err)
	}

	addr := &unix.SockaddrUnix{Name: path}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("ipcserver: bind %s: %w", path, err)
	}
	if err := os.Chmod(path, 0700); err != nil {
		unix.Close(fd)
		os.Remove(path)
		return nil, fmt.Errorf("ipcserver: chmod %s: %w", path, err)
	}
	if err := unix.Listen(fd, ListenBacklog); err != nil {
		unix.Close(fd)
		os.Remove(path)
		return nil, fmt.Errorf("ipcserver: listen: %w", err)
	}

	epollFD, err := unix.EpollCreate1(0)
	if err != nil {
		unix.Close(fd)
		os.Remove(path)
		return nil, fmt.Errorf("ipcserver: epoll_create1: %w", err)
	}
	if err := unix.EpollCtl(epollFD, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}); err != nil {
		unix.Close(epollFD)
		unix.Close(fd)
		os.Remove(path)
		return nil, fmt.Errorf("ipcserver: epoll_ctl add listener: %w", err)
	}

	log.Info("listening", slog.String("socket", path))

	return &Server{
		state:      state,
		log:        log,
		socketPath: path,
		listenFD:   fd,
		epollFD:    epollFD,
		clients:    make(map[int]*client),
	}, nil
}

// Close unregisters and closes every client, closes the listening
// socket, and unlinks the filesystem entry.
func (s *Server) Close() {
	for fd := range s.clients {
		s.dropClient(fd)
	}
	unix.Close(s.epollFD)
	unix.Close(s.listenFD)
	os.Remove(s.socketPath)
}

// Run drives the epoll loop until stop reports true. It is intended to
// be called with stop backed by an atomic flag toggled by a signal
// handler (spec §4.9's termination path) together with
// state.ReloadPending for the 1 Hz reload poll.
func (s *Server) Run(stop func() bool) error {
	events := make([]unix.EpollEvent, 32)
	for !stop() {
		n, err := unix.EpollWait(s.epollFD, events, pollTimeoutMillis)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("ipcserver: epoll_wait: %w", err)
		}

		if s.state.ReloadPending.CompareAndSwap(true, false) {
			s.handleReload()
		}

		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)
			switch {
			case fd == s.listenFD:
				s.acceptOne()
			case events[i].Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0:
				s.dropClient(fd)
			case events[i].Events&unix.EPOLLIN != 0:
				s.handleClientReadable(fd)
			}
		}
	}
	return nil
}

func (s *Server) handleReload() {
	if err := s.state.Reload(s.state.ConfigPath()); err != nil {
		s.log.Warn("config reload failed, keeping previous configuration", slog.Any("error", err))
		return
	}
	s.log.Info("configuration reloaded")
}

func (s *Server) acceptOne() {
	fd, _, err := unix.Accept(s.listenFD)
	if err != nil {
		s.log.Warn("accept failed", slog.Any("error", err))
		return
	}
	if len(s.clients) >= MaxClients {
		unix.Close(fd)
		s.log.Warn("rejecting connection, at capacity", slog.Int("max_clients", MaxClients))
		return
	}
	if err := unix.EpollCtl(s.epollFD, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}); err != nil {
		unix.Close(fd)
		s.log.Warn("epoll_ctl add client failed", slog.Any("error", err))
		return
	}
	s.nextClientID++
	if s.nextClientID == 0 {
		s.nextClientID = 1
	}
	s.clients[fd] = &client{fd: fd, clientID: s.nextClientID, active: true}
	s.log.Debug("client connected", slog.Int("fd", fd), slog.Uint64("client_id", uint64(s.nextClientID)))
}

func (s *Server) dropClient(fd int) {
	c, ok := s.clients[fd]
	if !ok {
		return
	}
	unix.EpollCtl(s.epollFD, unix.EPOLL_CTL_DEL, fd, nil)
	unix.Close(fd)
	s.state.Nodes.DestroyAllFor(c.clientID)
	delete(s.clients, fd)
	s.log.Debug("client disconnected", slog.Int("fd", fd), slog.Uint64("client_id", uint64(c.clientID)))
}

func (s *Server) handleClientReadable(fd int) {
	c, ok := s.clients[fd]
	if !ok {
		return
	}
	if err := s.dispatchOne(c); err != nil {
		if errors.Is(err, errBrokenPipe) {
			s.dropClient(fd)
			return
		}
		s.log.Debug("request handling error", slog.Int("fd", fd), slog.Any("error", err))
	}
}
