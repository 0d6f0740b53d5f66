package ipcserver

import (
	"errors"
	"log/slog"

	"golang.org/x/sys/unix"

	"github.com/wlblur/wlblurd/internal/gpu"
	"github.com/wlblur/wlblurd/internal/params"
	"github.com/wlblur/wlblurd/internal/wire"
)

var errBrokenPipe = errors.New("ipcserver: broken pipe")

// dispatchOne implements C10's dispatcher for a single readable
// client: receive exactly one request record plus at most one
// descriptor, validate the protocol version, look the client up, and
// dispatch by operation code.
func (s *Server) dispatchOne(c *client) error {
	buf := make([]byte, wire.RequestSize)
	n, inputFD, err := wire.RecvRecord(c.fd, buf)
	if err != nil {
		return err
	}
	if n == 0 {
		// Peer closed the connection cleanly.
		return errBrokenPipe
	}
	if n != wire.RequestSize {
		if inputFD >= 0 {
			unix.Close(inputFD)
		}
		s.log.Debug("short request", slog.Int("got", n), slog.Int("want", wire.RequestSize))
		return nil
	}

	req, err := wire.DecodeRequest(buf)
	if err != nil {
		if inputFD >= 0 {
			unix.Close(inputFD)
		}
		return nil
	}

	if req.Version != wire.ProtocolVersion {
		if inputFD >= 0 {
			unix.Close(inputFD)
		}
		s.log.Debug("rejecting request with bad protocol version", slog.Uint64("version", uint64(req.Version)))
		return nil
	}

	resp, outputFD := s.handleRequest(c, req, inputFD)

	if inputFD >= 0 {
		unix.Close(inputFD)
	}
	sendErr := wire.SendRecord(c.fd, resp.Encode(), outputFD)
	if outputFD >= 0 {
		unix.Close(outputFD)
	}
	if sendErr != nil {
		if errors.Is(sendErr, unix.EPIPE) {
			return errBrokenPipe
		}
		return sendErr
	}
	return nil
}

// handleRequest dispatches req by operation code and returns the
// response record plus an output descriptor (-1 if none).
func (s *Server) handleRequest(c *client, req wire.Request, inputFD int) (wire.Response, int) {
	switch req.Op {
	case wire.OpCreateNode:
		return s.handleCreateNode(c, req), -1

	case wire.OpDestroyNode:
		return s.handleDestroyNode(c, req), -1

	case wire.OpRenderBlur:
		return s.handleRenderBlur(c, req, inputFD)

	default:
		return wire.Response{Status: wire.StatusInvalidParams}, -1
	}
}

func (s *Server) handleCreateNode(c *client, req wire.Request) wire.Response {
	if err := params.Validate(req.Params); err != nil {
		return wire.Response{Status: wire.StatusInvalidParams}
	}
	id, err := s.state.Nodes.Create(c.clientID, req.Width, req.Height, req.Params)
	if err != nil {
		return wire.Response{Status: wire.StatusOutOfMemory}
	}
	return wire.Response{Status: wire.StatusSuccess, NodeID: id}
}

func (s *Server) handleDestroyNode(c *client, req wire.Request) wire.Response {
	n, err := s.state.Nodes.Lookup(req.NodeID)
	if err != nil || n.ClientID != c.clientID {
		return wire.Response{Status: wire.StatusInvalidNode}
	}
	s.state.Nodes.Destroy(req.NodeID)
	return wire.Response{Status: wire.StatusSuccess}
}

func (s *Server) handleRenderBlur(c *client, req wire.Request, inputFD int) (wire.Response, int) {
	if inputFD < 0 {
		return wire.Response{Status: wire.StatusInvalidParams}, -1
	}

	n, err := s.state.Nodes.Lookup(req.NodeID)
	if err != nil || n.ClientID != c.clientID {
		return wire.Response{Status: wire.StatusInvalidNode}, -1
	}

	// spec §4.10: a request that flags a preset resolves it through the
	// daemon's preset registry, falling back to the in-record params if
	// the named preset isn't registered (the in-record params are always
	// passed as the override, so the configured and hardcoded defaults
	// are never reached here); otherwise the in-record params are used
	// directly.
	renderParams := req.Params
	if req.UsePreset && req.PresetName != "" {
		override := req.Params
		renderParams = s.state.ResolveParams(req.PresetName, &override)
	}

	input := gpu.BufferAttribs{
		Width:     req.Width,
		Height:    req.Height,
		Format:    req.Format,
		Modifier:  req.Modifier,
		NumPlanes: 1,
	}
	input.Planes[0] = gpu.PlaneAttribs{FD: inputFD, Offset: req.Offset, Stride: req.Stride}

	out, err := s.state.Blur.ApplyBlur(input, renderParams)
	if err != nil {
		s.log.Debug("render failed", slog.Uint64("node_id", uint64(req.NodeID)), slog.Any("error", err))
		return wire.Response{Status: gpu.StatusFor(err)}, -1
	}

	n.Stats.RenderCount++

	resp := wire.Response{
		Status:   wire.StatusSuccess,
		Width:    out.Width,
		Height:   out.Height,
		Format:   out.Format,
		Modifier: out.Modifier,
	}
	outputFD := -1
	if out.NumPlanes > 0 {
		resp.Stride = out.Planes[0].Stride
		resp.Offset = out.Planes[0].Offset
		outputFD = out.Planes[0].FD
	}
	return resp, outputFD
}
