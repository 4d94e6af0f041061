package thremote

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/gordian-engine/treehash/b3"
	"github.com/quic-go/quic-go"
)

// Server executes block compressions on behalf of remote coordinators.
//
// Each accepted bidirectional stream is serviced as an independent FIFO
// link: the server fully reads one request, compresses it, and writes
// the response before reading the next request. It never reorders and
// never reads ahead, which upholds the one-request-one-response
// contract of [treehash.CompressLink].
type Server struct {
	log *slog.Logger

	ln *quic.Listener

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer starts serving compression requests
// on connections accepted from ln.
// The caller retains ownership of ln and must close it separately.
func NewServer(ctx context.Context, log *slog.Logger, ln *quic.Listener) *Server {
	ctx, cancel := context.WithCancel(ctx)

	s := &Server{
		log: log,

		ln: ln,

		cancel: cancel,
	}

	s.wg.Add(1)
	go s.acceptConns(ctx)

	return s
}

// Close stops accepting work, closes the open connections,
// and blocks until all of the server's goroutines have stopped.
func (s *Server) Close() {
	s.cancel()
	s.wg.Wait()
}

func (s *Server) acceptConns(ctx context.Context) {
	defer s.wg.Done()

	for {
		conn, err := s.ln.Accept(ctx)
		if err != nil {
			if ctx.Err() == nil {
				s.log.Info("Failed to accept connection", "err", err)
			}
			return
		}

		s.wg.Add(1)
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn *quic.Conn) {
	defer s.wg.Done()

	// Closing the connection on cancellation unblocks
	// any stream handler parked in a read.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.CloseWithError(0, "server shutting down")
	})
	defer stop()

	for {
		stream, err := conn.AcceptStream(ctx)
		if err != nil {
			if ctx.Err() == nil {
				s.log.Debug(
					"Connection closed",
					"remote", conn.RemoteAddr(),
					"err", err,
				)
			}
			return
		}

		s.wg.Add(1)
		go s.handleStream(stream)
	}
}

// handleStream services one compression link
// until the peer closes its send side.
func (s *Server) handleStream(stream *quic.Stream) {
	defer s.wg.Done()

	var frame [requestSize]byte
	var resp [responseSize]byte

	for {
		if err := readRequest(stream, &frame); err != nil {
			if !errors.Is(err, io.EOF) {
				s.log.Debug("Compression stream ended", "err", err)
			}
			_ = stream.Close()
			return
		}

		req := parseRequest(&frame)
		cv := b3.Compress(&req.CV, &req.Block, req.Counter, b3.BlockLen, req.Flags)

		marshalResponse(&resp, cv)
		if _, err := stream.Write(resp[:]); err != nil {
			s.log.Debug("Failed to write compression response", "err", err)
			return
		}
	}
}
