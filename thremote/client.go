package thremote

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"

	"github.com/cenkalti/backoff/v4"
	"github.com/gordian-engine/treehash"
	"github.com/quic-go/quic-go"
)

// Client maintains a QUIC connection to a compression server
// and opens FIFO links over it.
type Client struct {
	log *slog.Logger

	conn *quic.Conn
}

// Dial connects to the compression server at addr.
// Transient dial failures are retried with exponential backoff
// until the backoff gives up or ctx is canceled.
func Dial(
	ctx context.Context,
	log *slog.Logger,
	tr *quic.Transport,
	addr net.Addr,
	tlsConf *tls.Config,
	quicConf *quic.Config,
) (*Client, error) {
	var conn *quic.Conn

	op := func() error {
		var err error
		conn, err = tr.Dial(ctx, addr, tlsConf, quicConf)
		if err != nil {
			log.Debug("Dial attempt failed", "addr", addr, "err", err)
			return err
		}
		return nil
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4),
		ctx,
	)
	if err := backoff.Retry(op, bo); err != nil {
		return nil, fmt.Errorf("failed to dial compression server: %w", err)
	}

	return &Client{
		log: log,

		conn: conn,
	}, nil
}

// OpenLink opens a new compression link on the client's connection.
// The returned link is not safe for concurrent use;
// open one link per concurrent hash call.
func (c *Client) OpenLink(ctx context.Context) (treehash.CompressLink, error) {
	stream, err := c.conn.OpenStreamSync(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open compression stream: %w", err)
	}

	return &streamLink{stream: stream}, nil
}

// Close closes the underlying connection,
// terminating any links still open on it.
func (c *Client) Close() error {
	return c.conn.CloseWithError(0, "client closing")
}

// streamLink adapts one QUIC stream
// to the [treehash.CompressLink] FIFO contract.
type streamLink struct {
	stream *quic.Stream
}

func (l *streamLink) Send(req treehash.CompressRequest) error {
	var frame [requestSize]byte
	marshalRequest(&frame, req)

	if _, err := l.stream.Write(frame[:]); err != nil {
		return fmt.Errorf("failed to write compression request: %w", err)
	}
	return nil
}

func (l *streamLink) Recv() ([8]uint32, error) {
	var frame [responseSize]byte
	if _, err := io.ReadFull(l.stream, frame[:]); err != nil {
		return [8]uint32{}, fmt.Errorf("failed to read compression response: %w", err)
	}
	return parseResponse(&frame), nil
}

// Close closes the link's send side.
// The server drains any remaining requests and then ends the stream.
func (l *streamLink) Close() error {
	return l.stream.Close()
}
