package scan

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"strings"
	"time"
)

// clamd closes INSTREAM connections that exceed StreamMaxLength (25MB by
// default), so files are sent in chunks well below that.
const chunkSize = 1 << 20

// ClamAV talks to a clamd daemon over TCP or a unix socket.
type ClamAV struct {
	network string
	address string
	timeout time.Duration
}

var _ Scanner = (*ClamAV)(nil)

// NewClamAV accepts "host:port" or an absolute unix socket path.
func NewClamAV(address string, timeout time.Duration) *ClamAV {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	network := "tcp"
	if strings.HasPrefix(address, "/") {
		network = "unix"
	}
	return &ClamAV{network: network, address: address, timeout: timeout}
}

func (c *ClamAV) Name() string { return "clamav" }

func (c *ClamAV) dial(ctx context.Context) (net.Conn, error) {
	d := net.Dialer{Timeout: c.timeout}
	conn, err := d.DialContext(ctx, c.network, c.address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)
	return conn, nil
}

// Ping sends zPING and expects PONG.
func (c *ClamAV) Ping(ctx context.Context) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("zPING\x00")); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	reply, err := readReply(conn)
	if err != nil {
		return err
	}
	if reply != "PONG" {
		return fmt.Errorf("%w: unexpected reply %q", ErrUnavailable, reply)
	}
	return nil
}

// Scan streams data with zINSTREAM.
func (c *ClamAV) Scan(ctx context.Context, filename string, data []byte) (Verdict, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return Verdict{}, err
	}
	defer conn.Close()

	w := bufio.NewWriter(conn)
	if _, err := w.WriteString("zINSTREAM\x00"); err != nil {
		return Verdict{}, fmt.Errorf("scan %s: %w", filename, err)
	}
	var size [4]byte
	for off := 0; off < len(data); off += chunkSize {
		end := min(off+chunkSize, len(data))
		binary.BigEndian.PutUint32(size[:], uint32(end-off))
		if _, err := w.Write(size[:]); err != nil {
			return Verdict{}, fmt.Errorf("scan %s: %w", filename, err)
		}
		if _, err := w.Write(data[off:end]); err != nil {
			return Verdict{}, fmt.Errorf("scan %s: %w", filename, err)
		}
	}
	// Zero-length chunk terminates the stream
	binary.BigEndian.PutUint32(size[:], 0)
	if _, err := w.Write(size[:]); err != nil {
		return Verdict{}, fmt.Errorf("scan %s: %w", filename, err)
	}
	if err := w.Flush(); err != nil {
		return Verdict{}, fmt.Errorf("scan %s: %w", filename, err)
	}

	reply, err := readReply(conn)
	if err != nil {
		return Verdict{}, fmt.Errorf("scan %s: %w", filename, err)
	}
	return parseReply(reply)
}

func readReply(conn net.Conn) (string, error) {
	reply, err := bufio.NewReader(conn).ReadString(0)
	if err != nil && reply == "" {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return strings.TrimSpace(strings.TrimRight(reply, "\x00")), nil
}

// parseReply understands "stream: OK", "stream: <name> FOUND" and
// "<message> ERROR".
func parseReply(reply string) (Verdict, error) {
	body := reply
	if i := strings.Index(reply, ":"); i >= 0 {
		body = strings.TrimSpace(reply[i+1:])
	}
	switch {
	case body == "OK":
		return Verdict{}, nil
	case strings.HasSuffix(body, " FOUND"):
		return Verdict{Infected: true, Threat: strings.TrimSuffix(body, " FOUND")}, nil
	case strings.HasSuffix(body, " ERROR"):
		return Verdict{}, fmt.Errorf("clamd: %s", strings.TrimSuffix(body, " ERROR"))
	default:
		return Verdict{}, fmt.Errorf("clamd: unexpected reply %q", reply)
	}
}
