package main

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/phroun/clay"
)

// telnet bytes the line reader understands
const (
	telnetIAC  = 255
	telnetDont = 254
	telnetWill = 251
	telnetSB   = 250
	telnetGA   = 249
	telnetSE   = 240
	telnetEOR  = 239
)

const dialTimeout = 15 * time.Second

// serverLine is one line, or one prompt, received from a world
type serverLine struct {
	text   string
	prompt bool
}

// lineSplitter turns a telnet byte stream into lines. Option negotiation is
// dropped; GA and EOR end a prompt.
type lineSplitter struct {
	line  []byte
	state int // 0 data, 1 after IAC, 2 option byte, 3 subnegotiation, 4 IAC in subnegotiation
}

func (s *lineSplitter) Feed(data []byte) []serverLine {
	var out []serverLine
	for _, b := range data {
		switch s.state {
		case 1:
			s.state = 0
			switch {
			case b == telnetIAC:
				s.line = append(s.line, b)
			case b >= telnetWill && b <= telnetDont:
				s.state = 2
			case b == telnetSB:
				s.state = 3
			case b == telnetGA || b == telnetEOR:
				if len(s.line) > 0 {
					out = append(out, serverLine{text: string(s.line), prompt: true})
					s.line = nil
				}
			}
		case 2:
			s.state = 0
		case 3:
			if b == telnetIAC {
				s.state = 4
			}
		case 4:
			s.state = 3
			if b == telnetSE {
				s.state = 0
			}
		default:
			switch b {
			case telnetIAC:
				s.state = 1
			case '\r':
			case '\n':
				out = append(out, serverLine{text: string(s.line)})
				s.line = nil
			default:
				s.line = append(s.line, b)
			}
		}
	}
	return out
}

// Partial returns text received since the last line end
func (s *lineSplitter) Partial() string {
	return string(s.line)
}

// conn is the connection to one world
type conn struct {
	world string
	nc    net.Conn

	mu sync.Mutex
	w  *bufio.Writer
}

// dial connects to a world, over TLS when it is marked SSL
func dial(ctx context.Context, info clay.WorldInfo) (*conn, error) {
	addr := net.JoinHostPort(info.Host, strconv.Itoa(info.Port))
	dialer := &net.Dialer{Timeout: dialTimeout}
	var (
		nc  net.Conn
		err error
	)
	if info.SSL {
		td := &tls.Dialer{NetDialer: dialer, Config: &tls.Config{ServerName: info.Host}}
		nc, err = td.DialContext(ctx, "tcp", addr)
	} else {
		nc, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to %s (%s): %w", info.Name, addr, err)
	}
	return &conn{world: info.Name, nc: nc, w: bufio.NewWriter(nc)}, nil
}

// Send writes one line, doubling IAC bytes
func (c *conn) Send(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	line = strings.ReplaceAll(line, "\xff", "\xff\xff")
	if _, err := c.w.WriteString(line + "\r\n"); err != nil {
		return err
	}
	return c.w.Flush()
}

func (c *conn) Close() error {
	return c.nc.Close()
}

// readLoop sends received lines to events until the connection ends
func (c *conn) readLoop(events chan<- event) {
	var splitter lineSplitter
	buf := make([]byte, 4096)
	for {
		n, err := c.nc.Read(buf)
		if n > 0 {
			for _, l := range splitter.Feed(buf[:n]) {
				events <- lineEvent{world: c.world, line: l}
			}
		}
		if err != nil {
			if partial := splitter.Partial(); partial != "" {
				events <- lineEvent{world: c.world, line: serverLine{text: partial}}
			}
			events <- closedEvent{world: c.world, err: err}
			return
		}
	}
}
