package wsbridge

import (
	"context"
	"errors"
	"fmt"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"io"
	"log"
	"net"
	"net/http"
	"sync"
	"time"
)

// Path is where the daemon accepts websocket sessions.
const Path = "/gbcart"

// Conn carries a session's byte stream inside binary websocket messages.
// Message boundaries carry no meaning; every Write becomes one message.
type Conn struct {
	conn  net.Conn
	name  string
	state ws.State

	r       *wsutil.Reader
	control wsutil.FrameHandlerFunc
	inFrame bool

	wl sync.Mutex
}

func newConn(conn net.Conn, src io.Reader, state ws.State, name string) *Conn {
	c := &Conn{
		conn:  conn,
		name:  name,
		state: state,
	}
	c.control = wsutil.ControlFrameHandler(lockedWriter{c}, state)
	c.r = &wsutil.Reader{
		Source:         src,
		State:          state,
		OnIntermediate: c.control,
	}
	return c
}

// Dial connects to a daemon's websocket listener.
func Dial(ctx context.Context, urlstr string) (*Conn, error) {
	log.Printf("wsbridge: dial %s\n", urlstr)
	conn, br, _, err := ws.Dial(ctx, urlstr)
	if err != nil {
		return nil, fmt.Errorf("wsbridge: dial: %w", err)
	}

	var src io.Reader = conn
	if br != nil {
		src = br
	}
	return newConn(conn, src, ws.StateClientSide, urlstr), nil
}

func (c *Conn) Name() string { return c.name }

func (c *Conn) Read(p []byte) (int, error) {
	for {
		if c.inFrame {
			n, err := c.r.Read(p)
			if errors.Is(err, io.EOF) {
				c.inFrame = false
				if n > 0 {
					return n, nil
				}
				continue
			}
			return n, err
		}

		hdr, err := c.r.NextFrame()
		if err != nil {
			return 0, err
		}

		if hdr.OpCode.IsControl() {
			if err = c.control(hdr, c.r); err != nil {
				var closed wsutil.ClosedError
				if errors.As(err, &closed) {
					return 0, io.EOF
				}
				return 0, err
			}
			continue
		}

		if hdr.OpCode != ws.OpBinary {
			if err = c.r.Discard(); err != nil {
				return 0, err
			}
			continue
		}

		c.inFrame = true
	}
}

func (c *Conn) Write(p []byte) (int, error) {
	c.wl.Lock()
	defer c.wl.Unlock()

	if err := wsutil.WriteMessage(c.conn, c.state, ws.OpBinary, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// lockedWriter serializes control frame replies with data messages.
type lockedWriter struct{ c *Conn }

func (w lockedWriter) Write(p []byte) (int, error) {
	w.c.wl.Lock()
	defer w.c.wl.Unlock()
	return w.c.conn.Write(p)
}

func (c *Conn) Close() error {
	c.wl.Lock()
	body := ws.NewCloseFrameBody(ws.StatusNormalClosure, "")
	_ = wsutil.WriteMessage(c.conn, c.state, ws.OpClose, body)
	c.wl.Unlock()

	return c.conn.Close()
}

// Server accepts websocket sessions and hands each to a session handler on
// its own goroutine. Sessions still open when the server stops are closed.
type Server struct {
	listenAddr string
	handle     func(c *Conn)
	mux        *http.ServeMux

	lock  sync.Mutex
	conns map[*Conn]struct{}
}

func NewServer(listenAddr string, handle func(c *Conn)) *Server {
	s := &Server{
		listenAddr: listenAddr,
		handle:     handle,
		mux:        http.NewServeMux(),
		conns:      make(map[*Conn]struct{}),
	}

	s.mux.Handle(Path, http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		conn, brw, _, err := ws.UpgradeHTTP(req, rw)
		if err != nil {
			log.Printf("wsbridge: %s: upgrade: %v\n", req.RemoteAddr, err)
			return
		}

		var src io.Reader = conn
		if brw != nil {
			src = brw.Reader
		}

		c := newConn(conn, src, ws.StateServerSide, req.RemoteAddr)
		s.track(c, true)
		log.Printf("wsbridge: %s: connected\n", c.name)
		go func() {
			defer func() {
				s.track(c, false)
				_ = c.Close()
				log.Printf("wsbridge: %s: disconnected\n", c.name)
			}()
			s.handle(c)
		}()
	}))

	return s
}

func (s *Server) track(c *Conn, open bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if open {
		s.conns[c] = struct{}{}
	} else {
		delete(s.conns, c)
	}
}

// Sessions is the number of open sessions.
func (s *Server) Sessions() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.conns)
}

// CloseSessions closes every open session, which ends their handlers at the
// next read or write.
func (s *Server) CloseSessions() {
	s.lock.Lock()
	conns := make([]*Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.lock.Unlock()

	for _, c := range conns {
		log.Printf("wsbridge: %s: closing\n", c.name)
		_ = c.Close()
	}
}

func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe runs until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("wsbridge: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts sessions on ln until ctx is cancelled, then closes the
// listener and every open session.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	log.Printf("wsbridge: listening on ws://%s%s\n", ln.Addr(), Path)
	err := srv.Serve(ln)
	s.CloseSessions()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
