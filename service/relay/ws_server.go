package relay

import (
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/GitSid-glitch/cobuild/logger"
	"github.com/GitSid-glitch/cobuild/tools/ids"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	pingInterval   = 25 * time.Second
	writeWait      = 10 * time.Second
	firstPingDelay = 5 * time.Second // avoid a write deadline right after the handshake
)

// HandleWS upgrades the request and runs the connection's read loop.
// One goroutine reads (events handled to completion, in order, per
// connection), one goroutine writes. Cleanup is deferred so it also
// runs on abnormal close.
func (s *Server) HandleWS(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("[ws] upgrade error: %v", err)
		return
	}

	client := NewClient(ids.GenerateString(), ws, s.opts.SendQueueSize)
	s.reg.Track(client)
	logger.Infof("[ws] connected conn=%s remote=%s", client.ConnID, ws.RemoteAddr())

	writerDone := make(chan struct{})
	go s.writeLoop(client, writerDone)

	defer func() {
		s.DropClient(client)
		<-writerDone // writer owns the close handshake
		logger.Infof("[ws] closed conn=%s user=%s", client.ConnID, client.User())
	}()

	for {
		mt, data, rerr := ws.ReadMessage()
		if rerr != nil {
			if websocket.IsCloseError(rerr,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Infof("[ws] peer closed conn=%s err=%v", client.ConnID, rerr)
			} else if ne, ok := rerr.(net.Error); ok && ne.Timeout() {
				logger.Infof("[ws] read timeout conn=%s err=%v", client.ConnID, rerr)
			} else {
				logger.Infof("[ws] read err conn=%s err=%v", client.ConnID, rerr)
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		f, perr := ParseFrame(data)
		if perr != nil {
			sample := data
			if len(sample) > 256 {
				sample = sample[:256]
			}
			logger.Infof("[ws] parse frame err conn=%s err=%v sample=%q", client.ConnID, perr, sample)
			continue
		}

		if derr := s.disp.Dispatch(&Context{S: s}, f, client); derr != nil {
			// surfaced to this sender only; the loop keeps going
			logger.Infof("[ws] handler err conn=%s type=%s err=%v", client.ConnID, f.Type, derr)
			client.Enqueue(BuildError(derr))
		}
	}
}

// writeLoop drains Send, keeps transport-level pings flowing, and
// renews the presence mirror while the connection lives.
func (s *Server) writeLoop(c *Client, done chan<- struct{}) {
	ticker := time.NewTicker(pingInterval)
	first := time.NewTimer(firstPingDelay)
	defer func() {
		ticker.Stop()
		first.Stop()
		_ = c.WS.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.WS.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = c.WS.Close()
		close(done)
	}()

	for {
		select {
		case <-c.Done():
			return
		case payload := <-c.Send:
			_ = c.WS.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WS.WriteMessage(websocket.TextMessage, payload); err != nil {
				logger.Infof("[ws] write err conn=%s user=%s err=%v", c.ConnID, c.User(), err)
				return
			}
		case <-first.C:
			if err := s.writePing(c); err != nil {
				return
			}
		case <-ticker.C:
			if err := s.writePing(c); err != nil {
				return
			}
			s.touchPresence(c.User())
		}
	}
}

func (s *Server) writePing(c *Client) error {
	_ = c.WS.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.WS.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeWait)); err != nil {
		logger.Infof("[ws] ping err conn=%s user=%s err=%v", c.ConnID, c.User(), err)
		return err
	}
	return nil
}
