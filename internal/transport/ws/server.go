package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"warden.ai/internal/protocol"
	"warden.ai/internal/sim/session"
)

// AccountResolver maps a handshake to a bound account. The account directory
// belongs to the host; nil resolver leaves every session anonymous.
type AccountResolver func(name, token string) *session.Account

// DropHandler consumes inbound item drop events.
type DropHandler interface {
	HandleItemDrop(sess *session.Session, payload []byte)
}

type Server struct {
	reg      *session.Registry
	accounts AccountResolver
	drops    DropHandler
	slots    int
	log      *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(reg *session.Registry, accounts AccountResolver, slots int, logger *log.Logger) *Server {
	return &Server{
		reg:      reg,
		accounts: accounts,
		slots:    slots,
		log:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// SetDropHandler wires the recorder after construction; the recorder needs
// the server as its message sink, so the two are built in sequence.
func (s *Server) SetDropHandler(h DropHandler) { s.drops = h }

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sess := s.handshake(conn, r.RemoteAddr)
		if sess == nil {
			return
		}
		defer s.reg.Remove(sess.Index)

		done := make(chan struct{})
		defer close(done)

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-done:
					return
				case b, ok := <-sess.Out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil {
				continue
			}
			if base.Type != protocol.TypeItemDrop {
				continue
			}
			var drop protocol.ItemDropMsg
			if err := json.Unmarshal(msg, &drop); err != nil {
				continue
			}
			if drop.ProtocolVersion != protocol.Version {
				continue
			}
			if s.drops != nil {
				s.drops.HandleItemDrop(sess, drop.Payload)
			}
		}
	}
}

func (s *Server) handshake(conn *websocket.Conn, remoteAddr string) *session.Session {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		if s.log != nil {
			s.log.Printf("ws: %s: expected HELLO", remoteAddr)
		}
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return nil
	}
	if hello.ProtocolVersion != protocol.Version || hello.PlayerName == "" {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad HELLO"), time.Now().Add(time.Second))
		return nil
	}

	sess := s.reg.Add(remoteAddr, s.slots)
	sess.Out = make(chan []byte, 256)

	if s.accounts != nil {
		token := ""
		if hello.Auth != nil {
			token = hello.Auth.Token
		}
		sess.BindAccount(s.accounts(hello.PlayerName, token))
	}

	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		PlayerIndex:     sess.Index,
		SessionID:       uuid.NewString(),
	}
	b, _ := json.Marshal(welcome)
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		s.reg.Remove(sess.Index)
		return nil
	}
	return sess
}

// send pushes a frame to one session, dropping it if the client is behind.
func (s *Server) send(sess *session.Session, v any) {
	if sess == nil || sess.Out == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case sess.Out <- b:
	default:
	}
}

func (s *Server) sendAll(v any) {
	for _, sess := range s.reg.Active() {
		s.send(sess, v)
	}
}

// SendSlotUpdate broadcasts one inventory slot of one player to all clients.
func (s *Server) SendSlotUpdate(playerIndex, slot int, sl session.InventorySlot) {
	s.sendAll(protocol.SlotUpdateMsg{
		Type:        protocol.TypeSlotUpdate,
		PlayerIndex: playerIndex,
		Slot:        slot,
		ItemID:      sl.ItemID,
		Stack:       sl.Stack,
		Prefix:      sl.Prefix,
	})
}

func (s *Server) SendInfo(sess *session.Session, text string) {
	s.send(sess, protocol.ChatMsg{Type: protocol.TypeChat, Severity: protocol.SeverityInfo, Text: text})
}

func (s *Server) SendWarning(sess *session.Session, text string) {
	s.send(sess, protocol.ChatMsg{Type: protocol.TypeChat, Severity: protocol.SeverityWarning, Text: text})
}

func (s *Server) BroadcastAll(text string, color [3]uint8) {
	s.sendAll(protocol.BroadcastMsg{Type: protocol.TypeBroadcast, Text: text, Color: color})
}
