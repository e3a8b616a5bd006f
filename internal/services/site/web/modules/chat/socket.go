package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/websocket"

	apperrors "github.com/louisbranch/agencysite/internal/platform/errors"
	"github.com/louisbranch/agencysite/internal/platform/timeouts"
	chatdomain "github.com/louisbranch/agencysite/internal/services/site/domain/chat"
	"github.com/louisbranch/agencysite/internal/services/site/domain/validate"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/requestmeta"
)

const (
	frameConversation = "conversation"
	frameSend         = "chat.send"
	frameRead         = "chat.read"
	frameError        = "error"

	maxDecodeErrorsPerConn = 5
)

var errCrossOrigin = errors.New("websocket origin does not match host")

// wsFrame is the JSON frame exchanged on the chat socket. The server pushes
// conversation frames; clients may send chat.send and chat.read frames.
type wsFrame struct {
	Type         string                   `json:"type"`
	Body         string                   `json:"body,omitempty"`
	Conversation *chatdomain.Conversation `json:"conversation,omitempty"`
	Error        string                   `json:"error,omitempty"`
}

type wsPeer struct {
	mu      sync.Mutex
	conn    *websocket.Conn
	encoder *json.Encoder
}

func newWSPeer(conn *websocket.Conn) *wsPeer {
	return &wsPeer{conn: conn, encoder: json.NewEncoder(conn)}
}

func (p *wsPeer) writeFrame(frame wsFrame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.conn.SetWriteDeadline(time.Now().Add(timeouts.WebSocketWrite)); err != nil {
		return err
	}
	return p.encoder.Encode(frame)
}

// userSocket streams the signed-in user's own conversation.
func (h handlers) userSocket() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := h.deps.User(r)
		if !ok {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		h.serveSocket(w, r, user.Email, chatdomain.SenderUser)
	})
}

// supportSocket streams one conversation to the support console.
func (h handlers) supportSocket() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.serveSocket(w, r, r.PathValue("id"), chatdomain.SenderSupport)
	})
}

// serveSocket upgrades r. conversationID is normalized to the stored key so
// change notifications match.
func (h handlers) serveSocket(w http.ResponseWriter, r *http.Request, conversationID string, side chatdomain.Sender) {
	conversationID = validate.NormalizeEmail(conversationID)
	server := websocket.Server{
		Handshake: func(_ *websocket.Config, req *http.Request) error {
			if !requestmeta.HasSameOriginProof(req, h.deps.SchemePolicy) {
				return errCrossOrigin
			}
			return nil
		},
		Handler: func(conn *websocket.Conn) {
			h.handleWSConn(conn, conversationID, side)
		},
	}
	server.ServeHTTP(w, r)
}

func (h handlers) handleWSConn(conn *websocket.Conn, conversationID string, side chatdomain.Sender) {
	defer func() {
		_ = conn.Close()
	}()
	ctx, cancel := context.WithCancel(conn.Request().Context())
	defer cancel()

	changes, err := h.deps.Chat.Watch(ctx)
	if err != nil {
		h.logger().Warn("watch chat conversations", zap.Error(err))
		return
	}
	peer := newWSPeer(conn)
	if err := h.push(ctx, peer, conversationID); err != nil {
		return
	}

	go func() {
		defer cancel()
		h.readFrames(ctx, conn, peer, conversationID, side)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			if h.deps.Chat.ConversationOf(change) != conversationID {
				continue
			}
			if err := h.push(ctx, peer, conversationID); err != nil {
				return
			}
		}
	}
}

// push writes the current state of the conversation. A missing conversation
// is sent empty so a deleted thread clears on screen.
func (h handlers) push(ctx context.Context, peer *wsPeer, conversationID string) error {
	conversation, err := h.deps.Chat.Conversation(ctx, conversationID)
	if apperrors.IsKind(err, apperrors.KindNotFound) {
		conversation, err = chatdomain.Conversation{ID: conversationID}, nil
	}
	if err != nil {
		return err
	}
	return peer.writeFrame(wsFrame{Type: frameConversation, Conversation: &conversation})
}

func (h handlers) readFrames(ctx context.Context, conn *websocket.Conn, peer *wsPeer, conversationID string, side chatdomain.Sender) {
	decoder := json.NewDecoder(conn)
	decodeErrors := 0
	for {
		var frame wsFrame
		if err := decoder.Decode(&frame); err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return
			}
			decodeErrors++
			_ = peer.writeFrame(wsFrame{Type: frameError, Error: "invalid frame payload"})
			if decodeErrors >= maxDecodeErrorsPerConn {
				return
			}
			continue
		}
		decodeErrors = 0

		var err error
		switch frame.Type {
		case frameSend:
			_, err = h.deps.Chat.SendMessage(ctx, conversationID, side, frame.Body)
		case frameRead:
			_, err = h.deps.Chat.MarkAsRead(ctx, conversationID, side)
			if apperrors.IsKind(err, apperrors.KindNotFound) {
				err = nil
			}
		default:
			err = apperrors.E(apperrors.KindInvalidInput, "unsupported frame type")
		}
		if err != nil {
			if writeErr := peer.writeFrame(wsFrame{Type: frameError, Error: err.Error()}); writeErr != nil {
				return
			}
		}
	}
}

func (h handlers) logger() *zap.Logger {
	if h.deps.Logger == nil {
		return zap.NewNop()
	}
	return h.deps.Logger
}
