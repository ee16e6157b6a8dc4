package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"messenger-core/domain"
	errs "messenger-core/errors"
	"messenger-core/runtime"
	"messenger-core/sink"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 64 * 1024
)

// Session is the middleman between one websocket connection and the core.
// It owns the raw socket; the core only ever sees the session's sink and id.
type Session struct {
	id      domain.SessionID
	user    domain.UserID
	conn    *websocket.Conn
	sink    *sink.SessionSink
	replies chan outboundFrame
	gateway *Gateway
	log     *slog.Logger
}

func newSession(gateway *Gateway, conn *websocket.Conn, user domain.UserID) *Session {
	return &Session{
		id:      domain.SessionID(uuid.NewString()),
		user:    user,
		conn:    conn,
		sink:    sink.NewSessionSink(gateway.connectionBufferSize),
		replies: make(chan outboundFrame, gateway.connectionBufferSize),
		gateway: gateway,
		log:     gateway.log,
	}
}

// readPump pumps frames from the websocket connection into the service.
func (s *Session) readPump(ctx context.Context) {
	defer func() {
		s.gateway.service.SessionClosed(s.id)
		s.conn.Close()
	}()
	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error { s.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("Websocket read error", "session", string(s.id), "error", err)
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			s.reply(outboundFrame{Type: "error", Data: wireError{Reason: "malformed frame"}})
			continue
		}
		s.handleFrame(ctx, frame)
	}
}

// writePump is the sole writer of the connection. It drains both routed
// events and direct replies, keeping the peer alive with pings.
func (s *Session) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-s.sink.Events():
			frame, ok := toOutbound(evt)
			if !ok {
				continue
			}
			if !s.write(frame) {
				return
			}
		case frame := <-s.replies:
			if !s.write(frame) {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Session) write(frame outboundFrame) bool {
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(frame); err != nil {
		s.log.Warn("Websocket write error", "session", string(s.id), "error", err)
		return false
	}
	return true
}

// handleFrame runs the explicit validation pipeline, decode then validate
// then dispatch, and answers every action with an ack or error frame.
func (s *Session) handleFrame(ctx context.Context, frame inboundFrame) {
	if err := s.gateway.validate.Struct(frame); err != nil {
		s.reply(outboundFrame{Type: "error", Data: wireError{Action: frame.Action, Reason: "missing action"}})
		return
	}

	switch frame.Action {
	case "send_message":
		var payload sendMessagePayload
		if !s.decode(frame, &payload) {
			return
		}
		view, err := s.gateway.service.SendMessage(ctx, runtime.SendCommand{
			Sender:     s.user,
			Chat:       domain.ChatID(payload.ChatID),
			Content:    payload.Content,
			Attachment: payload.Attachment,
		})
		if err != nil {
			s.replyError(frame.Action, err)
			return
		}
		s.reply(outboundFrame{Type: "ack", Data: toWireMessage(view)})

	case "advance_status":
		var payload advanceStatusPayload
		if !s.decode(frame, &payload) {
			return
		}
		messageID := uuid.MustParse(payload.MessageID)
		_, err := s.gateway.service.AdvanceStatus(ctx, messageID, s.user, domain.Status(payload.Status))
		if err != nil {
			s.replyError(frame.Action, err)
			return
		}
		s.reply(outboundFrame{Type: "ack"})

	case "advance_batch":
		var payload advanceBatchPayload
		if !s.decode(frame, &payload) {
			return
		}
		only := lo.Map(payload.MessageIDs, func(id string, _ int) uuid.UUID { return uuid.MustParse(id) })
		if len(only) == 0 {
			only = nil
		}
		result, err := s.gateway.service.AdvanceBatch(ctx,
			domain.ChatID(payload.ChatID), s.user, domain.Status(payload.Status), only)
		if err != nil {
			s.replyError(frame.Action, err)
			return
		}
		s.reply(outboundFrame{Type: "ack", Data: wireBatchResult{
			Moved:  lo.Map(result.Moved, func(id uuid.UUID, _ int) string { return id.String() }),
			Failed: lo.Map(result.Failed, func(f domain.BatchFailure, _ int) string { return f.MessageID.String() }),
		}})

	case "join":
		var payload topicPayload
		if !s.decode(frame, &payload) {
			return
		}
		topic, err := domain.ParseTopic(payload.Topic)
		if err != nil {
			s.replyError(frame.Action, err)
			return
		}
		if err := s.gateway.authorizeJoin(ctx, s.user, topic); err != nil {
			s.replyError(frame.Action, err)
			return
		}
		s.gateway.service.JoinTopic(topic, s.id, s.sink)
		s.reply(outboundFrame{Type: "ack"})

	case "leave":
		var payload topicPayload
		if !s.decode(frame, &payload) {
			return
		}
		topic, err := domain.ParseTopic(payload.Topic)
		if err != nil {
			s.replyError(frame.Action, err)
			return
		}
		s.gateway.service.LeaveTopic(topic, s.id)
		s.reply(outboundFrame{Type: "ack"})

	default:
		s.reply(outboundFrame{Type: "error", Data: wireError{Action: frame.Action, Reason: "unknown action"}})
	}
}

func (s *Session) decode(frame inboundFrame, payload any) bool {
	if err := json.Unmarshal(frame.Data, payload); err != nil {
		s.reply(outboundFrame{Type: "error", Data: wireError{Action: frame.Action, Reason: "malformed payload"}})
		return false
	}
	if err := s.gateway.validate.Struct(payload); err != nil {
		s.reply(outboundFrame{Type: "error", Data: wireError{Action: frame.Action, Reason: fmt.Sprintf("invalid payload: %v", err)}})
		return false
	}
	return true
}

func (s *Session) replyError(action string, err error) {
	reason := "internal error"
	switch {
	case errors.Is(err, errs.ErrNotAMember),
		errors.Is(err, errs.ErrUnknownChat),
		errors.Is(err, errs.ErrUnknownMessage),
		errors.Is(err, errs.ErrInvalidStatus),
		errors.Is(err, errs.ErrInvalidTopic):
		reason = err.Error()
	default:
		var persistence *errs.PersistenceError
		if errors.As(err, &persistence) {
			reason = "temporary storage failure, retry"
		}
	}
	s.reply(outboundFrame{Type: "error", Data: wireError{Action: action, Reason: reason}})
}

func (s *Session) reply(frame outboundFrame) {
	select {
	case s.replies <- frame:
	default:
		s.log.Warn("Reply channel full, dropping frame", "session", string(s.id))
	}
}
