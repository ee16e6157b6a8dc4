// Package transport is the persistent-connection gateway. It owns raw
// sockets and HTTP routes, translating client frames into calls on the
// messaging service and pushing routed events back to sessions. The core
// never sees a socket, only sinks and session ids.
package transport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"messenger-core/domain"
	errs "messenger-core/errors"
	"messenger-core/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origin enforcement belongs to the deployment in front
	},
}

type Gateway struct {
	log                  *slog.Logger
	service              services.IMessagingService
	validate             *validator.Validate
	connectionBufferSize int
}

func NewGateway(log *slog.Logger, service services.IMessagingService, connectionBufferSize int) *Gateway {
	return &Gateway{
		log:                  log,
		service:              service,
		validate:             validator.New(),
		connectionBufferSize: connectionBufferSize,
	}
}

func (g *Gateway) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/ws", g.handleWS)
	r.Post("/chats", g.handleCreateChat)
	r.Get("/chats/{chatID}/messages", g.handleHistory)
	return r
}

// handleWS upgrades the connection and starts the read and write pumps.
// The session is automatically joined to its user topic so personal
// notifications need no explicit join; chat topics are joined on request.
// Authentication is the concern of the layer in front, the gateway trusts
// the user id it is handed.
func (g *Gateway) handleWS(w http.ResponseWriter, r *http.Request) {
	user, err := strconv.ParseInt(r.URL.Query().Get("user"), 10, 64)
	if err != nil || user <= 0 {
		http.Error(w, "missing or invalid user", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warn("Websocket upgrade failed", "error", err)
		return
	}

	session := newSession(g, conn, domain.UserID(user))
	g.service.JoinTopic(domain.UserTopic(session.user), session.id, session.sink)
	g.log.Info("Session connected", "session", string(session.id), "user", user)

	// The request context dies when this handler returns; the pumps live
	// with the connection instead and stop when the peer goes away.
	go session.writePump(context.Background())
	go session.readPump(context.Background())
}

// authorizeJoin prevents a session from joining topics it has no claim to:
// foreign user topics are always rejected, chat topics require membership.
func (g *Gateway) authorizeJoin(ctx context.Context, user domain.UserID, topic domain.Topic) error {
	raw := string(topic)
	if strings.HasPrefix(raw, "user:") {
		if topic != domain.UserTopic(user) {
			return errs.ErrNotAMember
		}
		return nil
	}
	chatID, _ := strconv.ParseInt(strings.TrimPrefix(raw, "chat:"), 10, 64)
	members, err := g.service.ChatMembers(ctx, domain.ChatID(chatID))
	if err != nil {
		return err
	}
	if !lo.Contains(members, user) {
		return errs.ErrNotAMember
	}
	return nil
}

func (g *Gateway) handleCreateChat(w http.ResponseWriter, r *http.Request) {
	var req createChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed body", http.StatusBadRequest)
		return
	}
	if err := g.validate.Struct(req); err != nil {
		http.Error(w, "a chat needs at least two members", http.StatusBadRequest)
		return
	}
	chat, err := g.service.CreateChat(r.Context(),
		lo.Map(req.Members, func(id int64, _ int) domain.UserID { return domain.UserID(id) }))
	if err != nil {
		http.Error(w, "chat creation failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":      int64(chat.ID),
		"members": req.Members,
	})
}

func (g *Gateway) handleHistory(w http.ResponseWriter, r *http.Request) {
	chatID, err := strconv.ParseInt(chi.URLParam(r, "chatID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid chat id", http.StatusBadRequest)
		return
	}
	var cursor *string
	if c := r.URL.Query().Get("cursor"); c != "" {
		cursor = &c
	}
	entries, next, err := g.service.History(r.Context(), domain.ChatID(chatID), cursor)
	if err != nil {
		http.Error(w, "history lookup failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"messages": lo.Map(entries, func(e services.HistoryEntry, _ int) wireMessage { return toWireHistoryEntry(e) }),
		"cursor":   next,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
