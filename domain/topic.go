package domain

import (
	"fmt"
	"strconv"
	"strings"

	errs "messenger-core/errors"
)

// Topic is a routing key grouping sessions interested in the same stream
// of events. Two families exist: "chat:{id}" for chat-room broadcasts and
// "user:{id}" for personal notifications such as read receipts.
type Topic string

// SessionID identifies one live, addressable connection instance.
// A user may hold several sessions concurrently (multi-device).
type SessionID string

func ChatTopic(id ChatID) Topic {
	return Topic(fmt.Sprintf("chat:%d", id))
}

func UserTopic(id UserID) Topic {
	return Topic(fmt.Sprintf("user:%d", id))
}

// ParseTopic validates a raw topic key coming from a client.
// Only the two known families with a numeric suffix are accepted;
// rejections wrap ErrInvalidTopic so callers can match them.
func ParseTopic(raw string) (Topic, error) {
	kind, id, found := strings.Cut(raw, ":")
	if !found {
		return "", fmt.Errorf("%w %q: missing separator", errs.ErrInvalidTopic, raw)
	}
	if kind != "chat" && kind != "user" {
		return "", fmt.Errorf("%w %q: unknown family %q", errs.ErrInvalidTopic, raw, kind)
	}
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		return "", fmt.Errorf("%w %q: non-numeric id", errs.ErrInvalidTopic, raw)
	}
	return Topic(raw), nil
}
