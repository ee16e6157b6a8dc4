// Package repositories persists messages, statuses and chats in BadgerDB.
//
// Key families share one database:
//
//	msg:{chat_id}:{timestamp_padded}:{uuid} -> message record (ordered scans)
//	msgid:{uuid}                            -> message record (by-id lookup)
//	sts:{message_uuid}:{subject_id}         -> status record
//	chat:{chat_id}                          -> chat record
//	att:{ref}                               -> attachment record
//
// The 19-digit zero-padded nanosecond timestamp makes lexicographical order
// match chronological order within a chat; the trailing UUID disambiguates
// two messages persisted at the same nanosecond.
package repositories

import (
	"fmt"
	"time"

	"messenger-core/domain"

	"github.com/google/uuid"
)

func messageKey(chat domain.ChatID, at time.Time, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("msg:%d:%019d:%s", chat, at.UnixNano(), id))
}

func messagePrefix(chat domain.ChatID) []byte {
	return []byte(fmt.Sprintf("msg:%d:", chat))
}

func messageIDKey(id uuid.UUID) []byte {
	return []byte("msgid:" + id.String())
}

func statusKey(messageID uuid.UUID, subject domain.UserID) []byte {
	return []byte(fmt.Sprintf("sts:%s:%d", messageID, subject))
}

func statusPrefix(messageID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("sts:%s:", messageID))
}

func chatKey(id domain.ChatID) []byte {
	return []byte(fmt.Sprintf("chat:%d", id))
}

func attachmentKey(ref string) []byte {
	return []byte("att:" + ref)
}
