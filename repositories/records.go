package repositories

import (
	"encoding/json"
	"time"

	"messenger-core/domain"

	"github.com/google/uuid"
)

// Records are encoded as JSON. Message records are immutable once written,
// status records are replaced whole on every accepted transition.

type messageRecord struct {
	ID         string `json:"id"`
	Chat       int64  `json:"chat"`
	Sender     int64  `json:"sender"`
	Content    string `json:"content"`
	Attachment string `json:"attachment,omitempty"`
	At         int64  `json:"at"`
}

type statusRecord struct {
	Status    int   `json:"status"`
	UpdatedAt int64 `json:"updated_at"`
}

type chatRecord struct {
	ID        int64   `json:"id"`
	Members   []int64 `json:"members"`
	CreatedAt int64   `json:"created_at"`
}

type attachmentRecord struct {
	Ref      string `json:"ref"`
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
}

func encodeMessage(m domain.Message) ([]byte, error) {
	return json.Marshal(messageRecord{
		ID:         m.ID.String(),
		Chat:       int64(m.Chat),
		Sender:     int64(m.Sender),
		Content:    m.Content,
		Attachment: m.Attachment,
		At:         m.CreatedAt.UnixNano(),
	})
}

func decodeMessage(raw []byte) (domain.Message, error) {
	var rec messageRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.Message{}, err
	}
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:         id,
		Chat:       domain.ChatID(rec.Chat),
		Sender:     domain.UserID(rec.Sender),
		Content:    rec.Content,
		Attachment: rec.Attachment,
		CreatedAt:  time.Unix(0, rec.At).UTC(),
	}, nil
}

// DecodeMessage exposes the record decoding to inspection tooling.
func DecodeMessage(raw []byte) (domain.Message, error) {
	return decodeMessage(raw)
}

// DecodeStatusValue exposes the status record decoding to inspection tooling.
func DecodeStatusValue(raw []byte) (domain.Status, time.Time, error) {
	return decodeStatus(raw)
}

func encodeStatus(s domain.Status, at time.Time) ([]byte, error) {
	return json.Marshal(statusRecord{Status: int(s), UpdatedAt: at.UnixNano()})
}

func decodeStatus(raw []byte) (domain.Status, time.Time, error) {
	var rec statusRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return 0, time.Time{}, err
	}
	return domain.Status(rec.Status), time.Unix(0, rec.UpdatedAt).UTC(), nil
}
