package repositories

import (
	"context"
	"testing"

	"messenger-core/domain"
	errs "messenger-core/errors"

	"github.com/stretchr/testify/require"
)

func TestChatRepository_Create_And_Members(t *testing.T) {
	req := require.New(t)
	store := openTestStore(t)
	ctx := context.Background()
	repository, err := NewChatRepository(store, testLogger())
	req.NoError(err)
	defer repository.Close()

	// When a chat is created with a duplicated member
	chat, err := repository.CreateChat(ctx, []domain.UserID{10, 11, 11, 12})
	req.NoError(err)
	req.NotZero(chat.ID)

	// Then the membership is deduplicated
	members, err := repository.Members(ctx, chat.ID)
	req.NoError(err)
	req.ElementsMatch([]domain.UserID{10, 11, 12}, members)
}

func TestChatRepository_Ids_Never_Collide(t *testing.T) {
	req := require.New(t)
	store := openTestStore(t)
	ctx := context.Background()
	repository, err := NewChatRepository(store, testLogger())
	req.NoError(err)
	defer repository.Close()

	seen := make(map[domain.ChatID]struct{})
	for i := 0; i < 10; i++ {
		chat, err := repository.CreateChat(ctx, []domain.UserID{1, 2})
		req.NoError(err)
		_, dup := seen[chat.ID]
		req.False(dup)
		seen[chat.ID] = struct{}{}
	}
}

func TestChatRepository_Unknown_Chat(t *testing.T) {
	req := require.New(t)
	store := openTestStore(t)
	repository, err := NewChatRepository(store, testLogger())
	req.NoError(err)
	defer repository.Close()

	_, err = repository.Members(context.Background(), domain.ChatID(404))
	req.ErrorIs(err, errs.ErrUnknownChat)
}
