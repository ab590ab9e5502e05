package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"branch-chat-server/internal/model"
)

func TestCreateConversation_DefaultTitle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"空标题", "", model.DefaultConversationTitle},
		{"仅空白字符", "   \t  ", model.DefaultConversationTitle},
		{"正常标题", "我的对话", "我的对话"},
		{"带首尾空白", "  hello  ", "hello"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := env.convService.CreateConversation(ctx, &CreateConversationRequest{Title: tc.input})
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.Title)
			assert.NotEmpty(t, resp.ID)

			// 标题落库后与响应一致
			stored, err := env.convRepo.GetByID(ctx, resp.ID)
			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.Equal(t, tc.want, stored.Title)
		})
	}
}

func TestListConversations_OrderedByCreatedAtDesc(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	for i, title := range []string{"oldest", "middle", "newest"} {
		conv := &model.Conversation{
			Title:     title,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, env.convRepo.Create(ctx, conv))
	}

	result, err := env.convService.ListConversations(ctx)
	require.NoError(t, err)
	require.Len(t, result, 3)

	// 最新创建的排在最前面
	assert.Equal(t, "newest", result[0].Title)
	assert.Equal(t, "middle", result[1].Title)
	assert.Equal(t, "oldest", result[2].Title)
}

func TestRenameConversation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.convService.CreateConversation(ctx, &CreateConversationRequest{Title: "before"})
	require.NoError(t, err)

	renamed, err := env.convService.RenameConversation(ctx, created.ID, &RenameConversationRequest{Title: "after"})
	require.NoError(t, err)
	assert.Equal(t, "after", renamed.Title)
	assert.Equal(t, created.ID, renamed.ID)

	stored, err := env.convRepo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", stored.Title)
}

func TestRenameConversation_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.convService.RenameConversation(context.Background(), "missing-id", &RenameConversationRequest{Title: "x"})
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestDeleteConversation_CascadesMessagesAndVersions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.convService.CreateConversation(ctx, &CreateConversationRequest{Title: "to delete"})
	require.NoError(t, err)

	// 发一条消息并编辑，制造消息和版本记录
	sent, err := env.messageService.SendMessage(ctx, created.ID, &SendMessageRequest{Content: "hello"})
	require.NoError(t, err)
	_, err = env.messageService.EditMessage(ctx, sent.Message.ID, "hi")
	require.NoError(t, err)

	msgCount, err := env.messageRepo.CountByConversationID(ctx, created.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, msgCount)
	verCount, err := env.versionRepo.CountByMessageID(ctx, sent.Message.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, verCount)

	require.NoError(t, env.convService.DeleteConversation(ctx, created.ID))

	stored, err := env.convRepo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)

	msgCount, err = env.messageRepo.CountByConversationID(ctx, created.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, msgCount)

	verCount, err = env.versionRepo.CountByMessageID(ctx, sent.Message.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, verCount)
}

func TestDeleteConversation_NotFound(t *testing.T) {
	env := newTestEnv(t)

	err := env.convService.DeleteConversation(context.Background(), "missing-id")
	assert.ErrorIs(t, err, ErrConversationNotFound)
}
