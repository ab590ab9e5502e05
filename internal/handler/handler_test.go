package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"branch-chat-server/internal/cache"
	"branch-chat-server/internal/model"
	"branch-chat-server/internal/repository"
	"branch-chat-server/internal/service"
	"branch-chat-server/pkg/response"
)

// newTestRouter 构建带完整路由的测试用 Gin 引擎
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&model.Conversation{},
		&model.Message{},
		&model.MessageVersion{},
	))

	mr := miniredis.RunT(t)
	redisCache := cache.NewRedisCacheWithClient(
		redis.NewClient(&redis.Options{Addr: mr.Addr()}),
		time.Minute,
	)

	convRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	versionRepo := repository.NewMessageVersionRepository(db)

	convService := service.NewConversationService(convRepo, messageRepo, versionRepo, redisCache)
	messageService := service.NewMessageService(messageRepo, versionRepo, convRepo, redisCache, service.NewEchoReply())

	convHandler := NewConversationHandler(convService, messageService)
	messageHandler := NewMessageHandler(messageService)

	router := gin.New()
	v1 := router.Group("/api/v1")

	conversations := v1.Group("/conversations")
	{
		conversations.POST("", convHandler.CreateConversation)
		conversations.GET("", convHandler.ListConversations)
		conversations.PUT("/:id", convHandler.RenameConversation)
		conversations.DELETE("/:id", convHandler.DeleteConversation)
		conversations.GET("/:id/branches", convHandler.ListBranches)
		conversations.GET("/:id/messages", messageHandler.GetMessages)
		conversations.POST("/:id/messages", messageHandler.SendMessage)
	}

	messages := v1.Group("/messages")
	{
		messages.PUT("/:id", messageHandler.EditMessage)
		messages.GET("/:id/versions", messageHandler.GetVersions)
	}

	return router
}

// doRequest 发起测试请求并解析统一响应结构
func doRequest(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, *response.Response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp response.Response
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, &resp
}

// dataMap 把响应 data 转成 map 方便断言
func dataMap(t *testing.T, resp *response.Response) map[string]interface{} {
	t.Helper()
	m, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "data 应为对象")
	return m
}

func TestConversationCRUDOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	// 空标题创建，得到默认标题
	w, resp := doRequest(t, router, http.MethodPost, "/api/v1/conversations", gin.H{"title": "  "})
	require.Equal(t, http.StatusCreated, w.Code)
	created := dataMap(t, resp)
	assert.Equal(t, model.DefaultConversationTitle, created["title"])
	convID := created["id"].(string)
	require.NotEmpty(t, convID)

	// 列表包含新对话
	w, resp = doRequest(t, router, http.MethodGet, "/api/v1/conversations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := dataMap(t, resp)
	assert.EqualValues(t, 1, list["total"])

	// 重命名
	w, resp = doRequest(t, router, http.MethodPut, "/api/v1/conversations/"+convID, gin.H{"title": "renamed"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "renamed", dataMap(t, resp)["title"])

	// 删除
	w, _ = doRequest(t, router, http.MethodDelete, "/api/v1/conversations/"+convID, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	// 删除后读取消息列表返回 404
	w, resp = doRequest(t, router, http.MethodGet, "/api/v1/conversations/"+convID+"/messages", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, response.CodeConversationNotFound, resp.Code)
}

func TestSendAndEditOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	_, resp := doRequest(t, router, http.MethodPost, "/api/v1/conversations", gin.H{"title": "chat"})
	convID := dataMap(t, resp)["id"].(string)

	// 发送消息，返回用户消息和回声回复
	w, resp := doRequest(t, router, http.MethodPost, "/api/v1/conversations/"+convID+"/messages", gin.H{"content": "hello"})
	require.Equal(t, http.StatusCreated, w.Code)
	sent := dataMap(t, resp)
	message := sent["message"].(map[string]interface{})
	reply := sent["reply"].(map[string]interface{})
	assert.Equal(t, "hello", message["content"])
	assert.Equal(t, model.MessageRoleUser, message["role"])
	assert.Equal(t, "You said: hello", reply["content"])
	assert.Equal(t, model.MessageRoleAssistant, reply["role"])
	messageID := message["id"].(string)

	// 消息列表按顺序包含两条消息
	w, resp = doRequest(t, router, http.MethodGet, "/api/v1/conversations/"+convID+"/messages", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, dataMap(t, resp)["total"])

	// 编辑消息
	w, resp = doRequest(t, router, http.MethodPut, "/api/v1/messages/"+messageID, gin.H{"content": "hi"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hi", dataMap(t, resp)["content"])

	// 历史版本保留编辑前的内容
	w, resp = doRequest(t, router, http.MethodGet, "/api/v1/messages/"+messageID+"/versions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	versionsData := dataMap(t, resp)
	assert.EqualValues(t, 1, versionsData["total"])
	versions := versionsData["versions"].([]interface{})
	first := versions[0].(map[string]interface{})
	assert.Equal(t, "hello", first["content"])
}

func TestSendMessageValidationOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	_, resp := doRequest(t, router, http.MethodPost, "/api/v1/conversations", gin.H{"title": "chat"})
	convID := dataMap(t, resp)["id"].(string)

	// 空白内容被拒绝
	w, resp := doRequest(t, router, http.MethodPost, "/api/v1/conversations/"+convID+"/messages", gin.H{"content": "   "})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.CodeEmptyContent, resp.Code)

	// 不存在的对话返回 404
	w, resp = doRequest(t, router, http.MethodPost, "/api/v1/conversations/missing-id/messages", gin.H{"content": "hello"})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, response.CodeConversationNotFound, resp.Code)
}

func TestBranchesOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	_, resp := doRequest(t, router, http.MethodPost, "/api/v1/conversations", gin.H{"title": "chat"})
	convID := dataMap(t, resp)["id"].(string)

	// 主分支发一条消息，产生一个分支根（用户消息）和它的回声回复
	_, resp = doRequest(t, router, http.MethodPost, "/api/v1/conversations/"+convID+"/messages", gin.H{"content": "branch me"})
	rootID := dataMap(t, resp)["message"].(map[string]interface{})["id"].(string)

	// 分支列表包含两个根（用户消息和助手回复都没有 parent_id）
	w, resp := doRequest(t, router, http.MethodGet, "/api/v1/conversations/"+convID+"/branches", nil)
	require.Equal(t, http.StatusOK, w.Code)
	branchesData := dataMap(t, resp)
	assert.EqualValues(t, 2, branchesData["total"])
	branches := branchesData["branches"].([]interface{})
	firstBranch := branches[0].(map[string]interface{})
	assert.Equal(t, rootID, firstBranch["id"])
	assert.Equal(t, "branch me...", firstBranch["label"])

	// 选中分支根后发送，新消息归属这个分支
	w, resp = doRequest(t, router, http.MethodPost, "/api/v1/conversations/"+convID+"/messages", gin.H{
		"content":   "x",
		"parent_id": rootID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	onBranch := dataMap(t, resp)["message"].(map[string]interface{})
	assert.Equal(t, rootID, onBranch["parent_id"])

	// 分支不过滤读取视图：列表里能看到所有消息
	_, resp = doRequest(t, router, http.MethodGet, "/api/v1/conversations/"+convID+"/messages", nil)
	assert.EqualValues(t, 4, dataMap(t, resp)["total"])
}
