package service

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"branch-chat-server/internal/cache"
	"branch-chat-server/internal/model"
	"branch-chat-server/internal/repository"
)

// newTestDB 创建测试用的内存 SQLite 数据库
// 限制为单连接，保证内存库在整个测试期间共享
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

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

	return db
}

// newTestCache 创建测试用的 miniredis 缓存
func newTestCache(t *testing.T) *cache.RedisCache {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return cache.NewRedisCacheWithClient(client, time.Minute)
}

// testEnv 测试环境，聚合仓库和服务
type testEnv struct {
	db             *gorm.DB
	cache          *cache.RedisCache
	convRepo       *repository.ConversationRepository
	messageRepo    *repository.MessageRepository
	versionRepo    *repository.MessageVersionRepository
	convService    *ConversationService
	messageService *MessageService
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithReply(t, NewEchoReply())
}

func newTestEnvWithReply(t *testing.T, reply ReplyGenerator) *testEnv {
	t.Helper()

	db := newTestDB(t)
	c := newTestCache(t)

	convRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	versionRepo := repository.NewMessageVersionRepository(db)

	return &testEnv{
		db:             db,
		cache:          c,
		convRepo:       convRepo,
		messageRepo:    messageRepo,
		versionRepo:    versionRepo,
		convService:    NewConversationService(convRepo, messageRepo, versionRepo, c),
		messageService: NewMessageService(messageRepo, versionRepo, convRepo, c, reply),
	}
}
