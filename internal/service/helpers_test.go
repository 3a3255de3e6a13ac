package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"news-cms/internal/model"
	"news-cms/internal/repository"
	"news-cms/internal/testutil"
)

var ctx = context.Background()

// 令牌校验使用真实时间，测试时钟从当前时间开始
var epoch = time.Now().UTC().Truncate(time.Second)

type env struct {
	db    *gorm.DB
	repos *repository.Repositories
	clock *testutil.Clock
}

func newEnv(t *testing.T) *env {
	gdb := testutil.NewDB(t)
	return &env{db: gdb, repos: repository.New(gdb), clock: testutil.NewClock(epoch)}
}

func (e *env) user(t *testing.T, email string) model.Actor {
	u := testutil.CreateUser(t, e.db, email, model.RoleUser)
	return model.Actor{UserID: u.ID, Role: u.Role, Email: u.Email}
}

func (e *env) admin(t *testing.T, email string) model.Actor {
	u := testutil.CreateUser(t, e.db, email, model.RoleAdmin)
	return model.Actor{UserID: u.ID, Role: u.Role, Email: u.Email}
}

// capturingNotifier 记录投递的验证码
type capturingNotifier struct {
	mu    sync.Mutex
	codes map[string]string
}

func (n *capturingNotifier) SendCode(_ context.Context, email, codeType, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.codes == nil {
		n.codes = map[string]string{}
	}
	n.codes[email+"/"+codeType] = code
	return nil
}

func (n *capturingNotifier) last(t *testing.T, email, codeType string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	code, ok := n.codes[email+"/"+codeType]
	require.True(t, ok, "no code sent to %s", email)
	return code
}

// recordingPusher 记录推送
type recordingPusher struct {
	mu     sync.Mutex
	online map[uint]bool
	frames map[uint][][]byte
}

func (p *recordingPusher) SendToUser(userID uint, msg []byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.online[userID] {
		return false
	}
	if p.frames == nil {
		p.frames = map[uint][][]byte{}
	}
	p.frames[userID] = append(p.frames[userID], msg)
	return true
}

func uintPtr(v uint) *uint { return &v }
