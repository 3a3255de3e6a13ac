// Package scheduler 后台定时任务
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"news-cms/pkg/logger"
)

// SessionSweeper 失效过期会话，AuthService 实现了该接口
type SessionSweeper interface {
	SweepExpiredSessions(ctx context.Context) (int64, error)
}

// Scheduler 定时任务调度器
type Scheduler struct {
	cron    *cron.Cron
	sweeper SessionSweeper
	every   time.Duration
	timeout time.Duration
}

// New 创建调度器，every 为会话清理间隔
func New(sweeper SessionSweeper, every time.Duration) *Scheduler {
	if every <= 0 {
		every = 5 * time.Minute
	}
	timeout := every
	if timeout > time.Minute {
		timeout = time.Minute
	}
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		sweeper: sweeper,
		every:   every,
		timeout: timeout,
	}
}

// Start 注册任务并启动
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.every), s.sweepSessions); err != nil {
		return fmt.Errorf("注册会话清理任务失败: %w", err)
	}
	s.cron.Start()
	logger.Info("定时任务已启动", zap.Int("jobs", len(s.cron.Entries())), zap.Duration("session_sweep", s.every))
	return nil
}

// Stop 停止调度并等待正在执行的任务结束
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	logger.Info("定时任务已停止")
}

func (s *Scheduler) sweepSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.sweeper.SweepExpiredSessions(ctx)
	if err != nil {
		logger.Error("清理过期会话失败", zap.Error(err))
		return
	}
	if n > 0 {
		logger.Info("已清理过期会话", zap.Int64("count", n))
	}
}
