package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dushixiang/propdesk/internal/config"
	"github.com/dushixiang/propdesk/internal/xe"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CycleRunner 执行一轮评估
type CycleRunner interface {
	EvaluateActive(ctx context.Context) (*CycleResult, error)
}

// EvaluationLoop 定时评估调度器
type EvaluationLoop struct {
	config config.EvaluationConf
	runner CycleRunner
	logger *zap.Logger

	mu         sync.Mutex
	cycleMu    sync.Mutex
	startTime  time.Time
	iteration  int
	isRunning  bool
	lastCycle  *time.Time
	lastResult *CycleResult
	lastError  string
	stopChan   chan struct{}
	cron       *cron.Cron
	cancel     context.CancelFunc
}

// LoopStatus 调度器状态
type LoopStatus struct {
	Running         bool         `json:"running"`
	IntervalMinutes int          `json:"interval_minutes"`
	Iteration       int          `json:"iteration"`
	StartTime       *time.Time   `json:"start_time,omitempty"`
	LastCycle       *time.Time   `json:"last_cycle,omitempty"`
	LastResult      *CycleResult `json:"last_result,omitempty"`
	LastError       string       `json:"last_error,omitempty"`
}

func NewEvaluationLoop(conf *config.Config, evaluationService *EvaluationService, logger *zap.Logger) *EvaluationLoop {
	return newEvaluationLoop(conf.Evaluation, evaluationService, logger)
}

func newEvaluationLoop(conf config.EvaluationConf, runner CycleRunner, logger *zap.Logger) *EvaluationLoop {
	if conf.IntervalMinutes <= 0 {
		conf.IntervalMinutes = 15
	}
	return &EvaluationLoop{
		config: conf,
		runner: runner,
		logger: logger,
	}
}

// Start 启动调度并阻塞，直到 Stop 或 ctx 结束
func (t *EvaluationLoop) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return xe.ErrLoopAlreadyRunning
	}

	// 每 N 分钟的整点执行，例如 */15 在 0、15、30、45 分触发
	cronExpr := fmt.Sprintf("*/%d * * * *", t.config.IntervalMinutes)

	parent := ctx
	ctx, cancel := context.WithCancel(parent)
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cronExpr, func() { t.ExecuteCycle(ctx) }); err != nil {
		t.mu.Unlock()
		cancel()
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	stopChan := make(chan struct{})
	t.isRunning = true
	t.startTime = time.Now()
	t.cron = scheduler
	t.cancel = cancel
	t.stopChan = stopChan
	t.mu.Unlock()

	t.logger.Info("evaluation loop started",
		zap.Int("interval_minutes", t.config.IntervalMinutes),
		zap.String("cron_expression", cronExpr))

	scheduler.Start()

	// 立即执行第一次
	go t.ExecuteCycle(ctx)

	select {
	case <-stopChan:
	case <-ctx.Done():
	}

	// Stop 会先取消内部 ctx，只有外部 ctx 结束才算异常退出
	if err := parent.Err(); err != nil {
		t.Stop()
		t.logger.Info("evaluation loop stopped by context")
		return err
	}
	<-stopChan
	t.logger.Info("evaluation loop stopped by user")
	return nil
}

// Stop 停止调度并等待正在执行的任务结束
func (t *EvaluationLoop) Stop() {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return
	}
	t.isRunning = false
	scheduler, cancel, stopChan := t.cron, t.cancel, t.stopChan
	t.mu.Unlock()

	t.logger.Info("stopping evaluation loop...")
	cancel()
	<-scheduler.Stop().Done()
	close(stopChan)
	t.logger.Info("evaluation loop stopped")
}

func (t *EvaluationLoop) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.isRunning
}

// ExecuteCycle 执行一轮评估，上一轮未结束时跳过
func (t *EvaluationLoop) ExecuteCycle(ctx context.Context) {
	if !t.cycleMu.TryLock() {
		t.logger.Warn("previous evaluation cycle still running, skipping")
		return
	}
	defer t.cycleMu.Unlock()

	t.mu.Lock()
	t.iteration++
	iteration := t.iteration
	t.mu.Unlock()

	cycleStart := time.Now()
	t.logger.Info("evaluation cycle start", zap.Int("iteration", iteration))

	result, err := t.runner.EvaluateActive(ctx)

	t.mu.Lock()
	t.lastCycle = &cycleStart
	t.lastResult = result
	t.lastError = ""
	if err != nil {
		t.lastError = err.Error()
	}
	t.mu.Unlock()

	if err != nil {
		t.logger.Error("evaluation cycle failed", zap.Int("iteration", iteration), zap.Error(err))
		return
	}
	t.logger.Info("evaluation cycle done",
		zap.Int("iteration", iteration),
		zap.Int("accounts", result.Total),
		zap.Int("evaluated", result.Evaluated),
		zap.Int("failed", result.Failed),
		zap.Duration("elapsed", time.Since(cycleStart)))
}

func (t *EvaluationLoop) Status() LoopStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	status := LoopStatus{
		Running:         t.isRunning,
		IntervalMinutes: t.config.IntervalMinutes,
		Iteration:       t.iteration,
		LastCycle:       t.lastCycle,
		LastResult:      t.lastResult,
		LastError:       t.lastError,
	}
	if t.isRunning {
		start := t.startTime
		status.StartTime = &start
	}
	return status
}

// Summary Telegram /status 的回复内容
func (t *EvaluationLoop) Summary() string {
	s := t.Status()
	if !s.Running {
		return "Evaluation loop is stopped."
	}
	msg := fmt.Sprintf("Evaluation loop running every %d min, %d cycles so far.", s.IntervalMinutes, s.Iteration)
	if s.LastResult != nil {
		msg += fmt.Sprintf(" Last cycle: %d/%d accounts evaluated, %d failed.", s.LastResult.Evaluated, s.LastResult.Total, s.LastResult.Failed)
	}
	return msg
}
