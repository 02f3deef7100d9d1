package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/mgrigorov/newsgrid/app/cfg"
	"github.com/mgrigorov/newsgrid/app/database"
	"github.com/mgrigorov/newsgrid/app/extractor"
	"github.com/mgrigorov/newsgrid/app/pipeline"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const (
	workerCount  = 2
	taskDeadline = 10 * time.Minute
)

// Scheduler runs the refresh pipeline on a fixed interval and queues
// follow-up content extraction. Refresh runs themselves are serialized
// by the pipeline's own guard; the scheduler only decides when to try.
type Scheduler struct {
	pipeline       *pipeline.Pipeline
	articleRepo    database.ArticleRepository
	httpClient     *http.Client
	extractor      *extractor.Extractor
	userAgent      string
	interval       time.Duration
	extractContent bool
	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup
	taskQueue      chan TaskInterface
}

func NewScheduler(p *pipeline.Pipeline, articleRepo database.ArticleRepository, httpClient *http.Client) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	c := cfg.Get()

	return &Scheduler{
		pipeline:       p,
		articleRepo:    articleRepo,
		httpClient:     httpClient,
		extractor:      extractor.NewExtractor(),
		userAgent:      c.UserAgent,
		interval:       time.Duration(c.FetchInterval) * time.Second,
		extractContent: c.ExtractContent,
		ctx:            ctx,
		cancel:         cancel,
		taskQueue:      make(chan TaskInterface, 16),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	if s.interval <= 0 {
		slog.Info("Scheduled refresh disabled")
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueRefresh()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueRefresh()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueRefresh() {
	if err := s.EnqueueTask(NewRefreshTask(s.pipeline)); err != nil {
		slog.Warn("Failed to enqueue RefreshTask", "error", err)
		return
	}

	if s.extractContent {
		task := NewExtractContentTask(s.httpClient, s.extractor, s.articleRepo, s.userAgent)
		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue ExtractContentTask", "error", err)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

// One attempt per task. Failures are logged, never retried; the next
// scheduled interval will try again from scratch.
func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, taskDeadline)
	defer cancel()

	if err := task.Execute(taskCtx); err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "error", err)
	}
}
