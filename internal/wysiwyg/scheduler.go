package wysiwyg

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Scheduler 延迟执行任务
type Scheduler interface {
	After(d time.Duration, task func())
}

type timedTask struct {
	at   time.Duration
	seq  int
	task func()
}

// ManualScheduler 由调用方推进时间的调度器，用于测试和命令行
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []timedTask
}

// NewManualScheduler 创建手动调度器
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// After 登记任务
func (s *ManualScheduler) After(d time.Duration, task func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, timedTask{at: s.now + d, seq: s.seq, task: task})
	s.seq++
}

// Pending 尚未执行的任务数
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Advance 推进时间并执行到期任务，返回执行的任务数
func (s *ManualScheduler) Advance(d time.Duration) int {
	s.mu.Lock()
	s.now += d
	due := s.take(func(t timedTask) bool { return t.at <= s.now })
	s.mu.Unlock()

	for _, t := range due {
		t.task()
	}
	return len(due)
}

// Flush 立即执行全部任务，包括执行过程中新登记的任务
func (s *ManualScheduler) Flush() int {
	n := 0
	for {
		s.mu.Lock()
		due := s.take(func(timedTask) bool { return true })
		if len(due) > 0 && due[len(due)-1].at > s.now {
			s.now = due[len(due)-1].at
		}
		s.mu.Unlock()

		if len(due) == 0 {
			return n
		}
		for _, t := range due {
			t.task()
		}
		n += len(due)
	}
}

// take 取出满足条件的任务，按到期时间和登记顺序排序
func (s *ManualScheduler) take(match func(timedTask) bool) []timedTask {
	var due, rest []timedTask
	for _, t := range s.tasks {
		if match(t) {
			due = append(due, t)
		} else {
			rest = append(rest, t)
		}
	}
	s.tasks = rest
	sort.Slice(due, func(i, j int) bool {
		if due[i].at != due[j].at {
			return due[i].at < due[j].at
		}
		return due[i].seq < due[j].seq
	})
	return due
}

// LoopScheduler 在单个后台 goroutine 中依次执行到期任务，ctx 取消后停止
type LoopScheduler struct {
	ctx   context.Context
	tasks chan func()
	done  chan struct{}
}

// NewLoopScheduler 创建并启动调度循环
func NewLoopScheduler(ctx context.Context) *LoopScheduler {
	s := &LoopScheduler{
		ctx:   ctx,
		tasks: make(chan func()),
		done:  make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *LoopScheduler) loop() {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			return
		case task := <-s.tasks:
			task()
		}
	}
}

// After 延迟 d 后把任务交给调度循环
func (s *LoopScheduler) After(d time.Duration, task func()) {
	time.AfterFunc(d, func() {
		select {
		case s.tasks <- task:
		case <-s.ctx.Done():
		}
	})
}

// Done 调度循环退出后关闭
func (s *LoopScheduler) Done() <-chan struct{} {
	return s.done
}
