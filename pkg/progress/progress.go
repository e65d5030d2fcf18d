package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Batch 跟踪一批文件的处理进度，结束时输出汇总表格
type Batch struct {
	mu      sync.Mutex
	writer  io.Writer
	pw      progress.Writer
	drawn   chan struct{}
	tracker *progress.Tracker
	start   time.Time
	counts  map[string]int
	order   []string
	failed  int
	render  bool
}

// Option 配置 Batch
type Option func(*Batch)

// WithWriter 设置输出写入器，默认 os.Stderr
func WithWriter(w io.Writer) Option {
	return func(b *Batch) {
		b.writer = w
	}
}

// WithoutBar 只输出汇总表格
func WithoutBar() Option {
	return func(b *Batch) {
		b.render = false
	}
}

// NewBatch 创建批处理进度，total 为文件数
func NewBatch(total int, message string, options ...Option) *Batch {
	b := &Batch{
		writer: os.Stderr,
		start:  time.Now(),
		counts: map[string]int{},
		render: true,
	}
	for _, option := range options {
		option(b)
	}

	b.tracker = &progress.Tracker{Message: message, Total: int64(total), Units: progress.UnitsDefault}
	if !b.render {
		return b
	}

	pw := progress.NewWriter()
	pw.SetOutputWriter(b.writer)
	pw.SetStyle(progress.StyleDefault)
	pw.Style().Colors = progress.StyleColorsExample
	pw.Style().Options.PercentFormat = "%4.1f%%"
	pw.Style().Visibility.ETA = false
	pw.SetTrackerLength(25)
	pw.SetUpdateFrequency(50 * time.Millisecond)
	pw.SetAutoStop(true)
	pw.AppendTracker(b.tracker)
	b.pw = pw
	b.drawn = make(chan struct{})
	go func() {
		defer close(b.drawn)
		pw.Render()
	}()
	return b
}

// Add 累加一个命名计数，汇总表格按首次出现的顺序列出
func (b *Batch) Add(name string, n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.counts[name]; !ok {
		b.order = append(b.order, name)
	}
	b.counts[name] += n
}

// Step 完成一个文件，err 非空时记为失败
func (b *Batch) Step(err error) {
	b.mu.Lock()
	if err != nil {
		b.failed++
	}
	b.mu.Unlock()
	b.tracker.Increment(1)
}

// Done 结束进度条并输出汇总表格
func (b *Batch) Done() {
	b.mu.Lock()
	failed := b.failed
	b.mu.Unlock()

	if failed > 0 {
		b.tracker.MarkAsErrored()
	} else {
		b.tracker.MarkAsDone()
	}
	if b.pw != nil {
		<-b.drawn
	}
	b.renderSummaryTable()
}

// renderSummaryTable 渲染最终的总结表格
func (b *Batch) renderSummaryTable() {
	b.mu.Lock()
	defer b.mu.Unlock()

	tw := table.NewWriter()
	tw.SetOutputMirror(b.writer)
	tw.AppendHeader(table.Row{"项", "值"})
	tw.AppendRow(table.Row{"文件", b.tracker.Total})
	if b.failed > 0 {
		tw.AppendRow(table.Row{"失败", text.FgRed.Sprint(b.failed)})
	}
	for _, name := range b.order {
		tw.AppendRow(table.Row{name, b.counts[name]})
	}
	tw.AppendSeparator()
	tw.AppendRow(table.Row{"总耗时", formatDuration(time.Since(b.start))})
	tw.SetStyle(table.StyleLight)
	tw.Render()
}

// formatDuration 格式化持续时间
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(10 * time.Millisecond).String()
}
