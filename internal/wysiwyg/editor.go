package wysiwyg

import (
	"sync"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/nerdneilsfield/go-wysiwyg-table/internal/dom"
	"github.com/nerdneilsfield/go-wysiwyg-table/internal/logger"
	"github.com/nerdneilsfield/go-wysiwyg-table/pkg/keyevent"
)

// Plugin 编辑器插件。回调在编辑器锁内执行。
type Plugin interface {
	// KeyDown 默认行为之前调用，返回 true 阻止默认行为
	KeyDown(key keyevent.Event) bool
	// KeyUp 默认行为之后调用
	KeyUp(key keyevent.Event)
	// Paste 返回 true 表示已处理粘贴
	Paste(clipboard string) bool
}

// Editor 所见即所得编辑区：文档、选区、撤销历史和事件总线。
// 所有公开方法并发安全，插件回调与 Do 中的函数串行执行。
type Editor struct {
	mu       sync.Mutex
	doc      *dom.Document
	rng      dom.Range
	selected []*html.Node
	history  *History
	bus      *EventBus
	plugins  []Plugin
	log      *zap.Logger
}

// NewEditor 创建编辑器，光标位于文档起始处
func NewEditor(doc *dom.Document, log *zap.Logger) *Editor {
	if doc == nil {
		doc = dom.NewDocument()
	}
	return &Editor{
		doc:     doc,
		rng:     dom.Caret(doc.Body(), 0),
		history: NewHistory(DefaultHistoryLimit),
		bus:     NewEventBus(),
		log:     logger.Component(log, "editor"),
	}
}

// Bus 事件总线
func (e *Editor) Bus() *EventBus {
	return e.bus
}

// Use 注册插件
func (e *Editor) Use(p Plugin) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.plugins = append(e.plugins, p)
}

// Do 在编辑器锁内执行 fn
func (e *Editor) Do(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn()
}

// Document 当前文档。并发使用时应在 Do 中访问。
func (e *Editor) Document() *dom.Document {
	return e.doc
}

// Range 当前选区
func (e *Editor) Range() dom.Range {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng
}

// SetRange 设置选区并清除单元格多选
func (e *Editor) SetRange(r dom.Range) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rng = r
	e.selected = nil
}

// SelectCells 设置单元格多选，选区跨越首尾单元格
func (e *Editor) SelectCells(cells ...*html.Node) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selected = cells
	if len(cells) > 0 {
		first, last := cells[0], cells[len(cells)-1]
		e.rng = dom.Range{StartContainer: first, StartOffset: 0, EndContainer: last, EndOffset: dom.ChildCount(last)}
	}
}

// HTML 导出 HTML，经过 ProcessHTMLText 监听器处理
func (e *Editor) HTML() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bus.Emit(&Event{Kind: ProcessHTMLText, HTML: e.doc.HTML()}).HTML
}

// RawHTML 不经处理的 body 内容
func (e *Editor) RawHTML() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.HTML()
}

// SetHTML 替换文档内容
func (e *Editor) SetHTML(s string) error {
	doc, err := dom.ParseBody(s)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.doc.Replace(doc)
	e.rng = dom.Caret(e.doc.Body(), 0)
	e.selected = nil
	e.bus.Emit(&Event{Kind: DocumentValueReplaced})
	e.clampRange()
	return nil
}

// Press 处理一次按键：插件、默认行为、插件收尾，最后广播编辑事件。返回是否阻止了默认行为。
func (e *Editor) Press(key keyevent.Event) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	suppressed := false
	for _, p := range e.plugins {
		if p.KeyDown(key) {
			suppressed = true
		}
	}
	if !suppressed {
		e.defaultAction(key)
	}
	for _, p := range e.plugins {
		p.KeyUp(key)
	}
	e.clampRange()

	e.log.Debug("key pressed", zap.String("key", key.Name), zap.Bool("suppressed", suppressed))
	e.afterEdit()
	return suppressed
}

// Paste 粘贴剪贴板 HTML，插件未处理时插入其文本
func (e *Editor) Paste(clipboard string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	handled := false
	for _, p := range e.plugins {
		if p.Paste(clipboard) {
			handled = true
			break
		}
	}
	if !handled {
		nodes, err := dom.ParseFragment(clipboard)
		if err != nil {
			e.log.Warn("failed to parse clipboard", zap.Error(err))
			return
		}
		e.saveCheckpoint()
		e.insertNodes(nodes)
	}
	e.clampRange()
	e.afterEdit()
}

// Undo 撤销到最近的检查点
func (e *Editor) Undo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.history.Undo(e.doc)
	if !ok {
		return false
	}
	e.rng = r
	e.selected = nil
	e.clampRange()
	return true
}

// SaveCheckpoint 记录撤销检查点
func (e *Editor) SaveCheckpoint() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.saveCheckpoint()
}

// Checkpoints 撤销历史中的检查点数量
func (e *Editor) Checkpoints() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Len()
}

func (e *Editor) saveCheckpoint() {
	rng := e.rng
	e.history.Save(e.doc, &rng)
}

func (e *Editor) afterEdit() {
	e.bus.Emit(&Event{Kind: SelectionChangedAfterEdit})
	e.clampRange()
}

// clampRange 选区容器被移出文档或偏移越界时收拢到合法位置
func (e *Editor) clampRange() {
	body := e.doc.Body()
	fix := func(n *html.Node, off int) (*html.Node, int) {
		if n == nil || !dom.Contains(body, n) {
			return body, dom.ChildCount(body)
		}
		if l := dom.RuneLen(n); off > l {
			off = l
		}
		if off < 0 {
			off = 0
		}
		return n, off
	}
	r := e.rng
	r.StartContainer, r.StartOffset = fix(r.StartContainer, r.StartOffset)
	r.EndContainer, r.EndOffset = fix(r.EndContainer, r.EndOffset)
	e.rng = r

	var alive []*html.Node
	for _, c := range e.selected {
		if dom.Contains(body, c) {
			alive = append(alive, c)
		}
	}
	e.selected = alive
}
