package wysiwyg

import "sync"

// EventKind 编辑器事件类型，封闭枚举
type EventKind int

const (
	// SelectionChangedAfterEdit 编辑导致选区变化之后
	SelectionChangedAfterEdit EventKind = iota
	// DocumentValueReplaced 整个文档内容被替换之后
	DocumentValueReplaced
	// ProcessHTMLText 导出 HTML 之前，监听器可以改写 HTML
	ProcessHTMLText
)

var eventNames = map[EventKind]string{
	SelectionChangedAfterEdit: "selection-changed-after-edit",
	DocumentValueReplaced:     "document-value-replaced",
	ProcessHTMLText:           "process-html-text",
}

// String 返回事件名称
func (k EventKind) String() string {
	return eventNames[k]
}

// Event 事件负载
type Event struct {
	Kind EventKind
	// HTML 仅用于 ProcessHTMLText
	HTML string
}

// Listener 事件监听器
type Listener func(ev *Event)

// EventBus 类型化的事件总线，监听器按注册顺序同步执行
type EventBus struct {
	mu        sync.RWMutex
	listeners map[EventKind][]Listener
}

// NewEventBus 创建事件总线
func NewEventBus() *EventBus {
	return &EventBus{listeners: make(map[EventKind][]Listener)}
}

// On 注册监听器
func (b *EventBus) On(kind EventKind, l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[kind] = append(b.listeners[kind], l)
}

// Emit 触发事件并返回（可能被改写的）负载
func (b *EventBus) Emit(ev *Event) *Event {
	b.mu.RLock()
	ls := append([]Listener(nil), b.listeners[ev.Kind]...)
	b.mu.RUnlock()

	for _, l := range ls {
		l(ev)
	}
	return ev
}
