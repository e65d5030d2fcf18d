package tableedit

import (
	"github.com/nerdneilsfield/go-wysiwyg-table/pkg/keyevent"
	"github.com/nerdneilsfield/go-wysiwyg-table/pkg/table"
)

// Dispatcher 按键分发表：先执行全部通用处理器，再执行按键专属处理器。
// 任一处理器返回 Stop 时后续处理器不再执行。
type Dispatcher struct {
	all   []Handler
	byKey map[keyevent.Combo][]Handler
}

// NewDispatcher 创建空的分发表
func NewDispatcher() *Dispatcher {
	return &Dispatcher{byKey: make(map[keyevent.Combo][]Handler)}
}

// NewTableDispatcher 创建注册了全部表格处理器的分发表
func NewTableDispatcher(caps table.Capabilities) *Dispatcher {
	h := NewHandlers(caps)
	d := NewDispatcher()
	d.HandleAll(h.Track)
	d.Handle(keyevent.Backspace, h.Deletion)
	d.Handle(keyevent.Delete, h.Deletion)
	d.Handle(keyevent.Enter, h.Enter)
	d.Handle(keyevent.Tab, h.Tab)
	d.Handle(keyevent.ShiftTab, h.ShiftTab)
	return d
}

// HandleAll 注册对所有按键生效的处理器
func (d *Dispatcher) HandleAll(h Handler) {
	d.all = append(d.all, h)
}

// Handle 注册按键专属处理器
func (d *Dispatcher) Handle(c keyevent.Combo, h Handler) {
	d.byKey[c] = append(d.byKey[c], h)
}

// Dispatch 依次执行处理器，合并副作用与阻止默认行为标记
func (d *Dispatcher) Dispatch(state NavState, ev Event) Result {
	out := Result{State: state}
	handlers := append(append([]Handler(nil), d.all...), d.byKey[ev.Key.Combo]...)

	for _, h := range handlers {
		res := h(out.State, ev)
		out.State = res.State
		out.add(res.Effects...)
		out.Suppress = out.Suppress || res.Suppress
		if res.Stop {
			out.Stop = true
			break
		}
	}
	return out
}
