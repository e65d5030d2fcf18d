package wysiwyg

import (
	"golang.org/x/net/html"

	"github.com/nerdneilsfield/go-wysiwyg-table/internal/dom"
	"github.com/nerdneilsfield/go-wysiwyg-table/pkg/keyevent"
)

// defaultAction 未被插件阻止时的编辑区默认按键行为
func (e *Editor) defaultAction(key keyevent.Event) {
	switch {
	case key.Combo == keyevent.Backspace:
		e.deleteRune(false)
	case key.Combo == keyevent.Delete:
		e.deleteRune(true)
	case key.Combo == keyevent.Enter:
		e.collapseSelection()
		e.insertBreak()
	case key.IsTextInput() && !key.Mods.Ctrl && !key.Mods.Meta && !key.Mods.Alt:
		e.collapseSelection()
		e.insertText(key.Name)
	case key.Name == "SPACE":
		e.collapseSelection()
		e.insertText(" ")
	}
}

// collapseSelection 删除同一文本节点内的选中文字，其他情况折叠到起点
func (e *Editor) collapseSelection() {
	r := e.rng
	if r.Collapsed() {
		return
	}
	if r.StartContainer == r.EndContainer && dom.IsText(r.StartContainer) {
		rs := []rune(r.StartContainer.Data)
		r.StartContainer.Data = string(rs[:r.StartOffset]) + string(rs[r.EndOffset:])
	}
	e.rng = dom.Caret(r.StartContainer, r.StartOffset)
	e.selected = nil
}

// insertText 在光标处插入文本
func (e *Editor) insertText(s string) {
	r := e.rng
	n, off := r.StartContainer, r.StartOffset
	if dom.IsText(n) {
		rs := []rune(n.Data)
		n.Data = string(rs[:off]) + s + string(rs[off:])
		e.rng = dom.Caret(n, off+len([]rune(s)))
		return
	}
	if prev := dom.ChildAt(n, off-1); dom.IsText(prev) {
		prev.Data += s
		e.rng = dom.Caret(prev, dom.RuneLen(prev))
		return
	}
	t := dom.NewText(s)
	insertAt(n, off, t)
	e.rng = dom.Caret(t, dom.RuneLen(t))
}

// insertBreak 在光标处插入 br
func (e *Editor) insertBreak() {
	n, off := e.rng.StartContainer, e.rng.StartOffset
	br := dom.NewBreak()
	if dom.IsText(n) {
		rest := splitText(n, off)
		dom.InsertAfter(br, n)
		if rest != nil {
			dom.InsertAfter(rest, br)
		}
	} else {
		insertAt(n, off, br)
	}
	e.rng = dom.Caret(br.Parent, dom.Index(br)+1)
}

// insertNodes 在光标处插入节点；包含表格部件时插入到光标所在顶层块之后
func (e *Editor) insertNodes(nodes []*html.Node) {
	if len(nodes) == 0 {
		return
	}
	e.collapseSelection()
	body := e.doc.Body()
	n, off := e.rng.StartContainer, e.rng.StartOffset

	tableish := false
	for _, x := range nodes {
		if dom.IsTableish(x) {
			tableish = true
		}
	}

	var ref *html.Node
	switch {
	case tableish && n != body:
		top := n
		for top.Parent != body {
			top = top.Parent
		}
		ref = top.NextSibling
		n = body
	case dom.IsText(n):
		ref = splitText(n, off)
		if ref != nil {
			dom.InsertAfter(ref, n)
		} else {
			ref = n.NextSibling
		}
		n = n.Parent
	default:
		ref = dom.ChildAt(n, off)
	}

	for _, x := range nodes {
		n.InsertBefore(dom.Detach(x), ref)
	}
	last := nodes[len(nodes)-1]
	e.rng = dom.Caret(n, dom.Index(last)+1)
}

// deleteRune 删除光标前（forward 为 false）或光标后的一个字符或内联节点，不跨越块边界
func (e *Editor) deleteRune(forward bool) {
	if !e.rng.Collapsed() {
		e.collapseSelection()
		return
	}
	n, off := e.rng.StartContainer, e.rng.StartOffset

	if dom.IsText(n) {
		rs := []rune(n.Data)
		switch {
		case !forward && off > 0:
			n.Data = string(rs[:off-1]) + string(rs[off:])
			e.rng = dom.Caret(n, off-1)
			return
		case forward && off < len(rs):
			n.Data = string(rs[:off]) + string(rs[off+1:])
			return
		}
		if forward {
			e.removeAdjacent(n.NextSibling, true)
		} else {
			e.removeAdjacent(n.PrevSibling, false)
		}
		return
	}

	if forward {
		e.removeAdjacent(dom.ChildAt(n, off), true)
		return
	}
	if prev := dom.ChildAt(n, off-1); prev != nil {
		if dom.IsText(prev) && prev.Data != "" {
			rs := []rune(prev.Data)
			prev.Data = string(rs[:len(rs)-1])
			e.rng = dom.Caret(prev, len(rs)-1)
			return
		}
		dom.Detach(prev)
		e.rng = dom.Caret(n, off-1)
	}
}

// removeAdjacent 删除相邻节点：文本删一个字符，br 等内联元素整体删除，块元素保持不动
func (e *Editor) removeAdjacent(x *html.Node, forward bool) {
	switch {
	case x == nil:
	case dom.IsText(x):
		rs := []rune(x.Data)
		if len(rs) == 0 {
			dom.Detach(x)
			return
		}
		if forward {
			x.Data = string(rs[1:])
			return
		}
		x.Data = string(rs[:len(rs)-1])
		e.rng = dom.Caret(x, len(rs)-1)
	case dom.IsElement(x, "br", "img", "span", "code", "em", "strong", "a"):
		dom.Detach(x)
	}
}

func insertAt(parent *html.Node, off int, n *html.Node) {
	parent.InsertBefore(n, dom.ChildAt(parent, off))
}

// splitText 在 off 处拆分文本节点，返回后半段（未挂入文档）；off 位于末尾时返回 nil
func splitText(n *html.Node, off int) *html.Node {
	rs := []rune(n.Data)
	if off >= len(rs) {
		return nil
	}
	rest := dom.NewText(string(rs[off:]))
	n.Data = string(rs[:off])
	return rest
}
