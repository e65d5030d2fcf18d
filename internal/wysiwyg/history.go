package wysiwyg

import (
	"golang.org/x/net/html"

	"github.com/nerdneilsfield/go-wysiwyg-table/internal/dom"
)

// DefaultHistoryLimit 默认保留的检查点数量
const DefaultHistoryLimit = 100

// point 以 body 为根的节点路径表示的边界点，快照克隆后仍可还原
type point struct {
	path   []int
	offset int
}

type checkpoint struct {
	doc        *dom.Document
	start, end *point
}

// History 内存中的撤销历史
type History struct {
	limit int
	stack []checkpoint
}

// NewHistory 创建撤销历史，limit <= 0 时使用默认值
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Len 检查点数量
func (h *History) Len() int {
	return len(h.stack)
}

// Save 保存文档快照，hint 为恢复时的选区
func (h *History) Save(doc *dom.Document, hint *dom.Range) {
	cp := checkpoint{doc: doc.Clone()}
	if hint != nil && hint.StartContainer != nil {
		cp.start = pointOf(doc.Body(), hint.StartContainer, hint.StartOffset)
		cp.end = pointOf(doc.Body(), hint.EndContainer, hint.EndOffset)
	}
	if n := len(h.stack); n > 0 && h.stack[n-1].doc.HTML() == cp.doc.HTML() {
		h.stack[n-1] = cp
		return
	}
	h.stack = append(h.stack, cp)
	if len(h.stack) > h.limit {
		h.stack = h.stack[len(h.stack)-h.limit:]
	}
}

// Undo 恢复最近的检查点，返回恢复后的选区
func (h *History) Undo(doc *dom.Document) (dom.Range, bool) {
	n := len(h.stack)
	if n == 0 {
		return dom.Range{}, false
	}
	cp := h.stack[n-1]
	h.stack = h.stack[:n-1]

	doc.Replace(cp.doc)
	body := doc.Body()
	start, end := cp.start.resolve(body), cp.end.resolve(body)
	if start == nil || end == nil {
		return dom.Caret(body, 0), true
	}
	return dom.Range{StartContainer: start, StartOffset: cp.start.offset, EndContainer: end, EndOffset: cp.end.offset}, true
}

func pointOf(body, n *html.Node, offset int) *point {
	var path []int
	for x := n; x != body; x = x.Parent {
		if x == nil {
			return nil
		}
		path = append([]int{dom.Index(x)}, path...)
	}
	return &point{path: path, offset: offset}
}

func (p *point) resolve(body *html.Node) *html.Node {
	if p == nil {
		return nil
	}
	n := body
	for _, i := range p.path {
		if n = dom.ChildAt(n, i); n == nil {
			return nil
		}
	}
	return n
}
