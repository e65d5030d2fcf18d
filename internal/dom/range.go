package dom

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/nerdneilsfield/go-wysiwyg-table/pkg/table"
	"github.com/nerdneilsfield/go-wysiwyg-table/pkg/tableedit"
)

// Range 文档选区。文本节点中的偏移按字符计算，元素节点中的偏移为子节点下标。
type Range struct {
	StartContainer *html.Node
	StartOffset    int
	EndContainer   *html.Node
	EndOffset      int
}

// Caret 折叠选区
func Caret(container *html.Node, offset int) Range {
	return Range{StartContainer: container, StartOffset: offset, EndContainer: container, EndOffset: offset}
}

// Collapsed 选区是否折叠
func (r Range) Collapsed() bool {
	return r.StartContainer == r.EndContainer && r.StartOffset == r.EndOffset
}

// CommonAncestor 起止容器的最近公共祖先
func (r Range) CommonAncestor() *html.Node {
	for a := r.StartContainer; a != nil; a = a.Parent {
		if Contains(a, r.EndContainer) {
			return a
		}
	}
	return nil
}

// ClosestTable 选区起点所在的表格
func (r Range) ClosestTable(body *html.Node) *html.Node {
	if r.StartContainer == nil {
		return nil
	}
	return Closest(r.StartContainer, body, "table")
}

// TableAround 找出与选区相关的表格：选区所在、与选区相交、或紧邻光标前后的表格
func TableAround(body *html.Node, r Range) *html.Node {
	if r.StartContainer == nil {
		return nil
	}
	if t := r.ClosestTable(body); t != nil {
		return t
	}
	if !r.Collapsed() {
		if t := Closest(r.EndContainer, body, "table"); t != nil {
			return t
		}
		if anc := r.CommonAncestor(); anc != nil {
			for _, t := range findAll(anc, "table") {
				if intersects(r, t) {
					return t
				}
			}
		}
	}
	if n := ChildAt(r.StartContainer, r.StartOffset); r.StartContainer.Type == html.ElementNode && IsElement(n, "table") {
		return n
	}
	if n := PrevOffsetNode(r.StartContainer, r.StartOffset, body); IsElement(n, "table") {
		return n
	}
	return nil
}

// Locate 把边界点映射为相对表格的位置
func Locate(tbl *html.Node, cells *CellMap, container *html.Node, offset int) table.Position {
	if cell := Closest(container, tbl.Parent, "td", "th"); cell != nil && Contains(tbl, cell) {
		ref, ok := cells.Ref(cell)
		if !ok {
			return table.Position{Kind: table.Elsewhere}
		}
		return inCell(cell, ref, container, offset)
	}
	if container.Type == html.ElementNode && ChildAt(container, offset) == tbl {
		return table.Position{Kind: table.BeforeTable}
	}
	if PrevOffsetNode(container, offset, nil) == tbl {
		return table.Position{Kind: table.AfterTable}
	}
	return table.Position{Kind: table.Elsewhere}
}

// inCell 计算单元格内的内联下标和字符偏移
func inCell(cell *html.Node, ref table.CellRef, container *html.Node, offset int) table.Position {
	pos := table.Position{Kind: table.InCell, Cell: ref}
	if container == cell {
		pos.Inline = offset
		return pos
	}

	top := container
	for top.Parent != cell {
		top = top.Parent
	}
	pos.Inline = Index(top)
	if top == container && container.Type == html.TextNode {
		pos.Offset = offset
		return pos
	}
	pos.Offset = textBefore(top, container, offset)
	return pos
}

// textBefore 边界点之前属于 root 的字符数
func textBefore(root, container *html.Node, offset int) int {
	n := 0
	found := false
	var walk func(x *html.Node)
	walk = func(x *html.Node) {
		if found {
			return
		}
		if x == container {
			if x.Type == html.TextNode {
				n += offset
			} else {
				for i, c := 0, x.FirstChild; c != nil && i < offset; i, c = i+1, c.NextSibling {
					n += utf8.RuneCountInString(TextContent(c))
				}
			}
			found = true
			return
		}
		if x.Type == html.TextNode {
			n += utf8.RuneCountInString(x.Data)
			return
		}
		for c := x.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return n
}

// Ancestor 公共祖先的类型
func Ancestor(body *html.Node, r Range) tableedit.AncestorKind {
	anc := r.CommonAncestor()
	switch {
	case anc == body:
		return tableedit.AncestorBody
	case IsText(anc):
		return tableedit.AncestorText
	}
	return tableedit.AncestorElement
}

// Snapshot 生成按键处理所需的选区快照
func Snapshot(body, tbl *html.Node, cells *CellMap, r Range, selected []*html.Node) tableedit.Selection {
	sel := tableedit.Selection{
		Start:     Locate(tbl, cells, r.StartContainer, r.StartOffset),
		End:       Locate(tbl, cells, r.EndContainer, r.EndOffset),
		Collapsed: r.Collapsed(),
		Ancestor:  Ancestor(body, r),
	}
	sel.InTable = sel.Start.Kind == table.InCell || sel.End.Kind == table.InCell || !sel.Collapsed && intersects(r, tbl)
	for _, n := range selected {
		if ref, ok := cells.Ref(n); ok {
			sel.SelectedCells = append(sel.SelectedCells, ref)
		}
	}
	return sel
}

// Surroundings 表格前后相邻的块
func Surroundings(tbl *html.Node) table.Surroundings {
	return table.Surroundings{
		Previous: blockKind(siblingBlock(tbl, false)),
		Next:     blockKind(siblingBlock(tbl, true)),
	}
}

// siblingBlock 跳过空白文本后的相邻兄弟节点
func siblingBlock(n *html.Node, forward bool) *html.Node {
	step := func(x *html.Node) *html.Node {
		if forward {
			return x.NextSibling
		}
		return x.PrevSibling
	}
	for x := step(n); x != nil; x = step(x) {
		if x.Type == html.ElementNode || IsText(x) && strings.TrimSpace(x.Data) != "" {
			return x
		}
	}
	return nil
}

func blockKind(n *html.Node) table.BlockKind {
	switch {
	case n == nil:
		return table.BlockNone
	case IsElement(n, "table"):
		return table.BlockTable
	}
	return table.BlockDefault
}

// RangeAt 把模型位置映射回 DOM 选区
func RangeAt(tbl *html.Node, cells *CellMap, pos table.Position) Range {
	switch pos.Kind {
	case table.InCell:
		cell := cells.Node(pos.Cell)
		if cell == nil {
			break
		}
		child := ChildAt(cell, pos.Inline)
		if IsText(child) {
			offset := pos.Offset
			if l := utf8.RuneCountInString(child.Data); offset > l {
				offset = l
			}
			return Caret(child, offset)
		}
		inline := pos.Inline
		if n := ChildCount(cell); inline > n {
			inline = n
		}
		return Caret(cell, inline)
	case table.BeforeTable:
		return Caret(tbl.Parent, Index(tbl))
	case table.AfterTable:
		if next := siblingBlock(tbl, true); next != nil {
			return startOf(next)
		}
		return Caret(tbl.Parent, Index(tbl)+1)
	case table.InPreviousBlock:
		if prev := siblingBlock(tbl, false); prev != nil {
			return endOf(prev)
		}
		return Caret(tbl.Parent, Index(tbl))
	}
	return Caret(tbl.Parent, Index(tbl))
}

// startOf 节点内容的起始位置
func startOf(n *html.Node) Range {
	for n.Type == html.ElementNode && n.FirstChild != nil && !IsElement(n.FirstChild, "br") {
		n = n.FirstChild
	}
	return Caret(n, 0)
}

// endOf 节点内容的末尾位置
func endOf(n *html.Node) Range {
	for n.Type == html.ElementNode && n.LastChild != nil {
		if IsElement(n.LastChild, "br") {
			return Caret(n, ChildCount(n)-1)
		}
		n = n.LastChild
	}
	return Caret(n, RuneLen(n))
}

// intersects 选区是否与节点相交
func intersects(r Range, n *html.Node) bool {
	if Contains(n, r.StartContainer) || Contains(n, r.EndContainer) {
		return true
	}
	return comparePoint(r.StartContainer, r.StartOffset, n) < 0 && comparePoint(r.EndContainer, r.EndOffset, n) > 0
}

// comparePoint 比较边界点与节点的文档顺序：-1 在节点之前，1 在节点之后
func comparePoint(container *html.Node, offset int, n *html.Node) int {
	order := documentOrder(root(n))
	point := order[container]
	if container.Type == html.ElementNode {
		if child := ChildAt(container, offset); child != nil {
			point = order[child]
			if point <= order[n] {
				return -1
			}
			return 1
		}
		if lastDescendantOrder(container, order) < order[n] {
			return -1
		}
		return 1
	}
	if point < order[n] {
		return -1
	}
	return 1
}

func root(n *html.Node) *html.Node {
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}

func documentOrder(r *html.Node) map[*html.Node]int {
	order := make(map[*html.Node]int)
	i := 0
	var walk func(x *html.Node)
	walk = func(x *html.Node) {
		order[x] = i
		i++
		for c := x.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(r)
	return order
}

func lastDescendantOrder(n *html.Node, order map[*html.Node]int) int {
	for n.LastChild != nil {
		n = n.LastChild
	}
	return order[n]
}

func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if IsElement(c, tag) {
			out = append(out, c)
		}
		out = append(out, findAll(c, tag)...)
	}
	return out
}

// TextOffset 边界点在单元格文本中的字符偏移
func TextOffset(cell, container *html.Node, offset int) int {
	if !Contains(cell, container) {
		return 0
	}
	return textBefore(cell, container, offset)
}

// AtTextOffset 把单元格文本中的字符偏移映射回边界点
func AtTextOffset(cell *html.Node, n int) Range {
	var last *html.Node
	var found *Range
	var walk func(x *html.Node)
	walk = func(x *html.Node) {
		for c := x.FirstChild; c != nil && found == nil; c = c.NextSibling {
			if c.Type != html.TextNode {
				walk(c)
				continue
			}
			last = c
			l := utf8.RuneCountInString(c.Data)
			if n <= l {
				r := Caret(c, n)
				found = &r
				return
			}
			n -= l
		}
	}
	walk(cell)
	switch {
	case found != nil:
		return *found
	case last != nil:
		return Caret(last, RuneLen(last))
	}
	return Caret(cell, 0)
}
