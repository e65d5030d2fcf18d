package dom

import (
	"strconv"
	"strings"
	"sync"

	"github.com/dlclark/regexp2"
	"golang.org/x/net/html"

	"github.com/nerdneilsfield/go-wysiwyg-table/pkg/table"
)

// DefaultTableClassPrefix 表格 ID 类名前缀
const DefaultTableClassPrefix = "te-content-table-"

// TableIDs 生成 "前缀+序号" 形式的表格 ID 类名，并发安全
type TableIDs struct {
	mu     sync.Mutex
	prefix string
	next   int
}

// NewTableIDs 创建 ID 生成器
func NewTableIDs(prefix string) *TableIDs {
	if prefix == "" {
		prefix = DefaultTableClassPrefix
	}
	return &TableIDs{prefix: prefix}
}

// Next 返回新的类名
func (g *TableIDs) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.prefix + strconv.Itoa(g.next)
	g.next++
	return id
}

// Of 返回表格已有的 ID 类名，没有时分配一个
func (g *TableIDs) Of(tbl *html.Node) string {
	if id, ok := g.Existing(tbl); ok {
		return id
	}
	id := g.Next()
	AddClass(tbl, id)
	return id
}

// Existing 返回表格已有的 ID 类名，不修改表格
func (g *TableIDs) Existing(tbl *html.Node) (string, bool) {
	v, _ := Attr(tbl, "class")
	for _, c := range strings.Fields(v) {
		if strings.HasPrefix(c, g.prefix) {
			g.observe(c)
			return c, true
		}
	}
	return "", false
}

// observe 保证后续生成的序号不与已有类名冲突
func (g *TableIDs) observe(class string) {
	n, err := strconv.Atoi(strings.TrimPrefix(class, g.prefix))
	if err != nil {
		return
	}
	g.mu.Lock()
	if n >= g.next {
		g.next = n + 1
	}
	g.mu.Unlock()
}

// Completion 表格补全的统计结果
type Completion struct {
	Repaired  int
	Created   int
	Discarded int
}

// CompleteTables 补全 body 顶层的残缺表格：孤立的 tr、thead、tbody 包装为新表格，
// 结构不合法的 table 原位修复，空壳 table 被删除。
func CompleteTables(body *html.Node, r *table.Repairer, ids *TableIDs) Completion {
	var res Completion
	for _, n := range Children(body) {
		if !IsElement(n, "table", "thead", "tbody", "tr") {
			continue
		}

		if IsElement(n, "table") {
			if t, _ := ReadTable(n); t.Head != nil && t.Body != nil && len(ElementChildren(n, "tr")) == 0 && table.IsValid(t) {
				continue
			}
		}

		t, ok := r.Complete(ReadFragment(n))
		if !ok {
			Detach(n)
			res.Discarded++
			continue
		}

		built := BuildTable(t)
		if IsElement(n, "table") {
			res.Repaired++
		} else {
			AddClass(built, ids.Next())
			res.Created++
		}
		InsertBefore(built, n)
		Detach(n)
	}
	return res
}

// UnwrapBlocksInTables 去掉单元格中的 div 包装，删除 tr 下的 br 以及非空单元格末尾的 br
func UnwrapBlocksInTables(body *html.Node) int {
	changed := 0
	doc := NewSelection(body)
	for _, n := range doc.Find("td div, th div").Nodes {
		if n.Parent != nil {
			Unwrap(n)
			changed++
		}
	}
	for _, n := range doc.Find("tr > br, td > br, th > br").Nodes {
		parent := n.Parent
		if parent == nil {
			continue
		}
		inCell := IsElement(parent, "td", "th")
		if IsElement(parent, "tr") || inCell && TextContent(parent) != "" && parent.LastChild == n {
			Detach(n)
			changed++
		}
	}
	return changed
}

// InsertDefaultBlockBetweenTables 在两个直接相邻的表格之间插入默认块
func InsertDefaultBlockBetweenTables(body *html.Node) int {
	inserted := 0
	for _, n := range NewSelection(body).Find("table").Nodes {
		if next := nextElementSibling(n); IsElement(next, "table") {
			InsertAfter(NewDefaultBlock(), n)
			inserted++
		}
	}
	return inserted
}

func nextElementSibling(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

var trailingCellBreak = regexp2.MustCompile(`<br\s*/?>(?=\s*</t[dh]>)`, regexp2.IgnoreCase)

// StripTrailingCellBreaks 删除导出 HTML 中单元格末尾的 br
func StripTrailingCellBreaks(s string) (string, error) {
	return trailingCellBreak.Replace(s, "", -1, -1)
}

// WrapDanglingCells 把片段顶层的游离单元格包进一个新的 tr
func WrapDanglingCells(nodes []*html.Node) []*html.Node {
	var tr *html.Node
	var out []*html.Node
	for _, n := range nodes {
		if !IsElement(n, "td", "th") {
			out = append(out, n)
			continue
		}
		if tr == nil {
			tr = NewElement("tr")
			out = append(out, tr)
		}
		Append(tr, n)
	}
	return out
}

// WrapDanglingRows 把片段顶层的游离行包进一个新的 tbody，其中的 th 转为 td
func WrapDanglingRows(nodes []*html.Node) []*html.Node {
	var tbody *html.Node
	var out []*html.Node
	for _, n := range nodes {
		if !IsElement(n, "tr") {
			out = append(out, n)
			continue
		}
		for _, th := range ElementChildren(n, "th") {
			td := NewElement("td", th.Attr...)
			Append(td, Children(th)...)
			InsertBefore(td, th)
			Detach(th)
		}
		if tbody == nil {
			tbody = NewElement("tbody")
			out = append(out, tbody)
		}
		Append(tbody, n)
	}
	return out
}

// WrapSections 把片段顶层的 thead、tbody 包进一个新的 table，缺失的一半补一个空行
func WrapSections(nodes []*html.Node) []*html.Node {
	var thead, tbody *html.Node
	var out []*html.Node
	at := -1
	for _, n := range nodes {
		switch {
		case IsElement(n, "thead") && thead == nil:
			thead = n
		case IsElement(n, "tbody") && tbody == nil:
			tbody = n
		default:
			out = append(out, n)
			continue
		}
		if at < 0 {
			at = len(out)
		}
	}
	if at < 0 {
		return nodes
	}

	tbl := NewElement("table")
	if thead == nil {
		thead = NewElement("thead")
		thead.AppendChild(NewElement("tr"))
	}
	if tbody == nil {
		tbody = NewElement("tbody")
		tbody.AppendChild(NewElement("tr"))
	}
	Append(tbl, thead, tbody)

	out = append(out[:at], append([]*html.Node{tbl}, out[at:]...)...)
	return out
}

// NormalizePaste 依次包装游离单元格、游离行和游离分区
func NormalizePaste(nodes []*html.Node) []*html.Node {
	return WrapSections(WrapDanglingRows(WrapDanglingCells(nodes)))
}
