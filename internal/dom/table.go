package dom

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/nerdneilsfield/go-wysiwyg-table/pkg/table"
)

// CellMap 模型单元格坐标与 DOM 单元格节点的对应关系
type CellMap struct {
	rows [][]*html.Node
}

// Node 返回单元格节点
func (m *CellMap) Node(ref table.CellRef) *html.Node {
	if ref.Row < 0 || ref.Row >= len(m.rows) || ref.Col < 0 || ref.Col >= len(m.rows[ref.Row]) {
		return nil
	}
	return m.rows[ref.Row][ref.Col]
}

// Ref 返回单元格节点的坐标
func (m *CellMap) Ref(n *html.Node) (table.CellRef, bool) {
	for r, row := range m.rows {
		for c, cell := range row {
			if cell == n {
				return table.CellRef{Row: r, Col: c}, true
			}
		}
	}
	return table.CellRef{}, false
}

// IsTableish 是否为表格或表格的组成部分
func IsTableish(n *html.Node) bool {
	return IsElement(n, "table", "thead", "tbody", "tr", "td", "th")
}

// ReadFragment 把表格或游离的表格部件读成模型片段
func ReadFragment(n *html.Node) *table.Fragment {
	switch n.Data {
	case "tr":
		return table.RowFragment(readRow(n))
	case "thead":
		return &table.Fragment{Kind: table.FragmentHead, Heads: []*table.Section{readSection(n, table.SectionHead)}}
	case "tbody":
		return &table.Fragment{Kind: table.FragmentBody, Bodies: []*table.Section{readSection(n, table.SectionBody)}}
	}

	f := &table.Fragment{Kind: table.FragmentTable, Attrs: readAttrs(n)}
	var loose *table.Section
	for _, c := range ElementChildren(n) {
		switch c.Data {
		case "thead":
			f.Heads = append(f.Heads, readSection(c, table.SectionHead))
		case "tbody", "tfoot":
			f.Bodies = append(f.Bodies, readSection(c, table.SectionBody))
		case "tr":
			if loose == nil {
				loose = &table.Section{Kind: table.SectionBody}
				f.Bodies = append(f.Bodies, loose)
			}
			loose.Rows = append(loose.Rows, readRow(c))
		}
	}
	return f
}

// ReadTable 读取 table 元素，返回模型和单元格映射。表格不完整时模型按实际结构返回。
func ReadTable(n *html.Node) (*table.Table, *CellMap) {
	t := &table.Table{Attrs: readAttrs(n)}
	m := &CellMap{}
	for _, c := range ElementChildren(n) {
		switch c.Data {
		case "thead":
			if t.Head == nil {
				t.Head = &table.Section{Kind: table.SectionHead}
			}
			readInto(t.Head, c, m)
		case "tbody", "tfoot":
			if t.Body == nil {
				t.Body = &table.Section{Kind: table.SectionBody}
			}
			readInto(t.Body, c, m)
		}
	}
	if t.Head != nil && t.Body != nil {
		m.rows = orderedRows(t, m.rows, n)
	}
	return t, m
}

// orderedRows 保证映射中表头行在前
func orderedRows(t *table.Table, rows [][]*html.Node, n *html.Node) [][]*html.Node {
	if len(rows) == 0 || t.HeadRowCount() == 0 {
		return rows
	}
	first := rows[0]
	if len(first) > 0 && Closest(first[0], n, "thead") != nil {
		return rows
	}
	var head, body [][]*html.Node
	for _, r := range rows {
		if len(r) > 0 && Closest(r[0], n, "thead") != nil {
			head = append(head, r)
		} else {
			body = append(body, r)
		}
	}
	return append(head, body...)
}

func readInto(s *table.Section, n *html.Node, m *CellMap) {
	for _, tr := range ElementChildren(n, "tr") {
		s.Rows = append(s.Rows, readRow(tr))
		m.rows = append(m.rows, ElementChildren(tr, "td", "th"))
	}
}

func readSection(n *html.Node, kind table.SectionKind) *table.Section {
	s := &table.Section{Kind: kind}
	for _, tr := range ElementChildren(n, "tr") {
		s.Rows = append(s.Rows, readRow(tr))
	}
	return s
}

func readRow(n *html.Node) *table.Row {
	r := &table.Row{}
	for _, c := range ElementChildren(n, "td", "th") {
		r.Cells = append(r.Cells, ReadCell(c))
	}
	return r
}

// ReadCell 读取单元格，内联元素以 HTML 原样保存
func ReadCell(n *html.Node) *table.Cell {
	c := &table.Cell{Kind: table.DataCell}
	if n.Data == "th" {
		c.Kind = table.HeaderCell
	}
	for _, a := range n.Attr {
		switch a.Key {
		case "colspan":
			if v, err := strconv.Atoi(strings.TrimSpace(a.Val)); err == nil && v > 1 {
				c.ColSpan = v
			}
		case "align":
			c.Align = table.ParseAlign(a.Val)
		default:
			c.Attrs = append(c.Attrs, table.Attr{Key: a.Key, Val: a.Val})
		}
	}
	if c.Align == table.AlignNone {
		c.Align = styleAlign(n)
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		switch {
		case ch.Type == html.TextNode:
			c.Content = append(c.Content, table.Text(ch.Data))
		case IsElement(ch, "br"):
			c.Content = append(c.Content, table.Break())
		case ch.Type == html.ElementNode:
			c.Content = append(c.Content, table.Raw(OuterHTML(ch)))
		}
	}
	return c
}

// styleAlign 从 style="text-align: x" 中读取对齐方式
func styleAlign(n *html.Node) table.Align {
	style, ok := Attr(n, "style")
	if !ok {
		return table.AlignNone
	}
	for _, decl := range strings.Split(style, ";") {
		k, v, found := strings.Cut(decl, ":")
		if found && strings.TrimSpace(strings.ToLower(k)) == "text-align" {
			return table.ParseAlign(v)
		}
	}
	return table.AlignNone
}

func readAttrs(n *html.Node) []table.Attr {
	var out []table.Attr
	for _, a := range n.Attr {
		out = append(out, table.Attr{Key: a.Key, Val: a.Val})
	}
	return out
}

// BuildTable 由模型生成 table 元素
func BuildTable(t *table.Table) *html.Node {
	n := NewElement("table", htmlAttrs(t.Attrs)...)
	for _, s := range []*table.Section{t.Head, t.Body} {
		if s == nil {
			continue
		}
		sec := NewElement(s.Kind.String())
		for _, r := range s.Rows {
			tr := NewElement("tr")
			for _, c := range r.Cells {
				tr.AppendChild(BuildCell(c))
			}
			sec.AppendChild(tr)
		}
		n.AppendChild(sec)
	}
	return n
}

// BuildCell 由模型生成 td 或 th
func BuildCell(c *table.Cell) *html.Node {
	attrs := htmlAttrs(c.Attrs)
	if c.Align != table.AlignNone {
		attrs = append(attrs, html.Attribute{Key: "align", Val: c.Align.String()})
	}
	if c.ColSpan > 1 {
		attrs = append(attrs, html.Attribute{Key: "colspan", Val: strconv.Itoa(c.ColSpan)})
	}
	n := NewElement(c.Kind.String(), attrs...)
	WriteCell(n, c)
	return n
}

// WriteCell 用模型内容替换单元格节点的子节点
func WriteCell(n *html.Node, c *table.Cell) {
	Empty(n)
	for _, in := range c.Content {
		switch in.Kind {
		case table.InlineText:
			n.AppendChild(NewText(in.Text))
		case table.InlineBreak:
			n.AppendChild(NewBreak())
		case table.InlineRaw:
			nodes, err := html.ParseFragment(strings.NewReader(in.Text), n)
			if err != nil {
				n.AppendChild(NewText(in.Text))
				continue
			}
			Append(n, nodes...)
		}
	}
}

func htmlAttrs(attrs []table.Attr) []html.Attribute {
	var out []html.Attribute
	for _, a := range attrs {
		out = append(out, html.Attribute{Key: a.Key, Val: a.Val})
	}
	return out
}

// ReplaceTable 用模型重新生成表格并替换原节点，保留原表格属性
func ReplaceTable(old *html.Node, t *table.Table) (*html.Node, *CellMap) {
	built := BuildTable(t)
	built.Attr = old.Attr
	InsertBefore(built, old)
	Detach(old)
	_, m := ReadTable(built)
	return built, m
}

// PastedTable 从规整后的剪贴板节点中取出第一个类表格片段
func PastedTable(nodes []*html.Node) (*table.Fragment, bool) {
	for _, n := range nodes {
		if IsTableish(n) {
			return ReadFragment(n), true
		}
	}
	return nil, false
}
