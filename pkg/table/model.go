package table

import (
	"strings"
)

// SectionKind 表格分区类型
type SectionKind int

const (
	// SectionHead 表头分区（thead）
	SectionHead SectionKind = iota
	// SectionBody 表体分区（tbody）
	SectionBody
)

// String 返回分区对应的标签名
func (k SectionKind) String() string {
	if k == SectionHead {
		return "thead"
	}
	return "tbody"
}

// CellKind 单元格类型
type CellKind int

const (
	// DataCell 数据单元格（td）
	DataCell CellKind = iota
	// HeaderCell 表头单元格（th）
	HeaderCell
)

// String 返回单元格对应的标签名
func (k CellKind) String() string {
	if k == HeaderCell {
		return "th"
	}
	return "td"
}

// Align 列对齐方式
type Align int

const (
	AlignNone Align = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// ParseAlign 解析 align 属性或 text-align 样式值
func ParseAlign(s string) Align {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return AlignLeft
	case "center":
		return AlignCenter
	case "right":
		return AlignRight
	default:
		return AlignNone
	}
}

// String 返回对齐方式的属性值
func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return ""
	}
}

// InlineKind 单元格内联内容类型
type InlineKind int

const (
	// InlineText 文本片段
	InlineText InlineKind = iota
	// InlineBreak 换行（br）
	InlineBreak
	// InlineRaw 无法拆解的内联元素，以 HTML 原样保存
	InlineRaw
)

// Inline 单元格中的一段内联内容
type Inline struct {
	Kind InlineKind
	Text string
}

// Text 创建文本片段
func Text(s string) Inline {
	return Inline{Kind: InlineText, Text: s}
}

// Break 创建换行
func Break() Inline {
	return Inline{Kind: InlineBreak}
}

// Raw 创建原样保存的内联 HTML
func Raw(html string) Inline {
	return Inline{Kind: InlineRaw, Text: html}
}

// Attr 保留的 HTML 属性
type Attr struct {
	Key string
	Val string
}

// Cell 单元格
type Cell struct {
	Kind    CellKind
	Align   Align
	ColSpan int
	Attrs   []Attr
	Content []Inline
}

// NewCell 创建带文本的单元格
func NewCell(kind CellKind, text string) *Cell {
	c := &Cell{Kind: kind}
	if text != "" {
		c.Content = []Inline{Text(text)}
	}
	return c
}

// Span 返回单元格占用的列数
func (c *Cell) Span() int {
	if c.ColSpan > 1 {
		return c.ColSpan
	}
	return 1
}

// TextContent 返回单元格的纯文本内容
func (c *Cell) TextContent() string {
	var b strings.Builder
	for _, in := range c.Content {
		if in.Kind == InlineText {
			b.WriteString(in.Text)
		}
	}
	return b.String()
}

// IsEmpty 单元格是否没有任何文本
func (c *Cell) IsEmpty() bool {
	for _, in := range c.Content {
		if in.Kind == InlineRaw || (in.Kind == InlineText && in.Text != "") {
			return false
		}
	}
	return true
}

// SetText 覆盖单元格内容
func (c *Cell) SetText(s string) {
	c.Content = []Inline{Text(s)}
}

// Clone 深拷贝单元格
func (c *Cell) Clone() *Cell {
	cp := *c
	cp.Attrs = append([]Attr(nil), c.Attrs...)
	cp.Content = append([]Inline(nil), c.Content...)
	return &cp
}

// Row 表格行
type Row struct {
	Cells []*Cell
}

// NewRow 使用给定文本创建一行
func NewRow(kind CellKind, texts ...string) *Row {
	r := &Row{}
	for _, t := range texts {
		r.Cells = append(r.Cells, NewCell(kind, t))
	}
	return r
}

// Width 返回计入列合并后的有效列数
func (r *Row) Width() int {
	w := 0
	for _, c := range r.Cells {
		w += c.Span()
	}
	return w
}

// Texts 返回每个单元格的文本
func (r *Row) Texts() []string {
	out := make([]string, len(r.Cells))
	for i, c := range r.Cells {
		out[i] = c.TextContent()
	}
	return out
}

// Clone 深拷贝行
func (r *Row) Clone() *Row {
	cp := &Row{}
	for _, c := range r.Cells {
		cp.Cells = append(cp.Cells, c.Clone())
	}
	return cp
}

// Section 表头或表体分区
type Section struct {
	Kind SectionKind
	Rows []*Row
}

// Clone 深拷贝分区
func (s *Section) Clone() *Section {
	if s == nil {
		return nil
	}
	cp := &Section{Kind: s.Kind}
	for _, r := range s.Rows {
		cp.Rows = append(cp.Rows, r.Clone())
	}
	return cp
}

// Table 完整的表格
type Table struct {
	Attrs []Attr
	Head  *Section
	Body  *Section
}

// New 用表头文本和若干数据行创建表格
func New(header []string, rows ...[]string) *Table {
	t := &Table{
		Head: &Section{Kind: SectionHead, Rows: []*Row{NewRow(HeaderCell, header...)}},
		Body: &Section{Kind: SectionBody},
	}
	for _, r := range rows {
		t.Body.Rows = append(t.Body.Rows, NewRow(DataCell, r...))
	}
	return t
}

// Rows 按文档顺序返回全部行，表头行在前
func (t *Table) Rows() []*Row {
	var rows []*Row
	if t.Head != nil {
		rows = append(rows, t.Head.Rows...)
	}
	if t.Body != nil {
		rows = append(rows, t.Body.Rows...)
	}
	return rows
}

// HeadRowCount 表头中的行数
func (t *Table) HeadRowCount() int {
	if t.Head == nil {
		return 0
	}
	return len(t.Head.Rows)
}

// ColumnCount 以第一行的单元格数作为表格列数
func (t *Table) ColumnCount() int {
	rows := t.Rows()
	if len(rows) == 0 {
		return 0
	}
	return len(rows[0].Cells)
}

// Cell 按全局行号和列号取单元格
func (t *Table) Cell(ref CellRef) *Cell {
	rows := t.Rows()
	if ref.Row < 0 || ref.Row >= len(rows) {
		return nil
	}
	cells := rows[ref.Row].Cells
	if ref.Col < 0 || ref.Col >= len(cells) {
		return nil
	}
	return cells[ref.Col]
}

// SectionOf 返回全局行号所在的分区
func (t *Table) SectionOf(row int) SectionKind {
	if row < t.HeadRowCount() {
		return SectionHead
	}
	return SectionBody
}

// Grid 返回所有行的文本矩阵
func (t *Table) Grid() [][]string {
	rows := t.Rows()
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = r.Texts()
	}
	return out
}

// Clone 深拷贝表格
func (t *Table) Clone() *Table {
	return &Table{
		Attrs: append([]Attr(nil), t.Attrs...),
		Head:  t.Head.Clone(),
		Body:  t.Body.Clone(),
	}
}

// AttrValue 查找属性值
func AttrValue(attrs []Attr, key string) (string, bool) {
	for _, a := range attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// CellRef 单元格坐标，行号为全局行号（表头行为 0）
type CellRef struct {
	Row int
	Col int
}

// FragmentKind 待补全片段的最外层类型
type FragmentKind int

const (
	// FragmentRow 孤立的 tr
	FragmentRow FragmentKind = iota
	// FragmentHead 孤立的 thead
	FragmentHead
	// FragmentBody 孤立的 tbody
	FragmentBody
	// FragmentSections 缺少 table 包裹的 thead + tbody
	FragmentSections
	// FragmentTable 已有 table 元素
	FragmentTable
)

// Fragment 类表格片段，补全之前的形态
type Fragment struct {
	Kind FragmentKind
	// Attrs 仅对 FragmentTable 有意义
	Attrs []Attr
	Row   *Row
	// Heads 和 Bodies 保留片段中出现的全部分区
	Heads  []*Section
	Bodies []*Section
}

// RowFragment 由孤立行构成的片段
func RowFragment(r *Row) *Fragment {
	return &Fragment{Kind: FragmentRow, Row: r}
}

// TableFragment 由已有表格构成的片段
func TableFragment(t *Table) *Fragment {
	f := &Fragment{Kind: FragmentTable, Attrs: t.Attrs}
	if t.Head != nil {
		f.Heads = []*Section{t.Head}
	}
	if t.Body != nil {
		f.Bodies = []*Section{t.Body}
	}
	return f
}

// Rows 按文档顺序返回片段中的全部行
func (f *Fragment) Rows() []*Row {
	if f.Kind == FragmentRow {
		if f.Row == nil {
			return nil
		}
		return []*Row{f.Row}
	}
	var rows []*Row
	for _, s := range f.Heads {
		rows = append(rows, s.Rows...)
	}
	for _, s := range f.Bodies {
		rows = append(rows, s.Rows...)
	}
	return rows
}

// Capabilities 宿主编辑面的能力开关
type Capabilities struct {
	// EmptyCellPlaceholder 空单元格是否放置 br 占位
	EmptyCellPlaceholder bool
	// TrailingBreakOnEnter 回车时是否为单元格补一个结尾 br
	TrailingBreakOnEnter bool
}

// DefaultCapabilities 返回默认能力
func DefaultCapabilities() Capabilities {
	return Capabilities{
		EmptyCellPlaceholder: true,
		TrailingBreakOnEnter: true,
	}
}

// Placeholder 返回空单元格的占位内容
func (c Capabilities) Placeholder() []Inline {
	if c.EmptyCellPlaceholder {
		return []Inline{Break()}
	}
	return nil
}

// EmptyCell 创建空单元格
func (c Capabilities) EmptyCell(kind CellKind) *Cell {
	return &Cell{Kind: kind, Content: c.Placeholder()}
}

// EmptyRow 创建指定单元格数的空行
func (c Capabilities) EmptyRow(kind CellKind, n int) *Row {
	r := &Row{Cells: make([]*Cell, 0, n)}
	for i := 0; i < n; i++ {
		r.Cells = append(r.Cells, c.EmptyCell(kind))
	}
	return r
}
