package table

// Repairer 表格结构修复器
//
// 修复器把任意类表格片段（孤立行、孤立 thead/tbody、缺少 table 包裹的分区、
// 或者残缺的 table）补全为恰好一个表头分区、一个表体分区且各行列数一致的表格。
type Repairer struct {
	Caps Capabilities
}

// NewRepairer 创建修复器
func NewRepairer(caps Capabilities) *Repairer {
	return &Repairer{Caps: caps}
}

// Complete 补全片段。ok 为 false 表示片段是空壳，调用方应当丢弃它。
func (r *Repairer) Complete(f *Fragment) (t *Table, ok bool) {
	if f == nil {
		return nil, false
	}

	switch f.Kind {
	case FragmentRow:
		if f.Row == nil || len(f.Row.Cells) == 0 {
			return nil, false
		}
		t = r.fromRow(f.Row)
	case FragmentHead:
		if len(f.Heads) == 0 {
			return nil, false
		}
		t = r.fromHead(mergeSections(SectionHead, f.Heads))
	case FragmentBody:
		if len(f.Bodies) == 0 {
			return nil, false
		}
		t = r.fromBody(mergeSections(SectionBody, f.Bodies))
	default:
		if len(f.Heads) == 0 && len(f.Bodies) == 0 {
			return nil, false
		}
		t = &Table{Attrs: f.Attrs}
		if len(f.Heads) > 0 {
			t.Head = mergeSections(SectionHead, f.Heads)
		}
		if len(f.Bodies) > 0 {
			t.Body = mergeSections(SectionBody, f.Bodies)
		}
	}

	r.Repair(t)
	return t, true
}

// Repair 就地修复表格，返回是否有改动。对合法表格重复调用不会产生改动。
func (r *Repairer) Repair(t *Table) bool {
	changed := r.ensureSections(t)
	if r.normalizeHead(t) {
		changed = true
	}
	if r.ensureRows(t) {
		changed = true
	}
	if r.stuff(t) {
		changed = true
	}
	return changed
}

// fromRow 以孤立行生成对应的另一半分区
func (r *Repairer) fromRow(row *Row) *Table {
	n := len(row.Cells)
	t := &Table{
		Head: &Section{Kind: SectionHead},
		Body: &Section{Kind: SectionBody},
	}
	if row.Cells[0].Kind == HeaderCell {
		t.Head.Rows = []*Row{row}
		t.Body.Rows = []*Row{r.Caps.EmptyRow(DataCell, n)}
	} else {
		t.Head.Rows = []*Row{r.Caps.EmptyRow(HeaderCell, n)}
		t.Body.Rows = []*Row{row}
	}
	return t
}

func (r *Repairer) fromHead(head *Section) *Table {
	n := 0
	if len(head.Rows) > 0 {
		n = countKind(head.Rows[0], HeaderCell)
	}
	return &Table{
		Head: head,
		Body: &Section{Kind: SectionBody, Rows: []*Row{r.Caps.EmptyRow(DataCell, n)}},
	}
}

func (r *Repairer) fromBody(body *Section) *Table {
	n := 0
	if len(body.Rows) > 0 {
		n = countKind(body.Rows[0], DataCell)
	}
	return &Table{
		Head: &Section{Kind: SectionHead, Rows: []*Row{r.Caps.EmptyRow(HeaderCell, n)}},
		Body: body,
	}
}

// ensureSections 缺失的分区以一个空行占位
func (r *Repairer) ensureSections(t *Table) bool {
	changed := false
	if t.Head == nil {
		t.Head = &Section{Kind: SectionHead, Rows: []*Row{{}}}
		changed = true
	}
	if t.Body == nil {
		t.Body = &Section{Kind: SectionBody, Rows: []*Row{{}}}
		changed = true
	}
	return changed
}

// normalizeHead 表头只保留第一行，其余行移到表体顶部并转为数据单元格
func (r *Repairer) normalizeHead(t *Table) bool {
	if len(t.Head.Rows) <= 1 {
		return false
	}
	extra := t.Head.Rows[1:]
	t.Head.Rows = t.Head.Rows[:1]
	for _, row := range extra {
		for _, c := range row.Cells {
			c.Kind = DataCell
		}
	}
	t.Body.Rows = append(append([]*Row{}, extra...), t.Body.Rows...)
	return true
}

// ensureRows 每个分区至少有一行
func (r *Repairer) ensureRows(t *Table) bool {
	changed := false
	for _, s := range []*Section{t.Head, t.Body} {
		if len(s.Rows) == 0 {
			s.Rows = []*Row{{}}
			changed = true
		}
	}
	return changed
}

// stuff 把单元格不足的行补齐到最大单元格数，从不截断
func (r *Repairer) stuff(t *Table) bool {
	shape := InspectTable(t)
	if !shape.NeedsStuffing {
		return false
	}

	for _, row := range t.Head.Rows {
		r.pad(row, HeaderCell, shape.MaxCellCount)
	}
	for _, row := range t.Body.Rows {
		r.pad(row, DataCell, shape.MaxCellCount)
	}
	return true
}

func (r *Repairer) pad(row *Row, kind CellKind, n int) {
	for len(row.Cells) < n {
		row.Cells = append(row.Cells, r.Caps.EmptyCell(kind))
	}
}

// IsValid 检查表格是否满足结构不变量
func IsValid(t *Table) bool {
	if t == nil || t.Head == nil || t.Body == nil {
		return false
	}
	if len(t.Head.Rows) != 1 || len(t.Body.Rows) == 0 {
		return false
	}
	return !InspectTable(t).NeedsStuffing
}

func mergeSections(kind SectionKind, sections []*Section) *Section {
	if len(sections) == 1 {
		sections[0].Kind = kind
		return sections[0]
	}
	merged := &Section{Kind: kind}
	for _, s := range sections {
		merged.Rows = append(merged.Rows, s.Rows...)
	}
	return merged
}

func countKind(row *Row, kind CellKind) int {
	n := 0
	for _, c := range row.Cells {
		if c.Kind == kind {
			n++
		}
	}
	return n
}
