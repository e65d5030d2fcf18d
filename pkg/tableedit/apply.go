package tableedit

import (
	"github.com/nerdneilsfield/go-wysiwyg-table/pkg/table"
)

// Apply 在表格模型上执行单元格级副作用，返回需要宿主在文档层面执行的副作用（保持原顺序）。
func Apply(t *table.Table, caps table.Capabilities, effects []Effect) []Effect {
	var rest []Effect
	for _, e := range effects {
		if e.IsDocumentLevel() || e.Kind == SetSelection {
			rest = append(rest, e)
			continue
		}
		applyCell(t, caps, e)
	}
	return rest
}

func applyCell(t *table.Table, caps table.Capabilities, e Effect) {
	if e.Kind == ClearCells {
		for _, ref := range e.Cells {
			if c := t.Cell(ref); c != nil {
				c.Content = caps.Placeholder()
			}
		}
		return
	}

	c := t.Cell(e.Cell)
	if c == nil {
		return
	}
	switch e.Kind {
	case RemoveBreak:
		if e.Inline >= 0 && e.Inline < len(c.Content) && c.Content[e.Inline].Kind == table.InlineBreak {
			c.Content = append(c.Content[:e.Inline:e.Inline], c.Content[e.Inline+1:]...)
		}
	case RemoveBreaks:
		c.Content = without(c.Content, table.InlineBreak)
	case AppendBreak:
		c.Content = append(c.Content, table.Break())
	case InsertPlaceholder:
		if bare(c) {
			c.Content = caps.Placeholder()
		}
	case NormalizeText:
		c.Content = normalize(c.Content)
	}
}

func without(content []table.Inline, kind table.InlineKind) []table.Inline {
	var out []table.Inline
	for _, in := range content {
		if in.Kind != kind {
			out = append(out, in)
		}
	}
	return out
}

// normalize 合并相邻文本片段并去掉空文本
func normalize(content []table.Inline) []table.Inline {
	var out []table.Inline
	for _, in := range content {
		if in.Kind == table.InlineText {
			if in.Text == "" {
				continue
			}
			if n := len(out); n > 0 && out[n-1].Kind == table.InlineText {
				out[n-1].Text += in.Text
				continue
			}
		}
		out = append(out, in)
	}
	return out
}
