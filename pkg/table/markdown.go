package table

import (
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
)

// colsMarker 合并单元格在文本中的标记，如 "@cols=2:"
var colsMarker = regexp.MustCompile(`@cols=[0-9]+:`)

const minDelimiterWidth = 3

// AlignMarker 返回单个表头单元格的对齐分隔符，如 ":---"、"---:"、":----:"
func AlignMarker(c *Cell) string {
	width := runewidth.StringWidth(colsMarker.ReplaceAllString(c.TextContent(), ""))
	left, right := "", ""

	switch c.Align {
	case AlignLeft:
		left = ":"
		width--
	case AlignRight:
		right = ":"
		width--
	case AlignCenter:
		left, right = ":", ":"
		width -= 2
	}

	if width < minDelimiterWidth {
		width = minDelimiterWidth
	}
	return left + strings.Repeat("-", width) + right
}

// extraHeaderCount 合并单元格额外占用的列数之和
func extraHeaderCount(cells []*Cell) int {
	n := 0
	for _, c := range cells {
		if c.ColSpan > 1 {
			n += c.ColSpan - 1
		}
	}
	return n
}

func headCells(head *Section) []*Cell {
	var cells []*Cell
	if head == nil {
		return cells
	}
	for _, r := range head.Rows {
		for _, c := range r.Cells {
			if c.Kind == HeaderCell {
				cells = append(cells, c)
			}
		}
	}
	return cells
}

// SeparatorLine 返回 GFM 对齐行，如 "| :--- | --- |"
func SeparatorLine(head *Section) string {
	cells := headCells(head)

	var b strings.Builder
	b.WriteString("|")
	for _, c := range cells {
		b.WriteString(" ")
		b.WriteString(AlignMarker(c))
		b.WriteString(" |")
	}
	b.WriteString(strings.Repeat(" --- |", extraHeaderCount(cells)))
	return b.String()
}

// SerializeHead 在已渲染的表头文本后追加对齐行。
// 没有表头文本时返回空字符串，因为对齐行没有可依附的表头。
func SerializeHead(head *Section, prior string) string {
	if prior == "" {
		return ""
	}
	if !strings.HasSuffix(prior, "\n") {
		prior += "\n"
	}
	return prior + SeparatorLine(head) + "\n"
}

// RenderMarkdown 把合法表格渲染为 GFM 表格文本。
// 合并单元格被展开为额外的空单元格，使每行的竖线数与对齐行一致。
func RenderMarkdown(t *Table) string {
	if t == nil || t.Head == nil || len(t.Head.Rows) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(SerializeHead(t.Head, renderRow(t.Head.Rows[0])))
	if t.Body != nil {
		for _, r := range t.Body.Rows {
			b.WriteString(renderRow(r))
		}
	}
	return b.String()
}

func renderRow(r *Row) string {
	var b strings.Builder
	b.WriteString("|")
	for _, c := range r.Cells {
		b.WriteString(" ")
		b.WriteString(cellMarkdown(c))
		b.WriteString(" |")
		for k := 1; k < c.Span(); k++ {
			b.WriteString("  |")
		}
	}
	b.WriteString("\n")
	return b.String()
}

// cellMarkdown 单元格内容转义为可放入管道表格的文本
func cellMarkdown(c *Cell) string {
	var parts []string
	for i, in := range c.Content {
		switch in.Kind {
		case InlineText:
			parts = append(parts, strings.ReplaceAll(in.Text, "|", `\|`))
		case InlineRaw:
			parts = append(parts, strings.ReplaceAll(in.Text, "|", `\|`))
		case InlineBreak:
			// 结尾的 br 只是占位
			if i != len(c.Content)-1 {
				parts = append(parts, "<br>")
			}
		}
	}
	return strings.TrimSpace(strings.ReplaceAll(strings.Join(parts, ""), "\n", " "))
}
