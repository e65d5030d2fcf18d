package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func headWith(cells ...*Cell) *Section {
	return &Section{Kind: SectionHead, Rows: []*Row{{Cells: cells}}}
}

func TestAlignMarker(t *testing.T) {
	tests := []struct {
		text  string
		align Align
		want  string
	}{
		{"Name", AlignLeft, ":---"},
		{"Age", AlignNone, "---"},
		{"Description", AlignNone, "-----------"},
		{"Description", AlignRight, "----------:"},
		{"Description", AlignCenter, ":---------:"},
		{"x", AlignCenter, ":---:"},
		{"", AlignNone, "---"},
		{"@cols=2:ab", AlignNone, "---"},
		{"名字", AlignNone, "----"},
	}

	for _, tt := range tests {
		t.Run(tt.text+"/"+tt.align.String(), func(t *testing.T) {
			c := NewCell(HeaderCell, tt.text)
			c.Align = tt.align
			assert.Equal(t, tt.want, AlignMarker(c))
		})
	}
}

func TestSerializeHead(t *testing.T) {
	name := NewCell(HeaderCell, "Name")
	name.Align = AlignLeft
	head := headWith(name, NewCell(HeaderCell, "Age"))

	assert.Equal(t, "| :--- | --- |", SeparatorLine(head))
	assert.Equal(t, "| Name | Age |\n| :--- | --- |\n", SerializeHead(head, "| Name | Age |\n"))
	assert.Equal(t, "| Name | Age |\n| :--- | --- |\n", SerializeHead(head, "| Name | Age |"))
	assert.Equal(t, "", SerializeHead(head, ""))
}

func TestSerializeHeadColSpan(t *testing.T) {
	wide := NewCell(HeaderCell, "Title")
	wide.ColSpan = 3
	head := headWith(wide, NewCell(HeaderCell, "x"))

	assert.Equal(t, "| ----- | --- | --- | --- |", SeparatorLine(head))
}

func TestRenderMarkdown(t *testing.T) {
	tbl := New([]string{"Name", "Age"}, []string{"Ann", "30"}, []string{"a|b", ""})
	tbl.Head.Rows[0].Cells[1].Align = AlignRight
	tbl.Body.Rows[1].Cells[1].Content = []Inline{Break()}
	tbl.Body.Rows[0].Cells[0].Content = []Inline{Text("An"), Break(), Text("n")}

	want := "| Name | Age |\n" +
		"| ---- | ---: |\n" +
		"| An<br>n | 30 |\n" +
		"| a\\|b |  |\n"
	assert.Equal(t, want, RenderMarkdown(tbl))
}

func TestRenderMarkdownFlattensColSpan(t *testing.T) {
	tbl := New([]string{"Group", "c"}, []string{"1", "2", "3"})
	tbl.Head.Rows[0].Cells[0].ColSpan = 2

	want := "| Group |  | c |\n" +
		"| ----- | --- | --- |\n" +
		"| 1 | 2 | 3 |\n"
	assert.Equal(t, want, RenderMarkdown(tbl))
}
