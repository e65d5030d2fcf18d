package cli

import (
	"fmt"
	"strconv"
	"strings"

	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/net/html"

	"github.com/nerdneilsfield/go-wysiwyg-table/internal/dom"
	"github.com/nerdneilsfield/go-wysiwyg-table/pkg/table"
)

func newInspectCommand(a *app) *cobra.Command {
	var cells bool
	cmd := &cobra.Command{
		Use:   "inspect [flags] [file]",
		Short: "列出文档中表格和游离表格部件的形态",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := a.readInput(cmd, inputArg(args))
			if err != nil {
				return err
			}
			doc, err := dom.ParseBody(src)
			if err != nil {
				return err
			}
			return a.inspect(cmd, doc, cells)
		},
	}
	cmd.Flags().BoolVar(&cells, "cells", false, "同时打印每个表格的单元格内容")
	return cmd
}

func (a *app) inspect(cmd *cobra.Command, doc *dom.Document, cells bool) error {
	out := cmd.OutOrStdout()
	ids := dom.NewTableIDs(a.cfg.TableClassPrefix)

	var nodes []*html.Node
	for _, n := range dom.Children(doc.Body()) {
		if dom.IsTableish(n) {
			nodes = append(nodes, n)
		}
	}
	if len(nodes) == 0 {
		_, err := fmt.Fprintln(out, "没有找到表格")
		return err
	}

	heading(out, "表格 (%d)", len(nodes))
	tw := prettytable.NewWriter()
	tw.SetOutputMirror(out)
	tw.SetStyle(prettytable.StyleLight)
	tw.AppendHeader(prettytable.Row{"#", "节点", "ID", "行", "单元格", "表头", "表体", "需补齐", "合法"})
	for i, n := range nodes {
		shape := table.Inspect(dom.ReadFragment(n))
		id, valid := "-", false
		if dom.IsElement(n, "table") {
			if v, ok := ids.Existing(n); ok {
				id = v
			}
			t, _ := dom.ReadTable(n)
			valid = table.IsValid(t) && len(dom.ElementChildren(n, "tr")) == 0
		}
		tw.AppendRow(prettytable.Row{
			i, n.Data, id, shape.RowCount, joinInts(shape.CellCounts),
			yesNo(shape.HasHead), yesNo(shape.HasBody), yesNo(shape.NeedsStuffing), yesNo(valid),
		})
	}
	tw.Render()

	if !cells {
		return nil
	}
	for i, n := range nodes {
		if !dom.IsElement(n, "table") {
			continue
		}
		t, _ := dom.ReadTable(n)
		heading(out, "\n表格 #%d", i)
		gw := prettytable.NewWriter()
		gw.SetOutputMirror(out)
		gw.SetStyle(prettytable.StyleLight)
		for r, row := range t.Grid() {
			pr := prettytable.Row{r}
			for _, text := range row {
				pr = append(pr, text)
			}
			if r < t.HeadRowCount() {
				gw.AppendHeader(pr)
				continue
			}
			gw.AppendRow(pr)
		}
		gw.Render()
	}
	return nil
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

func yesNo(b bool) string {
	if b {
		return "是"
	}
	return "否"
}
