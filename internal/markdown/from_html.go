package markdown

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/nerdneilsfield/go-wysiwyg-table/internal/dom"
	"github.com/nerdneilsfield/go-wysiwyg-table/pkg/table"
)

var (
	extraBlankLines = regexp.MustCompile(`\n{3,}`)
	blankLineSpaces = regexp.MustCompile(`(?m)^[ \t]+$`)
)

// FromHTML 把编辑区 HTML 转为 Markdown，表格输出为 GFM 管道表格
func (c *Converter) FromHTML(s string) (string, error) {
	doc, err := dom.ParseBody(s)
	if err != nil {
		return "", err
	}
	body := doc.Body()
	dom.CompleteTables(body, c.repairer, c.ids)

	var b strings.Builder
	c.children(body, &b, 0)
	out := blankLineSpaces.ReplaceAllString(b.String(), "")
	out = strings.TrimSpace(extraBlankLines.ReplaceAllString(out, "\n\n"))
	if out == "" {
		return "", nil
	}
	out += "\n"

	if c.format {
		formatted, err := Format([]byte(out))
		if err != nil {
			return "", err
		}
		out = string(formatted)
	}
	return out, nil
}

func (c *Converter) node(n *html.Node, b *strings.Builder, depth int) {
	switch n.Type {
	case html.TextNode:
		if text := strings.TrimSpace(n.Data); text != "" {
			b.WriteString(collapseSpace(n.Data))
		}
		return
	case html.ElementNode:
	default:
		c.children(n, b, depth)
		return
	}

	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		b.WriteString("\n\n" + strings.Repeat("#", int(n.Data[1]-'0')) + " ")
		c.children(n, b, depth)
		b.WriteString("\n\n")
	case "p", "div":
		b.WriteString("\n\n")
		c.children(n, b, depth)
		b.WriteString("\n\n")
	case "strong", "b":
		c.wrap(n, b, depth, "**")
	case "em", "i":
		c.wrap(n, b, depth, "*")
	case "del", "s":
		c.wrap(n, b, depth, "~~")
	case "code":
		c.wrap(n, b, depth, "`")
	case "a":
		href, _ := dom.Attr(n, "href")
		b.WriteString("[")
		c.children(n, b, depth)
		b.WriteString("](" + href + ")")
	case "img":
		src, _ := dom.Attr(n, "src")
		alt, _ := dom.Attr(n, "alt")
		b.WriteString("![" + alt + "](" + src + ")")
	case "ul", "ol":
		b.WriteString("\n")
		c.list(n, b, depth, n.Data == "ol")
		b.WriteString("\n")
	case "blockquote":
		b.WriteString("\n\n")
		for _, line := range strings.Split(dom.TextContent(n), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				b.WriteString("> " + line + "\n")
			}
		}
		b.WriteString("\n")
	case "pre":
		b.WriteString("\n\n```")
		if code := dom.ElementChildren(n, "code"); len(code) > 0 {
			b.WriteString(language(code[0]))
		}
		b.WriteString("\n" + strings.TrimRight(dom.TextContent(n), "\n") + "\n```\n\n")
	case "br":
		if n.NextSibling != nil {
			b.WriteString("  \n")
		}
	case "hr":
		b.WriteString("\n\n---\n\n")
	case "table":
		b.WriteString("\n\n")
		b.WriteString(c.table(n))
		b.WriteString("\n\n")
	default:
		c.children(n, b, depth)
	}
}

func (c *Converter) children(n *html.Node, b *strings.Builder, depth int) {
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		c.node(ch, b, depth)
	}
}

func (c *Converter) wrap(n *html.Node, b *strings.Builder, depth int, mark string) {
	b.WriteString(mark)
	c.children(n, b, depth)
	b.WriteString(mark)
}

func (c *Converter) list(n *html.Node, b *strings.Builder, depth int, ordered bool) {
	counter := 1
	for _, li := range dom.ElementChildren(n, "li") {
		b.WriteString(strings.Repeat("  ", depth))
		if ordered {
			b.WriteString(fmt.Sprintf("%d. ", counter))
			counter++
		} else {
			b.WriteString("- ")
		}
		c.children(li, b, depth+1)
		b.WriteString("\n")
	}
}

// table 修复后的表格按 GFM 输出
func (c *Converter) table(n *html.Node) string {
	t, _ := dom.ReadTable(n)
	c.repairer.Repair(t)
	return table.RenderMarkdown(t)
}

// language 从 "language-go" 或 "lang-go" 形式的 class 中取出语言
func language(n *html.Node) string {
	class, _ := dom.Attr(n, "class")
	for _, prefix := range []string{"language-", "lang-"} {
		if strings.HasPrefix(class, prefix) {
			return strings.TrimPrefix(class, prefix)
		}
	}
	return ""
}

func collapseSpace(s string) string {
	lead := s != "" && strings.TrimLeft(s, " \t\n") != s
	trail := s != "" && strings.TrimRight(s, " \t\n") != s
	out := strings.Join(strings.Fields(s), " ")
	if lead {
		out = " " + out
	}
	if trail {
		out += " "
	}
	return out
}
