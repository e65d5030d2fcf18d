package dom

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNoBody 解析结果中没有 body
var ErrNoBody = errors.New("document has no body")

// Document 可编辑区域。Body 之下可以存放 HTML 解析器不会产生的游离表格片段。
type Document struct {
	root *html.Node
	body *html.Node
}

// Parse 解析完整文档或 body 内容
func Parse(s string) (*Document, error) {
	gq, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	body := gq.Find("body")
	if body.Length() == 0 {
		return nil, ErrNoBody
	}
	return &Document{root: gq.Nodes[0], body: body.Nodes[0]}, nil
}

// NewDocument 创建空文档并追加给定节点
func NewDocument(nodes ...*html.Node) *Document {
	doc, err := Parse("")
	if err != nil {
		// 空字符串总能解析出 html/head/body
		panic(err)
	}
	Append(doc.body, nodes...)
	return doc
}

// ParseBody 解析 body 内容。以表格片段开头的内容按表格上下文解析，
// 这样游离的 tr、td、thead、tbody 会保留下来。
func ParseBody(s string) (*Document, error) {
	nodes, err := ParseFragment(s)
	if err != nil {
		return nil, err
	}
	return NewDocument(nodes...), nil
}

// Body 返回 body 元素
func (d *Document) Body() *html.Node {
	return d.body
}

// Find 在 body 下按 CSS 选择器查找
func (d *Document) Find(selector string) *goquery.Selection {
	return NewSelection(d.body).Find(selector)
}

// NewSelection 以节点为根创建 goquery 选择集
func NewSelection(n *html.Node) *goquery.Selection {
	return goquery.NewDocumentFromNode(n).Selection
}

// HTML 渲染 body 内容
func (d *Document) HTML() string {
	return InnerHTML(d.body)
}

// Clone 深拷贝 body 内容，用于撤销快照
func (d *Document) Clone() *Document {
	cp := NewDocument()
	for c := d.body.FirstChild; c != nil; c = c.NextSibling {
		cp.body.AppendChild(CloneNode(c))
	}
	return cp
}

// Replace 用另一文档的内容替换当前 body
func (d *Document) Replace(other *Document) {
	Empty(d.body)
	for _, c := range Children(other.body) {
		d.body.AppendChild(Detach(c))
	}
}

// CloneNode 深拷贝节点
func CloneNode(n *html.Node) *html.Node {
	cp := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		cp.AppendChild(CloneNode(c))
	}
	return cp
}

var leadingTag = regexp.MustCompile(`^\s*<([a-zA-Z][a-zA-Z0-9]*)`)

// fragmentContext 根据片段的首个标签选择解析上下文
func fragmentContext(s string) *html.Node {
	tag := "body"
	if m := leadingTag.FindStringSubmatch(s); m != nil {
		switch strings.ToLower(m[1]) {
		case "td", "th":
			tag = "tr"
		case "tr":
			tag = "tbody"
		case "thead", "tbody", "tfoot", "caption", "colgroup":
			tag = "table"
		}
	}
	return &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
}

// ParseFragment 解析 HTML 片段（如剪贴板内容）
func ParseFragment(s string) ([]*html.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(s), fragmentContext(s))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML fragment: %w", err)
	}
	return nodes, nil
}
