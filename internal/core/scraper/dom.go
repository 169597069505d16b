package scraper

import (
	"strings"

	"golang.org/x/net/html"
)

type matcher func(*html.Node) bool

func tag(name string) matcher {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == name
	}
}

// class 完整 class 名稱比對（.foo）
func class(name string) matcher {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		for _, c := range strings.Fields(attr(n, "class")) {
			if c == name {
				return true
			}
		}
		return false
	}
}

// classLike 子字串比對（[class*='foo']）
func classLike(sub string) matcher {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && strings.Contains(attr(n, "class"), sub)
	}
}

func allOf(ms ...matcher) matcher {
	return func(n *html.Node) bool {
		for _, m := range ms {
			if !m(n) {
				return false
			}
		}
		return true
	}
}

// selector 範圍 + 項目，對應 "scope item" 的後代選擇器；scope 為 nil 時搜尋整份文件
type selector struct {
	scope matcher
	item  matcher
}

func (s selector) selectFrom(root *html.Node) []*html.Node {
	if s.scope == nil {
		return findAll(root, s.item)
	}
	var out []*html.Node
	seen := make(map[*html.Node]bool)
	for _, scope := range findAll(root, s.scope) {
		for _, n := range findAll(scope, s.item) {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// findAll 依文件順序回傳 root 的所有符合後代
func findAll(root *html.Node, m matcher) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if m(c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(root)
	return out
}

func findFirst(root *html.Node, m matcher) *html.Node {
	if nodes := findAll(root, m); len(nodes) > 0 {
		return nodes[0]
	}
	return nil
}

// nodeText 節點內的可見文字，片段以單一空白連接
func nodeText(n *html.Node) string {
	var parts []string
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(cleanText(n.Data)); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"br": true, "dd": true, "div": true, "dl": true, "dt": true,
	"figcaption": true, "footer": true, "form": true, "h1": true,
	"h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true,
	"ol": true, "p": true, "section": true, "table": true, "td": true,
	"th": true, "tr": true, "ul": true,
}

// flattenText 將整份文件攤平為逐行文字：區塊元素換行、NBSP 轉空白、略過 script/style
func flattenText(root *html.Node) string {
	var b strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if skippedElements[n.Data] {
				return
			}
			if blockElements[n.Data] {
				b.WriteByte('\n')
			}
		}
		if n.Type == html.TextNode {
			b.WriteString(cleanText(n.Data))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
		if n.Type == html.ElementNode && blockElements[n.Data] {
			b.WriteByte('\n')
		}
	}
	f(root)

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func cleanText(s string) string {
	return strings.ReplaceAll(s, "\u00a0", " ")
}
