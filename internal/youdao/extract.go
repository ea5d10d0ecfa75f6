package youdao

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/atone/alfred-youdao/internal/workflow"
)

const (
	phoneticHint   = "按 ↩︎ 听取发音"
	basicMeaning   = "基本释义"
	refineHint     = "按 ⇥ 查询"
	fallbackTitle  = "有道也翻译不出来了"
	fallbackDetail = "尝试一下去网站搜索"
)

// Section names the part of the page an item was extracted from.
type Section string

const (
	SectionTranslation Section = "translation"
	SectionPhonetic    Section = "phonetic"
	SectionDefinition  Section = "definition"
	SectionExplanation Section = "explanation"
)

// Fragment is one piece of extracted content, ready to become an item.
type Fragment struct {
	Section      Section
	Title        string
	Subtitle     string
	Payload      workflow.Payload
	Phonetic     bool
	Autocomplete string
}

// Extract pulls every fragment out of a parsed dictionary page in output
// order: translation, phonetics, then definitions or explanations.
func Extract(doc *goquery.Document, query string) []Fragment {
	var out []Fragment
	if f, ok := extractTranslation(doc, query); ok {
		out = append(out, f)
	}
	if f, ok := extractPhonetic(doc, query); ok {
		out = append(out, f)
	}
	return append(out, extractExplanations(doc, query)...)
}

func extractTranslation(doc *goquery.Document, query string) (Fragment, bool) {
	container := doc.Find("div#fanyi_contentWrp").First()
	if container.Length() == 0 {
		return Fragment{}, false
	}
	p := container.Find("p").First().NextAllFiltered("p").First()
	if p.Length() == 0 {
		return Fragment{}, false
	}
	title := strippedText(p)
	if title == "" {
		return Fragment{}, false
	}
	return Fragment{
		Section:  SectionTranslation,
		Title:    title,
		Subtitle: query,
		Payload:  workflow.NewPayload(query, title),
	}, true
}

func extractPhonetic(doc *goquery.Document, query string) (Fragment, bool) {
	var prons []string
	doc.Find("span.phonetic").Each(func(_ int, s *goquery.Selection) {
		prons = append(prons, strings.Join(strippedStrings(s.Parent()), " "))
	})
	title := strings.Join(prons, Separator)
	if title == "" {
		return Fragment{}, false
	}

	subtitle := phoneticHint
	if IsChinese(query) {
		subtitle = query
	}
	return Fragment{
		Section:  SectionPhonetic,
		Title:    title,
		Subtitle: subtitle,
		Payload:  workflow.NewPayload(query, title),
		Phonetic: true,
	}, true
}

// extractExplanations reads the definition list of an English entry, or the
// clickable translations of a Chinese entry when no definition list exists.
func extractExplanations(doc *goquery.Document, query string) []Fragment {
	if ec := doc.Find("div#ec_contentWrp").First(); ec.Length() > 0 {
		var out []Fragment
		ec.Find("li").Each(func(_ int, li *goquery.Selection) {
			def := strippedText(li)
			if def == "" {
				return
			}
			out = append(out, definitionFragment(query, def))
		})
		return out
	}

	ce := doc.Find("div#ce_contentWrp").First()
	if ce.Length() == 0 {
		return nil
	}
	var out []Fragment
	ce.Find("a.clickable").Each(func(_ int, a *goquery.Selection) {
		text := strippedText(a)
		if text == "" {
			return
		}
		out = append(out, Fragment{
			Section:      SectionExplanation,
			Title:        text,
			Subtitle:     refineHint,
			Payload:      workflow.NewPayload(text, text),
			Autocomplete: text,
		})
	})
	return out
}

// definitionFragment spreads a long definition over title and subtitle so
// neither line runs past MaxSegmentLen.
func definitionFragment(query, def string) Fragment {
	f := Fragment{
		Section:  SectionDefinition,
		Title:    def,
		Subtitle: basicMeaning,
		Payload:  workflow.NewPayload(query, def),
	}
	if utf8.RuneCountInString(def) > MaxSegmentLen {
		segments := Regroup(def, MaxSegmentLen)
		f.Title = segments[0]
		f.Subtitle = strings.Join(segments[1:], Separator)
	}
	return f
}

// strippedStrings returns every descendant text node of the selection,
// trimmed, skipping blanks, comments and non-rendered elements.
func strippedStrings(s *goquery.Selection) []string {
	var out []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				out = append(out, t)
			}
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Template:
				return
			}
		case html.CommentNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return out
}

// strippedText concatenates strippedStrings without a separator.
func strippedText(s *goquery.Selection) string {
	return strings.Join(strippedStrings(s), "")
}
