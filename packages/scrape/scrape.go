package scrape

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// LinkName is the name attribute of the anchor ExtractLinkField looks for.
// It matches the single link template this helper was written against; it is
// not a general link extractor.
const LinkName = "URL$1"

// parse reads body as HTML. Pages that are not valid UTF-8 are transcoded
// using the <meta> charset, falling back to windows-1252.
func parse(body []byte) (*goquery.Document, error) {
	if !utf8.Valid(body) {
		enc, name, _ := charset.DetermineEncoding(body, "text/html")
		decoded, err := enc.NewDecoder().Bytes(body)
		if err != nil {
			return nil, fmt.Errorf("decode %s html: %w", name, err)
		}
		body = decoded
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// ExtractInputFields maps the name of every <input> inside a <form> to its
// value. Later inputs win over earlier ones with the same name. Inputs with
// no name end up under the "" key, which callers should ignore.
func ExtractInputFields(body []byte) (map[string]string, error) {
	doc, err := parse(body)
	if err != nil {
		return nil, err
	}

	inputs := make(map[string]string)
	doc.Find("form input").Each(func(_ int, sel *goquery.Selection) {
		name, _ := sel.Attr("name")
		value, _ := sel.Attr("value")
		inputs[name] = value
	})
	return inputs, nil
}

// ExtractLinkField returns the path of the href of the first <a> whose name
// is LinkName. ok is false when there is no such anchor.
func ExtractLinkField(body []byte) (path string, ok bool, err error) {
	doc, err := parse(body)
	if err != nil {
		return "", false, err
	}

	anchor := doc.Find("a").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		name, exists := sel.Attr("name")
		return exists && name == LinkName
	}).First()
	if anchor.Length() == 0 {
		return "", false, nil
	}

	href, _ := anchor.Attr("href")
	u, err := url.Parse(href)
	if err != nil {
		return "", false, fmt.Errorf("parse link href %q: %w", href, err)
	}
	return u.Path, true, nil
}

// Select returns the trimmed text of the first element matching selector,
// or the value of attr on it when attr is not empty. ok is false when
// nothing matches or the attribute is absent.
func Select(body []byte, selector, attr string) (value string, ok bool, err error) {
	doc, err := parse(body)
	if err != nil {
		return "", false, err
	}

	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", false, nil
	}
	if attr != "" {
		value, ok = sel.Attr(attr)
		return value, ok, nil
	}
	return strings.TrimSpace(sel.Text()), true, nil
}
