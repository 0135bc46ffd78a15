package matching

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// XPath is a compiled etree path, optionally ending in an attribute step
// ("/order/item/@sku").
type XPath struct {
	raw  string
	path etree.Path
	attr string
}

// CompileXPath validates and compiles an XPath selector.
func CompileXPath(xpath string) (*XPath, error) {
	if xpath == "" {
		return nil, fmt.Errorf("empty XPath")
	}
	elemPath, attr := xpath, ""
	if i := strings.LastIndex(xpath, "/@"); i >= 0 {
		elemPath, attr = xpath[:i], xpath[i+2:]
		if attr == "" || elemPath == "" {
			return nil, fmt.Errorf("invalid XPath %q: empty attribute step", xpath)
		}
	}
	path, err := etree.CompilePath(elemPath)
	if err != nil {
		return nil, fmt.Errorf("invalid XPath %q: %w", xpath, err)
	}
	return &XPath{raw: xpath, path: path, attr: attr}, nil
}

// String returns the selector source.
func (x *XPath) String() string {
	return x.raw
}

// ParseXML parses an XML body.
func ParseXML(body []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, fmt.Errorf("invalid XML: %w", err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("invalid XML: no root element")
	}
	return doc, nil
}

// Extract returns the trimmed text (or attribute value) selected by x.
func (x *XPath) Extract(doc *etree.Document) (string, bool) {
	if doc == nil {
		return "", false
	}
	elem := doc.FindElementPath(x.path)
	if elem == nil {
		return "", false
	}
	if x.attr == "" {
		return strings.TrimSpace(elem.Text()), true
	}
	attr := elem.SelectAttr(x.attr)
	if attr == nil {
		return "", false
	}
	return attr.Value, true
}
