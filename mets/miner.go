package mets

import (
	"encoding/xml"
	"io"
)

// Name returns an xml.Name in the METS namespace.
func Name(local string) xml.Name { return xml.Name{Space: NS, Local: local} }

// XLinkType is the xlink:type attribute name.
var XLinkType = xml.Name{Space: XLinkNS, Local: "type"}

// MineAttribute scans the document in r for child elements nested in parent
// elements and returns the value of attr for each, keyed by the child's ID
// or, if the child has none, by the enclosing parent's ID. Children without
// the attribute are not included. Names with an empty Space match any
// namespace.
func MineAttribute(r io.Reader, parent, child, attr xml.Name) (map[string]string, error) {
	dec := newDecoder(r)
	found := map[string]string{}
	var parents []string // IDs of open parent elements
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			line, col := dec.InputPos()
			return nil, &ParseError{Line: line, Column: col, Err: err}
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if matchName(parent, el.Name) {
				parents = append(parents, attrValue(el, xml.Name{Local: "ID"}))
				continue
			}
			if len(parents) == 0 || !matchName(child, el.Name) {
				continue
			}
			val, ok := attrLookup(el, attr)
			if !ok {
				continue
			}
			key := attrValue(el, xml.Name{Local: "ID"})
			if key == "" {
				key = parents[len(parents)-1]
			}
			found[key] = val
		case xml.EndElement:
			if len(parents) > 0 && matchName(parent, el.Name) {
				parents = parents[:len(parents)-1]
			}
		}
	}
	return found, nil
}

func matchName(want, got xml.Name) bool {
	if want.Local != got.Local {
		return false
	}
	return want.Space == "" || want.Space == got.Space
}

func attrLookup(el xml.StartElement, name xml.Name) (string, bool) {
	for _, a := range el.Attr {
		if matchName(name, a.Name) {
			return a.Value, true
		}
	}
	return "", false
}

func attrValue(el xml.StartElement, name xml.Name) string {
	val, _ := attrLookup(el, name)
	return val
}
