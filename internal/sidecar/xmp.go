package sidecar

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"sort"
	"strings"
)

const (
	nsRDF = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	nsDC  = "http://purl.org/dc/elements/1.1/"
)

var (
	nameSubject     = xml.Name{Space: nsDC, Local: "subject"}
	nameDescription = xml.Name{Space: nsRDF, Local: "Description"}
	nameItem        = xml.Name{Space: nsRDF, Local: "li"}
	utf8BOM         = []byte{0xEF, 0xBB, 0xBF}
)

// prefixes records which prefixes are bound to the dc and rdf namespaces at
// some point in the document. An empty value means no binding is in scope.
type prefixes struct {
	dc  string
	rdf string
}

type span struct {
	start, end int
}

type description struct {
	start       int
	startTagEnd int
	closeStart  int
	selfClosing bool
	qname       string
	inner       prefixes
}

// document is the result of scanning an XMP packet. Offsets index body.
type document struct {
	bom         bool
	body        []byte
	tags        []string
	subjects    []span
	subjectNS   prefixes
	description *description
}

// parseDocument scans data for dc:subject keywords and the splice points
// needed to rewrite it. Elements are matched by namespace URI.
func parseDocument(data []byte) (*document, error) {
	doc := &document{}
	body := data
	if bytes.HasPrefix(body, utf8BOM) {
		doc.bom = true
		body = body[len(utf8BOM):]
	}
	doc.body = body

	dec := xml.NewDecoder(bytes.NewReader(body))
	var (
		ns           nsStack
		depth        int
		subjectDepth = -1
		subjectStart int
		descDepth    = -1
		descClosed   bool
		inContainer  bool
		inItem       bool
		item         strings.Builder
	)

	for {
		start := int(dec.InputOffset())
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name == nameSubject && subjectDepth < 0 {
				if len(doc.subjects) == 0 {
					doc.subjectNS = ns.lookup()
				}
				subjectStart = start
				subjectDepth = depth + 1
			}
			ns.push(t.Attr)
			depth++

			if t.Name == nameDescription && doc.description == nil {
				end := int(dec.InputOffset())
				doc.description = &description{
					start:       start,
					startTagEnd: end,
					selfClosing: bytes.HasSuffix(body[start:end], []byte("/>")),
					qname:       rawQName(body[start:end]),
				}
				descDepth = depth
			}
			if subjectDepth > 0 && depth == subjectDepth+1 && isContainer(t.Name) {
				inContainer = true
			}
			if inContainer && depth == subjectDepth+2 && t.Name == nameItem {
				inItem = true
				item.Reset()
			}

		case xml.CharData:
			if inItem {
				item.Write(t)
			}

		case xml.EndElement:
			if inItem && depth == subjectDepth+2 {
				inItem = false
				if text := strings.TrimSpace(item.String()); text != "" {
					doc.tags = append(doc.tags, text)
				}
			}
			if inContainer && depth == subjectDepth+1 {
				inContainer = false
			}
			if subjectDepth > 0 && depth == subjectDepth {
				doc.subjects = append(doc.subjects, span{start: subjectStart, end: int(dec.InputOffset())})
				subjectDepth = -1
			}
			if depth == descDepth && !descClosed {
				descClosed = true
				doc.description.closeStart = start
				doc.description.inner = ns.lookup()
			}
			ns.pop()
			depth--
		}
	}
	return doc, nil
}

func isContainer(name xml.Name) bool {
	return name.Space == nsRDF && (name.Local == "Bag" || name.Local == "Seq")
}

// render returns the document with its subject list replaced by tags.
// ok is false when there is no rdf:Description to hold the list.
func (d *document) render(tags []string) ([]byte, bool) {
	var out bytes.Buffer
	if d.bom {
		out.Write(utf8BOM)
	}
	body := d.body

	switch {
	case len(d.subjects) > 0:
		first := d.subjects[0]
		out.Write(body[:first.start])
		writeSubject(&out, tags, d.subjectNS, lineIndent(body, first.start))
		cursor := first.end
		for _, extra := range d.subjects[1:] {
			out.Write(body[cursor:extra.start])
			cursor = extra.end
		}
		out.Write(body[cursor:])
		return out.Bytes(), true

	case d.description != nil && d.description.selfClosing:
		desc := d.description
		indent := lineIndent(body, desc.start)
		out.Write(body[:desc.startTagEnd-2])
		out.WriteString(">\n")
		out.WriteString(indent + " ")
		writeSubject(&out, tags, desc.inner, indent+" ")
		out.WriteString("\n" + indent + "</" + desc.qname + ">")
		out.Write(body[desc.startTagEnd:])
		return out.Bytes(), true

	case d.description != nil:
		desc := d.description
		out.Write(body[:desc.closeStart])
		if indent, ok := wholeLineIndent(body, desc.closeStart); ok {
			out.WriteString(" ")
			writeSubject(&out, tags, desc.inner, indent+" ")
			out.WriteString("\n" + indent)
		} else {
			writeSubject(&out, tags, desc.inner, "")
		}
		out.Write(body[desc.closeStart:])
		return out.Bytes(), true
	}
	return nil, false
}

// freshDocument renders a minimal XMP packet holding tags.
func freshDocument(tags []string) []byte {
	var out bytes.Buffer
	out.WriteString(`<x:xmpmeta xmlns:x="adobe:ns:meta/" x:xmptk="Adobe XMP Core 5.6-c140">` + "\n")
	out.WriteString(` <rdf:RDF xmlns:rdf="` + nsRDF + `">` + "\n")
	out.WriteString(`  <rdf:Description rdf:about=""` + "\n")
	out.WriteString(`    xmlns:dc="` + nsDC + `">` + "\n")
	out.WriteString("   ")
	writeSubject(&out, tags, prefixes{dc: "dc", rdf: "rdf"}, "   ")
	out.WriteString("\n")
	out.WriteString("  </rdf:Description>\n")
	out.WriteString(" </rdf:RDF>\n")
	out.WriteString("</x:xmpmeta>\n")
	return out.Bytes()
}

// writeSubject writes a dc:subject element. The first line is written at
// the current position; following lines are prefixed with indent. Missing
// prefix bindings are declared on the element that needs them.
func writeSubject(out *bytes.Buffer, tags []string, p prefixes, indent string) {
	dc, dcDecl := p.dc, ""
	if dc == "" {
		dc, dcDecl = "dc", ` xmlns:dc="`+nsDC+`"`
	}
	rdf, rdfDecl := p.rdf, ""
	if rdf == "" {
		rdf, rdfDecl = "rdf", ` xmlns:rdf="`+nsRDF+`"`
	}

	out.WriteString("<" + dc + ":subject" + dcDecl + ">\n")
	out.WriteString(indent + " <" + rdf + ":Bag" + rdfDecl + ">\n")
	for _, tag := range tags {
		out.WriteString(indent + "  <" + rdf + ":li>")
		_ = xml.EscapeText(out, []byte(tag))
		out.WriteString("</" + rdf + ":li>\n")
	}
	out.WriteString(indent + " </" + rdf + ":Bag>\n")
	out.WriteString(indent + "</" + dc + ":subject>")
}

// lineIndent returns the whitespace between the start of the line and pos,
// or "" when other text precedes pos on that line.
func lineIndent(body []byte, pos int) string {
	indent, _ := wholeLineIndent(body, pos)
	return indent
}

func wholeLineIndent(body []byte, pos int) (string, bool) {
	lineStart := bytes.LastIndexByte(body[:pos], '\n') + 1
	prefix := body[lineStart:pos]
	if len(bytes.TrimLeft(prefix, " \t")) != 0 {
		return "", false
	}
	return string(prefix), true
}

// rawQName returns the element name as written in a start tag.
func rawQName(tag []byte) string {
	tag = bytes.TrimPrefix(tag, []byte("<"))
	end := bytes.IndexAny(tag, " \t\r\n/>")
	if end < 0 {
		return string(tag)
	}
	return string(tag[:end])
}

// nsStack tracks prefix declarations per open element.
type nsStack struct {
	frames []map[string]string
}

func (s *nsStack) push(attrs []xml.Attr) {
	var frame map[string]string
	for _, attr := range attrs {
		if attr.Name.Space != "xmlns" {
			continue
		}
		if frame == nil {
			frame = make(map[string]string)
		}
		frame[attr.Name.Local] = attr.Value
	}
	s.frames = append(s.frames, frame)
}

func (s *nsStack) pop() {
	if len(s.frames) > 0 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

func (s *nsStack) lookup() prefixes {
	return prefixes{dc: s.prefixFor(nsDC, "dc"), rdf: s.prefixFor(nsRDF, "rdf")}
}

// prefixFor returns a prefix currently bound to uri, preferring preferred.
func (s *nsStack) prefixFor(uri, preferred string) string {
	seen := make(map[string]struct{})
	var candidates []string
	for i := len(s.frames) - 1; i >= 0; i-- {
		for prefix, value := range s.frames[i] {
			if _, shadowed := seen[prefix]; shadowed {
				continue
			}
			seen[prefix] = struct{}{}
			if value == uri {
				candidates = append(candidates, prefix)
			}
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	sort.Strings(candidates)
	for _, c := range candidates {
		if c == preferred {
			return c
		}
	}
	return candidates[0]
}
