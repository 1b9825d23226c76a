package vertec

import (
	"strings"

	"github.com/beevik/etree"
)

// Selector is one selection criterion in a query, e.g. {"ocl", "projekt"} or
// {"sqlwhere", "datum between '2024-12-01' and '2024-12-31'"}. Order is
// preserved in the emitted XML.
type Selector struct {
	Name  string
	Value string
}

// BuildQuery assembles the XML payload for a Vertec query: a <Selection>
// element with one child per selector and a <Resultdef> listing the requested
// members.
//
// Selector values and member names are inserted verbatim, without XML
// escaping. The Vertec query language uses characters like '>' freely and the
// server expects them raw. Callers own the safety of these strings; none of
// them are derived from user input.
func BuildQuery(selectors []Selector, resultFields []string) string {
	var b strings.Builder
	b.WriteString("<Query><Selection>")
	for _, s := range selectors {
		b.WriteString("<" + s.Name + ">" + s.Value + "</" + s.Name + ">")
	}
	b.WriteString("</Selection><Resultdef>")
	for _, f := range resultFields {
		b.WriteString("<member>" + f + "</member>")
	}
	b.WriteString("</Resultdef></Query>")
	return b.String()
}

// Value is one extracted field of a result record. Present is false when the
// response did not carry the field at all. Ref is set instead of Text when
// the field is an object reference (an element wrapping an <objref> child).
type Value struct {
	Text    string
	Ref     string
	Present bool
}

// Record maps each requested result field to its extracted value. Every
// requested field is present as a key, whether or not the response carried it.
type Record map[string]Value

// ParseResponse extracts records for the given object class from a raw Vertec
// response. The response is navigated as Envelope → Body → QueryResponse →
// <className>; a missing QueryResponse or class node is a
// *ProtocolFormatError, since a successful query always echoes the requested
// class. A single returned object and a list of objects are both normalized
// to a slice.
func ParseResponse(responseXML []byte, className string, expectedFields []string) ([]Record, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(responseXML); err != nil {
		return nil, &ProtocolFormatError{Missing: "well-formed XML: " + err.Error()}
	}

	queryResponse := doc.FindElement("/Envelope/Body/QueryResponse")
	if queryResponse == nil {
		return nil, &ProtocolFormatError{Missing: "QueryResponse"}
	}

	items := queryResponse.SelectElements(className)
	if len(items) == 0 {
		return nil, &ProtocolFormatError{Missing: "object class '" + className + "'"}
	}

	records := make([]Record, 0, len(items))
	for _, item := range items {
		rec := make(Record, len(expectedFields))
		for _, field := range expectedFields {
			rec[field] = extractValue(item, field)
		}
		records = append(records, rec)
	}
	return records, nil
}

func extractValue(item *etree.Element, field string) Value {
	el := item.SelectElement(field)
	if el == nil {
		return Value{}
	}
	if ref := el.SelectElement("objref"); ref != nil {
		return Value{Ref: strings.TrimSpace(ref.Text()), Present: true}
	}
	return Value{Text: strings.TrimSpace(el.Text()), Present: true}
}
