package analyzer

import (
	"encoding/xml"
	"io"
)

// Dumper writes the structural XML dump one token at a time. Each Dumper
// carries its own nesting state.
type Dumper struct {
	w     io.Writer
	enc   *xml.Encoder
	stack []string
	err   error
}

func NewDumper(w io.Writer) *Dumper {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return &Dumper{w: w, enc: enc}
}

// Attr is a name/value pair; empty values are omitted.
type Attr struct {
	Name, Value string
}

func (d *Dumper) Start(name string, attrs ...Attr) {
	if d == nil || d.err != nil {
		return
	}
	start := xml.StartElement{Name: xml.Name{Local: name}}
	for _, a := range attrs {
		if a.Value == "" {
			continue
		}
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: a.Name}, Value: a.Value})
	}
	d.stack = append(d.stack, name)
	d.write(start)
}

func (d *Dumper) End() {
	if d == nil || d.err != nil || len(d.stack) == 0 {
		return
	}
	name := d.stack[len(d.stack)-1]
	d.stack = d.stack[:len(d.stack)-1]
	d.write(xml.EndElement{Name: xml.Name{Local: name}})
}

func (d *Dumper) write(tok xml.Token) {
	if d.err = d.enc.EncodeToken(tok); d.err == nil {
		d.err = d.enc.Flush()
	}
}

// Close ends any open elements and terminates the document with a newline.
func (d *Dumper) Close() error {
	if d == nil {
		return nil
	}
	for len(d.stack) > 0 {
		d.End()
	}
	if d.err != nil {
		return d.err
	}
	_, err := io.WriteString(d.w, "\n")
	return err
}

func (d *Dumper) Err() error {
	if d == nil {
		return nil
	}
	return d.err
}
