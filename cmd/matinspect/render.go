package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/robert-malhotra/go-mat/mat"
)

// document is the dump of one file.
type document struct {
	Header    header     `yaml:"header" cbor:"header"`
	Variables []variable `yaml:"variables" cbor:"variables"`
}

type header struct {
	Text      string `yaml:"text" cbor:"text"`
	Version   string `yaml:"version" cbor:"version"`
	ByteOrder string `yaml:"byte_order" cbor:"byte_order"`
}

type variable struct {
	Name       string `yaml:"name" cbor:"name"`
	Offset     int64  `yaml:"offset" cbor:"offset"`
	Size       int64  `yaml:"size" cbor:"size"`
	Compressed bool   `yaml:"compressed" cbor:"compressed"`
	Digest     string `yaml:"digest,omitempty" cbor:"digest,omitempty"`
	Value      *node  `yaml:"value" cbor:"value"`
}

// node is a plain rendering of a mat.Value. Matrix data is row-major;
// every other array is column-major.
type node struct {
	Kind   string    `yaml:"kind" cbor:"kind"`
	Dims   []int     `yaml:"dims,flow" cbor:"dims"`
	Class  string    `yaml:"class,omitempty" cbor:"class,omitempty"`
	Text   *string   `yaml:"text,omitempty" cbor:"text,omitempty"`
	Real   []float64 `yaml:"real,flow,omitempty" cbor:"real,omitempty"`
	Imag   []float64 `yaml:"imag,flow,omitempty" cbor:"imag,omitempty"`
	Ints   []int64   `yaml:"ints,flow,omitempty" cbor:"ints,omitempty"`
	Bools  []bool    `yaml:"bools,flow,omitempty" cbor:"bools,omitempty"`
	Fields []field   `yaml:"fields,omitempty" cbor:"fields,omitempty"`
	Elems  []*node   `yaml:"elems,omitempty" cbor:"elems,omitempty"`
}

type field struct {
	Name  string `yaml:"name" cbor:"name"`
	Value *node  `yaml:"value" cbor:"value"`
}

func headerDoc(h mat.Header) header {
	return header{
		Text:      h.Text,
		Version:   fmt.Sprintf("0x%04x", h.Version),
		ByteOrder: h.ByteOrder.String(),
	}
}

func variableDoc(v *mat.Variable) variable {
	return variable{
		Name:       v.Name,
		Offset:     v.Offset,
		Size:       v.Size,
		Compressed: v.Compressed,
		Value:      toNode(v.Value),
	}
}

// toNode converts a value into its plain form. Nil values become nil.
func toNode(v mat.Value) *node {
	if v == nil {
		return nil
	}
	n := &node{Kind: v.Kind().String(), Dims: v.Dims()}
	switch v := v.(type) {
	case *mat.Matrix:
		n.Real = v.Data
	case *mat.ComplexMatrix:
		n.Real, n.Imag = v.Real.Data, v.Imag.Data
	case *mat.Array:
		n.Real = v.Data
	case *mat.ComplexArray:
		n.Real, n.Imag = v.Real.Data, v.Imag.Data
	case mat.Text:
		s := string(v)
		n.Text = &s
	case *mat.CharArray:
		rows := v.Shape[0]
		for i := range rows {
			n.Elems = append(n.Elems, toNode(mat.Text(v.Row(i))))
		}
	case *mat.Logical:
		n.Bools = v.Data
	case *mat.IntArray:
		n.Class = v.Class.String()
		n.Ints = v.Data
	case *mat.Record:
		n.Fields = recordFields(v)
	case *mat.StructArray:
		for _, rec := range v.Elems {
			n.Elems = append(n.Elems, &node{Kind: mat.KindRecord.String(), Dims: []int{1, 1}, Fields: recordFields(rec)})
		}
	case *mat.Cell:
		for _, entry := range v.Data {
			n.Elems = append(n.Elems, toNode(entry))
		}
	}
	return n
}

func recordFields(r *mat.Record) []field {
	var fields []field
	for name, v := range r.Fields() {
		fields = append(fields, field{Name: name, Value: toNode(v)})
	}
	return fields
}

func render(w io.Writer, format string, doc document) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()

	case "cbor":
		em, err := cbor.CoreDetEncOptions().EncMode()
		if err != nil {
			return fmt.Errorf("cbor encoder: %w", err)
		}
		data, err := em.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encoding cbor: %w", err)
		}
		_, err = w.Write(data)
		return err

	default:
		return renderText(w, doc)
	}
}

func renderText(w io.Writer, doc document) error {
	fmt.Fprintf(w, "Header:     %s\n", doc.Header.Text)
	fmt.Fprintf(w, "Version:    %s\n", doc.Header.Version)
	fmt.Fprintf(w, "Byte order: %s\n\n", doc.Header.ByteOrder)

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tDIMS\tSIZE\tCOMPRESSED\tDIGEST")
	for _, v := range doc.Variables {
		digest := v.Digest
		if digest == "" {
			digest = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%t\t%s\n",
			v.Name, v.Value.Kind, dimsString(v.Value.Dims), v.Size, v.Compressed, digest)
	}
	return tw.Flush()
}

func dimsString(dims []int) string {
	s := ""
	for i, d := range dims {
		if i > 0 {
			s += "x"
		}
		s += fmt.Sprint(d)
	}
	return s
}
