package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/elliotchance/orderedmap/v3"
)

// OrderedMap keeps keys in insertion order so rendered output is stable.
type OrderedMap = orderedmap.OrderedMap[string, any]

func NewOrderedMap() *OrderedMap {
	return orderedmap.NewOrderedMap[string, any]()
}

// OrderedData builds an OrderedMap from alternating keys and values.  Keys
// that are not strings are formatted with %v.
func OrderedData(kv ...any) *OrderedMap {
	m := NewOrderedMap()
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kv[i])
		}
		m.Set(key, kv[i+1])
	}
	return m
}

// NewTextWriter writes aligned key/value text to stdout.
func NewTextWriter() *TextWriter {
	return NewTextWriterTo(os.Stdout)
}

func NewTextWriterTo(w io.Writer) *TextWriter {
	return &TextWriter{
		out: w,
		w:   newTabWriter(w),
	}
}

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

type TextWriter struct {
	indent int
	out    io.Writer
	w      *tabwriter.Writer
}

type TextOpt func(o *txtOpt)

type txtOpt struct {
	leadSpace bool
}

func WithTextOptLeadSpace(space bool) TextOpt {
	return func(o *txtOpt) {
		o.leadSpace = space
	}
}

func (tw *TextWriter) WithIndent(indent int) *TextWriter {
	return &TextWriter{
		indent: indent,
		out:    tw.out,
		w:      newTabWriter(tw.out),
	}
}

// WriteOrdered writes data in insertion order.  Nested OrderedMaps are
// written below their key, indented by two spaces.
func (tw *TextWriter) WriteOrdered(data *OrderedMap, opts ...TextOpt) error {
	o := txtOpt{}
	for _, apply := range opts {
		apply(&o)
	}

	if o.leadSpace {
		if _, err := fmt.Fprintln(tw.out); err != nil {
			return err
		}
	}

	indentStr := strings.Repeat(" ", tw.indent)
	for key, value := range data.AllFromFront() {
		nested, ok := value.(*OrderedMap)
		if !ok {
			fmt.Fprintf(tw.w, "%s%s:\t%s\n", indentStr, key, valueToString(value))
			continue
		}

		fmt.Fprintf(tw.w, "%s%s:\n", indentStr, key)
		// Flush so the nested block lands after its heading.
		if err := tw.w.Flush(); err != nil {
			return err
		}
		if err := tw.WithIndent(tw.indent + 2).WriteOrdered(nested); err != nil {
			return err
		}
	}

	return tw.w.Flush()
}

// Flush writes any buffered output.
func (tw *TextWriter) Flush() error {
	return tw.w.Flush()
}

func valueToString(value any) string {
	if value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case int, int8, int16, int32, int64:
		return fmt.Sprintf("%d", v)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32, float64:
		return fmt.Sprintf("%.2f", v)
	case bool:
		return fmt.Sprintf("%t", v)
	case fmt.Stringer:
		return v.String()
	case error:
		return v.Error()
	default:
		return fmt.Sprintf("%v", value)
	}
}
