package format

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// WriteEDN writes maps as keyword maps with sorted keys, slices as vectors and JSON null as nil.
func WriteEDN(w io.Writer, v any, pretty bool) error {
	x, err := generic(v)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	p := ednPrinter{w: bw, pretty: pretty}
	p.value(x, 0)
	_ = bw.WriteByte('\n')
	return bw.Flush()
}

type ednPrinter struct {
	w      *bufio.Writer
	pretty bool
}

func (p ednPrinter) value(v any, depth int) {
	switch t := v.(type) {
	case nil:
		p.w.WriteString("nil")
	case bool:
		p.w.WriteString(strconv.FormatBool(t))
	case string:
		p.w.WriteString(strconv.Quote(t))
	case float64:
		if t == float64(int64(t)) {
			p.w.WriteString(strconv.FormatInt(int64(t), 10))
			return
		}
		p.w.WriteString(strconv.FormatFloat(t, 'f', -1, 64))
	case []any:
		p.seq('[', ']', len(t), depth, func(i int) { p.value(t[i], depth+1) })
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		p.seq('{', '}', len(keys), depth, func(i int) {
			p.w.WriteString(keyword(keys[i]))
			p.w.WriteByte(' ')
			p.value(t[keys[i]], depth+1)
		})
	default:
		p.w.WriteString(strconv.Quote(fmt.Sprint(v)))
	}
}

func (p ednPrinter) seq(open, close byte, n, depth int, elem func(i int)) {
	p.w.WriteByte(open)
	if n == 0 {
		p.w.WriteByte(close)
		return
	}
	for i := 0; i < n; i++ {
		switch {
		case p.pretty:
			p.w.WriteByte('\n')
			p.w.WriteString(strings.Repeat("  ", depth+1))
		case i > 0:
			p.w.WriteByte(' ')
		}
		elem(i)
	}
	if p.pretty {
		p.w.WriteByte('\n')
		p.w.WriteString(strings.Repeat("  ", depth))
	}
	p.w.WriteByte(close)
}

// keyword renders a JSON key as an EDN keyword; whitespace becomes '-'.
func keyword(k string) string {
	return ":" + strings.Join(strings.Fields(k), "-")
}
