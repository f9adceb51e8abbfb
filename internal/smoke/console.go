package smoke

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
)

// console prints the human-readable progress lines of a run.
type console struct {
	w     io.Writer
	ok    *color.Color
	miss  *color.Color
	title *color.Color
}

func newConsole(w io.Writer) *console {
	return &console{
		w:     w,
		ok:    color.New(color.FgGreen),
		miss:  color.New(color.FgRed),
		title: color.New(color.Bold),
	}
}

func (c *console) header(format string, args ...interface{}) {
	_, _ = c.title.Fprintf(c.w, format+"\n", args...)
}

func (c *console) step(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(c.w, format+"\n", args...)
}

func (c *console) success(format string, args ...interface{}) {
	_, _ = c.ok.Fprintf(c.w, "✅ "+format+"\n", args...)
}

func (c *console) failure(format string, args ...interface{}) {
	_, _ = c.miss.Fprintf(c.w, "❌ "+format+"\n", args...)
}

// formatData renders document fields in key order so output is stable.
func formatData(data map[string]interface{}) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %s", k, formatValue(data[k]))
	}
	b.WriteString("}")
	return b.String()
}

// formatField renders a single echoed field; strings are printed as stored.
func formatField(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return formatValue(v)
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "<missing>"
	case string:
		return fmt.Sprintf("%q", val)
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case map[string]interface{}:
		return formatData(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
