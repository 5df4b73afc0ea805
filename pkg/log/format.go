package log

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

const defaultTimestampFormat = time.RFC3339Nano

// TextFormatter renders entries as a single human-readable line:
//
//	2024-01-02T15:04:05.123Z INFO  queue put queue=orders pos=3
type TextFormatter struct {
	TimestampFormat  string
	DisableTimestamp bool
	ShowCaller       bool
}

func (f *TextFormatter) Format(e *Entry) ([]byte, error) {
	var buf bytes.Buffer
	if !f.DisableTimestamp {
		layout := f.TimestampFormat
		if layout == "" {
			layout = defaultTimestampFormat
		}
		buf.WriteString(e.Timestamp.Format(layout))
		buf.WriteByte(' ')
	}
	fmt.Fprintf(&buf, "%-5s %s", e.Level.String(), e.Message)
	for _, k := range sortedKeys(e.Fields) {
		fmt.Fprintf(&buf, " %s=%v", k, e.Fields[k])
	}
	if f.ShowCaller && e.Caller != "" {
		buf.WriteString(" caller=")
		buf.WriteString(e.Caller)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// JSONFormatter renders entries as one JSON object per line. Fields are
// emitted at the top level next to ts, level and msg.
type JSONFormatter struct {
	TimestampFormat string
}

func (f *JSONFormatter) Format(e *Entry) ([]byte, error) {
	layout := f.TimestampFormat
	if layout == "" {
		layout = defaultTimestampFormat
	}
	out := make(map[string]interface{}, len(e.Fields)+4)
	for k, v := range e.Fields {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		out[k] = v
	}
	out["ts"] = e.Timestamp.Format(layout)
	out["level"] = e.Level.String()
	out["msg"] = e.Message
	if e.Caller != "" {
		out["caller"] = e.Caller
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func sortedKeys(m Fields) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
