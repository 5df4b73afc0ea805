package queue

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/cel-go/cel"
)

// itemFilter is a compiled CEL predicate over an item. The zero value
// matches everything.
type itemFilter struct {
	prog cel.Program
}

// compileFilter builds a predicate from expr. Available variables:
//
//	sequence int, ts_ms int, size int, text string, json dyn, now_ms int
//
// e.g. `size < 1024 && json.kind == "order"`.
func compileFilter(expr string) (itemFilter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return itemFilter{}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("sequence", cel.IntType),
		cel.Variable("ts_ms", cel.IntType),
		cel.Variable("size", cel.IntType),
		cel.Variable("text", cel.StringType),
		cel.Variable("json", cel.DynType),
		cel.Variable("now_ms", cel.IntType),
	)
	if err != nil {
		return itemFilter{}, err
	}
	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return itemFilter{}, fmt.Errorf("%w: %v", ErrInvalidFilter, iss.Err())
	}
	prog, err := env.Program(ast)
	if err != nil {
		return itemFilter{}, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	return itemFilter{prog: prog}, nil
}

// match evaluates the predicate. Evaluation errors (for example a missing
// json field) count as no match.
func (f itemFilter) match(it Item, now time.Time) bool {
	if f.prog == nil {
		return true
	}
	var doc any
	_ = json.Unmarshal(it.Payload, &doc)
	out, _, err := f.prog.Eval(map[string]any{
		"sequence": int64(it.Seq),
		"ts_ms":    it.EnqueuedAt.UnixMilli(),
		"size":     int64(len(it.Payload)),
		"text":     string(it.Payload),
		"json":     doc,
		"now_ms":   now.UnixMilli(),
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
