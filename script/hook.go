// Package script runs optional user JavaScript hooks against export
// documents. A hook file defines transform(doc) and may amend or replace
// the document before it is written or uploaded; hook errors skip the
// transform and never fail the export.
package script

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dop251/goja"
	"github.com/rs/zerolog/log"
)

const hookTimeout = 10 * time.Second

// Hook wraps a user script file.
type Hook struct {
	src  string
	name string
}

// Load reads a hook script from disk. A missing path returns a nil hook,
// which applies no transform.
func Load(path string) (*Hook, error) {
	if path == "" {
		return nil, nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading export hook: %w", err)
	}
	return &Hook{src: string(src), name: path}, nil
}

// Apply runs transform(doc) over a marshalled export document and returns
// the transformed document re-marshalled with the same two-space indent.
// Any script failure returns the document unchanged.
func (h *Hook) Apply(doc []byte) []byte {
	if h == nil {
		return doc
	}
	out, err := h.run(doc)
	if err != nil {
		log.Warn().Err(err).Str("script", h.name).Msg("export hook skipped")
		return doc
	}
	return out
}

func (h *Hook) run(doc []byte) ([]byte, error) {
	var parsed any
	if err := json.Unmarshal(doc, &parsed); err != nil {
		return nil, err
	}

	vm := goja.New()
	vm.Set("sprintf", fmt.Sprintf)
	vm.Set("println", fmt.Println)

	ctx, cancel := context.WithTimeout(context.Background(), hookTimeout)
	defer cancel()

	type result struct {
		val goja.Value
		err error
	}
	resultCh := make(chan result, 1)

	go func() {
		if _, err := vm.RunString(h.src); err != nil {
			resultCh <- result{nil, err}
			return
		}
		transform, ok := goja.AssertFunction(vm.Get("transform"))
		if !ok {
			resultCh <- result{nil, fmt.Errorf("script %s defines no transform function", h.name)}
			return
		}
		val, err := transform(goja.Undefined(), vm.ToValue(parsed))
		resultCh <- result{val, err}
	}()

	select {
	case <-ctx.Done():
		vm.Interrupt("timeout")
		return nil, fmt.Errorf("script %s timed out: %w", h.name, ctx.Err())
	case res := <-resultCh:
		if res.err != nil {
			return nil, fmt.Errorf("running script %s: %w", h.name, res.err)
		}
		if res.val == nil || goja.IsUndefined(res.val) || goja.IsNull(res.val) {
			return nil, fmt.Errorf("script %s transform returned no value", h.name)
		}
		return json.MarshalIndent(res.val.Export(), "", "  ")
	}
}
