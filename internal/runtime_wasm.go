//go:build wasm

package internal

import (
	"runtime"
	"strconv"
	"strings"
	"sync"
)

var (
	wasmOnce    sync.Once
	wasmRuntime *Runtime
)

// GetRuntime returns the instance-wide graph runtime. The goid shims
// are unavailable on js/wasm and a page embeds a single graph, so
// every goroutine shares one runtime; trigger cycles still serialize
// through the queue, and the dispatch transport feeds the embedding
// page.
func GetRuntime() *Runtime {
	wasmOnce.Do(func() {
		wasmRuntime = NewRuntime()
	})
	return wasmRuntime
}

// getGID parses the goroutine id out of the stack trace header,
// "goroutine N [...]".
func getGID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	fields := strings.Fields(string(buf[:n]))
	if len(fields) < 2 {
		return 0
	}
	id, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return 0
	}
	return id
}
