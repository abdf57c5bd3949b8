//go:build !wasm

package runtime

import "github.com/petermattis/goid"

func getGID() int64 {
	return goid.Get()
}
