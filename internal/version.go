package internal

import (
	"fmt"
	"runtime/debug"
)

// version can be set at link time with -ldflags "-X github.com/Eyevinn/moqtracksel/internal.version=v1.2.3"
var version = ""

// GetVersion returns the version and module information of the running binary.
func GetVersion() string {
	v := version
	if v == "" {
		v = "(devel)"
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
			v = info.Main.Version
		}
	}
	return fmt.Sprintf("moqtracksel %s", v)
}
