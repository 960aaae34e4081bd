package cbrsa

import "runtime/debug"

// Version is populated at build time via ldflags:
//
//	-ldflags "-X github.com/coinbase/cb-rsa-go/pkg/cbrsa.Version=v1.2.3"
var Version = "v0.0.0-in-progress"

const modulePath = "github.com/coinbase/cb-rsa-go"

// ModuleVersion returns Version when it was set at link time, and otherwise
// the module version recorded in the build info (for binaries installed with
// go install).
func ModuleVersion() string {
	if Version != "v0.0.0-in-progress" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Path == modulePath && info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
		for _, dep := range info.Deps {
			if dep.Path == modulePath {
				return dep.Version
			}
		}
	}
	return Version
}
