package godbtx

import "runtime/debug"

var buildVersion = func() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	for _, dep := range info.Deps {
		if dep.Path == "github.com/dbtkit/godbtx" {
			return dep.Version
		}
	}

	return "unknown"
}()

// BuildVersion reports the module version compiled into the binary.
func BuildVersion() string {
	return buildVersion
}
