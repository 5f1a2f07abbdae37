package manifest

import (
	"errors"
)

var ErrNotSupported = errors.New("manifest registration is only supported on windows")

// registration arguments for wevtutil.exe
func installArgs(manifestPath, resourceFile string) []string {
	args := []string{"im", manifestPath}
	if resourceFile != "" {
		args = append(args, "/rf:"+resourceFile, "/mf:"+resourceFile, "/pf:"+resourceFile)
	}
	return args
}

func uninstallArgs(manifestPath string) []string {
	return []string{"um", manifestPath}
}
