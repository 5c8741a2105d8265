package bridge

import (
	"github.com/dshills/nvimlink/internal/config"
)

// BuildArgs computes the engine command line from the engine configuration.
// Argument order: embedding flag, pre-config source, post-config load,
// working-directory change, debug listen address, clean mode, alternate
// config path.
func BuildArgs(e config.Engine) []string {
	args := []string{"--embed"}

	if e.PreScript != "" {
		args = append(args, "--cmd", "source "+e.PreScript)
	}
	if e.PostScript != "" {
		args = append(args, "-S", e.PostScript)
	}
	if e.WorkDir != "" {
		args = append(args, "--cmd", "cd "+e.WorkDir)
	}
	if e.DebugListen != "" {
		args = append(args, "--listen", e.DebugListen)
	}
	if e.Clean {
		args = append(args, "--clean")
	}
	if e.ConfigPath != "" {
		args = append(args, "-u", e.ConfigPath)
	}

	return args
}

// BuildEnv computes the extra environment for the engine process. The
// profile, when configured, propagates as NVIM_APPNAME to the child only;
// the controller's own environment is never mutated.
func BuildEnv(e config.Engine) map[string]string {
	if e.Profile == "" {
		return nil
	}
	return map[string]string{"NVIM_APPNAME": e.Profile}
}
