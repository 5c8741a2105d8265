package bridge

import (
	"reflect"
	"testing"

	"github.com/dshills/nvimlink/internal/config"
)

func TestBuildArgsMinimal(t *testing.T) {
	args := BuildArgs(config.Engine{Path: "nvim"})
	if !reflect.DeepEqual(args, []string{"--embed"}) {
		t.Errorf("args = %v, want [--embed]", args)
	}
}

func TestBuildArgsFull(t *testing.T) {
	args := BuildArgs(config.Engine{
		Path:        "nvim",
		PreScript:   "/rt/pre.vim",
		PostScript:  "/rt/post.vim",
		WorkDir:     "/work",
		DebugListen: "127.0.0.1:5000",
		Clean:       true,
		ConfigPath:  "/alt/init.vim",
	})

	want := []string{
		"--embed",
		"--cmd", "source /rt/pre.vim",
		"-S", "/rt/post.vim",
		"--cmd", "cd /work",
		"--listen", "127.0.0.1:5000",
		"--clean",
		"-u", "/alt/init.vim",
	}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("args = %v\nwant   %v", args, want)
	}
}

func TestBuildArgsOptionalOmitted(t *testing.T) {
	args := BuildArgs(config.Engine{Path: "nvim", PreScript: "/rt/pre.vim"})

	for _, a := range args {
		switch a {
		case "--clean", "--listen", "-u", "-S":
			t.Errorf("unexpected arg %q for minimal config", a)
		}
	}
}

func TestBuildEnv(t *testing.T) {
	if env := BuildEnv(config.Engine{}); env != nil {
		t.Errorf("BuildEnv without profile = %v, want nil", env)
	}

	env := BuildEnv(config.Engine{Profile: "work"})
	if env["NVIM_APPNAME"] != "work" {
		t.Errorf("env = %v, want NVIM_APPNAME=work", env)
	}
}
