package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"modclash": run,
	}))
}

// TestScripts runs the txtar scripts in testdata against the modclash binary.
func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata",
		Setup: func(env *testscript.Env) error {
			env.Setenv("MODCLASH_ROOT", filepath.Join(env.WorkDir, ".modclash"))
			env.Setenv("NO_COLOR", "1")
			return nil
		},
		UpdateScripts: os.Getenv("MODCLASH_UPDATE_SCRIPTS") != "",
	})
}
