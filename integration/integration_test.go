//go:build integration

// Package integration provides integration tests for the Scriptdeck CLI
// using testscript.
package integration

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/jmgilman/scriptdeck/internal/cmd"
)

// TestMain sets up the testscript environment. The scriptdeck command runs
// in-process, so no prebuilt binary is needed.
func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"scriptdeck": scriptdeckMain,
	}))
}

func scriptdeckMain() int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

// TestScripts runs all testscript files in testdata/scripts.
func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/scripts",
		Setup: func(env *testscript.Env) error {
			return setupTestEnv(env)
		},
		Condition: func(cond string) (bool, error) {
			switch cond {
			case "linux":
				return runtime.GOOS == "linux", nil
			case "darwin":
				return runtime.GOOS == "darwin", nil
			default:
				return false, fmt.Errorf("unknown condition: %s", cond)
			}
		},
	})
}

// setupTestEnv configures an isolated home with a config file and a sample
// script definition.
func setupTestEnv(env *testscript.Env) error {
	testHome := filepath.Join(env.WorkDir, "home")
	configDir := filepath.Join(testHome, ".config", "scriptdeck")
	dataDir := filepath.Join(testHome, ".local", "share", "scriptdeck")
	scriptsDir := filepath.Join(configDir, "scripts")
	binDir := filepath.Join(env.WorkDir, "bin")

	for _, dir := range []string{
		configDir,
		scriptsDir,
		binDir,
		filepath.Join(dataDir, "logs"),
		filepath.Join(dataDir, "tmp"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	env.Setenv("HOME", testHome)
	env.Setenv("XDG_CONFIG_HOME", filepath.Join(testHome, ".config"))
	env.Setenv("XDG_DATA_HOME", filepath.Join(testHome, ".local", "share"))

	configPath := filepath.Join(configDir, "config.yaml")
	configContent := fmt.Sprintf(`default:
  owner: tester
storage:
  scripts: %s
  logs: %s/logs
  temp: %s/tmp
download:
  token_ttl: 24h
`, scriptsDir, dataDir, dataDir)

	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	// A sample script the scenarios can run.
	helloScript := filepath.Join(binDir, "hello.sh")
	if err := os.WriteFile(helloScript, []byte("#!/bin/sh\necho \"hello $1\"\n"), 0o755); err != nil {
		return fmt.Errorf("write hello script: %w", err)
	}

	helloDef := fmt.Sprintf(`name: hello
script_path: %s
parameters:
  - name: who
    description: who to greet
`, helloScript)

	if err := os.WriteFile(filepath.Join(scriptsDir, "hello.yaml"), []byte(helloDef), 0o644); err != nil {
		return fmt.Errorf("write hello definition: %w", err)
	}

	return nil
}
