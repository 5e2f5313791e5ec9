package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func helloConfig() *Config {
	return &Config{
		Name:       "hello",
		ScriptPath: "/usr/bin/hello",
		Parameters: []Parameter{
			{Name: "verbose", Param: "--verbose", NoValue: true},
			{Name: "name", Param: "--name", Default: "world"},
		},
	}
}

func TestBuildArgs_FlagAndValue(t *testing.T) {
	cfg := helloConfig()

	args := BuildArgs(cfg, Values{"verbose": true, "name": "world"})
	assert.Equal(t, []string{"--verbose", "--name", "world"}, args)
}

func TestBuildArgs_DefaultAppliedWhenUnsupplied(t *testing.T) {
	cfg := helloConfig()

	t.Run("unsupplied value parameter gets its default", func(t *testing.T) {
		args := BuildArgs(cfg, Values{"verbose": true})
		assert.Equal(t, []string{"--verbose", "--name", "world"}, args)
	})

	t.Run("supplied value wins over the default", func(t *testing.T) {
		args := BuildArgs(cfg, Values{"verbose": true, "name": "mars"})
		assert.Equal(t, []string{"--verbose", "--name", "mars"}, args)
	})

	t.Run("explicit empty value suppresses the parameter", func(t *testing.T) {
		args := BuildArgs(cfg, Values{"name": ""})
		assert.Empty(t, args)
	})

	t.Run("flag-only default is not a value", func(t *testing.T) {
		flagCfg := &Config{
			Name:       "t",
			ScriptPath: "/bin/t",
			Parameters: []Parameter{
				{Name: "force", Param: "--force", NoValue: true, Default: "true"},
			},
		}
		assert.Empty(t, BuildArgs(flagCfg, Values{}))
	})
}

func TestBuildArgs_FlagOnly(t *testing.T) {
	cfg := &Config{
		Name:       "t",
		ScriptPath: "/bin/t",
		Parameters: []Parameter{
			{Name: "force", Param: "--force", NoValue: true},
		},
	}

	t.Run("boolean true yields token", func(t *testing.T) {
		assert.Equal(t, []string{"--force"}, BuildArgs(cfg, Values{"force": true}))
	})

	t.Run("literal true yields token", func(t *testing.T) {
		assert.Equal(t, []string{"--force"}, BuildArgs(cfg, Values{"force": "true"}))
	})

	t.Run("anything else yields nothing", func(t *testing.T) {
		assert.Empty(t, BuildArgs(cfg, Values{"force": "yes"}))
		assert.Empty(t, BuildArgs(cfg, Values{"force": false}))
		assert.Empty(t, BuildArgs(cfg, Values{"force": ""}))
		assert.Empty(t, BuildArgs(cfg, Values{}))
	})
}

func TestBuildArgs_ConstantIgnoresSuppliedValue(t *testing.T) {
	cfg := &Config{
		Name:       "t",
		ScriptPath: "/bin/t",
		Parameters: []Parameter{
			{Name: "mode", Param: "--mode", Constant: true, Default: "safe"},
		},
	}

	assert.Equal(t, []string{"--mode", "safe"}, BuildArgs(cfg, Values{"mode": "dangerous"}))
	assert.Equal(t, []string{"--mode", "safe"}, BuildArgs(cfg, Values{}))
}

func TestBuildArgs_Positional(t *testing.T) {
	cfg := &Config{
		Name:       "t",
		ScriptPath: "/bin/t",
		Parameters: []Parameter{
			{Name: "target"},
		},
	}

	assert.Equal(t, []string{"prod"}, BuildArgs(cfg, Values{"target": "prod"}))
	assert.Empty(t, BuildArgs(cfg, Values{"target": ""}))
}

func TestBuildArgs_DeclarationOrder(t *testing.T) {
	cfg := &Config{
		Name:       "t",
		ScriptPath: "/bin/t",
		Parameters: []Parameter{
			{Name: "b", Param: "--b"},
			{Name: "a", Param: "--a"},
		},
	}

	args := BuildArgs(cfg, Values{"a": "1", "b": "2"})
	assert.Equal(t, []string{"--b", "2", "--a", "1"}, args)
}

func TestBuildArgs_Deterministic(t *testing.T) {
	cfg := helloConfig()
	values := Values{"verbose": true, "name": "world"}

	first := BuildArgs(cfg, values)
	for range 10 {
		assert.Equal(t, first, BuildArgs(cfg, values))
	}
	// Input values must not have been mutated.
	assert.Equal(t, Values{"verbose": true, "name": "world"}, values)
}

func TestBuildCommand(t *testing.T) {
	cfg := helloConfig()

	command, err := BuildCommand(cfg, Values{"verbose": true, "name": "world"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/usr/bin/hello", "--verbose", "--name", "world"}, command)
}

func TestBuildCommand_RelativePath(t *testing.T) {
	cfg := &Config{Name: "t", ScriptPath: "run.sh", WorkingDir: "/srv/scripts"}

	command, err := BuildCommand(cfg, Values{})
	require.NoError(t, err)
	assert.Equal(t, []string{"/srv/scripts/run.sh"}, command)
}

func TestSecureCommand_MasksSecrets(t *testing.T) {
	cfg := &Config{
		Name:       "deploy",
		ScriptPath: "/bin/deploy",
		Parameters: []Parameter{
			{Name: "env", Param: "--env"},
			{Name: "token", Param: "--token", Secret: true},
		},
	}

	cmd, err := SecureCommand(cfg, Values{"env": "prod", "token": "hunter2"})
	require.NoError(t, err)
	assert.Equal(t, "/bin/deploy --env prod --token "+SecretPlaceholder, cmd)
	assert.NotContains(t, cmd, "hunter2")
}
