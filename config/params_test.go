package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/wangxinyu2018/scriptanalyzer/context"
)

func TestRegisterValidatesFields(t *testing.T) {
	defer func() { current = DefaultParams }()

	require.NoError(t, Register(Params{MaxPaths: 10, WorkerThreads: 2}))
	require.Equal(t, 2, Current().WorkerThreads)

	require.Error(t, Register(Params{MaxPaths: 10, WorkerThreads: -1}))
	require.Error(t, Register(Params{MaxPaths: 0}))
}

func TestLoadViperDefaults(t *testing.T) {
	v := viper.New()
	p, err := LoadViper(v)
	require.NoError(t, err)
	require.Equal(t, DefaultParams, p)
}

func TestLoadViperOverrides(t *testing.T) {
	v := viper.New()
	v.Set("script_version", "tapscript")
	v.Set("script_rules", "all")
	v.Set("worker_threads", 4)
	v.Set("max_paths", 500)

	p, err := LoadViper(v)
	require.NoError(t, err)
	require.Equal(t, context.ScriptVersionSegwitV1, p.ScriptVersion)
	require.Equal(t, context.ScriptRulesAll, p.ScriptRules)
	require.Equal(t, 4, p.WorkerThreads)
	require.Equal(t, 500, p.MaxPaths)
}

func TestLoadViperRejectsUnknownScriptVersion(t *testing.T) {
	v := viper.New()
	v.Set("script_version", "bogus")
	_, err := LoadViper(v)
	require.ErrorIs(t, err, ErrUnknownScriptVersion)
}

func TestLoadViperRejectsUnknownScriptRules(t *testing.T) {
	v := viper.New()
	v.Set("script_rules", "bogus")
	_, err := LoadViper(v)
	require.ErrorIs(t, err, ErrUnknownScriptRules)
}
