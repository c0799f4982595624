// Package config holds the analyzer's process-wide defaults: which script
// version/rule set to assume when none is given explicitly, and how many
// worker goroutines to use for concurrent path analysis. Defaults may be
// overridden from a file or flags via viper, following the same
// Register-then-read-anywhere shape the teacher used for its network
// parameters.
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
	"github.com/wangxinyu2018/scriptanalyzer/context"
)

// ErrUnknownScriptVersion is returned when a config file names a script
// version this build doesn't recognize.
var ErrUnknownScriptVersion = errors.New("config: unknown script version")

// ErrUnknownScriptRules is returned when a config file names a rule set
// this build doesn't recognize.
var ErrUnknownScriptRules = errors.New("config: unknown script rules")

// Params defines the analyzer's run defaults. A zero Params matches
// DefaultParams in every field except MaxPaths: zero MaxPaths is rejected
// by Register and means no path cap to analyzer.AnalyzeScript.
type Params struct {
	// ScriptVersion is assumed for scripts whose caller doesn't specify one.
	ScriptVersion context.ScriptVersion

	// ScriptRules selects whether standardness-only checks (NULLFAIL,
	// low-S, MINIMALIF) are enforced in addition to consensus rules.
	ScriptRules context.ScriptRules

	// WorkerThreads bounds the goroutine pool used by concurrent path
	// analysis. Zero means "analyze sequentially", matching spec.md's
	// single-threaded dispatcher.
	WorkerThreads int

	// MaxPaths caps the number of spending paths a single analysis may
	// enumerate before giving up, guarding against pathological nested
	// OP_IF scripts.
	MaxPaths int
}

// DefaultParams mirrors the teacher's ChainParams: a single package-level
// value callers read unless they've registered their own.
var DefaultParams = Params{
	ScriptVersion: context.ScriptVersionLegacy,
	ScriptRules:   context.ScriptRulesConsensusOnly,
	WorkerThreads: 0,
	MaxPaths:      100_000,
}

var current = DefaultParams

// Register installs params as the process-wide default, returning an error
// if any field fails validation. Call this once from main, as early as
// possible, before any package reads Current.
func Register(params Params) error {
	if params.WorkerThreads < 0 {
		return errors.New("config: worker thread count must not be negative")
	}
	if params.MaxPaths <= 0 {
		return errors.New("config: max paths must be positive")
	}
	current = params
	return nil
}

// Current returns the active Params, defaulting to DefaultParams if nothing
// has called Register.
func Current() Params {
	return current
}

// LoadViper reads analyzer defaults from viper's active configuration
// (flags, env, and any file previously merged via v.ReadInConfig), falling
// back to DefaultParams for any key left unset. It does not call
// v.ReadInConfig itself; the caller controls config-file discovery the way
// cmd/scriptanalyzer does with its --config flag.
func LoadViper(v *viper.Viper) (Params, error) {
	p := DefaultParams

	if v.IsSet("script_version") {
		sv, err := parseScriptVersion(v.GetString("script_version"))
		if err != nil {
			return Params{}, err
		}
		p.ScriptVersion = sv
	}
	if v.IsSet("script_rules") {
		sr, err := parseScriptRules(v.GetString("script_rules"))
		if err != nil {
			return Params{}, err
		}
		p.ScriptRules = sr
	}
	if v.IsSet("worker_threads") {
		p.WorkerThreads = v.GetInt("worker_threads")
	}
	if v.IsSet("max_paths") {
		p.MaxPaths = v.GetInt("max_paths")
	}
	return p, nil
}

func parseScriptVersion(s string) (context.ScriptVersion, error) {
	switch strings.ToLower(s) {
	case "legacy":
		return context.ScriptVersionLegacy, nil
	case "segwitv0", "segwit0", "v0":
		return context.ScriptVersionSegwitV0, nil
	case "segwitv1", "tapscript", "v1":
		return context.ScriptVersionSegwitV1, nil
	default:
		return 0, ErrUnknownScriptVersion
	}
}

func parseScriptRules(s string) (context.ScriptRules, error) {
	switch strings.ToLower(s) {
	case "consensus", "consensusonly", "consensus_only":
		return context.ScriptRulesConsensusOnly, nil
	case "all", "standard", "standardness":
		return context.ScriptRulesAll, nil
	default:
		return 0, ErrUnknownScriptRules
	}
}
