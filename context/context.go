// Package context carries the small pieces of chain-consensus state the
// analyzer needs to pick the right rule set for a script: which script
// version it's being evaluated under, and whether to apply standardness
// rules on top of consensus ones.
package context

// ScriptVersion selects which opcode/signature rules apply.
type ScriptVersion int

const (
	// ScriptVersionLegacy is a pre-segwit scriptSig/scriptPubKey.
	ScriptVersionLegacy ScriptVersion = iota
	// ScriptVersionSegwitV0 is a P2WPKH/P2WSH witness script.
	ScriptVersionSegwitV0
	// ScriptVersionSegwitV1 is a Tapscript leaf (BIP 342).
	ScriptVersionSegwitV1
)

func (v ScriptVersion) String() string {
	switch v {
	case ScriptVersionLegacy:
		return "legacy"
	case ScriptVersionSegwitV0:
		return "segwit-v0"
	case ScriptVersionSegwitV1:
		return "tapscript"
	default:
		return "unknown"
	}
}

// IsTapscript reports whether v is the Tapscript (SegwitV1) version, which
// unlocks OP_CHECKSIGADD and a stricter static CHECKSIG validity check.
func (v ScriptVersion) IsTapscript() bool {
	return v == ScriptVersionSegwitV1
}

// ScriptRules selects how strict the analyzer is about non-consensus
// standardness rules (NULLFAIL, low-S, MINIMALIF).
type ScriptRules int

const (
	// ScriptRulesConsensusOnly applies only rules enforced by every node.
	ScriptRulesConsensusOnly ScriptRules = iota
	// ScriptRulesAll additionally applies Bitcoin Core's policy/standardness
	// rules (e.g. low-S, NULLDUMMY).
	ScriptRulesAll
)

func (r ScriptRules) String() string {
	switch r {
	case ScriptRulesConsensusOnly:
		return "consensus-only"
	case ScriptRulesAll:
		return "all"
	default:
		return "unknown"
	}
}

// ScriptContext bundles the version and rule set a script is analyzed
// under; every analyzer entry point takes one.
type ScriptContext struct {
	Version ScriptVersion
	Rules   ScriptRules
}

// New constructs a ScriptContext from its two fields.
func New(version ScriptVersion, rules ScriptRules) ScriptContext {
	return ScriptContext{Version: version, Rules: rules}
}

// RequiresNullfail reports whether CHECKSIG failures must push an empty
// byte string (BIP146), which holds under both the consensus Tapscript
// rules and the optional standardness rule set.
func (c ScriptContext) RequiresNullfail() bool {
	return c.Version.IsTapscript() || c.Rules == ScriptRulesAll
}

// RequiresLowS reports whether signatures must use the low-S form.
func (c ScriptContext) RequiresLowS() bool {
	return c.Rules == ScriptRulesAll
}

// RequiresMinimalIf reports whether OP_IF/OP_NOTIF require their condition
// to be exactly <> or <01> rather than any truthy/falsy encoding.
func (c ScriptContext) RequiresMinimalIf() bool {
	return c.Version.IsTapscript() || c.Rules == ScriptRulesAll
}
