package analyzer

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/wangxinyu2018/scriptanalyzer/context"
	"github.com/wangxinyu2018/scriptanalyzer/script"
	"github.com/wangxinyu2018/scriptanalyzer/scripterr"
)

var legacyConsensus = context.New(context.ScriptVersionLegacy, context.ScriptRulesConsensusOnly)
var segwitV0All = context.New(context.ScriptVersionSegwitV0, context.ScriptRulesAll)

func parse(t *testing.T, asm string) script.Script {
	t.Helper()
	s, err := script.ParseASM(asm)
	require.NoError(t, err)
	return s
}

func TestAnalyzeP2PKH(t *testing.T) {
	s := parse(t, "OP_DUP OP_HASH160 <deadbeefdeadbeefdeadbeefdeadbeefdeadbeef> OP_EQUALVERIFY OP_CHECKSIG")
	results, err := AnalyzeScript(s, legacyConsensus, 0, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	require.Equal(t, uint32(2), r.StackSize)
	// The hash-equality check and the CHECKSIG call both survive
	// simplification: the hashed value is never pinned to a constant.
	require.Len(t, r.SpendingConditions, 2)
}

func TestAnalyzeP2PKHSegwitV0AllRules(t *testing.T) {
	// Same shape as TestAnalyzeP2PKH, but under the SegwitV0/ScriptRulesAll
	// context spec.md's worked examples actually run under.
	s := parse(t, "OP_DUP OP_HASH160 <deadbeefdeadbeefdeadbeefdeadbeefdeadbeef> OP_EQUALVERIFY OP_CHECKSIG")
	results, err := AnalyzeScript(s, segwitV0All, 0, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, uint32(2), results[0].StackSize)
}

func TestAnalyzeCheckSigRejectsHighS(t *testing.T) {
	// A compressed pubkey and a canonically-DER-encoded but non-low S
	// signature, both embedded as constants so evalArgs2's OP_CHECKSIG
	// branch actually type-asserts them to Bytes and runs its static
	// DER/sighash/low-S checks instead of treating them as witness
	// placeholders.
	pubkey := "02" + strings.Repeat("aa", 32)
	// DER: 30 26 02 01 01 02 21 00 <32 bytes of ff>, plus a SIGHASH_ALL
	// byte. The S value (0x00 followed by 32 0xff bytes) is far above
	// halfOrder, so IsLowS rejects it even though the encoding is valid.
	sig := "3026020101022100" + strings.Repeat("ff", 32) + "01"
	s := parse(t, "<"+sig+"> <"+pubkey+"> OP_CHECKSIG")

	_, err := AnalyzeScript(s, segwitV0All, 0, 0)
	require.ErrorIs(t, err, ErrUnspendable)
}

func TestAnalyzeIfElseForksTwoPaths(t *testing.T) {
	s := parse(t, "OP_IF OP_1 OP_ELSE OP_0 OP_ENDIF")
	results, err := AnalyzeScript(s, legacyConsensus, 0, 0)
	require.NoError(t, err)

	// The OP_0 branch evaluates to an empty top element and fails
	// ErrEvalFalse, so only the OP_IF/OP_1 branch survives.
	require.Len(t, results, 1)
	require.Equal(t, uint32(1), results[0].StackSize)
}

func TestAnalyzeCSVTimelock(t *testing.T) {
	s := parse(t, "144 OP_CHECKSEQUENCEVERIFY OP_DROP OP_CHECKSIG")
	results, err := AnalyzeScript(s, legacyConsensus, 0, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	require.Equal(t, uint32(2), r.StackSize)
	require.NotNil(t, r.SequenceReq.Req)
	require.Equal(t, uint32(144), *r.SequenceReq.Req)

	str, ok := r.SequenceReq.String(true)
	require.True(t, ok)
	require.Contains(t, str, "height")
}

func TestAnalyzeNestedIfWithCLTV(t *testing.T) {
	s := parse(t, "OP_IF 500000 OP_CHECKLOCKTIMEVERIFY OP_DROP OP_1 OP_ELSE OP_1 OP_ENDIF")
	results, err := AnalyzeScript(s, legacyConsensus, 0, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)

	var sawLocktime, sawPlain bool
	for _, r := range results {
		if r.LocktimeReq.Req != nil {
			sawLocktime = true
			require.Equal(t, uint32(500000), *r.LocktimeReq.Req)
		} else {
			sawPlain = true
		}
	}
	require.True(t, sawLocktime)
	require.True(t, sawPlain)
}

func TestAnalyzeMultisig(t *testing.T) {
	pk := "<deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef>"
	s := parse(t, "OP_2 "+pk+" "+pk+" "+pk+" OP_3 OP_CHECKMULTISIG")
	results, err := AnalyzeScript(s, legacyConsensus, 0, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	// Dummy element plus two signatures.
	require.Equal(t, uint32(3), r.StackSize)
	require.Len(t, r.SpendingConditions, 1)
}

func TestAnalyzeRejectsDisabledOpcode(t *testing.T) {
	s := parse(t, "<01> <02> OP_CAT")
	_, err := AnalyzeScript(s, legacyConsensus, 0, 0)
	require.Error(t, err)
	require.True(t, errors.Is(err, scripterr.New(scripterr.ErrDisabledOpcode)))
}

func TestAnalyzeUnspendable(t *testing.T) {
	s := parse(t, "OP_RETURN")
	_, err := AnalyzeScript(s, legacyConsensus, 0, 0)
	require.ErrorIs(t, err, ErrUnspendable)
}

func TestAnalyzeMaxPathsDropsForks(t *testing.T) {
	s := parse(t, "OP_IF OP_1 OP_ELSE OP_1 OP_ENDIF")
	results, err := AnalyzeScript(s, legacyConsensus, 0, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
}
