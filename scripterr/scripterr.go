// Package scripterr ports Bitcoin Core's script_error.{h,cpp} error
// taxonomy (src/script/script_error.cpp, commit b1a2021) as a comparable Go
// error type, plus two additions specific to this analyzer: number overflow
// and unknown-depth (an OP_PICK/OP_ROLL index the analyzer can't resolve
// statically).
package scripterr

// Code identifies one of Bitcoin Core's script evaluation error conditions.
type Code int

const (
	ErrOK Code = iota
	ErrUnknownError
	ErrEvalFalse
	ErrOpReturn

	// Max sizes
	ErrScriptSize
	ErrPushSize
	ErrOpCount
	ErrStackSize
	ErrSigCount
	ErrPubkeyCount

	// Failed verify operations
	ErrVerify
	ErrEqualVerify
	ErrCheckMultisigVerify
	ErrCheckSigVerify
	ErrNumEqualVerify

	// Logical/Format/Canonical errors
	ErrBadOpcode
	ErrDisabledOpcode
	ErrInvalidStackOperation
	ErrInvalidAltstackOperation
	ErrUnbalancedConditional

	// CHECKLOCKTIMEVERIFY and CHECKSEQUENCEVERIFY
	ErrNegativeLocktime
	ErrUnsatisfiedLocktime

	// Malleability
	ErrSigHashtype
	ErrSigDER
	ErrMinimalData
	ErrSigPushOnly
	ErrSigHighS
	ErrSigNullDummy
	ErrPubkeyType
	ErrCleanStack
	ErrMinimalIf
	ErrSigNullFail

	// Softfork safeness
	ErrDiscourageUpgradableNops
	ErrDiscourageUpgradableWitnessProgram
	ErrDiscourageUpgradableTaprootVersion
	ErrDiscourageOpSuccess
	ErrDiscourageUpgradablePubkeyType

	// Segregated witness
	ErrWitnessProgramWrongLength
	ErrWitnessProgramWitnessEmpty
	ErrWitnessProgramMismatch
	ErrWitnessMalleated
	ErrWitnessMalleatedP2SH
	ErrWitnessUnexpected
	ErrWitnessPubkeyType

	// Taproot
	ErrSchnorrSigSize
	ErrSchnorrSigHashtype
	ErrSchnorrSig
	ErrTaprootWrongControlSize
	ErrTapscriptValidationWeight
	ErrTapscriptCheckMultisig
	ErrTapscriptMinimalIf

	// Constant scriptCode
	ErrOpCodeSeparator
	ErrSigFindAndDelete

	// ErrNumOverflow does not exist in Bitcoin Core, which folds it into
	// ErrUnknownError; this analyzer reports it distinctly.
	ErrNumOverflow
	// ErrUnknownDepth is specific to this analyzer: an OP_PICK/OP_ROLL
	// index that couldn't be resolved to a constant.
	ErrUnknownDepth
)

var descriptions = map[Code]string{
	ErrOK:                       "No error",
	ErrUnknownError:             "unknown error",
	ErrEvalFalse:                "Script evaluated without error but finished with a false/empty top stack element",
	ErrOpReturn:                 "OP_RETURN was encountered",
	ErrScriptSize:               "Script is too big",
	ErrPushSize:                 "Push value size limit exceeded",
	ErrOpCount:                  "Operation limit exceeded",
	ErrStackSize:                "Stack size limit exceeded",
	ErrSigCount:                 "Signature count negative or greater than pubkey count",
	ErrPubkeyCount:              "Pubkey count negative or limit exceeded",
	ErrVerify:                   "Script failed an OP_VERIFY operation",
	ErrEqualVerify:              "Script failed an OP_EQUALVERIFY operation",
	ErrCheckMultisigVerify:      "Script failed an OP_CHECKMULTISIGVERIFY operation",
	ErrCheckSigVerify:           "Script failed an OP_CHECKSIGVERIFY operation",
	ErrNumEqualVerify:           "Script failed an OP_NUMEQUALVERIFY operation",
	ErrBadOpcode:                "Opcode missing or not understood",
	ErrDisabledOpcode:           "Attempted to use a disabled opcode",
	ErrInvalidStackOperation:    "Operation not valid with the current stack size",
	ErrInvalidAltstackOperation: "Operation not valid with the current altstack size",
	ErrUnbalancedConditional:    "Invalid OP_IF construction",
	ErrNegativeLocktime:         "Negative locktime",
	ErrUnsatisfiedLocktime:      "Locktime requirement not satisfied",
	ErrSigHashtype:              "Signature hash type missing or not understood",
	ErrSigDER:                   "Non-canonical DER signature",
	ErrMinimalData:              "Data push larger than necessary",
	ErrSigPushOnly:              "Only push operators allowed in signatures",
	ErrSigHighS:                 "Non-canonical signature: S value is unnecessarily high",
	ErrSigNullDummy:             "Dummy CHECKMULTISIG argument must be zero",
	ErrMinimalIf:                "OP_IF/NOTIF argument must be minimal",
	ErrSigNullFail:              "Signature must be zero for failed CHECK(MULTI)SIG operation",
	ErrDiscourageUpgradableNops: "NOPx reserved for soft-fork upgrades",
	ErrDiscourageUpgradableWitnessProgram: "Witness version reserved for soft-fork upgrades",
	ErrDiscourageUpgradableTaprootVersion: "Taproot version reserved for soft-fork upgrades",
	ErrDiscourageOpSuccess:                "OP_SUCCESSx reserved for soft-fork upgrades",
	ErrDiscourageUpgradablePubkeyType:     "Public key version reserved for soft-fork upgrades",
	ErrPubkeyType:                         "Public key is neither compressed or uncompressed",
	ErrCleanStack:                         "Stack size must be exactly one after execution",
	ErrWitnessProgramWrongLength:          "Witness program has incorrect length",
	ErrWitnessProgramWitnessEmpty:         "Witness program was passed an empty witness",
	ErrWitnessProgramMismatch:             "Witness program hash mismatch",
	ErrWitnessMalleated:                   "Witness requires empty scriptSig",
	ErrWitnessMalleatedP2SH:               "Witness requires only-redeemscript scriptSig",
	ErrWitnessUnexpected:                  "Witness provided for non-witness script",
	ErrWitnessPubkeyType:                  "Using non-compressed keys in segwit",
	ErrSchnorrSigSize:                     "Invalid Schnorr signature size",
	ErrSchnorrSigHashtype:                 "Invalid Schnorr signature hash type",
	ErrSchnorrSig:                         "Invalid Schnorr signature",
	ErrTaprootWrongControlSize:            "Invalid Taproot control block size",
	ErrTapscriptValidationWeight:          "Too much signature validation relative to witness weight",
	ErrTapscriptCheckMultisig:             "OP_CHECKMULTISIG(VERIFY) is not available in tapscript",
	ErrTapscriptMinimalIf:                 "OP_IF/NOTIF argument must be minimal in tapscript",
	ErrOpCodeSeparator:                    "Using OP_CODESEPARATOR in non-witness script",
	ErrSigFindAndDelete:                   "Signature is found in scriptCode",
	ErrNumOverflow:                        "Script number overflow",
	ErrUnknownDepth:                       "Depth argument could not be evaluated",
}

// Error is a comparable ScriptError value: two Errors with the same Code
// compare equal, so callers can use errors.Is against a bare Code-wrapped
// Error just as readily as a typed switch.
type Error struct {
	Code Code
}

// New wraps code as an error.
func New(code Code) *Error {
	return &Error{Code: code}
}

func (e *Error) Error() string {
	if d, ok := descriptions[e.Code]; ok {
		return d
	}
	return descriptions[ErrUnknownError]
}

// Is implements the errors.Is comparability contract by Code, so
// errors.Is(err, scripterr.New(scripterr.ErrEvalFalse)) works regardless of
// which *Error instance produced err.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}
