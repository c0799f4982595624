// Package expr implements the symbolic expression algebra the interpreter
// builds spending conditions and stack values out of: a small tree of
// literal bytes, references to spender-supplied stack input, and opcode
// applications, together with a total ordering and a constant-folding
// evaluator that simplifies the tree in place.
package expr

import (
	"crypto/sha1"
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/golang/groupcache/lru"
	"golang.org/x/crypto/ripemd160"

	"github.com/wangxinyu2018/scriptanalyzer/checksig"
	"github.com/wangxinyu2018/scriptanalyzer/context"
	"github.com/wangxinyu2018/scriptanalyzer/opcode"
	"github.com/wangxinyu2018/scriptanalyzer/script"
	"github.com/wangxinyu2018/scriptanalyzer/scripterr"
)

// Expr is a node of the expression tree: a Bytes literal, a StackRef
// reference, or an Op application over further Exprs.
type Expr interface {
	fmt.Stringer
	priority() int
	exprKind()
}

// Bytes is a literal byte string, the expression-tree equivalent of a
// constant script push.
type Bytes []byte

func (Bytes) exprKind()    {}
func (Bytes) priority() int { return 0 }

func (b Bytes) String() string {
	var sb strings.Builder
	sb.WriteByte('<')
	for _, c := range b {
		fmt.Fprintf(&sb, "%02x", c)
	}
	sb.WriteByte('>')
	return sb.String()
}

// NewBytes copies b into a Bytes expression.
func NewBytes(b []byte) Expr {
	out := make(Bytes, len(b))
	copy(out, b)
	return out
}

// NewBytesOwned wraps b directly without copying; callers must not mutate
// b afterwards.
func NewBytesOwned(b []byte) Expr {
	return Bytes(b)
}

// StackRef refers to a spender-supplied item of the (lazily materialized)
// input stack. Pos counts from the top of that input stack: 0 is the top
// item and deeper items have higher positions. Positions are not
// renumbered to count from the bottom.
type StackRef struct {
	Pos uint32
}

func (StackRef) exprKind()    {}
func (StackRef) priority() int { return 1 }

func (s StackRef) String() string {
	return fmt.Sprintf("<stack item #%d>", s.Pos)
}

// NewStackRef builds a StackRef expression referencing input position pos.
func NewStackRef(pos uint32) Expr {
	return StackRef{Pos: pos}
}

// garbagePos is the placeholder StackRef position used by validGarbage, the
// Go equivalent of the Rust original's Expr::valid_garbage() sentinel used
// with mem::replace when there's no meaningful Default to substitute.
const garbagePos = ^uint32(0)

func validGarbage() Expr { return StackRef{Pos: garbagePos} }

// Op is an opcode applied to its arguments. Every opcode here is
// arity-fixed except OP_CHECKMULTISIG built by NewMultisig, which is marked
// as multisig and whose Args holds signatures followed by public keys.
type Op struct {
	Opcode opcode.Opcode
	Args   []Expr

	// Err annotates this Op as the source of a specific ScriptError if it
	// is ever required to hold but doesn't (e.g. MINIMALIF, NULLDUMMY).
	Err *scripterr.Error

	// pkOffset is the index in Args where the public keys of a multisig
	// expression start; isMultisig marks an Op built by NewMultisig.
	pkOffset int
	isMultisig bool
}

func (*Op) exprKind()    {}
func (*Op) priority() int { return 2 }

func (o *Op) String() string {
	var sb strings.Builder
	sb.WriteString(o.Opcode.String())
	sb.WriteByte('(')
	if o.isMultisig {
		sb.WriteString("sigs=[")
		writeArgs(&sb, o.Sigs())
		sb.WriteString("], pubkeys=[")
		writeArgs(&sb, o.Keys())
		sb.WriteByte(']')
	} else {
		writeArgs(&sb, o.Args)
	}
	sb.WriteByte(')')
	return sb.String()
}

func writeArgs(sb *strings.Builder, args []Expr) {
	for i, a := range args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.String())
	}
}

// NewOp1 builds a single-argument Op application.
func NewOp1(op opcode.Opcode, arg Expr) Expr {
	return &Op{Opcode: op, Args: []Expr{arg}}
}

// NewOp2 builds a two-argument Op application.
func NewOp2(op opcode.Opcode, a, b Expr) Expr {
	return &Op{Opcode: op, Args: []Expr{a, b}}
}

// NewOp2WithError is NewOp2 but tags the result with the ScriptError that
// would be raised if this condition is ever required to hold but doesn't
// (e.g. SCRIPT_ERR_MINIMALIF, SCRIPT_ERR_SIG_NULLDUMMY).
func NewOp2WithError(op opcode.Opcode, a, b Expr, errCode scripterr.Code) Expr {
	return &Op{Opcode: op, Args: []Expr{a, b}, Err: scripterr.New(errCode)}
}

// NewOp3 builds a three-argument Op application (only OP_WITHIN today).
func NewOp3(op opcode.Opcode, a, b, c Expr) Expr {
	return &Op{Opcode: op, Args: []Expr{a, b, c}}
}

// NewMultisig builds an OP_CHECKMULTISIG expression from exprs (signatures
// followed by public keys) and the offset separating the two.
func NewMultisig(exprs []Expr, pkOffset int) Expr {
	return &Op{Opcode: opcode.OP_CHECKMULTISIG, Args: exprs, pkOffset: pkOffset, isMultisig: true}
}

// IsMultisig reports whether o is a CHECKMULTISIG conjunction rather than
// a plain fixed-arity application.
func (o *Op) IsMultisig() bool { return o.isMultisig }

// Sigs returns the signature sub-slice of a multisig Op's Args.
func (o *Op) Sigs() []Expr { return o.Args[:o.pkOffset] }

// Keys returns the public-key sub-slice of a multisig Op's Args.
func (o *Op) Keys() []Expr { return o.Args[o.pkOffset:] }

// Equal reports deep structural equality between two expressions, the Go
// equivalent of the Rust tree's derived PartialEq.
func Equal(a, b Expr) bool {
	switch av := a.(type) {
	case Bytes:
		bv, ok := b.(Bytes)
		return ok && string(av) == string(bv)
	case StackRef:
		bv, ok := b.(StackRef)
		return ok && av.Pos == bv.Pos
	case *Op:
		bv, ok := b.(*Op)
		if !ok || av.Opcode != bv.Opcode || av.isMultisig != bv.isMultisig || len(av.Args) != len(bv.Args) {
			return false
		}
		for i := range av.Args {
			if !Equal(av.Args[i], bv.Args[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Compare implements the tree's total order: within a type, Bytes compare
// lexicographically, Stack by position, and Op first by opcode byte then
// by argument count then recursively by argument; across types, Op sorts
// before Stack which sorts before Bytes (the original's inverted priority
// comparison, kept as-is so folded scripts keep matching shapes such as
// OP_EQUAL(<op>, <bytes>)).
func Compare(a, b Expr) int {
	switch av := a.(type) {
	case *Op:
		if bv, ok := b.(*Op); ok {
			if av.Opcode != bv.Opcode {
				if av.Opcode < bv.Opcode {
					return -1
				}
				return 1
			}
			if len(av.Args) != len(bv.Args) {
				return len(av.Args) - len(bv.Args)
			}
			for i := range av.Args {
				if c := Compare(av.Args[i], bv.Args[i]); c != 0 {
					return c
				}
			}
			return 0
		}
	case StackRef:
		if bv, ok := b.(StackRef); ok {
			if av.Pos < bv.Pos {
				return -1
			} else if av.Pos > bv.Pos {
				return 1
			}
			return 0
		}
	case Bytes:
		if bv, ok := b.(Bytes); ok {
			return strings.Compare(string(av), string(bv))
		}
	}
	return b.priority() - a.priority()
}

// SortRecursive sorts exprs by Compare, then recurses into every Op's
// arguments, skipping the sort step for opcodes whose argument order is
// semantically meaningful (e.g. OP_SUB, OP_CHECKSIG).
func SortRecursive(exprs []Expr) {
	sortRecursive(exprs, true)
}

func sortRecursive(exprs []Expr, sortCurrent bool) {
	if sortCurrent {
		sort.Slice(exprs, func(i, j int) bool { return Compare(exprs[i], exprs[j]) < 0 })
	}
	for _, e := range exprs {
		if op, ok := e.(*Op); ok {
			sortRecursive(op.Args, op.Opcode.CanReorderArgs())
		}
	}
}

// ReplaceAll substitutes every occurrence of search (by deep equality)
// with replace, anywhere in the tree rooted at *e, reporting whether
// anything changed.
func ReplaceAll(e *Expr, search, replace Expr) bool {
	if Equal(*e, search) {
		*e = replace
		return true
	}
	if op, ok := (*e).(*Op); ok {
		changed := false
		for i := range op.Args {
			changed = ReplaceAll(&op.Args[i], search, replace) || changed
		}
		return changed
	}
	return false
}

var hashCache = struct {
	mu sync.Mutex
	c  *lru.Cache
}{c: lru.New(4096)}

func cachedHash(op opcode.Opcode, input []byte, compute func([]byte) []byte) []byte {
	key := fmt.Sprintf("%d:%s", op, input)

	hashCache.mu.Lock()
	if v, ok := hashCache.c.Get(key); ok {
		hashCache.mu.Unlock()
		return v.([]byte)
	}
	hashCache.mu.Unlock()

	out := compute(input)

	hashCache.mu.Lock()
	hashCache.c.Add(key, out)
	hashCache.mu.Unlock()

	return out
}

func ripemd160Sum(b []byte) []byte {
	h := ripemd160.New()
	h.Write(b)
	return h.Sum(nil)
}

func sha1Sum(b []byte) []byte {
	h := sha1.Sum(b)
	return h[:]
}

func sha256Sum(b []byte) []byte {
	h := sha256.Sum256(b)
	return h[:]
}

// Eval performs one constant-folding/rewrite pass over the tree rooted at
// *e under ctx, returning whether anything changed. Callers re-invoke it
// to a fixpoint (see the condition simplifier in package analyzer).
func Eval(e *Expr, ctx context.ScriptContext) (bool, error) {
	return evalDepth(e, ctx, 0)
}

func evalDepth(e *Expr, ctx context.ScriptContext, depth int) (bool, error) {
	op, ok := (*e).(*Op)
	if !ok {
		return false, nil
	}

	changed := false
	for i := range op.Args {
		c, err := evalDepth(&op.Args[i], ctx, depth+1)
		if err != nil {
			return false, err
		}
		changed = changed || c
	}

	if op.isMultisig {
		if len(op.Keys()) == len(op.Sigs()) {
			sigs, pks := op.Sigs(), op.Keys()
			var combined Expr
			for i := range sigs {
				pair := NewOp2(opcode.OP_CHECKSIG, sigs[i], pks[i])
				if combined == nil {
					combined = pair
				} else {
					combined = NewOp2(opcode.OP_BOOLAND, combined, pair)
				}
			}
			if combined == nil {
				combined = NewBytesOwned(script.True)
			}
			*e = combined
			return true, nil
		}
		return changed, nil
	}

	switch len(op.Args) {
	case 1:
		newExpr, didFold, err := evalArgs1(op, ctx, depth)
		if err != nil {
			return false, err
		}
		if didFold {
			*e = newExpr
			return true, nil
		}
	case 2:
		newExpr, didFold, err := evalArgs2(op, ctx)
		if err != nil {
			return false, err
		}
		if didFold {
			*e = newExpr
			return true, nil
		}
	}

	return changed, nil
}

func evalArgs1(op *Op, ctx context.ScriptContext, depth int) (Expr, bool, error) {
	arg := op.Args[0]

	switch op.Opcode {
	case opcode.OP_SIZE:
		switch a := arg.(type) {
		case Bytes:
			return NewBytesOwned(script.EncodeInt(int64(len(a)))), true, nil
		case *Op:
			if a.Opcode.ReturnsBoolean() {
				return arg, true, nil
			}
		}

	case opcode.OP_RIPEMD160, opcode.OP_SHA1, opcode.OP_SHA256:
		if b, ok := arg.(Bytes); ok {
			var h []byte
			switch op.Opcode {
			case opcode.OP_RIPEMD160:
				h = cachedHash(op.Opcode, b, ripemd160Sum)
			case opcode.OP_SHA1:
				h = cachedHash(op.Opcode, b, sha1Sum)
			case opcode.OP_SHA256:
				h = cachedHash(op.Opcode, b, sha256Sum)
			}
			return NewBytesOwned(h), true, nil
		}

	case opcode.OP_INTERNAL_NOT, opcode.OP_NOT:
		if b, ok := arg.(Bytes); ok {
			if op.Opcode == opcode.OP_NOT && len(b) > 4 {
				return nil, false, scripterr.New(scripterr.ErrNumOverflow)
			}
			return NewBytesOwned(script.EncodeBool(!script.DecodeBool(b))), true, nil
		}
		if inner, ok := arg.(*Op); ok && !inner.isMultisig && len(inner.Args) == 1 {
			if inner.Opcode == opcode.OP_NOT || inner.Opcode == opcode.OP_INTERNAL_NOT {
				innerArg := inner.Args[0]
				eligible := false
				switch ia := innerArg.(type) {
				case *Op:
					eligible = ia.Opcode.ReturnsBoolean()
				case StackRef:
					eligible = depth == 0
				}
				if eligible {
					return innerArg, true, nil
				}
			}
		}
		if inner, ok := arg.(*Op); ok && depth == 0 && ctx.Rules == context.ScriptRulesAll {
			if inner.Opcode == opcode.OP_CHECKSIG && !inner.isMultisig {
				// assumes a valid pubkey: a failing CHECKSIG then needs an
				// empty signature under the standardness rules (NULLFAIL)
				return NewOp2(opcode.OP_EQUAL, inner.Args[0], NewBytesOwned(script.False)), true, nil
			}
		}
	}

	return nil, false, nil
}

func evalArgs2(op *Op, ctx context.ScriptContext) (Expr, bool, error) {
	a1, a2 := op.Args[0], op.Args[1]

	switch op.Opcode {
	case opcode.OP_ADD, opcode.OP_SUB:
		b1, ok1 := a1.(Bytes)
		b2, ok2 := a2.(Bytes)
		if ok1 {
			if err := script.CheckInt(b1, 4); err != nil {
				return nil, false, err
			}
		}
		if ok2 {
			if err := script.CheckInt(b2, 4); err != nil {
				return nil, false, err
			}
		}
		if ok1 && ok2 {
			n1 := script.DecodeIntUnchecked(b1)
			n2 := script.DecodeIntUnchecked(b2)
			var result int64
			if op.Opcode == opcode.OP_ADD {
				result = n1 + n2
			} else {
				result = n1 - n2
			}
			return NewBytesOwned(script.EncodeInt(result)), true, nil
		}

	case opcode.OP_EQUAL:
		b1, ok1 := a1.(Bytes)
		b2, ok2 := a2.(Bytes)
		switch {
		case ok1 && ok2:
			return NewBytesOwned(script.EncodeBool(string(b1) == string(b2))), true, nil
		case !ok1 && ok2:
			if inner, ok := a1.(*Op); ok && inner.Opcode.ReturnsBoolean() {
				switch {
				case string(b2) == string(script.True):
					return a1, true, nil
				case string(b2) == string(script.False):
					return NewOp1(opcode.OP_NOT, a1), true, nil
				default:
					return NewBytesOwned(script.False), true, nil
				}
			}
		}

	case opcode.OP_CHECKSIG:
		sig, pubkey := a1, a2
		if ctx.Version == context.ScriptVersionSegwitV1 {
			if pk, ok := pubkey.(Bytes); ok {
				switch {
				case len(pk) == 0:
					return nil, false, scripterr.New(scripterr.ErrPubkeyType)
				case len(pk) != 32:
					if ctx.Rules == context.ScriptRulesAll {
						return nil, false, scripterr.New(scripterr.ErrDiscourageUpgradablePubkeyType)
					}
					return NewBytesOwned(script.True), true, nil
				}
				if sb, ok := sig.(Bytes); ok {
					switch {
					case len(sb) == 0:
						return NewBytesOwned(script.False), true, nil
					case len(sb) != 64 && len(sb) != 65:
						return nil, false, scripterr.New(scripterr.ErrSchnorrSigSize)
					case len(sb) == 65 && !checksig.IsValidSighashByte(sb[64]):
						return nil, false, scripterr.New(scripterr.ErrSchnorrSigHashtype)
					}
				}
			}
		} else if pk, ok := pubkey.(Bytes); ok {
			res := checksig.CheckPubKey(pk)
			if !res.Valid {
				return nil, false, scripterr.New(scripterr.ErrPubkeyType)
			}
			if !res.Compressed && ctx.Version == context.ScriptVersionSegwitV0 && ctx.Rules == context.ScriptRulesAll {
				return nil, false, scripterr.New(scripterr.ErrWitnessPubkeyType)
			}
			if sb, ok := sig.(Bytes); ok {
				if len(sb) == 0 {
					return NewBytesOwned(script.False), true, nil
				}
				if ctx.Rules == context.ScriptRulesAll {
					if !checksig.IsValidSignatureEncoding(sb) {
						return nil, false, scripterr.New(scripterr.ErrSigDER)
					} else if !checksig.IsValidSighashByte(sb[len(sb)-1]) {
						return nil, false, scripterr.New(scripterr.ErrSigHashtype)
					}
				}
				if ctx.RequiresLowS() && !checksig.IsLowS(sb) {
					return nil, false, scripterr.New(scripterr.ErrSigHighS)
				}
			}
		}
	}

	return nil, false, nil
}
