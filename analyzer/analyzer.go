// Package analyzer implements the symbolic interpreter, condition
// simplifier, and locktime extractor: given a parsed script, it enumerates
// every surviving execution path and reports each path's minimum input
// stack size, simplified spending conditions, and locktime/sequence
// requirements.
package analyzer

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/wangxinyu2018/scriptanalyzer/condstack"
	"github.com/wangxinyu2018/scriptanalyzer/context"
	"github.com/wangxinyu2018/scriptanalyzer/expr"
	"github.com/wangxinyu2018/scriptanalyzer/locktime"
	"github.com/wangxinyu2018/scriptanalyzer/logging"
	"github.com/wangxinyu2018/scriptanalyzer/opcode"
	"github.com/wangxinyu2018/scriptanalyzer/script"
	"github.com/wangxinyu2018/scriptanalyzer/scripterr"
)

var log = logging.New("analyzer")

// ErrUnspendable means every candidate execution path failed, so the
// script can never be satisfied.
var ErrUnspendable = errors.New("script is unspendable")

// maxStackDepth bounds combined stack+altstack size mid-execution, mirroring
// Bitcoin Core's MAX_STACK_SIZE.
const maxStackDepth = 1000

// LocktimeRequirement is the accumulated CLTV or CSV constraint across a
// path's surviving spending conditions: either a concrete minimum value,
// or a handful of non-constant expressions the analyzer couldn't resolve
// to one.
type LocktimeRequirement struct {
	Exprs []expr.Expr
	Req   *uint32
}

// String renders the requirement as "type: <height|time|unknown>,
// minValue: <...>", followed by any unresolved stack elements, or
// ok=false if there's nothing to report.
func (r LocktimeRequirement) String(relative bool) (string, bool) {
	if len(r.Exprs) == 0 && r.Req == nil {
		return "", false
	}

	typeStr := "unknown"
	minValue := "unknown"
	if r.Req != nil {
		if locktime.NewType(*r.Req, relative) == locktime.TypeHeight {
			typeStr = "height"
		} else {
			typeStr = "time"
		}
		minValue = locktime.ToString(*r.Req, relative)
	}

	out := "type: " + typeStr + ", minValue: " + minValue
	if len(r.Exprs) > 0 {
		out += ", stack elements: ["
		for i, e := range r.Exprs {
			if i > 0 {
				out += "\n"
			}
			out += e.String()
		}
		out += "]"
	}
	return out, true
}

// Result is one surviving execution path's analysis: how many spender-
// supplied input items it needs, the simplified conjunction of conditions
// those items (and any hashed/signed values) must satisfy, and any
// locktime/sequence floor.
type Result struct {
	StackSize           uint32
	SpendingConditions   []expr.Expr
	LocktimeReq          LocktimeRequirement
	SequenceReq          LocktimeRequirement
}

// AnalyzeScript enumerates every spending path through s under ctx, using
// up to workerThreads goroutines to explore OP_IF/OP_NOTIF/OP_IFDUP forks
// concurrently (0 means sequential). maxPaths caps how many paths are
// explored before giving up on the remainder; exceeding it is logged, not
// silently dropped.
func AnalyzeScript(s script.Script, ctx context.ScriptContext, workerThreads, maxPaths int) ([]*Result, error) {
	for _, e := range s {
		if e.IsOp() && e.Op.IsDisabled() {
			return nil, errors.Wrap(scripterr.New(scripterr.ErrDisabledOpcode), "script rejected")
		}
	}

	d := &dispatcher{
		ctx:       ctx,
		maxPaths:  maxPaths,
		semaphore: make(chan struct{}, maxConcurrency(workerThreads)),
	}

	root := newPathAnalyzer(s)
	d.dispatch(root)
	d.wait()

	if d.dropped > 0 {
		log.WithField("dropped", d.dropped).Warn("analyzer: max path count reached, some branches were not explored")
	}

	if len(d.results) == 0 {
		return nil, ErrUnspendable
	}

	return d.results, nil
}

func maxConcurrency(workerThreads int) int {
	if workerThreads <= 0 {
		return 1
	}
	return workerThreads
}

// dispatcher drives path exploration. With concurrency 1 (sequential mode)
// it processes one path at a time; the order in which waiting forks are
// picked up is not defined. With a larger semaphore it lets that many
// goroutines process forks in parallel, replacing the Rust
// original's scoped-thread channel pool with goroutines bounded by a
// buffered-channel semaphore.
type dispatcher struct {
	ctx       context.ScriptContext
	maxPaths  int
	semaphore chan struct{}

	mu      sync.Mutex
	wg      sync.WaitGroup
	results []*Result
	spawned int
	dropped int
}

func (d *dispatcher) dispatch(p *pathAnalyzer) {
	d.mu.Lock()
	if d.maxPaths > 0 && d.spawned >= d.maxPaths {
		d.dropped++
		d.mu.Unlock()
		return
	}
	d.spawned++
	d.mu.Unlock()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.semaphore <- struct{}{}
		defer func() { <-d.semaphore }()
		d.process(p)
	}()
}

func (d *dispatcher) wait() {
	d.wg.Wait()
}

func (d *dispatcher) process(p *pathAnalyzer) {
	if err := p.analyzePath(d.ctx, d); err != nil {
		return
	}
	if err := p.evalConditions(d.ctx); err != nil {
		return
	}

	result, err := p.finalize()
	if err != nil {
		return
	}

	d.mu.Lock()
	d.results = append(d.results, result)
	d.mu.Unlock()
}

// pathAnalyzer is one in-flight candidate execution path through the
// script: its symbolic stacks, the spending conditions accumulated so
// far, and where it is in the instruction stream.
type pathAnalyzer struct {
	stack               *expr.Stack
	altStack            []expr.Expr
	spendingConditions  []expr.Expr
	script              script.Script
	scriptOffset        int
	cs                  *condstack.Stack
}

func newPathAnalyzer(s script.Script) *pathAnalyzer {
	return &pathAnalyzer{
		stack: expr.NewStack(),
		script: s,
		cs:    condstack.New(),
	}
}

func (p *pathAnalyzer) clone() *pathAnalyzer {
	altStack := make([]expr.Expr, len(p.altStack))
	copy(altStack, p.altStack)
	conds := make([]expr.Expr, len(p.spendingConditions))
	copy(conds, p.spendingConditions)

	return &pathAnalyzer{
		stack:              p.stack.Clone(),
		altStack:           altStack,
		spendingConditions: conds,
		script:             p.script,
		scriptOffset:       p.scriptOffset,
		cs:                 p.cs.Clone(),
	}
}

func (p *pathAnalyzer) verify(errCode scripterr.Code) error {
	elems := p.stack.Pop(1)
	if b, ok := elems[0].(expr.Bytes); ok {
		if !script.DecodeBool(b) {
			return scripterr.New(errCode)
		}
		return nil
	}
	p.spendingConditions = append(p.spendingConditions, elems[0])
	return nil
}

func (p *pathAnalyzer) numFromStack() (int64, error) {
	elems := p.stack.Pop(1)
	b, ok := elems[0].(expr.Bytes)
	if !ok {
		return 0, scripterr.New(scripterr.ErrUnknownDepth)
	}
	return script.DecodeInt(b, 4)
}

// analyzePath runs the interpreter loop starting at p.scriptOffset. Every
// time it hits a branching opcode (OP_IF/OP_NOTIF/OP_IFDUP) it clones p
// into a fork carrying the alternate branch, hands that fork to d for
// independent exploration, and continues executing the current branch
// in place.
func (p *pathAnalyzer) analyzePath(ctx context.ScriptContext, d *dispatcher) error {
	for p.scriptOffset < len(p.script) {
		fExec := p.cs.AllTrue()
		e := p.script[p.scriptOffset]
		p.scriptOffset++

		if !fExec {
			if !e.IsOp() {
				continue
			}
			if e.Op < opcode.OP_IF || e.Op > opcode.OP_ENDIF {
				continue
			}
		}

		if !e.IsOp() {
			p.stack.Push(expr.NewBytes(e.Bytes))
		} else if err := p.step(e.Op, ctx, fExec, d); err != nil {
			return err
		}

		logging.TraceState(log, e.String(), p)

		if p.stack.Len()+len(p.altStack) > maxStackDepth {
			return scripterr.New(scripterr.ErrStackSize)
		}
	}

	if !p.cs.Empty() {
		return scripterr.New(scripterr.ErrUnbalancedConditional)
	}

	if p.stack.Len() > 1 && !(ctx.Version == context.ScriptVersionLegacy && ctx.Rules == context.ScriptRulesConsensusOnly) {
		return scripterr.New(scripterr.ErrCleanStack)
	}

	return p.verify(scripterr.ErrEvalFalse)
}

func (p *pathAnalyzer) step(op opcode.Opcode, ctx context.ScriptContext, fExec bool, d *dispatcher) error {
	switch {
	case op == opcode.OP_0:
		p.stack.Push(expr.NewBytesOwned(nil))
		return nil

	case op == opcode.OP_1NEGATE:
		p.stack.Push(expr.NewBytes([]byte{0x81}))
		return nil

	case op >= opcode.OP_1 && op <= opcode.OP_16:
		p.stack.Push(expr.NewBytes([]byte{byte(op) - 0x50}))
		return nil

	case op == opcode.OP_NOP:
		return nil

	case op == opcode.OP_IF || op == opcode.OP_NOTIF:
		return p.stepIf(op, ctx, fExec, d)

	case op == opcode.OP_ELSE:
		if p.cs.Empty() {
			return scripterr.New(scripterr.ErrUnbalancedConditional)
		}
		p.cs.ToggleTop()
		return nil

	case op == opcode.OP_ENDIF:
		if p.cs.Empty() {
			return scripterr.New(scripterr.ErrUnbalancedConditional)
		}
		p.cs.PopBack()
		return nil

	case op == opcode.OP_VERIFY:
		return p.verify(scripterr.ErrVerify)

	case op == opcode.OP_RETURN:
		return scripterr.New(scripterr.ErrOpReturn)

	case op == opcode.OP_TOALTSTACK:
		p.altStack = append(p.altStack, p.stack.Pop(1)[0])
		return nil

	case op == opcode.OP_FROMALTSTACK:
		if len(p.altStack) == 0 {
			return scripterr.New(scripterr.ErrInvalidAltstackOperation)
		}
		top := p.altStack[len(p.altStack)-1]
		p.altStack = p.altStack[:len(p.altStack)-1]
		p.stack.Push(top)
		return nil

	case op == opcode.OP_2DROP:
		p.stack.Pop(2)
		return nil

	case op == opcode.OP_2DUP:
		p.stack.ExtendFromWithinBack(2, 0)
		return nil

	case op == opcode.OP_3DUP:
		p.stack.ExtendFromWithinBack(3, 0)
		return nil

	case op == opcode.OP_2OVER:
		p.stack.ExtendFromWithinBack(2, 2)
		return nil

	case op == opcode.OP_2ROT:
		p.stack.SwapBack(0, 2)
		p.stack.SwapBack(1, 3)
		p.stack.SwapBack(2, 4)
		p.stack.SwapBack(3, 5)
		return nil

	case op == opcode.OP_2SWAP:
		p.stack.SwapBack(0, 2)
		p.stack.SwapBack(1, 3)
		return nil

	case op == opcode.OP_IFDUP:
		return p.stepIfDup(d)

	case op == opcode.OP_DEPTH:
		p.stack.Push(expr.NewBytesOwned(script.EncodeInt(int64(p.stack.Len()))))
		return nil

	case op == opcode.OP_DROP:
		p.stack.Pop(1)
		return nil

	case op == opcode.OP_DUP:
		p.stack.ExtendFromWithinBack(1, 0)
		return nil

	case op == opcode.OP_NIP:
		p.stack.RemoveBack(1)
		return nil

	case op == opcode.OP_OVER:
		p.stack.ExtendFromWithinBack(1, 1)
		return nil

	case op == opcode.OP_PICK || op == opcode.OP_ROLL:
		return p.stepPickRoll(op)

	case op == opcode.OP_ROT:
		p.stack.SwapBack(2, 1)
		p.stack.SwapBack(1, 0)
		return nil

	case op == opcode.OP_SWAP:
		p.stack.SwapBack(0, 1)
		return nil

	case op == opcode.OP_TUCK:
		p.stack.SwapBack(0, 1)
		p.stack.ExtendFromWithinBack(1, 1)
		return nil

	case op == opcode.OP_SIZE:
		top := p.stack.GetBack(0)
		if b, ok := top.(expr.Bytes); ok {
			p.stack.Push(expr.NewBytesOwned(script.EncodeInt(int64(len(b)))))
		} else {
			p.stack.Push(expr.NewOp1(opcode.OP_SIZE, top))
		}
		return nil

	case op == opcode.OP_EQUAL || op == opcode.OP_EQUALVERIFY:
		elems := p.stack.Pop(2)
		p.stack.Push(expr.NewOp2(opcode.OP_EQUAL, elems[0], elems[1]))
		if op == opcode.OP_EQUALVERIFY {
			return p.verify(scripterr.ErrEqualVerify)
		}
		return nil

	case op == opcode.OP_1ADD || op == opcode.OP_1SUB:
		elem := p.stack.Pop(1)[0]
		addOp := opcode.OP_ADD
		if op == opcode.OP_1SUB {
			addOp = opcode.OP_SUB
		}
		p.stack.Push(expr.NewOp2(addOp, elem, expr.NewBytes([]byte{1})))
		return nil

	case op == opcode.OP_NEGATE:
		elem := p.stack.Pop(1)[0]
		p.stack.Push(expr.NewOp2(opcode.OP_SUB, expr.NewBytesOwned(nil), elem))
		return nil

	case op == opcode.OP_ABS || op == opcode.OP_NOT || op == opcode.OP_0NOTEQUAL:
		elem := p.stack.Pop(1)[0]
		p.stack.Push(expr.NewOp1(op, elem))
		return nil

	case isBinaryArith(op):
		return p.stepBinaryArith(op)

	case op == opcode.OP_WITHIN:
		elems := p.stack.Pop(3)
		p.stack.Push(expr.NewOp3(opcode.OP_WITHIN, elems[0], elems[1], elems[2]))
		return nil

	case op == opcode.OP_RIPEMD160 || op == opcode.OP_SHA1 || op == opcode.OP_SHA256:
		elem := p.stack.Pop(1)[0]
		p.stack.Push(expr.NewOp1(op, elem))
		return nil

	case op == opcode.OP_HASH160 || op == opcode.OP_HASH256:
		elem := p.stack.Pop(1)[0]
		inner := expr.NewOp1(opcode.OP_SHA256, elem)
		outer := opcode.OP_RIPEMD160
		if op == opcode.OP_HASH256 {
			outer = opcode.OP_SHA256
		}
		p.stack.Push(expr.NewOp1(outer, inner))
		return nil

	case op == opcode.OP_CODESEPARATOR:
		return nil

	case op == opcode.OP_CHECKSIG || op == opcode.OP_CHECKSIGVERIFY:
		elems := p.stack.Pop(2)
		p.stack.Push(expr.NewOp2(opcode.OP_CHECKSIG, elems[0], elems[1]))
		if op == opcode.OP_CHECKSIGVERIFY {
			return p.verify(scripterr.ErrCheckSigVerify)
		}
		return nil

	case op == opcode.OP_CHECKMULTISIG || op == opcode.OP_CHECKMULTISIGVERIFY:
		if err := p.stepCheckMultisig(ctx, op); err != nil {
			return err
		}
		return nil

	case op == opcode.OP_CHECKLOCKTIMEVERIFY || op == opcode.OP_CHECKSEQUENCEVERIFY:
		top := p.stack.GetBack(0)
		p.spendingConditions = append(p.spendingConditions, expr.NewOp1(op, top))
		return nil

	case op == opcode.OP_NOP1 || (op >= opcode.OP_NOP4 && op <= opcode.OP_NOP10):
		return nil

	case op == opcode.OP_CHECKSIGADD:
		if ctx.Version != context.ScriptVersionSegwitV1 {
			return scripterr.New(scripterr.ErrBadOpcode)
		}
		elems := p.stack.Pop(3)
		sig, n, pk := elems[0], elems[1], elems[2]
		p.stack.Push(expr.NewOp2(opcode.OP_ADD, n, expr.NewOp2(opcode.OP_CHECKSIG, sig, pk)))
		return nil

	default:
		return scripterr.New(scripterr.ErrBadOpcode)
	}
}

func isBinaryArith(op opcode.Opcode) bool {
	switch op {
	case opcode.OP_ADD, opcode.OP_SUB, opcode.OP_BOOLAND, opcode.OP_BOOLOR,
		opcode.OP_NUMEQUAL, opcode.OP_NUMEQUALVERIFY, opcode.OP_NUMNOTEQUAL,
		opcode.OP_LESSTHAN, opcode.OP_GREATERTHAN, opcode.OP_LESSTHANOREQUAL,
		opcode.OP_GREATERTHANOREQUAL, opcode.OP_MIN, opcode.OP_MAX:
		return true
	default:
		return false
	}
}

func (p *pathAnalyzer) stepBinaryArith(op opcode.Opcode) error {
	elems := p.stack.Pop(2)
	a, b := elems[0], elems[1]

	var resultOp opcode.Opcode
	switch op {
	case opcode.OP_ADD:
		resultOp = opcode.OP_ADD
	case opcode.OP_SUB:
		resultOp = opcode.OP_SUB
	case opcode.OP_BOOLAND:
		resultOp = opcode.OP_BOOLAND
	case opcode.OP_BOOLOR:
		resultOp = opcode.OP_BOOLOR
	case opcode.OP_NUMEQUAL, opcode.OP_NUMEQUALVERIFY:
		resultOp = opcode.OP_NUMEQUAL
	case opcode.OP_NUMNOTEQUAL:
		resultOp = opcode.OP_NUMNOTEQUAL
	case opcode.OP_LESSTHAN:
		resultOp = opcode.OP_LESSTHAN
	case opcode.OP_GREATERTHAN:
		a, b = b, a
		resultOp = opcode.OP_LESSTHAN
	case opcode.OP_LESSTHANOREQUAL:
		resultOp = opcode.OP_LESSTHANOREQUAL
	case opcode.OP_GREATERTHANOREQUAL:
		a, b = b, a
		resultOp = opcode.OP_LESSTHANOREQUAL
	case opcode.OP_MIN:
		resultOp = opcode.OP_MIN
	case opcode.OP_MAX:
		resultOp = opcode.OP_MAX
	}

	p.stack.Push(expr.NewOp2(resultOp, a, b))
	if op == opcode.OP_NUMEQUALVERIFY {
		return p.verify(scripterr.ErrNumEqualVerify)
	}
	return nil
}

func (p *pathAnalyzer) stepPickRoll(op opcode.Opcode) error {
	index, err := p.numFromStack()
	if err != nil {
		return err
	}
	if index < 0 {
		return scripterr.New(scripterr.ErrInvalidStackOperation)
	}
	i := int(index)
	var elem expr.Expr
	if op == opcode.OP_PICK {
		elem = p.stack.GetBack(i)
	} else {
		elem = p.stack.RemoveBack(i)
	}
	p.stack.Push(elem)
	return nil
}

func (p *pathAnalyzer) stepIf(op opcode.Opcode, ctx context.ScriptContext, fExec bool, d *dispatcher) error {
	if !fExec {
		p.cs.PushBack(false)
		return nil
	}

	minimalIf := ctx.RequiresMinimalIf()
	elem := p.stack.Pop(1)[0]
	fork := p.clone()

	p.cs.PushBack(op == opcode.OP_IF)
	fork.cs.PushBack(op != opcode.OP_IF)

	if minimalIf {
		errCode := scripterr.ErrMinimalIf
		if ctx.Version == context.ScriptVersionSegwitV1 {
			errCode = scripterr.ErrTapscriptMinimalIf
		}
		p.spendingConditions = append(p.spendingConditions,
			expr.NewOp2WithError(opcode.OP_EQUAL, elem, expr.NewBytesOwned(script.True), errCode))
		fork.spendingConditions = append(fork.spendingConditions,
			expr.NewOp2WithError(opcode.OP_EQUAL, elem, expr.NewBytesOwned(script.False), errCode))
	} else {
		p.spendingConditions = append(p.spendingConditions, elem)
		fork.spendingConditions = append(fork.spendingConditions, expr.NewOp1(opcode.OP_INTERNAL_NOT, elem))
	}

	d.dispatch(fork)
	return nil
}

func (p *pathAnalyzer) stepIfDup(d *dispatcher) error {
	elem := p.stack.GetBack(0)

	fork := p.clone()
	fork.spendingConditions = append(fork.spendingConditions, expr.NewOp1(opcode.OP_INTERNAL_NOT, elem))
	d.dispatch(fork)

	p.spendingConditions = append(p.spendingConditions, elem)
	p.stack.Push(elem)
	return nil
}

func (p *pathAnalyzer) stepCheckMultisig(ctx context.ScriptContext, op opcode.Opcode) error {
	if ctx.Version == context.ScriptVersionSegwitV1 {
		return scripterr.New(scripterr.ErrTapscriptCheckMultisig)
	}

	kcount, err := p.numFromStack()
	if err != nil {
		return err
	}
	if kcount < 0 || kcount > 20 {
		return scripterr.New(scripterr.ErrPubkeyCount)
	}
	pks := p.stack.Pop(int(kcount))

	scount, err := p.numFromStack()
	if err != nil {
		return err
	}
	if scount < 0 || scount > kcount {
		return scripterr.New(scripterr.ErrSigCount)
	}
	sigs := p.stack.Pop(int(scount))

	dummy := p.stack.Pop(1)[0]

	if ctx.Rules == context.ScriptRulesAll {
		p.spendingConditions = append(p.spendingConditions,
			expr.NewOp2WithError(opcode.OP_EQUAL, dummy, expr.NewBytesOwned(nil), scripterr.ErrSigNullDummy))
	}

	args := make([]expr.Expr, 0, len(sigs)+len(pks))
	args = append(args, sigs...)
	args = append(args, pks...)
	p.stack.Push(expr.NewMultisig(args, len(sigs)))

	if op == opcode.OP_CHECKMULTISIGVERIFY {
		return p.verify(scripterr.ErrCheckMultisigVerify)
	}
	return nil
}

// evalConditions runs the fixpoint simplifier over p.spendingConditions:
// drop conditions folded to true, fail on those folded to false, flatten
// BOOLAND conjuncts, fail the path on a contradiction (NOT(x) beside x),
// drop idempotent duplicates,
// and substitute proven facts (NOT(x), EQUAL(a,b), a bare boolean-valued
// condition) into the remaining conditions before re-evaluating them.
func (p *pathAnalyzer) evalConditions(ctx context.ScriptContext) error {
restart:
	for {
		exprs := p.spendingConditions
		expr.SortRecursive(exprs)

		j := 0
	jLoop:
		for j < len(exprs) {
			e1 := exprs[j]

			if b, ok := e1.(expr.Bytes); ok {
				if script.DecodeBool(b) {
					exprs = append(exprs[:j], exprs[j+1:]...)
					p.spendingConditions = exprs
					continue jLoop
				}
				return scripterr.New(scripterr.ErrUnknownError)
			}

			if op, ok := e1.(*expr.Op); ok && !op.IsMultisig() && op.Opcode == opcode.OP_BOOLAND && len(op.Args) == 2 {
				exprs = append(exprs[:j], exprs[j+1:]...)
				exprs = append(exprs, op.Args...)
				p.spendingConditions = exprs
				goto restart
			}

			for k := 0; k < len(exprs); k++ {
				if j == k {
					continue
				}
				e2 := exprs[k]

				if expr.Equal(e1, e2) {
					exprs = append(exprs[:k], exprs[k+1:]...)
					p.spendingConditions = exprs
					goto restart
				}

				if op1, ok := e1.(*expr.Op); ok && !op1.IsMultisig() && len(op1.Args) == 1 &&
					(op1.Opcode == opcode.OP_NOT || op1.Opcode == opcode.OP_INTERNAL_NOT) {

					if expr.Equal(op1.Args[0], e2) {
						return scripterr.New(scripterr.ErrUnknownError)
					}

					if innerOp, ok := op1.Args[0].(*expr.Op); ok && !innerOp.IsMultisig() && innerOp.Opcode.ReturnsBoolean() {
						res := e2
						if expr.ReplaceAll(&res, op1.Args[0], expr.NewBytesOwned(script.False)) {
							exprs[k] = res
							p.spendingConditions = exprs
							goto restart
						}
					}
				}

				if op1, ok := e1.(*expr.Op); ok && !op1.IsMultisig() && op1.Opcode == opcode.OP_EQUAL && len(op1.Args) == 2 {
					res := e2
					if expr.ReplaceAll(&res, op1.Args[0], op1.Args[1]) {
						exprs[k] = res
						p.spendingConditions = exprs
						goto restart
					}
				}

				if op1, ok := e1.(*expr.Op); ok && op1.Opcode.ReturnsBoolean() {
					res := e2
					if expr.ReplaceAll(&res, e1, expr.NewBytesOwned(script.True)) {
						exprs[k] = res
						p.spendingConditions = exprs
						goto restart
					}
				}
			}

			changed, err := expr.Eval(&exprs[j], ctx)
			if err != nil {
				return err
			}
			if changed {
				p.spendingConditions = exprs
				goto restart
			}

			j++
		}

		return nil
	}
}

// calculateLocktimeRequirements pulls every OP_CHECKLOCKTIMEVERIFY/
// OP_CHECKSEQUENCEVERIFY condition out of p.spendingConditions, merging
// constant requirements to their tightest common bound and erroring if two
// constants disagree on height-vs-time classification.
func (p *pathAnalyzer) calculateLocktimeRequirements() (LocktimeRequirement, LocktimeRequirement, error) {
	var locktimeReq, sequenceReq LocktimeRequirement

	i := 0
	for i < len(p.spendingConditions) {
		op, ok := p.spendingConditions[i].(*expr.Op)
		if !ok || op.IsMultisig() || len(op.Args) != 1 ||
			(op.Opcode != opcode.OP_CHECKLOCKTIMEVERIFY && op.Opcode != opcode.OP_CHECKSEQUENCEVERIFY) {
			i++
			continue
		}

		relative := op.Opcode == opcode.OP_CHECKSEQUENCEVERIFY
		target := &locktimeReq
		if relative {
			target = &sequenceReq
		}

		arg := op.Args[0]
		if b, ok := arg.(expr.Bytes); ok {
			minValue, err := script.DecodeInt(b, 5)
			if err != nil {
				return LocktimeRequirement{}, LocktimeRequirement{}, err
			}
			if minValue < 0 {
				return LocktimeRequirement{}, LocktimeRequirement{}, scripterr.New(scripterr.ErrNegativeLocktime)
			}
			if !relative && minValue > int64(^uint32(0)) {
				return LocktimeRequirement{}, LocktimeRequirement{}, scripterr.New(scripterr.ErrUnsatisfiedLocktime)
			}
			v := uint32(minValue)
			if relative {
				v &= locktime.SequenceLocktimeTypeFlag | locktime.SequenceLocktimeMask
			}

			if target.Req != nil {
				if !locktime.TypeEquals(*target.Req, v, relative) {
					return LocktimeRequirement{}, LocktimeRequirement{}, scripterr.New(scripterr.ErrUnsatisfiedLocktime)
				}
				if *target.Req < v {
					*target.Req = v
				}
			} else {
				vv := v
				target.Req = &vv
			}
		} else {
			target.Exprs = append(target.Exprs, arg)
		}

		p.spendingConditions = append(p.spendingConditions[:i], p.spendingConditions[i+1:]...)
	}

	return locktimeReq, sequenceReq, nil
}

func (p *pathAnalyzer) finalize() (*Result, error) {
	locktimeReq, sequenceReq, err := p.calculateLocktimeRequirements()
	if err != nil {
		return nil, err
	}
	return &Result{
		StackSize:          p.stack.ItemsUsed(),
		SpendingConditions: p.spendingConditions,
		LocktimeReq:        locktimeReq,
		SequenceReq:        sequenceReq,
	}, nil
}
