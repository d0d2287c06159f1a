package ir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chinanuke/bwcc/internal/ast"
	"github.com/chinanuke/bwcc/internal/errors"
)

// relCodes maps a relational/equality operator's source spelling to the
// jump-condition suffix the code generator emits (jg, jl, je, ...).
var relCodes = map[string]string{
	">": "g", "<": "l", "==": "eq", ">=": "ge", "<=": "le", "!=": "ne",
}

var compoundAssignOps = map[string]bool{
	"+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"<<=": true, ">>=": true, "&=": true, "|=": true, "^=": true,
}

type loopLabels struct {
	breakLabel    string
	continueLabel string
}

// Translator lowers a *ast.FileAST into a Program of quadruples. It holds
// no parser state; a fresh Translator is used per compilation unit, and
// every counter (temp, label, constant) starts at zero.
type Translator struct {
	prog *Program

	cur      *SymbolTable
	curFunc  string
	tempNum  int
	labelNum int

	loops []loopLabels
	err   *errors.CompilerError
	src   string
}

// New creates a Translator. src is the original source text, kept only so
// translator errors can render a caret the same way lexer and parser
// errors do.
func New(src string) *Translator {
	return &Translator{
		prog: &Program{
			FuncTable: make(map[string]*SymbolTable),
			Constants: NewConstantTable(),
			Globals:   NewSymbolTable(),
		},
		src: src,
	}
}

func (tr *Translator) Err() error {
	if tr.err == nil {
		return nil
	}
	return tr.err
}

func (tr *Translator) errorf(pos ast.Coord, format string, args ...any) {
	if tr.err != nil {
		return
	}
	tr.err = errors.NewCompilerError(errors.Translator, pos, fmt.Sprintf(format, args...), tr.src)
}

func (tr *Translator) failed() bool { return tr.err != nil }

// newTemp allocates a fresh temporary and gives it a stack slot in the
// current function's symbol table, exactly like any other local: the
// code generator addresses temps the same way it addresses declared
// variables, so they need a frame offset too.
func (tr *Translator) newTemp() string {
	tr.tempNum++
	name := fmt.Sprintf("_t%d", tr.tempNum)
	if tr.cur != nil {
		tr.cur.Declare(name, 4, 1)
	}
	return name
}

func (tr *Translator) newLabel() string {
	tr.labelNum++
	return fmt.Sprintf("L%d", tr.labelNum)
}

func (tr *Translator) emit(op, arg1, arg2, result string) {
	tr.prog.Quads = append(tr.prog.Quads, Quad{Op: op, Arg1: arg1, Arg2: arg2, Result: result})
}

func (tr *Translator) emitLabel(name string) { tr.emit("label", "", "", name) }

// Translate lowers file into a quadruple Program.
func Translate(file *ast.FileAST, src string) (*Program, error) {
	tr := New(src)
	for _, decl := range file.Decls {
		if tr.failed() {
			break
		}
		switch d := decl.(type) {
		case *ast.FuncDef:
			tr.translateFunc(d)
		case *ast.Decl:
			if _, isPrototype := d.Type.(*ast.FuncDecl); isPrototype {
				// A function prototype with no body: nothing to
				// lower, and not a variable to give storage to.
				continue
			}
			width, count := typeInfo(d.Type)
			tr.prog.Globals.Declare(d.Name, width, count)
		case *ast.Typedef:
			// Typedefs carry no runtime representation.
		}
	}
	if err := tr.Err(); err != nil {
		return nil, err
	}
	return tr.prog, nil
}

// typeInfo walks a declarator chain to the element width and element
// count (the product of every constant array dimension met before the
// first pointer or base type). Pointers are always 4 bytes
// wide; this subset does no pointer-arithmetic scaling beyond array
// indexing.
func typeInfo(t ast.Type) (width, count int) {
	count = 1
	node := t
	for {
		switch n := node.(type) {
		case *ast.PtrDecl:
			return 4, count
		case *ast.ArrayDecl:
			if lit, ok := n.Dim.(*ast.Constant); ok && lit.TypeTag == "int" {
				if v, err := strconv.Atoi(normalizeIntLiteral(lit.Literal)); err == nil {
					count *= v
				}
			}
			node = n.Inner
		case *ast.FuncDecl:
			node = n.Inner
		case *ast.TypeDecl:
			node = n.Inner
		case *ast.IdentifierType:
			return widthOf(n.Names), count
		case *ast.Struct, *ast.Enum:
			return 4, count
		default:
			return 4, count
		}
	}
}

// normalizeIntLiteral strips the u/U/l/L suffix the lexer greedily
// consumed, leaving a string strconv.Atoi can parse.
func normalizeIntLiteral(lit string) string {
	return strings.TrimRight(lit, "uUlL")
}

func (tr *Translator) translateFunc(fd *ast.FuncDef) {
	name := fd.Decl.Name
	table := NewSymbolTable()
	tr.prog.FuncTable[name] = table
	tr.prog.Funcs = append(tr.prog.Funcs, name)
	tr.cur = table
	tr.curFunc = name

	var paramNames []string
	if funcDecl, ok := fd.Decl.Type.(*ast.FuncDecl); ok && funcDecl.Params != nil {
		for _, param := range funcDecl.Params.Params {
			if param.Name == "" {
				continue
			}
			width, count := typeInfo(param.Type)
			table.Declare(param.Name, width, count)
			paramNames = append(paramNames, param.Name)
		}
	}

	tr.emit("func", name, strconv.Itoa(len(paramNames)), "")
	if fd.Body != nil {
		tr.translateCompound(fd.Body)
	}
	tr.emit("endfunc", name, "", "")
	table.FinalizeOffsets()
}

func (tr *Translator) translateCompound(c *ast.Compound) {
	for _, item := range c.Items {
		if tr.failed() {
			return
		}
		tr.translateStmt(item)
	}
}

func (tr *Translator) translateStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.Decl:
		tr.translateLocalDecl(n)
	case *ast.DeclList:
		for _, d := range n.Decls {
			tr.translateLocalDecl(d)
		}
	case *ast.Typedef:
		// no runtime representation
	case *ast.Compound:
		tr.translateCompound(n)
	case *ast.ExprStmt:
		if n.Expr != nil {
			tr.translateExpr(n.Expr)
		}
	case *ast.EmptyStatement:
		// nothing to emit
	case *ast.If:
		tr.translateIf(n)
	case *ast.While:
		tr.translateWhile(n)
	case *ast.DoWhile:
		tr.translateDoWhile(n)
	case *ast.For:
		tr.translateFor(n)
	case *ast.Break:
		if len(tr.loops) == 0 {
			tr.errorf(n.Pos(), "break outside a loop")
			return
		}
		tr.emit("j", "", "", tr.loops[len(tr.loops)-1].breakLabel)
	case *ast.Continue:
		if len(tr.loops) == 0 {
			tr.errorf(n.Pos(), "continue outside a loop")
			return
		}
		tr.emit("j", "", "", tr.loops[len(tr.loops)-1].continueLabel)
	case *ast.Return:
		if n.Expr == nil {
			tr.emit("return", "", "", "")
			return
		}
		val := tr.translateExpr(n.Expr)
		tr.emit("return", val, "", "")
	default:
		tr.errorf(s.Pos(), "statement kind not supported by the translator")
	}
}

func (tr *Translator) translateLocalDecl(d *ast.Decl) {
	width, count := typeInfo(d.Type)
	tr.cur.Declare(d.Name, width, count)
	if d.Init == nil {
		return
	}
	if list, ok := d.Init.(*ast.InitList); ok {
		for i, elem := range list.Exprs {
			val := tr.translateExpr(elem)
			offset := tr.newTemp()
			tr.emit("=", fmt.Sprintf("$%d", i), "", offset)
			scaled := tr.newTemp()
			tr.emit("*", offset, fmt.Sprintf("$%d", width), scaled)
			tr.emit("[]=", d.Name, scaled, val)
		}
		return
	}
	val := tr.translateExpr(d.Init)
	tr.emit("=", val, "", d.Name)
}

func (tr *Translator) translateIf(n *ast.If) {
	ltrue := tr.newLabel()
	lend := tr.newLabel()
	if n.Else == nil {
		tr.translateCondition(n.Cond, ltrue, lend)
		tr.emitLabel(ltrue)
		tr.translateStmt(n.Then)
		tr.emitLabel(lend)
		return
	}
	lfalse := tr.newLabel()
	tr.translateCondition(n.Cond, ltrue, lfalse)
	tr.emitLabel(ltrue)
	tr.translateStmt(n.Then)
	tr.emit("j", "", "", lend)
	tr.emitLabel(lfalse)
	tr.translateStmt(n.Else)
	tr.emitLabel(lend)
}

func (tr *Translator) translateWhile(n *ast.While) {
	lstart := tr.newLabel()
	lbody := tr.newLabel()
	lend := tr.newLabel()

	tr.emitLabel(lstart)
	tr.translateCondition(n.Cond, lbody, lend)
	tr.emitLabel(lbody)
	tr.loops = append(tr.loops, loopLabels{breakLabel: lend, continueLabel: lstart})
	tr.translateStmt(n.Body)
	tr.loops = tr.loops[:len(tr.loops)-1]
	tr.emit("j", "", "", lstart)
	tr.emitLabel(lend)
}

// translateDoWhile mirrors While but tests the condition at the bottom,
// with one branch back to the body label, since the body always executes
// at least once.
func (tr *Translator) translateDoWhile(n *ast.DoWhile) {
	lbody := tr.newLabel()
	lcond := tr.newLabel()
	lend := tr.newLabel()

	tr.emitLabel(lbody)
	tr.loops = append(tr.loops, loopLabels{breakLabel: lend, continueLabel: lcond})
	tr.translateStmt(n.Body)
	tr.loops = tr.loops[:len(tr.loops)-1]
	tr.emitLabel(lcond)
	tr.translateCondition(n.Cond, lbody, lend)
	tr.emitLabel(lend)
}

func (tr *Translator) translateFor(n *ast.For) {
	if n.Init != nil {
		tr.translateStmt(n.Init)
	}
	lstart := tr.newLabel()
	lbody := tr.newLabel()
	lcontinue := tr.newLabel()
	lend := tr.newLabel()

	tr.emitLabel(lstart)
	if n.Cond != nil {
		tr.translateCondition(n.Cond, lbody, lend)
	} else {
		tr.emit("j", "", "", lbody)
	}
	tr.emitLabel(lbody)
	tr.loops = append(tr.loops, loopLabels{breakLabel: lend, continueLabel: lcontinue})
	tr.translateStmt(n.Body)
	tr.loops = tr.loops[:len(tr.loops)-1]
	tr.emitLabel(lcontinue)
	if n.Next != nil {
		tr.translateExpr(n.Next)
	}
	tr.emit("j", "", "", lstart)
	tr.emitLabel(lend)
}

// translateCondition lowers e as a branch, jumping to trueLabel or
// falseLabel without ever materializing a boolean value. Relational
// comparisons emit one conditional jump plus a fallthrough jump; `&&`,
// `||` and `!` get real short-circuit lowering here rather than
// evaluating both sides unconditionally.
func (tr *Translator) translateCondition(e ast.Expr, trueLabel, falseLabel string) {
	if tr.failed() {
		return
	}
	switch n := e.(type) {
	case *ast.BinaryOp:
		if code, ok := relCodes[n.Op]; ok {
			l := tr.translateExpr(n.Left)
			r := tr.translateExpr(n.Right)
			tr.emit("j"+code, l, r, trueLabel)
			tr.emit("j", "", "", falseLabel)
			return
		}
		if n.Op == "&&" {
			mid := tr.newLabel()
			tr.translateCondition(n.Left, mid, falseLabel)
			tr.emitLabel(mid)
			tr.translateCondition(n.Right, trueLabel, falseLabel)
			return
		}
		if n.Op == "||" {
			mid := tr.newLabel()
			tr.translateCondition(n.Left, trueLabel, mid)
			tr.emitLabel(mid)
			tr.translateCondition(n.Right, trueLabel, falseLabel)
			return
		}
	case *ast.UnaryOp:
		if n.Op == "!" {
			tr.translateCondition(n.Operand, falseLabel, trueLabel)
			return
		}
	}
	val := tr.translateExpr(e)
	tr.emit("jne", val, "$0", trueLabel)
	tr.emit("j", "", "", falseLabel)
}

var arithOps = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true,
	"&": true, "|": true, "^": true, "<<": true, ">>": true,
}

// translateExpr lowers e to a "place": a variable name, a `$literal`
// immediate, a constant label, or a _tN temporary holding the result.
func (tr *Translator) translateExpr(e ast.Expr) string {
	if tr.failed() {
		return "$0"
	}
	switch n := e.(type) {
	case *ast.ID:
		return n.Name
	case *ast.Constant:
		return tr.translateConstant(n)
	case *ast.BinaryOp:
		return tr.translateBinary(n)
	case *ast.UnaryOp:
		return tr.translateUnary(n)
	case *ast.TernaryOp:
		return tr.translateTernary(n)
	case *ast.Assignment:
		return tr.translateAssignment(n)
	case *ast.FuncCall:
		return tr.translateCall(n)
	case *ast.ArrayRef:
		return tr.translateArrayLoad(n)
	case *ast.ExprList:
		var last string
		for _, sub := range n.Exprs {
			last = tr.translateExpr(sub)
		}
		return last
	case *ast.StructRef:
		tr.errorf(n.Pos(), "struct member access is not supported by the code generator")
		return "$0"
	default:
		tr.errorf(e.Pos(), "expression kind not supported by the translator")
		return "$0"
	}
}

func (tr *Translator) translateConstant(c *ast.Constant) string {
	switch c.TypeTag {
	case "int":
		return "$" + normalizeIntLiteral(c.Literal)
	case "char":
		inner := strings.Trim(c.Literal, "'")
		return fmt.Sprintf("$%d", []rune(inner)[0])
	case "float":
		return "$" + c.Literal
	case "string":
		text := strings.Trim(c.Literal, `"`)
		text = strings.ReplaceAll(text, "\n", `\n`)
		return tr.prog.Constants.Intern(tr.curFunc, text)
	default:
		return "$0"
	}
}

func (tr *Translator) translateBinary(n *ast.BinaryOp) string {
	if _, ok := relCodes[n.Op]; ok || n.Op == "&&" || n.Op == "||" {
		return tr.materializeCondition(n)
	}
	if !arithOps[n.Op] {
		tr.errorf(n.Pos(), "unsupported binary operator %q", n.Op)
		return "$0"
	}
	l := tr.translateExpr(n.Left)
	r := tr.translateExpr(n.Right)
	t := tr.newTemp()
	tr.emit(n.Op, l, r, t)
	return t
}

// materializeCondition lowers a relational/logical expression used in
// value position (e.g. `done = (i == n);`) into a 0/1 result, by
// branching through translateCondition and assigning the temp on each
// side.
func (tr *Translator) materializeCondition(e ast.Expr) string {
	ltrue := tr.newLabel()
	lfalse := tr.newLabel()
	lend := tr.newLabel()
	t := tr.newTemp()
	tr.translateCondition(e, ltrue, lfalse)
	tr.emitLabel(ltrue)
	tr.emit("=", "$1", "", t)
	tr.emit("j", "", "", lend)
	tr.emitLabel(lfalse)
	tr.emit("=", "$0", "", t)
	tr.emitLabel(lend)
	return t
}

func (tr *Translator) translateUnary(n *ast.UnaryOp) string {
	switch n.Op {
	case "+":
		return tr.translateExpr(n.Operand)
	case "-":
		v := tr.translateExpr(n.Operand)
		t := tr.newTemp()
		tr.emit("-", "$0", v, t)
		return t
	case "~":
		v := tr.translateExpr(n.Operand)
		t := tr.newTemp()
		tr.emit("not", v, "", t)
		return t
	case "!":
		return tr.materializeCondition(n)
	case "++", "--":
		op := "+"
		if n.Op == "--" {
			op = "-"
		}
		old := tr.translateExpr(n.Operand)
		t := tr.newTemp()
		tr.emit(op, old, "$1", t)
		tr.storeTo(n.Operand, t)
		return t
	case "p++", "p--":
		op := "+"
		if n.Op == "p--" {
			op = "-"
		}
		old := tr.translateExpr(n.Operand)
		saved := tr.newTemp()
		tr.emit("=", old, "", saved)
		t := tr.newTemp()
		tr.emit(op, old, "$1", t)
		tr.storeTo(n.Operand, t)
		return saved
	case "&":
		if id, ok := n.Operand.(*ast.ID); ok {
			return "&" + id.Name
		}
		tr.errorf(n.Pos(), "address-of is only supported on a plain variable")
		return "$0"
	case "*":
		v := tr.translateExpr(n.Operand)
		t := tr.newTemp()
		tr.emit("=*", v, "", t)
		return t
	default:
		tr.errorf(n.Pos(), "unsupported unary operator %q", n.Op)
		return "$0"
	}
}

func (tr *Translator) translateTernary(n *ast.TernaryOp) string {
	lthen := tr.newLabel()
	lelse := tr.newLabel()
	lend := tr.newLabel()
	t := tr.newTemp()
	tr.translateCondition(n.Cond, lthen, lelse)
	tr.emitLabel(lthen)
	v1 := tr.translateExpr(n.Then)
	tr.emit("=", v1, "", t)
	tr.emit("j", "", "", lend)
	tr.emitLabel(lelse)
	v2 := tr.translateExpr(n.Else)
	tr.emit("=", v2, "", t)
	tr.emitLabel(lend)
	return t
}

// translateAssignment lowers `lvalue = rvalue`. Compound forms (+=, -=,
// ...) parse but are rejected here with a structured error rather than
// silently lowered incorrectly.
func (tr *Translator) translateAssignment(n *ast.Assignment) string {
	if compoundAssignOps[n.Op] {
		tr.errorf(n.Pos(), "compound assignment operator %q is not supported by the translator", n.Op)
		return "$0"
	}
	val := tr.translateExpr(n.RValue)
	tr.storeTo(n.LValue, val)
	return val
}

func (tr *Translator) storeTo(lvalue ast.Expr, value string) {
	switch l := lvalue.(type) {
	case *ast.ID:
		tr.emit("=", value, "", l.Name)
	case *ast.ArrayRef:
		tr.storeArray(l, value)
	default:
		tr.errorf(lvalue.Pos(), "expression is not assignable")
	}
}

func (tr *Translator) elementWidth(arrayName string, pos ast.Coord) int {
	if sym, ok := tr.cur.Lookup(arrayName); ok {
		return sym.Width
	}
	if sym, ok := tr.prog.Globals.Lookup(arrayName); ok {
		return sym.Width
	}
	tr.errorf(pos, "undeclared identifier %q", arrayName)
	return 4
}

func (tr *Translator) translateArrayLoad(n *ast.ArrayRef) string {
	base, ok := n.Array.(*ast.ID)
	if !ok {
		tr.errorf(n.Pos(), "only single-dimension indexing of a named array is supported")
		return "$0"
	}
	width := tr.elementWidth(base.Name, n.Pos())
	idx := tr.translateExpr(n.Index)
	scaled := tr.newTemp()
	tr.emit("*", idx, fmt.Sprintf("$%d", width), scaled)
	t := tr.newTemp()
	tr.emit("=[]", base.Name, scaled, t)
	return t
}

func (tr *Translator) storeArray(n *ast.ArrayRef, value string) {
	base, ok := n.Array.(*ast.ID)
	if !ok {
		tr.errorf(n.Pos(), "only single-dimension indexing of a named array is supported")
		return
	}
	width := tr.elementWidth(base.Name, n.Pos())
	idx := tr.translateExpr(n.Index)
	scaled := tr.newTemp()
	tr.emit("*", idx, fmt.Sprintf("$%d", width), scaled)
	tr.emit("[]=", base.Name, scaled, value)
}

// translateCall lowers a call, emitting `param` quads in reverse argument
// order (cdecl pushes right-to-left) after every argument expression has
// already been evaluated left-to-right. Each param quad carries its
// reverse index and the total argument count so the code generator can
// place it at a fixed %esp-relative offset instead of pushing; each one
// also grows the current function's outgoing-argument reservation by a
// word, the same way a new temp grows it by the temp's width.
func (tr *Translator) translateCall(n *ast.FuncCall) string {
	var args []string
	if n.Args != nil {
		for _, a := range n.Args.Exprs {
			args = append(args, tr.translateExpr(a))
		}
	}
	argc := len(args)
	for i := argc - 1; i >= 0; i-- {
		reverseIdx := argc - 1 - i
		tr.emit("param", strconv.Itoa(reverseIdx), args[i], strconv.Itoa(argc))
		tr.cur.GrowOutArgs(4)
	}
	t := tr.newTemp()
	tr.emit("call", n.Callee.Name, strconv.Itoa(argc), t)
	return t
}
