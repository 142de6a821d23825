package dmast

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DecodeError reports a malformed program dump at the offending YAML node.
type DecodeError struct {
	Line   int
	Column int
	Msg    string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("dump %d:%d: %s", e.Line, e.Column, e.Msg)
}

// Decode reads a program dump. JSON dumps decode too, since JSON is YAML.
func Decode(r io.Reader) (*Program, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("dmast: empty dump")
		}
		return nil, fmt.Errorf("dmast: read dump: %w", err)
	}
	var prog *Program
	err := run(func(d *decoder) { prog = d.program(document(&doc)) })
	return prog, err
}

// DecodeBlock reads a statement list in dump encoding, as stored in
// Proc.RawBody.
func DecodeBlock(data []byte) (Block, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("dmast: read block: %w", err)
	}
	var block Block
	err := run(func(d *decoder) { block = d.block(document(&doc)) })
	return block, err
}

func document(n *yaml.Node) *yaml.Node {
	if n.Kind == yaml.DocumentNode && len(n.Content) == 1 {
		return n.Content[0]
	}
	return n
}

// bailout carries a DecodeError up through the recursive decoder.
type bailout struct{ err *DecodeError }

func run(fn func(d *decoder)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			err = b.err
		}
	}()
	fn(&decoder{})
	return nil
}

type decoder struct{}

func (d *decoder) fail(n *yaml.Node, format string, args ...any) {
	e := &DecodeError{Msg: fmt.Sprintf(format, args...)}
	if n != nil {
		e.Line, e.Column = n.Line, n.Column
	}
	panic(bailout{e})
}

func isNull(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}

// mapping returns the key/value pairs of a mapping node in source order.
func (d *decoder) mapping(n *yaml.Node) ([]string, map[string]*yaml.Node) {
	if n == nil || n.Kind != yaml.MappingNode {
		d.fail(n, "expected a mapping")
	}
	keys := make([]string, 0, len(n.Content)/2)
	vals := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := n.Content[i].Value
		if _, dup := vals[k]; dup {
			d.fail(n.Content[i], "duplicate key %q", k)
		}
		keys = append(keys, k)
		vals[k] = n.Content[i+1]
	}
	return keys, vals
}

// tagged splits a node into its single shape key and the remaining
// attribute keys (loc, follow). It fails unless exactly one shape key is set.
func (d *decoder) tagged(n *yaml.Node, what string) (string, *yaml.Node, map[string]*yaml.Node) {
	keys, vals := d.mapping(n)
	var kind string
	for _, k := range keys {
		if k == "loc" || k == "follow" {
			continue
		}
		if kind != "" {
			d.fail(n, "%s has more than one shape: %q and %q", what, kind, k)
		}
		kind = k
	}
	if kind == "" {
		d.fail(n, "%s has no shape key", what)
	}
	return kind, vals[kind], vals
}

func (d *decoder) sequence(n *yaml.Node) []*yaml.Node {
	if isNull(n) {
		return nil
	}
	if n.Kind != yaml.SequenceNode {
		d.fail(n, "expected a sequence")
	}
	return n.Content
}

func (d *decoder) str(n *yaml.Node) string {
	if n == nil || n.Kind != yaml.ScalarNode {
		d.fail(n, "expected a scalar")
	}
	return n.Value
}

func (d *decoder) optStr(n *yaml.Node) string {
	if isNull(n) {
		return ""
	}
	return d.str(n)
}

func (d *decoder) strs(n *yaml.Node) []string {
	items := d.sequence(n)
	if items == nil {
		return nil
	}
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = d.str(item)
	}
	return out
}

func (d *decoder) boolean(n *yaml.Node) bool {
	if isNull(n) {
		return false
	}
	b, err := strconv.ParseBool(d.str(n))
	if err != nil {
		d.fail(n, "expected a boolean, got %q", n.Value)
	}
	return b
}

func (d *decoder) uint(n *yaml.Node, bits int) uint64 {
	v, err := strconv.ParseUint(d.str(n), 0, bits)
	if err != nil {
		d.fail(n, "expected an unsigned %d-bit integer, got %q", bits, n.Value)
	}
	return v
}

func (d *decoder) int32(n *yaml.Node) int32 {
	v, err := strconv.ParseInt(d.str(n), 0, 32)
	if err != nil {
		d.fail(n, "expected a 32-bit integer, got %q", n.Value)
	}
	return int32(v)
}

func (d *decoder) float32(n *yaml.Node) float32 {
	v, err := strconv.ParseFloat(d.str(n), 32)
	if err != nil {
		d.fail(n, "expected a number, got %q", n.Value)
	}
	return float32(v)
}

// location reads "[file, line, column]". A missing node is the zero location.
func (d *decoder) location(n *yaml.Node) Location {
	if isNull(n) {
		return Location{}
	}
	parts := d.sequence(n)
	if len(parts) != 3 {
		d.fail(n, "location must be [file, line, column]")
	}
	return Location{
		File:   FileID(d.uint(parts[0], 16)),
		Line:   uint32(d.uint(parts[1], 32)),
		Column: uint16(d.uint(parts[2], 16)),
	}
}

// --- object tree ---

func (d *decoder) program(n *yaml.Node) *Program {
	_, f := d.mapping(n)
	prog := &Program{
		Name:        d.optStr(f["name"]),
		ProcsParsed: d.boolean(f["procs_parsed"]),
	}
	seen := make(map[FileID]bool)
	for _, item := range d.sequence(f["files"]) {
		_, ff := d.mapping(item)
		file := File{ID: FileID(d.uint(ff["id"], 16)), Path: d.str(ff["path"])}
		if seen[file.ID] {
			d.fail(item, "duplicate file id %d", file.ID)
		}
		seen[file.ID] = true
		prog.Files = append(prog.Files, file)
	}
	for _, item := range d.sequence(f["types"]) {
		prog.Types = append(prog.Types, d.typ(item))
	}
	return prog
}

func (d *decoder) typ(n *yaml.Node) Type {
	_, f := d.mapping(n)
	t := Type{Path: d.str(f["path"]), Loc: d.location(f["loc"])}
	if !strings.HasPrefix(t.Path, "/") {
		d.fail(f["path"], "type path %q is not rooted", t.Path)
	}
	for _, item := range d.sequence(f["vars"]) {
		_, vf := d.mapping(item)
		t.Vars = append(t.Vars, TypeVar{
			Name:     d.str(vf["name"]),
			Declared: d.boolean(vf["decl"]),
			VarType:  d.strs(vf["type"]),
			Value:    d.constant(vf["value"]),
			Loc:      d.location(vf["loc"]),
		})
	}
	for _, item := range d.sequence(f["procs"]) {
		t.Procs = append(t.Procs, d.proc(item))
	}
	return t
}

func (d *decoder) proc(n *yaml.Node) Proc {
	_, f := d.mapping(n)
	p := Proc{
		Name:     d.str(f["name"]),
		Declared: d.boolean(f["decl"]),
		Builtin:  d.boolean(f["builtin"]),
		Loc:      d.location(f["loc"]),
	}
	for _, item := range d.sequence(f["params"]) {
		_, pf := d.mapping(item)
		p.Params = append(p.Params, Param{Name: d.str(pf["name"]), VarType: d.strs(pf["type"])})
	}
	if body := f["body"]; !isNull(body) {
		p.Body = d.block(body)
		if p.Body == nil {
			p.Body = Block{}
		}
		raw, err := yaml.Marshal(body)
		if err != nil {
			d.fail(body, "re-encode body: %v", err)
		}
		p.RawBody = raw
	}
	return p
}

// constant reads a var value: a YAML scalar, or {resource: ...} / {path: ...}.
func (d *decoder) constant(n *yaml.Node) Constant {
	if isNull(n) {
		return Constant{Kind: ConstNull}
	}
	if n.Kind == yaml.MappingNode {
		kind, v, _ := d.tagged(n, "value")
		switch kind {
		case "resource":
			return Constant{Kind: ConstResource, Text: d.str(v)}
		case "path":
			return Constant{Kind: ConstPath, Text: d.str(v)}
		case "string":
			return Constant{Kind: ConstString, Text: d.str(v)}
		}
		d.fail(n, "unknown value shape %q", kind)
	}
	switch n.Tag {
	case "!!int":
		return Constant{Kind: ConstInt, Int: d.int32(n)}
	case "!!float":
		return Constant{Kind: ConstFloat, Float: d.float32(n)}
	case "!!str":
		return Constant{Kind: ConstString, Text: n.Value}
	}
	d.fail(n, "unsupported value %q", n.Value)
	return Constant{}
}

// --- statements ---

func (d *decoder) block(n *yaml.Node) Block {
	items := d.sequence(n)
	if items == nil {
		return nil
	}
	out := make(Block, 0, len(items))
	for _, item := range items {
		stmt, loc := d.statement(item)
		out = append(out, Spanned{Stmt: stmt, Loc: loc})
	}
	return out
}

func (d *decoder) optStatement(n *yaml.Node) Statement {
	if isNull(n) {
		return nil
	}
	stmt, _ := d.statement(n)
	return stmt
}

func (d *decoder) statement(n *yaml.Node) (Statement, Location) {
	kind, v, attrs := d.tagged(n, "statement")
	loc := d.location(attrs["loc"])

	switch kind {
	case "expr":
		return ExprStmt{Expr: d.expr(v)}, loc
	case "return":
		return Return{Value: d.optExpr(v)}, loc
	case "throw":
		return Throw{Expr: d.expr(v)}, loc
	case "while":
		_, f := d.mapping(v)
		return While{Cond: d.expr(f["cond"]), Block: d.block(f["block"])}, loc
	case "do_while":
		_, f := d.mapping(v)
		return DoWhile{
			Block:   d.block(f["block"]),
			Cond:    d.expr(f["cond"]),
			CondLoc: d.location(f["cond_loc"]),
		}, loc
	case "if":
		_, f := d.mapping(v)
		stmt := If{Else: d.block(f["else"])}
		for _, item := range d.sequence(f["arms"]) {
			_, af := d.mapping(item)
			stmt.Arms = append(stmt.Arms, IfArm{
				Cond:    d.expr(af["cond"]),
				CondLoc: d.location(af["cond_loc"]),
				Block:   d.block(af["block"]),
			})
		}
		if len(stmt.Arms) == 0 {
			d.fail(v, "if statement has no arms")
		}
		return stmt, loc
	case "for_infinite":
		_, f := d.mapping(v)
		return ForInfinite{Block: d.block(f["block"])}, loc
	case "for_loop":
		_, f := d.mapping(v)
		return ForLoop{
			Init:  d.optStatement(f["init"]),
			Test:  d.optExpr(f["test"]),
			Inc:   d.optStatement(f["inc"]),
			Block: d.block(f["block"]),
		}, loc
	case "for_list":
		_, f := d.mapping(v)
		return ForList{
			Name:    d.str(f["name"]),
			VarType: d.strs(f["type"]),
			InList:  d.optExpr(f["in"]),
			Block:   d.block(f["block"]),
		}, loc
	case "for_range":
		_, f := d.mapping(v)
		return ForRange{
			Name:    d.str(f["name"]),
			VarType: d.strs(f["type"]),
			Start:   d.expr(f["start"]),
			End:     d.expr(f["end"]),
			Step:    d.optExpr(f["step"]),
			Block:   d.block(f["block"]),
		}, loc
	case "var":
		return d.varStmt(v), loc
	case "vars":
		var stmt Vars
		for _, item := range d.sequence(v) {
			stmt.Vars = append(stmt.Vars, d.varStmt(item))
		}
		return stmt, loc
	case "setting":
		_, f := d.mapping(v)
		mode := SettingMode(d.str(f["mode"]))
		if mode != SettingAssign && mode != SettingIn {
			d.fail(f["mode"], "unknown setting mode %q", mode)
		}
		return Setting{Name: d.str(f["name"]), Mode: mode, Value: d.expr(f["value"])}, loc
	case "spawn":
		_, f := d.mapping(v)
		return Spawn{Delay: d.optExpr(f["delay"]), Block: d.block(f["block"])}, loc
	case "switch":
		return d.switchStmt(v), loc
	case "try_catch":
		_, f := d.mapping(v)
		stmt := TryCatch{Try: d.block(f["try"]), Catch: d.block(f["catch"])}
		for _, item := range d.sequence(f["params"]) {
			stmt.CatchParams = append(stmt.CatchParams, d.strs(item))
		}
		return stmt, loc
	case "continue":
		return Continue{Label: d.optStr(v)}, loc
	case "break":
		return Break{Label: d.optStr(v)}, loc
	case "goto":
		return Goto{Label: d.str(v)}, loc
	case "label":
		_, f := d.mapping(v)
		return Label{Name: d.str(f["name"]), Block: d.block(f["block"])}, loc
	case "del":
		return Del{Expr: d.expr(v)}, loc
	case "crash":
		return Crash{Expr: d.optExpr(v)}, loc
	}
	d.fail(n, "unknown statement %q", kind)
	return nil, loc
}

func (d *decoder) varStmt(n *yaml.Node) Var {
	_, f := d.mapping(n)
	return Var{Name: d.str(f["name"]), VarType: d.strs(f["type"]), Value: d.optExpr(f["value"])}
}

func (d *decoder) switchStmt(n *yaml.Node) Switch {
	_, f := d.mapping(n)
	stmt := Switch{Input: d.expr(f["input"]), Default: d.block(f["default"])}
	for _, item := range d.sequence(f["cases"]) {
		_, cf := d.mapping(item)
		sc := SwitchCase{Loc: d.location(cf["loc"]), Block: d.block(cf["block"])}
		for _, m := range d.sequence(cf["match"]) {
			if m.Kind == yaml.MappingNode {
				if _, mf := d.mapping(m); mf["range"] != nil && len(mf) == 1 {
					bounds := d.sequence(mf["range"])
					if len(bounds) != 2 {
						d.fail(m, "range case must be [start, end]")
					}
					sc.Cases = append(sc.Cases, CaseRange{Start: d.expr(bounds[0]), End: d.expr(bounds[1])})
					continue
				}
			}
			sc.Cases = append(sc.Cases, CaseExact{Expr: d.expr(m)})
		}
		stmt.Cases = append(stmt.Cases, sc)
	}
	return stmt
}

// --- expressions ---

func (d *decoder) optExpr(n *yaml.Node) Expression {
	if n == nil {
		return nil
	}
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return nil
	}
	return d.expr(n)
}

func (d *decoder) exprs(n *yaml.Node) []Expression {
	items := d.sequence(n)
	if items == nil {
		return nil
	}
	out := make([]Expression, len(items))
	for i, item := range items {
		out[i] = d.expr(item)
	}
	return out
}

// optArgs distinguishes an absent argument list (nil) from "()" (empty).
func (d *decoder) optArgs(n *yaml.Node) []Expression {
	if isNull(n) {
		return nil
	}
	args := d.exprs(n)
	if args == nil {
		args = []Expression{}
	}
	return args
}

func (d *decoder) expr(n *yaml.Node) Expression {
	if n == nil {
		d.fail(n, "missing expression")
	}
	if n.Kind == yaml.ScalarNode {
		return Base{Term: d.scalarTerm(n)}
	}

	kind, v, attrs := d.tagged(n, "expression")
	switch kind {
	case "binary":
		_, f := d.mapping(v)
		return BinaryOp{Op: d.str(f["op"]), LHS: d.expr(f["lhs"]), RHS: d.expr(f["rhs"])}
	case "assign":
		_, f := d.mapping(v)
		return AssignOp{Op: d.str(f["op"]), LHS: d.expr(f["lhs"]), RHS: d.expr(f["rhs"])}
	case "ternary":
		_, f := d.mapping(v)
		return TernaryOp{Cond: d.expr(f["cond"]), If: d.expr(f["if"]), Else: d.expr(f["else"])}
	}

	base := Base{Term: d.term(kind, v, n), TermLoc: d.location(attrs["loc"])}
	for _, item := range d.sequence(attrs["follow"]) {
		fkind, fv, fattrs := d.tagged(item, "follow")
		base.Follow = append(base.Follow, SpannedFollow{
			Follow: d.follow(fkind, fv, item),
			Loc:    d.location(fattrs["loc"]),
		})
	}
	return base
}

// scalarTerm is the shorthand for literal terms written without a location.
func (d *decoder) scalarTerm(n *yaml.Node) Term {
	switch n.Tag {
	case "!!null":
		return Null{}
	case "!!int":
		return Int{Value: d.int32(n)}
	case "!!float":
		return Float{Value: d.float32(n)}
	case "!!str":
		return String{Value: n.Value}
	}
	d.fail(n, "unsupported literal %q", n.Value)
	return nil
}

func (d *decoder) term(kind string, v, n *yaml.Node) Term {
	switch kind {
	case "null":
		return Null{}
	case "int":
		return Int{Value: d.int32(v)}
	case "float":
		return Float{Value: d.float32(v)}
	case "string":
		return String{Value: d.str(v)}
	case "resource":
		return Resource{Value: d.str(v)}
	case "as":
		return As{InputType: d.str(v)}
	case "proc_macro":
		return ProcMacro{}
	case "type_macro":
		return TypeMacro{}
	case "implied_type_macro":
		return ImpliedTypeMacro{}
	case "paren":
		return Paren{Expr: d.expr(v)}
	case "prefab":
		return PrefabTerm{Prefab: d.prefab(v)}
	case "interp":
		_, f := d.mapping(v)
		t := InterpString{First: d.optStr(f["first"])}
		for _, item := range d.sequence(f["parts"]) {
			_, pf := d.mapping(item)
			t.Parts = append(t.Parts, InterpPart{Expr: d.optExpr(pf["expr"]), Str: d.optStr(pf["str"])})
		}
		return t
	case "ident":
		return Ident{Name: d.str(v)}
	case "call":
		_, f := d.mapping(v)
		return Call{Name: d.str(f["name"]), Args: d.exprs(f["args"])}
	case "self_call":
		return SelfCall{Args: d.exprs(d.field(v, "args"))}
	case "parent_call":
		return ParentCall{Args: d.exprs(d.field(v, "args"))}
	case "new_implicit":
		return NewImplicit{Args: d.optArgs(d.field(v, "args"))}
	case "new_prefab":
		_, f := d.mapping(v)
		return NewPrefab{Prefab: d.prefab(f["prefab"]), Args: d.optArgs(f["args"])}
	case "new_mini":
		_, f := d.mapping(v)
		return NewMiniExpr{Ident: d.str(f["ident"]), Fields: d.strs(f["fields"]), Args: d.optArgs(f["args"])}
	case "list":
		return List{Items: d.exprs(v)}
	case "input":
		_, f := d.mapping(v)
		t := Input{Args: d.exprs(f["args"]), InList: d.optExpr(f["in"])}
		if it := f["type"]; !isNull(it) {
			bits := uint32(d.uint(it, 32))
			t.InputType = &bits
		}
		return t
	case "locate":
		_, f := d.mapping(v)
		return Locate{Args: d.exprs(f["args"]), InList: d.optExpr(f["in"])}
	case "pick":
		var t Pick
		for _, item := range d.sequence(v) {
			_, pf := d.mapping(item)
			t.Items = append(t.Items, PickItem{Weight: d.optExpr(pf["weight"]), Value: d.expr(pf["value"])})
		}
		return t
	case "dynamic_call":
		_, f := d.mapping(v)
		return DynamicCall{Lib: d.exprs(f["lib"]), Proc: d.exprs(f["proc"])}
	case "external_call":
		_, f := d.mapping(v)
		return ExternalCall{
			Library:  d.expr(f["library"]),
			Function: d.expr(f["function"]),
			Args:     d.exprs(f["args"]),
		}
	case "global_ident":
		return GlobalIdent{Name: d.str(v)}
	case "global_call":
		_, f := d.mapping(v)
		return GlobalCall{Name: d.str(f["name"]), Args: d.exprs(f["args"])}
	}
	d.fail(n, "unknown term %q", kind)
	return nil
}

// field returns one key of an optional mapping node.
func (d *decoder) field(n *yaml.Node, key string) *yaml.Node {
	if isNull(n) {
		return nil
	}
	_, f := d.mapping(n)
	return f[key]
}

func (d *decoder) follow(kind string, v, n *yaml.Node) Follow {
	switch kind {
	case "index":
		return FollowIndex{Expr: d.expr(v)}
	case "field":
		return FollowField{Name: d.str(v)}
	case "call":
		_, f := d.mapping(v)
		return FollowCall{Name: d.str(f["name"]), Args: d.exprs(f["args"])}
	case "unary":
		return FollowUnary{Op: d.str(v)}
	case "static_field":
		return FollowStaticField{Name: d.str(v)}
	case "proc_ref":
		return FollowProcReference{Name: d.str(v)}
	}
	d.fail(n, "unknown follow %q", kind)
	return nil
}

// prefab reads a prefab. The short form is the bare path string.
func (d *decoder) prefab(n *yaml.Node) Prefab {
	if n != nil && n.Kind == yaml.ScalarNode {
		return Prefab{Path: d.pathOps(n)}
	}
	_, f := d.mapping(n)
	p := Prefab{Path: d.pathOps(f["path"])}
	for _, item := range d.sequence(f["vars"]) {
		_, vf := d.mapping(item)
		p.Vars = append(p.Vars, PrefabVar{Name: d.str(vf["name"]), Value: d.expr(vf["value"])})
	}
	return p
}

// pathOps splits "/obj/item.weapon" into separator/segment pairs.
func (d *decoder) pathOps(n *yaml.Node) []PathOp {
	raw := d.str(n)
	var ops []PathOp
	for raw != "" {
		sep := raw[:1]
		if sep != "/" && sep != "." && sep != ":" {
			d.fail(n, "prefab path %q must start with a separator", d.str(n))
		}
		raw = raw[1:]
		end := strings.IndexAny(raw, "/.:")
		if end < 0 {
			end = len(raw)
		}
		if end == 0 {
			d.fail(n, "prefab path %q has an empty segment", d.str(n))
		}
		ops = append(ops, PathOp{Sep: sep, Name: raw[:end]})
		raw = raw[end:]
	}
	if len(ops) == 0 {
		d.fail(n, "empty prefab path")
	}
	return ops
}
