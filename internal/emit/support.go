package emit

import (
	"fmt"
	"strings"

	"strait/internal/ir"
)

// collectStructural gathers every promoted structural type reachable from a
// module, keyed by synthesized name. Named shape declarations are skipped;
// they already emit under their declared names.
func collectStructural(mod *ir.Module) map[string]ir.StructuralTypeData {
	c := &structCollector{found: make(map[string]ir.StructuralTypeData)}
	for _, stmt := range mod.Body {
		switch stmt.Kind {
		case ir.StmtInterface:
			for _, f := range stmt.Data.(ir.InterfaceData).Fields {
				c.walkType(f.Type)
			}
		case ir.StmtTypeAlias:
			// The alias emits its own class; only nested field types can
			// carry further synthesized shapes.
			for _, f := range structuralFields(stmt.Data.(ir.TypeAliasData).Target) {
				c.walkType(f.Type)
			}
		default:
			c.walkStmt(stmt)
		}
	}
	return c.found
}

type structCollector struct {
	found map[string]ir.StructuralTypeData
}

func (c *structCollector) walkType(t *ir.Type) {
	if t == nil {
		return
	}
	switch t.Kind {
	case ir.TypeStructural:
		d := t.Data.(ir.StructuralTypeData)
		if d.SynthName != "" {
			if _, seen := c.found[d.SynthName]; seen {
				return
			}
			c.found[d.SynthName] = d
		}
		for _, f := range d.Fields {
			c.walkType(f.Type)
		}
	case ir.TypeArray:
		c.walkType(t.Data.(ir.ArrayTypeData).Elem)
	case ir.TypeTuple:
		for _, e := range t.Data.(ir.TupleTypeData).Elems {
			c.walkType(e)
		}
	case ir.TypeRef:
		for _, a := range t.Data.(ir.RefTypeData).Args {
			c.walkType(a)
		}
	case ir.TypeFunc:
		d := t.Data.(ir.FuncTypeData)
		for _, p := range d.Params {
			c.walkType(p.Type)
		}
		c.walkType(d.Return)
	case ir.TypeUnion:
		for _, m := range t.Data.(ir.UnionTypeData).Members {
			c.walkType(m)
		}
	case ir.TypeIntersection:
		for _, m := range t.Data.(ir.IntersectionTypeData).Members {
			c.walkType(m)
		}
	case ir.TypeDict:
		d := t.Data.(ir.DictTypeData)
		c.walkType(d.Key)
		c.walkType(d.Value)
	}
}

func (c *structCollector) walkStmt(stmt *ir.Stmt) {
	if stmt == nil {
		return
	}
	switch stmt.Kind {
	case ir.StmtVar:
		d := stmt.Data.(ir.VarData)
		c.walkType(d.Type)
		c.walkExpr(d.Init)
	case ir.StmtFunc:
		d := stmt.Data.(ir.FuncData)
		for _, p := range d.Params {
			c.walkType(p.Type)
			c.walkExpr(p.Default)
		}
		c.walkType(d.Return)
		c.walkStmts(d.Body)
	case ir.StmtExpr:
		c.walkExpr(stmt.Data.(ir.ExprStmtData).Expr)
	case ir.StmtReturn:
		c.walkExpr(stmt.Data.(ir.ReturnData).Value)
	case ir.StmtIf:
		d := stmt.Data.(ir.IfData)
		c.walkExpr(d.Cond)
		c.walkStmts(d.Then)
		c.walkStmts(d.Else)
	case ir.StmtWhile:
		d := stmt.Data.(ir.WhileData)
		c.walkExpr(d.Cond)
		c.walkStmts(d.Body)
	case ir.StmtForOf:
		d := stmt.Data.(ir.ForOfData)
		c.walkExpr(d.Iterable)
		c.walkStmts(d.Body)
	case ir.StmtBlock:
		c.walkStmts(stmt.Data.(ir.BlockData).Body)
	}
}

func (c *structCollector) walkStmts(body []*ir.Stmt) {
	for _, s := range body {
		c.walkStmt(s)
	}
}

func (c *structCollector) walkExpr(expr *ir.Expr) {
	if expr == nil {
		return
	}
	c.walkType(expr.Type)
	switch expr.Kind {
	case ir.ExprMember:
		c.walkExpr(expr.Data.(ir.MemberData).Object)
	case ir.ExprIndex:
		d := expr.Data.(ir.IndexData)
		c.walkExpr(d.Object)
		c.walkExpr(d.Index)
	case ir.ExprCall:
		d := expr.Data.(ir.CallData)
		c.walkExpr(d.Callee)
		for _, a := range d.Args {
			c.walkExpr(a)
		}
	case ir.ExprBinary:
		d := expr.Data.(ir.BinaryData)
		c.walkExpr(d.Left)
		c.walkExpr(d.Right)
	case ir.ExprUnary:
		c.walkExpr(expr.Data.(ir.UnaryData).Operand)
	case ir.ExprAssign:
		d := expr.Data.(ir.AssignData)
		c.walkExpr(d.Target)
		c.walkExpr(d.Value)
	case ir.ExprTernary:
		d := expr.Data.(ir.TernaryData)
		c.walkExpr(d.Cond)
		c.walkExpr(d.Then)
		c.walkExpr(d.Else)
	case ir.ExprLambda:
		d := expr.Data.(ir.LambdaData)
		for _, p := range d.Params {
			c.walkType(p.Type)
			c.walkExpr(p.Default)
		}
		c.walkType(d.Return)
		c.walkStmts(d.Body)
		c.walkExpr(d.ExprBody)
	case ir.ExprObject:
		d := expr.Data.(ir.ObjectData)
		c.walkType(d.Struct)
		for _, p := range d.Props {
			c.walkExpr(p.Value)
		}
	case ir.ExprArray:
		for _, e := range expr.Data.(ir.ArrayData).Elems {
			c.walkExpr(e)
		}
	case ir.ExprYield:
		c.walkExpr(expr.Data.(ir.YieldData).Value)
	case ir.ExprAwait:
		c.walkExpr(expr.Data.(ir.AwaitData).Operand)
	}
}

// emitSupport renders the run-wide support file: one discriminated union
// class per arity the resolver rendered, plus the runtime type-name helper
// when any expression needed it. Empty output means no file.
func (e *Emitter) emitSupport() string {
	arities := e.res.UnionArities()
	if len(arities) == 0 && !e.needsTypeOf.Load() {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "// Generated by strait. Do not edit.\n")
	fmt.Fprintf(&b, "using System;\n\n")
	fmt.Fprintf(&b, "namespace %s\n{\n", e.res.RootNamespace())

	first := true
	for _, n := range arities {
		if !first {
			b.WriteString("\n")
		}
		first = false
		writeUnionClass(&b, n)
	}
	if e.needsTypeOf.Load() {
		if !first {
			b.WriteString("\n")
		}
		writeOpsClass(&b)
	}

	b.WriteString("}\n")
	return b.String()
}

// writeUnionClass renders one per-arity union: a tagged value cell with
// typed constructors, accessors and implicit conversions from each member.
func writeUnionClass(b *strings.Builder, n int) {
	params := make([]string, n)
	for i := range params {
		params[i] = fmt.Sprintf("T%d", i+1)
	}
	name := fmt.Sprintf("Union%d", n)
	full := name + "<" + strings.Join(params, ", ") + ">"

	fmt.Fprintf(b, "    public sealed class %s\n    {\n", full)
	fmt.Fprintf(b, "        public readonly object Value;\n")
	fmt.Fprintf(b, "        public readonly int Case;\n\n")
	fmt.Fprintf(b, "        private %s(object value, int which)\n", name)
	fmt.Fprintf(b, "        {\n")
	fmt.Fprintf(b, "            Value = value;\n")
	fmt.Fprintf(b, "            Case = which;\n")
	fmt.Fprintf(b, "        }\n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(b, "\n        public static %s From%d(T%d value) => new %s(value, %d);\n",
			full, i, i, full, i)
		fmt.Fprintf(b, "        public bool Is%d => Case == %d;\n", i, i)
		fmt.Fprintf(b, "        public T%d As%d => (T%d)Value;\n", i, i, i)
		fmt.Fprintf(b, "        public static implicit operator %s(T%d value) => From%d(value);\n",
			full, i, i)
	}

	matchParams := make([]string, n)
	for i := range matchParams {
		matchParams[i] = fmt.Sprintf("Func<T%d, TResult> case%d", i+1, i+1)
	}
	fmt.Fprintf(b, "\n        public TResult Match<TResult>(%s)\n", strings.Join(matchParams, ", "))
	fmt.Fprintf(b, "        {\n")
	fmt.Fprintf(b, "            switch (Case)\n")
	fmt.Fprintf(b, "            {\n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(b, "                case %d: return case%d((T%d)Value);\n", i, i, i)
	}
	fmt.Fprintf(b, "                default: throw new InvalidOperationException(\"empty union\");\n")
	fmt.Fprintf(b, "            }\n")
	fmt.Fprintf(b, "        }\n")
	fmt.Fprintf(b, "    }\n")
}

// writeOpsClass renders the runtime helper behind source typeof expressions
// outside narrowing guards.
func writeOpsClass(b *strings.Builder) {
	fmt.Fprintf(b, "    public static class Ops\n    {\n")
	fmt.Fprintf(b, "        public static string TypeOf(object value)\n")
	fmt.Fprintf(b, "        {\n")
	fmt.Fprintf(b, "            switch (value)\n")
	fmt.Fprintf(b, "            {\n")
	fmt.Fprintf(b, "                case null: return \"undefined\";\n")
	fmt.Fprintf(b, "                case double _: return \"number\";\n")
	fmt.Fprintf(b, "                case string _: return \"string\";\n")
	fmt.Fprintf(b, "                case bool _: return \"boolean\";\n")
	fmt.Fprintf(b, "                case Delegate _: return \"function\";\n")
	fmt.Fprintf(b, "                default: return \"object\";\n")
	fmt.Fprintf(b, "            }\n")
	fmt.Fprintf(b, "        }\n")
	fmt.Fprintf(b, "    }\n")
}
