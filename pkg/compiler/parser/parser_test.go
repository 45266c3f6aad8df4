package parser_test

import (
	"math/big"
	"reflect"
	"strings"
	"testing"

	"github.com/marn-lang/marn/pkg/compiler/ast"
	"github.com/marn-lang/marn/pkg/compiler/diag"
	"github.com/marn-lang/marn/pkg/compiler/parser"
)

func parse(src string) (*ast.Program, []diag.Diagnostic) {
	var diags diag.Bag
	prog := parser.ParseSource(strings.NewReader(src), &diags)
	return prog, diags.Diagnostics()
}

func parseClean(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, diags := parse(src)
	if len(diags) != 0 {
		t.Fatalf("parse %q: unexpected diagnostics %v", src, diags)
	}
	return prog
}

func kinds(diags []diag.Diagnostic) []diag.Kind {
	ks := make([]diag.Kind, len(diags))
	for i, d := range diags {
		ks[i] = d.Kind
	}
	return ks
}

func TestWordDefinition(t *testing.T) {
	prog := parseClean(t, `: double 2 * ;`)
	w, ok := prog.Words["double"]
	if !ok {
		t.Fatal("word double not defined")
	}
	if len(w.Body) != 2 {
		t.Fatalf("body = %v, want 2 expressions", w.Body)
	}
	if lit, ok := w.Body[0].(*ast.Int); !ok || lit.Value != 2 {
		t.Errorf("body[0] = %#v, want integer 2", w.Body[0])
	}
	if name, ok := w.Body[1].(*ast.Name); !ok || name.Name != "*" {
		t.Errorf("body[1] = %#v, want name *", w.Body[1])
	}
	if len(prog.Sequential) != 1 || prog.Sequential[0] != ast.Node(w) {
		t.Errorf("sequential = %v, want just the word", prog.Sequential)
	}
}

func TestLiteralNodes(t *testing.T) {
	prog := parseClean(t, `: lits +3 -4 3/4 "s" ;`)
	body := prog.Words["lits"].Body
	if len(body) != 4 {
		t.Fatalf("body = %v, want 4 literals", body)
	}
	if n, ok := body[0].(*ast.Nat); !ok || n.Value != 3 {
		t.Errorf("body[0] = %#v, want natural 3", body[0])
	}
	if n, ok := body[1].(*ast.Int); !ok || n.Value != -4 {
		t.Errorf("body[1] = %#v, want integer -4", body[1])
	}
	if r, ok := body[2].(*ast.Rat); !ok || r.Value.Cmp(big.NewRat(3, 4)) != 0 {
		t.Errorf("body[2] = %#v, want rational 3/4", body[2])
	}
	if s, ok := body[3].(*ast.String); !ok || s.Value != "s" {
		t.Errorf("body[3] = %#v, want string s", body[3])
	}
}

func TestRedefinitionKeepsOriginal(t *testing.T) {
	prog, diags := parse(`: f ; : f ;`)
	if len(prog.Words) != 1 {
		t.Fatalf("words = %v, want exactly one f", prog.Words)
	}
	first := prog.Words["f"]
	if first.Loc.Position != 0 {
		t.Errorf("kept word starts at %v, want the first definition", first.Loc)
	}
	if len(diags) != 1 || diags[0].Kind != diag.Redefinition {
		t.Fatalf("diagnostics = %v, want one Redefinition", diags)
	}
	if diags[0].Detail != "f" {
		t.Errorf("redefinition names %q, want f", diags[0].Detail)
	}
	if diags[0].Prev != first.Loc {
		t.Errorf("redefinition original at %v, want %v", diags[0].Prev, first.Loc)
	}
	if len(prog.Sequential) != 1 {
		t.Errorf("sequential = %v, duplicate should be discarded", prog.Sequential)
	}
}

func TestTopLevelSynchronization(t *testing.T) {
	prog, diags := parse(`stray 1 2 : g ;`)
	if got := kinds(diags); !reflect.DeepEqual(got, []diag.Kind{diag.BadTopLevelToken}) {
		t.Fatalf("diagnostics = %v, want one BadTopLevelToken", diags)
	}
	if diags[0].Detail != "stray" {
		t.Errorf("diagnostic carries %q, want the offending token", diags[0].Detail)
	}
	if _, ok := prog.Words["g"]; !ok {
		t.Error("parser did not resynchronize: g missing")
	}
}

func TestUnnamedWord(t *testing.T) {
	prog, diags := parse(`: 5 ;`)
	if got := kinds(diags); !reflect.DeepEqual(got, []diag.Kind{diag.UnnamedWord}) {
		t.Fatalf("diagnostics = %v, want one UnnamedWord", diags)
	}
	if len(prog.Words) != 0 || len(prog.Sequential) != 0 {
		t.Errorf("nameless definition should be dropped, got %v", prog.Sequential)
	}
}

func TestUnclosedWordKeepsTruncatedBody(t *testing.T) {
	prog, diags := parse(`: f 1 2`)
	if got := kinds(diags); !reflect.DeepEqual(got, []diag.Kind{diag.UnclosedWord}) {
		t.Fatalf("diagnostics = %v, want one UnclosedWord", diags)
	}
	w := prog.Words["f"]
	if w == nil || len(w.Body) != 2 {
		t.Fatalf("truncated body should be kept, got %v", w)
	}
}

func TestBadExpressionTokenSkipsOne(t *testing.T) {
	prog, diags := parse(`: f 1 type: 2 ;`)
	if got := kinds(diags); !reflect.DeepEqual(got, []diag.Kind{diag.BadExpressionToken}) {
		t.Fatalf("diagnostics = %v, want one BadExpressionToken", diags)
	}
	if diags[0].Detail != "type:" {
		t.Errorf("diagnostic carries %q, want the offending token", diags[0].Detail)
	}
	if w := prog.Words["f"]; w == nil || len(w.Body) != 2 {
		t.Errorf("body should keep the surrounding expressions, got %v", prog.Words["f"])
	}
}

func TestMatchWithCases(t *testing.T) {
	prog := parseClean(t, `: f match: case: Cons swap ; case: Empty ; ;`)
	body := prog.Words["f"].Body
	if len(body) != 1 {
		t.Fatalf("body = %v, want one match", body)
	}
	m, ok := body[0].(*ast.Match)
	if !ok {
		t.Fatalf("body[0] = %#v, want match", body[0])
	}
	if m.Loop {
		t.Error("match should not loop")
	}
	if len(m.Cases) != 2 {
		t.Fatalf("cases = %v, want 2", m.Cases)
	}
	if m.Cases[0].Constructor != "Cons" || len(m.Cases[0].Body) != 1 {
		t.Errorf("first case = %+v, want Cons with one expression", m.Cases[0])
	}
	if m.Cases[1].Constructor != "Empty" || len(m.Cases[1].Body) != 0 {
		t.Errorf("second case = %+v, want empty Empty", m.Cases[1])
	}
}

func TestLoopingMatch(t *testing.T) {
	prog := parseClean(t, `: f match: case: Cons ; loop; ;`)
	m := prog.Words["f"].Body[0].(*ast.Match)
	if !m.Loop {
		t.Error("loop; should mark the match as looping")
	}
}

func TestEmptyMatch(t *testing.T) {
	prog, diags := parse(`: f match: ;`)
	if got := kinds(diags); !reflect.DeepEqual(got, []diag.Kind{diag.EmptyMatch}) {
		t.Fatalf("diagnostics = %v, want one EmptyMatch", diags)
	}
	if w := prog.Words["f"]; w == nil || len(w.Body) != 0 {
		t.Errorf("empty match should contribute no node, body = %v", prog.Words["f"])
	}
}

func TestUnnamedCaseIsDropped(t *testing.T) {
	prog, diags := parse(`: f match: case: 1 ; case: Empty ; ;`)
	if got := kinds(diags); !reflect.DeepEqual(got, []diag.Kind{diag.UnnamedCase}) {
		t.Fatalf("diagnostics = %v, want one UnnamedCase", diags)
	}
	m := prog.Words["f"].Body[0].(*ast.Match)
	if len(m.Cases) != 1 || m.Cases[0].Constructor != "Empty" {
		t.Errorf("cases = %v, want only Empty", m.Cases)
	}
}

func TestDip(t *testing.T) {
	prog := parseClean(t, `: f dip: compose ; ;`)
	body := prog.Words["f"].Body
	d, ok := body[0].(*ast.Dip)
	if !ok || len(d.Body) != 1 {
		t.Fatalf("body[0] = %#v, want dip with one expression", body[0])
	}
}

func TestUnclosedDip(t *testing.T) {
	_, diags := parse(`: f dip: g`)
	want := []diag.Kind{diag.UnclosedDip, diag.UnclosedWord}
	if got := kinds(diags); !reflect.DeepEqual(got, want) {
		t.Errorf("diagnostics = %v, want %v", diags, want)
	}
}

func TestQuoteListAndSignature(t *testing.T) {
	prog := parseClean(t, `: f ( block -- type ) [ g h ] { 1 2 } ;`)
	body := prog.Words["f"].Body
	if len(body) != 3 {
		t.Fatalf("body = %v, want signature, quote, list", body)
	}
	sig, ok := body[0].(*ast.FuncType)
	if !ok || len(sig.In) != 1 || len(sig.Out) != 1 {
		t.Fatalf("body[0] = %#v, want ( block -- type )", body[0])
	}
	if sig.In[0].(*ast.Name).Name != "block" || sig.Out[0].(*ast.Name).Name != "type" {
		t.Errorf("signature = %+v", sig)
	}
	q, ok := body[1].(*ast.Quote)
	if !ok || len(q.Body) != 2 {
		t.Fatalf("body[1] = %#v, want quote of two names", body[1])
	}
	l, ok := body[2].(*ast.List)
	if !ok || len(l.Items) != 2 {
		t.Fatalf("body[2] = %#v, want list of two literals", body[2])
	}
}

func TestUnclosedGroupings(t *testing.T) {
	tests := []struct {
		src  string
		want []diag.Kind
	}{
		{`: f [ g`, []diag.Kind{diag.UnclosedQuote, diag.UnclosedWord}},
		{`: f { 1`, []diag.Kind{diag.UnclosedList, diag.UnclosedWord}},
		{`: f ( x --`, []diag.Kind{diag.UnclosedSignature, diag.UnclosedWord}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, diags := parse(tt.src)
			if got := kinds(diags); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("diagnostics = %v, want %v", diags, tt.want)
			}
		})
	}
}

func TestTypeDefinition(t *testing.T) {
	prog := parseClean(t, `type: a List : a List a Cons | Empty ;`)
	ty, ok := prog.Types["List"]
	if !ok {
		t.Fatal("type List not defined")
	}
	if !reflect.DeepEqual(ty.Variables, []string{"a"}) {
		t.Errorf("variables = %v, want [a]", ty.Variables)
	}
	if len(ty.Constructors) != 2 {
		t.Fatalf("constructors = %v, want Cons and Empty", ty.Constructors)
	}
	cons := ty.Constructors[0]
	if cons.Name != "Cons" || len(cons.Args) != 3 {
		t.Errorf("first constructor = %+v, want Cons with 3 argument types", cons)
	}
	empty := ty.Constructors[1]
	if empty.Name != "Empty" || len(empty.Args) != 0 {
		t.Errorf("second constructor = %+v, want Empty", empty)
	}
	for _, c := range ty.Constructors {
		if c.Owner != ty {
			t.Errorf("constructor %s does not point back at its type", c.Name)
		}
		if prog.Constructors[c.Name] != c {
			t.Errorf("constructors map does not share node %s", c.Name)
		}
	}
	if len(prog.Sequential) != 1 || prog.Sequential[0] != ast.Node(ty) {
		t.Errorf("sequential = %v, want just the type", prog.Sequential)
	}
}

func TestConstructorCollisionSkipsConstructorOnly(t *testing.T) {
	prog, diags := parse(`: Cons ; type: T : x Cons | Empty ;`)
	if got := kinds(diags); !reflect.DeepEqual(got, []diag.Kind{diag.Redefinition}) {
		t.Fatalf("diagnostics = %v, want one Redefinition", diags)
	}
	ty := prog.Types["T"]
	if ty == nil || len(ty.Constructors) != 2 {
		t.Fatalf("type should keep its full constructor list, got %+v", ty)
	}
	if _, ok := prog.Constructors["Cons"]; ok {
		t.Error("colliding constructor must not enter the value namespace")
	}
	if _, ok := prog.Constructors["Empty"]; !ok {
		t.Error("non-colliding constructor should still be inserted")
	}
}

func TestDuplicateConstructorWithinType(t *testing.T) {
	prog, diags := parse(`type: T : A | A ;`)
	if got := kinds(diags); !reflect.DeepEqual(got, []diag.Kind{diag.Redefinition}) {
		t.Fatalf("diagnostics = %v, want one Redefinition", diags)
	}
	if len(prog.Constructors) != 1 {
		t.Errorf("constructors = %v, want the first A only", prog.Constructors)
	}
}

func TestTypeRedefinition(t *testing.T) {
	prog, diags := parse(`type: T : A ; type: T : B ;`)
	if got := kinds(diags); !reflect.DeepEqual(got, []diag.Kind{diag.Redefinition}) {
		t.Fatalf("diagnostics = %v, want one Redefinition", diags)
	}
	if _, ok := prog.Constructors["A"]; !ok {
		t.Error("original type's constructor missing")
	}
	if _, ok := prog.Constructors["B"]; ok {
		t.Error("rejected duplicate's constructor should not be inserted")
	}
}

func TestAliasDefinition(t *testing.T) {
	prog := parseClean(t, `alias: Stack : Value List ;`)
	a, ok := prog.Aliases["Stack"]
	if !ok {
		t.Fatal("alias Stack not defined")
	}
	if len(a.Variables) != 0 || len(a.Body) != 2 {
		t.Fatalf("alias = %+v, want two-name body", a)
	}
	if a.Body[0].(*ast.Name).Name != "Value" || a.Body[1].(*ast.Name).Name != "List" {
		t.Errorf("body = %v", a.Body)
	}
}

func TestAliasSharesTypeNamespace(t *testing.T) {
	prog, diags := parse(`type: T : A ; alias: T : X ;`)
	if got := kinds(diags); !reflect.DeepEqual(got, []diag.Kind{diag.Redefinition}) {
		t.Fatalf("diagnostics = %v, want one Redefinition", diags)
	}
	if len(prog.Aliases) != 0 {
		t.Errorf("aliases = %v, duplicate should be discarded", prog.Aliases)
	}
}

func TestAliasBodyRejectsNonNames(t *testing.T) {
	prog, diags := parse(`alias: S : Value 5 List ;`)
	if got := kinds(diags); !reflect.DeepEqual(got, []diag.Kind{diag.BadExpressionToken}) {
		t.Fatalf("diagnostics = %v, want one BadExpressionToken", diags)
	}
	if a := prog.Aliases["S"]; a == nil || len(a.Body) != 2 {
		t.Errorf("alias = %+v, want the two surrounding names kept", prog.Aliases["S"])
	}
}

func TestCommentsArePreserved(t *testing.T) {
	prog := parseClean(t, "\\ module header\n: f \\ inline note\n ;")
	if len(prog.Sequential) != 2 {
		t.Fatalf("sequential = %v, want comment then word", prog.Sequential)
	}
	c, ok := prog.Sequential[0].(*ast.Comment)
	if !ok || c.Text != " module header" {
		t.Errorf("sequential[0] = %#v, want the header comment verbatim", prog.Sequential[0])
	}
	body := prog.Words["f"].Body
	if len(body) != 1 {
		t.Fatalf("body = %v, want the inline comment", body)
	}
	if ic, ok := body[0].(*ast.Comment); !ok || ic.Text != " inline note" {
		t.Errorf("body[0] = %#v, want the inline comment verbatim", body[0])
	}
}

func TestZeroDenominatorLeavesNoExpression(t *testing.T) {
	prog, diags := parse(`: f 3/0 ;`)
	if got := kinds(diags); !reflect.DeepEqual(got, []diag.Kind{diag.ZeroDenominator}) {
		t.Fatalf("diagnostics = %v, want one ZeroDenominator", diags)
	}
	if w := prog.Words["f"]; w == nil || len(w.Body) != 0 {
		t.Errorf("dropped lexeme must not appear in the body, got %v", prog.Words["f"])
	}
}

func TestSequentialPreservesSourceOrder(t *testing.T) {
	prog := parseClean(t, "\\ one\ntype: T : A ;\n: f ;\nalias: S : T ;")
	want := []string{"*ast.Comment", "*ast.Type", "*ast.Word", "*ast.Alias"}
	if len(prog.Sequential) != len(want) {
		t.Fatalf("sequential = %v", prog.Sequential)
	}
	for i, node := range prog.Sequential {
		if got := reflect.TypeOf(node).String(); got != want[i] {
			t.Errorf("sequential[%d] = %s, want %s", i, got, want[i])
		}
	}
}

func TestParseIsIdempotent(t *testing.T) {
	src := "\\ doc\ntype: a List : a List a Cons | Empty ;\n: f match: case: Cons ; loop; ;\nalias: S : List ;\n: f ;"
	prog1, diags1 := parse(src)
	prog2, diags2 := parse(src)
	if !reflect.DeepEqual(prog1, prog2) {
		t.Error("two runs over the same input built different aggregates")
	}
	if !reflect.DeepEqual(diags1, diags2) {
		t.Errorf("diagnostics differ: %v vs %v", diags1, diags2)
	}
}
