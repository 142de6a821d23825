// Package walk traverses an ast.Tree depth first, consulting a Visitor at
// every node.
//
// For each node the walker asks the visitor for a handler for the node's
// kind. A present handler is called with the node and its resolved location
// and takes over the whole subtree: the walker does not descend. An absent
// handler means the walker recurses into the children in tree order.
//
// Leaves follow one convention. Constants are offered to the Constant
// handler. Identifiers are offered to the Identifier handler, falling back to
// the Constant handler, so a visitor that only handles Constant sees every
// literal and every name.
//
// A visitor implementing ExprVisitor, or a Funcs table with an AnyExpr
// entry, claims every expression before the per-kind lookup. Statements are
// still descended.
package walk

import (
	"context"

	"github.com/jward/avulto/internal/ast"
	"github.com/jward/avulto/internal/srcloc"
)

// Visit is what a handler receives.
type Visit struct {
	Tree *ast.Tree
	ID   ast.ID
	Node ast.Node
	// Loc is nil when the node carries no location.
	Loc *srcloc.Location

	resolver Resolver
}

// Kind is the visited node's kind.
func (v Visit) Kind() ast.Kind { return v.Node.Kind() }

// Render is the visited node's one-line rendering.
func (v Visit) Render() string { return v.Tree.Render(v.ID) }

// LocOf resolves the location of another node in the same tree, typically a
// child of the visited node. It returns nil for unattributed nodes.
func (v Visit) LocOf(id ast.ID) *srcloc.Location {
	n := v.Tree.Node(id)
	if n == nil {
		return nil
	}
	r := v.resolver
	if r == nil {
		r = (*srcloc.Table)(nil)
	}
	loc, ok := r.Resolve(n.Location())
	if !ok {
		return nil
	}
	return &loc
}

// Handler claims one node. A returned error aborts the walk and is returned
// from Walk as is.
type Handler func(ctx context.Context, v Visit) error

// Visitor reports which kinds it handles. A nil Handler means the kind is
// not handled.
type Visitor interface {
	Handler(kind ast.Kind) Handler
}

// Funcs is a sparse Visitor keyed by kind.
type Funcs map[ast.Kind]Handler

func (f Funcs) Handler(kind ast.Kind) Handler { return f[kind] }

// ExprHandler returns the handler stored under AnyExpr.
func (f Funcs) ExprHandler() Handler { return f[AnyExpr] }

// AnyExpr is the pseudo-kind of the catch-all expression handler. It is
// never the kind of a node.
const AnyExpr = ast.Kind(255)

// ExprVisitor is a Visitor that can claim every expression. A non-nil
// ExprHandler is consulted before any per-kind handler for expression
// nodes, receives no location and is not descended past.
type ExprVisitor interface {
	Visitor
	ExprHandler() Handler
}

// Resolver maps a compact location to a printable one. *srcloc.Table
// implements it.
type Resolver interface {
	Resolve(loc *ast.Location) (srcloc.Location, bool)
}

// Option configures a walk.
type Option func(*walker)

// WithResolver resolves node locations through r. Without it locations
// resolve with an empty file name.
func WithResolver(r Resolver) Option {
	return func(w *walker) {
		if r != nil {
			w.resolver = r
		}
	}
}

// HandlerName is the conventional method name for kind's handler, as script
// visitors spell it.
func HandlerName(kind ast.Kind) string {
	if kind == AnyExpr {
		return "visit_Expr"
	}
	return "visit_" + kind.String()
}

type walker struct {
	tree     *ast.Tree
	visitor  Visitor
	expr     Handler
	resolver Resolver
}

func newWalker(tree *ast.Tree, v Visitor, opts []Option) *walker {
	w := &walker{tree: tree, visitor: v, resolver: (*srcloc.Table)(nil)}
	if ev, ok := v.(ExprVisitor); ok {
		w.expr = ev.ExprHandler()
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Walk visits the subtree rooted at id.
func Walk(ctx context.Context, tree *ast.Tree, id ast.ID, v Visitor, opts ...Option) error {
	return newWalker(tree, v, opts).walk(ctx, id)
}

// WalkBlock visits each statement of a body in order.
func WalkBlock(ctx context.Context, tree *ast.Tree, ids []ast.ID, v Visitor, opts ...Option) error {
	w := newWalker(tree, v, opts)
	for _, id := range ids {
		if err := w.walk(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) handler(kind ast.Kind) Handler {
	if h := w.visitor.Handler(kind); h != nil {
		return h
	}
	if kind == ast.KindIdentifier {
		return w.visitor.Handler(ast.KindConstant)
	}
	return nil
}

func (w *walker) walk(ctx context.Context, id ast.ID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	node := w.tree.Node(id)
	if node == nil {
		return nil
	}

	kind := node.Kind()
	if w.expr != nil && kind.IsExpr() {
		return w.expr(ctx, Visit{Tree: w.tree, ID: id, Node: node, resolver: w.resolver})
	}
	if h := w.handler(kind); h != nil {
		visit := Visit{Tree: w.tree, ID: id, Node: node, resolver: w.resolver}
		if loc, ok := w.resolver.Resolve(node.Location()); ok {
			visit.Loc = &loc
		}
		return h(ctx, visit)
	}
	if kind == ast.KindConstant || kind == ast.KindIdentifier {
		return nil
	}

	for _, child := range w.tree.Children(id) {
		if err := w.walk(ctx, child); err != nil {
			return err
		}
	}
	return nil
}
