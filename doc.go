// Package avulto exposes the parsed structure of a DM program to Go code
// and to Risor scripts: its type hierarchy, the vars and procs declared on
// each type, and the statements of every proc body.
//
// # Pipeline
//
// Avulto does not parse DM itself. An external parser emits a program dump
// (YAML or JSON) holding the object tree and, optionally, the parsed proc
// bodies. The Engine works in two phases:
//
//  1. Load: decode the dump and store files, types, vars, procs and
//     parameters in SQLite. Proc bodies are kept in their dump form.
//
//  2. Walk: on demand, convert one proc body into an arena of typed nodes
//     and traverse it with a Visitor. Handlers short-circuit descent, and
//     leaves without their own handler fall back to visit_Constant.
//
// # Usage
//
//	e, err := avulto.New("avulto.db")
//	if err != nil { ... }
//	defer e.Close()
//
//	ctx := context.Background()
//	err = e.LoadFile(ctx, "tgstation.yaml")
//
//	td, err := e.TypeDecl(ctx, "/obj/item")
//	names, err := td.VarNames(ctx, avulto.Declared)
//
//	err = e.WalkProc(ctx, "/obj/item", "attack_self", avulto.Funcs{
//		ast.KindConstant: func(ctx context.Context, v avulto.Visit) error { ... },
//	})
//
// # Type queries
//
//   - [Engine.Typesof] and [Engine.Subtypesof] list a type and its
//     descendants in absolute path order.
//   - [Engine.TypeDecl] returns a [TypeDecl] for var and proc lookups.
//   - [TypeDecl.VarNames] and [TypeDecl.ProcNames] take a [NameFilter].
//   - [TypeDecl.Value] resolves a var through the type's ancestors.
//
// # Scripts
//
// [Engine.RunVisitorScript] evaluates a Risor script with target_type and
// target_proc set. The script calls walk_proc with a map of visit_<Kind>
// functions; each receives the node as a map and its location. See the
// internal/runtime package for the full set of globals.
package avulto
