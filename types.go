package avulto

import (
	"github.com/jward/avulto/internal/ast"
	"github.com/jward/avulto/internal/path"
	"github.com/jward/avulto/internal/srcloc"
	"github.com/jward/avulto/internal/store"
	"github.com/jward/avulto/internal/walk"
)

// Public aliases for the internal types that appear in the Engine API.

type Store = store.Store
type Path = path.Path
type Location = srcloc.Location
type Constant = ast.Constant
type Tree = ast.Tree
type NodeID = ast.ID
type Kind = ast.Kind
type Visitor = walk.Visitor
type Visit = walk.Visit
type Handler = walk.Handler
type Funcs = walk.Funcs
