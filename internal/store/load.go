package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strconv"

	"github.com/jward/avulto/internal/dmast"
	"github.com/jward/avulto/internal/path"
)

// InsertProgram replaces the stored object tree with prog inside a single
// transaction. Types are inserted in abs path order so that every ancestor
// row exists before its descendants; a type's parent is its nearest stored
// ancestor.
func (s *Store) InsertProgram(ctx context.Context, prog *dmast.Program) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert program: begin: %w", err)
	}
	defer tx.Rollback()

	if err := clearTx(ctx, tx); err != nil {
		return fmt.Errorf("insert program: %w", err)
	}

	for _, f := range prog.Files {
		if _, err := tx.ExecContext(ctx, `INSERT INTO files (id, path) VALUES (?, ?)`, int64(f.ID), f.Path); err != nil {
			return fmt.Errorf("insert program: file %q: %w", f.Path, err)
		}
	}

	types := make([]*dmast.Type, len(prog.Types))
	paths := make(map[*dmast.Type]path.Path, len(prog.Types))
	for i := range prog.Types {
		t := &prog.Types[i]
		types[i] = t
		paths[t] = path.MakeTrusted(t.Path)
	}
	slices.SortStableFunc(types, func(a, b *dmast.Type) int {
		return paths[a].Compare(paths[b])
	})

	ids := make(map[string]int64, len(types))
	for _, t := range types {
		p := paths[t]
		if _, dup := ids[p.Abs()]; dup {
			return fmt.Errorf("insert program: duplicate type %s", p.Abs())
		}
		typeID, err := insertTypeTx(ctx, tx, p, nearestAncestor(p, ids), t.Loc)
		if err != nil {
			return fmt.Errorf("insert program: type %s: %w", p, err)
		}
		ids[p.Abs()] = typeID

		for _, v := range t.Vars {
			if err := insertVarTx(ctx, tx, typeID, &v); err != nil {
				return fmt.Errorf("insert program: var %s/%s: %w", p, v.Name, err)
			}
		}
		for _, pr := range t.Procs {
			if err := insertProcTx(ctx, tx, typeID, &pr, prog.ProcsParsed); err != nil {
				return fmt.Errorf("insert program: proc %s/%s: %w", p, pr.Name, err)
			}
		}
	}

	if err := setMetaTx(ctx, tx, MetaProcsParsed, strconv.FormatBool(prog.ProcsParsed)); err != nil {
		return fmt.Errorf("insert program: %w", err)
	}
	if err := setMetaTx(ctx, tx, MetaProgramName, prog.Name); err != nil {
		return fmt.Errorf("insert program: %w", err)
	}
	return tx.Commit()
}

// nearestAncestor walks p's parents until one is already stored.
func nearestAncestor(p path.Path, ids map[string]int64) *int64 {
	for !p.IsRoot() {
		p = p.Parent()
		if id, ok := ids[p.Abs()]; ok {
			return &id
		}
	}
	return nil
}

func insertTypeTx(ctx context.Context, tx *sql.Tx, p path.Path, parentID *int64, loc dmast.Location) (int64, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO types (path_abs, path_rel, parent_id, file_id, line, col) VALUES (?, ?, ?, ?, ?, ?)`,
		p.Abs(), p.Rel(), parentID, int64(loc.File), int64(loc.Line), int64(loc.Column),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func insertVarTx(ctx context.Context, tx *sql.Tx, typeID int64, v *dmast.TypeVar) error {
	kind, text := encodeConstant(v.Value)
	_, err := tx.ExecContext(ctx,
		`INSERT INTO vars (type_id, name, declared, decl_type, value_kind, value_text, file_id, line, col)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		typeID, v.Name, v.Declared, marshalSegments(v.VarType), kind, nullString(text),
		int64(v.Loc.File), int64(v.Loc.Line), int64(v.Loc.Column),
	)
	return err
}

func insertProcTx(ctx context.Context, tx *sql.Tx, typeID int64, p *dmast.Proc, withBody bool) error {
	var body sql.NullString
	if withBody && p.Body != nil {
		body = sql.NullString{String: string(p.RawBody), Valid: true}
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO procs (type_id, name, declared, builtin, file_id, line, col, body)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		typeID, p.Name, p.Declared, p.Builtin,
		int64(p.Loc.File), int64(p.Loc.Line), int64(p.Loc.Column), body,
	)
	if err != nil {
		return err
	}
	procID, err := res.LastInsertId()
	if err != nil {
		return err
	}
	for i, param := range p.Params {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO proc_params (proc_id, idx, name, type_path) VALUES (?, ?, ?, ?)`,
			procID, i, param.Name, marshalSegments(param.VarType),
		); err != nil {
			return fmt.Errorf("param %s: %w", param.Name, err)
		}
	}
	return nil
}

func setMetaTx(ctx context.Context, tx *sql.Tx, key, value string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set meta %s: %w", key, err)
	}
	return nil
}

// encodeConstant flattens a var value into its stored kind and text.
func encodeConstant(c dmast.Constant) (string, *string) {
	var text string
	switch c.Kind {
	case dmast.ConstNull, "":
		return string(dmast.ConstNull), nil
	case dmast.ConstInt:
		text = strconv.FormatInt(int64(c.Int), 10)
	case dmast.ConstFloat:
		text = strconv.FormatFloat(float64(c.Float), 'g', -1, 32)
	default:
		text = c.Text
	}
	return string(c.Kind), &text
}
