package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/jward/avulto/internal/ast"
	"github.com/jward/avulto/internal/dmast"
	"github.com/jward/avulto/internal/path"
)

// --- File operations ---

// Files returns the file table keyed by the program's file IDs.
func (s *Store) Files(ctx context.Context) (map[ast.FileID]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, path FROM files ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("files: %w", err)
	}
	defer rows.Close()

	files := make(map[ast.FileID]string)
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.ID, &f.Path); err != nil {
			return nil, fmt.Errorf("files: scan: %w", err)
		}
		files[ast.FileID(f.ID)] = f.Path
	}
	return files, rows.Err()
}

// --- Meta operations ---

// SetMeta records one key/value pair.
func (s *Store) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set meta %s: %w", key, err)
	}
	return nil
}

// Meta returns the value stored under key, and false when it is unset.
func (s *Store) Meta(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("meta %s: %w", key, err)
	}
	return value, true, nil
}

// ProcsParsed reports whether the loaded program carries proc bodies. An
// empty store reports false.
func (s *Store) ProcsParsed(ctx context.Context) (bool, error) {
	v, ok, err := s.Meta(ctx, MetaProcsParsed)
	if err != nil || !ok {
		return false, err
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("procs parsed: %w", err)
	}
	return parsed, nil
}

// --- Type operations ---

const typeColumns = `id, path_abs, path_rel, parent_id, file_id, line, col`

func scanType(sc interface{ Scan(...any) error }) (*Type, error) {
	var t Type
	var parent sql.NullInt64
	if err := sc.Scan(&t.ID, &t.Abs, &t.Rel, &parent, &t.FileID, &t.Line, &t.Col); err != nil {
		return nil, err
	}
	if parent.Valid {
		t.ParentID = &parent.Int64
	}
	return &t, nil
}

// FindType returns the type stored under p, or nil when there is none.
func (s *Store) FindType(ctx context.Context, p path.Path) (*Type, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+typeColumns+` FROM types WHERE path_abs = ?`, p.Abs())
	t, err := scanType(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find type %s: %w", p, err)
	}
	return t, nil
}

// TypeByID returns a type by ID, or nil when there is none.
func (s *Store) TypeByID(ctx context.Context, id int64) (*Type, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+typeColumns+` FROM types WHERE id = ?`, id)
	t, err := scanType(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("type by id %d: %w", id, err)
	}
	return t, nil
}

// AllTypePaths lists every stored type path in abs order.
func (s *Store) AllTypePaths(ctx context.Context) ([]path.Path, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path_rel FROM types ORDER BY path_abs`)
	if err != nil {
		return nil, fmt.Errorf("all type paths: %w", err)
	}
	defer rows.Close()

	var paths []path.Path
	for rows.Next() {
		var rel string
		if err := rows.Scan(&rel); err != nil {
			return nil, fmt.Errorf("all type paths: scan: %w", err)
		}
		paths = append(paths, path.MakeTrusted(rel))
	}
	return paths, rows.Err()
}

// Ancestors returns the parent chain of typeID, nearest first. The type
// itself is not included.
func (s *Store) Ancestors(ctx context.Context, typeID int64) ([]*Type, error) {
	rows, err := s.db.QueryContext(ctx, `
		WITH RECURSIVE chain(id, depth) AS (
			SELECT parent_id, 1 FROM types WHERE id = ? AND parent_id IS NOT NULL
			UNION ALL
			SELECT t.parent_id, c.depth + 1 FROM types t JOIN chain c ON t.id = c.id
			WHERE t.parent_id IS NOT NULL
		)
		SELECT t.id, t.path_abs, t.path_rel, t.parent_id, t.file_id, t.line, t.col
		FROM chain c JOIN types t ON t.id = c.id
		ORDER BY c.depth`, typeID)
	if err != nil {
		return nil, fmt.Errorf("ancestors %d: %w", typeID, err)
	}
	defer rows.Close()

	var out []*Type
	for rows.Next() {
		t, err := scanType(rows)
		if err != nil {
			return nil, fmt.Errorf("ancestors %d: scan: %w", typeID, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// --- Var operations ---

// VarsOf returns the vars recorded on typeID, sorted by name.
func (s *Store) VarsOf(ctx context.Context, typeID int64) ([]*Var, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type_id, name, declared, decl_type, value_kind, value_text, file_id, line, col
		 FROM vars WHERE type_id = ? ORDER BY name`, typeID)
	if err != nil {
		return nil, fmt.Errorf("vars of %d: %w", typeID, err)
	}
	defer rows.Close()

	var vars []*Var
	for rows.Next() {
		var v Var
		var declType, text sql.NullString
		if err := rows.Scan(&v.ID, &v.TypeID, &v.Name, &v.Declared, &declType,
			&v.ValueKind, &text, &v.FileID, &v.Line, &v.Col); err != nil {
			return nil, fmt.Errorf("vars of %d: scan: %w", typeID, err)
		}
		v.DeclType = unmarshalSegments(declType)
		v.ValueText = stringPtr(text)
		vars = append(vars, &v)
	}
	return vars, rows.Err()
}

// Constant decodes the var's stored value.
func (v *Var) Constant() (ast.Constant, error) {
	if v.ValueText == nil {
		return ast.NullConst(), nil
	}
	text := *v.ValueText
	switch dmast.ConstantKind(v.ValueKind) {
	case dmast.ConstInt:
		n, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return ast.Constant{}, fmt.Errorf("var %s: %w", v.Name, err)
		}
		return ast.IntConst(int32(n)), nil
	case dmast.ConstFloat:
		f, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return ast.Constant{}, fmt.Errorf("var %s: %w", v.Name, err)
		}
		return ast.FloatConst(float32(f)), nil
	case dmast.ConstString:
		return ast.StringConst(text), nil
	case dmast.ConstResource:
		return ast.ResourceConst(text), nil
	case dmast.ConstPath:
		return ast.PathConst(path.MakeTrusted(text)), nil
	default:
		return ast.Constant{}, fmt.Errorf("var %s: unknown value kind %q", v.Name, v.ValueKind)
	}
}

// --- Proc operations ---

// ProcsOf returns every proc definition on typeID, grouped by name in
// definition order.
func (s *Store) ProcsOf(ctx context.Context, typeID int64) ([]*Proc, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type_id, name, declared, builtin, file_id, line, col, body IS NOT NULL
		 FROM procs WHERE type_id = ? ORDER BY name, id`, typeID)
	if err != nil {
		return nil, fmt.Errorf("procs of %d: %w", typeID, err)
	}
	defer rows.Close()

	var procs []*Proc
	for rows.Next() {
		var p Proc
		if err := rows.Scan(&p.ID, &p.TypeID, &p.Name, &p.Declared, &p.Builtin,
			&p.FileID, &p.Line, &p.Col, &p.HasBody); err != nil {
			return nil, fmt.Errorf("procs of %d: scan: %w", typeID, err)
		}
		procs = append(procs, &p)
	}
	return procs, rows.Err()
}

// FindProc returns the last definition of name on typeID, or nil.
func (s *Store) FindProc(ctx context.Context, typeID int64, name string) (*Proc, error) {
	var p Proc
	err := s.db.QueryRowContext(ctx,
		`SELECT id, type_id, name, declared, builtin, file_id, line, col, body IS NOT NULL
		 FROM procs WHERE type_id = ? AND name = ? ORDER BY id DESC LIMIT 1`, typeID, name,
	).Scan(&p.ID, &p.TypeID, &p.Name, &p.Declared, &p.Builtin, &p.FileID, &p.Line, &p.Col, &p.HasBody)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find proc %s: %w", name, err)
	}
	return &p, nil
}

// ProcBody returns the stored body text of a proc definition. It returns
// nil when no body was recorded.
func (s *Store) ProcBody(ctx context.Context, procID int64) ([]byte, error) {
	var body sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT body FROM procs WHERE id = ?`, procID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("proc body %d: %w", procID, err)
	}
	if !body.Valid {
		return nil, nil
	}
	return []byte(body.String), nil
}

// ParamsOf returns the parameters of the given procs keyed by proc ID, each
// list in declaration order.
func (s *Store) ParamsOf(ctx context.Context, procIDs []int64) (map[int64][]*Param, error) {
	out := make(map[int64][]*Param, len(procIDs))
	if len(procIDs) == 0 {
		return out, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT proc_id, idx, name, type_path FROM proc_params
		 WHERE proc_id IN (`+placeholderList(len(procIDs))+`) ORDER BY proc_id, idx`,
		int64sToArgs(procIDs)...)
	if err != nil {
		return nil, fmt.Errorf("params of: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p Param
		var typePath sql.NullString
		if err := rows.Scan(&p.ProcID, &p.Idx, &p.Name, &typePath); err != nil {
			return nil, fmt.Errorf("params of: scan: %w", err)
		}
		p.TypePath = unmarshalSegments(typePath)
		out[p.ProcID] = append(out[p.ProcID], &p)
	}
	return out, rows.Err()
}
