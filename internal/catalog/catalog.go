// Package catalog persists the exports of translated packages so later runs
// can resolve `use Foo;` without translating Foo again.
package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/funvibe/perldoop/internal/config"
	"github.com/funvibe/perldoop/internal/symbols"
	ts "github.com/funvibe/perldoop/internal/typesystem"
)

var log = commonlog.GetLogger(config.CatalogLog)

// ErrPackageNotFound is returned by Import for a package never exported.
var ErrPackageNotFound = errors.New("package not found in catalog")

var schema = []string{
	`CREATE TABLE IF NOT EXISTS packages (
		name       TEXT PRIMARY KEY,
		class      TEXT NOT NULL,
		source     TEXT NOT NULL,
		build      TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS package_vars (
		package TEXT NOT NULL,
		name    TEXT NOT NULL,
		sigil   TEXT NOT NULL,
		alias   TEXT NOT NULL,
		type    BLOB NOT NULL,
		PRIMARY KEY (package, name, sigil)
	)`,
	`CREATE TABLE IF NOT EXISTS package_subs (
		package TEXT NOT NULL,
		name    TEXT NOT NULL,
		alias   TEXT NOT NULL,
		returns BLOB NOT NULL,
		PRIMARY KEY (package, name)
	)`,
}

// Catalog is a SQLite store of package exports. Every export of one
// process is stamped with the same build id.
type Catalog struct {
	db    *sql.DB
	path  string
	build uuid.UUID
	mu    sync.Mutex
}

// Entry describes one exported package.
type Entry struct {
	Name      string
	Class     string
	Source    string
	Build     string
	UpdatedAt time.Time
}

// Open opens or creates the catalog at path.
func Open(path string) (*Catalog, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating catalog directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating catalog tables: %w", err)
		}
	}
	c := &Catalog{db: db, path: path, build: uuid.New()}
	log.Debugf("opened catalog %s, build %s", path, c.build)
	return c, nil
}

func (c *Catalog) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Build is the id stamped on the exports of this process.
func (c *Catalog) Build() uuid.UUID {
	return c.build
}

// Export replaces the stored exports of p.
func (c *Catalog) Export(p *symbols.Package, source string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("exporting %s: %w", p.Name, err)
	}
	if err := c.export(tx, p, source); err != nil {
		tx.Rollback()
		return fmt.Errorf("exporting %s: %w", p.Name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("exporting %s: %w", p.Name, err)
	}
	log.Infof("exported package %s (%d variables, %d subroutines)", p.Name, len(p.Vars()), len(p.Subs()))
	return nil
}

func (c *Catalog) export(tx *sql.Tx, p *symbols.Package, source string) error {
	_, err := tx.Exec(
		"INSERT OR REPLACE INTO packages (name, class, source, build, updated_at) VALUES (?, ?, ?, ?, ?)",
		p.Name, p.Class, source, c.build.String(), time.Now().Unix(),
	)
	if err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM package_vars WHERE package = ?", p.Name); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM package_subs WHERE package = ?", p.Name); err != nil {
		return err
	}
	for _, b := range p.Vars() {
		data, err := ts.Marshal(b.Type)
		if err != nil {
			return fmt.Errorf("variable %s%s: %w", b.Sigil, b.Name, err)
		}
		_, err = tx.Exec(
			"INSERT INTO package_vars (package, name, sigil, alias, type) VALUES (?, ?, ?, ?, ?)",
			p.Name, b.Name, b.Sigil.String(), b.Alias, data,
		)
		if err != nil {
			return err
		}
	}
	for _, s := range p.Subs() {
		data, err := ts.Marshal(s.Returns)
		if err != nil {
			return fmt.Errorf("subroutine %s: %w", s.Name, err)
		}
		_, err = tx.Exec(
			"INSERT INTO package_subs (package, name, alias, returns) VALUES (?, ?, ?, ?)",
			p.Name, s.Name, s.Alias, data,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// Import loads the exports of the named package.
func (c *Catalog) Import(name string) (*symbols.Package, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var class string
	err := c.db.QueryRow("SELECT class FROM packages WHERE name = ?", name).Scan(&class)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", name, ErrPackageNotFound)
		}
		return nil, fmt.Errorf("querying package %s: %w", name, err)
	}
	p := symbols.NewPackage(name)
	p.Class = class
	if err := c.importVars(p); err != nil {
		return nil, err
	}
	if err := c.importSubs(p); err != nil {
		return nil, err
	}
	log.Debugf("imported package %s from %s", name, c.path)
	return p, nil
}

func (c *Catalog) importVars(p *symbols.Package) error {
	rows, err := c.db.Query("SELECT name, sigil, alias, type FROM package_vars WHERE package = ?", p.Name)
	if err != nil {
		return fmt.Errorf("querying variables of %s: %w", p.Name, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			name, sigil, alias string
			data               []byte
		)
		if err := rows.Scan(&name, &sigil, &alias, &data); err != nil {
			return fmt.Errorf("reading variable of %s: %w", p.Name, err)
		}
		sig, ok := symbols.ParseSigil(sigil)
		if !ok {
			return fmt.Errorf("variable %s of %s: invalid sigil %q", name, p.Name, sigil)
		}
		t, err := ts.Unmarshal(data)
		if err != nil {
			return fmt.Errorf("variable %s%s of %s: %w", sigil, name, p.Name, err)
		}
		p.AddVar(&symbols.Binding{Name: name, Sigil: sig, Type: t, Alias: alias, Public: true})
	}
	return rows.Err()
}

func (c *Catalog) importSubs(p *symbols.Package) error {
	rows, err := c.db.Query("SELECT name, alias, returns FROM package_subs WHERE package = ?", p.Name)
	if err != nil {
		return fmt.Errorf("querying subroutines of %s: %w", p.Name, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			name, alias string
			data        []byte
		)
		if err := rows.Scan(&name, &alias, &data); err != nil {
			return fmt.Errorf("reading subroutine of %s: %w", p.Name, err)
		}
		t, err := ts.Unmarshal(data)
		if err != nil {
			return fmt.Errorf("subroutine %s of %s: %w", name, p.Name, err)
		}
		p.AddSub(&symbols.Sub{Name: name, Alias: alias, Returns: t})
	}
	return rows.Err()
}

// Packages lists the exported packages ordered by name.
func (c *Catalog) Packages() ([]Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.db.Query("SELECT name, class, source, build, updated_at FROM packages ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing packages: %w", err)
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			updated int64
		)
		if err := rows.Scan(&e.Name, &e.Class, &e.Source, &e.Build, &updated); err != nil {
			return nil, fmt.Errorf("reading package entry: %w", err)
		}
		e.UpdatedAt = time.Unix(updated, 0)
		out = append(out, e)
	}
	return out, rows.Err()
}
