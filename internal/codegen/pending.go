package codegen

import ts "github.com/funvibe/perldoop/internal/typesystem"

// Declaration is a generated variable that must be declared before the
// statement that uses it.
type Declaration struct {
	Type  ts.Type
	Alias string
	Init  string
}

func (d Declaration) String() string {
	init := d.Init
	if init == "" {
		init = "null"
	}
	return JavaType(d.Type) + " " + d.Alias + " = " + init + ";"
}

// PendingQueue collects declarations raised while generating expressions.
// Statements take a mark before generating and drain from it afterwards.
type PendingQueue struct {
	decls []Declaration
}

func (q *PendingQueue) Add(d Declaration) {
	q.decls = append(q.decls, d)
}

func (q *PendingQueue) Mark() int {
	return len(q.decls)
}

func (q *PendingQueue) Len() int {
	return len(q.decls)
}

// Drain removes and returns the declarations queued since mark.
func (q *PendingQueue) Drain(mark int) []Declaration {
	if mark >= len(q.decls) {
		return nil
	}
	out := make([]Declaration, len(q.decls)-mark)
	copy(out, q.decls[mark:])
	q.decls = q.decls[:mark]
	return out
}

// Truncate discards the declarations queued since mark.
func (q *PendingQueue) Truncate(mark int) {
	if mark < len(q.decls) {
		q.decls = q.decls[:mark]
	}
}
