package codegen

import (
	"strconv"
	"strings"

	"github.com/funvibe/perldoop/internal/config"
	ts "github.com/funvibe/perldoop/internal/typesystem"
)

type chunk struct {
	code string
	typ  ts.Type
}

// BuildCollection renders a flattened list of elements as one aggregate of
// type dest. Consecutive scalars are grouped into literal arrays, aggregates
// are spliced in, and several chunks are joined by the runtime union
// builder. Order is preserved.
func (c *Caster) BuildCollection(elems []Operand, dest ts.Type) (string, error) {
	agg, ok := dest.(ts.TAggregate)
	if !ok {
		return "", ts.NewIncompatibleError(ts.ArrayOf(ts.BoxType), dest)
	}
	if len(elems) == 0 {
		return Empty(dest), nil
	}
	if agg.Shape == ts.Map && len(elems) > 1 && splicesSequence(elems) {
		// a pair may straddle a spliced sequence, so the whole list is
		// flattened and paired once
		flat := ts.ListOf(ts.BoxType)
		code, err := c.BuildCollection(elems, flat)
		if err != nil {
			return "", err
		}
		return c.Convert(NonNull(code, flat), dest)
	}

	var (
		chunks []chunk
		run    []Operand
	)
	flush := func() error {
		if len(run) == 0 {
			return nil
		}
		var (
			ch  chunk
			err error
		)
		if agg.Shape == ts.Map {
			ch, err = c.mapRun(run, agg.Elem)
		} else {
			ch, err = c.sequenceRun(run, agg.Elem)
		}
		if err != nil {
			return err
		}
		chunks = append(chunks, ch)
		run = nil
		return nil
	}

	for _, op := range elems {
		if !ts.IsAggregate(op.Type) {
			run = append(run, op)
			continue
		}
		if err := flush(); err != nil {
			return "", err
		}
		ch, err := c.splice(op, agg)
		if err != nil {
			return "", err
		}
		chunks = append(chunks, ch)
	}
	if err := flush(); err != nil {
		return "", err
	}

	if len(chunks) == 1 {
		return c.Convert(NonNull(chunks[0].code, chunks[0].typ), dest)
	}
	var sb strings.Builder
	sb.WriteString(call(config.PdClass, config.UnionFunc))
	for _, ch := range chunks {
		sb.WriteString(".append(" + ch.code + ")")
	}
	switch agg.Shape {
	case ts.Array:
		sb.WriteString(".toArray(" + ClassLiteral(dest) + ")")
	case ts.List:
		sb.WriteString(".toList()")
	case ts.Map:
		sb.WriteString(".toMap()")
	}
	return sb.String(), nil
}

func splicesSequence(elems []Operand) bool {
	for _, op := range elems {
		if ts.IsArrayOrList(op.Type) {
			return true
		}
	}
	return false
}

// splice prepares an aggregate element. Sequences with the wanted element
// type are appended as they are; anything else is converted whole.
func (c *Caster) splice(op Operand, dest ts.TAggregate) (chunk, error) {
	if dest.Shape == ts.Map {
		if ts.Equal(op.Type, dest) {
			return chunk{op.Code, op.Type}, nil
		}
	} else if ts.IsArrayOrList(op.Type) && ts.Equal(ts.Elem(op.Type), dest.Elem) {
		return chunk{op.Code, op.Type}, nil
	}
	code, err := c.Convert(op, dest)
	if err != nil {
		return chunk{}, err
	}
	return chunk{code, dest}, nil
}

func (c *Caster) sequenceRun(run []Operand, elem ts.Type) (chunk, error) {
	items := make([]string, len(run))
	for i, op := range run {
		code, err := c.Convert(op, elem)
		if err != nil {
			return chunk{}, err
		}
		items[i] = code
	}
	return chunk{ArrayInitializer(elem, items), ts.ArrayOf(elem)}, nil
}

// mapRun pairs a run into keys and values. An odd run cannot form a map;
// it compiles to an expression that raises the arity error when evaluated.
func (c *Caster) mapRun(run []Operand, elem ts.Type) (chunk, error) {
	typ := ts.MapOf(elem)
	if len(run)%2 != 0 {
		code := "((java.util.function.Supplier<" + JavaType(typ) + ">) () -> { throw new " +
			config.ArityErrClass + "(" + strconv.Quote(config.ArityMessage) + "); }).get()"
		return chunk{code, typ}, nil
	}
	keys := make([]string, 0, len(run)/2)
	values := make([]string, 0, len(run)/2)
	for i := 0; i < len(run); i += 2 {
		k, err := c.Convert(run[i], ts.StringType)
		if err != nil {
			return chunk{}, err
		}
		v, err := c.Convert(run[i+1], elem)
		if err != nil {
			return chunk{}, err
		}
		keys = append(keys, k)
		values = append(values, v)
	}
	code := "new " + JavaType(typ) + "(" + ArrayInitializer(ts.StringType, keys) + ", " + ArrayInitializer(elem, values) + ")"
	return chunk{code, typ}, nil
}
