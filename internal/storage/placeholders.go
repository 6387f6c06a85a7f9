package storage

import (
	"fmt"
	"reflect"
	"strings"
)

const placeholder = '?'

// ExpandQuery rewrites query so that every placeholder bound to a slice or
// array parameter becomes one placeholder per element, and flattens params to
// match. Nested sequences are flattened exactly one level deep. A nil params
// slice returns the inputs unchanged.
//
//	ExpandQuery("SELECT * FROM t WHERE a IN (?) AND b = ?", []any{[]int{1, 2, 3}, 5})
//	// "SELECT * FROM t WHERE a IN (?,?,?) AND b = ?", []any{1, 2, 3, 5}
func ExpandQuery(query string, params []any) (string, []any) {
	if params == nil {
		return query, params
	}

	var b strings.Builder
	b.Grow(len(query))
	i := 0
	scanPlaceholders(query, func(chunk string, isMarker bool) {
		if !isMarker {
			b.WriteString(chunk)
			return
		}
		n := 1
		if i < len(params) {
			if seq, ok := sequenceLen(params[i]); ok {
				n = seq
			}
		}
		i++
		writeMarkers(&b, n)
	})

	return b.String(), flatten(params)
}

// PrepareBulk formats query as a multi-row statement: its single placeholder
// is replaced by one parenthesized group per row and rows are flattened in
// row-major order.
//
//	PrepareBulk("INSERT INTO t VALUES ?", [][]any{{1, 2, 3}, {4, 5, nil}})
//	// "INSERT INTO t VALUES (?,?,?),(?,?,?)", []any{1, 2, 3, 4, 5, nil}
func PrepareBulk(query string, rows [][]any) (string, []any, error) {
	if len(rows) == 0 {
		return "", nil, fmt.Errorf("%w: provide a list of rows for bulk insert like [[1,2], [1,3]]", ErrInvalidArgument)
	}
	if n := CountPlaceholders(query); n != 1 {
		return "", nil, fmt.Errorf("%w: bulk statement must contain exactly one placeholder, found %d", ErrInvalidArgument, n)
	}

	total := 0
	var groups strings.Builder
	for i, row := range rows {
		if len(row) == 0 {
			return "", nil, fmt.Errorf("%w: bulk row %d has no values", ErrInvalidArgument, i)
		}
		if i > 0 {
			groups.WriteByte(',')
		}
		groups.WriteByte('(')
		writeMarkers(&groups, len(row))
		groups.WriteByte(')')
		total += len(row)
	}

	var b strings.Builder
	b.Grow(len(query) + groups.Len())
	scanPlaceholders(query, func(chunk string, isMarker bool) {
		if isMarker {
			b.WriteString(groups.String())
			return
		}
		b.WriteString(chunk)
	})

	args := make([]any, 0, total)
	for _, row := range rows {
		args = append(args, row...)
	}
	return b.String(), args, nil
}

// CountPlaceholders reports how many positional placeholders query contains.
func CountPlaceholders(query string) int {
	n := 0
	scanPlaceholders(query, func(_ string, isMarker bool) {
		if isMarker {
			n++
		}
	})
	return n
}

// scanPlaceholders walks query and hands emit either a run of plain text or a
// single placeholder. Markers inside quoted literals are plain text.
func scanPlaceholders(query string, emit func(chunk string, isMarker bool)) {
	var quote byte
	start := 0
	for i := 0; i < len(query); i++ {
		ch := query[i]
		switch {
		case quote != 0:
			if ch == '\\' && quote != '`' && i+1 < len(query) {
				i++
				continue
			}
			if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"' || ch == '`':
			quote = ch
		case ch == placeholder:
			if start < i {
				emit(query[start:i], false)
			}
			emit(query[i:i+1], true)
			start = i + 1
		}
	}
	if start < len(query) {
		emit(query[start:], false)
	}
}

func writeMarkers(b *strings.Builder, n int) {
	for j := 0; j < n; j++ {
		if j > 0 {
			b.WriteByte(',')
		}
		b.WriteByte(placeholder)
	}
}

func flatten(params []any) []any {
	out := make([]any, 0, len(params))
	for _, p := range params {
		if _, ok := sequenceLen(p); !ok {
			out = append(out, p)
			continue
		}
		rv := reflect.ValueOf(p)
		for j := 0; j < rv.Len(); j++ {
			out = append(out, rv.Index(j).Interface())
		}
	}
	return out
}

// sequenceLen reports whether v is a nested sequence and its length. Byte
// slices are scalar blobs, not sequences.
func sequenceLen(v any) (int, bool) {
	if v == nil {
		return 0, false
	}
	if _, ok := v.([]byte); ok {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return 0, false
		}
		return rv.Len(), true
	}
	return 0, false
}
