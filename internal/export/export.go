// Package export renders report results as tables, CSV, JSON or YAML.
// Column names and order follow the json tags of the result types.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Format is an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatYAML  Format = "yaml"
)

// Formats lists the supported encodings.
var Formats = []Format{FormatTable, FormatJSON, FormatCSV, FormatYAML}

// ParseFormat validates a user supplied format name.
func ParseFormat(raw string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid format: %s (use table, json, csv, or yaml)", raw)
}

// Write renders value in format.
func Write(w io.Writer, format Format, value any) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, value)
	case FormatCSV:
		return WriteCSV(w, value)
	case FormatYAML:
		return WriteYAML(w, value)
	case FormatTable:
		return WriteTable(w, value)
	default:
		return fmt.Errorf("invalid format: %s", format)
	}
}

// WriteJSON writes indented JSON.
func WriteJSON(w io.Writer, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// Section is one rectangular block of a result.
type Section struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// Sections flattens a result. Lists of records give one section; a record
// whose fields are all lists gives one titled section per field; any other
// record gives a single row.
func Sections(value any) ([]Section, error) {
	v := reflect.ValueOf(value)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		s, err := listSection(v)
		if err != nil {
			return nil, err
		}
		return []Section{s}, nil
	case reflect.Struct:
		if v.Type() == timeType {
			break
		}
		fields := jsonFields(v.Type())
		if nested(v.Type(), fields) {
			out := make([]Section, 0, len(fields))
			for _, f := range fields {
				s, err := listSection(v.Field(f.index))
				if err != nil {
					return nil, err
				}
				s.Title = f.name
				out = append(out, s)
			}
			return out, nil
		}
		s := Section{Columns: names(fields)}
		s.Rows = append(s.Rows, cells(v, fields))
		return []Section{s}, nil
	}
	return []Section{{Columns: []string{"value"}, Rows: [][]string{{formatCell(v)}}}}, nil
}

func isList(value any) bool {
	v := reflect.ValueOf(value)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return false
		}
		v = v.Elem()
	}
	return v.Kind() == reflect.Slice || v.Kind() == reflect.Array
}

func listSection(v reflect.Value) (Section, error) {
	elem := v.Type().Elem()
	for elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}

	if elem.Kind() != reflect.Struct || elem == timeType {
		s := Section{Columns: []string{"value"}}
		for i := 0; i < v.Len(); i++ {
			s.Rows = append(s.Rows, []string{formatCell(v.Index(i))})
		}
		return s, nil
	}

	fields := jsonFields(elem)
	if nested(elem, fields) {
		return Section{}, fmt.Errorf("cannot flatten list of %s", elem)
	}
	s := Section{Columns: names(fields)}
	for i := 0; i < v.Len(); i++ {
		row := reflect.Indirect(v.Index(i))
		s.Rows = append(s.Rows, cells(row, fields))
	}
	return s, nil
}

type field struct {
	index int
	name  string
}

var timeType = reflect.TypeOf(time.Time{})

func jsonFields(t reflect.Type) []field {
	var out []field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Name
		if tag, ok := sf.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		out = append(out, field{index: i, name: name})
	}
	return out
}

// nested reports whether every field is a list of records.
func nested(t reflect.Type, fields []field) bool {
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		ft := t.Field(f.index).Type
		if ft.Kind() != reflect.Slice {
			return false
		}
		elem := ft.Elem()
		if elem.Kind() != reflect.Struct || elem == timeType {
			return false
		}
	}
	return true
}

func names(fields []field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.name
	}
	return out
}

func cells(v reflect.Value, fields []field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = formatCell(v.Field(f.index))
	}
	return out
}

func formatCell(v reflect.Value) string {
	if !v.IsValid() {
		return ""
	}
	if v.Type() == timeType {
		return v.Interface().(time.Time).UTC().Format(time.RFC3339)
	}
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return ""
		}
		return formatCell(v.Elem())
	default:
		return fmt.Sprint(v.Interface())
	}
}
