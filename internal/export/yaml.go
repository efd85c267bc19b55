package export

import (
	"fmt"
	"io"
	"reflect"

	"gopkg.in/yaml.v3"
)

// WriteYAML writes value as YAML, keeping the json field names and order.
func WriteYAML(w io.Writer, value any) error {
	node := toNode(reflect.ValueOf(value))
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return enc.Close()
}

func toNode(v reflect.Value) *yaml.Node {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}

	switch {
	case v.Type() == timeType:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: formatCell(v)}
	case v.Kind() == reflect.Slice || v.Kind() == reflect.Array:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		if v.Len() == 0 {
			seq.Style = yaml.FlowStyle
		}
		for i := 0; i < v.Len(); i++ {
			seq.Content = append(seq.Content, toNode(v.Index(i)))
		}
		return seq
	case v.Kind() == reflect.Struct:
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, f := range jsonFields(v.Type()) {
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.name},
				toNode(v.Field(f.index)),
			)
		}
		return m
	}

	tag := "!!str"
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		// whole numbers resolve as ints, leave the tag implicit
		tag = ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		tag = "!!int"
	case reflect.Bool:
		tag = "!!bool"
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: formatCell(v)}
}
