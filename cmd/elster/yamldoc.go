package main

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/reoring/elster"
)

// renderYAML streams every YAML document read from r through s. A single
// mapping or sequence document becomes the top-level container; several
// documents become a top-level array; a lone scalar is wrapped in an array.
// An empty top-level mapping or sequence writes no items, so closing the
// Streamer yields {} for both.
// It returns the number of documents written. s is not closed.
func renderYAML(s *elster.Streamer, r io.Reader) (int, error) {
	dec := yaml.NewDecoder(r)
	var docs []*yaml.Node
	for {
		var n yaml.Node
		if err := dec.Decode(&n); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, err
		}
		docs = append(docs, &n)
	}
	if len(docs) != 1 {
		for _, d := range docs {
			if err := addNode(s, d); err != nil {
				return 0, err
			}
		}
		return len(docs), nil
	}
	root := resolve(docs[0])
	switch root.Kind {
	case yaml.MappingNode:
		return 1, members(root)(s)
	case yaml.SequenceNode:
		return 1, elements(root)(s)
	default:
		return 1, addNode(s, root)
	}
}

func resolve(n *yaml.Node) *yaml.Node {
	for {
		switch {
		case n.Kind == yaml.DocumentNode && len(n.Content) > 0:
			n = n.Content[0]
		case n.Kind == yaml.AliasNode && n.Alias != nil:
			n = n.Alias
		default:
			return n
		}
	}
}

func members(n *yaml.Node) elster.Block {
	return func(s *elster.Streamer) error {
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := resolve(n.Content[i]), n.Content[i+1]
			if k.ShortTag() == "!!merge" {
				return fmt.Errorf("line %d: merge keys are not supported", k.Line)
			}
			if k.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: mapping keys must be scalars", k.Line)
			}
			if err := keyNode(s, k.Value, v); err != nil {
				return err
			}
		}
		return nil
	}
}

func elements(n *yaml.Node) elster.Block {
	return func(s *elster.Streamer) error {
		for _, v := range n.Content {
			if err := addNode(s, v); err != nil {
				return err
			}
		}
		return nil
	}
}

func keyNode(s *elster.Streamer, key string, n *yaml.Node) error {
	n = resolve(n)
	switch n.Kind {
	case yaml.MappingNode:
		return s.KeyBlock(key, members(n))
	case yaml.SequenceNode:
		return s.KeyBlock(key, elements(n))
	}
	v, err := scalar(n)
	if err != nil {
		return err
	}
	return s.Key(key, v)
}

func addNode(s *elster.Streamer, n *yaml.Node) error {
	n = resolve(n)
	switch n.Kind {
	case yaml.MappingNode:
		return s.AddBlock(members(n))
	case yaml.SequenceNode:
		return s.AddBlock(elements(n))
	}
	v, err := scalar(n)
	if err != nil {
		return err
	}
	return s.Add(v)
}

// scalar converts a resolved YAML scalar to the value handed to the
// Streamer, keeping the type its tag implies.
func scalar(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return i, nil
		}
		var u uint64
		if err := n.Decode(&u); err != nil {
			return nil, fmt.Errorf("line %d: integer %q out of range", n.Line, n.Value)
		}
		return u, nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return f, nil
	}
	return n.Value, nil
}
