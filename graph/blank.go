package graph

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/knakk/rdf"
)

// BlankMinter hands out fresh blank nodes. A blank node is never handed out
// twice by the same minter.
type BlankMinter interface {
	Blank() rdf.Blank
}

// Sequence labels blank nodes b1, b2, ... in the order they are requested,
// which keeps output stable across runs over the same input.
type Sequence struct {
	Prefix string
	n      int64
}

func (s *Sequence) Blank() rdf.Blank {
	s.n++
	prefix := s.Prefix
	if prefix == "" {
		prefix = "b"
	}
	return mustBlank(fmt.Sprintf("%s%d", prefix, s.n))
}

// UUIDs labels blank nodes with random UUIDs. Use this when outputs of
// separate runs get concatenated, so labels do not clash.
type UUIDs struct{}

func (UUIDs) Blank() rdf.Blank {
	return mustBlank("u" + strings.ReplaceAll(uuid.New().String(), "-", ""))
}

// NewBlankMinter returns a minter by name, "seq" or "uuid".
func NewBlankMinter(name string) (BlankMinter, error) {
	switch name {
	case "", "seq":
		return &Sequence{}, nil
	case "uuid":
		return UUIDs{}, nil
	default:
		return nil, fmt.Errorf("unknown blank node mode: %s", name)
	}
}

func mustBlank(id string) rdf.Blank {
	b, err := rdf.NewBlank(id)
	if err != nil {
		panic(err)
	}
	return b
}
