package codegen

import (
	"fmt"

	"github.com/jaevor/go-nanoid"
)

// codeAlphabet drops 0/O and 1/I so codes survive being read aloud or retyped.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

type NanoidCodeGenerator struct {
	generate func() string
}

func NewNanoidCodeGenerator(length int) (*NanoidCodeGenerator, error) {
	gen, err := nanoid.CustomASCII(codeAlphabet, length)
	if err != nil {
		return nil, fmt.Errorf("failed to create code generator: %w", err)
	}
	return &NanoidCodeGenerator{generate: gen}, nil
}

func (g *NanoidCodeGenerator) NewCode() (string, error) {
	return g.generate(), nil
}
