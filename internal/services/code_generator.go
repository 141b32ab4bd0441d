package services

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

const (
	codeMin       = 100000
	codeMax       = 999999
	codeSetSize   = 4
	decoysPerCode = codeSetSize - 1
)

// IntSource returns a uniform integer in [0, n).
type IntSource interface {
	Intn(n int) int
}

type cryptoSource struct{}

func (cryptoSource) Intn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand не должен падать; если упал — система в неисправном состоянии
		panic("crypto/rand: " + err.Error())
	}
	return int(v.Int64())
}

// CodeSet — правильный код, три ложных и порядок показа.
type CodeSet struct {
	Correct string
	Decoys  []string
	Display []string
}

type CodeGenerator struct {
	src IntSource
}

func NewCodeGenerator(src IntSource) *CodeGenerator {
	if src == nil {
		src = cryptoSource{}
	}
	return &CodeGenerator{src: src}
}

// Code — 6-значный код, равномерно из [100000, 999999].
func (g *CodeGenerator) Code() string {
	return strconv.Itoa(codeMin + g.src.Intn(codeMax-codeMin+1))
}

// Generate: правильный код + 3 ложных без повторов, затем перемешивание.
func (g *CodeGenerator) Generate() CodeSet {
	correct := g.Code()
	candidates := []string{correct}
	seen := map[string]struct{}{correct: {}}
	for len(candidates) < codeSetSize {
		c := g.Code()
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		candidates = append(candidates, c)
	}

	decoys := make([]string, decoysPerCode)
	copy(decoys, candidates[1:])

	display := make([]string, codeSetSize)
	copy(display, candidates)
	// Fisher–Yates
	for i := len(display) - 1; i > 0; i-- {
		j := g.src.Intn(i + 1)
		display[i], display[j] = display[j], display[i]
	}

	return CodeSet{Correct: correct, Decoys: decoys, Display: display}
}
