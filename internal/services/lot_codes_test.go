package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLotCodes(t *testing.T) {
	known := func(code string) bool { return code == "A05" || code == "B10" }

	valid, unknown := ParseLotCodes(" a05, B10 ,,zz9, A05,  ", known)

	assert.Equal(t, []string{"A05", "B10"}, valid)
	assert.Equal(t, []string{"ZZ9"}, unknown)
}

func TestParseLotCodesNilKnownAcceptsAll(t *testing.T) {
	valid, unknown := ParseLotCodes("x1,X2", nil)
	assert.Equal(t, []string{"X1", "X2"}, valid)
	assert.Empty(t, unknown)
}

func TestParseLotCodesEmpty(t *testing.T) {
	valid, unknown := ParseLotCodes("  , ", nil)
	assert.NotNil(t, valid)
	assert.Empty(t, valid)
	assert.Empty(t, unknown)
}

func TestDedupeLotIDs(t *testing.T) {
	assert.Equal(t, []string{"B", "A", "C"}, DedupeLotIDs([]string{"B", "A", "B", "C", "A"}))
}
