package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinkTypeFor(t *testing.T) {
	assert.Equal(t, LinkTypePromptsQuestion, LinkTypeFor(LinkedItemTypeProblem))
	assert.Equal(t, LinkTypeAnswersQuestion, LinkTypeFor(LinkedItemTypeSolution))
}
