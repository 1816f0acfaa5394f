package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reviewInput struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"max=10"`
}

func TestValidateReportsJSONFieldNames(t *testing.T) {
	errs := Validate(reviewInput{Rating: 9, Comment: "far too long for the cap"})
	require.NotNil(t, errs)

	assert.Equal(t, "must be at most 5", errs["rating"])
	assert.Equal(t, "must be at most 10 characters", errs["comment"])
}

func TestValidateRequiredAndNil(t *testing.T) {
	errs := Validate(reviewInput{})
	require.NotNil(t, errs)
	assert.Equal(t, "is required", errs["rating"])

	assert.Nil(t, Validate(reviewInput{Rating: 4, Comment: "short"}))
}

func TestMessagesIgnoresNonValidationErrors(t *testing.T) {
	assert.Nil(t, Messages(errors.New("unexpected EOF")))
}
