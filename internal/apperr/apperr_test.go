package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:     http.StatusBadRequest,
		KindConflict:       http.StatusBadRequest,
		KindAuthentication: http.StatusUnauthorized,
		KindAuthorization:  http.StatusForbidden,
		KindNotFound:       http.StatusNotFound,
		KindInternal:       http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.Status())
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("update album: %w", NotFound("album not found"))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, Is(err, KindNotFound))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestFromValidation(t *testing.T) {
	type payload struct{ Name string }
	p := payload{}
	err := FromValidation(validation.Errors{
		"name": validation.Validate(p.Name, validation.Required),
	}.Filter())

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, KindValidation, e.Kind)
	assert.Contains(t, e.Fields, "name")

	assert.NoError(t, FromValidation(nil))
}
