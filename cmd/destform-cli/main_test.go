package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-destform/pkg/errutil"
	"github.com/goliatone/go-destform/pkg/form"
	"github.com/goliatone/go-destform/pkg/testsupport"
)

func TestDestRoots_RequiredWithMutation(t *testing.T) {
	_, err := destRoots("mutation { createUserContactMethod(input: $input) { id } }", "")
	require.Error(t, err)

	roots, err := destRoots("", "")
	require.NoError(t, err)
	assert.Empty(t, roots)
}

func TestDestRoots_AttributesServerFieldErrors(t *testing.T) {
	roots, err := destRoots("mutation {}", " createUserContactMethod.input.dest ")
	require.NoError(t, err)

	f := form.New(testsupport.Registry(t), form.WithType(testsupport.TypeSMS), form.WithDestRoot(roots...))
	f.ApplyErrors(errutil.Errors{{
		Message: "invalid number",
		Path:    errutil.Path{"createUserContactMethod", "input", "dest"},
		Extensions: &errutil.Extensions{
			Code:    errutil.CodeInvalidDestFieldValue,
			FieldID: testsupport.FieldPhoneNumber,
		},
	}})
	assert.Equal(t, "Invalid number", f.FieldError(testsupport.FieldPhoneNumber))
	assert.Empty(t, f.OtherErrors())
}
