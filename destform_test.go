package destform_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	destform "github.com/goliatone/go-destform"
	"github.com/goliatone/go-destform/pkg/form"
	"github.com/goliatone/go-destform/pkg/testsupport"
)

func writeRegistry(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "registry.yaml")
	require.NoError(t, os.WriteFile(path, testsupport.RegistryYAML(), 0o644))
	return path
}

func TestParseKind(t *testing.T) {
	kind, err := destform.ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, destform.KindAll, kind)

	kind, err = destform.ParseKind(" Contact ")
	require.NoError(t, err)
	assert.Equal(t, destform.KindContactMethod, kind)

	_, err = destform.ParseKind("pager")
	require.Error(t, err)
}

func TestNewRuntime_FromFile(t *testing.T) {
	rt, err := destform.NewRuntime(testsupport.Context(), destform.Options{RegistryPath: writeRegistry(t)})
	require.NoError(t, err)
	assert.Nil(t, rt.Client)
	assert.Nil(t, rt.Validator)

	var contact []string
	for _, info := range rt.Types(destform.KindContactMethod) {
		contact = append(contact, info.Type)
	}
	assert.Equal(t, []string{testsupport.TypeSMS, testsupport.TypeVoice, testsupport.TypeEmail, testsupport.TypeWebhook}, contact)

	f := rt.NewForm(form.WithType(testsupport.TypeSMS))
	require.NoError(t, f.SetFieldValue(testsupport.Context(), testsupport.FieldPhoneNumber, "12225550123"))
	input, err := f.Input()
	require.NoError(t, err)
	assert.Equal(t, "12225550123", input.Value(testsupport.FieldPhoneNumber))
}

func TestNewRuntime_RequiresSource(t *testing.T) {
	_, err := destform.NewRuntime(testsupport.Context(), destform.Options{})
	require.Error(t, err)
}
