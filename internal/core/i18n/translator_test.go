package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_Fallback(t *testing.T) {
	c := Default()

	assert.Equal(t, "Code is required", c.Translate("Buyer.code.isRequired", "%s is required", "Code"))
	assert.Equal(t, "Code", Field(c, "Buyer", "code", "Code"))
}

func TestCatalog_Entries(t *testing.T) {
	c, err := New("id", map[string]string{
		"Buyer.code.isRequired": "%s harus diisi",
		"Buyer.code._":          "Kode",
	})
	require.NoError(t, err)

	label := Field(c, "Buyer", "code", "Code")
	assert.Equal(t, "Kode", label)
	assert.Equal(t, "Kode harus diisi", c.Translate("Buyer.code.isRequired", "%s is required", label))
	assert.Equal(t, "Name is required", c.Translate("Buyer.name.isRequired", "%s is required", "Name"))
}

func TestNew_InvalidLanguage(t *testing.T) {
	_, err := New("not a language tag!", nil)
	assert.Error(t, err)
}
