package handleengine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/entativa/eid/internal/errs"
)

func TestCheckFormatLength(t *testing.T) {
	assert.Error(t, CheckFormat("ab"))
	assert.NoError(t, CheckFormat("abc"))

	exactly30 := "a" + strings.Repeat("b", 28) + "x"
	assert.Len(t, exactly30, 30)
	assert.NoError(t, CheckFormat(exactly30))

	tooLong := "a" + strings.Repeat("b", 29) + "x"
	assert.Len(t, tooLong, 31)
	assert.Error(t, CheckFormat(tooLong))
}

func TestCheckFormatRejectsInvalidCharsOrPlacement(t *testing.T) {
	assert.Error(t, CheckFormat(".leadingdot"))
	assert.Error(t, CheckFormat("trailingdot."))
	assert.Error(t, CheckFormat("has space"))
	assert.Error(t, CheckFormat("emoji😀handle"))
	assert.NoError(t, CheckFormat("valid.handle-ok_99"))
}

func TestCheckFormatRejectsConsecutiveSeparators(t *testing.T) {
	assert.Error(t, CheckFormat("double..dot"))
	assert.Error(t, CheckFormat("mix.-of_seps"))
	assert.Equal(t, errs.InvalidFormat, errs.KindOf(CheckFormat("aa--bb")))
}

func TestCheckModerationRejectsDisallowedSubstrings(t *testing.T) {
	err := CheckModeration("the_admin_account")
	assert.Error(t, err)
	assert.Equal(t, errs.Inappropriate, errs.KindOf(err))

	assert.NoError(t, CheckModeration("regular_user"))
}

func TestFoldNormalizesCase(t *testing.T) {
	assert.Equal(t, "johndoe", Fold("  JohnDoe  "))
}
