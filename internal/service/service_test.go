package service

import (
	"errors"
	"testing"

	"github.com/evjobsch/backend/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestStoreErrClassification(t *testing.T) {
	assert.NoError(t, storeErr(nil))
	assert.ErrorIs(t, storeErr(gorm.ErrRecordNotFound), apperror.ErrNotFound)
	assert.ErrorIs(t, storeErr(apperror.ErrForbidden), apperror.ErrForbidden)
	assert.ErrorIs(t, storeErr(apperror.ErrValidation), apperror.ErrValidation)
	assert.ErrorIs(t, storeErr(errors.New("dial tcp: timeout")), apperror.ErrStoreUnavailable)
}

func TestSanitizeContent(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  Hallo zusammen  ", "Hallo zusammen"},
		{"<b>fett</b>", "fett"},
		{"<script>alert(1)</script>sicher", "sicher"},
		{"Kaffee & Kuchen", "Kaffee & Kuchen"},
		{"<img src=x onerror=alert(1)>", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, sanitizeContent(tc.in), "input %q", tc.in)
	}
}
