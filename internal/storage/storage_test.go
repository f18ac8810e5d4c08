package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	now := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		in      string
		wantExt string
	}{
		{"pdf keeps extension", "Lecture 1.PDF", ".pdf"},
		{"windows path", `C:\docs\slides.pptx`, ".pptx"},
		{"no extension", "README", ""},
		{"absurd extension dropped", "x.aaaaaaaaaaaaaaaaaaaaaaaa", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := ObjectKey(now, tt.in)
			assert.True(t, strings.HasPrefix(key, "course_files/2026/03/09/"), key)
			assert.True(t, strings.HasSuffix(key, tt.wantExt), key)
		})
	}

	assert.NotEqual(t, ObjectKey(now, "a.pdf"), ObjectKey(now, "a.pdf"))
}
