package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestConstraintViolations(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		unique, fk bool
	}{
		{"unique", &pq.Error{Code: "23505"}, true, false},
		{"wrapped unique", fmt.Errorf("insert item: %w", &pq.Error{Code: "23505"}), true, false},
		{"fk", &pq.Error{Code: "23503"}, false, true},
		{"other pq", &pq.Error{Code: "42P01"}, false, false},
		{"plain", errors.New("boom"), false, false},
		{"nil", nil, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.unique, IsUniqueViolation(tt.err))
			assert.Equal(t, tt.fk, IsForeignKeyViolation(tt.err))
		})
	}
}
