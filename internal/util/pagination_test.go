package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name               string
		page, size         int
		wantOffset, wantLn int
	}{
		{name: "first page", page: 1, size: 10, wantOffset: 0, wantLn: 10},
		{name: "third page", page: 3, size: 5, wantOffset: 10, wantLn: 5},
		{name: "page below one", page: 0, size: 5, wantOffset: 0, wantLn: 5},
		{name: "size defaulted", page: 2, size: 0, wantOffset: DefaultPageSize, wantLn: DefaultPageSize},
		{name: "size capped", page: 1, size: MaxPageSize + 1, wantOffset: 0, wantLn: DefaultPageSize},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			offset, limit := Calculate(tt.page, tt.size)
			assert.Equal(t, tt.wantOffset, offset)
			assert.Equal(t, tt.wantLn, limit)
		})
	}
}
