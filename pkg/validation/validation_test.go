package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	State string `validate:"uf"`
	Time  string `validate:"omitempty,hhmm"`
}

func TestRules(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterOn(v))

	tests := []struct {
		in sample
		ok bool
	}{
		{sample{State: "SP", Time: "09:30"}, true},
		{sample{State: "rj", Time: "23:59"}, true},
		{sample{State: "SP"}, true},
		{sample{State: "SPX"}, false},
		{sample{State: "S1"}, false},
		{sample{State: "SP", Time: "24:00"}, false},
		{sample{State: "SP", Time: "9:30"}, false},
	}
	for _, tt := range tests {
		err := v.Struct(tt.in)
		if tt.ok {
			assert.NoError(t, err, "%+v", tt.in)
		} else {
			assert.Error(t, err, "%+v", tt.in)
		}
	}
}

func TestRegister_GinEngine(t *testing.T) {
	assert.NoError(t, Register())
}
