package validation

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signUp struct {
	Username string `json:"username" label:"Username" validate:"required"`
	Password string `json:"password" label:"Password" validate:"required,between=4:16"`
	Phone    string `json:"phone" label:"Phone number" validate:"omitempty,phone"`
	Role     string `json:"role" label:"Role" validate:"omitempty,oneof=ceo admin manager employee"`
}

type listQuery struct {
	ID    string `param:"id" label:"User ID" validate:"omitempty,uuid"`
	Page  string `query:"page" label:"Page" validate:"omitempty,intrange=1:"`
	Limit string `query:"limit" label:"Limit" validate:"omitempty,intrange=1:100"`
}

func TestMessage_Aggregates(t *testing.T) {
	v := New()

	tests := []struct {
		name string
		in   any
		want string
	}{
		{
			name: "missing username and short password",
			in:   signUp{Password: "abc"},
			want: "Username is required. Password must be between 4 and 16 characters long.",
		},
		{
			name: "all fields invalid in declaration order",
			in:   signUp{Password: "abcdefghijklmnopq", Phone: "+7999", Role: "owner"},
			want: "Username is required. Password must be between 4 and 16 characters long. " +
				"Phone number must match +998XXXXXXXXX format. Invalid role value.",
		},
		{
			name: "query bounds",
			in:   listQuery{ID: "nope", Page: "0", Limit: "101"},
			want: "User ID must be a valid UUID. Page must be an integer greater than or equal to 1. " +
				"Limit must be an integer between 1 and 100.",
		},
		{
			name: "non numeric page",
			in:   listQuery{Page: "two"},
			want: "Page must be an integer greater than or equal to 1.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			require.Error(t, err)
			assert.Equal(t, tt.want, Message(err))
		})
	}
}

func TestValid(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(signUp{Username: "boss", Password: "abcd", Phone: "+998901234567", Role: "manager"}))
	assert.NoError(t, v.Struct(signUp{Username: "boss", Password: "abcdefghijklmnop"}))
	assert.NoError(t, v.Struct(listQuery{ID: "5b0b7a2e-4c1d-4a39-9d3e-6f1f0e6a1b20", Page: "3", Limit: "100"}))
	assert.NoError(t, v.Struct(listQuery{}))
}

func TestPasswordLengthCountsRunes(t *testing.T) {
	v := New()
	assert.NoError(t, v.Struct(signUp{Username: "u", Password: "пароль"}))
}

func TestMessage_PlainError(t *testing.T) {
	assert.Equal(t, "boom", Message(errors.New("boom")))
}

func TestBounds(t *testing.T) {
	tests := []struct {
		param  string
		lo, hi int
		ok     bool
	}{
		{"4:16", 4, 16, true},
		{"1:", 1, -1, true},
		{"x:1", 0, 0, false},
		{"1:y", 0, 0, false},
		{"7", 0, 0, false},
	}
	for _, tt := range tests {
		lo, hi, ok := bounds(tt.param)
		assert.Equal(t, tt.ok, ok, tt.param)
		if tt.ok {
			assert.Equal(t, tt.lo, lo, tt.param)
			assert.Equal(t, tt.hi, hi, tt.param)
		}
	}
}

func TestJoin(t *testing.T) {
	v := New()
	typ := reflect.TypeOf(signUp{})

	tests := []struct {
		name     string
		in       signUp
		typeErrs []TypeError
		want     string
	}{
		{
			name:     "type error replaces rules of the same field",
			in:       signUp{Password: "abc"},
			typeErrs: []TypeError{{Field: "Username", Label: "Username", Kind: reflect.String}},
			want:     "Username must be a string. Password must be between 4 and 16 characters long.",
		},
		{
			name: "declaration order is kept",
			in:   signUp{Username: "boss", Password: "secret", Phone: "+7999"},
			typeErrs: []TypeError{
				{Field: "Role", Label: "Role", Kind: reflect.String},
				{Field: "Password", Label: "Password", Kind: reflect.String},
			},
			want: "Password must be a string. Phone number must match +998XXXXXXXXX format. Role must be a string.",
		},
		{
			name:     "only type errors",
			in:       signUp{Username: "boss", Password: "secret"},
			typeErrs: []TypeError{{Field: "Phone", Label: "Phone number", Kind: reflect.String}},
			want:     "Phone number must be a string.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Join(typ, tt.typeErrs, v.Struct(tt.in)))
		})
	}
}

func TestTypeErrorMessage(t *testing.T) {
	assert.Equal(t, "Page must be an integer.", TypeError{Label: "Page", Kind: reflect.Int}.Message())
	assert.Equal(t, "Active must be a boolean.", TypeError{Label: "Active", Kind: reflect.Bool}.Message())
	assert.Equal(t, "Tags must be an array.", TypeError{Label: "Tags", Kind: reflect.Slice}.Message())
}
