package oid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: "0."},
		{name: "two chars", input: "hi", want: "2.104.105"},
		{name: "hello", input: "hello", want: "5.104.101.108.108.111"},
		{name: "high byte", input: "\xff", want: "1.255"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.input))
		})
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"1.3.6.1", true},
		{".1.3.6.1", true},
		{"0", true},
		{"", false},
		{".", false},
		{"1..3", false},
		{"1.3.", false},
		{"1.x.3", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Valid(tt.input))
		})
	}
}

func TestNewBase(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "leading dot", input: ".1.3.6.1.3.53.8", want: ".1.3.6.1.3.53.8."},
		{name: "trailing dot kept once", input: ".1.3.6.1.3.53.8.", want: ".1.3.6.1.3.53.8."},
		{name: "no leading dot", input: "1.3.6.1.4.1.8072.1.3.1.2", want: ".1.3.6.1.4.1.8072.1.3.1.2."},
		{name: "whitespace", input: "  .1.3 ", want: ".1.3."},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: ".1.3.foo", wantErr: true},
		{name: "double dot", input: ".1..3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBase(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, b.String())
		})
	}
}

func TestBase_Strip(t *testing.T) {
	b := MustBase(".1.3.6.1.3.53.8")

	tests := []struct {
		name   string
		full   string
		want   string
		wantOK bool
	}{
		{name: "leaf", full: ".1.3.6.1.3.53.8.28.12", want: "28.12", wantOK: true},
		{name: "root", full: ".1.3.6.1.3.53.8", want: "", wantOK: true},
		{name: "root with trailing dot", full: ".1.3.6.1.3.53.8.", want: "", wantOK: true},
		{name: "without leading dot", full: "1.3.6.1.3.53.8.0.1", want: "0.1", wantOK: true},
		{name: "outside base", full: ".1.3.6.1.2.1.1.1.0", wantOK: false},
		{name: "sibling sharing text prefix", full: ".1.3.6.1.3.53.80.1", wantOK: false},
		{name: "parent of base", full: ".1.3.6.1.3.53", wantOK: false},
		{name: "empty", full: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := b.Strip(tt.full)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBase_Join(t *testing.T) {
	b := MustBase(".1.3.6.1.3.53.8")

	assert.Equal(t, ".1.3.6.1.3.53.8.0.1", b.Join("0.1"))
	assert.Equal(t, ".1.3.6.1.3.53.8", b.Root())

	suffix, ok := b.Strip(b.Join("7." + Encode("vm1")))
	require.True(t, ok)
	assert.Equal(t, "7.3.118.109.49", suffix)
}
