package config

import (
	"testing"

	"github.com/invertedv/voters/raw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestFromEnv(t *testing.T) {
	o, err := FromEnv(env(nil))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), o)
	require.NoError(t, o.Validate())

	o, err = FromEnv(env(map[string]string{
		EnvConcur:   "8",
		EnvPolicy:   "skip",
		EnvEncoding: "latin1",
		EnvCutoff:   "20",
		EnvBar:      "3",
		EnvCHHost:   "ch.internal",
		EnvCHMemory: "40000000000",
	}))
	require.NoError(t, err)
	assert.Equal(t, 8, o.Concur)
	assert.Equal(t, raw.Skip, o.Policy)
	assert.Equal(t, 20, o.Cutoff)
	assert.Equal(t, 3, o.Bar)
	assert.Equal(t, "ch.internal", o.ClickHouse().Host)
	assert.Equal(t, int64(40000000000), o.ClickHouse().MaxMemory)
	assert.Equal(t, "default", o.ClickHouse().User)
	require.NoError(t, o.Validate())

	ro := o.ReadOptions(nil)
	assert.Equal(t, raw.ReadOptions{Encoding: "latin1", Concur: 8, Policy: raw.Skip}, ro)
}

func TestFromEnvBadInt(t *testing.T) {
	o, err := FromEnv(env(map[string]string{EnvConcur: "many", EnvBar: "2"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvConcur)
	assert.Equal(t, 1, o.Concur)
	assert.Equal(t, 2, o.Bar)

	o, err = FromEnv(env(map[string]string{EnvCHMemory: "lots"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvCHMemory)
	assert.Zero(t, o.CHMemory)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(o *Options)
		field string
	}{
		{"concur", func(o *Options) { o.Concur = 0 }, "Concur"},
		{"policy", func(o *Options) { o.Policy = "retry" }, "Policy"},
		{"encoding", func(o *Options) { o.Encoding = "ebcdic" }, "Encoding"},
		{"cutoff", func(o *Options) { o.Cutoff = 100 }, "Cutoff"},
		{"bar", func(o *Options) { o.Bar = -1 }, "Bar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Defaults()
			tt.edit(&o)
			err := o.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}

	o := Defaults()
	require.NoError(t, o.ValidateClickHouse())
	o.CHHost = "127.0.0.1:9000"
	assert.Error(t, o.ValidateClickHouse())
	o.CHHost = ""
	assert.Error(t, o.ValidateClickHouse())
	o = Defaults()
	o.CHMemory = -1
	assert.Error(t, o.ValidateClickHouse())
}
