package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<API REQUEST_DUMP="true">
    <CONTEXT>
        <PORT>9090</PORT>
        <HOST>127.0.0.1</HOST>
        <WORKING_DIR>work</WORKING_DIR>
        <LOG_DIR>logs</LOG_DIR>
    </CONTEXT>
    <DB>
        <INITIALIZE>true</INITIALIZE>
        <DRIVER>sqlite</DRIVER>
        <NAMES SCHOLARLY="scholarly-test"/>
        <USERNAME>tester</USERNAME>
        <PASSWORD TYPE="env">TEST_DB_PASSWORD</PASSWORD>
    </DB>
    <THIRD_PARTY>
        <OLLAMA_URL>http://localhost:11434</OLLAMA_URL>
        <OLLAMA_MODEL>llama3.1</OLLAMA_MODEL>
        <LLM_RATE>2</LLM_RATE>
        <LLM_BURST>5</LLM_BURST>
    </THIRD_PARTY>
</API>`

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.xml")
	require.NoError(t, os.WriteFile(path, []byte(sampleXML), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.True(t, cfg.RequestDump)
	assert.Equal(t, 9090, cfg.Context.Port)
	assert.Equal(t, "127.0.0.1", cfg.Context.Host)
	assert.Equal(t, "work", cfg.Context.WorkingDir)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "scholarly-test", cfg.DB.Names.SCHOLARLY)
	assert.Equal(t, "llama3.1", cfg.THIRD_PARTY.OllamaModel)
	assert.Equal(t, 2.0, cfg.THIRD_PARTY.LLMRate)
	assert.Equal(t, 5, cfg.THIRD_PARTY.LLMBurst)

	// Loading is once-only; the same instance comes back.
	again, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Same(t, cfg, again)
	assert.Same(t, cfg, GetConfig())
}

func TestDBPasswordResolve(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "hunter2")

	env := DBPassword{Type: "env", Value: "TEST_DB_PASSWORD"}
	assert.Equal(t, "hunter2", env.Resolve())

	plain := DBPassword{Type: "plain", Value: "literal"}
	assert.Equal(t, "literal", plain.Resolve())
}
