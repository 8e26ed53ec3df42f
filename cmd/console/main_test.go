package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateArguments(t *testing.T) {
	base := CommandLineArgs{Audience: "students"}

	assert.NoError(t, validateArguments(base))

	generate := base
	generate.Generate = "1001"
	generate.Apply = true
	assert.NoError(t, validateArguments(generate))

	applyOnly := base
	applyOnly.Apply = true
	assert.Error(t, validateArguments(applyOnly))

	combined := generate
	combined.Reset = true
	assert.Error(t, validateArguments(combined))

	unknown := base
	unknown.Audience = "pirates"
	assert.Error(t, validateArguments(unknown))

	badImport := base
	badImport.Import = "a.csv, b.xlsx"
	assert.Error(t, validateArguments(badImport))
}

func TestImportPaths(t *testing.T) {
	args := CommandLineArgs{Import: " a.csv, ,b.json "}
	assert.Equal(t, []string{"a.csv", "b.json"}, args.importPaths())
	assert.True(t, args.headless())
	assert.False(t, CommandLineArgs{}.headless())
}
