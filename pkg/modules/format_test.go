package modules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quill-lang/quill/pkg/builtins"
	"github.com/quill-lang/quill/pkg/parser"
)

func parseStmt(t *testing.T, src string) parser.Statement {
	t.Helper()
	prog, err := parser.ParseString(src + "\n")
	require.NoError(t, err, src)
	require.Len(t, prog.Statements, 1)
	return prog.Statements[0]
}

func resolver(t *testing.T, target string) *Resolver {
	t.Helper()
	r, err := NewResolver(target, builtins.Default())
	require.NoError(t, err)
	return r
}

func TestFormatForTarget(t *testing.T) {
	for target, want := range map[string]Format{"es6": FormatESM, "esm": FormatESM, "node": FormatCommonJS, "cjs": FormatCommonJS} {
		got, err := FormatForTarget(target)
		require.NoError(t, err, target)
		assert.Equal(t, want, got, target)
	}
	_, err := FormatForTarget("amd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown target "amd"`)

	_, err = NewResolver("umd", nil)
	assert.Error(t, err)
}

func TestSpecifier(t *testing.T) {
	tests := map[string]string{
		".utils":        "./utils.js",
		"..pkg.models":  "../pkg/models.js",
		"...deep":       "../../deep.js",
		".":             "./index.js",
		"./view.ql":     "./view.js",
		"../lib/x":      "../lib/x",
		"react":         "react",
		"node:fs":       "node:fs",
		"@scope/pkg/ui": "@scope/pkg/ui",
	}
	for in, want := range tests {
		assert.Equal(t, want, Specifier(in), in)
	}
}

func TestImportLines(t *testing.T) {
	tests := []struct {
		src  string
		esm  []string
		cjs  []string
	}{
		{
			"from react import useState, useEffect as ue",
			[]string{`import { useState, useEffect as ue } from "react";`},
			[]string{`const { useState, useEffect: ue } = require("react");`},
		},
		{
			`import React from "react"`,
			[]string{`import React from "react";`},
			[]string{`const React = require("react");`},
		},
		{
			`import "./styles.css"`,
			[]string{`import "./styles.css";`},
			[]string{`require("./styles.css");`},
		},
		{
			`import * as path from "node:path"`,
			[]string{`import * as path from "node:path";`},
			[]string{`const path = require("node:path");`},
		},
		{
			"import os.path",
			[]string{`import * as path from "os/path";`},
			[]string{`const path = require("os/path");`},
		},
		{
			"import lodash as _",
			[]string{`import * as _ from "lodash";`},
			[]string{`const _ = require("lodash");`},
		},
		{
			"from .utils import helper",
			[]string{`import { helper } from "./utils.js";`},
			[]string{`const { helper } = require("./utils.js");`},
		},
		{
			`import { a, b as c } from "./lib.ql"`,
			[]string{`import { a, b as c } from "./lib.js";`},
			[]string{`const { a, b: c } = require("./lib.js");`},
		},
		{"from typing import List, Optional", nil, nil},
		{"from __future__ import annotations", nil, nil},
	}
	esm, cjs := resolver(t, "esm"), resolver(t, "cjs")
	for _, tt := range tests {
		decl := parseStmt(t, tt.src).(*parser.ImportDeclaration)
		assert.Equal(t, tt.esm, esm.Import(decl), "esm: %s", tt.src)
		assert.Equal(t, tt.cjs, cjs.Import(decl), "cjs: %s", tt.src)
	}
}

func TestBuiltinModuleImports(t *testing.T) {
	shim, ok := builtins.Default().Module("math")
	require.True(t, ok)
	r := resolver(t, "es6")

	decl := parseStmt(t, "import math").(*parser.ImportDeclaration)
	assert.Equal(t, []string{"const math = " + shim + ";"}, r.Import(decl))

	decl = parseStmt(t, "from math import sqrt, pi as PI").(*parser.ImportDeclaration)
	assert.Equal(t, []string{"const { sqrt, pi: PI } = " + shim + ";"}, r.Import(decl))

	decl = parseStmt(t, "import json as j").(*parser.ImportDeclaration)
	lines := r.Import(decl)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "const j = ")
	assert.Contains(t, lines[0], "JSON.stringify")
}

func TestExportLines(t *testing.T) {
	esm, cjs := resolver(t, "esm"), resolver(t, "node")

	decl := parseStmt(t, "export { a, b as c }").(*parser.ExportDeclaration)
	assert.Equal(t, []string{"export { a, b as c };"}, esm.Export(decl))
	assert.Equal(t, []string{"module.exports.a = a;", "module.exports.c = b;"}, cjs.Export(decl))

	decl = parseStmt(t, `export * from "./shapes.ql"`).(*parser.ExportDeclaration)
	assert.Equal(t, []string{`export * from "./shapes.js";`}, esm.Export(decl))
	assert.Equal(t, []string{`Object.assign(module.exports, require("./shapes.js"));`}, cjs.Export(decl))

	decl = parseStmt(t, `export * as geo from "./geo"`).(*parser.ExportDeclaration)
	assert.Equal(t, []string{`export * as geo from "./geo";`}, esm.Export(decl))
	assert.Equal(t, []string{`module.exports.geo = require("./geo");`}, cjs.Export(decl))

	assert.Equal(t, "export ", esm.ExportPrefix())
	assert.Equal(t, "", cjs.ExportPrefix())
	assert.Nil(t, esm.ExportNames([]string{"f"}))
	assert.Equal(t, []string{"module.exports.f = f;"}, cjs.ExportNames([]string{"f"}))
	assert.Equal(t, "export default App;", esm.ExportDefault("App"))
	assert.Equal(t, "module.exports = App;", cjs.ExportDefault("App"))
}

func TestPreamble(t *testing.T) {
	esm, cjs := resolver(t, "esm"), resolver(t, "cjs")
	assert.Empty(t, esm.Preamble(PreambleOptions{}))
	assert.Equal(t, []string{`"use strict";`}, cjs.Preamble(PreambleOptions{}))

	opts := PreambleOptions{
		JSX: true,
		Imports: []builtins.Import{
			{Names: []string{"randomUUID"}, Source: "node:crypto"},
			{Names: []string{"createHash", "randomUUID"}, Source: "node:crypto"},
			{Default: "fs", Source: "node:fs"},
		},
	}
	assert.Equal(t, []string{
		`import { jsx } from "react/jsx-runtime";`,
		`import { createHash, randomUUID } from "node:crypto";`,
		`import fs from "node:fs";`,
	}, esm.Preamble(opts))
	assert.Equal(t, []string{
		`"use strict";`,
		`const { jsx } = require("react/jsx-runtime");`,
		`const { createHash, randomUUID } = require("node:crypto");`,
		`const fs = require("node:fs");`,
	}, cjs.Preamble(opts))
}

func TestIsTypeOnly(t *testing.T) {
	assert.True(t, IsTypeOnly("typing"))
	assert.True(t, IsTypeOnly("abc"))
	assert.False(t, IsTypeOnly("react"))
}
