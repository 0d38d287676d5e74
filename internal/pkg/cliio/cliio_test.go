// Copyright 2026 Peter Edge
//
// All rights reserved.

package cliio

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "table", want: FormatTable},
		{input: "", want: FormatTable},
		{input: "CSV", want: FormatCSV},
		{input: " json ", want: FormatJSON},
		{input: "yaml", wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseFormat(test.input)
			if test.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, test.want, got)
		})
	}
}

func TestWriteSections(t *testing.T) {
	t.Parallel()
	var buffer bytes.Buffer
	err := WriteSections(
		&buffer,
		Section{
			Title:   "ACCOUNTS",
			Headers: []string{"NAME", "TOTAL"},
			Rows:    [][]string{{"a", "$1"}, {"bbb", "$22"}},
			Totals:  []string{"TOTAL", "$23"},
		},
		Section{
			Headers: []string{"X"},
			Rows:    [][]string{{"y"}},
		},
	)
	require.NoError(t, err)
	require.Equal(
		t,
		"ACCOUNTS\n"+
			"NAME   TOTAL\n"+
			"a      $1\n"+
			"bbb    $22\n"+
			"       \n"+
			"TOTAL  $23\n"+
			"\n"+
			"X\n"+
			"y\n",
		buffer.String(),
	)
}

func TestWriteCSVRecords(t *testing.T) {
	t.Parallel()
	var buffer bytes.Buffer
	require.NoError(t, WriteCSVRecords(&buffer, [][]string{{"SYMBOL", "VALUE"}, {"VBAL.TO", "$1,235"}}))
	require.Equal(t, "SYMBOL,VALUE\nVBAL.TO,\"$1,235\"\n", buffer.String())
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()
	type object struct {
		Name string `json:"name"`
	}
	var buffer bytes.Buffer
	require.NoError(t, WriteJSON(&buffer, object{Name: "a"}, object{Name: "b"}))
	require.Equal(t, "{\"name\":\"a\"}\n{\"name\":\"b\"}\n", buffer.String())
}
