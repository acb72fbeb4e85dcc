package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    action
		wantErr bool
	}{
		{input: "publish", want: actionPublish},
		{input: " Upload ", want: actionPublish},
		{input: "install", want: actionInstall},
		{input: "DOWNLOAD", want: actionInstall},
		{input: "", wantErr: true},
		{input: "sync", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := parseAction(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
