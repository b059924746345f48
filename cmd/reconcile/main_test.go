package main

import (
	"testing"
	"time"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    options
		wantErr bool
	}{
		{
			name: "defaults run one sweep",
			args: nil,
			want: options{sweep: true, paidGrace: 10 * time.Minute, batchSize: 200, timeout: 5 * time.Minute},
		},
		{
			name: "listen alone turns the sweep off",
			args: []string{"--listen"},
			want: options{listen: true, paidGrace: 10 * time.Minute, batchSize: 200, timeout: 5 * time.Minute},
		},
		{
			name: "explicit sweep with listen keeps both",
			args: []string{"--listen", "--sweep"},
			want: options{sweep: true, listen: true, paidGrace: 10 * time.Minute, batchSize: 200, timeout: 5 * time.Minute},
		},
		{
			name: "release with custom grace",
			args: []string{"--release", "--paid-grace=30m", "--batch-size=50"},
			want: options{sweep: true, release: true, paidGrace: 30 * time.Minute, batchSize: 50, timeout: 5 * time.Minute},
		},
		{
			name:    "non-positive grace",
			args:    []string{"--paid-grace=0s"},
			wantErr: true,
		},
		{
			name:    "unknown flag",
			args:    []string{"--everything"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFlags(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseFlags() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseFlags() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
