package main

import (
	"reflect"
	"testing"
)

func TestParseParamPairs(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    map[string]any
		wantErr bool
	}{
		{name: "empty", pairs: nil, want: map[string]any{}},
		{name: "positional", pairs: []string{"1=noir-city", "2 = gravity_off "}, want: map[string]any{"1": "noir-city", "2": "gravity_off"}},
		{name: "value with equals", pairs: []string{"1=a=b"}, want: map[string]any{"1": "a=b"}},
		{name: "skips blank", pairs: []string{"", "1=x"}, want: map[string]any{"1": "x"}},
		{name: "missing equals", pairs: []string{"oops"}, wantErr: true},
		{name: "empty key", pairs: []string{" =x"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseParamPairs(tt.pairs)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %#v, got %#v", tt.want, got)
			}
		})
	}
}
