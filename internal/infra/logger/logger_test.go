package logger

import "testing"

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		encoding string
		wantErr  bool
	}{
		{name: "defaults", level: "info"},
		{name: "console debug", level: "DEBUG", encoding: "console"},
		{name: "bad level", level: "loud", wantErr: true},
		{name: "bad encoding", level: "info", encoding: "xml", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			log, err := New("api", tc.level, tc.encoding)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if log == nil {
				t.Fatalf("logger is nil")
			}
		})
	}
}
