package app

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want Command
	}{
		{"no args defaults to serve", nil, CommandServe},
		{"serve", []string{"serve"}, CommandServe},
		{"migrate", []string{"migrate"}, CommandMigrate},
		{"healthcheck", []string{"healthcheck"}, CommandHealthcheck},
		{"unknown defaults to serve", []string{"bogus"}, CommandServe},
		{"extra args ignored", []string{"migrate", "--verbose"}, CommandMigrate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseCommand(tt.args); got != tt.want {
				t.Errorf("ParseCommand(%v) = %q, want %q", tt.args, got, tt.want)
			}
		})
	}
}

// ログに出すDB URLからパスワードが消えていることを検証
func TestMaskDatabaseURL(t *testing.T) {
	url := "postgres://userman:secretpass@db:5432/userman"
	masked := maskDatabaseURL(url)

	if masked == url {
		t.Error("masked URL should differ from the original")
	}
	if want := "postgres://u***@..."; masked != want {
		t.Errorf("masked = %q, want %q", masked, want)
	}

	if got := maskDatabaseURL("short"); got != "***" {
		t.Errorf("maskDatabaseURL(short) = %q, want %q", got, "***")
	}
}
