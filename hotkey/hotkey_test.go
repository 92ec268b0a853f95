package hotkey

import "testing"

func TestParseCombo(t *testing.T) {
	tests := []struct {
		in      string
		want    Combo
		wantErr bool
	}{
		{"ctrl+shift+space", LauncherCombo, false},
		{"Ctrl+Alt+Space", VoiceCombo, false},
		{" cmd + shift + r ", Combo{Super: true, Shift: true, Key: "r"}, false},
		{"option+v", Combo{Alt: true, Key: "v"}, false},
		{"space", Combo{}, true},
		{"ctrl+shift", Combo{}, true},
		{"ctrl+f1", Combo{}, true},
		{"ctrl+space+a", Combo{}, true},
		{"", Combo{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCombo(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComboString(t *testing.T) {
	if got := LauncherCombo.String(); got != "Ctrl+Shift+Space" {
		t.Errorf("got %q", got)
	}
	if got := (Combo{Alt: true, Super: true, Key: "k"}).String(); got != "Alt+Super+K" {
		t.Errorf("got %q", got)
	}
}
