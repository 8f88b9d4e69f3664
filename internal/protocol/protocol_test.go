package protocol

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestDecodeCommands(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Command
	}{
		{name: "schedule", input: `{"command":"scheduleNextSync"}`, want: ScheduleNextSync{}},
		{name: "minimize", input: `{"command":"minimizeOnCopy"}`, want: MinimizeOnCopy{}},
		{name: "show tray", input: `{"command":"showTray"}`, want: ShowTray{}},
		{name: "remove tray", input: `{"command":"removeTray"}`, want: RemoveTray{}},
		{name: "hide to tray", input: `{"command":"hideToTray"}`, want: HideToTray{}},
		{name: "add login", input: `{"command":"addOpenAtLogin"}`, want: AddOpenAtLogin{}},
		{name: "remove login", input: `{"command":"removeOpenAtLogin"}`, want: RemoveOpenAtLogin{}},
		{name: "focus", input: `{"command":"setFocus"}`, want: SetFocus{}},
		{name: "enable browser", input: `{"command":"enableBrowserIntegration"}`, want: EnableBrowserIntegration{}},
		{name: "disable browser", input: `{"command":"disableBrowserIntegration"}`, want: DisableBrowserIntegration{}},
		{
			name:  "update menu",
			input: `{"command":"updateAppMenu","isAuthenticated":true,"isLocked":false,"favorites":[{"id":"a","name":"Alpha"},{"id":"b","name":"Beta"}]}`,
			want: UpdateAppMenu{
				IsAuthenticated: true,
				Favorites:       []Favorite{{ID: "a", Name: "Alpha"}, {ID: "b", Name: "Beta"}},
			},
		},
		{name: "update menu without payload", input: `{"command":"updateAppMenu"}`, want: UpdateAppMenu{}},
		{name: "unknown", input: `{"command":"openSettings","extra":1}`, want: Unknown{Command: "openSettings"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.input))
			if err != nil {
				t.Fatalf("Decode returned error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Decode = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestDecodeMissingCommand(t *testing.T) {
	for _, input := range []string{`{}`, `{"command":""}`, `{"isLocked":true}`} {
		if _, err := Decode([]byte(input)); !errors.Is(err, ErrMissingCommand) {
			t.Fatalf("Decode(%s) error = %v, want ErrMissingCommand", input, err)
		}
	}
}

func TestDecodeMalformed(t *testing.T) {
	if _, err := Decode([]byte("not-json")); err == nil {
		t.Fatalf("expected error for malformed frame")
	}
}

func TestCommandNames(t *testing.T) {
	if got := (RemoveOpenAtLogin{}).Name(); got != "removeOpenAtLogin" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := (Unknown{Command: "futureThing"}).Name(); got != "futureThing" {
		t.Fatalf("unexpected name %q", got)
	}
}

func TestCopyPasswordWithIDEncoding(t *testing.T) {
	raw, err := json.Marshal(CopyPasswordWithID("fav-1", false))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"command":"copyPasswordWithId","id":"fav-1","copyUsername":false}`
	if string(raw) != want {
		t.Fatalf("got %s, want %s", raw, want)
	}

	raw, err = json.Marshal(CheckSyncVault())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"command":"checkSyncVault"}` {
		t.Fatalf("unexpected checkSyncVault frame %s", raw)
	}
}
