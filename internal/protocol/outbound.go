package protocol

import "encoding/json"

// Outbound command names.
const (
	CommandCheckSyncVault     = "checkSyncVault"
	CommandCopyPasswordWithID = "copyPasswordWithId"
	CommandLockVault          = "lockVault"
	CommandWindowControl      = "windowControl"
	CommandNativeMessaging    = "nativeMessaging"
)

// Window control actions carried by windowControl notifications.
const (
	WindowMinimize = "minimize"
	WindowFocus    = "focus"
	WindowRestore  = "restore"
	WindowHide     = "hide"
	WindowShow     = "show"
)

// Notification is a message sent from the host to the presentation layer.
type Notification struct {
	Command      string          `json:"command"`
	ID           string          `json:"id,omitempty"`
	CopyUsername *bool           `json:"copyUsername,omitempty"`
	Action       string          `json:"action,omitempty"`
	Payload      json.RawMessage `json:"payload,omitempty"`
}

// CheckSyncVault asks the presentation layer to run a vault sync check.
func CheckSyncVault() Notification {
	return Notification{Command: CommandCheckSyncVault}
}

// CopyPasswordWithID asks the presentation layer to copy the username or
// password of the favorite identified by id.
func CopyPasswordWithID(id string, copyUsername bool) Notification {
	return Notification{Command: CommandCopyPasswordWithID, ID: id, CopyUsername: &copyUsername}
}

// LockVault asks the presentation layer to lock the vault.
func LockVault() Notification {
	return Notification{Command: CommandLockVault}
}

// WindowControl instructs the presentation window to perform action.
func WindowControl(action string) Notification {
	return Notification{Command: CommandWindowControl, Action: action}
}

// NativeMessage relays an opaque browser frame to the presentation layer.
func NativeMessage(payload json.RawMessage) Notification {
	return Notification{Command: CommandNativeMessaging, Payload: payload}
}

// Sender delivers notifications. Delivery is fire-and-forget.
type Sender interface {
	Send(n Notification)
}
