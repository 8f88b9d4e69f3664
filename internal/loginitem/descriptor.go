package loginitem

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FS is the filesystem surface used by DescriptorStrategy.
type FS interface {
	Exists(path string) (bool, error)
	WriteFile(path string, data []byte, perm os.FileMode) error
	Remove(path string) error
	MkdirAll(path string, perm os.FileMode) error
}

// OSFS is the real filesystem.
type OSFS struct{}

func (OSFS) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (OSFS) WriteFile(path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(path, data, perm)
}

func (OSFS) Remove(path string) error {
	return os.Remove(path)
}

func (OSFS) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// DescriptorStrategy registers the application by writing a startup
// descriptor file that the session manager picks up.
type DescriptorStrategy struct {
	name    string
	path    string
	content []byte
	fs      FS
}

// NewDesktopEntry returns the XDG autostart strategy writing
// ~/.config/autostart/<name>.desktop.
func NewDesktopEntry(opts Options) *DescriptorStrategy {
	file := strings.ToLower(opts.Name) + ".desktop"
	return &DescriptorStrategy{
		name:    "desktop-entry",
		path:    filepath.Join(opts.Home, ".config", "autostart", file),
		content: []byte(desktopEntry(opts)),
		fs:      opts.FS,
	}
}

// NewLaunchAgent returns the macOS strategy writing
// ~/Library/LaunchAgents/<id>.plist.
func NewLaunchAgent(opts Options) *DescriptorStrategy {
	return &DescriptorStrategy{
		name:    "launch-agent",
		path:    filepath.Join(opts.Home, "Library", "LaunchAgents", opts.ID+".plist"),
		content: []byte(launchAgent(opts)),
		fs:      opts.FS,
	}
}

func (s *DescriptorStrategy) Name() string { return s.name }

// Path returns the descriptor location.
func (s *DescriptorStrategy) Path() string { return s.path }

func (s *DescriptorStrategy) Enabled() (bool, error) {
	ok, err := s.fs.Exists(s.path)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", s.path, err)
	}
	return ok, nil
}

// Enable writes the descriptor, creating its directory first and
// overwriting an existing file.
func (s *DescriptorStrategy) Enable() error {
	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	if err := s.fs.WriteFile(s.path, s.content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

// Disable deletes the descriptor. A missing file is not an error.
func (s *DescriptorStrategy) Disable() error {
	ok, err := s.Enabled()
	if err != nil || !ok {
		return err
	}
	if err := s.fs.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", s.path, err)
	}
	return nil
}

func desktopEntry(opts Options) string {
	version := opts.Version
	if version == "" {
		version = "1.0"
	}
	lines := []string{
		"[Desktop Entry]",
		"Type=Application",
		"Version=" + version,
		"Name=" + opts.Name,
		"Comment=" + opts.Comment,
		"Exec=" + desktopExec(opts.Exec),
		"StartupNotify=false",
		"Terminal=false",
	}
	return strings.Join(lines, "\n") + "\n"
}

const execReserved = " \t\n\"'\\><~|&;$*?#()`"

var execQuoteEscaper = strings.NewReplacer(`"`, `\"`, "`", "\\`", `$`, `\$`, `\`, `\\`)

// desktopExec renders path as the program argument of an Exec key. Paths with
// reserved characters are double quoted, and backslashes are escaped once more
// for the string value.
func desktopExec(path string) string {
	arg := strings.ReplaceAll(path, "%", "%%")
	if strings.ContainsAny(arg, execReserved) {
		arg = `"` + execQuoteEscaper.Replace(arg) + `"`
	}
	return strings.ReplaceAll(arg, `\`, `\\`)
}

func launchAgent(opts Options) string {
	var b bytes.Buffer
	b.WriteString(xml.Header)
	b.WriteString(`<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">` + "\n")
	b.WriteString(`<plist version="1.0">` + "\n<dict>\n")
	writePlistString(&b, "Label", opts.ID)
	b.WriteString("\t<key>ProgramArguments</key>\n\t<array>\n\t\t<string>")
	xml.EscapeText(&b, []byte(opts.Exec))
	b.WriteString("</string>\n\t</array>\n")
	b.WriteString("\t<key>RunAtLoad</key>\n\t<true/>\n")
	b.WriteString("\t<key>ProcessType</key>\n\t<string>Interactive</string>\n")
	b.WriteString("</dict>\n</plist>\n")
	return b.String()
}

func writePlistString(b *bytes.Buffer, key, value string) {
	b.WriteString("\t<key>" + key + "</key>\n\t<string>")
	xml.EscapeText(b, []byte(value))
	b.WriteString("</string>\n")
}
