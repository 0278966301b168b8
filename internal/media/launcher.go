// Package media opens article links and images in external applications.
package media

import (
	"fmt"
	"os/exec"
	"path"
	"runtime"
	"strings"

	"github.com/pders01/headlines/internal/config"
	"github.com/pders01/headlines/internal/debuglog"
	"github.com/pders01/headlines/internal/validation"
)

type Type int

const (
	TypePage Type = iota
	TypeImage
)

func (t Type) String() string {
	if t == TypeImage {
		return "image"
	}
	return "page"
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".webp": true, ".bmp": true, ".svg": true, ".avif": true,
}

// DetectType classifies rawURL by the extension of its path.
func DetectType(rawURL string) Type {
	p := rawURL
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if imageExtensions[strings.ToLower(path.Ext(p))] {
		return TypeImage
	}
	return TypePage
}

type Launcher struct {
	browser       string
	imageViewer   string
	defaultOpener string
	validator     *validation.URLValidator
	start         func(*exec.Cmd) error
}

func NewLauncher(cfg *config.Config) *Launcher {
	defaultOpener := cfg.Media.DefaultOpener
	if defaultOpener == "" {
		defaultOpener = getDefaultOpener()
	}

	l := &Launcher{
		defaultOpener: defaultOpener,
		validator:     validation.NewURLValidator(),
		start:         startDetached,
	}

	players := cfg.Media.ForOS(runtime.GOOS)
	l.browser = findCommand(players.Browser...)
	l.imageViewer = findCommand(players.Image...)

	if l.browser == "" {
		l.browser = l.defaultOpener
	}
	if l.imageViewer == "" {
		l.imageViewer = l.defaultOpener
	}

	return l
}

// Open validates rawURL and hands it to the browser or image viewer.
func (l *Launcher) Open(rawURL string) error {
	normalized, err := l.validator.ValidateAndNormalize(rawURL)
	if err != nil {
		return fmt.Errorf("refusing to open URL: %w", err)
	}

	kind := DetectType(normalized)
	program := l.browser
	if kind == TypeImage {
		program = l.imageViewer
	}
	if program == "" {
		return fmt.Errorf("no application found to open %s", kind)
	}

	cmd := command(program, normalized)
	if err := l.start(cmd); err != nil {
		return fmt.Errorf("failed to start %s: %w", program, err)
	}
	debuglog.Debugf("opened %s %s with %s", kind, normalized, program)
	return nil
}

func command(program, url string) *exec.Cmd {
	if runtime.GOOS == "windows" && program == "start" {
		return exec.Command("cmd", "/c", "start", "", url)
	}
	return exec.Command(program, url)
}

// startDetached starts GUI applications without waiting on them.
func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

func getDefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "windows":
		return "start"
	default:
		return "xdg-open"
	}
}

func findCommand(commands ...string) string {
	for _, cmd := range commands {
		if _, err := exec.LookPath(cmd); err == nil {
			return cmd
		}
	}
	return ""
}
