package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"mewai/internal/stages"
	"mewai/internal/tracker"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
	progressBarWidth = 24
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func stageKind(status stages.Status) statusKind {
	switch status {
	case stages.StatusCompleted:
		return statusOK
	case stages.StatusInProgress:
		return statusWarn
	case stages.StatusError:
		return statusError
	default:
		return statusInfo
	}
}

func colorStageStatus(status stages.Status, colorize bool) string {
	label := strings.ReplaceAll(string(status), "_", " ")
	if !colorize {
		return label
	}
	return statusKindColor(stageKind(status)) + label + ansiReset
}

func lifecycleKind(lifecycle tracker.Lifecycle) statusKind {
	switch lifecycle {
	case tracker.LifecycleCompleted:
		return statusOK
	case tracker.LifecycleError:
		return statusError
	case tracker.LifecycleStarting, tracker.LifecyclePolling:
		return statusWarn
	default:
		return statusInfo
	}
}

// renderProgressBar draws a fixed-width bar such as "[######------] 50%".
func renderProgressBar(progress int) string {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	filled := progress * progressBarWidth / 100
	return fmt.Sprintf("[%s%s] %3d%%", strings.Repeat("#", filled), strings.Repeat("-", progressBarWidth-filled), progress)
}

// renderProgressLine summarizes a tracker state on one line.
func renderProgressLine(state tracker.State) string {
	var b strings.Builder
	b.WriteString(renderProgressBar(state.Progress))
	if active, ok := stages.Active(state.Stages); ok {
		b.WriteString("  ")
		b.WriteString(active.Label)
	}
	switch state.Lifecycle {
	case tracker.LifecycleCompleted:
		b.WriteString("  done")
	case tracker.LifecycleError:
		b.WriteString("  failed: ")
		b.WriteString(state.ErrorMessage)
	}
	return b.String()
}
