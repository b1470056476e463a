package report

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"

	"systest/internal/project"
)

// Console prints task progress and the build summary.
type Console struct {
	out     io.Writer
	spinner *spinner.Spinner

	mu sync.Mutex
}

// NewConsole returns a console writing to out. Unless quiet, a spinner is
// drawn on progress while tasks run.
func NewConsole(out, progress io.Writer, quiet bool) *Console {
	c := &Console{out: out}
	if !quiet && progress != nil {
		c.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(progress))
	}
	return c
}

// TaskStarted implements project.Listener.
func (c *Console) TaskStarted(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.spinner != nil {
		c.spinner.Suffix = " > :" + name
		c.spinner.Start()
	}
}

// TaskFinished implements project.Listener.
func (c *Console) TaskFinished(r project.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.spinner != nil {
		c.spinner.Stop()
	}
	fmt.Fprintln(c.out, TaskLine(r))
}

// Stop clears any spinner left by an interrupted task.
func (c *Console) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.spinner != nil {
		c.spinner.Stop()
	}
}

// TaskLine formats a task banner. Successful tasks have no suffix.
func TaskLine(r project.Result) string {
	line := "> Task :" + r.Task
	switch r.Outcome {
	case project.OutcomeSuccess, "":
		return line
	case project.OutcomeFailed:
		return line + " " + text.FgRed.Sprint(string(r.Outcome))
	default:
		return line + " " + text.FgYellow.Sprint(string(r.Outcome))
	}
}

// BuildFinished prints the failure, if any, and the build summary.
func (c *Console) BuildFinished(result *project.BuildResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.spinner != nil {
		c.spinner.Stop()
	}

	fmt.Fprintln(c.out)
	if result.Failed() {
		fmt.Fprintln(c.out, "FAILURE: Build failed with an exception.")
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, "* What went wrong:")
		fmt.Fprintln(c.out, result.Err.Error())
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, text.FgRed.Sprint("BUILD FAILED")+" in "+FormatElapsed(result.Elapsed))
	} else {
		fmt.Fprintln(c.out, text.FgGreen.Sprint("BUILD SUCCESSFUL")+" in "+FormatElapsed(result.Elapsed))
	}

	if summary := Summary(result.Results); summary != "" {
		fmt.Fprintln(c.out, summary)
	}
}

// Summary counts the tasks that did work against those that did not, e.g.
// "3 actionable tasks: 2 executed, 1 up-to-date".
func Summary(results []project.Result) string {
	var executed, upToDate int
	for _, r := range results {
		switch r.Outcome {
		case project.OutcomeSuccess, project.OutcomeFailed:
			executed++
		case project.OutcomeUpToDate, project.OutcomeSkipped, project.OutcomeNoSource:
			upToDate++
		}
	}

	total := executed + upToDate
	if total == 0 {
		return ""
	}

	noun := "tasks"
	if total == 1 {
		noun = "task"
	}

	var parts []string
	if executed > 0 {
		parts = append(parts, fmt.Sprintf("%d executed", executed))
	}
	if upToDate > 0 {
		parts = append(parts, fmt.Sprintf("%d up-to-date", upToDate))
	}
	return fmt.Sprintf("%d actionable %s: %s", total, noun, strings.Join(parts, ", "))
}

// FormatElapsed renders a build duration the way Gradle does: "850ms",
// "12s" or "1m 5s".
func FormatElapsed(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm %ds", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
}
