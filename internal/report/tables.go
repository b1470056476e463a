package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"systest/internal/artifact"
	"systest/internal/project"
	sstrings "systest/pkg/strings"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

func header(names ...string) table.Row {
	row := make(table.Row, len(names))
	for i, n := range names {
		row[i] = text.FgHiCyan.Sprint(n)
	}
	return row
}

// RenderTasks lists tasks with their group and description. Tasks with no
// group are hidden unless all is set.
func RenderTasks(w io.Writer, tasks []*project.Task, all bool) {
	t := newTable(w)
	t.AppendHeader(header("GROUP", "TASK", "DESCRIPTION", "DEPENDS ON"))
	for _, task := range tasks {
		if task.Group == "" && !all {
			continue
		}
		t.AppendRow(table.Row{task.Group, task.Name, sstrings.Truncate(task.Description, sstrings.DescriptionWidth), strings.Join(task.DependsOn, ", ")})
	}
	t.Render()
}

// RenderBuckets lists dependency buckets with their effective entries.
// Hidden buckets are shown only when all is set.
func RenderBuckets(w io.Writer, buckets []*artifact.Bucket, all bool) {
	t := newTable(w)
	t.AppendHeader(header("BUCKET", "DESCRIPTION", "DEPENDENCIES"))
	for _, b := range buckets {
		if !b.Visible && !all {
			continue
		}
		t.AppendRow(table.Row{b.Name, sstrings.Truncate(b.Description, sstrings.DescriptionWidth), entries(b)})
	}
	t.Render()
}

// RenderResolved lists the files a bucket resolved to, in class path order,
// under a line naming the bucket.
func RenderResolved(w io.Writer, bucket string, files []string) {
	fmt.Fprintln(w, text.Bold.Sprint(bucket))
	t := newTable(w)
	t.AppendHeader(header("#", "FILE"))
	for i, f := range files {
		t.AppendRow(table.Row{i + 1, f})
	}
	t.Render()
}

func entries(b *artifact.Bucket) string {
	deps := b.Dependencies()
	if len(deps) == 0 {
		return text.FgYellow.Sprint("(none)")
	}
	raw := make([]string, len(deps))
	for i, d := range deps {
		raw[i] = d.Raw
	}
	return strings.Join(raw, "\n")
}
