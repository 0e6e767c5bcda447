package export

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"path"
	"time"

	"github.com/dustin/go-humanize"

	"mfdiff/internal/mfdiff"
)

//go:embed templates/report.html
var templateFS embed.FS

var reportTemplate = template.Must(template.New("report.html").ParseFS(templateFS, "templates/report.html"))

// HTMLOptions controls the report page.
type HTMLOptions struct {
	Title       string
	GeneratedAt time.Time
	Template    string
}

type chartFile struct {
	Name            string
	ID              string
	DisplayPath     string
	DisplayFileName string
	Dates           []string
	Sizes           []int64
	Created         []*string
	Modified        []*string
	Rows            []chartRow
}

type chartRow struct {
	Period     string
	ActualName string
	Size       string
	Created    string
	Modified   string
	RelPath    string
}

type reportData struct {
	Title       string
	Template    string
	GeneratedAt string
	Identities  string
	Records     string
	Skipped     []mfdiff.SkippedPeriod
	Files       []chartFile
}

// WriteHTML renders a self-contained page with one size chart per identity.
func WriteHTML(w io.Writer, g *mfdiff.Grouping, opts HTMLOptions) error {
	data := reportData{
		Title:       opts.Title,
		Template:    opts.Template,
		GeneratedAt: opts.GeneratedAt.Format(mfdiff.TimestampLayout),
		Identities:  humanize.Comma(int64(g.Len())),
		Records:     humanize.Comma(int64(g.RecordCount())),
		Skipped:     g.Skipped(),
	}
	if data.Title == "" {
		data.Title = "File Info Charts"
	}

	for identity, records := range g.All() {
		data.Files = append(data.Files, newChartFile(identity, records))
	}

	if err := reportTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("rendering html report: %w", err)
	}
	return nil
}

func newChartFile(identity string, records []mfdiff.FileRecord) chartFile {
	cf := chartFile{
		Name:            identity,
		ID:              AnchorID(identity),
		DisplayPath:     path.Dir(identity),
		DisplayFileName: path.Base(identity),
	}
	for _, r := range records {
		cf.Dates = append(cf.Dates, r.PeriodLabel)
		cf.Sizes = append(cf.Sizes, r.Size)
		cf.Created = append(cf.Created, isoOrNil(r.Created))
		cf.Modified = append(cf.Modified, isoOrNil(r.Modified))
		cf.Rows = append(cf.Rows, chartRow{
			Period:     r.PeriodLabel,
			ActualName: r.ActualName,
			Size:       humanize.Bytes(uint64(max(r.Size, 0))),
			Created:    r.Created,
			Modified:   r.Modified,
			RelPath:    r.RelativePath,
		})
	}
	return cf
}
