// Package render turns scores and laid out tracks into text through
// templates, for the command line.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"math"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/tabula-go/tabula"
	"github.com/tabula-go/tabula/layout"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.tmpl
var templates embed.FS

type Renderer struct {
	Template *template.Template
	// CharWidth is the layout width of one character of the text tab.
	CharWidth float64
}

type (
	tabData struct {
		Name  string
		Lines []tabLine
	}

	tabLine struct {
		Labels  []string
		Strings []string
	}
)

// New returns a renderer using the embedded templates.
func New() (*Renderer, error) {
	title := cases.Title(language.English)
	funcs := template.FuncMap{
		"title":       title.String,
		"denominator": func(d tabula.Duration) int { return int(math.Round(1 / float64(d))) },
	}
	tmpl, err := template.New("base").Funcs(sprig.TxtFuncMap()).Funcs(funcs).ParseFS(templates, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("could not parse templates: %w", err)
	}
	return &Renderer{Template: tmpl, CharWidth: 15}, nil
}

// Report lists the tracks and bars of a score.
func (r *Renderer) Report(s *tabula.Score) (string, error) {
	return r.execute("report.tmpl", s)
}

// Tab draws a laid out track as a text tab, one block per line of the
// layout.
func (r *Renderer) Tab(t *tabula.Track, tab *layout.Tab) (string, error) {
	data := tabData{Name: t.Name}
	for _, l := range tab.Lines {
		data.Lines = append(data.Lines, r.line(t, l))
	}
	return r.execute("tab.tmpl", data)
}

func (r *Renderer) line(t *tabula.Track, l *layout.Line) tabLine {
	names := make([]string, t.Guitar.StringsCount)
	width := 0
	for i, n := range t.Guitar.Tuning {
		names[i] = tabula.PitchName(n)
		width = max(width, len(names[i]))
	}
	rows := make([]strings.Builder, t.Guitar.StringsCount)
	labels := make([]strings.Builder, l.LabelRows)
	for i := range rows {
		fmt.Fprintf(&rows[i], "%-*s|", width, names[i])
	}
	for i := range labels {
		labels[i].WriteString(strings.Repeat(" ", width+1))
	}
	for _, bar := range l.Bars {
		for _, be := range bar.Beats {
			cell := max(3, int(math.Round(be.Rect.Width/r.CharWidth)))
			for s, n := range be.Notes {
				text := ""
				if n.Note.HasFret() {
					text = fmt.Sprint(n.Note.Fret)
				}
				rows[s].WriteString(text + strings.Repeat("-", cell-len(text)))
			}
			for i := range labels {
				text := ""
				if i < len(be.Labels) {
					text = be.Labels[i].Text
				}
				labels[i].WriteString(fmt.Sprintf("%-*s", cell, text))
			}
		}
		for s := range rows {
			rows[s].WriteString("|")
		}
		for i := range labels {
			labels[i].WriteString(" ")
		}
	}
	ret := tabLine{}
	for i := range labels {
		ret.Labels = append(ret.Labels, strings.TrimRight(labels[i].String(), " "))
	}
	for i := range rows {
		ret.Strings = append(ret.Strings, rows[i].String())
	}
	return ret
}

func (r *Renderer) execute(name string, data any) (string, error) {
	result := bytes.NewBufferString("")
	if err := r.Template.ExecuteTemplate(result, name, data); err != nil {
		return "", fmt.Errorf("could not execute template %q: %w", name, err)
	}
	return result.String(), nil
}
