package sheet

import (
	"mapforge/internal/common"
	"mapforge/internal/project"
)

// ContentType is the MIME type of written workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Meta is the free-text content of the metadata sheet.
type Meta struct {
	ProjectCase        string `json:"projectCase,omitempty"`
	SourceSystem       string `json:"sourceSystem,omitempty"`
	SourceFormat       string `json:"sourceFormat,omitempty"`
	SourceVersion      string `json:"sourceVersion,omitempty"`
	DestinationSystem  string `json:"destinationSystem,omitempty"`
	DestinationFormat  string `json:"destinationFormat,omitempty"`
	DestinationVersion string `json:"destinationVersion,omitempty"`
	Owner              string `json:"owner,omitempty"`
	LastUpdate         string `json:"lastUpdate,omitempty"`
}

func (m Meta) pairs() [][2]string {
	return [][2]string{
		{"Projekt/Case", m.ProjectCase},
		{"Source Partner/System", m.SourceSystem},
		{"Source Format", m.SourceFormat},
		{"Source Spezifikation/Version", m.SourceVersion},
		{"Destination Partner/System", m.DestinationSystem},
		{"Destination Format", m.DestinationFormat},
		{"Destination Spezifikation/Version", m.DestinationVersion},
		{"Analyse Owner", m.Owner},
		{"Letztes Update", m.LastUpdate},
	}
}

// MetaFromProject fills the metadata the project itself knows about.
// The fixed side is attributed to the project's system.
func MetaFromProject(p *project.Project) Meta {
	m := Meta{
		ProjectCase: p.SystemID + " " + p.Direction.String() + " " + p.MessageID,
		LastUpdate:  p.UpdatedAt.Format("2006-01-02 15:04"),
	}

	if p.Direction.FixedSide() == project.SideSource {
		m.SourceSystem = p.SystemID
		m.SourceFormat = p.MessageID
	} else {
		m.DestinationSystem = p.SystemID
		m.DestinationFormat = p.MessageID
	}

	return m
}

// AnalysisRow is one row of the six-column layout.
type AnalysisRow struct {
	Nr               int    `json:"nr"`
	DestinationField string `json:"destinationField"`
	EDIComment       string `json:"ediComment"`
	SourceField      string `json:"sourceField"`
	TMSITComment     string `json:"tmsItComment"`
	GeneralComment   string `json:"generalComment"`
}

// IsBlank reports whether every free-text field is empty or whitespace.
func (r AnalysisRow) IsBlank() bool {
	return common.AllBlank(r.DestinationField, r.EDIComment, r.SourceField, r.TMSITComment, r.GeneralComment)
}

// AnalysisRound is one round sheet of the six-column layout.
type AnalysisRound struct {
	RoundID       string        `json:"roundId"`
	Title         string        `json:"title,omitempty"`
	Date          string        `json:"date,omitempty"`
	Status        string        `json:"status,omitempty"`
	InputArtifact string        `json:"inputArtifact,omitempty"`
	Scope         string        `json:"scope,omitempty"`
	Rows          []AnalysisRow `json:"rows"`
}

// Analysis is the payload of the six-column export.
type Analysis struct {
	Meta   Meta            `json:"meta"`
	Rounds []AnalysisRound `json:"rounds" binding:"required,dive"`
}

// AnalysisFromProject converts a project into the six-column payload. The
// row comment becomes the general comment.
func AnalysisFromProject(p *project.Project) *Analysis {
	a := &Analysis{Meta: MetaFromProject(p)}

	for _, r := range p.Rounds {
		ar := AnalysisRound{RoundID: r.ID, Date: p.UpdatedAt.Format("2006-01-02")}

		for i, row := range r.Rows {
			ar.Rows = append(ar.Rows, AnalysisRow{
				Nr:               i + 1,
				DestinationField: row.Destination,
				SourceField:      row.Source,
				GeneralComment:   row.Comment,
			})
		}

		a.Rounds = append(a.Rounds, ar)
	}

	return a
}
