package domain

import "strings"

// Source is one table: a remote primary location and a local fallback copy.
type Source struct {
	URL      string `yaml:"url"`
	Fallback string `yaml:"fallback"`
}

type Sources struct {
	Projects Source `yaml:"proyectos"`
	Months   Source `yaml:"meses"`
	Photos   Source `yaml:"fotos"`
}

// Missing names the tables without a primary location.
func (s Sources) Missing() []string {
	var out []string
	if strings.TrimSpace(s.Projects.URL) == "" {
		out = append(out, "proyectos")
	}
	if strings.TrimSpace(s.Months.URL) == "" {
		out = append(out, "meses")
	}
	if strings.TrimSpace(s.Photos.URL) == "" {
		out = append(out, "fotos")
	}
	return out
}
