package models

type TagColor string

const (
	ColorPrimary   TagColor = "bg-primary"
	ColorSecondary TagColor = "bg-secondary"
	ColorSuccess   TagColor = "bg-success"
	ColorDanger    TagColor = "bg-danger"
	ColorWarning   TagColor = "bg-warning text-dark"
	ColorInfo      TagColor = "bg-info text-dark"
	ColorDark      TagColor = "bg-dark"
)

type PaletteColor struct {
	Color TagColor
	Label string
}

// TagPalette is the fixed set of colors a tag can take.
var TagPalette = []PaletteColor{
	{ColorPrimary, "Azul (Estratégico)"},
	{ColorSecondary, "Gris (General)"},
	{ColorSuccess, "Verde (Logística/Ventas)"},
	{ColorDanger, "Rojo (Crítico/Urgente)"},
	{ColorWarning, "Amarillo (Alerta)"},
	{ColorInfo, "Celeste (Inteligencia)"},
	{ColorDark, "Negro (Operaciones Especiales)"},
}

// ParseTagColor accepts any palette color. An empty string
// yields the default gray.
func ParseTagColor(s string) (TagColor, error) {
	if s == "" {
		return ColorSecondary, nil
	}
	for _, c := range TagPalette {
		if string(c.Color) == s {
			return c.Color, nil
		}
	}
	return "", ErrUnknownTagColor
}

type Tag struct {
	ID     int64
	UserID string
	Name   string
	Color  TagColor
}

type TagUsage struct {
	Tag   Tag
	Count int
}
