package dto

// PageRequest paginación de listados (?limit=&offset=). Limit 0 toma el valor
// por defecto del listado.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=0,max=1000"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage completa Limit con def cuando no viene en la consulta.
func (p *PageRequest) DefaultPage(def int) {
	if p.Limit == 0 {
		p.Limit = def
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
