package dto

// ErrorResponse cuerpo de error HTTP: {"code": "...", "error": "..."}.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"error"`
}

// MessageResponse respuesta simple de confirmación.
type MessageResponse struct {
	Message string `json:"message"`
}

// DateRange filtro opcional de fechas en formato YYYY-MM-DD (query string).
type DateRange struct {
	From string `query:"from"`
	To   string `query:"to"`
}
