package dto

// AnalyzeRequest texto libre a clasificar (descripción de una avería, correo del cliente...).
type AnalyzeRequest struct {
	Text string `json:"text" validate:"required"`
}

// AnalysisResult resultado del análisis por palabras clave o LLM.
type AnalysisResult struct {
	Category    string   `json:"category"`
	Priority    string   `json:"priority"`
	Keywords    []string `json:"keywords"`
	Suggestions []string `json:"suggestions"`
	Summary     string   `json:"summary,omitempty"`
	Source      string   `json:"source"` // keywords | llm
}

// GeocodeResult coordenadas de una dirección.
type GeocodeResult struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	DisplayName string  `json:"display_name"`
}

// TranscriptionResult texto de una nota de voz.
type TranscriptionResult struct {
	Text string `json:"text"`
}
